package batch

// ProcessStats contains statistics from a batch processing operation.
type ProcessStats struct {
	// Processed is the number of paths successfully processed.
	Processed int

	// TotalBytes is the sum of bytes written for all processed paths.
	TotalBytes uint64
}

// add accumulates stats from another ProcessStats into this one.
func (s *ProcessStats) add(other ProcessStats) {
	s.Processed += other.Processed
	s.TotalBytes += other.TotalBytes
}
