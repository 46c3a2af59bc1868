package simtype

// ProgressEvent represents a progress update during simulation.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Path is the file or archive currently being processed, if applicable.
	Path string

	// BytesDone is the number of bytes written so far in the current stage.
	BytesDone uint64

	// BytesTotal is the total bytes for the current stage.
	// Zero indicates the total is unknown.
	BytesTotal uint64

	// FilesDone is the number of files completed.
	FilesDone int

	// FilesTotal is the total number of files.
	// Zero indicates the total is unknown.
	FilesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

// Progress stages, in the order a simulation runs them.
const (
	// StageMaterializing indicates the skeleton is being written to disk.
	StageMaterializing ProgressStage = iota

	// StageFilling indicates placeholder files are being filled with random bytes.
	StageFilling

	// StageArchiving indicates zip archives are being written.
	StageArchiving

	// StageRegistering indicates the output is being registered with a
	// version-control system.
	StageRegistering
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageMaterializing:
		return "materializing"
	case StageFilling:
		return "filling"
	case StageArchiving:
		return "archiving"
	case StageRegistering:
		return "registering"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during operations.
// Implementations must be safe for concurrent calls.
type ProgressFunc func(ProgressEvent)
