package simtype

import "fmt"

// Compression identifies the zip method used for archive entries.
type Compression uint8

const (
	CompressionDeflate Compression = iota
	CompressionStore
	CompressionZstd
)

// String returns the human-readable name of the compression algorithm.
func (c Compression) String() string {
	switch c {
	case CompressionDeflate:
		return "deflate"
	case CompressionStore:
		return "store"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// ParseCompression parses a compression name. An empty string means deflate.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "deflate":
		return CompressionDeflate, nil
	case "store", "none":
		return CompressionStore, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("%w: compression %q (want deflate, store or zstd)", ErrInvalidConfig, s)
	}
}
