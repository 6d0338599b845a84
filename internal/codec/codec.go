// Package codec provides the in-process compression fallbacks used when
// no external program can serve a stream.
package codec

import "io"

// DefaultLevel is the level sentinel meaning "use the codec default".
const DefaultLevel = -1

// Codec provides in-process compression and decompression for one format.
type Codec interface {
	// Reader wraps r to decompress data read from it. Concatenated
	// members are decoded as one continuous stream.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it at the given
	// level. DefaultLevel selects the codec default.
	Writer(w io.Writer, level int) (io.WriteCloser, error)
	// ValidateLevel reports whether Writer accepts level. The returned
	// error names the legal range.
	ValidateLevel(level int) error
	// Extension returns the file extension without dot (e.g. "gz").
	// Returns empty string for no compression.
	Extension() string
}
