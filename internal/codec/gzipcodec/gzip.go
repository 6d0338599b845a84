// Package gzipcodec provides the in-process gzip codec.
package gzipcodec

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/DriesSchaumont/xopen/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements gzip compression in process.
type Codec struct{}

// New returns a new gzip codec.
func New() *Codec {
	return &Codec{}
}

// Reader wraps r to decompress gzip data. Concatenated members are
// decoded as one continuous stream.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// Writer wraps w to compress data with gzip at level.
func (c *Codec) Writer(w io.Writer, level int) (io.WriteCloser, error) {
	if err := c.ValidateLevel(level); err != nil {
		return nil, err
	}
	if level == codec.DefaultLevel {
		return gzip.NewWriter(w), nil
	}
	return gzip.NewWriterLevel(w, level)
}

// ValidateLevel accepts levels 1 through 9.
func (c *Codec) ValidateLevel(level int) error {
	if level == codec.DefaultLevel || (level >= 1 && level <= 9) {
		return nil
	}
	return fmt.Errorf("gzip: compresslevel must be between 1 and 9, got %d", level)
}

// Extension returns "gz".
func (c *Codec) Extension() string {
	return "gz"
}
