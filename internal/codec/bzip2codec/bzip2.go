// Package bzip2codec provides the in-process bzip2 codec.
package bzip2codec

import (
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"

	"github.com/DriesSchaumont/xopen/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements bzip2 compression in process.
type Codec struct{}

// New returns a new bzip2 codec.
func New() *Codec {
	return &Codec{}
}

// Reader wraps r to decompress bzip2 data. Concatenated members are
// decoded as one continuous stream.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return bzip2.NewReader(r, &bzip2.ReaderConfig{})
}

// Writer wraps w to compress data with bzip2 at level.
func (c *Codec) Writer(w io.Writer, level int) (io.WriteCloser, error) {
	if err := c.ValidateLevel(level); err != nil {
		return nil, err
	}
	if level == codec.DefaultLevel {
		level = bzip2.DefaultCompression
	}
	return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: level})
}

// ValidateLevel accepts levels 1 through 9.
func (c *Codec) ValidateLevel(level int) error {
	if level == codec.DefaultLevel || (level >= bzip2.BestSpeed && level <= bzip2.BestCompression) {
		return nil
	}
	return fmt.Errorf("bzip2: compresslevel must be between 1 and 9, got %d", level)
}

// Extension returns "bz2".
func (c *Codec) Extension() string {
	return "bz2"
}
