// Package xzcodec provides the in-process xz codec.
package xzcodec

import (
	"fmt"
	"io"

	"github.com/ulikunitz/xz"

	"github.com/DriesSchaumont/xopen/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements xz compression in process.
type Codec struct{}

// New returns a new xz codec.
func New() *Codec {
	return &Codec{}
}

// Reader wraps r to decompress xz data. Concatenated streams are
// decoded as one continuous stream.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(xr), nil
}

// Writer wraps w to compress data with xz. The encoder has a single
// profile, so level only passes validation and does not change the
// output.
func (c *Codec) Writer(w io.Writer, level int) (io.WriteCloser, error) {
	if err := c.ValidateLevel(level); err != nil {
		return nil, err
	}
	return xz.NewWriter(w)
}

// ValidateLevel accepts levels 0 through 9.
func (c *Codec) ValidateLevel(level int) error {
	if level == codec.DefaultLevel || (level >= 0 && level <= 9) {
		return nil
	}
	return fmt.Errorf("xz: compresslevel must be between 0 and 9, got %d", level)
}

// Extension returns "xz".
func (c *Codec) Extension() string {
	return "xz"
}
