// Package sniff identifies compression formats from stream content and
// file names.
package sniff

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"
)

// Format identifies a compression format.
type Format int

const (
	// None means the stream is not compressed, or not in a recognized
	// format.
	None Format = iota
	// Gzip is the gzip format (RFC 1952).
	Gzip
	// Bzip2 is the bzip2 format.
	Bzip2
	// XZ is the xz container format.
	XZ
)

// MagicLen is the number of leading bytes needed to classify a stream.
// It is the length of the longest magic prefix (xz).
const MagicLen = 6

var magics = []struct {
	format Format
	prefix []byte
}{
	{Gzip, []byte{0x1f, 0x8b}},
	{Bzip2, []byte{0x42, 0x5a, 0x68}}, // "BZh"
	{XZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
}

// String returns the conventional short name of the format.
func (f Format) String() string {
	switch f {
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	case XZ:
		return "xz"
	default:
		return "none"
	}
}

// Extension returns the conventional file extension including the dot.
// Returns empty string for None.
func (f Format) Extension() string {
	switch f {
	case Gzip:
		return ".gz"
	case Bzip2:
		return ".bz2"
	case XZ:
		return ".xz"
	default:
		return ""
	}
}

// Detect classifies the stream behind br by its leading magic bytes
// without consuming them. Streams shorter than every magic prefix
// classify as None.
func Detect(br *bufio.Reader) Format {
	head, _ := br.Peek(MagicLen)
	return DetectBytes(head)
}

// DetectBytes classifies head, the first bytes of a stream. head may be
// shorter than MagicLen; prefixes that do not fit cannot match.
func DetectBytes(head []byte) Format {
	for _, m := range magics {
		if bytes.HasPrefix(head, m.prefix) {
			return m.format
		}
	}
	return None
}

// FromExtension returns the format implied by the file name's
// extension. Matching is case-insensitive. Unknown extensions map to
// None.
func FromExtension(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		return Gzip
	case ".bz2":
		return Bzip2
	case ".xz":
		return XZ
	default:
		return None
	}
}
