// Package registry describes the external compression programs that can
// serve each format, and the order in which they are tried.
package registry

import (
	"fmt"

	"github.com/DriesSchaumont/xopen/internal/sniff"
)

// DefaultLevel is the level sentinel meaning "use the backend default".
// Argument builders emit no level flag for it and validation accepts it.
const DefaultLevel = -1

// Descriptor describes one external program serving one format.
//
// A zero level range (MinLevel == MaxLevel == 0) means the program's
// accepted levels are unknown and ValidateLevel accepts everything.
type Descriptor struct {
	// Program is the executable name resolved against PATH.
	Program string

	// Format is the compression format the program handles.
	Format sniff.Format

	// MinLevel and MaxLevel bound the accepted compression levels.
	MinLevel int
	MaxLevel int

	// ExtraLevels lists accepted levels outside [MinLevel, MaxLevel].
	// pigz accepts 11 for its zopfli mode.
	ExtraLevels []int

	// ThreadsFlag is the option prefix selecting the worker count
	// ("-p" for pigz and pbzip2, "-T" for xz). Empty means the program
	// is single-threaded and the thread count is ignored.
	ThreadsFlag string
}

// SupportsThreads reports whether the program accepts a worker count.
func (d Descriptor) SupportsThreads() bool {
	return d.ThreadsFlag != ""
}

// ValidateLevel reports whether level is acceptable for the program.
// DefaultLevel is always acceptable. The returned error names the legal
// range.
func (d Descriptor) ValidateLevel(level int) error {
	if level == DefaultLevel {
		return nil
	}
	if d.MinLevel == 0 && d.MaxLevel == 0 {
		return nil
	}
	if level >= d.MinLevel && level <= d.MaxLevel {
		return nil
	}
	for _, extra := range d.ExtraLevels {
		if level == extra {
			return nil
		}
	}
	domain := fmt.Sprintf("between %d and %d", d.MinLevel, d.MaxLevel)
	for _, extra := range d.ExtraLevels {
		domain = fmt.Sprintf("%s or %d", domain, extra)
	}
	return fmt.Errorf("%s: compresslevel must be %s, got %d", d.Program, domain, level)
}

// ReadArgs builds the argument list for decompressing stdin to stdout.
func (d Descriptor) ReadArgs(threads int) []string {
	args := []string{"-cd"}
	if d.SupportsThreads() && threads > 0 {
		args = append(args, fmt.Sprintf("%s%d", d.ThreadsFlag, threads))
	}
	return args
}

// WriteArgs builds the argument list for compressing stdin to stdout at
// the given level. DefaultLevel emits no level flag.
func (d Descriptor) WriteArgs(level, threads int) []string {
	args := []string{"-c"}
	if level != DefaultLevel {
		args = append(args, fmt.Sprintf("-%d", level))
	}
	if d.SupportsThreads() && threads > 0 {
		args = append(args, fmt.Sprintf("%s%d", d.ThreadsFlag, threads))
	}
	return args
}

// Synthetic returns a descriptor for a program the registry does not
// know. Its level range is unchecked; a bad level surfaces as the
// program's own failure.
func Synthetic(program string, format sniff.Format) Descriptor {
	return Descriptor{Program: program, Format: format}
}

// Registry holds the candidate programs per format in preference order.
type Registry struct {
	entries map[sniff.Format][]Descriptor
}

// New builds a registry from descriptors, preserving their order within
// each format.
func New(descs ...Descriptor) *Registry {
	r := &Registry{entries: make(map[sniff.Format][]Descriptor)}
	for _, d := range descs {
		r.entries[d.Format] = append(r.entries[d.Format], d)
	}
	return r
}

// Default returns the built-in program table: igzip, pigz, gzip for
// gzip; pbzip2, bzip2 for bzip2; xz for xz.
func Default() *Registry {
	return New(
		Descriptor{Program: "igzip", Format: sniff.Gzip, MinLevel: 0, MaxLevel: 3},
		Descriptor{Program: "pigz", Format: sniff.Gzip, MinLevel: 0, MaxLevel: 9, ExtraLevels: []int{11}, ThreadsFlag: "-p"},
		Descriptor{Program: "gzip", Format: sniff.Gzip, MinLevel: 1, MaxLevel: 9},
		Descriptor{Program: "pbzip2", Format: sniff.Bzip2, MinLevel: 1, MaxLevel: 9, ThreadsFlag: "-p"},
		Descriptor{Program: "bzip2", Format: sniff.Bzip2, MinLevel: 1, MaxLevel: 9},
		Descriptor{Program: "xz", Format: sniff.XZ, MinLevel: 0, MaxLevel: 9, ThreadsFlag: "-T"},
	)
}

// Candidates returns the programs serving format in preference order.
// When more than one worker is requested, thread-capable programs are
// promoted ahead of single-threaded ones, preserving relative order
// within each group. The returned slice is a copy.
func (r *Registry) Candidates(format sniff.Format, threads int) []Descriptor {
	src := r.entries[format]
	out := make([]Descriptor, 0, len(src))
	if threads > 1 {
		for _, d := range src {
			if d.SupportsThreads() {
				out = append(out, d)
			}
		}
		for _, d := range src {
			if !d.SupportsThreads() {
				out = append(out, d)
			}
		}
		return out
	}
	return append(out, src...)
}

// Lookup finds a descriptor by program name across all formats.
func (r *Registry) Lookup(program string) (Descriptor, bool) {
	for _, descs := range r.entries {
		for _, d := range descs {
			if d.Program == program {
				return d, true
			}
		}
	}
	return Descriptor{}, false
}
