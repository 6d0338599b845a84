package registry

import (
	"reflect"
	"strings"
	"testing"

	"github.com/DriesSchaumont/xopen/internal/sniff"
)

func TestDescriptor_ValidateLevel(t *testing.T) {
	pigz := Descriptor{Program: "pigz", Format: sniff.Gzip, MinLevel: 0, MaxLevel: 9, ExtraLevels: []int{11}}
	gzip := Descriptor{Program: "gzip", Format: sniff.Gzip, MinLevel: 1, MaxLevel: 9}
	igzip := Descriptor{Program: "igzip", Format: sniff.Gzip, MinLevel: 0, MaxLevel: 3}

	tests := []struct {
		name    string
		desc    Descriptor
		level   int
		wantErr bool
	}{
		{"gzip min", gzip, 1, false},
		{"gzip max", gzip, 9, false},
		{"gzip zero", gzip, 0, true},
		{"gzip too high", gzip, 10, true},
		{"gzip default sentinel", gzip, DefaultLevel, false},
		{"pigz zero", pigz, 0, false},
		{"pigz zopfli", pigz, 11, false},
		{"pigz ten", pigz, 10, true},
		{"igzip three", igzip, 3, false},
		{"igzip four", igzip, 4, true},
		{"synthetic accepts anything", Synthetic("mytool", sniff.Gzip), 99, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.ValidateLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateLevel(%d) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "compresslevel must be") {
				t.Errorf("error %q does not name the legal range", err)
			}
		})
	}
}

func TestDescriptor_ValidateLevel_NamesRange(t *testing.T) {
	gzip := Descriptor{Program: "gzip", Format: sniff.Gzip, MinLevel: 1, MaxLevel: 9}
	err := gzip.ValidateLevel(17)
	if err == nil {
		t.Fatal("ValidateLevel(17) = nil, want error")
	}
	if !strings.Contains(err.Error(), "between 1 and 9") {
		t.Errorf("error %q does not contain %q", err, "between 1 and 9")
	}

	pigz := Descriptor{Program: "pigz", MinLevel: 0, MaxLevel: 9, ExtraLevels: []int{11}}
	err = pigz.ValidateLevel(10)
	if err == nil {
		t.Fatal("ValidateLevel(10) = nil, want error")
	}
	if !strings.Contains(err.Error(), "between 0 and 9 or 11") {
		t.Errorf("error %q does not contain %q", err, "between 0 and 9 or 11")
	}
}

func TestDescriptor_ReadArgs(t *testing.T) {
	tests := []struct {
		name    string
		desc    Descriptor
		threads int
		want    []string
	}{
		{"single threaded", Descriptor{Program: "gzip"}, 4, []string{"-cd"}},
		{"pigz threads", Descriptor{Program: "pigz", ThreadsFlag: "-p"}, 4, []string{"-cd", "-p4"}},
		{"xz threads", Descriptor{Program: "xz", ThreadsFlag: "-T"}, 2, []string{"-cd", "-T2"}},
		{"zero threads omits flag", Descriptor{Program: "pigz", ThreadsFlag: "-p"}, 0, []string{"-cd"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.desc.ReadArgs(tt.threads); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadArgs(%d) = %v, want %v", tt.threads, got, tt.want)
			}
		})
	}
}

func TestDescriptor_WriteArgs(t *testing.T) {
	tests := []struct {
		name    string
		desc    Descriptor
		level   int
		threads int
		want    []string
	}{
		{"level and threads", Descriptor{Program: "pigz", ThreadsFlag: "-p"}, 9, 4, []string{"-c", "-9", "-p4"}},
		{"default level", Descriptor{Program: "gzip"}, DefaultLevel, 1, []string{"-c"}},
		{"level zero is a real level", Descriptor{Program: "pigz", ThreadsFlag: "-p"}, 0, 0, []string{"-c", "-0"}},
		{"xz", Descriptor{Program: "xz", ThreadsFlag: "-T"}, 6, 8, []string{"-c", "-6", "-T8"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.desc.WriteArgs(tt.level, tt.threads); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("WriteArgs(%d, %d) = %v, want %v", tt.level, tt.threads, got, tt.want)
			}
		})
	}
}

func TestDefault_CandidateOrder(t *testing.T) {
	r := Default()

	progs := func(descs []Descriptor) []string {
		names := make([]string, len(descs))
		for i, d := range descs {
			names[i] = d.Program
		}
		return names
	}

	t.Run("gzip single thread", func(t *testing.T) {
		got := progs(r.Candidates(sniff.Gzip, 1))
		want := []string{"igzip", "pigz", "gzip"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Candidates(Gzip, 1) = %v, want %v", got, want)
		}
	})

	t.Run("gzip multi thread promotes pigz", func(t *testing.T) {
		got := progs(r.Candidates(sniff.Gzip, 4))
		want := []string{"pigz", "igzip", "gzip"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Candidates(Gzip, 4) = %v, want %v", got, want)
		}
	})

	t.Run("bzip2", func(t *testing.T) {
		got := progs(r.Candidates(sniff.Bzip2, 1))
		want := []string{"pbzip2", "bzip2"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Candidates(Bzip2, 1) = %v, want %v", got, want)
		}
	})

	t.Run("xz", func(t *testing.T) {
		got := progs(r.Candidates(sniff.XZ, 1))
		want := []string{"xz"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Candidates(XZ, 1) = %v, want %v", got, want)
		}
	})

	t.Run("none has no candidates", func(t *testing.T) {
		if got := r.Candidates(sniff.None, 1); len(got) != 0 {
			t.Errorf("Candidates(None, 1) = %v, want empty", got)
		}
	})
}

func TestRegistry_CandidatesReturnsCopy(t *testing.T) {
	r := Default()
	first := r.Candidates(sniff.Gzip, 1)
	first[0] = Descriptor{Program: "mangled"}

	again := r.Candidates(sniff.Gzip, 1)
	if again[0].Program != "igzip" {
		t.Errorf("Candidates() shares backing storage: got %q, want %q", again[0].Program, "igzip")
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := Default()

	d, ok := r.Lookup("pigz")
	if !ok {
		t.Fatal("Lookup(pigz) not found")
	}
	if d.Format != sniff.Gzip || d.ThreadsFlag != "-p" {
		t.Errorf("Lookup(pigz) = %+v, want gzip format with -p flag", d)
	}

	if _, ok := r.Lookup("sevenzip"); ok {
		t.Error("Lookup(sevenzip) found, want not found")
	}
}

func TestNew_PreservesOrder(t *testing.T) {
	r := New(
		Descriptor{Program: "gzip", Format: sniff.Gzip, MinLevel: 1, MaxLevel: 9},
		Descriptor{Program: "pigz", Format: sniff.Gzip, MinLevel: 0, MaxLevel: 9, ThreadsFlag: "-p"},
	)
	got := r.Candidates(sniff.Gzip, 1)
	if len(got) != 2 || got[0].Program != "gzip" || got[1].Program != "pigz" {
		t.Errorf("Candidates order = %v, want [gzip pigz]", got)
	}
}
