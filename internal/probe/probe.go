// Package probe discovers what the host's compression programs can do.
package probe

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/singleflight"
)

// cacheSize bounds the number of resolved program paths whose probe
// results are remembered. PATH rarely holds more compressors than this.
const cacheSize = 32

// probeTimeout bounds how long a wedged probe process can stall an open.
const probeTimeout = 10 * time.Second

// Prober answers capability questions about external programs.
// Concatenation probe results are cached per resolved program path for
// the lifetime of the Prober, so each program is exercised at most once
// per process. Prober is safe for concurrent use.
type Prober struct {
	group   singleflight.Group
	concat  *lru.Cache[string, bool]
	timeout time.Duration
}

// New creates a Prober with an empty cache.
func New() *Prober {
	cache, _ := lru.New[string, bool](cacheSize) // capacity is constant and positive
	return &Prober{concat: cache, timeout: probeTimeout}
}

// CanExecute reports whether program resolves on PATH to an executable
// file. It is evaluated fresh on every call so PATH changes take effect.
func (p *Prober) CanExecute(program string) bool {
	_, err := exec.LookPath(program)
	return err == nil
}

// CanConcatenate reports whether program decompresses concatenated gzip
// members to their full joint contents. Some igzip releases stop after
// the first member, which would silently drop data from files written
// in append mode. Results are keyed by resolved path, so a PATH change
// that swaps the binary is probed anew.
func (p *Prober) CanConcatenate(ctx context.Context, program string) bool {
	path, err := exec.LookPath(program)
	if err != nil {
		return false
	}
	if ok, found := p.concat.Get(path); found {
		return ok
	}
	result, _, _ := p.group.Do(path, func() (any, error) {
		ok := p.runConcatProbe(ctx, path)
		p.concat.Add(path, ok)
		return ok, nil
	})
	ok, _ := result.(bool)
	return ok
}

// runConcatProbe feeds two independently compressed gzip members
// through the program and checks that both come back out.
func (p *Prober) runConcatProbe(ctx context.Context, path string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "-cd")
	cmd.Stdin = bytes.NewReader(concatMembers())
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.WaitDelay = p.timeout
	if err := cmd.Run(); err != nil {
		return false
	}
	return out.String() == "ABCD"
}

// concatMembers builds "AB" and "CD" as two self-contained gzip members.
func concatMembers() []byte {
	var buf bytes.Buffer
	for _, part := range []string{"AB", "CD"} {
		zw := gzip.NewWriter(&buf)
		_, _ = zw.Write([]byte(part))
		_ = zw.Close()
	}
	return buf.Bytes()
}
