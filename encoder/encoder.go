// Package encoder turns an ordered set of frame files into a looping animation.
package encoder

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Job describes one encoding request. Frames are PNG paths in display order.
type Job struct {
	Dir    string   // working directory for intermediate and output files
	Frames []string // ordered frame paths
	Delay  int      // per-frame delay in hundredths of a second
	Size   int      // output side length in px
}

// Output is the encoded animation.
type Output struct {
	Data   []byte
	Format string // "webp" or "gif"
}

// Encoder encodes a complete frame set. It is called once all frames exist.
type Encoder interface {
	Encode(ctx context.Context, job Job) (Output, error)
}

// ErrToolNotFound is returned when an external tool is not on PATH.
var ErrToolNotFound = errors.New("encoder: tool not found")

// ToolError reports an external tool that failed to start or exited non-zero.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int // -1 when the process did not exit normally
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s failed", e.Tool)
	if e.ExitCode >= 0 {
		msg = fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

func (j Job) validate() error {
	if len(j.Frames) == 0 {
		return errors.New("encoder: no frames")
	}
	if j.Dir == "" {
		return errors.New("encoder: working directory is empty")
	}
	if j.Delay < 0 || j.Size <= 0 {
		return fmt.Errorf("encoder: invalid delay %d or size %d", j.Delay, j.Size)
	}
	return nil
}
