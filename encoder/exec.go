package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Default tool names.
const (
	DefaultConvert  = "convert"
	DefaultGif2WebP = "gif2webp"
)

// Exec builds the animation with ImageMagick's convert and then transcodes it with gif2webp.
type Exec struct {
	Convert  string
	Gif2WebP string
	Logger   *slog.Logger
}

var _ Encoder = (*Exec)(nil)

// Available reports whether both tools can be found.
func (e *Exec) Available() error {
	for _, tool := range []string{e.convert(), e.gif2webp()} {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("%w: %s", ErrToolNotFound, tool)
		}
	}
	return nil
}

// Encode runs `convert -delay D -loop 0 <frames> -scale SxS attp.gif` and
// `gif2webp attp.gif -o attp.webp` inside job.Dir and returns the WebP bytes.
func (e *Exec) Encode(ctx context.Context, job Job) (Output, error) {
	if err := job.validate(); err != nil {
		return Output{}, err
	}
	gifPath := filepath.Join(job.Dir, "attp.gif")
	webpPath := filepath.Join(job.Dir, "attp.webp")

	args := []string{"-delay", strconv.Itoa(job.Delay), "-loop", "0"}
	args = append(args, job.Frames...)
	args = append(args, "-scale", fmt.Sprintf("%dx%d", job.Size, job.Size), gifPath)
	if err := e.run(ctx, e.convert(), args...); err != nil {
		return Output{}, err
	}
	if err := e.run(ctx, e.gif2webp(), gifPath, "-o", webpPath); err != nil {
		return Output{}, err
	}

	data, err := os.ReadFile(webpPath)
	if err != nil {
		return Output{}, fmt.Errorf("read encoded webp: %w", err)
	}
	return Output{Data: data, Format: "webp"}, nil
}

// run blocks until the tool exits. A non-zero exit becomes a *ToolError;
// stderr of a successful run is only logged.
func (e *Exec) run(ctx context.Context, tool string, args ...string) error {
	path, err := exec.LookPath(tool)
	if err != nil {
		return &ToolError{Tool: tool, Args: args, ExitCode: -1, Err: fmt.Errorf("%w: %v", ErrToolNotFound, err)}
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &ToolError{Tool: tool, Args: args, ExitCode: code, Stderr: stderr.String(), Err: err}
	}
	if s := strings.TrimSpace(stderr.String()); s != "" {
		e.logger().Warn("encoder tool wrote to stderr", "tool", tool, "stderr", s)
	}
	return nil
}

func (e *Exec) convert() string {
	if e.Convert != "" {
		return e.Convert
	}
	return DefaultConvert
}

func (e *Exec) gif2webp() string {
	if e.Gif2WebP != "" {
		return e.Gif2WebP
	}
	return DefaultGif2WebP
}

func (e *Exec) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.DiscardHandler)
}
