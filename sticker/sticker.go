// Package sticker drives a full sticker request: fit the text once, render
// every frame in parallel, and hand the ordered frame files to an encoder.
package sticker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/attp/emoji"
	"github.com/ByLCY/attp/encoder"
	"github.com/ByLCY/attp/layout"
	"github.com/ByLCY/attp/renderer"
	"github.com/ByLCY/attp/style"
)

// Config holds the per-process settings of a Generator.
type Config struct {
	WorkDir     string          // parent of the per-request working directories; empty means os.TempDir()
	Encoder     encoder.Encoder // required by Animate
	Concurrency int             // frame workers; <= 0 means runtime.NumCPU()
	Brand       string          // emoji image set; empty means emoji.DefaultBrand
	Logger      *slog.Logger
}

// ImageSource resolves the emoji images of a brand (glyph → base64).
type ImageSource interface {
	ImagesFor(brand string) map[string]string
}

// Request is one sticker to render.
type Request struct {
	Text    string
	Style   style.Kind
	Family  string
	Palette style.Palette // nil means style.DefaultPalette
	Color   *color.RGBA   // still fill; nil means style.DefaultStillColor
	Brand   string        // emoji image set; empty means Config.Brand

	// LineHeight overrides the line-height rule of the style preset.
	LineHeight *layout.LineHeightSpec
}

// Result is an encoded sticker.
type Result struct {
	Data   []byte
	Format string
	Layout *layout.Layout
	Frames int
	Delay  int // hundredths of a second
}

// Generator renders stickers. It is safe for concurrent use.
type Generator struct {
	cfg      Config
	renderer renderer.Renderer
	finder   emoji.Finder
	images   ImageSource
	log      *slog.Logger
}

// New creates a Generator. finder and images may be nil, in which case no emoji are recognised.
func New(r renderer.Renderer, finder emoji.Finder, images ImageSource, cfg Config) *Generator {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	if cfg.Brand == "" {
		cfg.Brand = emoji.DefaultBrand
	}
	return &Generator{cfg: cfg, renderer: r, finder: finder, images: images, log: log}
}

// Render dispatches to Still or Animate depending on the style.
func (g *Generator) Render(ctx context.Context, req Request) (*Result, error) {
	if req.Style == style.Still {
		return g.Still(ctx, req)
	}
	return g.Animate(ctx, req)
}

// Blink renders text with one palette color per frame.
func (g *Generator) Blink(ctx context.Context, text, family string) (*Result, error) {
	return g.Animate(ctx, Request{Text: text, Style: style.Blink, Family: family})
}

// Gradient renders text filled with a scrolling gradient built from p.
func (g *Generator) Gradient(ctx context.Context, text, family string, p style.Palette) (*Result, error) {
	return g.Animate(ctx, Request{Text: text, Style: style.Gradient, Family: family, Palette: p})
}

// Walk renders text whose characters cycle through the palette.
func (g *Generator) Walk(ctx context.Context, text, family string) (*Result, error) {
	return g.Animate(ctx, Request{Text: text, Style: style.Walk, Family: family})
}

// Still renders the single-frame variant and returns PNG bytes.
func (g *Generator) Still(ctx context.Context, req Request) (*Result, error) {
	req.Style = style.Still
	imgs, l, err := g.Frames(ctx, req)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, imgs[0]); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return &Result{Data: buf.Bytes(), Format: "png", Layout: l, Frames: 1}, nil
}

// Animate renders all frames into a fresh working directory and encodes them.
// The directory is removed afterwards whether or not encoding succeeded.
func (g *Generator) Animate(ctx context.Context, req Request) (*Result, error) {
	if !req.Style.Animated() {
		return nil, fmt.Errorf("style %s is not animated", req.Style)
	}
	if g.cfg.Encoder == nil {
		return nil, errors.New("sticker: no encoder configured")
	}
	job, err := g.prepare(req)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(g.cfg.WorkDir, "attp-*")
	if err != nil {
		return nil, fmt.Errorf("create working directory: %w", err)
	}
	defer g.cleanup(dir)

	paths := make([]string, len(job.params))
	width := max(2, len(strconv.Itoa(len(job.params)-1)))
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("frame%0*d.png", width, i))
	}
	err = g.each(ctx, job, func(i int, img image.Image) error {
		return writePNG(paths[i], img)
	})
	if err != nil {
		return nil, err
	}

	out, err := g.cfg.Encoder.Encode(ctx, encoder.Job{
		Dir:    dir,
		Frames: paths,
		Delay:  req.Style.Delay(),
		Size:   renderer.CanvasSize(req.Style),
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s sticker: %w", req.Style, err)
	}
	g.log.Debug("sticker encoded", "style", req.Style.String(), "frames", len(paths), "bytes", len(out.Data), "format", out.Format)
	return &Result{
		Data:   out.Data,
		Format: out.Format,
		Layout: job.layout,
		Frames: len(paths),
		Delay:  req.Style.Delay(),
	}, nil
}

// Frames renders every frame of req in memory, in frame order.
func (g *Generator) Frames(ctx context.Context, req Request) ([]image.Image, *layout.Layout, error) {
	job, err := g.prepare(req)
	if err != nil {
		return nil, nil, err
	}
	imgs := make([]image.Image, len(job.params))
	err = g.each(ctx, job, func(i int, img image.Image) error {
		imgs[i] = img
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return imgs, job.layout, nil
}

// frameJob is the immutable input shared by all frames of one request.
type frameJob struct {
	layout *layout.Layout
	emoji  map[string]image.Image
	params []style.Param
}

func (g *Generator) prepare(req Request) (*frameJob, error) {
	if g.renderer == nil {
		return nil, errors.New("sticker: no renderer configured")
	}
	text := norm.NFC.String(req.Text)
	var matches []layout.EmojiMatch
	if g.finder != nil {
		matches = g.finder.Find(text)
	}

	opts := layout.AnimatedFit(req.Family)
	if req.Style == style.Still {
		opts = layout.StillFit(req.Family)
	}
	if req.LineHeight != nil {
		opts.LineHeight = *req.LineHeight
	}
	l, err := layout.Fit(text, matches, opts, g.renderer)
	if err != nil {
		return nil, fmt.Errorf("fit text: %w", err)
	}
	if !l.Fits {
		g.log.Debug("text overflows at the minimum size", "size", l.FontSize, "lines", len(l.Lines))
	}

	palette := req.Palette
	if len(palette) == 0 {
		palette = style.DefaultPalette
	}
	fill := style.DefaultStillColor
	if req.Color != nil {
		fill = *req.Color
	}
	params, err := style.Params(req.Style, palette, fill)
	if err != nil {
		return nil, err
	}
	brand := req.Brand
	if brand == "" {
		brand = g.cfg.Brand
	}
	return &frameJob{layout: l, emoji: g.decodeEmoji(l, brand), params: params}, nil
}

// decodeEmoji decodes the images of the emoji used by l once per request.
// Missing or undecodable images are skipped.
func (g *Generator) decodeEmoji(l *layout.Layout, brand string) map[string]image.Image {
	out := map[string]image.Image{}
	if g.images == nil {
		return out
	}
	var sources map[string]string
	for _, line := range l.Lines {
		for _, tok := range line {
			if tok.Kind != layout.TokenEmoji {
				continue
			}
			if _, done := out[tok.Glyph]; done {
				continue
			}
			if sources == nil {
				sources = g.images.ImagesFor(brand)
			}
			data, ok := sources[tok.Glyph]
			if !ok {
				continue
			}
			img, err := emoji.Decode(data)
			if err != nil {
				g.log.Warn("skip undecodable emoji", "glyph", tok.Glyph, "brand", brand, "err", err)
				continue
			}
			out[tok.Glyph] = img
		}
	}
	return out
}

// each renders all frames on a bounded pool and returns once every frame is done.
// The first failure cancels the frames that have not started.
func (g *Generator) each(ctx context.Context, job *frameJob, sink func(i int, img image.Image) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Concurrency)
	for i, p := range job.params {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := g.renderer.Render(renderer.Frame{Layout: job.layout, Param: p, Emoji: job.emoji})
			if err != nil {
				return fmt.Errorf("render frame %d: %w", i, err)
			}
			return sink(i, img)
		})
	}
	return eg.Wait()
}

func (g *Generator) cleanup(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		g.log.Warn("failed to remove working directory", "dir", dir, "err", err)
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode frame %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
