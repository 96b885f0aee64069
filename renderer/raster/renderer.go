package rasterrenderer

import (
	"cmp"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"slices"
	"sync"
	"unicode/utf8"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	xdraw "golang.org/x/image/draw"

	"github.com/ByLCY/attp/fonts"
	"github.com/ByLCY/attp/layout"
	"github.com/ByLCY/attp/renderer"
	"github.com/ByLCY/attp/style"
)

// Fraction of the font size between the still baseline and the top of an emoji.
const stillEmojiRise = 0.85

// Renderer draws sticker frames via github.com/gogpu/gg on the CPU.
type Renderer struct {
	fonts *fonts.Registry

	mu      sync.Mutex
	sources map[string]*text.FontSource
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

// NewRenderer creates a renderer resolving font families through reg.
// A nil registry falls back to the built-in fonts only.
func NewRenderer(reg *fonts.Registry) *Renderer {
	if reg == nil {
		reg = fonts.NewRegistry()
	}
	return &Renderer{fonts: reg, sources: map[string]*text.FontSource{}}
}

// Close releases the parsed font sources.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for name, src := range r.sources {
		if err := src.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close font %s: %w", name, err))
		}
		delete(r.sources, name)
	}
	return errors.Join(errs...)
}

// Face returns the face of family at size px, parsing the font on first use.
func (r *Renderer) Face(font layout.FontSpec) (text.Face, error) {
	family := font.Family
	if family == "" {
		family = fonts.DefaultFamily
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if src, ok := r.sources[family]; ok {
		return src.Face(font.Size), nil
	}
	data, ok := r.fonts.Lookup(family)
	if !ok {
		return nil, fmt.Errorf("unknown font family %q", family)
	}
	src, err := text.NewFontSource(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", family, err)
	}
	r.sources[family] = src
	return src.Face(font.Size), nil
}

// Measure implements layout.Measurer. Unknown families measure as zero width;
// callers resolve the face first to surface the error.
func (r *Renderer) Measure(s string, font layout.FontSpec) float64 {
	face, err := r.Face(font)
	if err != nil {
		return 0
	}
	return face.Advance(s)
}

// Render draws one frame of f.Layout with the colors of f.Param.
func (r *Renderer) Render(f renderer.Frame) (image.Image, error) {
	if f.Layout == nil {
		return nil, errors.New("raster: layout is nil")
	}
	face, err := r.Face(f.Layout.Font)
	if err != nil {
		return nil, err
	}

	side := renderer.CanvasSize(f.Param.Kind)
	dc := gg.NewContext(side, side)
	defer dc.Close()

	d := &drawer{
		dc:     dc,
		face:   face,
		parsed: face.Source().Parsed(),
		ext:    text.NewOutlineExtractor(),
		frame:  f,
		side:   float64(side),
	}
	if err := d.draw(); err != nil {
		return nil, err
	}

	// copy out of the context so the frame outlives it
	src := dc.Image()
	out := image.NewRGBA(src.Bounds())
	xdraw.Draw(out, out.Bounds(), src, src.Bounds().Min, xdraw.Src)
	return out, nil
}

// RenderPNG renders a frame and writes it as PNG.
func (r *Renderer) RenderPNG(w io.Writer, f renderer.Frame) error {
	img, err := r.Render(f)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

type drawer struct {
	dc     *gg.Context
	face   text.Face
	parsed text.ParsedFont
	ext    *text.OutlineExtractor
	frame  renderer.Frame
	side   float64

	brush     gg.Brush
	charIndex int
}

func (d *drawer) draw() error {
	l := d.frame.Layout
	p := d.frame.Param
	switch p.Kind {
	case style.Gradient:
		d.brush = gradientBrush(p, d.side)
	case style.Blink, style.Still:
		d.brush = gg.Solid(gg.FromColor(p.Color))
	}

	top := l.BlockTop(d.side)
	ascent := d.face.Metrics().Ascent
	for i, line := range l.Lines {
		rowTop := top + float64(i)*l.LineHeight
		// animated styles hang the text from the row top; the still style sits on an alphabetic baseline
		baseline := rowTop + ascent
		emojiY := rowTop + (l.LineHeight - l.FontSize)
		if p.Kind == style.Still {
			baseline = rowTop + l.FontSize
			emojiY = baseline - stillEmojiRise*l.FontSize
		}

		x := line.StartX(d.side)
		for _, tok := range line {
			switch tok.Kind {
			case layout.TokenWord:
				if err := d.word(tok.Content, x, baseline); err != nil {
					return err
				}
			case layout.TokenWhitespace:
				d.charIndex += utf8.RuneCountInString(tok.Content)
			case layout.TokenEmoji:
				d.emoji(tok, x, emojiY)
			}
			x += tok.Width
		}
	}
	return nil
}

func (d *drawer) word(s string, x, baseline float64) error {
	if d.frame.Param.Kind != style.Walk {
		return d.paint(d.outline(s, x, baseline), d.brush)
	}
	for _, r := range s {
		ch := string(r)
		fill := gg.Solid(gg.FromColor(d.frame.Param.Palette.At(style.WalkIndex(d.charIndex, d.frame.Param.Frame, len(d.frame.Param.Palette)))))
		if err := d.paint(d.outline(ch, x, baseline), fill); err != nil {
			return err
		}
		x += d.face.Advance(ch)
		d.charIndex++
	}
	return nil
}

// paint strokes the outline in black (animated styles only) and then fills it.
func (d *drawer) paint(p *gg.Path, fill gg.Brush) error {
	if d.frame.Param.Kind != style.Still {
		d.dc.SetStrokeBrush(gg.Solid(gg.Black))
		d.dc.SetLineWidth(d.frame.Layout.FontSize / 10)
		d.dc.SetLineJoin(gg.LineJoinRound)
		if err := d.dc.StrokePath(p); err != nil {
			return fmt.Errorf("stroke text: %w", err)
		}
	}
	d.dc.SetFillBrush(fill)
	d.dc.SetFillRule(gg.FillRuleNonZero)
	if err := d.dc.FillPath(p); err != nil {
		return fmt.Errorf("fill text: %w", err)
	}
	return nil
}

// outline builds the glyph contours of s with its origin at (x, baseline).
func (d *drawer) outline(s string, x, baseline float64) *gg.Path {
	path := gg.NewPath()
	for g := range d.face.Glyphs(s) {
		o, err := d.ext.ExtractOutline(d.parsed, g.GID, d.face.Size())
		if err != nil || o == nil || o.IsEmpty() {
			continue
		}
		gx, gy := x+g.X, baseline+g.Y
		open := false
		for _, seg := range o.Segments {
			pt := func(i int) (float64, float64) {
				return gx + float64(seg.Points[i].X), gy + float64(seg.Points[i].Y)
			}
			switch seg.Op {
			case text.OutlineOpMoveTo:
				if open {
					path.Close()
				}
				path.MoveTo(pt(0))
				open = true
			case text.OutlineOpLineTo:
				path.LineTo(pt(0))
			case text.OutlineOpQuadTo:
				cx, cy := pt(0)
				ex, ey := pt(1)
				path.QuadraticTo(cx, cy, ex, ey)
			case text.OutlineOpCubicTo:
				c1x, c1y := pt(0)
				c2x, c2y := pt(1)
				ex, ey := pt(2)
				path.CubicTo(c1x, c1y, c2x, c2y, ex, ey)
			}
		}
		if open {
			path.Close()
		}
	}
	return path
}

func (d *drawer) emoji(tok layout.Token, x, y float64) {
	img, ok := d.frame.Emoji[tok.Glyph]
	if !ok || img == nil {
		return
	}
	size := d.frame.Layout.FontSize
	d.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:             x,
		Y:             y,
		DstWidth:      size,
		DstHeight:     size,
		Interpolation: gg.InterpBilinear,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})
}

// Gap inserted between stops that share an offset.
const stopGap = 1e-6

// gradientBrush spans twice the canvas width and is shifted by frame/total of it.
func gradientBrush(p style.Param, width float64) gg.Brush {
	x0, x1 := style.GradientSpan(p.Frame, p.Total, width)
	b := gg.NewLinearGradientBrush(x0, 0, x1, 0)
	for _, s := range brushStops(style.GradientStops(p.Palette)) {
		b.AddColorStop(s.Offset, s.Color)
	}
	return b
}

// brushStops drops stops past the end of the gradient and gives every stop a
// distinct offset, so the brush does not depend on how ties are sorted.
// At a shared offset the earlier stop ends the segment on its left and the
// later one starts the segment on its right; at offset 1 the later stop wins.
func brushStops(stops []style.Stop) []gg.ColorStop {
	out := make([]gg.ColorStop, 0, len(stops))
	for _, s := range stops {
		if s.Offset > 1 {
			continue
		}
		out = append(out, gg.ColorStop{Offset: max(s.Offset, 0), Color: gg.FromColor(s.Color)})
	}
	slices.SortStableFunc(out, func(a, b gg.ColorStop) int { return cmp.Compare(a.Offset, b.Offset) })
	for i := 1; i < len(out); i++ {
		if out[i].Offset > out[i-1].Offset {
			continue
		}
		if out[i].Offset >= 1 {
			out[i-1] = out[i]
			out = slices.Delete(out, i, i+1)
			i--
			continue
		}
		out[i].Offset = min(out[i-1].Offset+stopGap, 1)
	}
	return out
}
