package canvasrenderer

import (
	"bytes"
	"math"
	"testing"

	"github.com/ByLCY/attp/fonts"
	"github.com/ByLCY/attp/layout"
	"github.com/ByLCY/attp/style"
)

func TestMeasureScalesWithSize(t *testing.T) {
	r := NewRenderer(nil)
	a := r.Measure("sticker", layout.FontSpec{Family: fonts.DefaultFamily, Size: 30})
	b := r.Measure("sticker", layout.FontSpec{Family: fonts.DefaultFamily, Size: 60})
	if a <= 0 {
		t.Fatalf("width = %g", a)
	}
	if math.Abs(b/a-2) > 0.05 {
		t.Fatalf("width should double with size: %g → %g", a, b)
	}
	if w := r.Measure("x", layout.FontSpec{Family: "Missing", Size: 30}); w != 0 {
		t.Fatalf("unknown family should measure 0, got %g", w)
	}
}

func TestRenderProofPDF(t *testing.T) {
	r := NewRenderer(fonts.NewRegistry())
	glyph := "😀"
	text := "proof " + glyph
	matches := []layout.EmojiMatch{{Offset: len("proof "), Length: len(glyph), Glyph: glyph}}
	l, err := layout.Fit(text, matches, layout.AnimatedFit(fonts.DefaultFamily), r)
	if err != nil {
		t.Fatal(err)
	}
	for _, kind := range []style.Kind{style.Blink, style.Still} {
		data, err := r.Render(l, kind, Meta{Title: text})
		if err != nil {
			t.Fatalf("render %s: %v", kind, err)
		}
		if !bytes.HasPrefix(data, []byte("%PDF")) {
			t.Fatalf("output is not a PDF: %q", data[:min(8, len(data))])
		}
	}
	if _, err := r.Render(nil, style.Blink, Meta{}); err == nil {
		t.Fatalf("nil layout should fail")
	}
}

func TestRenderUnknownFamily(t *testing.T) {
	r := NewRendererWithOptions(Options{})
	l := &layout.Layout{Font: layout.FontSpec{Family: "Missing", Size: 40}, FontSize: 40, LineHeight: 48,
		Lines: []layout.Line{{{Kind: layout.TokenWord, Content: "x", Width: 20}}}}
	if _, err := r.Render(l, style.Blink, Meta{}); err == nil {
		t.Fatalf("unknown family should fail")
	}
}
