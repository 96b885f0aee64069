package emoji

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIndexFind(t *testing.T) {
	family := "\U0001F468\u200D\U0001F469\u200D\U0001F467"
	ix := NewIndex("😀", "\U0001F468", family, "\u2764\uFE0F")
	if ix.Len() != 4 {
		t.Fatalf("Len() = %d", ix.Len())
	}

	text := "hi 😀 " + family + "!"
	got := ix.Find(text)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %+v", got)
	}
	if got[0].Glyph != "😀" || text[got[0].Offset:got[0].Offset+got[0].Length] != "😀" {
		t.Fatalf("first match = %+v", got[0])
	}
	// longest match wins over the single man
	if got[1].Glyph != family || got[1].Length != len(family) {
		t.Fatalf("second match = %+v", got[1])
	}
	if got[0].Offset >= got[1].Offset {
		t.Fatalf("matches out of order: %+v", got)
	}
}

func TestIndexVariationSelector(t *testing.T) {
	ix := NewIndex("\u2764\uFE0F") // stored with U+FE0F
	bare := "I \u2764 go"
	got := ix.Find(bare)
	if len(got) != 1 || got[0].Length != len("\u2764") || got[0].Glyph != "\u2764\uFE0F" {
		t.Fatalf("bare heart = %+v", got)
	}

	ix2 := NewIndex("\u2764") // stored without
	withVS := "I \u2764\uFE0F go"
	got = ix2.Find(withVS)
	if len(got) != 1 || got[0].Length != len("\u2764\uFE0F") || got[0].Glyph != "\u2764" {
		t.Fatalf("heart with selector = %+v", got)
	}

	if got := ix2.Find("\uFE0F"); len(got) != 0 {
		t.Fatalf("lone selector should not match: %+v", got)
	}
}

func TestIndexAdjacent(t *testing.T) {
	ix := NewIndex("🔥", "🎉")
	got := ix.Find("🔥🎉🔥")
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %+v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Offset != got[i-1].Offset+got[i-1].Length {
			t.Fatalf("matches should be back to back: %+v", got)
		}
	}
}

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoadJSONAndDecode(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString(pngBytes(t, color.RGBA{255, 0, 0, 255}))
	src := `{"apple": {"😀": "` + b64 + `"}, "google": {"🎉": "data:image/png;base64,` + b64 + `"}}`
	c, err := LoadJSON(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Brands(); len(got) != 2 || got[0] != "apple" {
		t.Fatalf("Brands() = %v", got)
	}
	images := c.ImagesFor("apple")
	if len(images) != 1 {
		t.Fatalf("ImagesFor(apple) = %v", images)
	}
	img, err := Decode(images["😀"])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	r, _, _, _ := img.At(1, 1).RGBA()
	if r>>8 != 255 {
		t.Fatalf("decoded pixel red = %d", r>>8)
	}
	if _, err := Decode(c.ImagesFor("google")["🎉"]); err != nil {
		t.Fatalf("data URL decode: %v", err)
	}
	if _, err := Decode("not base64!"); err == nil {
		t.Fatalf("bad base64 should fail")
	}
	if len(c.ImagesFor("samsung")) != 0 {
		t.Fatalf("unknown brand should be empty")
	}
	if c.Index().Len() != 2 {
		t.Fatalf("index over all brands should have 2 glyphs")
	}
}

func TestAddDir(t *testing.T) {
	dir := t.TempDir()
	data := pngBytes(t, color.RGBA{0, 0, 255, 255})
	for _, name := range []string{"1f600.png", "1f468-200d-1f469.png", "README.md", "zz.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	c := NewCache()
	n, err := c.AddDir(DefaultBrand, dir)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("added %d images, want 2", n)
	}
	images := c.ImagesFor(DefaultBrand)
	if _, ok := images["😀"]; !ok {
		t.Fatalf("missing 😀: %v", images)
	}
	if _, ok := images["\U0001F468\u200D\U0001F469"]; !ok {
		t.Fatalf("missing ZWJ sequence")
	}
}

func TestMerge(t *testing.T) {
	a := NewCache()
	a.Put(DefaultBrand, "x", "old")
	b := NewCache()
	b.Put(DefaultBrand, "x", "new")
	b.Put("noto", "y", "data")
	a.Merge(b)
	a.Merge(a)
	a.Merge(nil)
	if got := a.ImagesFor(DefaultBrand)["x"]; got != "new" {
		t.Fatalf("merged entry = %q", got)
	}
	if got := a.Brands(); len(got) != 2 {
		t.Fatalf("Brands() = %v", got)
	}
}
