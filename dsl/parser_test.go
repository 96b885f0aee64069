package dsl_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ByLCY/attp/dsl"
	"github.com/ByLCY/attp/layout"
	"github.com/ByLCY/attp/style"
)

const sampleJob = `
// 节日贴纸
job Greetings v1 {
  font Body "builtin:gobold"
  palette Warm = [#ff0000, #ff8800,
    #ffee00]
  emoji apple "emoji/apple.json"

  sticker blink font Body palette Warm out "out/${user.id}.webp" {
    "Hello, ${user.name}!"
  }
  sticker ttp color #00ff00 lineheight "+8px" { "still ${user.name|upper}" }; sticker walk brand noto { "walk" }
}
`

func TestParseJob(t *testing.T) {
	job, err := dsl.ParseString(sampleJob)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if job.Name != "Greetings" || job.Version != "v1" {
		t.Fatalf("unexpected header %s %s", job.Name, job.Version)
	}
	kinds := []string{"font", "palette", "emoji", "sticker", "sticker", "sticker"}
	if len(job.Entries) != len(kinds) {
		t.Fatalf("expected %d entries, got %d", len(kinds), len(job.Entries))
	}
	for i, want := range kinds {
		if got := job.Entries[i].Kind(); got != want {
			t.Fatalf("entry %d kind = %s, want %s", i, got, want)
		}
	}

	font := job.Entries[0].Font
	if font.Name != "Body" || font.Src != "builtin:gobold" {
		t.Fatalf("unexpected font %+v", font)
	}
	palette := job.Entries[1].Palette
	if strings.Join(palette.Colors, ",") != "#ff0000,#ff8800,#ffee00" {
		t.Fatalf("unexpected palette %v", palette.Colors)
	}
	if job.Entries[2].Emoji.Brand != "apple" || job.Entries[2].Emoji.Src != "emoji/apple.json" {
		t.Fatalf("unexpected emoji %+v", job.Entries[2].Emoji)
	}

	sticker := job.Entries[3].Sticker
	if sticker.Style != "blink" || sticker.Text != "Hello, ${user.name}!" {
		t.Fatalf("unexpected sticker %+v", sticker)
	}
	if v, ok := sticker.Option("palette"); !ok || v != "Warm" {
		t.Fatalf("palette option = %q %v", v, ok)
	}
	if v, _ := sticker.Option("out"); v != "out/${user.id}.webp" {
		t.Fatalf("out option = %q", v)
	}
	if _, ok := sticker.Option("color"); ok {
		t.Fatalf("color should be unset")
	}
	if v, _ := job.Entries[4].Sticker.Option("color"); v != "#00ff00" {
		t.Fatalf("color option = %q", v)
	}
	if v, _ := job.Entries[4].Sticker.Option("lineheight"); v != "+8px" {
		t.Fatalf("lineheight option = %q", v)
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		`job X v1 { sticker blink }`,
		`job X v1 { palette P = [red] }`,
		`job X v1 { sticker blink size 3 { "x" } }`,
		`doc X v1 { }`,
	}
	for _, src := range bad {
		if _, err := dsl.ParseString(src); err == nil {
			t.Fatalf("expected parse error for %q", src)
		}
	}
}

func TestCompile(t *testing.T) {
	job, err := dsl.ParseString(sampleJob)
	if err != nil {
		t.Fatal(err)
	}
	var data any
	if err := json.Unmarshal([]byte(`{"user":{"id":7,"name":"Ada"}}`), &data); err != nil {
		t.Fatal(err)
	}
	plan, err := dsl.Compile(job, data)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(plan.Fonts) != 1 || len(plan.Emoji) != 1 || len(plan.Stickers) != 3 {
		t.Fatalf("unexpected plan %+v", plan)
	}
	first := plan.Stickers[0]
	if first.Style != style.Blink || first.Text != "Hello, Ada!" || first.Out != "out/7.webp" {
		t.Fatalf("unexpected first sticker %+v", first)
	}
	if first.Family != "Body" || len(first.Palette) != 3 {
		t.Fatalf("options not applied: %+v", first)
	}
	still := plan.Stickers[1]
	if still.Style != style.Still || still.Text != "still ADA" {
		t.Fatalf("unexpected still sticker %+v", still)
	}
	if still.Color == nil || *still.Color != style.MustParsePalette("#00ff00")[0] {
		t.Fatalf("color = %v", still.Color)
	}
	if still.LineHeight == nil || *still.LineHeight != layout.Offset(8) {
		t.Fatalf("line height = %v", still.LineHeight)
	}
	if first.Color != nil || first.LineHeight != nil {
		t.Fatalf("unset options should stay nil: %+v", first)
	}
	if plan.Stickers[2].Brand != "noto" {
		t.Fatalf("brand = %q", plan.Stickers[2].Brand)
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []string{
		`job X v1 { sticker blink palette Nope { "x" } }`,
		`job X v1 { sticker sparkle { "x" } }`,
		`job X v1 { sticker blink { "${who}" } }`,
		`job X v1 { sticker blink lineheight "tall" { "x" } }`,
		`job X v1 { font A "a.ttf"; font A "b.ttf"; sticker blink { "x" } }`,
		`job X v1 { font A "a.ttf" }`,
	}
	for _, src := range cases {
		job, err := dsl.ParseString(src)
		if err != nil {
			t.Fatalf("parse %q: %v", src, err)
		}
		if _, err := dsl.Compile(job, map[string]any{}); err == nil {
			t.Fatalf("expected compile error for %q", src)
		}
	}
}
