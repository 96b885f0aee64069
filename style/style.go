// Package style computes the per-frame color parameters of each sticker style.
// Nothing here touches a layout; the values are inputs to the frame renderer.
package style

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Kind selects the visual treatment of a sticker.
type Kind int

const (
	Blink Kind = iota
	Gradient
	Walk
	Still
)

// GradientFrames is the fixed frame count of the gradient style.
const GradientFrames = 60

var kindNames = map[Kind]string{
	Blink:    "blink",
	Gradient: "gradient",
	Walk:     "walk",
	Still:    "ttp",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts blink, gradient, walk and ttp (alias still).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "blink", "attp":
		return Blink, nil
	case "gradient":
		return Gradient, nil
	case "walk":
		return Walk, nil
	case "ttp", "still":
		return Still, nil
	}
	return 0, fmt.Errorf("unknown style %q", s)
}

// Animated reports whether the style produces more than one frame.
func (k Kind) Animated() bool { return k != Still }

// Delay returns the per-frame delay in hundredths of a second.
func (k Kind) Delay() int {
	switch k {
	case Blink, Gradient:
		return 20
	case Walk:
		return 10
	default:
		return 0
	}
}

// FrameCount returns how many frames the style renders with the given palette.
func (k Kind) FrameCount(p Palette) int {
	switch k {
	case Gradient:
		return GradientFrames
	case Blink, Walk:
		return len(p)
	default:
		return 1
	}
}

// Param is the color state of one frame.
type Param struct {
	Kind    Kind
	Frame   int
	Total   int
	Color   color.RGBA // blink and still fill
	Palette Palette    // gradient and walk
}

// Params expands a style into its per-frame parameters. fill is used by the still style only.
func Params(kind Kind, p Palette, fill color.RGBA) ([]Param, error) {
	if kind != Still && len(p) == 0 {
		return nil, fmt.Errorf("style %s needs a non-empty palette", kind)
	}
	total := kind.FrameCount(p)
	params := make([]Param, total)
	for i := range params {
		params[i] = Param{Kind: kind, Frame: i, Total: total, Palette: p}
		switch kind {
		case Blink:
			params[i].Color = p[i]
		case Still:
			params[i].Color = fill
		}
	}
	return params, nil
}

// Stop is one color stop of the gradient brush. Offset may exceed 1; the brush drops such stops.
type Stop struct {
	Offset float64
	Color  color.RGBA
}

// GradientStops lays the palette out twice: at i/(n-1) and again at 0.5+i/(n-1).
func GradientStops(p Palette) []Stop {
	n := len(p)
	if n == 0 {
		return nil
	}
	step := 1.0
	if n > 1 {
		step = 1 / float64(n-1)
	}
	stops := make([]Stop, 0, 2*n)
	for i, c := range p {
		stops = append(stops, Stop{Offset: float64(i) * step, Color: c})
	}
	for i, c := range p {
		stops = append(stops, Stop{Offset: 0.5 + float64(i)*step, Color: c})
	}
	return stops
}

// GradientSpan returns the brush endpoints for a frame: the brush is twice the
// canvas wide and shifted right by frame/total of the canvas width.
func GradientSpan(frame, total int, width float64) (x0, x1 float64) {
	off := 0.0
	if total > 0 {
		off = float64(frame) / float64(total) * width
	}
	return -width + off, width + off
}

// WalkIndex returns the palette index of character charIndex in the given frame.
func WalkIndex(charIndex, frame, n int) int {
	if n <= 0 {
		return 0
	}
	i := (charIndex + frame) % n
	if i < 0 {
		i += n
	}
	return i
}

// Palette is an ordered list of colors.
type Palette []color.RGBA

// At returns the color at i modulo the palette length.
func (p Palette) At(i int) color.RGBA {
	if len(p) == 0 {
		return color.RGBA{A: 0xff}
	}
	return p[WalkIndex(i, 0, len(p))]
}

// DefaultPalette is the 21-color set used by blink, gradient and walk.
var DefaultPalette = MustParsePalette(
	"#26c4dc", "#792138", "#8b6990", "#f0b330", "#ae8774", "#5696ff", "#ff7b6b",
	"#57c9ff", "#243640", "#b6b327", "#c69fcc", "#54c265", "#6e257e", "#c1a03f",
	"#90a841", "#7acba5", "#8294ca", "#a62c71", "#ff8a8c", "#7e90a3", "#74676a",
)

// DefaultStillColor is the fill of the still style.
var DefaultStillColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// ParsePalette parses a list of hex colors.
func ParsePalette(values []string) (Palette, error) {
	p := make(Palette, 0, len(values))
	for _, v := range values {
		c, err := ParseColor(v)
		if err != nil {
			return nil, err
		}
		p = append(p, c)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("palette is empty")
	}
	return p, nil
}

// MustParsePalette is ParsePalette for package-level palettes.
func MustParsePalette(values ...string) Palette {
	p, err := ParsePalette(values)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseColor parses #rgb, #rrggbb or #rrggbbaa.
func ParseColor(value string) (color.RGBA, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) == 6 {
		v += "ff"
	}
	if len(v) != 8 {
		return color.RGBA{}, fmt.Errorf("color %q cannot be parsed", value)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q cannot be parsed: %w", value, err)
	}
	return color.RGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
