package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit conversions and the line-height rule used by the solver.

// Conversion constants between pt, mm and CSS px (96 dpi).
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	PxToMm = 25.4 / 96
	MmToPx = 1.0 / PxToMm
)

// PxToPt converts CSS pixels to points.
func PxToPt(px float64) float64 { return px * PxToMm * MmToPt }

// LineHeightKind distinguishes factor-based vs offset-based line height.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightOffset
)

// LineHeightSpec is either a multiple of the font size (1.2x) or the font size plus a fixed offset (+10px).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Offset float64        `json:"offset,omitempty"`
}

// Factor returns a factor line-height spec.
func Factor(f float64) LineHeightSpec { return LineHeightSpec{Kind: LineHeightFactor, Factor: f} }

// Offset returns an offset line-height spec.
func Offset(px float64) LineHeightSpec { return LineHeightSpec{Kind: LineHeightOffset, Offset: px} }

// Resolve computes the line height in px for the given font size in px.
func (s LineHeightSpec) Resolve(fontSize float64) float64 {
	switch s.Kind {
	case LineHeightFactor:
		return fontSize * s.Factor
	case LineHeightOffset:
		return fontSize + s.Offset
	default:
		return fontSize * 1.2
	}
}

func (s LineHeightSpec) String() string {
	if s.Kind == LineHeightOffset {
		return fmt.Sprintf("%+gpx", s.Offset)
	}
	return fmt.Sprintf("%gx", s.Factor)
}

// ParseLineHeight parses "1.2x" (factor) or "+10" / "+10px" / "-4px" (offset).
// It accepts the output of LineHeightSpec.String.
func ParseLineHeight(value string) (LineHeightSpec, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.HasPrefix(v, "+"), strings.HasPrefix(v, "-"):
		o, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
		if err != nil {
			return LineHeightSpec{}, fmt.Errorf("无效的行高偏移 %q", value)
		}
		return Offset(o), nil
	case strings.HasSuffix(v, "x"):
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64)
		if err != nil || f <= 0 {
			return LineHeightSpec{}, fmt.Errorf("无效的行高倍数 %q", value)
		}
		return Factor(f), nil
	default:
		return LineHeightSpec{}, fmt.Errorf("无法识别的行高 %q（应为 1.2x 或 +10px）", value)
	}
}
