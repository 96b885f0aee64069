package layout

import "unicode/utf8"

// stubMeasurer 是测试用的等宽测量：每个字符宽 size × ratio。
type stubMeasurer struct {
	ratio float64
}

func (s stubMeasurer) Measure(text string, font FontSpec) float64 {
	ratio := s.ratio
	if ratio == 0 {
		ratio = 0.5
	}
	return float64(utf8.RuneCountInString(text)) * font.Size * ratio
}

func fixedMeasure(perRune float64) MeasureFunc {
	return func(s string) float64 { return float64(utf8.RuneCountInString(s)) * perRune }
}
