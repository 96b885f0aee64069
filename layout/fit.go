package layout

import "fmt"

// Fit 从 StartSize 开始按 Step 递减尝试字号，返回第一个（即最大的）能放进可用区域的布局。
// 接受条件：行数 × 行高 <= Height，且每行宽度 <= Width。
// 若区间内没有可接受的字号，返回最后尝试的（最小字号）布局，Fits 为 false，不返回错误。
func Fit(text string, matches []EmojiMatch, opts FitOptions, m Measurer) (*Layout, error) {
	if m == nil {
		return nil, fmt.Errorf("measurer 不能为空")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	var last *Layout
	for size := opts.StartSize; size >= opts.MinSize; size -= opts.Step {
		font := FontSpec{Family: opts.Family, Size: size}
		measure := func(s string) float64 { return m.Measure(s, font) }
		candidate := &Layout{
			Lines:      Pack(Segment(text, matches, measure, size), opts.Width),
			FontSize:   size,
			LineHeight: opts.LineHeight.Resolve(size),
			Font:       font,
		}
		if candidate.Height() <= opts.Height && candidate.MaxLineWidth() <= opts.Width {
			candidate.Fits = true
			return candidate, nil
		}
		last = candidate
	}
	return last, nil
}
