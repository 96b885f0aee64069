package layout

import "fmt"

// Measurer 负责在给定字体下测量字符串的像素宽度，结果需对同一字体稳定。
type Measurer interface {
	Measure(s string, font FontSpec) float64
}

// MeasureFunc 是绑定了字体的测量函数。
type MeasureFunc func(s string) float64

// FitOptions 描述自适应字号的搜索区间与可用区域（单位 px）。
type FitOptions struct {
	Family     string
	Width      float64
	Height     float64
	StartSize  float64
	Step       float64
	MinSize    float64
	LineHeight LineHeightSpec
}

// 动图与静图的画布参数。
const (
	AnimatedCanvas  = 512
	AnimatedPadding = 40
	StillCanvas     = 500
	StillPadding    = 50
)

// AnimatedFit 返回动图（512×512，边距 40）使用的参数：120px 起每次减 4，行高 1.2 倍。
func AnimatedFit(family string) FitOptions {
	avail := float64(AnimatedCanvas - 2*AnimatedPadding)
	return FitOptions{
		Family:     family,
		Width:      avail,
		Height:     avail,
		StartSize:  120,
		Step:       4,
		MinSize:    12,
		LineHeight: Factor(1.2),
	}
}

// StillFit 返回静图（500×500，边距 50）使用的参数：100px 起每次减 2，行高为字号 +10。
func StillFit(family string) FitOptions {
	avail := float64(StillCanvas - 2*StillPadding)
	return FitOptions{
		Family:     family,
		Width:      avail,
		Height:     avail,
		StartSize:  100,
		Step:       2,
		MinSize:    12,
		LineHeight: Offset(10),
	}
}

func (o FitOptions) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("可用区域必须为正数: %gx%g", o.Width, o.Height)
	}
	if o.Step <= 0 {
		return fmt.Errorf("字号步长必须为正数: %g", o.Step)
	}
	if o.MinSize <= 0 || o.StartSize < o.MinSize {
		return fmt.Errorf("字号区间无效: %g → %g", o.StartSize, o.MinSize)
	}
	if lh := o.LineHeight.Resolve(o.MinSize); lh <= 0 {
		return fmt.Errorf("最小字号 %g 下行高 %s 不为正数", o.MinSize, o.LineHeight)
	}
	return nil
}
