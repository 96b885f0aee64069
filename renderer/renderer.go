package renderer

import (
	"image"

	"github.com/ByLCY/attp/layout"
	"github.com/ByLCY/attp/style"
)

// Renderer 将布局结果绘制为一帧位图，同时提供与绘制一致的文本测量。
// 实现必须允许多个 goroutine 并发调用 Render 与 Measure。
type Renderer interface {
	layout.Measurer
	Render(f Frame) (image.Image, error)
}

// Frame 是绘制一帧所需的全部输入，均为只读共享数据。
type Frame struct {
	Layout *layout.Layout
	Param  style.Param
	Emoji  map[string]image.Image // 表情 glyph → 已解码图片；缺失的表情直接跳过
}

// CanvasSize 返回样式对应的正方形画布边长（px）。
func CanvasSize(k style.Kind) int {
	if k == style.Still {
		return layout.StillCanvas
	}
	return layout.AnimatedCanvas
}
