package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/attp/fonts"
	"github.com/ByLCY/attp/layout"
	"github.com/ByLCY/attp/renderer"
	"github.com/ByLCY/attp/style"
)

// 辅助框线宽（mm）。
const guideWidth = 0.2

// Renderer 基于 github.com/tdewolff/canvas 将排版结果输出为单页矢量 PDF 校样。
// 页面即贴纸画布，px 按 96 dpi 换算为 mm。
type Renderer struct {
	fonts  *fonts.Registry
	guides bool

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily
}

var _ layout.Measurer = (*Renderer)(nil)

// Options 配置校样渲染器。
type Options struct {
	Fonts  *fonts.Registry
	Guides bool // 描出每行的外框与表情占位
}

// Meta 写入 PDF 文档信息。
type Meta struct {
	Title    string
	Subject  string
	Author   string
	Creator  string
	Keywords []string
}

// NewRenderer 创建带辅助框的校样渲染器。
func NewRenderer(reg *fonts.Registry) *Renderer {
	return NewRendererWithOptions(Options{Fonts: reg, Guides: true})
}

// NewRendererWithOptions 按选项创建校样渲染器。
func NewRendererWithOptions(opts Options) *Renderer {
	reg := opts.Fonts
	if reg == nil {
		reg = fonts.NewRegistry()
	}
	return &Renderer{
		fonts:        reg,
		guides:       opts.Guides,
		fontFamilies: map[string]*canvas.FontFamily{},
	}
}

// Render 将 l 按 kind 对应的画布尺寸渲染为 PDF 字节。
func (r *Renderer) Render(l *layout.Layout, kind style.Kind, meta Meta) ([]byte, error) {
	if l == nil {
		return nil, fmt.Errorf("布局结果为空")
	}
	sidePx := float64(renderer.CanvasSize(kind))
	side := toMm(sidePx)

	var buf bytes.Buffer
	writer := pdf.New(&buf, side, side, nil)
	r.applyMeta(writer, meta)

	c := canvas.New(side, side)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	if err := r.drawLayout(ctx, l, kind, sidePx); err != nil {
		return nil, err
	}
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta Meta) {
	if writer == nil {
		return
	}
	creator := meta.Creator
	if creator == "" {
		creator = "attp"
	}
	writer.SetInfo(meta.Title, meta.Subject, strings.Join(meta.Keywords, ", "), meta.Author, creator)
}

// Measure 实现 layout.Measurer，使用 canvas 的字体度量并换算回 px。
func (r *Renderer) Measure(s string, font layout.FontSpec) float64 {
	face, err := r.fontFace(font.Family, font.Size, color.Black)
	if err != nil {
		return 0
	}
	return face.TextWidth(s) * layout.MmToPx
}

func (r *Renderer) drawLayout(ctx *canvas.Context, l *layout.Layout, kind style.Kind, sidePx float64) error {
	// 白色底
	ctx.SetFillColor(canvas.White)
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.DrawPath(0, 0, canvas.Rectangle(toMm(sidePx), toMm(sidePx)))

	face, err := r.fontFace(l.Font.Family, l.FontSize, color.Black)
	if err != nil {
		return err
	}
	ascent := face.Metrics().Ascent

	top := l.BlockTop(sidePx)
	for i, line := range l.Lines {
		rowTop := top + float64(i)*l.LineHeight
		x := line.StartX(sidePx)
		baseline := toMm(rowTop) + ascent
		emojiY := rowTop + l.LineHeight - l.FontSize
		if kind == style.Still {
			baseline = toMm(rowTop + l.FontSize)
			emojiY = rowTop + l.FontSize*(1-0.85)
		}
		if r.guides {
			r.drawGuide(ctx, x, rowTop, line.Width(), l.LineHeight, canvas.Hex("#d0d0d0"))
		}
		for _, tok := range line {
			switch tok.Kind {
			case layout.TokenWord:
				ctx.DrawText(toMm(x), baseline, canvas.NewTextLine(face, tok.Content, canvas.Left))
			case layout.TokenEmoji:
				r.drawGuide(ctx, x, emojiY, l.FontSize, l.FontSize, canvas.Hex("#f0b330"))
			}
			x += tok.Width
		}
	}
	return nil
}

// drawGuide 描出以 px 表示的矩形。
func (r *Renderer) drawGuide(ctx *canvas.Context, x, y, w, h float64, stroke color.Color) {
	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeColor(stroke)
	ctx.SetStrokeWidth(guideWidth)
	ctx.DrawPath(toMm(x), toMm(y), canvas.Rectangle(toMm(w), toMm(h)))
}

// fontFace 返回字号为 sizePx 的字体面。
func (r *Renderer) fontFace(family string, sizePx float64, col color.Color) (*canvas.FontFace, error) {
	fam, err := r.ensureFontFamily(family)
	if err != nil {
		return nil, err
	}
	return fam.Face(layout.PxToPt(sizePx), col, canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(name string) (*canvas.FontFamily, error) {
	if name == "" {
		name = fonts.DefaultFamily
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if fam, ok := r.fontFamilies[name]; ok {
		return fam, nil
	}
	data, ok := r.fonts.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("找不到字体 %s", name)
	}
	fam := canvas.NewFontFamily(name)
	// 注册表中的字体已是粗体字形
	if err := fam.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", name, err)
	}
	r.fontFamilies[name] = fam
	return fam, nil
}

func toMm(px float64) float64 { return px * layout.PxToMm }
