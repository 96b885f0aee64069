package dsl

import (
	"fmt"
	"image/color"

	"github.com/ByLCY/attp/binding"
	"github.com/ByLCY/attp/layout"
	"github.com/ByLCY/attp/style"
)

// Plan 是绑定数据后的任务，可直接交给贴纸生成器执行。
type Plan struct {
	Name     string
	Version  string
	Fonts    []FontSource
	Emoji    []EmojiSource
	Stickers []Sticker
}

// FontSource 是待注册的字体。
type FontSource struct {
	Family string
	Src    string
}

// EmojiSource 是待加载的表情图片来源（JSON 缓存文件或目录）。
type EmojiSource struct {
	Brand string
	Src   string
}

// Sticker 是一张待生成的贴纸。
type Sticker struct {
	Line    int
	Style   style.Kind
	Text    string
	Family  string
	Palette style.Palette
	Color   *color.RGBA // 未设置时为 nil
	Brand   string
	Out     string

	LineHeight *layout.LineHeightSpec // 未设置时沿用样式预设
}

// Compile 校验任务并将 ${} 占位符替换为 data 中的值。
// 调色板必须先声明后引用；未解析的占位符会导致错误。
func Compile(job *Job, data any) (*Plan, error) {
	if job == nil {
		return nil, fmt.Errorf("任务为空")
	}
	plan := &Plan{Name: job.Name, Version: job.Version}
	palettes := map[string]style.Palette{}
	fontsSeen := map[string]bool{}

	for _, entry := range job.Entries {
		switch {
		case entry.Font != nil:
			decl := entry.Font
			if fontsSeen[decl.Name] {
				return nil, fmt.Errorf("第 %d 行: 字体 %s 重复声明", decl.Pos.Line, decl.Name)
			}
			fontsSeen[decl.Name] = true
			plan.Fonts = append(plan.Fonts, FontSource{Family: decl.Name, Src: string(decl.Src)})
		case entry.Palette != nil:
			decl := entry.Palette
			p, err := style.ParsePalette(decl.Colors)
			if err != nil {
				return nil, fmt.Errorf("第 %d 行: 调色板 %s: %w", decl.Pos.Line, decl.Name, err)
			}
			palettes[decl.Name] = p
		case entry.Emoji != nil:
			plan.Emoji = append(plan.Emoji, EmojiSource{Brand: entry.Emoji.Brand, Src: string(entry.Emoji.Src)})
		case entry.Sticker != nil:
			s, err := compileSticker(entry.Sticker, palettes, data)
			if err != nil {
				return nil, fmt.Errorf("第 %d 行: %w", entry.Sticker.Pos.Line, err)
			}
			plan.Stickers = append(plan.Stickers, s)
		}
	}
	if len(plan.Stickers) == 0 {
		return nil, fmt.Errorf("任务 %s 未包含贴纸", job.Name)
	}
	return plan, nil
}

func compileSticker(decl *StickerDecl, palettes map[string]style.Palette, data any) (Sticker, error) {
	kind, err := style.ParseKind(decl.Style)
	if err != nil {
		return Sticker{}, err
	}
	s := Sticker{Line: decl.Pos.Line, Style: kind}

	s.Text, err = bind(string(decl.Text), data)
	if err != nil {
		return Sticker{}, err
	}
	for _, opt := range decl.Options {
		val := opt.Value.Text()
		switch opt.Key {
		case "font":
			s.Family = val
		case "palette":
			p, ok := palettes[val]
			if !ok {
				return Sticker{}, fmt.Errorf("未声明的调色板 %s", val)
			}
			s.Palette = p
		case "color":
			c, err := style.ParseColor(val)
			if err != nil {
				return Sticker{}, err
			}
			s.Color = &c
		case "lineheight":
			lh, err := layout.ParseLineHeight(val)
			if err != nil {
				return Sticker{}, err
			}
			s.LineHeight = &lh
		case "brand":
			s.Brand = val
		case "out":
			if s.Out, err = bind(val, data); err != nil {
				return Sticker{}, err
			}
		}
	}
	return s, nil
}

func bind(text string, data any) (string, error) {
	if missing := binding.Missing(text, data); len(missing) > 0 {
		return "", fmt.Errorf("无法解析占位符 %v", missing)
	}
	return binding.Interpolate(text, data), nil
}
