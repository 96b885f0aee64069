package layout

import (
	"fmt"
	"strings"
)

// 该文件定义分词、分行与自适应字号的结果类型，供渲染、调试 JSON 与 PDF 校样共用。

// TokenKind 区分单词、空白串与表情三类 token。
type TokenKind int

const (
	TokenWord TokenKind = iota
	TokenWhitespace
	TokenEmoji
)

func (k TokenKind) String() string {
	switch k {
	case TokenWord:
		return "word"
	case TokenWhitespace:
		return "whitespace"
	case TokenEmoji:
		return "emoji"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// MarshalText 让调试 JSON 输出可读的类型名。
func (k TokenKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Token 是排版的最小不可拆分单元。
// Width 为当前候选字号下的像素宽度；空白串为单个空格宽度 × 字符数；表情等于字号。
type Token struct {
	Kind    TokenKind `json:"kind"`
	Content string    `json:"content"`
	Width   float64   `json:"width"`
	Glyph   string    `json:"glyph,omitempty"` // 仅表情：图片缓存中的键
}

// Line 为一行内按顺序排列的 token。
type Line []Token

// Width 返回该行 token 宽度之和。
func (l Line) Width() float64 {
	w := 0.0
	for _, tok := range l {
		w += tok.Width
	}
	return w
}

// StartX 返回使该行在画布中水平居中的起始 x。
func (l Line) StartX(canvasWidth float64) float64 {
	return (canvasWidth - l.Width()) / 2
}

// Text 拼接该行全部 token 的原文。
func (l Line) Text() string {
	var sb strings.Builder
	for _, tok := range l {
		sb.WriteString(tok.Content)
	}
	return sb.String()
}

// EmojiMatch 描述文本中识别出的一个表情，Offset/Length 为字节偏移。
type EmojiMatch struct {
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Glyph  string `json:"glyph"`
}

// FontSpec 是测量文本时使用的字体描述（总是粗体，单位 px）。
type FontSpec struct {
	Family string  `json:"family"`
	Size   float64 `json:"size"`
}

func (f FontSpec) String() string {
	return fmt.Sprintf("bold %gpx %s", f.Size, f.Family)
}

// Layout 是自适应求解器接受的候选结果。
// Fits 为 false 表示所有候选字号都放不下，返回的是最小字号的结果。
type Layout struct {
	Lines      []Line   `json:"lines"`
	FontSize   float64  `json:"fontSize"`
	LineHeight float64  `json:"lineHeight"`
	Font       FontSpec `json:"font"`
	Fits       bool     `json:"fits"`
}

// Height 返回文本块总高度：行数 × 行高。
func (l *Layout) Height() float64 {
	return float64(len(l.Lines)) * l.LineHeight
}

// MaxLineWidth 返回最宽一行的宽度。
func (l *Layout) MaxLineWidth() float64 {
	maxW := 0.0
	for _, line := range l.Lines {
		if w := line.Width(); w > maxW {
			maxW = w
		}
	}
	return maxW
}

// BlockTop 返回文本块在画布中垂直居中时的顶部 y。
func (l *Layout) BlockTop(canvasHeight float64) float64 {
	return (canvasHeight - l.Height()) / 2
}
