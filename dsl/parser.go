package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `\d+(?:\.\d+)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),=;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	jobParser = participle.MustBuild[Job](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
		participle.UseLookahead(2),
	)
)

// Job 是任务文件的根节点。
type Job struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"Newline* 'job' @Ident"`
	Version string         `parser:"@Ident"`
	Entries []*Entry       `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}' Newline*"`
}

// Entry 是任务中的一条声明。
type Entry struct {
	Font    *FontDecl    `parser:"  @@"`
	Palette *PaletteDecl `parser:"| @@"`
	Emoji   *EmojiDecl   `parser:"| @@"`
	Sticker *StickerDecl `parser:"| @@"`
}

// Kind 返回声明类型。
func (e *Entry) Kind() string {
	switch {
	case e == nil:
		return "unknown"
	case e.Font != nil:
		return "font"
	case e.Palette != nil:
		return "palette"
	case e.Emoji != nil:
		return "emoji"
	case e.Sticker != nil:
		return "sticker"
	default:
		return "unknown"
	}
}

// FontDecl 注册字体：font Name "src"。
type FontDecl struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Name string         `parser:"'font' @Ident"`
	Src  StringLiteral  `parser:"@String"`
}

// PaletteDecl 定义调色板：palette Name = [#f00, #0f0]。
type PaletteDecl struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Name   string         `parser:"'palette' @Ident '='"`
	Colors []string       `parser:"'[' Newline* ( @Color ( (',' | Newline+) Newline* @Color )* )? ','? Newline* ']'"`
}

// EmojiDecl 加载表情图片：emoji brand "cache.json" 或目录。
type EmojiDecl struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Brand string         `parser:"'emoji' @Ident"`
	Src   StringLiteral  `parser:"@String"`
}

// StickerDecl 描述一张贴纸。
type StickerDecl struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Style   string         `parser:"'sticker' @Ident"`
	Options []*Option      `parser:"@@*"`
	Text    StringLiteral  `parser:"'{' Newline* @String Newline* '}'"`
}

// Option 是贴纸头部的键值参数。
type Option struct {
	Key   string `parser:"@( 'font' | 'palette' | 'color' | 'out' | 'brand' | 'lineheight' )"`
	Value *Value `parser:"@@"`
}

// Value 是参数值。
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Color  *string        `parser:"| @Color"`
	Ident  *string        `parser:"| @Ident"`
}

// Text 返回值的文本形式。
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// Option 返回指定参数，未设置时 ok 为 false。
func (s *StickerDecl) Option(key string) (string, bool) {
	for _, opt := range s.Options {
		if opt.Key == key {
			return opt.Value.Text(), true
		}
	}
	return "", false
}

// StringLiteral 在捕获时按 Go 语法去掉引号。
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse 从 io.Reader 解析任务文件。
func Parse(r io.Reader) (*Job, error) {
	return jobParser.Parse("", r)
}

// ParseString 从字符串解析任务文件。
func ParseString(input string) (*Job, error) {
	return jobParser.ParseString("", input)
}
