package layout

import (
	"unicode"
	"unicode/utf8"
)

// Segment 从左到右扫描文本：表情匹配之前的普通文本按空白拆分，匹配本身成为一个表情 token。
// matches 需按 Offset 升序且互不重叠；与游标重叠或越界的匹配会被忽略。
func Segment(text string, matches []EmojiMatch, measure MeasureFunc, emojiSize float64) []Token {
	spaceWidth := -1.0
	space := func() float64 {
		if spaceWidth < 0 {
			spaceWidth = measure(" ")
		}
		return spaceWidth
	}

	var tokens []Token
	cursor := 0
	for _, m := range matches {
		if m.Length <= 0 || m.Offset < cursor || m.Offset+m.Length > len(text) {
			continue
		}
		tokens = appendPlain(tokens, text[cursor:m.Offset], measure, space)
		content := text[m.Offset : m.Offset+m.Length]
		glyph := m.Glyph
		if glyph == "" {
			glyph = content
		}
		tokens = append(tokens, Token{Kind: TokenEmoji, Content: content, Width: emojiSize, Glyph: glyph})
		cursor = m.Offset + m.Length
	}
	return appendPlain(tokens, text[cursor:], measure, space)
}

// appendPlain 用双指针扫描把普通文本切成空白串与非空白串。
func appendPlain(tokens []Token, s string, measure MeasureFunc, space func() float64) []Token {
	for i := 0; i < len(s); {
		r, n := utf8.DecodeRuneInString(s[i:])
		ws := unicode.IsSpace(r)
		j, runes := i+n, 1
		for j < len(s) {
			r, n = utf8.DecodeRuneInString(s[j:])
			if unicode.IsSpace(r) != ws {
				break
			}
			j += n
			runes++
		}
		run := s[i:j]
		if ws {
			// 空白串按“空格宽度 × 字符数”计宽，不测量原文
			tokens = append(tokens, Token{Kind: TokenWhitespace, Content: run, Width: space() * float64(runes)})
		} else {
			tokens = append(tokens, Token{Kind: TokenWord, Content: run, Width: measure(run)})
		}
		i = j
	}
	return tokens
}
