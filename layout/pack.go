package layout

// Pack 以贪心方式单趟把 token 装入宽度不超过 maxWidth 的行。
// 超宽 token 独占一行且不再拆分；行首的空白 token 会被丢弃。
func Pack(tokens []Token, maxWidth float64) []Line {
	var (
		lines []Line
		cur   Line
		curW  float64
	)
	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, cur)
		}
		cur, curW = nil, 0
	}

	for _, tok := range tokens {
		if tok.Kind == TokenWhitespace && len(cur) == 0 {
			continue
		}
		if tok.Width > maxWidth {
			flush()
			if tok.Kind != TokenWhitespace {
				lines = append(lines, Line{tok})
			}
			continue
		}
		if curW+tok.Width > maxWidth {
			flush()
			if tok.Kind == TokenWhitespace {
				continue
			}
		}
		cur = append(cur, tok)
		curW += tok.Width
	}
	flush()
	return lines
}
