package layout

import (
	"math/rand"
	"testing"
)

func word(w float64) Token  { return Token{Kind: TokenWord, Content: "w", Width: w} }
func space(w float64) Token { return Token{Kind: TokenWhitespace, Content: " ", Width: w} }

func TestPackGreedy(t *testing.T) {
	tokens := []Token{word(40), space(10), word(40), space(10), word(40)}
	lines := Pack(tokens, 100)
	if len(lines) != 2 {
		t.Fatalf("期望 2 行，实际 %d", len(lines))
	}
	// 放得下的行尾空白保留在行内
	if got := lines[0].Width(); got != 100 || len(lines[0]) != 4 {
		t.Fatalf("首行期望 4 个 token、宽度 100，实际 %d 个、%g", len(lines[0]), got)
	}
	if lines[0][3].Kind != TokenWhitespace {
		t.Fatalf("首行末尾应为空白: %+v", lines[0])
	}
	if lines[1][0].Kind != TokenWord || len(lines[1]) != 1 {
		t.Fatalf("第二行应只含单词: %+v", lines[1])
	}
}

func TestPackDropsOverflowingSpace(t *testing.T) {
	tokens := []Token{word(45), space(10), word(45), space(10), word(40)}
	lines := Pack(tokens, 100)
	if len(lines) != 2 {
		t.Fatalf("期望 2 行，实际 %d", len(lines))
	}
	if got := lines[0].Width(); got != 100 || len(lines[0]) != 3 {
		t.Fatalf("首行期望 3 个 token、宽度 100，实际 %d 个、%g", len(lines[0]), got)
	}
	// 溢出的空白在换行处被丢弃，第二行以单词开头
	if len(lines[1]) != 1 || lines[1][0].Kind != TokenWord || lines[1][0].Width != 40 {
		t.Fatalf("第二行应只含末尾单词: %+v", lines[1])
	}
}

func TestPackOversizedToken(t *testing.T) {
	tokens := []Token{word(30), space(5), word(250), space(5), word(30)}
	lines := Pack(tokens, 100)
	if len(lines) != 3 {
		t.Fatalf("期望 3 行，实际 %d: %+v", len(lines), lines)
	}
	if len(lines[1]) != 1 || lines[1][0].Width != 250 {
		t.Fatalf("超宽 token 应独占一行: %+v", lines[1])
	}
	if lines[2][0].Kind == TokenWhitespace {
		t.Fatalf("超宽 token 之后的行不应以空白开头")
	}
}

func TestPackEmpty(t *testing.T) {
	if lines := Pack(nil, 100); len(lines) != 0 {
		t.Fatalf("空输入应无输出行: %+v", lines)
	}
	if lines := Pack([]Token{space(5), space(500)}, 100); len(lines) != 0 {
		t.Fatalf("只有空白时应无输出行: %+v", lines)
	}
}

// TestPackInvariants 随机生成 token 序列，验证宽度与行首不变式。
func TestPackInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 500; iter++ {
		maxWidth := 20 + rng.Float64()*200
		n := rng.Intn(40)
		tokens := make([]Token, 0, n)
		for i := 0; i < n; i++ {
			w := rng.Float64() * maxWidth * 1.3
			switch rng.Intn(3) {
			case 0:
				tokens = append(tokens, space(w/4))
			case 1:
				tokens = append(tokens, Token{Kind: TokenEmoji, Content: "e", Width: w})
			default:
				tokens = append(tokens, word(w))
			}
		}
		lines := Pack(tokens, maxWidth)
		for _, line := range lines {
			if len(line) == 0 {
				t.Fatalf("不应输出空行")
			}
			if line[0].Kind == TokenWhitespace {
				t.Fatalf("行首不应为空白: %+v", line)
			}
			if line.Width() > maxWidth {
				if len(line) != 1 || line[0].Width <= maxWidth {
					t.Fatalf("超宽行必须是单个超宽 token: max=%g line=%+v", maxWidth, line)
				}
			}
		}
	}
}
