// Package emoji finds emoji in text and serves their pre-rendered images by brand.
package emoji

import (
	"unicode/utf8"

	"github.com/ByLCY/attp/layout"
)

// variation selector-16 requests emoji presentation; sources disagree on whether it is present.
const vs16 = '\uFE0F'

// Finder returns the emoji found in text, ordered by offset and non-overlapping.
type Finder interface {
	Find(text string) []layout.EmojiMatch
}

// Index is a longest-match trie over a fixed set of glyphs.
// Matching ignores U+FE0F on both sides, so a heart with or without the selector finds the other.
type Index struct {
	root  node
	count int
}

type node struct {
	next  map[rune]*node
	glyph string
}

var _ Finder = (*Index)(nil)

// NewIndex builds an index from glyphs.
func NewIndex(glyphs ...string) *Index {
	ix := &Index{}
	for _, g := range glyphs {
		ix.Add(g)
	}
	return ix
}

// Add inserts a glyph. The first glyph inserted for a given key wins.
func (ix *Index) Add(glyph string) {
	n := &ix.root
	for _, r := range glyph {
		if r == vs16 {
			continue
		}
		if n.next == nil {
			n.next = make(map[rune]*node)
		}
		child, ok := n.next[r]
		if !ok {
			child = &node{}
			n.next[r] = child
		}
		n = child
	}
	if n == &ix.root || n.glyph != "" {
		return
	}
	n.glyph = glyph
	ix.count++
}

// Len returns the number of distinct glyphs.
func (ix *Index) Len() int { return ix.count }

// Find scans text left to right taking the longest glyph at each position.
func (ix *Index) Find(text string) []layout.EmojiMatch {
	var out []layout.EmojiMatch
	for i := 0; i < len(text); {
		if end, glyph := ix.longest(text, i); end > i {
			out = append(out, layout.EmojiMatch{Offset: i, Length: end - i, Glyph: glyph})
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return out
}

func (ix *Index) longest(text string, start int) (int, string) {
	n := &ix.root
	end, glyph := start, ""
	for j := start; j < len(text); {
		r, size := utf8.DecodeRuneInString(text[j:])
		if r == vs16 && j > start {
			j += size
			if glyph != "" && end == j-size {
				end = j
			}
			continue
		}
		child := n.next[r]
		if child == nil {
			break
		}
		n = child
		j += size
		if n.glyph != "" {
			end, glyph = j, n.glyph
		}
	}
	return end, glyph
}
