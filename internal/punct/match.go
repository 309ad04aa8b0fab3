package punct

import (
	"strconv"
	"unicode/utf8"
)

// Match runs the longest-match walk over the table: compare the current row
// with the next input rune, advance within the group while Left > 0, record
// terminals as they are passed and descend through Next.
// It returns the best terminal and its length in bytes of input, or nil and 0.
func (t *Table) Match(input string) (*Entry, int) {
	if t == nil || t.Start >= len(t.Rows) {
		return nil, 0
	}

	var best *Entry
	bestLen := 0
	idx := t.Start
	for off := 0; off < len(input); {
		r, size := utf8.DecodeRuneInString(input[off:])
		off += size
		row := &t.Rows[idx]
		for row.Char != r {
			if row.Left == 0 {
				return best, bestLen
			}
			idx++
			row = &t.Rows[idx]
		}
		if row.Terminal != nil {
			best = row.Terminal
			bestLen = off
		}
		if row.Next == 0 {
			return best, bestLen
		}
		idx = row.Next
	}
	return best, bestLen
}

// Tokenize splits input greedily into punctuators. Runes that start no
// punctuator are returned as single-rune chunks with a nil entry.
func (t *Table) Tokenize(input string) []Match {
	var out []Match
	for off := 0; off < len(input); {
		e, n := t.Match(input[off:])
		if n == 0 {
			_, size := utf8.DecodeRuneInString(input[off:])
			out = append(out, Match{Offset: off, Text: input[off : off+size]})
			off += size
			continue
		}
		out = append(out, Match{Offset: off, Text: input[off : off+n], Entry: e})
		off += n
	}
	return out
}

// Match is one chunk produced by Tokenize.
type Match struct {
	Offset int
	Text   string
	Entry  *Entry
}

func quoteRunes(s string) string { return strconv.Quote(s) }
