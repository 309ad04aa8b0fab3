package punct_test

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"punctab/internal/punct"
)

// cppPunctuators is a representative slice of a C/C++ punctuator table.
var cppPunctuators = []punct.Entry{
	{"!", "symbols1[0]"}, {"!=", "symbols2[0]"}, {"%", "symbols1[1]"}, {"%=", "symbols2[1]"},
	{"&", "symbols1[2]"}, {"&&", "symbols2[2]"}, {"&&=", "symbols3[0]"}, {"&=", "symbols2[3]"},
	{"*", "symbols1[3]"}, {"*=", "symbols2[4]"}, {"+", "symbols1[4]"}, {"++", "symbols2[5]"},
	{"+=", "symbols2[6]"}, {"-", "symbols1[5]"}, {"--", "symbols2[7]"}, {"-=", "symbols2[8]"},
	{"->", "symbols2[9]"}, {"->*", "symbols3[1]"}, {".", "symbols1[6]"}, {"...", "symbols3[2]"},
	{".*", "symbols2[10]"}, {":", "symbols1[7]"}, {"::", "symbols2[11]"}, {"<", "symbols1[8]"},
	{"<<", "symbols2[12]"}, {"<<=", "symbols3[3]"}, {"<=", "symbols2[13]"}, {"<=>", "symbols3[4]"},
	{"=", "symbols1[9]"}, {"==", "symbols2[14]"}, {">", "symbols1[10]"}, {">=", "symbols2[15]"},
	{">>", "symbols2[16]"}, {">>=", "symbols3[5]"}, {"^", "symbols1[11]"}, {"^=", "symbols2[17]"},
	{"|", "symbols1[12]"}, {"|=", "symbols2[18]"}, {"||", "symbols2[19]"}, {"~", "symbols1[13]"},
	{"#", "symbols1[14]"}, {"##", "symbols2[20]"}, {"%:", "symbols2[21]"}, {"%:%:", "symbols4[0]"},
}

func compile(t *testing.T, entries []punct.Entry) (*punct.Trie, *punct.Table) {
	t.Helper()
	reg, err := punct.RegistryFrom(entries)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	trie, err := punct.Build(reg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	tbl, err := punct.Flatten(trie)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if err := punct.Verify(tbl); err != nil {
		t.Fatalf("verify: %v", err)
	}
	return trie, tbl
}

type rowShape struct {
	Char   rune
	Prefix string
	Left   int
	Next   int
	Symbol string
}

func shapes(tbl *punct.Table) []rowShape {
	out := make([]rowShape, len(tbl.Rows))
	for i, r := range tbl.Rows {
		out[i] = rowShape{Char: r.Char, Prefix: r.Prefix, Left: r.Left, Next: r.Next}
		if r.Terminal != nil {
			out[i].Symbol = r.Terminal.Symbol
		}
	}
	return out
}

func TestFlatten_PlusExample(t *testing.T) {
	_, tbl := compile(t, []punct.Entry{{"+=", "S3"}, {"+", "S1"}, {"++", "S2"}})

	want := []rowShape{
		{'+', "+", 0, 1, "S1"},
		{'+', "++", 1, 0, "S2"},
		{'=', "+=", 0, 0, "S3"},
	}
	if got := shapes(tbl); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %+v\nwant %+v", got, want)
	}
	if tbl.Start != 0 {
		t.Errorf("Start = %d, want 0", tbl.Start)
	}

	tests := []struct {
		input  string
		symbol string
		length int
	}{
		{"++", "S2", 2},
		{"+=", "S3", 2},
		{"+a", "S1", 1},
		{"+", "S1", 1},
		{"+++", "S2", 2},
		{"-", "", 0},
		{"", "", 0},
	}
	for _, tt := range tests {
		e, n := tbl.Match(tt.input)
		got := ""
		if e != nil {
			got = e.Symbol
		}
		if got != tt.symbol || n != tt.length {
			t.Errorf("Match(%q) = (%q, %d), want (%q, %d)", tt.input, got, n, tt.symbol, tt.length)
		}
	}
}

func TestFlatten_GroupOrder(t *testing.T) {
	_, tbl := compile(t, []punct.Entry{
		{"<", "lt"}, {"<<", "shl"}, {"<=", "le"}, {"<<=", "shl_eq"},
		{"-", "minus"}, {"->", "arrow"}, {"-=", "minus_eq"},
	})

	want := []rowShape{
		{'-', "-", 1, 2, "minus"},
		{'<', "<", 0, 4, "lt"},
		{'=', "-=", 1, 0, "minus_eq"},
		{'>', "->", 0, 0, "arrow"},
		{'<', "<<", 1, 6, "shl"},
		{'=', "<=", 0, 0, "le"},
		{'=', "<<=", 0, 0, "shl_eq"},
	}
	if got := shapes(tbl); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %+v\nwant %+v", got, want)
	}
}

func TestMatch_EveryLiteral(t *testing.T) {
	_, tbl := compile(t, cppPunctuators)
	for _, e := range cppPunctuators {
		got, n := tbl.Match(e.Literal)
		if got == nil || got.Symbol != e.Symbol || n != len(e.Literal) {
			t.Errorf("Match(%q) = (%v, %d), want (%s, %d)", e.Literal, got, n, e.Symbol, len(e.Literal))
		}
		// a trailing rune that extends nothing must not change the answer
		got, n = tbl.Match(e.Literal + "x")
		if got == nil || got.Symbol != e.Symbol || n != len(e.Literal) {
			t.Errorf("Match(%q) = (%v, %d), want (%s, %d)", e.Literal+"x", got, n, e.Symbol, len(e.Literal))
		}
	}
}

func TestMatch_PrefixLiteralOwnsChildGroup(t *testing.T) {
	trie, tbl := compile(t, cppPunctuators)
	for _, a := range cppPunctuators {
		for _, b := range cppPunctuators {
			if len(b.Literal) <= len(a.Literal) || b.Literal[:len(a.Literal)] != a.Literal {
				continue
			}
			node := trie.Find(a.Literal)
			if node == nil || node.Terminal == nil || node.Terminal.Symbol != a.Symbol {
				t.Fatalf("trie node for %q = %+v", a.Literal, node)
			}
			row := rowFor(tbl, a.Literal)
			if row < 0 {
				t.Fatalf("no row for %q", a.Literal)
			}
			if tbl.Rows[row].Terminal == nil || tbl.Rows[row].Terminal.Symbol != a.Symbol {
				t.Errorf("row %d (%q) terminal = %v, want %s", row, a.Literal, tbl.Rows[row].Terminal, a.Symbol)
			}
			if tbl.Rows[row].Next == 0 {
				t.Errorf("row %d (%q) has no child group although %q extends it", row, a.Literal, b.Literal)
			}
		}
	}
	// "%:%" is a dead end on the way to "%:%:": the walk falls back to "%:".
	if e, n := tbl.Match("%:%x"); e == nil || e.Symbol != "symbols2[21]" || n != 2 {
		t.Errorf("Match(%%:%%x) = (%v, %d), want (symbols2[21], 2)", e, n)
	}
}

func TestFlatten_SiblingCountdownAndOrder(t *testing.T) {
	_, tbl := compile(t, cppPunctuators)

	for g := tbl.Start; g < len(tbl.Rows); {
		size := tbl.Rows[g].Left + 1
		for k := 0; k < size; k++ {
			row := tbl.Rows[g+k]
			if row.Left != size-1-k {
				t.Errorf("row %d: Left = %d, want %d", g+k, row.Left, size-1-k)
			}
			if k > 0 && tbl.Rows[g+k-1].Char >= row.Char {
				t.Errorf("row %d: %q not after %q", g+k, row.Char, tbl.Rows[g+k-1].Char)
			}
		}
		g += size
	}
}

func TestFlatten_PatchCompleteness(t *testing.T) {
	trie, tbl := compile(t, cppPunctuators)

	if got, want := len(tbl.Rows), trie.Nodes(); got != want {
		t.Fatalf("rows = %d, want one per trie node (%d)", got, want)
	}
	for i, row := range tbl.Rows {
		node := trie.Find(row.Prefix)
		if node == nil {
			t.Fatalf("row %d: prefix %q not in trie", i, row.Prefix)
		}
		if row.Next == 0 {
			if node.Len() != 0 {
				t.Errorf("row %d (%q): Next = 0 but node has %d children", i, row.Prefix, node.Len())
			}
			continue
		}
		size := tbl.Rows[row.Next].Left + 1
		if size != node.Len() {
			t.Errorf("row %d (%q): child group size %d, want %d", i, row.Prefix, size, node.Len())
		}
		for k := 0; k < size; k++ {
			child := tbl.Rows[row.Next+k]
			if len(child.Prefix) != len(row.Prefix)+1 || child.Prefix[:len(row.Prefix)] != row.Prefix {
				t.Errorf("row %d: child %q does not extend %q by one", row.Next+k, child.Prefix, row.Prefix)
			}
		}
	}
}

func TestFlatten_OrderIndependent(t *testing.T) {
	_, first := compile(t, cppPunctuators)

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 5; round++ {
		shuffled := append([]punct.Entry(nil), cppPunctuators...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		_, again := compile(t, shuffled)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("round %d: table differs for shuffled input", round)
		}
	}
}

func TestFlatten_Sentinel(t *testing.T) {
	_, tbl := compile(t, []punct.Entry{{"", "ignored"}, {"+", "S1"}, {"++", "S2"}})

	want := []rowShape{
		{0, "", 0, 0, ""},
		{'+', "+", 0, 2, "S1"},
		{'+', "++", 0, 0, "S2"},
	}
	if got := shapes(tbl); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %+v\nwant %+v", got, want)
	}
	if tbl.Start != 1 {
		t.Fatalf("Start = %d, want 1", tbl.Start)
	}
	if e, n := tbl.Match("++"); e == nil || e.Symbol != "S2" || n != 2 {
		t.Errorf("Match(++) = (%v, %d)", e, n)
	}
}

func TestFlatten_Empty(t *testing.T) {
	_, tbl := compile(t, nil)
	if tbl.Len() != 0 {
		t.Fatalf("rows = %d, want 0", tbl.Len())
	}
	if e, n := tbl.Match("+"); e != nil || n != 0 {
		t.Errorf("Match on empty table = (%v, %d)", e, n)
	}
}

func TestRegistry_DuplicateLiteral(t *testing.T) {
	reg := punct.NewRegistry()
	if err := reg.Add("+", "S1"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err := reg.Add("+", "S2")
	if !errors.Is(err, punct.ErrDuplicateLiteral) {
		t.Fatalf("err = %v, want ErrDuplicateLiteral", err)
	}
	var dup *punct.DuplicateLiteralError
	if !errors.As(err, &dup) || dup.Literal != "+" || dup.Existing != "S1" || dup.Symbol != "S2" {
		t.Errorf("err = %#v", err)
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}

	if _, err := punct.RegistryFrom([]punct.Entry{{"+", "S1"}, {"+", "S2"}}); !errors.Is(err, punct.ErrDuplicateLiteral) {
		t.Errorf("RegistryFrom err = %v, want ErrDuplicateLiteral", err)
	}
	if _, err := punct.RegistryFrom([]punct.Entry{{"", "a"}, {"", "b"}}); !errors.Is(err, punct.ErrDuplicateLiteral) {
		t.Errorf("second sentinel err = %v, want ErrDuplicateLiteral", err)
	}
}

func TestRegistry_MalformedEntry(t *testing.T) {
	tests := []struct {
		name    string
		entries []punct.Entry
		index   int
	}{
		{"missing symbol", []punct.Entry{{"+", "S1"}, {"-", ""}}, 1},
		{"blank symbol", []punct.Entry{{"-", "  "}}, 0},
		{"invalid utf8", []punct.Entry{{"+", "S1"}, {"++", "S2"}, {"\xff", "S3"}}, 2},
		{"nul", []punct.Entry{{"a\x00", "S1"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := punct.RegistryFrom(tt.entries)
			var bad *punct.MalformedEntryError
			if !errors.As(err, &bad) {
				t.Fatalf("err = %v, want MalformedEntryError", err)
			}
			if bad.Index != tt.index {
				t.Errorf("Index = %d, want %d", bad.Index, tt.index)
			}
			if !errors.Is(err, punct.ErrMalformedEntry) {
				t.Errorf("errors.Is(ErrMalformedEntry) = false")
			}
		})
	}
}

func TestRegistry_AllSorted(t *testing.T) {
	reg, err := punct.RegistryFrom([]punct.Entry{{">>", "c"}, {"!", "a"}, {">", "b"}})
	if err != nil {
		t.Fatal(err)
	}
	want := []punct.Entry{{"!", "a"}, {">", "b"}, {">>", "c"}}
	if got := reg.All(); !reflect.DeepEqual(got, want) {
		t.Errorf("All = %v, want %v", got, want)
	}
	if e, ok := reg.Lookup(">"); !ok || e.Symbol != "b" {
		t.Errorf("Lookup(>) = %v, %v", e, ok)
	}
}

func TestTrie_InsertDuplicate(t *testing.T) {
	trie := punct.NewTrie()
	if err := trie.Insert(punct.Entry{Literal: "<<=", Symbol: "a"}); err != nil {
		t.Fatal(err)
	}
	// "<<" follows an existing internal path: valid
	if err := trie.Insert(punct.Entry{Literal: "<<", Symbol: "b"}); err != nil {
		t.Fatalf("internal path insert: %v", err)
	}
	err := trie.Insert(punct.Entry{Literal: "<<=", Symbol: "c"})
	var dup *punct.DuplicateLiteralError
	if !errors.As(err, &dup) || dup.Existing != "a" || dup.Symbol != "c" {
		t.Fatalf("err = %v, want duplicate of a", err)
	}
	if n := trie.Find("<<="); n == nil || n.Terminal.Symbol != "a" {
		t.Errorf("terminal overwritten: %+v", n)
	}
	if n := trie.Find("<"); n == nil || n.Terminal != nil || n.Len() != 1 {
		t.Errorf("internal node = %+v", n)
	}
	if trie.Nodes() != 3 {
		t.Errorf("Nodes = %d, want 3", trie.Nodes())
	}
}

func TestTokenize(t *testing.T) {
	_, tbl := compile(t, cppPunctuators)

	var got []string
	for _, m := range tbl.Tokenize("a<<=b->*c...%:%:@") {
		if m.Entry != nil {
			got = append(got, m.Text)
		}
	}
	want := []string{"<<=", "->*", "...", "%:%:"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %q, want %q", got, want)
	}
}

func TestVerify_DetectsCorruption(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(tbl *punct.Table)
	}{
		{"countdown", func(tbl *punct.Table) { tbl.Rows[2].Left = 5 }},
		{"order", func(tbl *punct.Table) { tbl.Rows[2].Char, tbl.Rows[3].Char = tbl.Rows[3].Char, tbl.Rows[2].Char }},
		{"dangling next", func(tbl *punct.Table) { tbl.Rows[1].Next = 100 }},
		{"lost group", func(tbl *punct.Table) { tbl.Rows[0].Next = 0; tbl.Rows[0].Terminal = nil }},
		{"bad start", func(tbl *punct.Table) { tbl.Start = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, tbl := compile(t, []punct.Entry{
				{"<", "lt"}, {"<<", "shl"}, {"<=", "le"}, {"<<=", "shl_eq"},
				{"-", "minus"}, {"->", "arrow"}, {"-=", "minus_eq"},
			})
			tt.mutate(tbl)
			if err := punct.Verify(tbl); !errors.Is(err, punct.ErrInvariant) {
				t.Errorf("Verify = %v, want ErrInvariant", err)
			}
		})
	}
}

func rowFor(tbl *punct.Table, prefix string) int {
	for i, r := range tbl.Rows {
		if r.Prefix == prefix {
			return i
		}
	}
	return -1
}
