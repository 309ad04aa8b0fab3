package punct

import (
	"errors"
	"testing"
)

func TestPatch_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		rows   []Row
		at     int
		prefix string
		start  int
	}{
		{"negative parent", []Row{{Char: '+', Prefix: "+"}}, -1, "+", 1},
		{"parent after group", []Row{{Char: '+', Prefix: "+"}, {Char: '+', Prefix: "++"}}, 1, "+", 1},
		{"prefix mismatch", []Row{{Char: '-', Prefix: "-"}}, 0, "+", 1},
		{"already patched", []Row{{Char: '+', Prefix: "+", Next: 7}}, 0, "+", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := flattener{rows: tt.rows}
			err := f.patch(tt.at, tt.prefix, tt.start)
			if !errors.Is(err, ErrPatchNotFound) {
				t.Fatalf("patch err = %v, want ErrPatchNotFound", err)
			}
			var pe *PatchNotFoundError
			if !errors.As(err, &pe) || pe.Parent != tt.at || pe.Prefix != tt.prefix {
				t.Errorf("error = %+v", pe)
			}
		})
	}
}

func TestGroup_WrongParentRowAborts(t *testing.T) {
	trie := NewTrie()
	for _, e := range []Entry{{"+", "a"}, {"++", "b"}, {"+=", "c"}} {
		if err := trie.Insert(e); err != nil {
			t.Fatal(err)
		}
	}

	// row 0 spells "-", so the "+" group cannot be attached to it
	f := flattener{rows: []Row{{Char: '-', Prefix: "-", Terminal: &Entry{"-", "d"}}}}
	err := f.group(trie.Find("+"), 0)
	if !errors.Is(err, ErrPatchNotFound) {
		t.Fatalf("group err = %v, want ErrPatchNotFound", err)
	}
	if f.rows[0].Next != 0 {
		t.Errorf("foreign row patched to %d", f.rows[0].Next)
	}

	// the correct parent row succeeds
	f = flattener{rows: []Row{{Char: '+', Prefix: "+", Terminal: &Entry{"+", "a"}}}}
	if err := f.group(trie.Find("+"), 0); err != nil {
		t.Fatalf("group: %v", err)
	}
	if f.rows[0].Next != 1 || len(f.rows) != 3 {
		t.Errorf("rows = %+v", f.rows)
	}
}
