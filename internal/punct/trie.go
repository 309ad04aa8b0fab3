package punct

import (
	"sort"
	"unicode/utf8"
)

// Node is one character position shared by every literal with the same prefix.
// A node exclusively owns its children.
type Node struct {
	Char     rune
	Prefix   string // literal spelled from the root down to this node
	Terminal *Entry // set iff some literal ends exactly here

	children map[rune]*Node
}

// Child returns the child matching r, or nil.
func (n *Node) Child(r rune) *Node {
	if n == nil || n.children == nil {
		return nil
	}
	return n.children[r]
}

// Len returns the number of children.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return len(n.children)
}

// Children returns the children ordered by rune value.
func (n *Node) Children() []*Node {
	if n.Len() == 0 {
		return nil
	}
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Char < out[j].Char })
	return out
}

// Trie is the prefix tree of all registered literals.
type Trie struct {
	Root     *Node
	Sentinel bool // the empty literal was registered
	nodes    int
}

// NewTrie returns an empty trie.
func NewTrie() *Trie {
	return &Trie{Root: &Node{}}
}

// Build inserts every entry of reg into a fresh trie.
func Build(reg *Registry) (*Trie, error) {
	t := NewTrie()
	t.Sentinel = reg.HasSentinel()
	for _, e := range reg.All() {
		if err := t.Insert(e); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Insert walks the literal from the root, creating missing nodes, and marks the
// last node as terminal. Passing through an existing internal node is fine;
// ending on a node that is already terminal is a duplicate.
func (t *Trie) Insert(e Entry) error {
	if e.Literal == "" {
		if t.Sentinel {
			return &DuplicateLiteralError{Literal: "", Existing: "sentinel", Symbol: e.Symbol}
		}
		t.Sentinel = true
		return nil
	}

	cur := t.Root
	for off := 0; off < len(e.Literal); {
		r, size := utf8.DecodeRuneInString(e.Literal[off:])
		off += size
		next := cur.Child(r)
		if next == nil {
			if cur.children == nil {
				cur.children = make(map[rune]*Node)
			}
			next = &Node{Char: r, Prefix: e.Literal[:off]}
			cur.children[r] = next
			t.nodes++
		}
		cur = next
	}

	if cur.Terminal != nil {
		return &DuplicateLiteralError{Literal: e.Literal, Existing: cur.Terminal.Symbol, Symbol: e.Symbol}
	}
	entry := e
	cur.Terminal = &entry
	return nil
}

// Find returns the node reached by walking literal, or nil.
func (t *Trie) Find(literal string) *Node {
	cur := t.Root
	for _, r := range literal {
		cur = cur.Child(r)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Nodes returns the number of non-root nodes, which is also the number of
// non-sentinel rows Flatten emits.
func (t *Trie) Nodes() int { return t.nodes }
