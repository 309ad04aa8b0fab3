package punct

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Entry binds a punctuator literal to the opaque symbol reference emitted
// into the table (for example "symbols2[4]").
type Entry struct {
	Literal string
	Symbol  string
}

// Registry holds the deduplicated set of entries.
type Registry struct {
	entries  []Entry
	index    map[string]int
	seen     int // entries offered to Add, accepted or not
	sentinel bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// RegistryFrom registers entries in order and stops at the first failure.
func RegistryFrom(entries []Entry) (*Registry, error) {
	reg := NewRegistry()
	for _, e := range entries {
		if err := reg.Add(e.Literal, e.Symbol); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Add registers literal → symbol.
// The empty literal requests the sentinel row; its symbol is not emitted.
func (r *Registry) Add(literal, symbol string) error {
	pos := r.seen
	r.seen++

	if literal == "" {
		if r.sentinel {
			return &DuplicateLiteralError{Literal: literal, Existing: "sentinel", Symbol: symbol}
		}
		r.sentinel = true
		return nil
	}
	if strings.TrimSpace(symbol) == "" {
		return &MalformedEntryError{Index: pos, Literal: literal, Symbol: symbol, Reason: "missing symbol"}
	}
	if !utf8.ValidString(literal) {
		return &MalformedEntryError{Index: pos, Literal: literal, Symbol: symbol, Reason: "literal is not valid UTF-8"}
	}
	// NUL is the character of the sentinel row
	if strings.ContainsRune(literal, 0) {
		return &MalformedEntryError{Index: pos, Literal: literal, Symbol: symbol, Reason: "literal contains NUL"}
	}
	if at, ok := r.index[literal]; ok {
		return &DuplicateLiteralError{Literal: literal, Existing: r.entries[at].Symbol, Symbol: symbol}
	}
	r.index[literal] = len(r.entries)
	r.entries = append(r.entries, Entry{Literal: literal, Symbol: symbol})
	return nil
}

// Len returns the number of non-sentinel entries.
func (r *Registry) Len() int { return len(r.entries) }

// HasSentinel reports whether the empty literal was registered.
func (r *Registry) HasSentinel() bool { return r.sentinel }

// Lookup returns the entry registered for literal.
func (r *Registry) Lookup(literal string) (Entry, bool) {
	at, ok := r.index[literal]
	if !ok {
		return Entry{}, false
	}
	return r.entries[at], true
}

// All returns a copy of the entries sorted by literal.
func (r *Registry) All() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Literal < out[j].Literal })
	return out
}
