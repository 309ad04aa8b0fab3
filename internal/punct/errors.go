package punct

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateLiteral is matched by DuplicateLiteralError.
	ErrDuplicateLiteral = errors.New("duplicate literal")
	// ErrMalformedEntry is matched by MalformedEntryError.
	ErrMalformedEntry = errors.New("malformed token entry")
	// ErrPatchNotFound is matched by PatchNotFoundError.
	ErrPatchNotFound = errors.New("parent row not found")
	// ErrInvariant is matched by InvariantError.
	ErrInvariant = errors.New("table invariant violated")
)

// DuplicateLiteralError reports a literal registered more than once.
type DuplicateLiteralError struct {
	Literal  string
	Existing string // symbol already bound to the literal
	Symbol   string // symbol of the rejected entry
}

func (e *DuplicateLiteralError) Error() string {
	if e.Existing == e.Symbol {
		return fmt.Sprintf("duplicate literal %q (%s)", e.Literal, e.Symbol)
	}
	return fmt.Sprintf("duplicate literal %q: bound to %s, cannot rebind to %s", e.Literal, e.Existing, e.Symbol)
}

func (e *DuplicateLiteralError) Unwrap() error { return ErrDuplicateLiteral }

// MalformedEntryError reports an entry that cannot be registered.
// Index is the 0-based position of the entry in the input.
type MalformedEntryError struct {
	Index   int
	Literal string
	Symbol  string
	Reason  string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("entry #%d (%q): %s", e.Index, e.Literal, e.Reason)
}

func (e *MalformedEntryError) Unwrap() error { return ErrMalformedEntry }

// PatchNotFoundError is an internal consistency failure of the flattener:
// the row expected to own a child group could not be patched.
type PatchNotFoundError struct {
	Prefix string // prefix of the group being attached
	Parent int    // row index that was expected to own it
	Reason string
}

func (e *PatchNotFoundError) Error() string {
	return fmt.Sprintf("cannot attach group %q to row %d: %s", e.Prefix, e.Parent, e.Reason)
}

func (e *PatchNotFoundError) Unwrap() error { return ErrPatchNotFound }

// InvariantError reports the first row that breaks a table invariant.
type InvariantError struct {
	Row    int
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }
