package tablegen

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"punctab/internal/punct"
)

// Format selects the output encoding.
type Format string

const (
	FormatC       Format = "c"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat accepts a format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatC, FormatJSON, FormatMsgpack:
		return f, nil
	case "h", "header":
		return FormatC, nil
	case "mp", "mpk":
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("unknown table format %q (expected c|json|msgpack)", s)
}

// FormatFromPath guesses the format from an output file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".h", ".hpp", ".inc":
		return FormatC, true
	case ".json":
		return FormatJSON, true
	case ".mp", ".msgpack":
		return FormatMsgpack, true
	}
	return "", false
}

// Options describe the generated artifact.
type Options struct {
	Name      string // table identifier, default "punc_table"
	EntryType string // C element type, default "lookup_entry_t"
	Output    string // output file name, used for the doc comment and include guard
	Input     string // input file name, used for the doc comment
	Generator string // tool named in the doc comment, default "punctab"
}

func (o *Options) defaults() {
	if o.Name == "" {
		o.Name = "punc_table"
	}
	if o.EntryType == "" {
		o.EntryType = "lookup_entry_t"
	}
	if o.Generator == "" {
		o.Generator = "punctab"
	}
	if o.Output == "" {
		o.Output = o.Name + ".h"
	}
}

var (
	// ErrUnsupportedChar is matched by CharError.
	ErrUnsupportedChar = errors.New("character not representable")
	// ErrFieldRange is matched by RangeError.
	ErrFieldRange = errors.New("field out of range")
)

// CharError reports a row whose character the target format cannot hold.
type CharError struct {
	Row  int
	Char rune
}

func (e *CharError) Error() string {
	return fmt.Sprintf("row %d: character %q is not a printable ASCII character", e.Row, e.Char)
}

func (e *CharError) Unwrap() error { return ErrUnsupportedChar }

// RangeError reports a row field that overflows its C type.
type RangeError struct {
	Row   int
	Field string
	Value int
	Err   error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("row %d: %s = %d does not fit: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *RangeError) Unwrap() error { return ErrFieldRange }

// Write renders tbl in format f.
func Write(w io.Writer, tbl *punct.Table, f Format, opts Options) error {
	switch f {
	case FormatC:
		return WriteC(w, tbl, opts)
	case FormatJSON:
		return WriteJSON(w, tbl, opts)
	case FormatMsgpack:
		return WriteMsgpack(w, tbl, opts)
	}
	return fmt.Errorf("unknown table format %q", f)
}
