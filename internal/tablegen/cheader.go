package tablegen

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"fortio.org/safecast"

	"punctab/internal/punct"
)

const nullTag = "nullptr"

// WriteC renders the table as a C/C++ header:
//
//	static const lookup_entry_t punc_table[] =
//	{
//	   { '!',   0,   3, &symbols1[0]  },  //   0: '!'
//
// Columns are character, siblings left, child group index and symbol pointer,
// followed by the row index and full prefix as a comment. Left must fit a
// signed char and Next an unsigned 16-bit index.
func WriteC(w io.Writer, tbl *punct.Table, opts Options) error {
	opts.defaults()

	width := len(nullTag)
	for _, row := range tbl.Rows {
		if row.Terminal != nil {
			width = max(width, len(row.Terminal.Symbol)+1)
		}
	}

	out := filepath.Base(opts.Output)
	guard := "SRC_" + strings.ToUpper(strings.ReplaceAll(out, ".", "_")) + "_"

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "/**\n * @file %s\n * Automatically generated by <code>%s</code>\n", out, opts.Generator)
	if opts.Input != "" {
		fmt.Fprintf(&buf, " * from %s.\n", filepath.Base(opts.Input))
	}
	fmt.Fprintf(&buf, " */\n\n#ifndef %s\n#define %s\n\n", guard, guard)
	fmt.Fprintf(&buf, "// *INDENT-OFF*\nstatic const %s %s[] =\n{\n", opts.EntryType, opts.Name)

	for i, row := range tbl.Rows {
		if row.IsSentinel() {
			writeEntry(&buf, width, "0", 0, 0, nullTag, i, "")
			continue
		}
		ch, err := charLiteral(row.Char)
		if err != nil {
			return &CharError{Row: i, Char: row.Char}
		}
		if _, err := safecast.Conv[int8](row.Left); err != nil {
			return &RangeError{Row: i, Field: "left", Value: row.Left, Err: err}
		}
		if _, err := safecast.Conv[uint16](row.Next); err != nil {
			return &RangeError{Row: i, Field: "next", Value: row.Next, Err: err}
		}
		tag := nullTag
		if row.Terminal != nil {
			tag = "&" + row.Terminal.Symbol
		}
		writeEntry(&buf, width, ch, row.Left, row.Next, tag, i, "'"+row.Prefix+"'")
	}

	fmt.Fprintf(&buf, "};\n// *INDENT-ON*\n\n#endif /* %s */\n", guard)
	_, err := w.Write(buf.Bytes())
	return err
}

func writeEntry(buf *bytes.Buffer, width int, ch string, left, next int, tag string, idx int, comment string) {
	line := fmt.Sprintf("   { %4s, %3d, %3d, %-*s },  // %3d: %s", ch, left, next, width, tag, idx, comment)
	buf.WriteString(strings.TrimRight(line, " "))
	buf.WriteByte('\n')
}

// charLiteral quotes r as a C character literal.
func charLiteral(r rune) (string, error) {
	switch {
	case r == '\'':
		return `'\''`, nil
	case r == '\\':
		return `'\\'`, nil
	case r >= 0x20 && r < 0x7f:
		return "'" + string(r) + "'", nil
	}
	return "", ErrUnsupportedChar
}
