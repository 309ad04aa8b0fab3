package tablegen

import (
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/vmihailenco/msgpack/v5"

	"punctab/internal/punct"
)

// Current schema version - increment when Payload format changes
const payloadSchemaVersion uint16 = 1

// Payload is the serialisable form of a table shared by the json and msgpack formats.
type Payload struct {
	Schema uint16       `json:"schema" msgpack:"schema"`
	Table  string       `json:"table" msgpack:"table"`
	Start  int          `json:"start" msgpack:"start"`
	Rows   []RowPayload `json:"rows" msgpack:"rows"`
}

// RowPayload mirrors punct.Row; Char is empty for the sentinel row.
type RowPayload struct {
	Index  int    `json:"index" msgpack:"index"`
	Char   string `json:"char" msgpack:"char"`
	Prefix string `json:"prefix,omitempty" msgpack:"prefix,omitempty"`
	Left   int    `json:"left" msgpack:"left"`
	Next   int    `json:"next" msgpack:"next"`
	Symbol string `json:"symbol,omitempty" msgpack:"symbol,omitempty"`
}

// NewPayload converts a table.
func NewPayload(tbl *punct.Table, name string) *Payload {
	p := &Payload{
		Schema: payloadSchemaVersion,
		Table:  name,
		Start:  tbl.Start,
		Rows:   make([]RowPayload, len(tbl.Rows)),
	}
	for i, row := range tbl.Rows {
		rp := RowPayload{Index: i, Prefix: row.Prefix, Left: row.Left, Next: row.Next}
		if !row.IsSentinel() {
			rp.Char = string(row.Char)
		}
		if row.Terminal != nil {
			rp.Symbol = row.Terminal.Symbol
		}
		p.Rows[i] = rp
	}
	return p
}

// Decode rebuilds a punct.Table. The result is not verified; ReadFile does that.
func (p *Payload) Decode() (*punct.Table, error) {
	if p.Schema != payloadSchemaVersion {
		return nil, fmt.Errorf("unsupported table schema %d (want %d)", p.Schema, payloadSchemaVersion)
	}
	tbl := &punct.Table{Start: p.Start, Rows: make([]punct.Row, len(p.Rows))}
	for i, rp := range p.Rows {
		if rp.Index != i {
			return nil, fmt.Errorf("row %d is stored at position %d", rp.Index, i)
		}
		row := punct.Row{Prefix: rp.Prefix, Left: rp.Left, Next: rp.Next}
		if rp.Char != "" {
			r, size := utf8.DecodeRuneInString(rp.Char)
			if size != len(rp.Char) || r == utf8.RuneError {
				return nil, fmt.Errorf("row %d: char %q is not a single character", i, rp.Char)
			}
			row.Char = r
		}
		if rp.Symbol != "" {
			row.Terminal = &punct.Entry{Literal: rp.Prefix, Symbol: rp.Symbol}
		}
		tbl.Rows[i] = row
	}
	return tbl, nil
}

// WriteJSON renders the table as indented JSON.
func WriteJSON(w io.Writer, tbl *punct.Table, opts Options) error {
	opts.defaults()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewPayload(tbl, opts.Name))
}

// WriteMsgpack renders the table as msgpack.
func WriteMsgpack(w io.Writer, tbl *punct.Table, opts Options) error {
	opts.defaults()
	return msgpack.NewEncoder(w).Encode(NewPayload(tbl, opts.Name))
}

// ReadPayload decodes a table written in the json or msgpack format.
func ReadPayload(r io.Reader, f Format) (*Payload, error) {
	var p Payload
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&p); err != nil {
			return nil, err
		}
	case FormatMsgpack:
		if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("format %q cannot be read back", f)
	}
	return &p, nil
}
