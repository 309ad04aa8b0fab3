package punct

// Row is one entry of the flattened table.
type Row struct {
	Char     rune   // 0 only for the sentinel row
	Prefix   string // full literal up to and including Char
	Left     int    // rows remaining in the same sibling group after this one
	Next     int    // first row of the child group, 0 if none
	Terminal *Entry // literal ending at this row, nil if none
}

// IsSentinel reports whether the row is the reserved "no match" row.
func (r Row) IsSentinel() bool { return r.Char == 0 }

// Table is the flattened trie.
// Start is the first row of the level-1 group: 1 when row 0 is the sentinel, else 0.
type Table struct {
	Rows  []Row
	Start int
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Flatten linearises the trie group by group. A group is appended and attached to
// its parent row before any deeper group, so each group stays contiguous and the
// parent row index is already known when its children are emitted.
func Flatten(t *Trie) (*Table, error) {
	f := flattener{rows: make([]Row, 0, t.Nodes()+1)}
	tbl := &Table{}
	if t.Sentinel {
		f.rows = append(f.rows, Row{})
		tbl.Start = 1
	}
	if err := f.group(t.Root, -1); err != nil {
		return nil, err
	}
	tbl.Rows = f.rows
	return tbl, nil
}

type flattener struct {
	rows []Row
}

// group emits parent's children; parentRow is -1 for the root.
func (f *flattener) group(parent *Node, parentRow int) error {
	kids := parent.Children()
	if len(kids) == 0 {
		return nil
	}

	start := len(f.rows)
	for i, n := range kids {
		f.rows = append(f.rows, Row{
			Char:     n.Char,
			Prefix:   n.Prefix,
			Left:     len(kids) - 1 - i,
			Terminal: n.Terminal,
		})
	}

	if parentRow >= 0 {
		if err := f.patch(parentRow, parent.Prefix, start); err != nil {
			return err
		}
	}

	for i, n := range kids {
		if err := f.group(n, start+i); err != nil {
			return err
		}
	}
	return nil
}

func (f *flattener) patch(at int, prefix string, start int) error {
	if at < 0 || at >= start {
		return &PatchNotFoundError{Prefix: prefix, Parent: at, Reason: "row is not emitted before the group"}
	}
	row := &f.rows[at]
	if row.Prefix != prefix {
		return &PatchNotFoundError{Prefix: prefix, Parent: at, Reason: "row spells " + quoteRunes(row.Prefix)}
	}
	if row.Next != 0 {
		return &PatchNotFoundError{Prefix: prefix, Parent: at, Reason: "row already owns a group"}
	}
	row.Next = start
	return nil
}
