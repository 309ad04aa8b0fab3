package punct

import "fmt"

// Verify walks every group reachable from Start and checks the structural
// invariants a scanner relies on. It returns the first violation as an
// *InvariantError.
func Verify(t *Table) error {
	n := len(t.Rows)
	switch t.Start {
	case 0:
	case 1:
		if n == 0 || !t.Rows[0].IsSentinel() {
			return &InvariantError{Row: 0, Reason: "start is 1 but row 0 is not the sentinel"}
		}
		if s := t.Rows[0]; s.Left != 0 || s.Next != 0 || s.Terminal != nil || s.Prefix != "" {
			return &InvariantError{Row: 0, Reason: "sentinel row carries data"}
		}
	default:
		return &InvariantError{Row: t.Start, Reason: fmt.Sprintf("unexpected start %d", t.Start)}
	}
	if t.Start >= n {
		return nil
	}

	type group struct {
		start  int
		prefix string
	}
	visited := make([]bool, n)
	queue := []group{{start: t.Start}}
	for len(queue) > 0 {
		g := queue[0]
		queue = queue[1:]

		prev := rune(-1)
		for i := g.start; ; i++ {
			if i >= n {
				return &InvariantError{Row: g.start, Reason: "group runs past the end of the table"}
			}
			if visited[i] {
				return &InvariantError{Row: i, Reason: "row belongs to more than one group"}
			}
			visited[i] = true

			row := t.Rows[i]
			if row.IsSentinel() {
				return &InvariantError{Row: i, Reason: "sentinel row inside a group"}
			}
			if i > g.start && row.Left != t.Rows[i-1].Left-1 {
				return &InvariantError{Row: i, Reason: fmt.Sprintf("sibling countdown %d follows %d", row.Left, t.Rows[i-1].Left)}
			}
			if row.Char <= prev {
				return &InvariantError{Row: i, Reason: fmt.Sprintf("%q is not ordered after %q", row.Char, prev)}
			}
			if want := g.prefix + string(row.Char); row.Prefix != want {
				return &InvariantError{Row: i, Reason: fmt.Sprintf("prefix %q, want %q", row.Prefix, want)}
			}
			if row.Terminal != nil && row.Terminal.Literal != row.Prefix {
				return &InvariantError{Row: i, Reason: fmt.Sprintf("terminal %q on row spelling %q", row.Terminal.Literal, row.Prefix)}
			}
			switch {
			case row.Next != 0:
				if row.Next <= i || row.Next >= n {
					return &InvariantError{Row: i, Reason: fmt.Sprintf("child group index %d out of range", row.Next)}
				}
				queue = append(queue, group{start: row.Next, prefix: row.Prefix})
			case row.Terminal == nil:
				return &InvariantError{Row: i, Reason: "dead end: no terminal and no children"}
			}
			prev = row.Char
			if row.Left == 0 {
				break
			}
		}
	}

	for i := t.Start; i < n; i++ {
		if !visited[i] {
			return &InvariantError{Row: i, Reason: "row is unreachable"}
		}
	}
	return nil
}
