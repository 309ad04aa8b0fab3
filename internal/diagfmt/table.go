package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"punctab/internal/punct"
)

var (
	tableTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	tableSymbolStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// Table печатает строки таблицы выровненными колонками:
//
//	idx  char  left  next  prefix  symbol
//
// Ширина колонок считается через runewidth, поэтому не-ASCII префиксы не ломают выравнивание.
func Table(w io.Writer, tbl *punct.Table, opts TableOpts) {
	style := func(s lipgloss.Style, text string) string {
		if !opts.Color {
			return text
		}
		return s.Render(text)
	}

	name := opts.Name
	if name == "" {
		name = "table"
	}
	fmt.Fprintln(w, style(tableTitleStyle, fmt.Sprintf("%s: %d rows, start %d", name, tbl.Len(), tbl.Start)))

	header := []string{"idx", "char", "left", "next", "prefix", "symbol"}
	cells := make([][]string, 0, tbl.Len())
	for i, r := range tbl.Rows {
		cells = append(cells, rowCells(i, r))
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range cells {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}
	if opts.Width > 0 {
		widths[4] = opts.Width
	}

	fmt.Fprintln(w, style(tableHeaderStyle, joinCells(header, widths)))
	for _, row := range cells {
		if opts.Color && row[5] != "" {
			line := joinCells(append(row[:5:5], ""), widths)
			fmt.Fprintln(w, line+style(tableSymbolStyle, row[5]))
			continue
		}
		fmt.Fprintln(w, joinCells(row, widths))
	}
}

func rowCells(idx int, r punct.Row) []string {
	if r.IsSentinel() {
		return []string{strconv.Itoa(idx), "", "0", "0", "", ""}
	}
	symbol := ""
	if r.Terminal != nil {
		symbol = r.Terminal.Symbol
	}
	return []string{
		strconv.Itoa(idx),
		strconv.QuoteRune(r.Char),
		strconv.Itoa(r.Left),
		strconv.Itoa(r.Next),
		strconv.Quote(r.Prefix),
		symbol,
	}
}

func joinCells(cells []string, widths []int) string {
	var sb strings.Builder
	for i, c := range cells {
		if i > 0 {
			sb.WriteString("  ")
		}
		if i == len(cells)-1 {
			sb.WriteString(c)
			continue
		}
		// числа выравниваем вправо, текст влево
		if i == 0 || i == 2 || i == 3 {
			sb.WriteString(runewidth.FillLeft(c, widths[i]))
		} else {
			sb.WriteString(runewidth.FillRight(runewidth.Truncate(c, widths[i], "…"), widths[i]))
		}
	}
	return sb.String()
}
