package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"punctab/internal/diag"
	"punctab/internal/source"
)

type palette struct {
	err, warn, info, note, path, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgGreen),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.path, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// затем строку исходника с подчёркиванием ^~~~ по Span (если он не пустой), затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		loc := locate(fs, d.Primary, opts.PathMode)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.path.Sprint(loc.String()),
			p.severity(d.Severity).Sprint(strings.ToUpper(d.Severity.String())),
			d.Code.ID(),
			d.Message,
		)
		// пустой span относится ко всему файлу, строку не показываем
		if loc.ok && !d.Primary.Empty() {
			writeSnippet(w, fs, d.Primary, int(opts.Context), p)
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			nloc := locate(fs, n.Span, opts.PathMode)
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), nloc.String(), n.Msg)
		}
	}
}

type location struct {
	path      string
	line, col uint32
	ok        bool
}

func (l location) String() string {
	if !l.ok || l.line == 0 {
		return l.path
	}
	return fmt.Sprintf("%s:%d:%d", l.path, l.line, l.col)
}

func locate(fs *source.FileSet, span source.Span, mode PathMode) location {
	if fs == nil || int(span.File) >= fs.Len() {
		return location{path: "<unknown>"}
	}
	f := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	return location{
		path: f.FormatPath(mode.mode(), fs.BaseDir()),
		line: start.Line,
		col:  start.Col,
		ok:   true,
	}
}

// writeSnippet prints the primary line with up to ctx lines around it and
// underlines the span on the primary line.
func writeSnippet(w io.Writer, fs *source.FileSet, span source.Span, ctx int, p palette) {
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)
	if len(f.Content) == 0 {
		return
	}
	first := int(start.Line) - ctx
	if first < 1 {
		first = 1
	}
	last := min(int(start.Line)+ctx, len(f.LineIdx)+1)
	gutterWidth := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		lineNum, err := safecast.Conv[uint32](ln)
		if err != nil {
			return
		}
		text := f.GetLine(lineNum)
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, ln), expandTabs(text))
		if ln != int(start.Line) {
			continue
		}
		col := min(int(start.Col)-1, len(text))
		stop := len(text)
		if end.Line == start.Line && int(end.Col)-1 <= len(text) {
			stop = int(end.Col) - 1
		}
		pad := runewidth.StringWidth(expandTabs(text[:col]))
		width := max(runewidth.StringWidth(expandTabs(text[col:stop])), 1)
		marker := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", gutterWidth, ""), strings.Repeat(" ", pad), p.caret.Sprint(marker))
	}
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
