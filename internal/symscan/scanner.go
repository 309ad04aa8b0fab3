package symscan

import (
	"bytes"
	"fmt"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"punctab/internal/diag"
	"punctab/internal/punct"
	"punctab/internal/source"
)

// Options tune what the scanner recognises.
type Options struct {
	TypeName   string // element type of the arrays, default "chunk_tag_t"
	KindPrefix string // marks the kind column of an entry, default "CT_"
	Reporter   diag.Reporter
}

func (o *Options) defaults() {
	if o.TypeName == "" {
		o.TypeName = "chunk_tag_t"
	}
	if o.KindPrefix == "" {
		o.KindPrefix = "CT_"
	}
}

// Entry is a scanned entry together with where it came from.
type Entry struct {
	punct.Entry
	Group string // array name
	Index int    // position inside the array
	Span  source.Span
}

// Result is everything extracted from one file.
type Result struct {
	Entries []Entry
	Groups  []string // array names in order of appearance
}

type state uint8

const (
	awaitingGroup state = iota
	insideGroup
)

// Scanner walks a file line by line.
type Scanner struct {
	file   *source.File
	opts   Options
	header string // "static const <TypeName>"

	state state
	group string
	idx   int
	open  source.Span // header of the current group

	res Result
}

// New creates a scanner for file.
func New(file *source.File, opts Options) *Scanner {
	opts.defaults()
	return &Scanner{
		file:   file,
		opts:   opts,
		header: "static const " + opts.TypeName,
	}
}

// Scan is a shortcut for New(file, opts).Run().
func Scan(file *source.File, opts Options) Result {
	return New(file, opts).Run()
}

// Run scans the whole file.
func (s *Scanner) Run() Result {
	content := s.file.Content
	var off uint32
	for len(content) > 0 {
		n := bytes.IndexByte(content, '\n')
		line := content
		if n >= 0 {
			line = content[:n]
		}
		s.line(string(line), off)

		adv := offset(len(line))
		if n >= 0 {
			adv++
			content = content[n+1:]
		} else {
			content = nil
		}
		off += adv
	}

	if s.state == insideGroup {
		diag.ReportWarning(s.opts.Reporter, diag.ScanUnclosedGroup, s.open,
			fmt.Sprintf("array %q is not closed before end of file", s.group)).Emit()
	}
	if len(s.res.Groups) == 0 {
		diag.ReportWarning(s.opts.Reporter, diag.ScanNoGroups, source.Span{File: s.file.ID},
			fmt.Sprintf("no \"%s\" arrays found", s.header)).Emit()
	}
	return s.res
}

// offset converts a byte count into a span offset.
func offset(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return v
}

func (s *Scanner) line(raw string, off uint32) {
	lead := len(raw) - len(strings.TrimLeft(raw, " \t"))
	line := strings.TrimSpace(raw)
	span := source.Span{File: s.file.ID, Start: off + offset(lead), End: off + offset(lead+len(line))}

	if strings.HasPrefix(line, s.header) {
		s.openGroup(line, span)
		return
	}

	switch s.state {
	case awaitingGroup:
		return
	case insideGroup:
		if strings.HasPrefix(line, "};") {
			s.state = awaitingGroup
			return
		}
		s.entry(line, span)
	}
}

func (s *Scanner) openGroup(line string, span source.Span) {
	rest := line[len(s.header):]
	// "static const chunk_tag_tx" is another type
	if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return
	}
	br := strings.IndexByte(rest, '[')
	if br < 0 {
		return
	}
	name := strings.TrimSpace(rest[:br])
	if name == "" {
		return
	}
	s.state = insideGroup
	s.group = name
	s.idx = 0
	s.open = span
	s.res.Groups = append(s.res.Groups, name)
}

func (s *Scanner) entry(line string, span source.Span) {
	brace := strings.IndexByte(line, '{')
	kind := strings.Index(line, s.opts.KindPrefix)
	if brace < 0 || kind <= brace {
		return
	}
	tok := strings.TrimSpace(line[brace+1 : kind])

	lit, code, msg := parseLiteral(tok)
	if msg != "" {
		diag.ReportError(s.opts.Reporter, code, span, msg).
			WithNote(s.open, fmt.Sprintf("in array %q", s.group)).
			Emit()
		s.idx++
		return
	}

	s.res.Entries = append(s.res.Entries, Entry{
		Entry: punct.Entry{
			Literal: norm.NFC.String(lit),
			Symbol:  fmt.Sprintf("%s[%d]", s.group, s.idx),
		},
		Group: s.group,
		Index: s.idx,
		Span:  span,
	})
	s.idx++
}

// parseLiteral takes the text between '{' and the kind column, e.g. `"<<=",`
// or `R"(\)",`, and returns the literal or a diagnostic code and message.
func parseLiteral(tok string) (string, diag.Code, string) {
	if strings.HasPrefix(tok, `R"`) {
		open := strings.IndexByte(tok, '(')
		closing := strings.LastIndexByte(tok, ')')
		if open < 0 || closing < 0 || closing < open {
			return "", diag.ScanRawStringParens, "raw string parenthesis not found in " + tok
		}
		return tok[open+1 : closing], 0, ""
	}

	if !strings.HasPrefix(tok, `"`) {
		return "", diag.ScanBadLiteral, "expected a string literal, got " + tok
	}
	var sb strings.Builder
	for i := 1; i < len(tok); i++ {
		c := tok[i]
		switch c {
		case '"':
			return sb.String(), 0, ""
		case '\\':
			if i+1 >= len(tok) {
				return "", diag.ScanUnterminatedLiteral, "unterminated escape in " + tok
			}
			i++
			sb.WriteByte(unescape(tok[i]))
		default:
			sb.WriteByte(c)
		}
	}
	return "", diag.ScanUnterminatedLiteral, "unterminated string literal " + tok
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case '0':
		return 0
	default:
		// \\ \" \' \?
		return c
	}
}
