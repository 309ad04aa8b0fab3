package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"punctab/internal/diag"
	"punctab/internal/punct"
	"punctab/internal/source"
)

const header = "static const chunk_tag_t symbols2[] =\n{\n   { \"<<\", CT_ARITH },\n   { \"<<\", CT_SHIFT },\n};\n"

func duplicateBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSetWithBase("/home/user/project")
	fileID := fs.Add("/home/user/project/src/symbols_table.h", []byte(header), 0)

	bag := diag.NewBag(10)
	first := source.Span{File: fileID, Start: uint32(strings.Index(header, "{ \"<<\"")), End: uint32(strings.Index(header, "{ \"<<\"") + 6)}
	second := strings.LastIndex(header, "{ \"<<\"")
	d := diag.NewError(diag.PunDuplicateLiteral, source.Span{File: fileID, Start: uint32(second), End: uint32(second + 6)}, "duplicate literal \"<<\"").
		WithNote(first, "first defined as symbols2[0]")
	bag.Add(d)
	return bag, fs
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	bag, fs := duplicateBag(t)

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/symbols_table.h"},
		{"Relative path", PathModeRelative, "src/symbols_table.h"},
		{"Basename only", PathModeBasename, "symbols_table.h:4:4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "ERROR PUN2001: duplicate literal") {
				t.Errorf("missing headline in:\n%s", output)
			}
		})
	}
}

func TestPrettySnippetAndNotes(t *testing.T) {
	bag, fs := duplicateBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, Context: 1, ShowNotes: true})

	want := strings.Join([]string{
		"symbols_table.h:4:4: ERROR PUN2001: duplicate literal \"<<\"",
		"3 |    { \"<<\", CT_ARITH },",
		"4 |    { \"<<\", CT_SHIFT },",
		"  |    ^~~~~~",
		"5 | };",
		"  note: symbols_table.h:3:4: first defined as symbols2[0]",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("pretty output mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestJSONOutput(t *testing.T) {
	bag, fs := duplicateBag(t)
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeRelative, IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}

	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Code != "PUN2001" || d.Severity != "ERROR" {
		t.Errorf("diagnostic = %+v", d)
	}
	if d.Location.File != "src/symbols_table.h" || d.Location.StartLine != 4 || d.Location.StartCol != 4 {
		t.Errorf("location = %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location.StartLine != 3 {
		t.Errorf("notes = %+v", d.Notes)
	}
}

func TestJSONMax(t *testing.T) {
	bag := diag.NewBag(0)
	fs := source.NewFileSet()
	for range 3 {
		bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: 99}, "missing"))
	}
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if out.Count != 2 || out.Diagnostics[0].Location.File != "<unknown>" {
		t.Errorf("out = %+v", out)
	}
}

func TestTableDump(t *testing.T) {
	reg, err := punct.RegistryFrom([]punct.Entry{
		{Literal: "+", Symbol: "sym[0]"},
		{Literal: "++", Symbol: "sym[1]"},
		{Literal: "+=", Symbol: "sym[2]"},
	})
	if err != nil {
		t.Fatal(err)
	}
	trie, err := punct.Build(reg)
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := punct.Flatten(trie)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	Table(&buf, tbl, TableOpts{Name: "punc_table"})
	want := strings.Join([]string{
		"punc_table: 3 rows, start 0",
		"idx  char  left  next  prefix  symbol",
		"  0  '+'      0     1  \"+\"     sym[0]",
		"  1  '+'      1     0  \"++\"    sym[1]",
		"  2  '='      0     0  \"+=\"    sym[2]",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("dump mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}
