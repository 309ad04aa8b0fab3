package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"punctab/internal/punct"
	"punctab/internal/tablegen"
)

const shiftHeader = `static const chunk_tag_t s[] =
{
   { "<",   CT_COMPARE },
   { "<<",  CT_SHIFT   },
   { "<<=", CT_ASSIGN  },
   { "=",   CT_ASSIGN  },
};
`

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root, finalize := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--color", "off"}, args...))
	err := root.Execute()
	finalize()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGen_ToFileAndStdout(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "symbols_table.h", shiftHeader)
	out := filepath.Join(dir, "punctuator_table.h")

	_, stderr, err := runCLI(t, "gen", in, "-o", out)
	if err != nil {
		t.Fatalf("gen: %v\n%s", err, stderr)
	}
	if !strings.Contains(stderr, "punc_table: wrote") {
		t.Errorf("stderr = %q", stderr)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatal(err)
	}

	_, stderr, err = runCLI(t, "gen", in, "-o", out)
	if err != nil || !strings.Contains(stderr, "punc_table: unchanged") {
		t.Errorf("second gen: %v %q", err, stderr)
	}

	stdout, _, err := runCLI(t, "gen", "--table", "shift_table", in)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"static const lookup_entry_t shift_table[] =",
		"   {  '<',   1,   2, &s[0]   },  //   0: '<'",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestGen_ErrorsAreReported(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "dup.h", "static const chunk_tag_t d[] =\n{\n   { \"::\", CT_A },\n   { \"::\", CT_B },\n};\n")
	out := filepath.Join(dir, "dup_table.h")

	_, stderr, err := runCLI(t, "--diagnostics-format", "short", "gen", in, "-o", out)
	if err == nil || !isReported(err) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(stderr, "error PUN2001") || !strings.Contains(stderr, "first defined as d[0]") {
		t.Errorf("stderr = %q", stderr)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Errorf("output written: %v", statErr)
	}
}

func TestGen_Manifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.h", shiftHeader)
	writeFile(t, dir, "b.h", "static const chunk_tag_t b[] =\n{\n   { \"->\", CT_ARROW },\n};\n")
	manifest := writeFile(t, dir, "punctab.toml", `
[[table]]
name = "a_table"
input = "a.h"
output = "gen/a.json"

[[table]]
name = "b_table"
input = "b.h"
output = "gen/b.h"
`)

	_, stderr, err := runCLI(t, "--quiet", "gen", "--config", manifest, "--table", "b_table")
	if err != nil {
		t.Fatalf("gen: %v\n%s", err, stderr)
	}
	if stderr != "" {
		t.Errorf("quiet run printed %q", stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "gen", "a.json")); !os.IsNotExist(err) {
		t.Error("a_table generated despite --table b_table")
	}

	_, _, err = runCLI(t, "--quiet", "gen", "--config", manifest, "-j", "2")
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := tablegen.ReadFile(filepath.Join(dir, "gen", "a.json"))
	if err != nil {
		t.Fatal(err)
	}
	if e, n := tbl.Match("<<=1"); e == nil || e.Symbol != "s[2]" || n != 3 {
		t.Errorf("Match = %v, %d", e, n)
	}

	if _, _, err := runCLI(t, "gen", "--config", manifest, "--table", "nope"); err == nil {
		t.Error("unknown table accepted")
	}
}

func TestDumpMatchCheck(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "symbols_table.h", shiftHeader)

	stdout, _, err := runCLI(t, "dump", "--format", "json", in)
	if err != nil {
		t.Fatal(err)
	}
	var payload tablegen.Payload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("dump json: %v\n%s", err, stdout)
	}
	if len(payload.Rows) != 4 || payload.Table != "punc_table" {
		t.Errorf("payload = %+v", payload)
	}

	stdout, _, err = runCLI(t, "dump", in)
	if err != nil || !strings.Contains(stdout, "punc_table: 4 rows, start 0") {
		t.Errorf("dump pretty: %v\n%s", err, stdout)
	}

	stdout, _, err = runCLI(t, "match", in, "a<<=b")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`   0  "a"    -`, `   1  "<<="  s[2]`, `   4  "b"    -`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("match output missing %q:\n%s", want, stdout)
		}
	}

	stdout, _, err = runCLI(t, "check", in)
	if err != nil || !strings.Contains(stdout, "punc_table: ok, 4 literals, 4 rows") {
		t.Errorf("check: %v\n%s", err, stdout)
	}
}

func TestCheck_StrictFailsOnWarnings(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "symbols_table.h", strings.TrimSuffix(shiftHeader, "};\n"))

	stdout, stderr, err := runCLI(t, "check", in)
	if err != nil {
		t.Fatalf("check without --strict: %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, "punc_table: ok") || !strings.Contains(stderr, "SCN1004") {
		t.Errorf("stdout = %q, stderr = %q", stdout, stderr)
	}

	_, stderr, err = runCLI(t, "--path-mode", "basename", "check", "--strict", in)
	if err == nil || !isReported(err) {
		t.Fatalf("check --strict err = %v", err)
	}
	if !strings.HasPrefix(stderr, "symbols_table.h:1:1: WARNING SCN1004") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestMatch_RejectsCorruptTable(t *testing.T) {
	dir := t.TempDir()
	// Left promises three more siblings that are not in the file
	path := writeFile(t, dir, "t.json", `{"schema": 1, "table": "t", "start": 0, "rows": [
  {"index": 0, "char": "+", "prefix": "+", "left": 3, "next": 0, "symbol": "a"}
]}`)

	_, _, err := runCLI(t, "match", path, "++")
	if !errors.Is(err, punct.ErrInvariant) {
		t.Fatalf("match err = %v, want invariant violation", err)
	}
	if _, _, err := runCLI(t, "dump", path); !errors.Is(err, punct.ErrInvariant) {
		t.Errorf("dump err = %v, want invariant violation", err)
	}
}

func TestTraceAndTimings(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "symbols_table.h", shiftHeader)

	_, stderr, err := runCLI(t, "--trace", "-", "--trace-level", "detail", "--timings", "check", in)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"→ table:punc_table", "→ flatten", "← verify", "timings:", "punc_table/scan"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := runCLI(t, "version", "--format", "json", "--hash")
	if err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Tool != "punctab" || payload.GitCommit == "" {
		t.Errorf("payload = %+v", payload)
	}
	if _, _, err := runCLI(t, "version", "--format", "yaml"); err == nil {
		t.Error("yaml accepted")
	}
}
