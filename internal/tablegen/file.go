package tablegen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"punctab/internal/punct"
)

// WriteFile renders the table and atomically replaces path with it.
// Nothing is written when rendering fails.
func WriteFile(path string, tbl *punct.Table, f Format, opts Options) error {
	var buf bytes.Buffer
	if err := Write(&buf, tbl, f, opts); err != nil {
		return err
	}
	_, err := ReplaceFile(path, buf.Bytes())
	return err
}

// ReplaceFile atomically replaces path with data via a temp file and rename.
// An existing file with identical content is left untouched so its mtime
// does not trigger rebuilds; the result reports whether the file changed.
func ReplaceFile(path string, data []byte) (bool, error) {
	// #nosec G304 -- path is provided by the caller
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, data) {
		return false, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, err
	}
	tmp, err := os.CreateTemp(dir, ".punctab-*")
	if err != nil {
		return false, err
	}
	defer func() {
		// после успешного Rename файла уже нет
		_ = os.Remove(tmp.Name())
	}()

	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return false, err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return false, err
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}
	// Атомарная замена
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, err
	}
	return true, nil
}

// ReadFile loads a table written in the json or msgpack format and rejects
// tables that fail punct.Verify, so a stale or edited file never reaches the walker.
func ReadFile(path string) (*punct.Table, error) {
	f, ok := FormatFromPath(path)
	if !ok || f == FormatC {
		return nil, fmt.Errorf("%s: only .json and .mp tables can be loaded", path)
	}
	// #nosec G304 -- path is provided by the caller
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	p, err := ReadPayload(fh, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tbl, err := p.Decode()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := punct.Verify(tbl); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tbl, nil
}
