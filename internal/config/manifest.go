// Package config discovers and decodes punctab.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest looked up from the working directory upwards.
const FileName = "punctab.toml"

// Manifest is a decoded punctab.toml and where it was found.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the file layout.
type Config struct {
	Defaults TableConfig   `toml:"defaults"`
	Tables   []TableConfig `toml:"table"`
}

// TableConfig describes one generated table. Empty fields fall back to
// [defaults] and then to the built-in defaults.
type TableConfig struct {
	Name       string `toml:"name"`
	Input      string `toml:"input"`
	Output     string `toml:"output"`
	Format     string `toml:"format"`
	TypeName   string `toml:"type_name"`
	KindPrefix string `toml:"kind_prefix"`
	EntryType  string `toml:"entry_type"`
}

// Find walks up from startDir looking for punctab.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and decodes the manifest. ok is false when no manifest exists.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := LoadFile(path)
	return m, true, err
}

// LoadFile decodes the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	meta, err := toml.DecodeFile(abs, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("table") || len(cfg.Tables) == 0 {
		return nil, fmt.Errorf("%s: missing [[table]]", path)
	}
	for i, tc := range cfg.Tables {
		if strings.TrimSpace(tc.Input) == "" {
			return nil, fmt.Errorf("%s: [[table]] #%d: missing input", path, i+1)
		}
		if strings.TrimSpace(tc.Output) == "" {
			return nil, fmt.Errorf("%s: [[table]] #%d: missing output", path, i+1)
		}
	}
	return &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
}

// Built-in defaults.
const (
	DefaultName       = "punc_table"
	DefaultTypeName   = "chunk_tag_t"
	DefaultKindPrefix = "CT_"
	DefaultEntryType  = "lookup_entry_t"
)

// Tables returns every table with defaults applied and paths made absolute
// against the manifest directory. Two tables may not share an output or a
// resolved name: the name becomes the C array identifier.
func (m *Manifest) Tables() ([]TableConfig, error) {
	out := make([]TableConfig, 0, len(m.Config.Tables))
	outputs := make(map[string]int, len(m.Config.Tables))
	names := make(map[string]int, len(m.Config.Tables))
	for i, tc := range m.Config.Tables {
		tc = tc.WithDefaults(m.Config.Defaults)
		tc.Input = m.resolve(tc.Input)
		tc.Output = m.resolve(tc.Output)
		if prev, dup := outputs[tc.Output]; dup {
			return nil, fmt.Errorf("%s: tables #%d and #%d both write %s", m.Path, prev+1, i+1, tc.Output)
		}
		outputs[tc.Output] = i
		if prev, dup := names[tc.Name]; dup {
			return nil, fmt.Errorf("%s: tables #%d and #%d are both named %q", m.Path, prev+1, i+1, tc.Name)
		}
		names[tc.Name] = i
		out = append(out, tc)
	}
	return out, nil
}

// WithDefaults fills empty fields from d and then from the built-in defaults.
func (tc TableConfig) WithDefaults(d TableConfig) TableConfig {
	pick := func(v, fallback, builtin string) string {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
		if fallback = strings.TrimSpace(fallback); fallback != "" {
			return fallback
		}
		return builtin
	}
	tc.Name = pick(tc.Name, d.Name, DefaultName)
	tc.Format = pick(tc.Format, d.Format, "")
	tc.TypeName = pick(tc.TypeName, d.TypeName, DefaultTypeName)
	tc.KindPrefix = pick(tc.KindPrefix, d.KindPrefix, DefaultKindPrefix)
	tc.EntryType = pick(tc.EntryType, d.EntryType, DefaultEntryType)
	return tc
}

func (m *Manifest) resolve(p string) string {
	p = filepath.FromSlash(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(m.Root, p)
}
