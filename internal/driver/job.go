package driver

import (
	"fmt"

	"punctab/internal/config"
	"punctab/internal/diag"
	"punctab/internal/observ"
	"punctab/internal/punct"
	"punctab/internal/source"
	"punctab/internal/symscan"
	"punctab/internal/tablegen"
)

// Job describes one table: where its entries come from and where it goes.
type Job struct {
	Name       string
	Input      string
	Output     string // "" for Build-only jobs
	Format     tablegen.Format
	TypeName   string
	KindPrefix string
	EntryType  string
}

// JobFromConfig converts a manifest table. An empty format is inferred from
// the output extension and falls back to c.
func JobFromConfig(tc config.TableConfig) (Job, error) {
	job := Job{
		Name:       tc.Name,
		Input:      tc.Input,
		Output:     tc.Output,
		TypeName:   tc.TypeName,
		KindPrefix: tc.KindPrefix,
		EntryType:  tc.EntryType,
	}
	if tc.Format != "" {
		f, err := tablegen.ParseFormat(tc.Format)
		if err != nil {
			return Job{}, fmt.Errorf("table %q: %w", tc.Name, err)
		}
		job.Format = f
	}
	job.Format = job.resolvedFormat()
	return job, nil
}

func (j Job) resolvedFormat() tablegen.Format {
	if j.Format != "" {
		return j.Format
	}
	if f, ok := tablegen.FormatFromPath(j.Output); ok {
		return f
	}
	return tablegen.FormatC
}

func (j Job) name() string {
	if j.Name != "" {
		return j.Name
	}
	return config.DefaultName
}

// Options tune a driver run.
type Options struct {
	MaxDiagnostics int
	Jobs           int           // parallel tables, <= 0 means GOMAXPROCS
	BaseDir        string        // relative paths in diagnostics are rendered against it
	Timer          *observ.Timer // optional
	Observer       PhaseObserver // optional
}

// Result holds everything one table run produced.
type Result struct {
	Job     Job
	FileSet *source.FileSet
	FileID  source.FileID
	Bag     *diag.Bag
	Scan    symscan.Result
	Table   *punct.Table // nil when the pipeline stopped on errors
	Output  []byte       // rendered artifact, Generate only
	Written bool         // output file was replaced
}

// Failed reports whether the run produced error diagnostics.
func (r *Result) Failed() bool {
	return r.Bag.HasErrors()
}
