package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"punctab/internal/config"
	"punctab/internal/diag"
	"punctab/internal/diagfmt"
	"punctab/internal/driver"
	"punctab/internal/observ"
)

// writerOnly hides Close so the tracer never closes stderr.
type writerOnly struct{ io.Writer }

// reportedError marks failures whose diagnostics were already printed.
type reportedError struct{ msg string }

func (e *reportedError) Error() string { return e.msg }

func isReported(err error) bool {
	var re *reportedError
	return errors.As(err, &re)
}

type globalOptions struct {
	color          bool
	quiet          bool
	timings        bool
	maxDiagnostics int
	diagFormat     string
	pathMode       diagfmt.PathMode
}

func readGlobals(cmd *cobra.Command) (globalOptions, error) {
	flags := cmd.Root().PersistentFlags()
	var g globalOptions
	var err error
	if g.quiet, err = flags.GetBool("quiet"); err != nil {
		return g, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if g.timings, err = flags.GetBool("timings"); err != nil {
		return g, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if g.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return g, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if g.diagFormat, err = flags.GetString("diagnostics-format"); err != nil {
		return g, fmt.Errorf("failed to get diagnostics-format flag: %w", err)
	}
	switch g.diagFormat = strings.ToLower(g.diagFormat); g.diagFormat {
	case "pretty", "short", "json":
	default:
		return g, fmt.Errorf("unsupported diagnostics format %q (must be pretty, short or json)", g.diagFormat)
	}
	mode, err := flags.GetString("path-mode")
	if err != nil {
		return g, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	if g.pathMode, err = diagfmt.ParsePathMode(strings.ToLower(mode)); err != nil {
		return g, err
	}
	g.color = !color.NoColor
	return g, nil
}

// applyColor resolves --color once per run and stores the decision in color.NoColor.
func applyColor(cmd *cobra.Command) {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	switch strings.ToLower(mode) {
	case "on", "always":
		color.NoColor = false
	case "off", "never":
		color.NoColor = true
	default:
		f, ok := cmd.ErrOrStderr().(*os.File)
		color.NoColor = !ok || !isTerminal(f) || os.Getenv("NO_COLOR") != ""
	}
}

// printDiagnostics renders res.Bag to stderr in the selected format.
func printDiagnostics(cmd *cobra.Command, g globalOptions, res *driver.Result) error {
	if res == nil || res.Bag.Len() == 0 {
		return nil
	}
	if g.quiet && !res.Bag.HasErrors() {
		return nil
	}
	out := cmd.ErrOrStderr()
	switch g.diagFormat {
	case "json":
		return diagfmt.JSON(out, res.Bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         g.pathMode,
			Max:              g.maxDiagnostics,
			IncludeNotes:     true,
		})
	case "short":
		_, err := fmt.Fprintln(out, diag.FormatShortDiagnostics(res.Bag.Items(), res.FileSet, true))
		return err
	}
	diagfmt.Pretty(out, res.Bag, res.FileSet, diagfmt.PrettyOpts{
		Color:     g.color,
		Context:   1,
		PathMode:  g.pathMode,
		ShowNotes: true,
	})
	if n := res.Bag.Dropped(); n > 0 {
		fmt.Fprintf(out, "\n%d more diagnostics not shown (--max-diagnostics %d)\n", n, g.maxDiagnostics)
	}
	return nil
}

func printTimings(cmd *cobra.Command, g globalOptions, timer *observ.Timer) {
	if !g.timings || timer == nil {
		return
	}
	fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
}

func newTimer(g globalOptions) *observ.Timer {
	if !g.timings {
		return nil
	}
	return observ.NewTimer()
}

// jobOverrides are the per-command flags shared by gen, check, dump and match.
type jobOverrides struct {
	configPath string
	table      string
	format     string
	typeName   string
	kindPrefix string
}

func addJobFlags(cmd *cobra.Command, o *jobOverrides) {
	cmd.Flags().StringVar(&o.configPath, "config", "", "path to "+config.FileName+" (default: search upwards from the working directory)")
	cmd.Flags().StringVar(&o.table, "table", "", "table name (selects a manifest table, or names the generated array)")
	cmd.Flags().StringVar(&o.typeName, "type-name", "", "element type of the symbol arrays (default "+config.DefaultTypeName+")")
	cmd.Flags().StringVar(&o.kindPrefix, "kind-prefix", "", "prefix of the kind column (default "+config.DefaultKindPrefix+")")
}

// resolveJobs turns the command line into jobs: a HEADER argument makes one
// ad-hoc job, otherwise tables come from the manifest.
func resolveJobs(cmd *cobra.Command, o jobOverrides, header, output string) ([]driver.Job, string, error) {
	if header != "" {
		tc := config.TableConfig{
			Name:       o.table,
			Input:      header,
			Output:     output,
			Format:     o.format,
			TypeName:   o.typeName,
			KindPrefix: o.kindPrefix,
		}.WithDefaults(config.TableConfig{})
		job, err := driver.JobFromConfig(tc)
		if err != nil {
			return nil, "", err
		}
		wd, _ := os.Getwd()
		return []driver.Job{job}, wd, nil
	}

	m, err := loadManifest(o.configPath)
	if err != nil {
		return nil, "", err
	}
	tables, err := m.Tables()
	if err != nil {
		return nil, "", err
	}
	var jobs []driver.Job
	for _, tc := range tables {
		if o.table != "" && tc.Name != o.table {
			continue
		}
		if o.format != "" {
			tc.Format = o.format
		}
		if o.typeName != "" {
			tc.TypeName = o.typeName
		}
		if o.kindPrefix != "" {
			tc.KindPrefix = o.kindPrefix
		}
		job, err := driver.JobFromConfig(tc)
		if err != nil {
			return nil, "", err
		}
		jobs = append(jobs, job)
	}
	if len(jobs) == 0 {
		return nil, "", fmt.Errorf("%s: no table named %q", m.Path, o.table)
	}
	if output != "" {
		if len(jobs) != 1 {
			return nil, "", errors.New("--output needs a HEADER argument or a single --table")
		}
		jobs[0].Output = output
	}
	return jobs, m.Root, nil
}

const noManifestMessage = "no " + config.FileName + " found\nplease pass the symbol table header explicitly, e.g.:\n  punctab gen src/symbols_table.h -o src/punctuator_table.h"

func loadManifest(path string) (*config.Manifest, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	m, ok, err := config.Load(wd)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(noManifestMessage)
	}
	return m, nil
}

func displayPath(base, p string) string {
	if base == "" || !filepath.IsAbs(p) {
		return p
	}
	if rel, err := filepath.Rel(base, p); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return p
}
