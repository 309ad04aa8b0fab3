package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"punctab/internal/diagfmt"
	"punctab/internal/driver"
	"punctab/internal/punct"
	"punctab/internal/tablegen"
)

func newDumpCmd() *cobra.Command {
	var (
		o      jobOverrides
		format string
	)
	cmd := &cobra.Command{
		Use:   "dump [flags] HEADER|TABLE",
		Short: "Print the rows of a table",
		Long: `Dump prints the flattened rows built from a symbol table header, or the rows
of a table previously generated in the json or msgpack format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd, args[0], o, format)
		},
	}
	addJobFlags(cmd, &o)
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	return cmd
}

func runDump(cmd *cobra.Command, path string, o jobOverrides, format string) error {
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	name := o.table
	tbl, err := loadTable(cmd, g, path, o)
	if err != nil {
		return err
	}
	if name == "" {
		name = "punc_table"
	}

	if format == "json" {
		return tablegen.WriteJSON(cmd.OutOrStdout(), tbl, tablegen.Options{Name: name})
	}
	diagfmt.Table(cmd.OutOrStdout(), tbl, diagfmt.TableOpts{Color: g.color, Name: name})
	return nil
}

// loadTable reads a generated json/msgpack table, or builds one from a header.
func loadTable(cmd *cobra.Command, g globalOptions, path string, o jobOverrides) (*punct.Table, error) {
	if f, ok := tablegen.FormatFromPath(path); ok && f != tablegen.FormatC {
		return tablegen.ReadFile(path)
	}

	jobs, base, err := resolveJobs(cmd, o, path, "")
	if err != nil {
		return nil, err
	}
	res, err := driver.Build(cmd.Context(), jobs[0], driver.Options{MaxDiagnostics: g.maxDiagnostics, BaseDir: base})
	if err != nil {
		return nil, err
	}
	if err := printDiagnostics(cmd, g, res); err != nil {
		return nil, err
	}
	if res.Failed() {
		return nil, &reportedError{msg: path + ": table has errors"}
	}
	return res.Table, nil
}
