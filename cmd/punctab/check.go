package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"punctab/internal/driver"
)

func newCheckCmd() *cobra.Command {
	var (
		o      jobOverrides
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "check [flags] [HEADER]",
		Short: "Build and verify tables without writing them",
		Long: `Check runs the whole pipeline up to the table verifier and prints the
diagnostics. Without HEADER every table of punctab.toml is checked.
With --strict warnings fail the check as well.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, o, strict)
		},
	}
	addJobFlags(cmd, &o)
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string, o jobOverrides, strict bool) error {
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	header := ""
	if len(args) == 1 {
		header = args[0]
	}
	jobs, base, err := resolveJobs(cmd, o, header, "")
	if err != nil {
		return err
	}

	timer := newTimer(g)
	failed := 0
	for _, job := range jobs {
		res, err := driver.Build(cmd.Context(), job, driver.Options{
			MaxDiagnostics: g.maxDiagnostics,
			BaseDir:        base,
			Timer:          timer,
		})
		if err != nil {
			return err
		}
		if err := printDiagnostics(cmd, g, res); err != nil {
			return err
		}
		if res.Failed() || (strict && res.Bag.HasWarnings()) {
			failed++
			continue
		}
		if !g.quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d literals, %d rows\n",
				job.Name, len(res.Scan.Entries), res.Table.Len())
		}
	}
	printTimings(cmd, g, timer)

	if failed > 0 {
		return &reportedError{msg: fmt.Sprintf("%d of %d tables failed", failed, len(jobs))}
	}
	return nil
}
