package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"punctab/internal/driver"
)

func newGenCmd() *cobra.Command {
	var (
		o      jobOverrides
		output string
		jobs   int
		uiFlag string
	)
	cmd := &cobra.Command{
		Use:   "gen [flags] [HEADER]",
		Short: "Generate punctuator tables",
		Long: `Gen scans the symbol arrays of HEADER and writes the flattened lookup table.
Without HEADER every [[table]] of punctab.toml is generated in parallel.
Nothing is written for a table that has errors.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := readUIMode(uiFlag)
			if err != nil {
				return err
			}
			return runGen(cmd, args, o, output, jobs, mode)
		},
	}
	addJobFlags(cmd, &o)
	cmd.Flags().StringVar(&o.format, "format", "", "output format (c|json|msgpack); default from the output extension")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (\"-\" for stdout)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "tables generated in parallel (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&uiFlag, "ui", "auto", "progress view (auto|on|off)")
	return cmd
}

func runGen(cmd *cobra.Command, args []string, o jobOverrides, output string, jobs int, mode uiMode) error {
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	header := ""
	if len(args) == 1 {
		header = args[0]
	}
	if header != "" && output == "" {
		output = "-"
	}

	jobList, base, err := resolveJobs(cmd, o, header, output)
	if err != nil {
		return err
	}
	toStdout := output == "-"
	if toStdout {
		jobList[0].Output = ""
	}

	timer := newTimer(g)
	opts := driver.Options{
		MaxDiagnostics: g.maxDiagnostics,
		Jobs:           jobs,
		BaseDir:        base,
		Timer:          timer,
	}
	var results []*driver.Result
	if !toStdout && !g.quiet && shouldUseTUI(mode, len(jobList)) {
		title := fmt.Sprintf("generating %d tables", len(jobList))
		results, err = runGenerateWithUI(cmd.Context(), cmd.OutOrStdout(), title, jobList, opts)
	} else {
		results, err = driver.GenerateAll(cmd.Context(), jobList, opts)
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if err := printDiagnostics(cmd, g, res); err != nil {
			return err
		}
		if res.Failed() {
			failed++
			continue
		}
		if toStdout {
			if _, err := cmd.OutOrStdout().Write(res.Output); err != nil {
				return err
			}
			continue
		}
		if g.quiet {
			continue
		}
		status := "wrote"
		if !res.Written {
			status = "unchanged"
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s %s (%d rows)\n",
			res.Job.Name, status, displayPath(base, res.Job.Output), res.Table.Len())
	}
	printTimings(cmd, g, timer)

	if failed > 0 {
		return &reportedError{msg: fmt.Sprintf("%d of %d tables failed", failed, len(results))}
	}
	return nil
}
