package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"punctab/internal/version"
)

// newRootCmd собирает дерево команд; тесты создают свежее дерево на каждый прогон.
// finalize закрывает трассировку и должен вызываться после Execute.
func newRootCmd() (rootCmd *cobra.Command, finalize func()) {
	rootCmd = &cobra.Command{
		Use:   "punctab",
		Short: "Punctuator lookup table generator",
		Long: `punctab compiles the punctuator arrays of a symbol table header into a
flattened trie that a lexer walks with one row comparison per character`,
		Version:       version.Current().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newGenCmd())
	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newMatchCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("diagnostics-format", "pretty", "diagnostics format (pretty|short|json)")
	rootCmd.PersistentFlags().String("path-mode", "relative", "how diagnostics show file paths (auto|absolute|relative|basename)")
	rootCmd.PersistentFlags().String("trace", "", "write trace events to PATH (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")

	var cleanup func()
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		applyColor(cmd)
		var err error
		cleanup, err = setupTracing(cmd)
		return err
	}
	// PersistentPostRun не вызывается при ошибке RunE, поэтому закрываем снаружи
	finalize = func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	}
	return rootCmd, finalize
}

// main builds the command tree and executes it. Any error, including failed
// tables, exits with status 1.
func main() {
	rootCmd, finalize := newRootCmd()
	err := rootCmd.Execute()
	finalize()
	if err != nil {
		if !isReported(err) {
			rootCmd.PrintErrln("error:", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
