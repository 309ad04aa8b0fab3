package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	var o jobOverrides
	cmd := &cobra.Command{
		Use:   "match [flags] HEADER|TABLE TEXT...",
		Short: "Split text into punctuators with the longest-match walk",
		Long: `Match builds the table and walks it over every TEXT the way the lexer does,
printing each punctuator with its symbol. Characters that start no punctuator
are printed with "-".`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, args[0], args[1:], o)
		},
	}
	addJobFlags(cmd, &o)
	return cmd
}

func runMatch(cmd *cobra.Command, path string, texts []string, o jobOverrides) error {
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	tbl, err := loadTable(cmd, g, path, o)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, text := range texts {
		if len(texts) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s:\n", strconv.Quote(text))
		}
		for _, m := range tbl.Tokenize(text) {
			symbol := "-"
			if m.Entry != nil {
				symbol = m.Entry.Symbol
			}
			if m.Entry == nil && strings.TrimSpace(m.Text) == "" {
				continue
			}
			fmt.Fprintf(out, "%4d  %-6s %s\n", m.Offset, strconv.Quote(m.Text), symbol)
		}
	}
	return nil
}
