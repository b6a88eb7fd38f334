// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/peril-crawler/internal/perils"
)

const defaultSample = 6

func newCombinationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combinations",
		Short: "Show the keywords and the state/keyword combinations they produce",
		Long: `Combinations loads the keyword file and prints the keyword list, a
sample of the generated "<state> <keyword>" queries, and the totals. No API
calls are made. Use --all to print every query or --json for a JSON list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCombinations(cmd)
		},
	}

	cmd.Flags().String("keywords", defaultKeywordsFile, "keyword file (JSON or YAML)")
	cmd.Flags().Bool("all", false, "print every combination")
	cmd.Flags().Int("sample", defaultSample, "number of sample combinations to print")
	cmd.Flags().Bool("json", false, "output the full query list as JSON")
	return cmd
}

func (a *app) runCombinations(cmd *cobra.Command) error {
	if err := a.bindFlags(cmd, "keywords"); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	kf, err := perils.LoadKeywordFile(a.v.GetString("keywords"))
	if err != nil {
		return err
	}
	states := perils.States()
	combos, err := perils.Generate(states, kf.Keywords)
	if err != nil {
		return err
	}
	queries := perils.Queries(combos)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(append(queries, kf.Extra...))
	}

	fmt.Fprintln(out, "=== Peril Keywords ===")
	for i, k := range kf.Keywords {
		fmt.Fprintf(out, "%2d. %s\n", i+1, k)
	}
	fmt.Fprintf(out, "\nTotal keywords: %d\n", len(kf.Keywords))

	n, _ := cmd.Flags().GetInt("sample")
	if all, _ := cmd.Flags().GetBool("all"); all || n > len(queries) {
		n = len(queries)
	}
	if n > 0 {
		fmt.Fprintln(out, "\n=== Search Combinations ===")
		for i, q := range queries[:n] {
			fmt.Fprintf(out, "%4d. %s\n", i+1, q)
		}
	}

	fmt.Fprintln(out, "\n=== Total Combinations for All States ===")
	fmt.Fprintf(out, "States: %d\n", len(states))
	fmt.Fprintf(out, "Single keyword combinations: %d\n", len(combos))
	if len(kf.Extra) > 0 {
		fmt.Fprintf(out, "Extra queries: %d\n", len(kf.Extra))
	}
	fmt.Fprintf(out, "Total queries: %d\n", len(combos)+len(kf.Extra))
	return nil
}
