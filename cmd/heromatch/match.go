package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/viant/heromatch/dataset"
	"github.com/viant/heromatch/match"
	"github.com/viant/heromatch/score"
)

// DefaultAttributeValue is the value of an attribute flag left unset.
const DefaultAttributeValue = 50.0

func NewMatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Find the heroes closest to an attribute profile",
		Long:  `Scores every hero against the given attributes and prints the k best matches.`,
		Args:  cobra.NoArgs,
		RunE:  makeMatchRunner(a),
	}
	for _, attr := range dataset.Attributes() {
		cmd.Flags().Float64(attr.String(), DefaultAttributeValue, fmt.Sprintf("%s (0-100)", attr))
	}
	cmd.Flags().IntP("k", "k", 0, "Number of matches (default query.default_k)")
	return cmd
}

func makeMatchRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		query := make([]float64, dataset.Dims)
		for i, attr := range dataset.Attributes() {
			query[i], _ = cmd.Flags().GetFloat64(attr.String())
		}
		k, _ := cmd.Flags().GetInt("k")
		if !cmd.Flags().Changed("k") {
			k = a.cfg.Query.DefaultK
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		svc, err := a.service(cmd.Context())
		if err != nil {
			return explain(err)
		}
		matches, err := svc.FindMatches(cmd.Context(), query, k)
		if err != nil {
			return explain(err)
		}
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), matches)
		}
		printMatches(cmd.OutOrStdout(), matches)
		return nil
	}
}

func printMatches(w io.Writer, matches []match.Match) {
	for i, m := range matches {
		fmt.Fprintf(w, "%d. %-24s %7s  distance %.4f\n", i+1, m.Entity.Name, score.Format(m.Score), m.Distance)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
