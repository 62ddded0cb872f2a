package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/heromatch/dataset"
)

func NewRandomCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Show random heroes for inspiration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, _ := cmd.Flags().GetInt("n")
			seed, _ := cmd.Flags().GetInt64("seed")
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			asJSON, _ := cmd.Flags().GetBool("json")

			svc, err := a.service(cmd.Context())
			if err != nil {
				return explain(err)
			}
			heroes := svc.Random(n, seed)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), heroes)
			}
			for _, e := range heroes {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s", e.Name)
				for _, attr := range dataset.Attributes() {
					fmt.Fprintf(cmd.OutOrStdout(), " %s=%g", attr, e.Get(attr))
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
	cmd.Flags().IntP("n", "n", 5, "Number of heroes")
	cmd.Flags().Int64("seed", 0, "Random seed (default: current time)")
	return cmd
}
