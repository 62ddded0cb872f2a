package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/heromatch/dataset"
)

func NewInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Describe the loaded dataset, scaler and index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			svc, err := a.service(cmd.Context())
			if err != nil {
				return explain(err)
			}
			st := svc.Stats()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "entities:    %d\n", st.Entities)
			fmt.Fprintf(out, "index:       %s\n", st.Algorithm)
			fmt.Fprintf(out, "scaler:      %s\n", st.Scaler)
			fmt.Fprintf(out, "fingerprint: %s\n", st.Fingerprint)
			for _, attr := range dataset.Attributes() {
				fmt.Fprintf(out, "  %-12s center %8.3f  spread %8.3f\n", attr, st.Center[attr.String()], st.Spread[attr.String()])
			}
			if len(st.Degenerate) > 0 {
				fmt.Fprintf(out, "degenerate:  %v\n", st.Degenerate)
			}
			return nil
		},
	}
}
