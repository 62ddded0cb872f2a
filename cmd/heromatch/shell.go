package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/heromatch/dataset"
	"github.com/viant/heromatch/metrics"
)

func NewShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Answer match queries read from stdin",
		Long: `Reads one query per line: six attribute values in the order
intelligence strength speed durability power combat, optionally followed by k.
Empty lines and lines starting with # are skipped; "quit" ends the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if a.cfg.Metrics.Enabled {
				exporter, err := metrics.Enable(a.cfg.Metrics.Addr, a.logger)
				if err != nil {
					return err
				}
				defer func() { _ = exporter.Close() }()
				a.logger.WithField("addr", exporter.Addr()).Info("metrics exporter started")
			}
			// the dataset loads while the first line is being typed
			a.lazy.Start(ctx)
			asJSON, _ := cmd.Flags().GetBool("json")

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}
				if line == "quit" || line == "exit" {
					break
				}
				query, k, err := parseQueryLine(line, a.cfg.Query.DefaultK)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
					continue
				}
				svc, err := a.service(ctx)
				if err != nil {
					return explain(err)
				}
				matches, err := svc.FindMatches(ctx, query, k)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", explain(err))
					continue
				}
				if asJSON {
					if err := writeJSON(cmd.OutOrStdout(), matches); err != nil {
						return err
					}
					continue
				}
				printMatches(cmd.OutOrStdout(), matches)
			}
			return scanner.Err()
		},
	}
}

// parseQueryLine splits a line into attribute values and k. Exactly one
// extra field is read as k; any other count is passed on for the service to
// reject.
func parseQueryLine(line string, defaultK int) ([]float64, int, error) {
	fields := strings.Fields(line)
	k := defaultK
	if len(fields) == dataset.Dims+1 {
		n, err := strconv.Atoi(fields[dataset.Dims])
		if err != nil {
			return nil, 0, fmt.Errorf("k %q is not an integer", fields[dataset.Dims])
		}
		k = n
		fields = fields[:dataset.Dims]
	}
	query := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("value %q is not a number", f)
		}
		query[i] = v
	}
	return query, k, nil
}
