package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/viant/heromatch/dataset"
	"github.com/viant/heromatch/match"
	"github.com/viant/heromatch/store"
)

func NewImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a hero CSV into the SQLite store and persist the fitted model",
		Args:  cobra.NoArgs,
		RunE:  makeImportRunner(a),
	}
	cmd.Flags().String("csv", "", "Hero CSV file to import")
	cmd.Flags().Bool("verify", true, "Cross-check stored vectors with SQL nearest-neighbor search")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

func makeImportRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if a.cfg.Dataset.DB == "" {
			return errors.New("import needs a database, set --db or dataset.db")
		}
		csvPath, _ := cmd.Flags().GetString("csv")
		verify, _ := cmd.Flags().GetBool("verify")

		ds, err := dataset.LoadCSVFile(csvPath, a.datasetOptions()...)
		if err != nil {
			return explain(err)
		}
		opts, err := a.serviceOptions()
		if err != nil {
			return err
		}
		svc, err := match.New(ds, opts...)
		if err != nil {
			return explain(err)
		}

		st, closeDB, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		if err := st.SaveDataset(ctx, ds); err != nil {
			return fmt.Errorf("save dataset: %w", err)
		}
		rows, err := svc.Params().TransformDataset(ds)
		if err != nil {
			return err
		}
		if err := st.SaveScaled(ctx, rows); err != nil {
			return fmt.Errorf("save scaled vectors: %w", err)
		}
		m, err := svc.Model(match.DefaultModelName)
		if err != nil {
			return err
		}
		if err := st.SaveModel(ctx, m); err != nil {
			return fmt.Errorf("save model: %w", err)
		}
		if verify {
			if err := verifyStored(ctx, st, rows); err != nil {
				return err
			}
		}

		a.logger.WithFields(logrus.Fields{"entities": ds.Len(), "db": a.cfg.Dataset.DB}).Info("import complete")
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d heroes into %s (index %s)\n", ds.Len(), a.cfg.Dataset.DB, m.IndexKind)
		return nil
	}
}

// verifyStored checks that every stored hero is its own nearest neighbor
// when ranked in SQL.
func verifyStored(ctx context.Context, st *store.Store, vectors [][]float64) error {
	for pos, v := range vectors {
		nearest, err := st.Nearest(ctx, v, 1)
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		if len(nearest) == 0 || nearest[0].Distance != 0 {
			return fmt.Errorf("verify: hero %d not found at distance 0", pos)
		}
	}
	return nil
}
