package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/viant/heromatch/config"
	"github.com/viant/heromatch/dataset"
	"github.com/viant/heromatch/engine"
	"github.com/viant/heromatch/index"
	"github.com/viant/heromatch/match"
	"github.com/viant/heromatch/scaler"
	"github.com/viant/heromatch/store"
)

// app carries state shared by subcommands once the root pre-run has loaded
// configuration.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *logrus.Logger
	lazy   *match.Lazy
}

func newApp() *app {
	a := &app{v: config.New()}
	a.lazy = match.NewLazy(a.buildService)
	return a
}

func (a *app) bindFlags(cmd *cobra.Command) error {
	bindings := map[string]string{
		"dataset.path": "dataset",
		"dataset.db":   "db",
		"log.level":    "log-level",
		"log.format":   "log-format",
	}
	for key, flag := range bindings {
		if err := a.v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) load(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(a.v, configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

func newLogger(cfg config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(level)
	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return logger, nil
}

func (a *app) datasetOptions() []dataset.Option {
	return []dataset.Option{dataset.WithStrictRange(a.cfg.Dataset.Strict)}
}

func (a *app) serviceOptions() ([]match.Option, error) {
	kind, err := scaler.ParseKind(a.cfg.Scaler.Kind)
	if err != nil {
		return nil, err
	}
	policy, err := scaler.ParsePolicy(a.cfg.Scaler.Degenerate)
	if err != nil {
		return nil, err
	}
	indexKind, err := match.ParseIndexKind(a.cfg.Index.Kind)
	if err != nil {
		return nil, err
	}
	return []match.Option{
		match.WithScaler(kind, policy),
		match.WithIndexKind(indexKind),
		match.WithStrictRange(a.cfg.Query.StrictRange),
		match.WithCacheSize(a.cfg.Cache.Size),
		match.WithMaxK(a.cfg.Query.MaxK),
		match.WithLogger(a.logger),
	}, nil
}

// service blocks until the shared service is built.
func (a *app) service(ctx context.Context) (*match.Service, error) {
	return a.lazy.Wait(ctx)
}

// buildService loads the dataset from the SQLite store when dataset.db is
// set, reusing a stored model if it still matches, and from CSV otherwise.
func (a *app) buildService(ctx context.Context) (*match.Service, error) {
	opts, err := a.serviceOptions()
	if err != nil {
		return nil, err
	}
	if a.cfg.Dataset.DB == "" {
		ds, err := dataset.LoadCSVFile(a.cfg.Dataset.Path, a.datasetOptions()...)
		if err != nil {
			return nil, err
		}
		return match.New(ds, opts...)
	}

	st, closeDB, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer closeDB()
	ds, err := st.LoadDataset(ctx, a.datasetOptions()...)
	if err != nil {
		return nil, err
	}
	m, err := st.LoadModel(ctx, match.DefaultModelName)
	switch {
	case err == nil:
		svc, err := match.FromModel(ds, m, opts...)
		if err == nil {
			return svc, nil
		}
		a.logger.WithError(err).Warn("stored model unusable, refitting")
	case errors.Is(err, store.ErrModelNotFound):
		a.logger.Debug("no stored model, fitting")
	default:
		return nil, err
	}
	return match.New(ds, opts...)
}

func (a *app) openStore(ctx context.Context) (*store.Store, func(), error) {
	if err := engine.RegisterFunctions(); err != nil {
		return nil, nil, err
	}
	db, err := engine.Open(a.cfg.Dataset.DB)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.New(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return st, func() { _ = db.Close() }, nil
}

// explain prefixes err with a message naming its kind.
func explain(err error) error {
	var (
		loadErr  *dataset.LoadError
		queryErr *match.InvalidQueryError
		kErr     *index.InvalidKError
		degenErr *scaler.DegenerateColumnError
	)
	switch {
	case errors.As(err, &loadErr):
		return fmt.Errorf("dataset could not be loaded: %w", err)
	case errors.As(err, &queryErr):
		return fmt.Errorf("query rejected, expected %d finite attribute values: %w", dataset.Dims, err)
	case errors.As(err, &kErr) && kErr.Max > 0:
		return fmt.Errorf("number of matches must be at most %d: %w", kErr.Max, err)
	case errors.As(err, &kErr):
		return fmt.Errorf("number of matches must be at least 1: %w", err)
	case errors.As(err, &degenErr):
		return fmt.Errorf("dataset cannot be scaled: %w", err)
	}
	return err
}
