package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	a := newApp()
	rootCmd := &cobra.Command{
		Use:           "heromatch",
		Short:         "Find the heroes most similar to an attribute profile",
		Long:          `Ranks heroes by Euclidean distance over standardized attributes and scores each match.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	if err := a.bindFlags(rootCmd); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(
		NewMatchCmd(a),
		NewRandomCmd(a),
		NewInfoCmd(a),
		NewImportCmd(a),
		NewShellCmd(a),
		NewConfigCmd(),
	)
	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Config file (default ./heromatch.yaml)")
	cmd.PersistentFlags().String("dataset", "", "Hero CSV file")
	cmd.PersistentFlags().String("db", "", "SQLite database holding imported heroes")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().String("log-format", "", "Log format (text|json)")
}
