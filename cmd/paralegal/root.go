package main

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/paralegal/internal/config"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	env        string
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "paralegal",
		Short: "Retrieval-augmented legal question answering",
		Long: `paralegal answers legal questions from a corpus of reference passages.
It retrieves the nearest passages from a vector store and asks a language
model to answer based only on them. Running it without a subcommand starts
the HTTP API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadDotEnv(flags.envFile)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.env, "env", "",
		"environment name selecting config/<env>.yaml (default: $ENV or local)")
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "",
		"explicit config file path (overrides --env)")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before config")

	root.AddCommand(
		newServeCmd(flags),
		newAskCmd(flags),
		newSeedCmd(flags),
		newVersionCmd(),
	)
	return root
}

// loadDotEnv loads path into the environment without overriding set variables.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !isNotExist(err) {
		return err
	}
	return nil
}

func (f *globalFlags) environment() string {
	if f.env != "" {
		return f.env
	}
	return config.GetEnv()
}

func (f *globalFlags) load() (config.Config, error) {
	if f.configPath != "" {
		return config.LoadFile(f.configPath)
	}
	return config.Load(f.environment())
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
