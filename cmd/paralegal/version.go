package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/paralegal/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		// Skip .env loading and config for version
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("paralegal version %s\n", version.String())
		},
	}
}
