package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the busops-auth CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "busops-auth",
		Short: "BusOps identity service",
		Long: `busops-auth registers fleet staff, verifies their credentials and
issues the bearer tokens the rest of the BusOps backend trusts.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// NewVersionCmd creates the version subcommand.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("busops-auth %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
