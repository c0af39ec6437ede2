package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fundhive/fundhive/internal/interfaces/cli/gateways"
	"github.com/fundhive/fundhive/internal/interfaces/cli/migrate"
	"github.com/fundhive/fundhive/internal/interfaces/cli/server"
	"github.com/fundhive/fundhive/internal/interfaces/cli/worker"
	"github.com/fundhive/fundhive/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "fundhive",
		Short:   "Fundhive - crowdfunding payment service",
		Long:    `Fundhive accepts donations and pledges through pluggable payment gateways, tracks campaign progress and notifies backers.`,
		Version: version.String(),
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		worker.NewCommand(),
		migrate.NewCommand(),
		gateways.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
