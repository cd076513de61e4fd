package main

import (
	"os"

	"github.com/spf13/cobra"

	"opsdesk/internal/interfaces/cli/migrate"
	"opsdesk/internal/interfaces/cli/server"
	"opsdesk/internal/interfaces/cli/sync"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "opsdesk",
		Short: "Opsdesk - helpdesk ticket synchronization engine",
		Long:  `Opsdesk mirrors tickets, technicians, and satisfaction responses from an upstream helpdesk into a local database, with timeline enrichment and an HTTP control API.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		sync.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
