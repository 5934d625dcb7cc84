package main

import (
	"context"

	"github.com/spf13/cobra"

	"settlecraft/internal/config"
	"settlecraft/internal/store"
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query published settlements from the CLI",
	}
	cmd.AddCommand(querySettlementsCmd())
	cmd.AddCommand(queryBuildingsCmd())
	cmd.AddCommand(queryBuildingCmd())
	cmd.AddCommand(queryNpcCmd())
	cmd.AddCommand(querySearchCmd())
	cmd.AddCommand(querySQLCmd())
	return cmd
}

// withDB opens the project database for the duration of fn.
func withDB(fn func(ctx context.Context, cfg *config.ProjectConfig, db store.Store) error) error {
	ctx := context.Background()

	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	return fn(ctx, cfg, db)
}
