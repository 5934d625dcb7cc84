package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"settlecraft/internal/config"
	"settlecraft/internal/settlement"
	"settlecraft/internal/store"
)

func querySettlementsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "settlements",
		Short: "List published settlements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, cfg *config.ProjectConfig, db store.Store) error {
				project := cfg.Project
				if all {
					project = ""
				}
				return runQuerySettlements(ctx, db, project)
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include settlements of every project")
	return cmd
}

func runQuerySettlements(ctx context.Context, db store.Store, project string) error {
	items, err := db.ListSettlements(ctx, project)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(os.Stdout, "No settlements found.")
		return nil
	}

	for _, item := range items {
		fmt.Fprintf(os.Stdout, "%s  %s (%d buildings, %d npcs, %d warnings) from %s, %s\n",
			item.ID,
			item.Title,
			item.Buildings,
			item.Npcs,
			item.Warnings,
			item.SourceFile,
			humanize.Time(item.CreatedAt),
		)
	}
	return nil
}

func queryBuildingsCmd() *cobra.Command {
	var kindName string
	cmd := &cobra.Command{
		Use:   "buildings <settlement-id>",
		Short: "List the buildings of a settlement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind settlement.Kind
			if kindName != "" {
				parsed, err := settlement.ParseKind(kindName)
				if err != nil {
					return err
				}
				kind = parsed
			}
			return withDB(func(ctx context.Context, cfg *config.ProjectConfig, db store.Store) error {
				return runQueryBuildings(ctx, db, args[0], kind)
			})
		},
	}
	cmd.Flags().StringVar(&kindName, "kind", "", "Building kind to filter")
	return cmd
}

func runQueryBuildings(ctx context.Context, db store.Store, settlementID string, kind settlement.Kind) error {
	items, err := db.ListBuildings(ctx, settlementID, kind)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(os.Stdout, "No buildings found.")
		return nil
	}

	for _, item := range items {
		line := fmt.Sprintf("%4d  %s (%s)", item.ID, item.Title, item.Kind)
		if item.Owner != "" {
			line += " owned by " + item.Owner
		}
		fmt.Fprintln(os.Stdout, line)
	}
	return nil
}
