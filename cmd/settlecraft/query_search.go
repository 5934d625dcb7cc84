package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"settlecraft/internal/config"
	"settlecraft/internal/store"
)

func querySearchCmd() *cobra.Command {
	var settlementID string
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search NPCs using the full-text index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withDB(func(ctx context.Context, cfg *config.ProjectConfig, db store.Store) error {
				return runQuerySearch(ctx, db, query, settlementID)
			})
		},
	}
	cmd.Flags().StringVar(&settlementID, "settlement", "", "Settlement id to restrict the search to")
	return cmd
}

func runQuerySearch(ctx context.Context, db store.Store, query, settlementID string) error {
	results, err := db.SearchNpcs(ctx, query, settlementID)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(os.Stdout, "No matches found.")
		return nil
	}

	for _, result := range results {
		where := ""
		if result.Building != nil {
			where = fmt.Sprintf(" in building %s", *result.Building)
		}
		fmt.Fprintf(os.Stdout, "%s/%s %s", result.SettlementID, result.NpcID, result.Name)
		if result.Profession != "" {
			fmt.Fprintf(os.Stdout, " (%s)", result.Profession)
		}
		fmt.Fprintf(os.Stdout, "%s score=%.2f\n", where, result.Score)
		if result.Snippet != "" {
			fmt.Fprintf(os.Stdout, "    %s\n", result.Snippet)
		}
	}
	return nil
}
