package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"settlecraft/internal/config"
	"settlecraft/internal/settlement"
	"settlecraft/internal/store"
)

func queryBuildingCmd() *cobra.Command {
	var showContent bool
	cmd := &cobra.Command{
		Use:   "building <settlement-id> <building-id>",
		Short: "Display a building with its people and wares",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := settlement.ParseBuildingID(args[1])
			if !ok {
				return fmt.Errorf("invalid building id %q", args[1])
			}
			return withDB(func(ctx context.Context, cfg *config.ProjectConfig, db store.Store) error {
				return runQueryBuilding(ctx, db, args[0], id, showContent)
			})
		},
	}
	cmd.Flags().BoolVar(&showContent, "content", false, "Print the rendered content fragment")
	return cmd
}

func runQueryBuilding(ctx context.Context, db store.Store, settlementID string, id settlement.BuildingID, showContent bool) error {
	rec, err := db.GetBuilding(ctx, settlementID, id)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(os.Stdout, "No building %s in settlement %s.\n", id, settlementID)
		return nil
	}
	if err != nil {
		return err
	}

	b := rec.Building
	fmt.Fprintf(os.Stdout, "Building: %s\n", b.ID)
	fmt.Fprintf(os.Stdout, "Title: %s\n", b.Title)
	fmt.Fprintf(os.Stdout, "Kind: %s\n", b.Kind)
	if b.Info != "" {
		fmt.Fprintf(os.Stdout, "Info: %s\n", b.Info)
	}
	if b.Owner != nil {
		fmt.Fprintf(os.Stdout, "Owner: %s\n", *b.Owner)
	}
	if len(b.Family) > 0 {
		fmt.Fprintf(os.Stdout, "Family: %s\n", joinIDs(b.Family))
	}
	if len(b.Occupants) > 0 {
		fmt.Fprintf(os.Stdout, "Occupants: %s\n", joinIDs(b.Occupants))
	}
	if len(b.Products) > 0 {
		fmt.Fprintln(os.Stdout, "Products:")
		for _, p := range b.Products {
			fmt.Fprintf(os.Stdout, "  %s  %s  (%s in stock)\n", p.Item, p.Cost, p.Stock)
		}
	}
	if len(b.Spells) > 0 {
		if b.SpellsCastOn != "" {
			fmt.Fprintf(os.Stdout, "Spells (%s):\n", b.SpellsCastOn)
		} else {
			fmt.Fprintln(os.Stdout, "Spells:")
		}
		for _, sp := range b.Spells {
			fmt.Fprintf(os.Stdout, "  %s  %d\n", sp.Name, sp.Cost)
		}
	}
	if showContent {
		fmt.Fprintf(os.Stdout, "\n%s\n", rec.Content)
	}
	return nil
}

func queryNpcCmd() *cobra.Command {
	var showContent bool
	cmd := &cobra.Command{
		Use:   "npc <settlement-id> <npc-id>",
		Short: "Display an NPC and their family links",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := settlement.ParseNpcID(args[1])
			if err != nil {
				return err
			}
			return withDB(func(ctx context.Context, cfg *config.ProjectConfig, db store.Store) error {
				return runQueryNpc(ctx, db, args[0], id, showContent)
			})
		},
	}
	cmd.Flags().BoolVar(&showContent, "content", false, "Print the rendered content fragment")
	return cmd
}

func runQueryNpc(ctx context.Context, db store.Store, settlementID string, id settlement.NpcID, showContent bool) error {
	rec, err := db.GetNpc(ctx, settlementID, id)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(os.Stdout, "No npc %s in settlement %s.\n", id, settlementID)
		return nil
	}
	if err != nil {
		return err
	}

	n := rec.Npc
	fmt.Fprintf(os.Stdout, "Npc: %s\n", n.ID)
	fmt.Fprintf(os.Stdout, "Name: %s\n", n.Name)
	fmt.Fprintf(os.Stdout, "Role: %s\n", n.Role)
	if n.Profession != "" {
		profession := n.Profession
		if n.ProfessionInfo != "" {
			profession += " [" + n.ProfessionInfo + "]"
		}
		fmt.Fprintf(os.Stdout, "Profession: %s\n", profession)
	}
	if n.HeightCm != nil {
		fmt.Fprintf(os.Stdout, "Height: %d cm\n", *n.HeightCm)
	}
	if n.WeightKg != nil {
		fmt.Fprintf(os.Stdout, "Weight: %d kg\n", *n.WeightKg)
	}
	if n.Description != "" {
		fmt.Fprintf(os.Stdout, "Description: %s\n", n.Description)
	}
	if len(n.Clothing) > 0 {
		fmt.Fprintf(os.Stdout, "Wearing: %s\n", strings.Join(n.Clothing, ", "))
	}
	if len(n.Possessions) > 0 {
		fmt.Fprintf(os.Stdout, "Possessions: %s\n", strings.Join(n.Possessions, ", "))
	}
	if n.Spouse != nil {
		fmt.Fprintf(os.Stdout, "Spouse: %s\n", *n.Spouse)
	}
	if len(n.Children) > 0 {
		fmt.Fprintf(os.Stdout, "Children: %s\n", joinIDs(n.Children))
	}
	if n.Building != nil {
		fmt.Fprintf(os.Stdout, "Building: %s\n", *n.Building)
	}
	if showContent {
		fmt.Fprintf(os.Stdout, "\n%s\n", rec.Content)
	}
	return nil
}

func joinIDs(ids []settlement.NpcID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ", ")
}
