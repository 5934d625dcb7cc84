package main

import (
	"os"

	"github.com/spf13/cobra"

	"settlecraft/internal/config"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "settlecraft",
		Short:        "Convert generated settlement pages into a queryable settlement graph",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Project config file (.yaml or .toml)")
	root.AddCommand(initCmd())
	root.AddCommand(convertCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(ingestCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
