package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nicoarellano/components-na/cmd/idscheck/commands"
	"github.com/nicoarellano/components-na/config"
	"github.com/nicoarellano/components-na/logger"
)

var rootCmd = &cobra.Command{
	Use:   "idscheck",
	Short: "idscheck - Relation indexing and specification checking for building models",
	Long: `idscheck indexes the typed relationships of a parsed building model and
evaluates declarative specification facets against it.

Available commands:
  index   - Build and persist a model's relation index
  check   - Evaluate a specification document against a model
  version - Show version information

Examples:
  idscheck index clinic.json --model-id clinic
  idscheck check walls.spec.toml clinic.json --model-id clinic`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		jsonLogs := cfg.Log.JSON
		if cmd.Flags().Changed("json-logs") {
			jsonLogs, _ = cmd.Flags().GetBool("json-logs")
		}
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit structured JSON logs")

	rootCmd.AddCommand(commands.IndexCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
