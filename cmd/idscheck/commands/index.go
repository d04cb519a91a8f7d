package commands

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nicoarellano/components-na/config"
	"github.com/nicoarellano/components-na/errors"
	"github.com/nicoarellano/components-na/ifc"
	"github.com/nicoarellano/components-na/logger"
	"github.com/nicoarellano/components-na/relations"
	"github.com/nicoarellano/components-na/relations/storage"
)

var indexModelID string

// IndexCmd builds a model's relation index and persists it.
var IndexCmd = &cobra.Command{
	Use:   "index <model.json>",
	Short: "Build and persist a model's relation index",
	Long: `Reads a parsed model document (JSON, one attribute bag per entity),
builds its bidirectional relation index, and stores the serialized index in
the configured SQLite database for later check runs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		modelPath := args[0]
		modelID := resolveModelID(modelPath)

		model, err := ifc.LoadModelFile(modelID, modelPath)
		if err != nil {
			return err
		}

		registry := ifc.NewRegistry()
		registry.Add(model)

		indexer := relations.NewIndexer(registry, registry, logger.Logger)
		defer indexer.Close()

		rel, err := indexer.Index(ctx, model)
		if err != nil {
			return errors.Wrap(err, "indexing relations")
		}

		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		store, err := storage.NewStore(db, logger.Logger)
		if err != nil {
			return err
		}
		if err := store.Save(ctx, modelID, rel); err != nil {
			return err
		}

		pterm.Success.Printf("Indexed %d entities in model %q (%d total in document)\n",
			len(rel), modelID, model.Len())
		return nil
	},
}

func init() {
	IndexCmd.Flags().StringVar(&indexModelID, "model-id", "", "Model identifier (defaults to file name without extension)")
}

func resolveModelID(modelPath string) string {
	if indexModelID != "" {
		return indexModelID
	}
	base := filepath.Base(modelPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func openDatabase() (*sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return storage.Open(cfg.Database.Path, logger.Logger)
}
