package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nicoarellano/components-na/config"
	"github.com/nicoarellano/components-na/errors"
	"github.com/nicoarellano/components-na/facets"
	"github.com/nicoarellano/components-na/facets/specdoc"
	"github.com/nicoarellano/components-na/ifc"
	"github.com/nicoarellano/components-na/logger"
	"github.com/nicoarellano/components-na/relations"
	"github.com/nicoarellano/components-na/relations/storage"
)

var (
	checkModelID string
	checkCached  bool
	checkJSON    bool
	checkWatch   bool
)

// CheckCmd evaluates a specification document against a model.
var CheckCmd = &cobra.Command{
	Use:   "check <spec.toml|spec.yaml> <model.json>",
	Short: "Evaluate a specification document against a model",
	Long: `Loads a specification document (TOML or YAML), indexes the model's
relations (or reuses a persisted index with --cached), evaluates every facet
against the model's property-bearing entities, and reports pass/fail per
entity.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		specPath, modelPath := args[0], args[1]

		verbosity, _ := cmd.Root().PersistentFlags().GetCount("verbose")

		doc, err := specdoc.Load(specPath)
		if err != nil {
			return err
		}

		modelID := checkModelID
		if modelID == "" {
			modelID = resolveModelID(modelPath)
		}

		registry := ifc.NewRegistry()
		indexer := relations.NewIndexer(registry, registry, logger.Logger)
		defer indexer.Close()

		run := func() error {
			model, err := ifc.LoadModelFile(modelID, modelPath)
			if err != nil {
				return err
			}
			registry.Add(model)

			rel, err := loadOrBuildIndex(ctx, indexer, model, modelID)
			if err != nil {
				return err
			}

			entityIDs := propertyBearingEntities(rel)
			logger.Logger.Infow("evaluating specification",
				logger.FieldSpec, doc.Name,
				logger.FieldModelID, modelID,
				logger.FieldCount, len(entityIDs),
			)

			engine := facets.NewEngine(indexer, registry, logger.Logger)
			facetList, err := doc.Build(engine)
			if err != nil {
				return err
			}

			report := facets.NewReport(modelID, doc.Name)
			for i, facet := range facetList {
				results, err := facet.Test(ctx, entityIDs, modelID)
				if err != nil {
					return errors.Wrapf(err, "evaluating facet %d", i)
				}
				name := fmt.Sprintf("%v / %v", facet.PropertySet.Describe(), facet.BaseName.Describe())
				report.AddFacet(name, results)
			}

			if checkJSON {
				output, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return errors.Wrap(err, "formatting report")
				}
				fmt.Println(string(output))
				return nil
			}
			renderReport(report, verbosity)
			return nil
		}

		if err := run(); err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !checkWatch && !cfg.Models.Watch {
			return nil
		}
		return watchAndRerun(modelID, modelPath, indexer, run)
	},
}

// watchAndRerun re-evaluates the specification whenever the model file
// changes, until interrupted. The watcher evicts the cached index; run
// reloads the model and rebuilds.
func watchAndRerun(modelID, modelPath string, indexer *relations.Indexer, run func() error) error {
	watcher, err := relations.NewModelWatcher(modelID, modelPath, indexer, logger.Logger)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	watcher.OnChange(func(string) {
		if err := run(); err != nil {
			pterm.Error.Printf("re-evaluation failed: %v\n", err)
		}
	})
	watcher.Start()
	pterm.Info.Printf("watching %s for changes, press Ctrl-C to stop\n", modelPath)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt
	return nil
}

func init() {
	CheckCmd.Flags().StringVar(&checkModelID, "model-id", "", "Model identifier (defaults to file name without extension)")
	CheckCmd.Flags().BoolVar(&checkCached, "cached", false, "Reuse the persisted relation index instead of rebuilding")
	CheckCmd.Flags().BoolVar(&checkJSON, "json", false, "Output the full report as JSON")
	CheckCmd.Flags().BoolVar(&checkWatch, "watch", false, "Re-evaluate whenever the model file changes")
}

func loadOrBuildIndex(ctx context.Context, indexer *relations.Indexer, model *ifc.MemModel, modelID string) (relations.ModelRelations, error) {
	if checkCached {
		db, err := openDatabase()
		if err != nil {
			return nil, err
		}
		defer db.Close()

		store, err := storage.NewStore(db, logger.Logger)
		if err != nil {
			return nil, err
		}
		rel, err := store.Load(ctx, modelID)
		if err == nil {
			indexer.Install(modelID, rel)
			return rel, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		logger.Logger.Infow("no persisted index, rebuilding", logger.FieldModelID, modelID)
	}
	rel, err := indexer.Index(ctx, model)
	if err != nil {
		return nil, errors.Wrap(err, "indexing relations")
	}
	return rel, nil
}

// propertyBearingEntities returns the entities with an IsDefinedBy slot,
// in ascending ID order. Only those can satisfy a property facet.
func propertyBearingEntities(rel relations.ModelRelations) []int {
	var ids []int
	for entityID, slots := range rel {
		if _, ok := slots[relations.IsDefinedBy]; ok {
			ids = append(ids, entityID)
		}
	}
	sort.Ints(ids)
	return ids
}

func renderReport(report *facets.Report, verbosity int) {
	rows := pterm.TableData{{"Facet", "Passed", "Failed"}}
	for _, fr := range report.Facets {
		rows = append(rows, []string{fr.Facet, fmt.Sprint(fr.Passed), fmt.Sprint(fr.Failed)})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	if verbosity >= logger.VerbosityInfo {
		for _, fr := range report.Facets {
			for _, result := range fr.Results {
				if result.Pass {
					continue
				}
				pterm.Warning.Printf("entity %d (%s) failed %s\n", result.EntityID, result.GlobalID, fr.Facet)
				if logger.ShouldLogTrace(verbosity) {
					for _, check := range result.Checks {
						pterm.Debug.Printf("  %s: current=%v required=%v pass=%t\n",
							check.Parameter, check.CurrentValue, check.RequiredValue, check.Pass)
					}
				}
			}
		}
	}

	if report.Pass() {
		pterm.Success.Printf("Specification %q passed: %d checks\n", report.Spec, report.TotalPassed)
	} else {
		pterm.Error.Printf("Specification %q failed: %d passed, %d failed\n",
			report.Spec, report.TotalPassed, report.TotalFailed)
	}
}
