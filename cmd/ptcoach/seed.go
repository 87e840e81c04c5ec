package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"fieldready/pt-coach/internal/repository/mongo"
	"fieldready/pt-coach/internal/service"

	"github.com/spf13/cobra"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import exercises from a YAML catalog file",
	Long: `Reads a catalog file of the form

  exercises:
    - name: Back Squat
      category: Strength
      equipment: Barbell
      demoUrl: https://...

and adds every exercise whose name is not already in the catalog.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "catalog.yaml", "Catalog YAML file")
}

type catalogFile struct {
	Exercises []service.ExerciseInput `yaml:"exercises"`
}

// parseCatalog decodes a catalog file, rejecting unknown keys.
func parseCatalog(r io.Reader) ([]service.ExerciseInput, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file catalogFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog file is empty")
		}
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Exercises) == 0 {
		return nil, errors.New("catalog file lists no exercises")
	}
	return file.Exercises, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(seedFile)
	if err != nil {
		return err
	}
	inputs, err := parseCatalog(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", seedFile, err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	return withDatabase(ctx, func(ctx context.Context, db *mongodriver.Database) error {
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		catalog := service.NewCatalogService(mongo.NewMongoExerciseRepository(db))
		report, err := catalog.ImportExercises(ctx, inputs)
		if err != nil {
			return err
		}
		logger.Info("catalog seeded",
			zap.String("file", seedFile),
			zap.Int("created", report.Created),
			zap.Int("skipped", report.Skipped))
		fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d\n", report.Created, report.Skipped)
		return nil
	})
}
