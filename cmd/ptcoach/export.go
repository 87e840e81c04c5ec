package main

import (
	"context"
	"fmt"
	"os"

	"fieldready/pt-coach/internal/domain"
	"fieldready/pt-coach/internal/export"
	"fieldready/pt-coach/internal/repository/mongo"
	"fieldready/pt-coach/internal/storage"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	exportWorkout string
	exportFormat  string
	exportOut     string
	exportUpload  bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a workout card to pdf, xlsx or docx",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportWorkout, "workout", "", "Workout ID")
	exportCmd.Flags().StringVar(&exportFormat, "format", "pdf", "pdf, xlsx or docx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: derived from the title)")
	exportCmd.Flags().BoolVar(&exportUpload, "upload", false, "Upload to object storage and print a download link instead")
	_ = exportCmd.MarkFlagRequired("workout")
}

// writeDocument renders w and writes it to out, or to the derived file name if out is empty.
func writeDocument(w *domain.Workout, f export.Format, out string) (string, error) {
	doc, err := export.Render(w, f)
	if err != nil {
		return "", err
	}
	if out == "" {
		out = doc.FileName
	}
	if err := os.WriteFile(out, doc.Body, 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	workoutID, err := primitive.ObjectIDFromHex(exportWorkout)
	if err != nil {
		return fmt.Errorf("invalid workout ID %q", exportWorkout)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	return withDatabase(ctx, func(ctx context.Context, db *mongodriver.Database) error {
		workout, err := mongo.NewMongoWorkoutRepository(db).GetByID(ctx, workoutID)
		if err != nil {
			return fmt.Errorf("load workout %s: %w", workoutID.Hex(), err)
		}

		if !exportUpload {
			path, err := writeDocument(workout, format, exportOut)
			if err != nil {
				return err
			}
			logger.Info("workout exported", zap.String("workoutId", workoutID.Hex()), zap.String("file", path))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}

		fs, err := storage.NewS3Storage(ctx, cfg.S3, logger)
		if err != nil {
			return err
		}
		res, err := export.NewService(fs, cfg.Export, logger).Export(ctx, workout, format)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.DownloadURL)
		return nil
	})
}
