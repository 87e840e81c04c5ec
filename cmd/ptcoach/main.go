// Command ptcoach is the operator CLI for PT Coach: it seeds the exercise
// catalog and exports workout cards without going through the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"fieldready/pt-coach/internal/config"
	"fieldready/pt-coach/internal/logging"
	"fieldready/pt-coach/internal/repository/mongo"

	"github.com/spf13/cobra"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	configDir string
	timeout   time.Duration

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "ptcoach",
	Short:         "PT Coach operator tools",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configDir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err = logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", ".", "Directory containing config.yaml")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
}

// withDatabase connects to MongoDB for the duration of fn.
func withDatabase(ctx context.Context, fn func(ctx context.Context, db *mongodriver.Database) error) error {
	client, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongo.DisconnectDB(client); err != nil {
			logger.Warn("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	return fn(ctx, client.Database(cfg.Database.Name))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
