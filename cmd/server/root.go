package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"liftlog/workout-engine/internal/config"
	"liftlog/workout-engine/internal/logging"
	"liftlog/workout-engine/internal/repository"
	"liftlog/workout-engine/internal/repository/mongo"
	"liftlog/workout-engine/internal/repository/sqlite"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:           "workout-engine",
	Short:         "workout-engine stores and syncs workout plans",
	Long:          "workout-engine serves the workout aggregate API: create, reconcile, copy, delete and list workouts with their exercises and sets.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "Directory containing config.yaml")
}

// bootstrap loads configuration and builds the process logger.
func bootstrap() (config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	return cfg, log, nil
}

// openStore connects the configured backend and brings its schema up to date.
func openStore(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, err
		}
		store := mongo.NewStore(client, cfg.Name)
		if err := mongo.EnsureIndexes(ctx, store); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Name).Msg("mongo store ready")
		return store, nil
	default:
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := sqlite.ApplyMigrations(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		version, err := sqlite.SchemaVersion(db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Str("path", cfg.Path).Int("schema_version", version).Msg("sqlite store ready")
		return sqlite.NewStore(db), nil
	}
}
