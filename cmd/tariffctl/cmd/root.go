// Package cmd provides the tariffctl commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tariff-backend/internal/app"
	"tariff-backend/internal/config"
	"tariff-backend/internal/database"
	"tariff-backend/internal/logging"
)

var (
	envFile    string
	jsonOutput bool
	verbose    bool
)

// servicesLoader opens the database and builds the domain services; the returned func releases them.
type servicesLoader func() (*app.Services, func(), error)

// loadServices is replaced in tests with in-memory services.
var loadServices servicesLoader = openServices

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tariffctl",
	Short: "Calculate import duties and manage calculation history",
	Long: `tariffctl talks to the tariff database directly.

Examples:
  tariffctl calculate --hts 12345678 --destination US --value 100 --quantity 10
  tariffctl calculate --hts 12345678 --origin MX --destination US --value 100 --quantity 10 --save
  tariffctl history list --destination US
  tariffctl convert 100 USD EUR`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "configs/.env", "env file with database settings")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func openServices() (*app.Services, func(), error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	} else {
		cfg.Log.Level = "warn"
	}
	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: "console"})

	db, err := database.NewConnection(cfg.Database.DSN(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	release := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = logger.Sync()
	}
	logger.Debug("connected to database", zap.String("host", cfg.Database.Host))
	return app.NewServices(db, cfg, nil, nil, logger), release, nil
}

// withServices runs fn against freshly opened services and releases them afterwards.
func withServices(fn func(*app.Services) error) error {
	services, release, err := loadServices()
	if err != nil {
		return err
	}
	defer release()
	return fn(services)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
