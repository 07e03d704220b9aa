package main

import (
	"fmt"
	"os"

	"github.com/ahmedkatalov/fowWorkProject/app/config"
	"github.com/ahmedkatalov/fowWorkProject/app/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Maintenance commands for the collections ledger",
	Long: `ledgerctl manages the collections ledger database.

Available subcommands:
  migrate  - create or update the schema
  add-user - register a login
  set-role - grant or revoke admin access
  snapshot  - store today's profit snapshot and send the daily report
  summaries - list cached payment-history day totals
  deletions - show the audit log of deleted clients`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_FILE"), "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(addUserCmd)
	rootCmd.AddCommand(setRoleCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(summariesCmd)
	rootCmd.AddCommand(deletionsCmd)
}

// env is what every subcommand needs: config, logger and an open store.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  database.Store
	close  func() error
}

func openEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := config.NewLogger(verbose || cfg.Debug)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := database.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, store: store, close: closeStore}, nil
}

func (e *env) Close() {
	_ = e.close()
	_ = e.logger.Sync()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
