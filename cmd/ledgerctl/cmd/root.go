// Package cmd provides CLI commands for ledgerctl.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/simaogato/orbital-ledger/internal/adapter/rates"
	"github.com/simaogato/orbital-ledger/internal/adapter/repository"
	"github.com/simaogato/orbital-ledger/internal/config"
	"github.com/simaogato/orbital-ledger/internal/logger"
	"github.com/simaogato/orbital-ledger/internal/usecase/converter"
	"github.com/simaogato/orbital-ledger/internal/usecase/ledger"
	"github.com/simaogato/orbital-ledger/internal/usecase/seeder"
)

var (
	cfgFile string
	debug   bool
	userID  string

	log = zerolog.Nop()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operate on stored ledgers",
	Long: `ledgerctl works directly against the configured ledger store.

It supports:
- Exporting and importing ledger documents
- Catching up recurring rules
- Inspecting conversion rates and net worth
- Backing ledgers up to and restoring them from Cloud Storage

Example:
  ledgerctl export --user alice --out alice.json
  ledgerctl networth --user alice --currency EUR`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "info"
		if debug {
			level = "debug"
		}
		log = logger.New(level, logger.FormatConsole)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&userID, "user", seeder.DemoUserID, "ledger owner")

	// Add subcommands
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(recurringCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(networthCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(usersCmd)
}

// session bundles what a subcommand needs to work on one ledger
type session struct {
	cfg       *config.Config
	store     repository.Store
	provider  *rates.HTTPProvider
	converter *converter.CurrencyConverter
	engine    *ledger.Engine
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close store")
	}
}

// loadConfig loads and validates the configuration
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	exitOnError(err, "failed to load configuration")
	exitOnError(cfg.Validate(), "invalid configuration")
	return cfg
}

// openSession opens the store and loads the ledger of --user
func openSession(ctx context.Context) *session {
	cfg := loadConfig()

	store, err := repository.Open(ctx, cfg.Store)
	exitOnError(err, "failed to open ledger store")

	provider := rates.NewHTTPProvider(rates.ProviderConfig{
		PrimaryURL:  cfg.Rates.PrimaryURL,
		FallbackURL: cfg.Rates.FallbackURL,
		CacheTTL:    cfg.Rates.CacheTTL,
		Timeout:     cfg.Rates.Timeout,
	}, log)
	conv := converter.NewCurrencyConverter(provider, log)

	engine := ledger.NewEngine(userID, conv, store, log)
	if err := engine.Load(ctx); err != nil {
		_ = store.Close()
		exitOnError(err, "failed to load ledger")
	}

	return &session{
		cfg:       cfg,
		store:     store,
		provider:  provider,
		converter: conv,
		engine:    engine,
	}
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		log.Error().Err(err).Msg(msg)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
