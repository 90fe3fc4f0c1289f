// Package cli provides the command-line interface for pingstat.
package cli

import (
	"context"

	"github.com/devlastu/pingstat/config"
	"github.com/devlastu/pingstat/core/stats"
	"github.com/devlastu/pingstat/ingest"
	"github.com/devlastu/pingstat/internal/version"
	"github.com/devlastu/pingstat/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App holds the application dependencies.
type App struct {
	Config     *config.Config
	Store      storage.Store
	Aggregator *stats.Aggregator
	Loader     *ingest.Loader
	Logger     *zap.Logger
}

// NewApp creates a new App with the given configuration.
func NewApp(cfg *config.Config) *App {
	return &App{
		Config: cfg,
		Logger: newLogger(),
	}
}

// InitStore opens the database and wires the aggregator and loader on top.
func (a *App) InitStore(ctx context.Context) error {
	store, err := storage.NewSQLiteStore(a.Config.Storage.Path)
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return err
	}
	a.Store = store
	a.Aggregator = stats.NewAggregator(store, a.Config.Session.Timeout, a.Config.Location())
	a.Loader = ingest.NewLoader(store, a.Logger)
	return nil
}

// Close closes the application resources.
func (a *App) Close() error {
	_ = a.Logger.Sync()
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// GlobalFlags holds the global command flags.
type GlobalFlags struct {
	ConfigPath string
	Verbose    bool
}

var globalFlags GlobalFlags

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pingstat",
		Short: "Game session analytics service",
		Long: `Pingstat reconstructs play sessions from raw ping events and serves
per-user and per-game statistics over a REST API.

Events are bulk loaded from JSONL files into a local SQLite database.
Sessions are derived on demand, so the session timeout can be tuned
without reloading anything.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "increase output verbosity")

	rootCmd.AddCommand(
		NewServeCmd(),
		NewInitCmd(),
		NewStatsCmd(),
		NewStatusCmd(),
		NewConfigCmd(),
		NewVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// newLogger builds the process logger honoring the verbose flag.
func newLogger() *zap.Logger {
	var cfg zap.Config
	if globalFlags.Verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// loadApp loads the application with configuration.
func loadApp() (*App, error) {
	cfg, err := config.Load(globalFlags.ConfigPath)
	if err != nil {
		return nil, ErrConfig("failed to load configuration", err)
	}
	return NewApp(cfg), nil
}
