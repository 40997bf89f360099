// Package cmd wires configuration, storage and services into the vinaudit
// command-line interface.
package cmd

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/quantum-builds/VinAudit/config"
	"github.com/quantum-builds/VinAudit/metrics"
	"github.com/quantum-builds/VinAudit/storage"
	"github.com/quantum-builds/VinAudit/utils"
)

// app is the state shared by every subcommand once PersistentPreRunE ran.
type app struct {
	v        *viper.Viper
	cfg      *config.Config
	logger   *utils.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

// RootCommand creates and returns the root command.
func RootCommand() *cobra.Command {
	a := &app{v: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:           "vinaudit",
		Short:         "Vehicle listing ingestion and price estimates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, a.v)

	rootCmd.AddCommand(
		ingestCommand(a),
		estimateCommand(a),
		makesCommand(a),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.initialize()
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a.logger != nil {
			a.logger.Sync()
		}
	}

	return rootCmd
}

// initialize resolves configuration after flags are parsed so that
// command-line values take precedence over the environment.
func (a *app) initialize() error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = utils.NewLogger(cfg.LogMode)
	if !cfg.EnvFileLoaded {
		a.logger.Debug("[config] No .env file found, using environment and flags")
	}

	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.New(a.registry)
	return nil
}

// openStorage connects to the configured database.
func (a *app) openStorage(ctx context.Context) (*storage.DB, error) {
	if a.cfg.Driver == storage.DriverSQLite {
		a.logger.Info("Using sqlite database %s", a.cfg.SQLitePath)
		return storage.OpenSQLiteFile(ctx, a.cfg.SQLitePath, a.logger)
	}
	a.logger.Info("Using postgres database %s on %s:%s", a.cfg.PostgresDB, a.cfg.PostgresHost, a.cfg.PostgresPort)
	return storage.Open(ctx, a.cfg.StorageOptions(), a.logger)
}

// startMetrics serves the registry when METRICS_ADDR is set. The returned
// stop function is always safe to call.
func (a *app) startMetrics() func() {
	if a.cfg.MetricsAddr == "" {
		return func() {}
	}
	srv, err := metrics.Serve(a.cfg.MetricsAddr, a.registry, a.logger)
	if err != nil {
		a.logger.Warn("[metrics] could not listen on %s: %v", a.cfg.MetricsAddr, err)
		return func() {}
	}
	return func() {
		if err := srv.Close(); err != nil {
			a.logger.Warn("[metrics] shutdown: %v", err)
		}
	}
}

func setupFlags(rootCmd *cobra.Command, v *viper.Viper) {
	flags := rootCmd.PersistentFlags()
	flags.String("db-driver", v.GetString(config.KeyDBDriver), "Database driver: postgres or sqlite")
	flags.String("sqlite-path", v.GetString(config.KeySQLitePath), "SQLite database file")
	flags.String("log-mode", v.GetString(config.KeyLogMode), "Log output: dev or prod")
	flags.String("metrics-addr", v.GetString(config.KeyMetricsAddr), "Serve prometheus metrics on this address while running")

	bindFlags(v, flags.Lookup, map[string]string{
		config.KeyDBDriver:    "db-driver",
		config.KeySQLitePath:  "sqlite-path",
		config.KeyLogMode:     "log-mode",
		config.KeyMetricsAddr: "metrics-addr",
	})
}

// bindFlags binds each viper key to its flag. Names are static, so a
// failed lookup is a programming error.
func bindFlags(v *viper.Viper, lookup func(string) *pflag.Flag, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}
