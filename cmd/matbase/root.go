package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Spok95/matbase/internal/config"
	"github.com/Spok95/matbase/internal/infra/db"
	"github.com/Spok95/matbase/internal/infra/logger"
	"github.com/Spok95/matbase/internal/infra/metrics"
	"github.com/Spok95/matbase/internal/store"
)

var (
	configPath string
	logFormat  string

	cfg config.Config
	log *slog.Logger
	met *metrics.Metrics

	metricsOnce sync.Once
)

var rootCmd = &cobra.Command{
	Use:           "matbase",
	Short:         "Import FEA result tables and MatML materials into a relational store",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log = logger.New(cfg.App.Env, logFormat)
		slog.SetDefault(log)
		metricsOnce.Do(func() { met = metrics.New(prometheus.DefaultRegisterer) })
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log format: json or text")
}

// openSQL открывает database/sql-соединение для миграций и возвращает диалект goose.
func openSQL() (*sql.DB, string, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		sqlDB, err := db.OpenPostgresSQL(cfg.Postgres.DSN)
		return sqlDB, db.DialectPostgres, err
	default:
		sqlDB, err := db.OpenSQLite(cfg.SQLite.Path)
		return sqlDB, db.DialectSQLite, err
	}
}

// openStore применяет миграции и открывает хранилище выбранного драйвера.
func openStore(ctx context.Context) (store.Store, error) {
	sqlDB, dialect, err := openSQL()
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(sqlDB, dialect, log); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if cfg.Store.Driver != config.DriverPostgres {
		log.Debug("sqlite store opened", "path", cfg.SQLite.Path)
		return store.NewSQLite(sqlDB), nil
	}

	_ = sqlDB.Close()
	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	log.Debug("postgres store opened")
	return store.NewPostgres(pool), nil
}

// withStore открывает хранилище на время выполнения fn.
func withStore(ctx context.Context, fn func(s store.Store) error) error {
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(s)
}
