package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/pathwise/internal/catalog"
	"github.com/abhisek/pathwise/internal/config"
	"github.com/abhisek/pathwise/internal/logging"
	"github.com/abhisek/pathwise/internal/metrics"
	"github.com/abhisek/pathwise/internal/session"
	"github.com/abhisek/pathwise/internal/store"
)

// deps is everything a command needs to drive the engine.
type deps struct {
	cfg     *config.Config
	logger  *zap.Logger
	catalog *catalog.Catalog
	engine  *session.Engine
	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// loadConfig reads --config and applies the --db override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DB.Path = p
	}
	return cfg, nil
}

// loadCatalog reads content from dir, or the embedded content when dir is
// empty.
func loadCatalog(dir string) (*catalog.Catalog, error) {
	if dir == "" {
		return catalog.Default()
	}
	return catalog.LoadDir(dir)
}

// buildDeps wires config, logging, storage, metrics and the engine. tui
// forces file logging so log lines never land on the terminal UI.
func buildDeps(cmd *cobra.Command, tui bool) (_ *deps, err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}

	d := &deps{cfg: cfg}
	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	logOpts := logging.Options{Level: cfg.Log.Level, File: cfg.Log.File, Console: cmd.ErrOrStderr()}
	if tui && logOpts.File == "" {
		logOpts.File = filepath.Join(filepath.Dir(dbPath), "pathwise.log")
	}
	logger, flush, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}
	d.logger = logger
	d.closers = append(d.closers, flush)

	cat, err := loadCatalog(cfg.Catalog.Dir)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	d.catalog = cat

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	d.closers = append(d.closers, func() { _ = st.Close() })

	var devices store.Persistence = st
	if cfg.Redis.Addr != "" {
		ds, err := deviceStore(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, func() { _ = ds.Close() })
		devices = ds
	} else {
		logger.Debug("redis not configured; device learners are stored in SQLite")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewRecorder(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	if cfg.Metrics.Addr != "" {
		mctx, cancel := context.WithCancel(ctx)
		d.closers = append(d.closers, cancel)
		go func() {
			if err := metrics.Serve(mctx, cfg.Metrics.Addr, reg, logger); err != nil {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	ecfg := cfg.EngineConfig()
	ecfg.Logger = logger
	ecfg.Metrics = recorder
	d.engine = session.NewEngine(cat, store.NewRouter(st, devices), ecfg)

	logger.Debug("engine ready",
		zap.String("db", dbPath),
		zap.String("catalog_version", cat.Version()),
		zap.Bool("redis", cfg.Redis.Addr != ""))
	return d, nil
}

// deviceStore connects the Redis backend for device identities.
func deviceStore(ctx context.Context, rc config.RedisConfig) (*store.DeviceStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", rc.Addr, err)
	}
	return store.NewDeviceStore(client, rc.SeenTTL), nil
}
