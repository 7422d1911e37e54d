package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/skillcore/internal/clock"
	"github.com/udisondev/skillcore/internal/config"
	"github.com/udisondev/skillcore/internal/data"
	"github.com/udisondev/skillcore/internal/db"
	"github.com/udisondev/skillcore/internal/game/stats"
	"github.com/udisondev/skillcore/internal/game/upgrade"
	"github.com/udisondev/skillcore/internal/redis"
	"github.com/udisondev/skillcore/internal/script"
	"github.com/udisondev/skillcore/internal/sim"
)

const (
	ConfigPath = "config/skillsim.yaml"

	statsFlushTimeout = 10 * time.Second
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := ConfigPath
	if p := os.Getenv("SKILLCORE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSimulation(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("skillsim starting",
		"log_level", cfg.LogLevel,
		"session", cfg.SessionID,
		"max_slots", cfg.MaxSlots,
		"history", cfg.HistoryBackend)

	catalog, err := data.LoadCatalog(cfg.CatalogPath)
	if catalog == nil {
		return fmt.Errorf("loading skill catalog: %w", err)
	}
	if err != nil {
		slog.Warn("skill catalog loaded with skipped entries", "err", err)
	}
	slog.Info("skill catalog loaded", "skills", catalog.Len())

	var sc *script.Script
	if cfg.ScriptPath != "" {
		if sc, err = script.Load(cfg.ScriptPath); err != nil {
			return fmt.Errorf("loading script: %w", err)
		}
		slog.Info("script loaded", "path", cfg.ScriptPath, "steps", len(sc.Steps))
	}

	g, gctx := errgroup.WithContext(ctx)
	simCtx, stopSim := context.WithCancel(gctx)
	defer stopSim()

	var (
		history     upgrade.History
		statStore   stats.Store
		store       upgrade.Store
		stopWriters = func() {}
	)
	switch cfg.HistoryBackend {
	case config.HistoryPostgres:
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		store = db.NewUpgradeRepository(database.Pool())
		statStore = db.NewStatRepository(database.Pool())
	case config.HistoryRedis:
		client, err := redis.NewClient(cfg.Redis.Addr, &redis.Options{
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return fmt.Errorf("creating redis client: %w", err)
		}
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		slog.Info("redis connected", "addr", cfg.Redis.Addr)

		store = redis.NewUpgradeStore(client)
		statStore = redis.NewStatStore(client)
	}

	if store != nil {
		persistent, err := upgrade.LoadPersistentHistory(ctx, store, cfg.SessionID)
		if err != nil {
			return fmt.Errorf("loading upgrade history: %w", err)
		}

		// outlives the simulation so its last appends are flushed
		histCtx, stopHistory := context.WithCancel(context.Background())
		defer stopHistory()
		g.Go(func() error {
			return persistent.Run(histCtx)
		})
		stopWriters = stopHistory
		history = persistent
	}

	simulation := sim.New(cfg, catalog, clock.New(), history)

	g.Go(func() error {
		defer stopWriters()
		if err := simulation.Run(simCtx); err != nil {
			return fmt.Errorf("simulation: %w", err)
		}
		return nil
	})

	if sc != nil {
		g.Go(func() error {
			if err := script.NewPlayer(sc).Play(simCtx, simulation); err != nil {
				return fmt.Errorf("script: %w", err)
			}
			if cfg.StopAfterScript && simCtx.Err() == nil {
				// let timers settle for one poll before stopping
				select {
				case <-simCtx.Done():
				case <-time.After(cfg.PollInterval):
				}
				stopSim()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("simulation error: %w", err)
	}

	counts := simulation.Stats().Snapshot()
	slog.Info("skill stats", "session", cfg.SessionID, "counts", counts)

	if statStore != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), statsFlushTimeout)
		defer cancel()
		if err := simulation.Stats().Flush(flushCtx, statStore, cfg.SessionID); err != nil {
			return fmt.Errorf("flushing stats: %w", err)
		}
		slog.Info("skill stats persisted", "contexts", len(counts))
	}

	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
