package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JonMunkholm/jemaat/internal/config"
	"github.com/JonMunkholm/jemaat/internal/core"
	"github.com/JonMunkholm/jemaat/internal/directory"
	"github.com/JonMunkholm/jemaat/internal/logging"
	"github.com/JonMunkholm/jemaat/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"directory", cfg.Directory.Driver,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	core.MaxFileSize = cfg.Import.MaxFileSize

	var schema *core.Schema
	if cfg.Import.SchemaFile != "" {
		schema, err = core.LoadSchema(cfg.Import.SchemaFile)
		if err != nil {
			logger.Error("failed to load import schema", "path", cfg.Import.SchemaFile, "error", err)
			os.Exit(1)
		}
		logger.Info("import schema loaded", "path", cfg.Import.SchemaFile)
	}

	ctx := context.Background()

	var (
		dir  core.Directory
		opts []web.Option
	)
	switch cfg.Directory.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory directory, data is lost on exit")
		dir = directory.NewMemoryDirectory()
	default:
		pool, err := connect(ctx, &cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := directory.NewPostgresDirectory(pool)
		if cfg.Database.AutoMigrate {
			if err := pg.EnsureSchema(ctx); err != nil {
				logger.Error("failed to apply directory schema", "error", err)
				os.Exit(1)
			}
		}
		dir = pg
		opts = append(opts, web.WithHealthCheck(pg))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	opts = append(opts, web.WithGatherer(reg))

	service := core.NewService(dir, core.ServiceConfig{
		Schema:               schema,
		Concurrency:          cfg.Import.Concurrency,
		MaxConcurrentImports: cfg.Import.MaxConcurrent,
		ImportWait:           cfg.Import.MaxWaitTime,
		ImportTimeout:        cfg.Import.Timeout,
		Metrics:              core.NewMetrics(reg),
		Logger:               logger,
	})

	server := web.NewServer(service, cfg, opts...)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.LimiterStatus(); status.Active > 0 {
			logger.Info("waiting for imports to complete", "active", status.Active)
			if err := service.Drain(shutdownCtx); err != nil {
				logger.Warn("imports did not complete in time", "error", err)
			} else {
				logger.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		logger.Info("server stopped", "error", err)
	}
}

// connect opens and pings a pgx pool sized from cfg.
func connect(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return pool, nil
}
