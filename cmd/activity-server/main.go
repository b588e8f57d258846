// cmd/activity-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mergington-activities/internal/activities"
	"mergington-activities/internal/api"
	"mergington-activities/internal/audit"
	awsclients "mergington-activities/internal/common/aws"
	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/database"
	httpclient "mergington-activities/internal/common/http"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/notify"
)

const serviceName = "activity-server"

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": serviceName,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting activity server...",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(serviceName)
	defer obs.Shutdown()

	tracing, err := observability.NewTracing(serviceName, cfg.Tracing.JaegerEndpoint)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Storage backend ---
	store, err := openStore(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("storage init failed", zap.Error(err))
	}
	defer store.Close()

	// --- Signup hooks ---
	hooks, err := buildHooks(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("signup hook init failed", zap.Error(err))
	}

	registry := activities.NewRegistry(store, log, hooks...).
		WithHookTimeout(config.GetDuration(cfg.Notifications.Timeout))

	catalog, err := activities.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		zapLog.Fatal("catalog load failed", zap.Error(err))
	}
	if err := registry.Bootstrap(ctx, catalog); err != nil {
		zapLog.Fatal("catalog seed failed", zap.Error(err))
	}

	// --- HTTP server ---
	server := api.NewServer(registry, log, api.Options{
		StaticDir:     cfg.Server.StaticDir,
		Observability: obs,
		Tracer:        tracing.Tracer(),
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	if err := serve(httpServer, sigCh, zapLog); err != nil {
		zapLog.Error("HTTP server failed", zap.Error(err))
		exitCode = 1
	} else {
		zapLog.Info("Shutdown signal received, draining requests...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	if err := registry.Drain(shutdownCtx); err != nil {
		zapLog.Error("Signup hooks still running at shutdown", zap.Error(err))
	}
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing traces", zap.Error(err))
	}

	if exitCode != 0 {
		// os.Exit skips defers, so release resources first.
		cancel()
		obs.Shutdown()
		_ = store.Close()
		_ = zapLog.Sync()
		os.Exit(exitCode)
	}
	zapLog.Info("Activity server stopped gracefully")
}

// serve runs the HTTP server until a signal arrives (nil) or the listener fails (the error).
func serve(httpServer *http.Server, sigCh <-chan os.Signal, zapLog *zap.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-sigCh:
		return nil
	case err := <-serveErr:
		return err
	}
}

func openStore(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (activities.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		var store *activities.RedisStore
		err := retryWithBackoff(func() error {
			rdb, err := database.NewRedis(ctx, cfg.Database.Redis)
			if err != nil {
				return err
			}
			store = activities.NewRedisStore(rdb, cfg.Database.Redis.KeyPrefix)
			return nil
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			return nil, err
		}
		zapLog.Info("Redis connected successfully")
		return store, nil

	case config.BackendPostgres:
		var store *activities.PostgresStore
		err := retryWithBackoff(func() error {
			db, err := database.OpenPostgres(ctx, cfg.Database.Postgres)
			if err != nil {
				return err
			}
			store = activities.NewPostgresStore(db)
			return nil
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("postgres migration failed: %w", err)
		}
		zapLog.Info("PostgreSQL connected successfully")
		return store, nil

	default:
		zapLog.Info("Using in-memory activity store")
		return activities.NewMemoryStore(), nil
	}
}

func buildHooks(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) ([]activities.SignupHook, error) {
	var hooks []activities.SignupHook

	if es := cfg.Audit.Elasticsearch; es.Enabled {
		client, err := database.NewElasticsearch(es)
		if err != nil {
			return nil, err
		}
		err = retryWithBackoff(func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return database.PingElasticsearch(pingCtx, client)
		}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			// The audit trail is best effort; signups keep working without it.
			zapLog.Warn("Elasticsearch unreachable, audit sink disabled", zap.Error(err))
		} else {
			hooks = append(hooks, audit.NewElasticsearchSink(client, es.Index))
			zapLog.Info("Elasticsearch audit sink enabled", zap.String("index", es.Index))
		}
	}

	n := cfg.Notifications
	if n.Email.Enabled || n.SNS.Enabled {
		awsCfg, err := awsclients.LoadConfig(ctx, n.Region, httpclient.NewAWSClient(config.GetDuration(n.Timeout)))
		if err != nil {
			return nil, err
		}
		if n.Email.Enabled {
			hooks = append(hooks, notify.NewEmailNotifier(awsclients.NewSESClient(awsCfg), n.Email.FromEmail))
			zapLog.Info("SES confirmation emails enabled", zap.String("from", n.Email.FromEmail))
		}
		if n.SNS.Enabled {
			hooks = append(hooks, notify.NewTopicPublisher(awsclients.NewSNSClient(awsCfg), n.SNS.TopicARN))
			zapLog.Info("SNS signup events enabled", zap.String("topic", n.SNS.TopicARN))
		}
	}

	return hooks, nil
}
