package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"hospitalSectorsWs/internal/config"
	"hospitalSectorsWs/internal/modules/sectors/application/handler"
	"hospitalSectorsWs/internal/modules/sectors/application/usecase"
	"hospitalSectorsWs/internal/modules/sectors/infrastructure"
	transport "hospitalSectorsWs/internal/modules/sectors/interface"
	"hospitalSectorsWs/internal/platform/broker"
	"hospitalSectorsWs/internal/shared/auth"
	"hospitalSectorsWs/internal/shared/logging"
	"hospitalSectorsWs/internal/shared/normalization"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Overload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logger, logFile, err := logging.Setup(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
		Directory: cfg.Logging.Directory,
	}, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))

	if err := run(cfg); err != nil {
		slog.Error("server stopped with error", slog.Any("error", err))
		logFile.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	currency := normalization.NewCurrencyNormalizer(cfg.Currency.Locale)
	rest := infrastructure.NewRESTClient(cfg.REST.BaseURL, cfg.REST.Token, cfg.REST.Timeout, nil)
	fetcher := infrastructure.NewSectorSnapshotHTTPClient(rest, cfg.REST.SnapshotPath, cfg.REST.Timeout)
	snapshots := usecase.NewSectorSnapshotService(fetcher, usecase.SnapshotServiceConfig{
		CacheCapacity: cfg.Cache.Capacity,
		CacheTTL:      cfg.Cache.TTL,
		Currency:      currency,
	})
	slog.Info("sector-snapshot service configured",
		slog.String("baseUrl", cfg.REST.BaseURL),
		slog.String("locale", currency.Locale().String()),
		slog.Int("cacheCapacity", cfg.Cache.Capacity),
		slog.Duration("cacheTTL", cfg.Cache.TTL),
	)

	hub := infrastructure.NewHub()
	broadcastUC := usecase.NewBroadcastUseCase(hub)

	deps := transport.Dependencies{
		Snapshots:   snapshots,
		BroadcastUC: broadcastUC,
		Hub:         hub,
		Exporter:    infrastructure.NewSectorWorkbookExporter(),
	}
	if cfg.AuthEnabled() {
		validator, err := auth.NewJWTValidator(cfg.Security.JWTSecret, cfg.Security.JWTPublicKey)
		if err != nil {
			return fmt.Errorf("jwt validator: %w", err)
		}
		deps.Validator = validator
	} else {
		slog.Warn("jwt auth disabled: no JWT_SECRET or JWT_PUBLIC_KEY configured")
	}

	registry := infrastructure.NewHandlerRegistry()
	for _, topic := range cfg.Kafka.SnapshotTopics {
		registry.Register(handler.NewSnapshotEventsHandler(topic, nil, snapshots, broadcastUC))
	}
	consumers := broker.StartKafkaConsumers(ctx, registry, cfg.Kafka.Brokers, cfg.Kafka.GroupID)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("requestId", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.Any("error", v.Error))
				slog.LogAttrs(context.Background(), slog.LevelWarn, "http request failed", attrs...)
				return nil
			}
			slog.LogAttrs(context.Background(), slog.LevelDebug, "http request", attrs...)
			return nil
		},
	}))
	transport.RegisterRoutes(e, deps)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown error", slog.Any("error", err))
	}
	hub.Close()
	if err := consumers.Wait(); err != nil {
		slog.Warn("kafka consumers stopped with error", slog.Any("error", err))
	}
	slog.Info("shutdown complete")
	return runErr
}
