package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"listing-organizer/internal/adapters/listings_api_client"
	logger_adapter "listing-organizer/internal/adapters/logger"
	"listing-organizer/internal/adapters/memory_cache"
	postgres_adapter "listing-organizer/internal/adapters/postgres"
	rabbitmq_adapter "listing-organizer/internal/adapters/rabbitmq"
	"listing-organizer/internal/adapters/redis_cache"
	"listing-organizer/internal/adapters/rest"
	"listing-organizer/internal/configs"
	"listing-organizer/internal/constants"
	"listing-organizer/internal/core/port"
	"listing-organizer/internal/core/usecase"
	fluentlogger "listing-organizer/pkg/fluent_logger"
	"listing-organizer/pkg/postgres"
	"listing-organizer/pkg/rabbitmq/rabbitmq_common"
	"listing-organizer/pkg/rabbitmq/rabbitmq_producer"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

type App struct {
	config    *configs.AppConfig
	apiServer *rest.Server
	boardUC   *usecase.BoardUseCase

	connManager   *rabbitmq_common.ConnectionManager
	eventProducer *rabbitmq_producer.Publisher
	dbPool        *pgxpool.Pool
	redisClient   *redis.Client

	logger       port.LoggerPort
	fluentClient io.Closer
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	app := &App{config: appConfig}

	// --- 1. ЛОГГЕРЫ ---
	baseLogger, err := app.initLoggers()
	if err != nil {
		return nil, err
	}
	app.logger = baseLogger.WithFields(port.Fields{"component": "app"})

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// Если что-то ниже не поднялось, освобождаем уже созданные ресурсы.
	ok := false
	defer func() {
		if !ok {
			app.abortStartup()
		}
	}()

	// --- 2. ИНФРАСТРУКТУРА ---
	boardCache, err := app.initBoardCache(ctx)
	if err != nil {
		return nil, err
	}
	propertyCache, err := app.initPropertyCache(ctx)
	if err != nil {
		return nil, err
	}
	events, err := app.initEventPublisher(baseLogger)
	if err != nil {
		return nil, err
	}

	listingsClient := listings_api_client.NewClient(
		appConfig.ApiClient.LISTINGS_URL,
		appConfig.ApiClient.Timeout,
		appConfig.ApiClient.ReadRetryMax,
		appConfig.ApiClient.ReadRetryInterval,
	)

	// --- 3. USE CASES ---
	getPropertyUC := usecase.NewGetPropertyUseCase(listingsClient, propertyCache)
	wizardUC := usecase.NewWizardUseCase(listingsClient, getPropertyUC, propertyCache, events, appConfig.ApiClient.UploadConcurrency)
	app.boardUC = usecase.NewBoardUseCase(listingsClient, boardCache, propertyCache, events, usecase.BoardConfig{
		FilterDebounce:   appConfig.Board.FilterDebounce,
		CacheTTL:         appConfig.Board.CacheTTL,
		ReconcileTimeout: appConfig.Board.ReconcileTimeout,
	})
	app.logger.Info("All use cases initialized", nil)

	// --- 4. REST ---
	app.apiServer = rest.NewServer(appConfig.Rest.PORT, appConfig.Rest.CorsAllowedOrigins, rest.Handlers{
		Wizard:   rest.NewWizardHandlers(wizardUC),
		Board:    rest.NewBoardHandlers(app.boardUC),
		Property: rest.NewPropertyHandlers(getPropertyUC),
	}, baseLogger)

	ok = true
	return app, nil
}

func (a *App) initLoggers() (port.LoggerPort, error) {
	cfg := a.config
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(cfg.StdoutLogger.Level),
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if cfg.FluentBit.Enabled {
		fluentClient, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(cfg.FluentBit.Level))
		if err != nil {
			fluentClient.Close()
			return nil, err
		}
		a.fluentClient = fluentClient
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": cfg.AppName})
	baseLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": cfg.FluentBit.Enabled,
	})
	return baseLogger, nil
}

func (a *App) initBoardCache(ctx context.Context) (port.BoardCachePort, error) {
	if a.config.Cache.Backend != "redis" {
		a.logger.Info("Board cache: in-memory", nil)
		return memory_cache.NewBoardCache(), nil
	}

	client, err := redis_cache.NewClient(ctx, a.config.Cache.RedisURL)
	if err != nil {
		a.logger.Error("Failed to connect to redis", err, nil)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.redisClient = client

	cache, err := redis_cache.NewRedisBoardCache(client, a.config.AppName)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Board cache: redis", nil)
	return cache, nil
}

func (a *App) initPropertyCache(ctx context.Context) (port.PropertyCachePort, error) {
	pgCfg := a.config.Postgres
	if pgCfg.DatabaseURL == "" {
		a.logger.Info("Property cache: in-memory", nil)
		return memory_cache.NewPropertyCache(), nil
	}

	pool, err := postgres.NewClient(ctx, postgres.Config{
		DatabaseURL: pgCfg.DatabaseURL,
		MaxConns:    pgCfg.MaxConns,
		PingTimeout: 5 * time.Second,
	})
	if err != nil {
		a.logger.Error("Failed to connect to postgres", err, nil)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	a.dbPool = pool

	cache, err := postgres_adapter.NewPostgresPropertyCache(pool, pgCfg.CacheMaxAge)
	if err != nil {
		return nil, err
	}
	if err := cache.EnsureSchema(ctx); err != nil {
		a.logger.Error("Failed to prepare property cache table", err, nil)
		return nil, err
	}
	a.logger.Info("Property cache: postgres", port.Fields{"max_age": pgCfg.CacheMaxAge.String()})
	return cache, nil
}

func (a *App) initEventPublisher(baseLogger port.LoggerPort) (port.EventPublisherPort, error) {
	if !a.config.RabbitMQ.Enabled {
		a.logger.Info("RabbitMQ disabled, domain events are dropped", nil)
		return rabbitmq_adapter.NoopEventPublisher{}, nil
	}

	connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
	connManager, err := rabbitmq_common.NewConnectionManager(rabbitmq_common.Config{URL: a.config.RabbitMQ.URL}, connManagerBridge)
	if err != nil {
		a.logger.Error("Failed to create connection manager", err, nil)
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.connManager = connManager
	a.logger.Info("RabbitMQ Connection Manager initialized.", nil)

	eventProducer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		ExchangeName:             constants.EventsExchange,
		ExchangeType:             constants.EventsExchangeType,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create event producer: %w", err)
	}
	a.eventProducer = eventProducer
	a.logger.Info("RabbitMQ Event Producer initialized.", nil)

	return rabbitmq_adapter.NewEventPublisher(eventProducer, a.config.AppName)
}

// Run запускает HTTP-сервер и блокируется до сигнала или ошибки сервера.
func (a *App) Run() error {
	defer a.shutdown()

	a.logger.Info("Application is starting...", nil)

	serverErrors := make(chan error, 1)
	go func() {
		if err := a.apiServer.Start(); err != nil {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or server error...", port.Fields{"port": a.config.Rest.PORT})
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
		return nil
	case err := <-serverErrors:
		a.logger.Error("HTTP server failed, shutting down", err, nil)
		return err
	}
}

func (a *App) shutdown() {
	a.logger.Info("Shutdown sequence initiated...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.apiServer != nil {
		if err := a.apiServer.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Error during API server shutdown", err, nil)
		}
	}

	// Фоновые сохранения доски должны дойти до API до закрытия остальных ресурсов.
	if a.boardUC != nil {
		done := make(chan struct{})
		go func() {
			a.boardUC.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			a.logger.Warn("Timed out waiting for board reconciliation", nil)
		}
	}

	a.closeResources()
	a.logger.Info("Application shut down gracefully.", nil)
	a.closeLogger()
}

// abortStartup освобождает все, что успело подняться, включая клиент fluent.
func (a *App) abortStartup() {
	a.logger.Warn("Startup failed, releasing resources", nil)
	a.closeResources()
	a.closeLogger()
}

func (a *App) closeLogger() {
	if a.fluentClient == nil {
		return
	}
	if err := a.fluentClient.Close(); err != nil {
		// fluent может быть уже недоступен, пишем в stdout
		fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
	}
	a.fluentClient = nil
}

func (a *App) closeResources() {
	if a.eventProducer != nil {
		if err := a.eventProducer.Close(); err != nil {
			a.logger.Error("Error closing event producer", err, nil)
		}
		a.eventProducer = nil
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
		a.connManager = nil
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.dbPool = nil
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("Error closing redis client", err, nil)
		}
		a.redisClient = nil
	}
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
