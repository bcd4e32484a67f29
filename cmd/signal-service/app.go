package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"meanrev/internal/config"
	"meanrev/internal/constants"
	"meanrev/internal/idempotency"
	"meanrev/internal/logger"
	"meanrev/internal/signal"
	"meanrev/internal/validation"
	"meanrev/pkg/bootstrap"
	"meanrev/pkg/health"
	"meanrev/pkg/logging"
	"meanrev/pkg/metrics"
	"meanrev/pkg/models"
)

const serviceName = "signal-service"

type App struct {
	*bootstrap.Base
	dbConnector *bootstrap.DatabaseConnector
	redis       *redis.Client
	validator   *validation.Service
	computer    *signal.Computer
	gate        *idempotency.Service
	server      *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(serviceName)
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	metrics.RegisterValidationMetrics()
	metrics.RegisterSignalMetrics()
	metrics.RegisterBrokerMetrics()
	if a.Config.Idempotency.Enabled {
		metrics.RegisterIdempotencyMetrics()
	}
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	if err := a.initServices(ctx); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := a.InitBroker(serviceName); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	if err := a.initHTTPServer(ctx); err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	return nil
}

func (a *App) initServices(ctx context.Context) error {
	validator, err := validation.NewServiceFromRules(a.Config.Validation.Rules, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to build validator: %w", err)
	}
	a.validator = validator

	a.computer = signal.NewComputer(a.Config.Signal.Defaults, a.Logger)

	if a.Config.Idempotency.Enabled {
		rdb, err := a.dbConnector.InitRedis(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		a.redis = rdb

		var repo idempotency.Repository = idempotency.NewRepository(rdb)
		repo = idempotency.NewCircuitBreakerRepository(repo, a.Config.CircuitBreaker)
		a.gate = idempotency.NewService(repo, a.Config.Idempotency, a.Logger)
	}

	return nil
}

func (a *App) initHTTPServer(ctx context.Context) error {
	mux := http.NewServeMux()

	healthRegistry := health.NewCheckerRegistry()
	if a.redis != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redis))
	}
	healthRegistry.Register(health.NewKafkaChecker(a.Config.Broker.Kafka.Brokers))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		h := healthRegistry.Check(r.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprintf(w, `{"status":"%s","timestamp":"%s"}`, h.Status, h.Timestamp.Format(time.RFC3339))
	})

	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler: mux,
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	if a.server != nil {
		g.Go(func() error {
			a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
			if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

	inputTopic := a.Config.Broker.Kafka.InputTopic
	if inputTopic == "" {
		inputTopic = constants.DefaultInputTopic
	}
	outputTopic := a.Config.Broker.Kafka.OutputTopic
	if outputTopic == "" {
		outputTopic = constants.DefaultOutputTopic
	}

	g.Go(func() error {
		return a.Consumer.Consume(gCtx, inputTopic, a.handleMessage(outputTopic))
	})

	return g.Wait()
}

// handleMessage runs one record through the gate-validate-compute
// sequence and publishes the enriched result. Validation and
// computation failures are fatal for the record and surface to the
// consumer's DLQ path.
func (a *App) handleMessage(outputTopic string) func(context.Context, models.RawMessage) error {
	return func(ctx context.Context, raw models.RawMessage) error {
		if a.gate != nil {
			unique, err := a.gate.Process(ctx, raw)
			if err != nil {
				return fmt.Errorf("idempotency check failed: %w", err)
			}
			if !unique {
				a.Logger.DebugwCtx(ctx, "Duplicate record skipped")
				return nil
			}
		}

		validated, err := a.validator.Validate(ctx, raw)
		if err != nil {
			return err
		}

		enriched, err := a.computer.Compute(ctx, validated)
		if err != nil {
			return err
		}

		if err := a.Producer.Publish(ctx, outputTopic, enriched); err != nil {
			return fmt.Errorf("failed to publish message: %w", err)
		}

		a.Logger.InfowCtx(ctx, "Signal published",
			"output_topic", outputTopic,
			"signal", enriched[models.FieldSignal],
		)
		return nil
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx := logging.WithServiceName(ctx, serviceName)
	a.Logger.InfowCtx(shutdownCtx, "Shutting down signal service")

	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.server != nil {
			serverCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			if err := a.server.Shutdown(serverCtx); err != nil {
				errs = append(errs, fmt.Errorf("HTTP server shutdown error: %w", err))
			}
		}

		if a.gate != nil {
			a.gate.Close()
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redis)...)

		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
