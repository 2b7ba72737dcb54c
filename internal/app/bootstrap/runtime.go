package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/adapters/cache"
	eventadapter "github.com/Gcavazo1/ClipForge-AI-sub001/internal/adapters/events"
	grpcadapter "github.com/Gcavazo1/ClipForge-AI-sub001/internal/adapters/grpc"
	httpadapter "github.com/Gcavazo1/ClipForge-AI-sub001/internal/adapters/http"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/adapters/memory"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/adapters/postgres"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/application"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/ports"
	"github.com/redis/go-redis/v9"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	ready      httpadapter.ReadinessCheck
	httpServer *http.Server
	grpcServer *grpcadapter.Server
	grpcLis    net.Listener
	outbox     *eventadapter.OutboxWorker
	consumer   *eventadapter.ConsumerWorker
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	var (
		closers []io.Closer
		checks  []httpadapter.ReadinessCheck
		repos   postgres.Repositories
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}

	switch cfg.StorageDriver {
	case StorageDriverMemory:
		logger.WarnContext(ctx, "using in-memory storage, state is lost on restart", "operation", "bootstrap")
		mem := memory.NewRepositories()
		repos = postgres.Repositories{
			Performance: mem.Performance,
			Feedback:    mem.Feedback,
			Calibration: mem.Calibration,
			Predictions: mem.Predictions,
			Outbox:      mem.Outbox,
			EventDedup:  mem.EventDedup,
			Idempotency: mem.Idempotency,
		}
	default:
		db, connErr := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
		if connErr != nil {
			return nil, connErr
		}
		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			return nil, dbErr
		}
		closers = append(closers, sqlDB)
		if migrateErr := postgres.RunMigrations(ctx, db, logger); migrateErr != nil {
			closeAll()
			return nil, migrateErr
		}
		repos = postgres.NewRepositories(db)
		checks = append(checks, func(ctx context.Context) error {
			if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
				return fmt.Errorf("%w: postgres: %v", domain.ErrUpstreamUnavailable, pingErr)
			}
			return nil
		})
	}

	local := cache.NewLocalPredictionCache(cfg.PredictionCacheTTL, cfg.LocalCacheMaxSize, nil)
	predictionCache := ports.PredictionCache(local)
	if cfg.RedisURL != "" {
		redisClient, redisErr := cache.Connect(ctx, cfg.RedisURL)
		if redisErr != nil {
			closeAll()
			return nil, redisErr
		}
		closers = append(closers, redisClient)
		predictionCache = cache.NewTieredPredictionCache(local, cache.NewRedisPredictionCache(redisClient, cfg.PredictionCacheTTL, nil))
		checks = append(checks, redisCheck(redisClient))
	}

	service := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:       cfg.ServiceID,
			ModelVersion:      cfg.ModelVersion,
			IdempotencyTTL:    cfg.IdempotencyTTL,
			EventDedupTTL:     cfg.EventDedupTTL,
			CalibrationWindow: cfg.CalibrationWindow,
			FeedbackLookback:  cfg.FeedbackLookback,
			AutoRecalibrate:   cfg.AutoRecalibrate,
		},
		Logger:      logger,
		Performance: repos.Performance,
		Feedback:    repos.Feedback,
		Calibration: repos.Calibration,
		Predictions: repos.Predictions,
		Cache:       predictionCache,
		Outbox:      repos.Outbox,
		Idempotency: repos.Idempotency,
		EventDedup:  repos.EventDedup,
	})

	ready := combineChecks(checks)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httpadapter.NewRouter(httpadapter.NewHandler(service, ready)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpcadapter.NewServer(logger)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		closeAll()
		return nil, err
	}

	publisher := ports.EventPublisher(eventadapter.NewLoggingPublisher(logger))
	consumerAdapter := eventadapter.Consumer(eventadapter.NewNoopConsumer())
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, pubErr := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, map[string]string{
			domain.EventPredictionGenerated: cfg.KafkaTopicPredictionGenerated,
			domain.EventFeedbackSubmitted:   cfg.KafkaTopicFeedbackSubmitted,
			domain.EventModelRecalibrated:   cfg.KafkaTopicModelRecalibrated,
		})
		if pubErr != nil {
			logger.WarnContext(ctx, "kafka publisher disabled, using logging publisher", "error", pubErr)
		} else {
			publisher = kafkaPublisher
			closers = append(closers, kafkaPublisher)
		}

		kafkaConsumer, conErr := eventadapter.NewKafkaConsumer(
			cfg.KafkaBrokers,
			cfg.KafkaConsumerGroup,
			[]string{cfg.KafkaTopicPerformanceRecorded},
		)
		if conErr != nil {
			logger.WarnContext(ctx, "kafka consumer disabled, using noop consumer", "error", conErr)
		} else {
			consumerAdapter = kafkaConsumer
			closers = append(closers, kafkaConsumer)
		}
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		ready:      ready,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		outbox:     eventadapter.NewOutboxWorker(logger, repos.Outbox, publisher, cfg.OutboxPollInterval, cfg.OutboxBatchSize),
		consumer:   eventadapter.NewConsumerWorker(logger, consumerAdapter, service, cfg.ConsumerPollInterval),
		cleanupFn: func(context.Context) {
			closeAll()
		},
	}, nil
}

func Build(ctx context.Context, configPath string) (*Runtime, error) {
	return NewRuntime(ctx, configPath)
}

func redisCheck(client *redis.Client) httpadapter.ReadinessCheck {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("%w: redis: %v", domain.ErrUpstreamUnavailable, err)
		}
		return nil
	}
}

func combineChecks(checks []httpadapter.ReadinessCheck) httpadapter.ReadinessCheck {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		var errs []error
		for _, check := range checks {
			if err := check(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 4)

	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- err
		}
	}()
	go r.grpcServer.Watch(ctx, r.cfg.HealthCheckInterval, r.ready)

	// In-memory storage is process local, so the API drains its own outbox.
	if r.cfg.StorageDriver == StorageDriverMemory {
		r.startWorkers(ctx, errCh)
	}
	r.logger.InfoContext(ctx, "api started",
		"operation", "run_api",
		"http_port", r.cfg.HTTPPort,
		"grpc_port", r.cfg.GRPCPort,
		"storage_driver", r.cfg.StorageDriver,
	)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "operation", "run_api", "outcome", "failure", "error", runErr)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.Shutdown()
	r.cleanupFn(shutdownCtx)
	return runErr
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 2)
	r.startWorkers(ctx, errCh)
	r.logger.InfoContext(ctx, "worker started", "operation", "run_worker")

	select {
	case <-ctx.Done():
		r.cleanupFn(context.Background())
		return nil
	case err := <-errCh:
		r.cleanupFn(context.Background())
		return err
	}
}

func (r *Runtime) startWorkers(ctx context.Context, errCh chan<- error) {
	go func() {
		if err := r.outbox.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
}
