package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/iho/leaseledger/internal/adapter/erp"
	httpAdapter "github.com/iho/leaseledger/internal/adapter/http"
	"github.com/iho/leaseledger/internal/adapter/http/handler"
	postgresRepo "github.com/iho/leaseledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/leaseledger/internal/adapter/repository/redis"
	"github.com/iho/leaseledger/internal/infrastructure/config"
	"github.com/iho/leaseledger/internal/infrastructure/logger"
	"github.com/iho/leaseledger/internal/infrastructure/metrics"
	"github.com/iho/leaseledger/internal/infrastructure/postgres"
	"github.com/iho/leaseledger/internal/infrastructure/redis"
	"github.com/iho/leaseledger/internal/infrastructure/scheduler"
	"github.com/iho/leaseledger/internal/schedule"
	"github.com/iho/leaseledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return err
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	leaseRepo := postgresRepo.NewLeaseRepository(pool)
	calcRepo := postgresRepo.NewCalculationRepository(pool)
	retrier := postgresRepo.NewRetrier(log)
	idGen := postgresRepo.NewULIDGenerator()
	locker := redisRepo.NewLocker(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	erpClient := erp.NewClient(erpConfig(cfg), log)
	appMetrics := metrics.New(nil)
	calculator := schedule.New()

	// Initialize use cases
	leaseUC := usecase.NewLeaseUseCase(txManager, leaseRepo, calcRepo, idGen, calculator, log)
	periodEndUC := usecase.NewPeriodEndUseCase(usecase.PeriodEndConfig{
		TxManager:   txManager,
		LeaseRepo:   leaseRepo,
		CalcRepo:    calcRepo,
		IDGen:       idGen,
		Retrier:     retrier,
		Locker:      locker,
		Calculator:  calculator,
		Metrics:     appMetrics,
		Logger:      log,
		Concurrency: cfg.PeriodEndConcurrency,
		LockTTL:     cfg.LockTTL,
	})
	postingUC := usecase.NewPostingUseCase(usecase.PostingConfig{
		TxManager:  txManager,
		LeaseRepo:  leaseRepo,
		CalcRepo:   calcRepo,
		Gateway:    erpClient,
		Locker:     locker,
		Accounts:   cfg.ChartOfAccounts(),
		ERPTimeout: cfg.ERPTimeout,
		LockTTL:    cfg.LockTTL,
		Metrics:    appMetrics,
		Logger:     log,
	})
	reconciliationUC := usecase.NewReconciliationUseCase(leaseRepo, calcRepo)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LeaseHandler:          handler.NewLeaseHandler(leaseUC),
		CalculationHandler:    handler.NewCalculationHandler(periodEndUC, postingUC),
		PostingHandler:        handler.NewPostingHandler(postingUC, erpClient),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		AssetHandler:          handler.NewAssetHandler(erpClient),
		HealthHandler:         handler.NewHealthHandler(handler.PostgresCheck(pool), handler.RedisCheck(redisClient)),
		IdempotencyStore:      idempotencyStore,
		Logger:                log,
		AllowedOrigins:        cfg.CORSAllowedOrigins,
	})

	// Month-end scheduler
	if cfg.ScheduleCron != "" {
		sched, err := scheduler.New(scheduler.Config{
			Spec:      cfg.ScheduleCron,
			Tenants:   cfg.Tenants(),
			Post:      cfg.SchedulePost,
			PeriodEnd: periodEndUC,
			Poster:    postingUC,
			Failures:  appMetrics,
			Logger:    log,
		})
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
			defer cancel()
			sched.Stop(stopCtx)
		}()
	}

	server := newServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

func newServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

func erpConfig(cfg *config.Config) erp.Config {
	return erp.Config{
		BaseURL:    cfg.ERPBaseURL,
		APIKey:     cfg.ERPAPIKey,
		Timeout:    cfg.ERPTimeout,
		MaxRetries: cfg.ERPMaxRetries,
	}
}
