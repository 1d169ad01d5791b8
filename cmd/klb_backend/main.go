package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/ports"
	portssvc "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/services"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/services"
	"github.com/KsiegaPro/ledger_backend_app/internal/dto"
	"github.com/KsiegaPro/ledger_backend_app/internal/handlers"
	"github.com/KsiegaPro/ledger_backend_app/internal/middleware"
	"github.com/KsiegaPro/ledger_backend_app/internal/repositories/database/pgsql"
	"github.com/KsiegaPro/ledger_backend_app/pkg/cache"
	"github.com/KsiegaPro/ledger_backend_app/pkg/config"
	"github.com/KsiegaPro/ledger_backend_app/pkg/database"
)

// systemActorID marks mutations produced by the background processor rather
// than an authenticated user.
const systemActorID = "system"

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Cache invalidation backend: Redis when configured, otherwise a no-op.
	var invalidator ports.CacheInvalidator = ports.NoopInvalidator{}
	if cfg.RedisURL != "" {
		redisInvalidator, err := cache.NewRedisInvalidator(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Error("Failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			if cerr := redisInvalidator.Close(); cerr != nil {
				logger.Error("Error closing Redis connection", slog.String("error", cerr.Error()))
			}
		}()
		invalidator = redisInvalidator
		logger.Info("Redis cache invalidation enabled.")
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	audit := pgsql.NewPgxAuditRepository(dbPool)
	serviceContainer := services.NewServiceContainer(repos, ports.RealClock{}, audit, invalidator)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit format", slog.String("rate_limit", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memorystore.NewStore(), rate)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background processor: due schedules and pending auto-reversals.
	go runScheduledProcessing(ctx, cfg.ScheduleTickInterval, serviceContainer, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}
	logger.Info("Server stopped.")
}

// runMigrations applies all pending "up" migrations from the migrations
// directory using a temporary database/sql connection over the pgx stdlib
// driver.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return upErr
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// runScheduledProcessing ticks until shutdown, generating entries for due
// schedules and reversing entries whose auto-reversal date has arrived.
// An empty organization ID processes every tenant.
func runScheduledProcessing(ctx context.Context, interval time.Duration, svc *portssvc.ServiceContainer, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	workerLogger := logger.With(slog.String("component", "schedule_processor"))

	for {
		select {
		case <-ctx.Done():
			workerLogger.Info("Background processor stopped.")
			return
		case <-ticker.C:
			tickCtx := middleware.WithLogger(ctx, workerLogger)
			tickCtx = middleware.WithActor(tickCtx, systemActorID, "")

			if summary, err := svc.Processor.ProcessDueSchedules(tickCtx, "", dto.ProcessDueSchedulesRequest{}, systemActorID); err != nil {
				workerLogger.Error("Due schedule processing failed", slog.String("error", err.Error()))
			} else if summary.Processed > 0 {
				workerLogger.Info("Due schedules processed",
					slog.Int("processed", summary.Processed),
					slog.Int("successful", summary.Successful),
					slog.Int("failed", summary.Failed))
			}

			if summary, err := svc.Reversal.ProcessAutoReversals(tickCtx, "", dto.ProcessAutoReversalsRequest{}, systemActorID); err != nil {
				workerLogger.Error("Auto-reversal processing failed", slog.String("error", err.Error()))
			} else if summary.Processed > 0 {
				workerLogger.Info("Auto-reversals processed",
					slog.Int("processed", summary.Processed),
					slog.Int("successful", summary.Successful),
					slog.Int("failed", summary.Failed))
			}
		}
	}
}
