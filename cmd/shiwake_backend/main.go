package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/shiwake-app/shiwake_backend/internal/adapters/database/pgsql"
	portssvc "github.com/shiwake-app/shiwake_backend/internal/core/ports/services"
	"github.com/shiwake-app/shiwake_backend/internal/core/services"
	"github.com/shiwake-app/shiwake_backend/internal/handlers"
	"github.com/shiwake-app/shiwake_backend/internal/middleware"
	"github.com/shiwake-app/shiwake_backend/internal/utils"
	"github.com/shiwake-app/shiwake_backend/pkg/config"
	"github.com/shiwake-app/shiwake_backend/pkg/database"
)

// @title Shiwake Backend API
// @version 1.0
// @description Double-entry bookkeeping backend: journal entries, master data, reports.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.AttachmentDir, 0o755); err != nil {
		logger.Error("Failed to create attachment directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())
	r.Use(middleware.Metrics())

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogHost, logger)
	defer posthogClient.Close()
	r.Use(middleware.PosthogMiddleware(posthogClient))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterValidators()
	handlers.RegisterRoutes(r, cfg, buildServices(cfg, dbPool), newLoginLimiter(cfg, logger))

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildServices wires repositories into the service facades.
func buildServices(cfg *config.Config, dbPool *pgxpool.Pool) *portssvc.ServiceContainer {
	journalRepo := pgsql.NewPgxJournalRepository(dbPool)
	accountRepo := pgsql.NewPgxAccountRepository(dbPool)
	masterRepo := pgsql.NewPgxMasterRepository(dbPool)
	reportingRepo := pgsql.NewPgxReportingRepository(dbPool)
	reconciliationRepo := pgsql.NewPgxReconciliationRepository(dbPool)
	userRepo := pgsql.NewPgxUserRepository(dbPool)

	accountSvc := services.NewAccountService(accountRepo)
	numberingSvc := services.NewNumberingService(journalRepo)

	return &portssvc.ServiceContainer{
		Journal: services.NewJournalService(journalRepo, accountSvc, numberingSvc,
			services.WithRetryPolicy(cfg.SequenceMaxRetries, cfg.SequenceRetryBackoff)),
		Numbering:      numberingSvc,
		Account:        accountSvc,
		Master:         services.NewMasterService(masterRepo, masterRepo, masterRepo, masterRepo, masterRepo, accountRepo),
		Reporting:      services.NewReportingService(reportingRepo, reconciliationRepo),
		Reconciliation: services.NewReconciliationService(reconciliationRepo, masterRepo, accountRepo),
		User:           services.NewUserService(userRepo),
	}
}

// newLoginLimiter builds the per-IP login rate limiter from config.
func newLoginLimiter(cfg *config.Config, logger *slog.Logger) *limiter.Limiter {
	rate, err := limiter.NewRateFromFormatted(cfg.LoginRateLimit)
	if err != nil {
		logger.Warn("Invalid LOGIN_RATE_LIMIT, rate limiting disabled", slog.String("value", cfg.LoginRateLimit))
		return nil
	}
	return limiter.New(memory.NewStore(), rate)
}
