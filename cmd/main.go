package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"rentledger/docs"
	"rentledger/internal/analytics"
	"rentledger/internal/caching"
	"rentledger/internal/config"
	"rentledger/internal/handlers"
	"rentledger/internal/jobs"
	"rentledger/internal/jobs/background"
	"rentledger/internal/middleware"
	"rentledger/internal/repositories"
	"rentledger/internal/services"
	"rentledger/pkg/database"
	"rentledger/pkg/logger"
)

const (
	version    = "1.0.0"
	apiVersion = "v1"
)

// @title Rent Ledger API
// @version 1.0
// @description Occupancy management and rent ledger reporting for property organizations.
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger.Init("rentledger", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Log.WithError(err).Fatal("Failed to migrate database")
		}
	}

	// Report cache is optional; an empty address disables it.
	cacheSvc := caching.NewNoopCache()
	if cfg.Redis.Addr != "" {
		cacheSvc = caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}

	var storage services.ObjectStorage
	if cfg.Minio.Endpoint != "" {
		storage, err = services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Region, cfg.Minio.UseSSL)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to create MinIO client")
		}
		if err := storage.EnsureBucketExists(ctx, cfg.Minio.Bucket); err != nil {
			logger.Log.WithError(err).WithField("bucket", cfg.Minio.Bucket).Warn("Report bucket unavailable, exports will fail until it is reachable")
		}
	}

	authenticator := middleware.NewHMACAuthenticator(cfg.JWTSecret)
	if cfg.JWKSURL != "" {
		authenticator, err = middleware.NewJWKSAuthenticator(cfg.JWKSURL)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to load JWKS")
		}
	}
	defer authenticator.Close()

	// Repositories
	orgRepo := repositories.NewOrganizationRepo(pool)
	occupancyRepo := repositories.NewOccupancyRepo(pool)
	unitRepo := repositories.NewUnitRepo(pool)
	tenantRepo := repositories.NewTenantRepo(pool)
	ledgerRepo := repositories.NewLedgerRepo(pool)
	statsRepo := repositories.NewStatsRepo(pool)

	// Services
	accessSvc := services.NewAccessService(orgRepo)
	occupancySvc := services.NewOccupancyService(accessSvc, occupancyRepo, unitRepo, tenantRepo, cacheSvc)
	statsSvc := services.NewStatsService(accessSvc, statsRepo)
	reportOpts := []analytics.ReportServiceOption{analytics.WithCache(cacheSvc, cfg.ReportCacheTTL)}
	if storage != nil {
		reportOpts = append(reportOpts, analytics.WithStorage(storage, cfg.Minio.Bucket))
	}
	reportSvc := analytics.NewReportService(accessSvc, ledgerRepo, reportOpts...)

	// Handlers
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, storage, cfg.Minio.Bucket, version)
	occupancyHandlers := handlers.NewOccupancyHandlers(occupancySvc)
	reportHandlers := handlers.NewReportHandlers(reportSvc)
	statsHandlers := handlers.NewStatsHandlers(statsSvc)

	var workers *jobWorkers
	if cfg.Jobs.Enabled {
		workers, err = startJobs(cfg, orgRepo, ledgerRepo, cacheSvc, reportSvc, storage != nil)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to start background jobs")
		}
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echoMiddleware.CORS())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	docs.SwaggerInfo.Version = version
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API routes
	v1 := e.Group("/" + apiVersion)
	v1.Use(middleware.VersionHeader(apiVersion))
	v1.Use(authenticator.Authenticate())

	org := v1.Group("/orgs/:orgSlug")

	org.GET("/occupancies", occupancyHandlers.ListOccupancies)
	org.POST("/occupancies", occupancyHandlers.CreateOccupancy)
	org.PUT("/occupancies/:id", occupancyHandlers.UpdateOccupancy)
	org.DELETE("/occupancies/:id", occupancyHandlers.DeleteOccupancy)

	org.GET("/reports/delinquency-aging", reportHandlers.GetDelinquencyAging)
	org.GET("/reports/building-rollups", reportHandlers.GetBuildingRollups)
	org.GET("/reports/collection-rate", reportHandlers.GetCollectionRate)
	org.POST("/reports/:kind/export", reportHandlers.ExportReport)

	org.GET("/stats", statsHandlers.GetOrgStats)

	go func() {
		logger.Log.WithField("port", cfg.Port).Infof("Rent ledger server v%s starting", version)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server shutdown failed")
	}
	if workers != nil {
		workers.stop()
	}
}

// jobWorkers owns the scheduler and, when Redis is configured, the snapshot
// task queue client and worker.
type jobWorkers struct {
	scheduler  *background.JobScheduler
	taskClient *asynq.Client
	taskServer *asynq.Server
}

func startJobs(cfg *config.Config, orgRepo repositories.OrganizationRepository, ledgerRepo repositories.LedgerRepository, cache caching.ReportCache, reportSvc *analytics.ReportService, snapshots bool) (*jobWorkers, error) {
	scheduler, err := background.NewJobScheduler(10 * time.Minute)
	if err != nil {
		return nil, err
	}
	w := &jobWorkers{scheduler: scheduler}

	if err := scheduler.AddJob(background.OverdueSweepJob, cfg.Jobs.OverdueSweepInterval, jobs.NewOverdueSweep(orgRepo, ledgerRepo, cache)); err != nil {
		return nil, err
	}

	if snapshots {
		var queue jobs.TaskEnqueuer
		if cfg.Redis.Addr != "" {
			redisOpt := asynq.RedisClientOpt{
				Addr:     strings.TrimPrefix(cfg.Redis.Addr, "redis://"),
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			}
			w.taskServer = asynq.NewServer(redisOpt, asynq.Config{
				Concurrency: 4,
				Queues:      map[string]int{jobs.ReportsQueue: 1},
				Logger:      logger.Log,
			})
			mux := asynq.NewServeMux()
			mux.Handle(jobs.TypeReportSnapshot, jobs.NewSnapshotTaskHandler(reportSvc))
			if err := w.taskServer.Start(mux); err != nil {
				return nil, err
			}
			w.taskClient = asynq.NewClient(redisOpt)
			queue = w.taskClient
		}
		if err := scheduler.AddJob(background.ReportSnapshotJob, cfg.Jobs.ReportSnapshotInterval, jobs.NewReportSnapshot(orgRepo, reportSvc, queue)); err != nil {
			w.stop()
			return nil, err
		}
	}

	scheduler.Start()
	return w, nil
}

func (w *jobWorkers) stop() {
	if err := w.scheduler.Stop(); err != nil {
		logger.Log.WithError(err).Error("Job scheduler shutdown failed")
	}
	if w.taskServer != nil {
		w.taskServer.Shutdown()
	}
	if w.taskClient != nil {
		if err := w.taskClient.Close(); err != nil {
			logger.Log.WithError(err).Error("Task client close failed")
		}
	}
}
