package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/minhtran-dev/thidua-api/api/swagger"
	"github.com/minhtran-dev/thidua-api/internal/handler"
	internalmiddleware "github.com/minhtran-dev/thidua-api/internal/middleware"
	"github.com/minhtran-dev/thidua-api/internal/repository"
	"github.com/minhtran-dev/thidua-api/internal/service"
	"github.com/minhtran-dev/thidua-api/pkg/cache"
	"github.com/minhtran-dev/thidua-api/pkg/config"
	"github.com/minhtran-dev/thidua-api/pkg/database"
	"github.com/minhtran-dev/thidua-api/pkg/jobs"
	"github.com/minhtran-dev/thidua-api/pkg/logger"
	corsmiddleware "github.com/minhtran-dev/thidua-api/pkg/middleware/cors"
	reqidmiddleware "github.com/minhtran-dev/thidua-api/pkg/middleware/requestid"
	"github.com/minhtran-dev/thidua-api/pkg/storage"
)

// @title Thi Dua API
// @version 1.0.0
// @description Classroom behavior point tracking for Vietnamese primary classes
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Leaderboard.CacheTTL, logr,
		cfg.Leaderboard.CacheEnabled && redisClient != nil)
	defer cacheRepo.Close() //nolint:errcheck

	schoolYearRepo := repository.NewSchoolYearRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	behaviorRepo := repository.NewBehaviorRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	avatarRepo := repository.NewAvatarRepository(db)

	schoolYearSvc := service.NewSchoolYearService(schoolYearRepo, cacheSvc, nil, logr)
	rosterSvc := service.NewRosterService(teamRepo, schoolYearRepo, cacheSvc, nil, logr)
	ledgerSvc := service.NewLedgerService(ledgerRepo, schoolYearRepo, cacheSvc, nil, logr)
	dashboardSvc := service.NewDashboardService(teamRepo, historyRepo, schoolYearRepo, cacheSvc, cfg.Leaderboard.CacheTTL, logr)
	historySvc := service.NewHistoryService(historyRepo, schoolYearRepo, logr)
	behaviorSvc := service.NewBehaviorService(behaviorRepo, schoolYearRepo, nil, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, teamRepo, schoolYearRepo, nil, logr)
	avatarSvc := service.NewAvatarService(avatarRepo, schoolYearRepo, nil, logr)

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(historyRepo, schoolYearRepo, exportStore, signer, metricsSvc, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Exports.Enabled {
		queue := jobs.NewQueue("exports", exportSvc.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()
		exportSvc.SetQueue(queue)
		exportSvc.StartCleanup(ctx, cfg.Exports.SignedURLTTL)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, handler.Handlers{
		Roster:     handler.NewRosterHandler(rosterSvc),
		Ledger:     handler.NewLedgerHandler(ledgerSvc),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),
		History:    handler.NewHistoryHandler(historySvc, exportSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc),
		Behavior:   handler.NewBehaviorHandler(behaviorSvc),
		SchoolYear: handler.NewSchoolYearHandler(schoolYearSvc),
		Avatar:     handler.NewAvatarHandler(avatarSvc),
		Export:     handler.NewExportHandler(exportSvc),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
