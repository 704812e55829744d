package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/databayt/hogwarts-timetable/api/swagger"
	"github.com/databayt/hogwarts-timetable/internal/handler"
	"github.com/databayt/hogwarts-timetable/internal/middleware"
	"github.com/databayt/hogwarts-timetable/internal/models"
	"github.com/databayt/hogwarts-timetable/internal/repository"
	"github.com/databayt/hogwarts-timetable/internal/service"
	"github.com/databayt/hogwarts-timetable/pkg/cache"
	"github.com/databayt/hogwarts-timetable/pkg/config"
	"github.com/databayt/hogwarts-timetable/pkg/database"
	"github.com/databayt/hogwarts-timetable/pkg/logger"
	corsmiddleware "github.com/databayt/hogwarts-timetable/pkg/middleware/cors"
	reqidmiddleware "github.com/databayt/hogwarts-timetable/pkg/middleware/requestid"
)

// @title Hogwarts Timetable API
// @version 0.1.0
// @description Timetable scheduling, conflict detection, and teacher substitution
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, running without grid cache", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	slotRepo := repository.NewSlotRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	weekConfigRepo := repository.NewWeekConfigRepository(db)
	termRepo := repository.NewTermRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	absenceRepo := repository.NewAbsenceRepository(db)
	substitutionRepo := repository.NewSubstitutionRepository(db)

	metricsSvc := service.NewMetricsService()
	weekConfigSvc := service.NewWeekConfigService(weekConfigRepo, nil, logr)
	conflictSvc := service.NewConflictService(slotRepo, logr)
	slotSvc := service.NewSlotService(
		slotRepo, conflictSvc, weekConfigSvc, periodRepo,
		termRepo, classRepo, subjectRepo, teacherRepo, classroomRepo,
		cacheRepo, metricsSvc, cfg.Timetable.CacheTTL, nil, logr,
	)
	suggestionSvc := service.NewSuggestionService(slotRepo, conflictSvc, teacherRepo, classroomRepo, subjectRepo, logr)
	generatorSvc := service.NewGeneratorService(
		slotRepo, weekConfigSvc, periodRepo, termRepo, subjectRepo,
		teacherRepo, classroomRepo, cacheRepo, metricsSvc, cfg.Generator, nil, logr,
	)
	substitutionSvc := service.NewSubstitutionService(
		absenceRepo, substitutionRepo, slotRepo, teacherRepo, termRepo,
		weekConfigSvc, suggestionSvc, metricsSvc, nil, logr,
	)

	slotHandler := handler.NewSlotHandler(slotSvc)
	timetableHandler := handler.NewTimetableHandler(slotSvc)
	conflictHandler := handler.NewConflictHandler(conflictSvc)
	suggestionHandler := handler.NewSuggestionHandler(suggestionSvc)
	weekConfigHandler := handler.NewWeekConfigHandler(weekConfigSvc)
	generatorHandler := handler.NewGeneratorHandler(generatorSvc)
	absenceHandler := handler.NewAbsenceHandler(substitutionSvc)
	substitutionHandler := handler.NewSubstitutionHandler(substitutionSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT))

	admin := middleware.RequireRoles(models.RoleAdmin)
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)

	api.GET("/slots", anyRole, slotHandler.List)
	api.POST("/slots", admin, slotHandler.Create)
	api.PUT("/slots/:id", admin, slotHandler.Update)
	api.DELETE("/slots/:id", admin, slotHandler.Delete)

	api.GET("/timetable", anyRole, timetableHandler.Weekly)
	api.GET("/timetable/export", anyRole, timetableHandler.Export)

	api.POST("/conflicts/check", anyRole, conflictHandler.Check)
	api.GET("/conflicts/terms/:termId", admin, conflictHandler.CheckTerm)

	api.POST("/suggestions", admin, suggestionHandler.Suggest)

	api.GET("/week-config", anyRole, weekConfigHandler.Resolve)
	api.PUT("/week-config", admin, weekConfigHandler.Upsert)

	api.POST("/generate", admin, generatorHandler.Generate)

	api.POST("/absences", anyRole, absenceHandler.Report)
	api.GET("/absences", anyRole, absenceHandler.List)
	api.GET("/absences/:id", anyRole, absenceHandler.Get)
	api.POST("/absences/:id/approve", admin, absenceHandler.Approve)
	api.POST("/absences/:id/cancel", admin, absenceHandler.Cancel)
	api.GET("/absences/:id/progress", anyRole, absenceHandler.Progress)

	api.GET("/substitutions", anyRole, substitutionHandler.List)
	api.POST("/substitutions/:id/respond", anyRole, substitutionHandler.Respond)
	api.POST("/substitutions/:id/reassign", admin, substitutionHandler.Reassign)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go substitutionSvc.RunCompletionSweep(sweepCtx, cfg.Substitution.CompletionSweepInterval)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
