package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/nikolasrailan/tcc-match-sub000/api/swagger"
	"github.com/nikolasrailan/tcc-match-sub000/internal/handler"
	"github.com/nikolasrailan/tcc-match-sub000/internal/middleware"
	"github.com/nikolasrailan/tcc-match-sub000/internal/models"
	"github.com/nikolasrailan/tcc-match-sub000/internal/repository"
	"github.com/nikolasrailan/tcc-match-sub000/internal/service"
	"github.com/nikolasrailan/tcc-match-sub000/pkg/cache"
	"github.com/nikolasrailan/tcc-match-sub000/pkg/config"
	"github.com/nikolasrailan/tcc-match-sub000/pkg/database"
	"github.com/nikolasrailan/tcc-match-sub000/pkg/logger"
	corsmiddleware "github.com/nikolasrailan/tcc-match-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/nikolasrailan/tcc-match-sub000/pkg/middleware/requestid"
)

// @title TCC Match API
// @version 1.0.0
// @description Thesis advising management: advisor matching, advising lifecycle and defense committee generation
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, directory cache disabled", "error", err)
		redisClient = nil
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	professorRepo := repository.NewProfessorRepository(db)
	areaRepo := repository.NewAreaRepository(db)
	ideaRepo := repository.NewIdeaRepository(db)
	advisingRepo := repository.NewAdvisingRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	committeeRepo := repository.NewCommitteeRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Directory.CacheTTL, logr, cfg.Directory.CacheEnabled && redisClient != nil)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "tcc-match",
		Audience:           []string{"tcc-match-api"},
	})
	professorSvc := service.NewProfessorService(professorRepo, areaRepo, cacheSvc, nil, logr)
	areaSvc := service.NewAreaService(areaRepo, nil, logr)
	ideaSvc := service.NewIdeaService(ideaRepo, areaRepo, nil, logr)
	advisingSvc := service.NewAdvisingService(advisingRepo, professorRepo, nil, logr)
	meetingSvc := service.NewMeetingService(meetingRepo, advisingRepo, professorRepo, nil, logr)
	committeeSvc := service.NewCommitteeService(db, advisingRepo, professorRepo, committeeRepo, nil, logr).
		WithSeats(cfg.Committees.CommitteeSize)
	exportSvc := service.NewExportService(committeeRepo, advisingRepo, ideaRepo, professorRepo, userRepo, cfg.Exports.Institution, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	professorHandler := handler.NewProfessorHandler(professorSvc)
	areaHandler := handler.NewAreaHandler(areaSvc)
	ideaHandler := handler.NewIdeaHandler(ideaSvc)
	advisingHandler := handler.NewAdvisingHandler(advisingSvc)
	meetingHandler := handler.NewMeetingHandler(meetingSvc, metricsSvc)
	committeeHandler := handler.NewCommitteeHandler(committeeSvc, metricsSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
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

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, cfg, userRepo,
		authHandler, professorHandler, areaHandler, ideaHandler,
		advisingHandler, meetingHandler, committeeHandler, exportHandler,
		authSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func registerRoutes(
	r *gin.Engine,
	cfg *config.Config,
	userRepo *repository.UserRepository,
	auth *handler.AuthHandler,
	professors *handler.ProfessorHandler,
	areas *handler.AreaHandler,
	ideas *handler.IdeaHandler,
	advisings *handler.AdvisingHandler,
	meetings *handler.MeetingHandler,
	committees *handler.CommitteeHandler,
	exports *handler.ExportHandler,
	authSvc *service.AuthService,
) {
	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", auth.Login)
	api.POST("/auth/refresh", auth.Refresh)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.POST("/auth/logout", auth.Logout)
	authed.POST("/auth/change-password", auth.ChangePassword)
	authed.GET("/auth/me", auth.Me)

	authed.GET("/professors", professors.List)
	authed.GET("/professors/me", middleware.RequireRoles(models.RoleProfessor), professors.Me)
	authed.GET("/professors/:id", professors.Get)
	authed.PATCH("/professors/:id", middleware.RequireRoles(models.RoleProfessor, models.RoleAdmin), professors.Update)
	authed.PUT("/professors/:id/areas", middleware.RequireRoles(models.RoleProfessor, models.RoleAdmin), professors.ReplaceAreas)

	authed.GET("/areas", areas.List)
	authed.POST("/areas", areas.Create)
	authed.PATCH("/areas/:id/review", middleware.RequireRoles(models.RoleAdmin), areas.Review)

	authed.POST("/ideas", middleware.RequireRoles(models.RoleStudent), ideas.Create)
	authed.GET("/ideas", ideas.ListMine)
	authed.GET("/ideas/:id", ideas.Get)
	authed.PATCH("/ideas/:id", middleware.RequireRoles(models.RoleStudent), ideas.Update)
	authed.PATCH("/ideas/:id/submit", middleware.RequireRoles(models.RoleStudent), ideas.Submit)
	authed.PATCH("/ideas/:id/review", middleware.RequireRoles(models.RoleAdmin), ideas.Review)
	authed.PATCH("/ideas/:id/cancel", middleware.RequireRoles(models.RoleStudent), ideas.Cancel)

	authed.GET("/advisings", advisings.List)
	authed.GET("/advisings/:id", advisings.Get)
	// Status and progress updates are open to both parties; the service
	// authorizes by party membership, not by role.
	authed.PATCH("/advisings/:id", advisings.Update)
	authed.PATCH("/advisings/:id/cancellation-request", middleware.RequireRoles(models.RoleStudent), advisings.RequestCancellation)
	authed.PATCH("/advisings/:id/cancellation-confirm", middleware.RequireRoles(models.RoleProfessor), advisings.ConfirmCancellation)
	authed.PATCH("/advisings/:id/cancel", middleware.RequireRoles(models.RoleProfessor), advisings.CancelDirect)
	authed.PATCH("/advisings/:id/finalization-request", middleware.RequireRoles(models.RoleStudent), advisings.RequestFinalization)

	authed.POST("/advisings/:id/meetings", meetings.Schedule)
	authed.GET("/advisings/:id/meetings", meetings.List)
	authed.PATCH("/meetings/:id", meetings.Update)

	admin := middleware.RequireRoles(models.RoleAdmin)

	if cfg.Committees.Enabled {
		authed.POST("/committees/generate", admin,
			middleware.Audit(userRepo, models.AuditActionGenerate, "committees"),
			committees.Generate)
	}
	authed.GET("/committees", admin, committees.List)
	authed.GET("/committees/:id", admin, committees.Get)
	authed.PATCH("/committees/:id", admin, committees.Update)
	authed.GET("/advisings/:id/committee", committees.GetByAdvising)

	if cfg.Exports.Enabled {
		authed.GET("/committees/export", admin, exports.CommitteesCSV)
		authed.GET("/committees/:id/defense-record", middleware.RequireRoles(models.RoleAdmin, models.RoleProfessor), exports.DefenseRecord)
	}
}
