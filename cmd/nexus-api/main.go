package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/nexus-club/admin-api/api/swagger"
	"github.com/nexus-club/admin-api/internal/handler"
	"github.com/nexus-club/admin-api/internal/middleware"
	"github.com/nexus-club/admin-api/internal/models"
	"github.com/nexus-club/admin-api/internal/repository"
	"github.com/nexus-club/admin-api/internal/service"
	"github.com/nexus-club/admin-api/pkg/cache"
	"github.com/nexus-club/admin-api/pkg/config"
	"github.com/nexus-club/admin-api/pkg/database"
	"github.com/nexus-club/admin-api/pkg/logger"
	corsmiddleware "github.com/nexus-club/admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/nexus-club/admin-api/pkg/middleware/requestid"
	"github.com/nexus-club/admin-api/pkg/notify"
	"github.com/nexus-club/admin-api/pkg/storage"
)

// @title Nexus Club Admin API
// @version 1.0.0
// @description Admin back-office and public endpoints of the Nexus student club
// @BasePath /
// @schemes http https

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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
		if cfg.Session.Secret == "" || cfg.Session.Secret == "dev_session_secret" {
			return fmt.Errorf("SESSION_SECRET must be set in production")
		}
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logr.Info("migrations applied")
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	store, err := newStorage(ctx, cfg, logr)
	if err != nil {
		return fmt.Errorf("init upload storage: %w", err)
	}

	metricsSvc := service.NewMetricsService()
	validate := service.NewValidator()

	adminRepo := repository.NewAdminRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	eventRepo := repository.NewEventRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	sponsorRepo := repository.NewSponsorRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	newbieRepo := repository.NewNewbieRepository(db)
	seeRepo := repository.NewSeeRegistrationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Redis.CacheTTL, logr, cacheRepo.Enabled())
	uploadSvc := service.NewUploadService(store, service.UploadConfig{MaxBytes: cfg.Upload.MaxBytes, Timeout: cfg.Upload.Timeout}, metricsSvc, logr)
	auditSvc := service.NewAuditService(auditRepo, logr)
	authSvc := service.NewAuthService(adminRepo, cacheRepo, auditSvc, validate, logr, service.AuthConfig{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
		Issuer: "nexus-admin-api",
	})
	adminSvc := service.NewAdminService(adminRepo, validate, logr)
	exportSvc := service.NewExportService(logr, nil, nil)

	notificationSvc := service.NewNotificationService(memberRepo, notificationSenders(cfg.Notifications, logr), service.NotificationConfig{
		Workers:     cfg.Notifications.Workers,
		Concurrency: cfg.Notifications.Concurrency,
		SendTimeout: cfg.Notifications.SendTimeout,
		Retries:     cfg.Notifications.Retries,
	}, metricsSvc, logr)
	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	memberSvc := service.NewMemberService(memberRepo, uploadSvc, cacheSvc, validate, logr)
	eventSvc := service.NewEventService(eventRepo, uploadSvc, cacheSvc, validate, logr)
	projectSvc := service.NewProjectService(projectRepo, uploadSvc, cacheSvc, validate, logr)
	sponsorSvc := service.NewSponsorService(sponsorRepo, validate, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, notificationSvc, cacheSvc, validate, logr)
	newbieSvc := service.NewNewbieService(newbieRepo, exportSvc, validate, logr)
	seeSvc := service.NewSeeRegistrationService(seeRepo, exportSvc, validate, logr)

	var cachePing func(context.Context) error
	if redisClient != nil {
		cachePing = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Upload.MaxBytes
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	healthHandler := handler.NewHealthHandler(db, cachePing, metricsSvc)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", healthHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if store.Driver() == storage.DriverLocal {
		r.Static(cfg.Upload.PublicPath, cfg.Upload.Dir)
	}

	api := r.Group(cfg.APIPrefix, middleware.Timeout(cfg.RequestTimeout))
	registerRoutes(api, routeDeps{
		cookieName:    cfg.Session.CookieName,
		cookieSecure:  cfg.Session.Secure,
		loginPerMin:   cfg.RateLimit.LoginPerMinute,
		uploadLimit:   cfg.Upload.MaxRequestBytes,
		auth:          authSvc,
		audit:         auditSvc,
		admins:        adminSvc,
		members:       memberSvc,
		events:        eventSvc,
		projects:      projectSvc,
		sponsors:      sponsorSvc,
		announcements: announcementSvc,
		newbies:       newbieSvc,
		see:           seeSvc,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "cache", cacheRepo.Enabled(), "notifications", notificationSvc.Enabled())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown", zap.Error(err))
	}
	logr.Info("server stopped")
	return nil
}

type routeDeps struct {
	cookieName   string
	cookieSecure bool
	loginPerMin  int
	uploadLimit  int64

	auth          *service.AuthService
	audit         *service.AuditService
	admins        *service.AdminService
	members       *service.MemberService
	events        *service.EventService
	projects      *service.ProjectService
	sponsors      *service.SponsorService
	announcements *service.AnnouncementService
	newbies       *service.NewbieService
	see           *service.SeeRegistrationService
}

func registerRoutes(api *gin.RouterGroup, d routeDeps) {
	requireSession := middleware.Session(d.auth, d.cookieName)
	optionalSession := middleware.OptionalSession(d.auth, d.cookieName)
	superadminOnly := middleware.RequireRoles(models.AdminRoleSuperAdmin)
	audited := func(resource string) gin.HandlerFunc { return middleware.Audit(d.audit, resource) }
	uploadBody := middleware.BodyLimit(d.uploadLimit)

	authHandler := handler.NewAuthHandler(d.auth, handler.CookieConfig{Name: d.cookieName, Secure: d.cookieSecure})
	api.POST("/login", middleware.RateLimit(d.loginPerMin, time.Minute), authHandler.Login)
	api.GET("/session", requireSession, authHandler.Session)
	api.DELETE("/session", authHandler.Logout)

	adminHandler := handler.NewAdminHandler(d.admins)
	admins := api.Group("/admins", requireSession, superadminOnly, audited("admins"))
	admins.GET("", adminHandler.List)
	admins.POST("", adminHandler.Create)

	auditHandler := handler.NewAuditHandler(d.audit)
	api.GET("/audit-logs", requireSession, superadminOnly, auditHandler.List)

	memberHandler := handler.NewMemberHandler(d.members)
	members := api.Group("/members")
	members.GET("", memberHandler.List)
	members.GET("/:id", memberHandler.Get)
	membersAdmin := members.Group("", requireSession, audited("members"))
	membersAdmin.POST("", uploadBody, memberHandler.Create)
	membersAdmin.PUT("/:id", uploadBody, memberHandler.Update)
	membersAdmin.PATCH("", memberHandler.Reorder)
	membersAdmin.DELETE("/:id", memberHandler.Delete)

	eventHandler := handler.NewEventHandler(d.events)
	events := api.Group("/events")
	events.GET("", eventHandler.List)
	events.GET("/:id", eventHandler.Get)
	eventsAdmin := events.Group("", requireSession, audited("events"))
	eventsAdmin.POST("", uploadBody, eventHandler.Create)
	eventsAdmin.PUT("/:id", uploadBody, eventHandler.Update)
	eventsAdmin.DELETE("/:id", eventHandler.Delete)

	projectHandler := handler.NewProjectHandler(d.projects)
	projects := api.Group("/projects")
	projects.GET("", projectHandler.List)
	projects.GET("/:id", projectHandler.Get)
	projectsAdmin := projects.Group("", requireSession, audited("projects"))
	projectsAdmin.POST("", uploadBody, projectHandler.Create)
	projectsAdmin.PUT("/:id", uploadBody, projectHandler.Update)
	projectsAdmin.DELETE("/:id", projectHandler.Delete)

	sponsorHandler := handler.NewSponsorHandler(d.sponsors)
	sponsors := api.Group("/sponsors", requireSession, audited("sponsors"))
	sponsors.GET("", sponsorHandler.List)
	sponsors.GET("/:id", sponsorHandler.Get)
	sponsors.POST("", sponsorHandler.Create)
	sponsors.PUT("/:id", sponsorHandler.Update)
	sponsors.PATCH("/:id", sponsorHandler.Patch)
	sponsors.DELETE("/:id", sponsorHandler.Delete)

	announcementHandler := handler.NewAnnouncementHandler(d.announcements)
	announcements := api.Group("/announcements")
	announcements.GET("", optionalSession, announcementHandler.List)
	announcements.GET("/:id", optionalSession, announcementHandler.Get)
	announcementsAdmin := announcements.Group("", requireSession, audited("announcements"))
	announcementsAdmin.POST("", announcementHandler.Create)
	announcementsAdmin.PUT("/:id", announcementHandler.Update)
	announcementsAdmin.DELETE("/:id", announcementHandler.Delete)

	newbieHandler := handler.NewNewbieHandler(d.newbies)
	newbies := api.Group("/newbies")
	newbies.POST("", newbieHandler.Apply)
	newbiesAdmin := newbies.Group("", requireSession, audited("newbies"))
	newbiesAdmin.GET("", newbieHandler.List)
	newbiesAdmin.GET("/export", newbieHandler.Export)
	newbiesAdmin.PATCH("", newbieHandler.UpdateStatus)
	newbiesAdmin.DELETE("/:id", newbieHandler.Delete)

	seeHandler := handler.NewSeeRegistrationHandler(d.see)
	see := api.Group("/see-registrations")
	see.POST("", seeHandler.Register)
	seeAdmin := see.Group("", requireSession, audited("see-registrations"))
	seeAdmin.GET("", seeHandler.List)
	seeAdmin.GET("/export", seeHandler.Export)
	seeAdmin.PATCH("", seeHandler.UpdateStatus)
}

func newStorage(ctx context.Context, cfg *config.Config, logr *zap.Logger) (storage.Storage, error) {
	if cfg.Upload.Driver == storage.DriverS3 {
		return storage.NewS3Storage(ctx, cfg.Upload.S3, logr)
	}
	return storage.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.PublicPath)
}

// notificationSenders returns only the fully configured providers.
func notificationSenders(cfg config.NotificationConfig, logr *zap.Logger) []notify.Sender {
	var senders []notify.Sender
	if sms := notify.NewTwilioSender(cfg.Twilio, cfg.SendTimeout); sms != nil {
		senders = append(senders, sms)
	}
	if email := notify.NewSMTPSender(cfg.SMTP); email != nil {
		senders = append(senders, email)
	}
	if len(senders) == 0 {
		logr.Info("no notification provider configured, announcements will not be broadcast")
	}
	return senders
}
