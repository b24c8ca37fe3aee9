package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"anoa.com/safereport/internal/config"
	"anoa.com/safereport/internal/job"
	"anoa.com/safereport/internal/middleware"
	"anoa.com/safereport/pkg/database"
	"anoa.com/safereport/pkg/mailer"
	"anoa.com/safereport/pkg/otp"
	"anoa.com/safereport/pkg/queue"
	"anoa.com/safereport/pkg/ratelimiter"
	"anoa.com/safereport/pkg/storage"
	"anoa.com/safereport/pkg/token"
	"anoa.com/safereport/pkg/validator"

	analyticsHttp "anoa.com/safereport/internal/modules/analytics/delivery/http"
	analyticsService "anoa.com/safereport/internal/modules/analytics/service"

	announcementHttp "anoa.com/safereport/internal/modules/announcement/delivery/http"
	announcementRepo "anoa.com/safereport/internal/modules/announcement/repository"
	announcementService "anoa.com/safereport/internal/modules/announcement/service"

	jobHttp "anoa.com/safereport/internal/modules/job/delivery/http"

	commentHttp "anoa.com/safereport/internal/modules/comment/delivery/http"
	commentRepo "anoa.com/safereport/internal/modules/comment/repository"
	commentService "anoa.com/safereport/internal/modules/comment/service"

	profileHttp "anoa.com/safereport/internal/modules/profile/delivery/http"
	profileService "anoa.com/safereport/internal/modules/profile/service"

	realtimeHttp "anoa.com/safereport/internal/modules/realtime/delivery/http"
	realtimeService "anoa.com/safereport/internal/modules/realtime/service"

	reportHttp "anoa.com/safereport/internal/modules/report/delivery/http"
	reportRepo "anoa.com/safereport/internal/modules/report/repository"
	reportService "anoa.com/safereport/internal/modules/report/service"

	searchService "anoa.com/safereport/internal/modules/search/service"

	userHttp "anoa.com/safereport/internal/modules/user/delivery/http"
	userRepo "anoa.com/safereport/internal/modules/user/repository"
	userService "anoa.com/safereport/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	cfg         *config.Config
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *job.Scheduler
	producer    *queue.Producer
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if err := validator.Register(); err != nil {
		return nil, err
	}

	fileStorage, err := storage.New(storage.Config{
		Driver:              cfg.StorageDriver,
		CloudinaryURL:       cfg.CloudinaryURL,
		CloudinaryCloudName: cfg.CloudinaryCloudName,
		S3Endpoint:          cfg.S3Endpoint,
		S3Region:            cfg.S3Region,
		S3Bucket:            cfg.S3Bucket,
		S3AccessKey:         cfg.S3AccessKey,
		S3SecretKey:         cfg.S3SecretKey,
		S3PublicBaseURL:     cfg.S3PublicBaseURL,
	})
	if err != nil {
		return nil, err
	}
	if fileStorage == nil {
		log.Println("⚠️ No storage driver configured, attachments will be skipped")
	}

	var reportIndex searchService.ReportIndex
	if cfg.MeiliSearchHost != "" {
		meiliHost := cfg.MeiliSearchHost
		if !strings.HasPrefix(meiliHost, "http") {
			meiliHost = "http://" + meiliHost + ":7700"
		}
		meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		reportIndex = searchService.NewReportIndex(meiliClient)
	}

	producer := queue.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaUsername, cfg.KafkaPassword)
	var events reportService.EventPublisher
	if producer != nil {
		events = producer
	}

	limiter := ratelimiter.New(redisClient)
	publisher := realtimeService.NewPublisher(redisClient)
	tokens := token.NewManager(cfg.JWTSecret)

	userRepository := userRepo.NewUserRepository(db)
	reportRepository := reportRepo.NewReportRepository(db)
	commentRepository := commentRepo.NewCommentRepository(db)
	announcementRepository := announcementRepo.NewAnnouncementRepository(db)

	authOpts := userService.Options{
		TokenTTL:            cfg.JWTTTL,
		AdminTTL:            cfg.AdminTTL,
		AdminSecret:         cfg.AdminSecretKey,
		GoogleClientID:      cfg.GoogleClientID,
		GoogleClientSecret:  cfg.GoogleClientSecret,
		GoogleRedirectURL:   cfg.GoogleRedirectURL,
		GoogleAllowedDomain: cfg.GoogleAllowedDomain,
		Mailer: mailer.New(mailer.Config{
			SendgridAPIKey: cfg.SendgridAPIKey,
			AppName:        cfg.MailFromName,
			FromEmail:      cfg.MailFromEmail,
			AllowConsole:   !cfg.IsProduction(),
		}),
		Limiter: limiter,
	}
	// Reset codes must outlive a single process, so recovery needs redis.
	if redisClient != nil {
		authOpts.ResetCodes = otp.NewStore(redisClient, "password_reset", cfg.PasswordResetTTL)
	}
	if authOpts.Mailer == nil || authOpts.ResetCodes == nil {
		log.Println("⚠️ Mailer or Redis missing, password recovery disabled")
	}
	authSvc := userService.NewAuthService(userRepository, tokens, authOpts)
	authHandler := userHttp.NewAuthHandler(authSvc, cfg.FrontendURL)

	reportSvc := reportService.NewReportService(
		reportRepository,
		userRepository,
		fileStorage,
		limiter,
		publisher,
		reportIndex,
		events,
		reportService.Options{
			SubmitCooldown:      cfg.RateLimitReport,
			AnonymousDailyQuota: cfg.AnonymousDailyQuota,
		},
	)
	reportHandler := reportHttp.NewReportHandler(reportSvc)

	commentSvc := commentService.NewCommentService(commentRepository, reportRepository, limiter, publisher, cfg.RateLimitComment)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	announcementSvc := announcementService.NewAnnouncementService(announcementRepository, fileStorage, publisher)
	announcementHandler := announcementHttp.NewAnnouncementHandler(announcementSvc)

	analyticsSvc := analyticsService.NewAnalyticsService(reportRepository, announcementSvc)
	analyticsHandler := analyticsHttp.NewAnalyticsHandler(analyticsSvc)

	profileSvc := profileService.NewProfileService(userRepository, reportSvc)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	realtimeHandler := realtimeHttp.NewRealtimeHandler(redisClient, reportRepository, cfg.AllowedOrigins)

	scheduler := job.NewScheduler()
	for _, j := range []job.Job{
		job.NewReindexJob(reportSvc),
		job.NewStaleDigestJob(reportSvc),
	} {
		if err := scheduler.Register(j); err != nil {
			return nil, err
		}
	}
	jobHandler := jobHttp.NewJobHandler(scheduler)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/metrics", "/healthz"},
	}))
	router.Use(middleware.MetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.Ping(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(tokens)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/admin/login", authHandler.AdminLogin)
		auth.GET("/google/login", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
		auth.POST("/password/forgot", authHandler.ForgotPassword)
		auth.POST("/password/reset", authHandler.ResetPassword)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Routes that act on the caller's own student account
		student := protected.Group("")
		student.Use(authMiddleware.RequireStudent())
		{
			student.POST("/reports", reportHandler.Submit)
			student.GET("/reports/me", reportHandler.ListMine)
			student.POST("/announcements/:id/like", announcementHandler.ToggleLike)

			student.GET("/profile", profileHandler.GetCurrentProfile)
			student.PUT("/profile", profileHandler.UpdateProfile)
			student.PUT("/profile/password", authHandler.ChangePassword)
		}

		// Report routes
		protected.GET("/reports/locations", reportHandler.Locations)
		protected.GET("/reports/:id", reportHandler.Get)
		protected.GET("/reports/:id/comments", commentHandler.List)
		protected.POST("/reports/:id/comments", commentHandler.Create)

		// Announcement routes
		protected.GET("/announcements", announcementHandler.ListActive)

		protected.GET("/realtime/ws", realtimeHandler.HandleWebSocket)

		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/dashboard", analyticsHandler.Dashboard)
			adminGroup.GET("/analytics", analyticsHandler.Analytics)

			adminGroup.GET("/reports", reportHandler.ListAll)
			adminGroup.GET("/reports/search", reportHandler.Search)
			adminGroup.GET("/reports/:id", reportHandler.Get)
			adminGroup.PATCH("/reports/:id/status", reportHandler.UpdateStatus)
			adminGroup.GET("/reports/:id/comments", commentHandler.List)
			adminGroup.POST("/reports/:id/comments", commentHandler.Create)

			adminGroup.GET("/announcements", announcementHandler.ListAll)
			adminGroup.POST("/announcements", announcementHandler.Create)
			adminGroup.PUT("/announcements/:id", announcementHandler.Update)
			adminGroup.DELETE("/announcements/:id", announcementHandler.Delete)
			adminGroup.PATCH("/announcements/:id/active", announcementHandler.ToggleActive)

			adminGroup.GET("/jobs", jobHandler.List)
			adminGroup.POST("/jobs/:name/run", jobHandler.Run)
		}
	}

	return &Server{
		cfg:         cfg,
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   scheduler,
		producer:    producer,
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// stops the background jobs.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.scheduler.Stop()
		return err
	case <-ctx.Done():
	}

	log.Println("🛑 Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.scheduler.Stop()

	if cerr := s.producer.Close(); cerr != nil {
		log.Printf("Failed to close kafka producer: %v", cerr)
	}
	if s.redisClient != nil {
		if cerr := s.redisClient.Close(); cerr != nil {
			log.Printf("Failed to close redis client: %v", cerr)
		}
	}
	if sqlDB, cerr := s.db.DB(); cerr == nil {
		_ = sqlDB.Close()
	}

	return err
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
