package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	analyticsapp "github.com/worktally/backend/internal/application/analytics"
	attachmentapp "github.com/worktally/backend/internal/application/attachment"
	chatapp "github.com/worktally/backend/internal/application/chat"
	identityapp "github.com/worktally/backend/internal/application/identity"
	invoiceapp "github.com/worktally/backend/internal/application/invoice"
	timesheetapp "github.com/worktally/backend/internal/application/timesheet"
	workspaceapp "github.com/worktally/backend/internal/application/workspace"
	"github.com/worktally/backend/internal/infrastructure/auth"
	"github.com/worktally/backend/internal/infrastructure/cache"
	"github.com/worktally/backend/internal/infrastructure/config"
	"github.com/worktally/backend/internal/infrastructure/event"
	"github.com/worktally/backend/internal/infrastructure/logger"
	"github.com/worktally/backend/internal/infrastructure/persistence"
	"github.com/worktally/backend/internal/infrastructure/printing"
	"github.com/worktally/backend/internal/infrastructure/storage"
	"github.com/worktally/backend/internal/interfaces/http/handler"
	"github.com/worktally/backend/internal/interfaces/http/middleware"
	"github.com/worktally/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting worktally backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	// Database with zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	workspaceRepo := persistence.NewGormWorkspaceRepository(db.DB)
	memberRepo := persistence.NewGormMemberRepository(db.DB)
	inviteRepo := persistence.NewGormInviteRepository(db.DB)
	tabRepo := persistence.NewGormTabRepository(db.DB)
	messageRepo := persistence.NewGormMessageRepository(db.DB)
	attachmentRepo := persistence.NewGormAttachmentRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Event serialization and the transactional outbox
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	workspaceRepo.SetOutboxEventSaver(outboxPublisher)
	inviteRepo.SetOutboxEventSaver(outboxPublisher)
	tabRepo.SetOutboxEventSaver(outboxPublisher)
	messageRepo.SetOutboxEventSaver(outboxPublisher)
	attachmentRepo.SetOutboxEventSaver(outboxPublisher)

	// Redis-backed realtime infrastructure
	redisCfg := cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	redisClient, err := cache.NewRedisClient(redisCfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()

	tokenBlacklist := auth.NewRedisTokenBlacklistWithClient(redisClient)
	chatRelay := cache.NewRedisChatRelayWithClient(redisClient, cache.WithRelayLogger(log))
	presenceTracker := cache.NewRedisPresenceTrackerWithClient(redisClient,
		cache.WithPresenceTTL(cfg.Chat.PresenceTTL),
		cache.WithPresenceLogger(log),
	)

	// Object storage: one bucket for tab attachments and invoices, one
	// for public avatars
	objectStorage, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiry),
	)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	avatarStorage, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiry),
		storage.WithBucket(cfg.Storage.AvatarBucket),
	)
	if err != nil {
		log.Fatal("Failed to initialize avatar storage", zap.Error(err))
	}

	// PDF rendering
	var pdfRenderer printing.PDFRenderer
	if cfg.Printing.Enabled {
		renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.Printing.RenderTimeout,
			RemoteURL:      cfg.Printing.ChromeURL,
			NoSandbox:      true,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
		}
		defer func() {
			if err := renderer.Close(); err != nil {
				log.Error("Error closing PDF renderer", zap.Error(err))
			}
		}()
		pdfRenderer = renderer
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, tokenBlacklist, log)
	userService := identityapp.NewUserService(userRepo, avatarStorage, log)

	workspaceService := workspaceapp.NewWorkspaceService(workspaceRepo, memberRepo, objectStorage, log)
	memberService := workspaceapp.NewMemberService(memberRepo, userRepo, log)
	inviteService := workspaceapp.NewInviteService(inviteRepo, memberRepo, workspaceRepo, log)
	inviteService.SetConfig(workspaceapp.InviteServiceConfig{
		BaseURL:    cfg.App.BaseURL,
		DefaultTTL: workspaceapp.DefaultInviteServiceConfig().DefaultTTL,
	})

	tabService := timesheetapp.NewTabService(tabRepo, memberRepo, workspaceRepo, attachmentRepo, objectStorage, log)
	attachmentService := attachmentapp.NewService(attachmentRepo, tabRepo, memberRepo, objectStorage, log)
	analyticsService := analyticsapp.NewService(tabRepo, memberRepo, log)

	chatService := chatapp.NewChatService(messageRepo, memberRepo, userRepo, chatRelay, log)
	presenceService := chatapp.NewPresenceService(presenceTracker, memberRepo, userRepo, log)

	var invoiceService *invoiceapp.Service
	if pdfRenderer != nil {
		invoiceTemplate, err := printing.NewInvoiceTemplate()
		if err != nil {
			log.Fatal("Failed to parse invoice template", zap.Error(err))
		}
		invoiceService = invoiceapp.NewService(
			tabRepo, memberRepo, workspaceRepo, userRepo, attachmentRepo,
			objectStorage, invoiceTemplate, pdfRenderer, log,
		)
	}

	// Event bus and the outbox processor feeding it
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	processorConfig := event.DefaultOutboxProcessorConfig()
	if cfg.Event.BatchSize > 0 {
		processorConfig.BatchSize = cfg.Event.BatchSize
	}
	if cfg.Event.PollInterval > 0 {
		processorConfig.PollInterval = cfg.Event.PollInterval
	}
	processorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
	if cfg.Event.CleanupRetention > 0 {
		processorConfig.CleanupRetention = cfg.Event.CleanupRetention
	}

	outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
	if cfg.Event.ProcessorEnabled {
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// HTTP handlers
	healthHandler := handler.NewHealthHandler(db.DB, version)
	authHandler := handler.NewAuthHandler(authService)
	profileHandler := handler.NewProfileHandler(userService)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService, memberService, inviteService)
	workspaceHandler.SetJoinAuth(middleware.OptionalJWTAuthMiddleware(jwtService))
	tabHandler := handler.NewTabHandler(tabService, analyticsService, invoiceService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService)
	chatHandler := handler.NewChatHandler(chatService, presenceService, chatRelay, eventBus, userRepo, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Credential endpoints get a fixed-window limit per client IP
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	limitAuth := authLimiter.Middleware()
	engine.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/v1/auth/") {
			limitAuth(c)
			return
		}
		c.Next()
	})

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = tokenBlacklist
	jwtConfig.Logger = log
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	router.NewRouter(engine).
		Register(healthHandler).
		Register(authHandler).
		Register(profileHandler).
		Register(workspaceHandler).
		Register(tabHandler).
		Register(attachmentHandler).
		Register(chatHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
