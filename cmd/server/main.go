package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	agreementapp "github.com/futurosresidentes/backoffice/internal/application/agreement"
	carteraapp "github.com/futurosresidentes/backoffice/internal/application/cartera"
	supportapp "github.com/futurosresidentes/backoffice/internal/application/support"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/auco"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/clickup"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/config"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/idempotency"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/logger"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/membership"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/persistence"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/rendering"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/storage"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/whatsapp"
	"github.com/futurosresidentes/backoffice/internal/infrastructure/worldoffice"
	"github.com/futurosresidentes/backoffice/internal/interfaces/http/handler"
	"github.com/futurosresidentes/backoffice/internal/interfaces/http/middleware"
	"github.com/futurosresidentes/backoffice/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting backoffice",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database with zap-backed gorm logging
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
	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}
	log.Info("Database connected successfully")

	templateRepo := persistence.NewGormTemplateRepository(db.DB)
	agreementRepo := persistence.NewGormAgreementRepository(db.DB)

	// Vendor clients
	woClient, err := worldoffice.NewClient(&worldoffice.Config{
		BaseURL:        cfg.WorldOffice.BaseURL,
		Token:          cfg.WorldOffice.Token,
		TimeoutSeconds: cfg.WorldOffice.TimeoutSeconds,
	}, logger.Named(log, "worldoffice"))
	if err != nil {
		log.Fatal("Failed to initialize World Office client", zap.Error(err))
	}

	aucoClient, err := auco.NewClient(&auco.Config{
		BaseURL:        cfg.Auco.BaseURL,
		APIKey:         cfg.Auco.APIKey,
		SenderEmail:    cfg.Auco.SenderEmail,
		TimeoutSeconds: cfg.Auco.TimeoutSeconds,
	}, logger.Named(log, "auco"))
	if err != nil {
		log.Fatal("Failed to initialize Auco client", zap.Error(err))
	}

	membershipClient, err := membership.NewClient(&membership.Config{
		BaseURL:        cfg.Membership.BaseURL,
		APIKey:         cfg.Membership.APIKey,
		TimeoutSeconds: cfg.Membership.TimeoutSeconds,
	}, logger.Named(log, "membership"))
	if err != nil {
		log.Fatal("Failed to initialize membership client", zap.Error(err))
	}

	// WhatsApp notices are optional; blocking works without them
	var notifier carteraapp.Notifier
	if cfg.WhatsApp.Token != "" {
		waClient, err := whatsapp.NewClient(&whatsapp.Config{
			BaseURL:        cfg.WhatsApp.BaseURL,
			AccessToken:    cfg.WhatsApp.Token,
			PhoneNumberID:  cfg.WhatsApp.PhoneNumberID,
			TimeoutSeconds: cfg.WhatsApp.TimeoutSeconds,
		}, logger.Named(log, "whatsapp"))
		if err != nil {
			log.Fatal("Failed to initialize WhatsApp client", zap.Error(err))
		}
		notifier = waClient
	} else {
		log.Warn("WhatsApp token not configured, block notices disabled")
	}

	// City cache: one bounded warm-up before serving, then lazy TTL refresh
	cityCache := worldoffice.NewCityCache(woClient,
		worldoffice.WithTTL(cfg.WorldOffice.CityCacheTTL),
		worldoffice.WithLogger(logger.Named(log, "worldoffice")),
	)
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if cityCache.Refresh(warmCtx, true) {
		log.Info("City cache warmed", zap.Int("cities", cityCache.Size()))
	} else {
		log.Warn("City cache warm-up failed, lookups will retry lazily")
	}
	warmCancel()

	// PDF renderer, one browser per render
	renderer := rendering.NewChromeRenderer(&rendering.ChromeConfig{
		ChromePath:     cfg.Render.ChromePath,
		DefaultTimeout: cfg.Render.Timeout,
		NoSandbox:      cfg.Render.NoSandbox,
		Logger:         logger.Named(log, "rendering"),
	})

	// Idempotency store: Redis when enabled, in-memory otherwise
	var idemStore idempotency.Store
	if cfg.Redis.Enabled {
		redisStore, err := idempotency.NewRedisStore(idempotency.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		idemStore = redisStore
		log.Info("Using Redis idempotency store")
	} else {
		idemStore = idempotency.NewInMemoryStore()
		log.Info("Using in-memory idempotency store")
	}
	defer func() {
		if err := idemStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// PDF archive: S3 when enabled, in-memory stub otherwise
	var archive agreementapp.PDFArchiver
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3Archive(&cfg.Storage, storage.WithLogger(logger.Named(log, "storage")))
		if err != nil {
			log.Fatal("Failed to initialize S3 archive", zap.Error(err))
		}
		archive = s3Archive
		log.Info("Using S3 PDF archive", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		archive = storage.NewStubArchive()
		log.Warn("Object storage disabled, PDFs are not archived durably")
	}

	// Application services
	agreementService := agreementapp.NewService(
		&cfg.Agreement,
		templateRepo,
		renderer,
		aucoClient,
		archive,
		agreementRepo,
		idemStore,
		logger.Named(log, "agreement"),
	)
	carteraService := carteraapp.NewService(
		membershipClient,
		notifier,
		woClient,
		cityCache,
		cfg.WhatsApp.BlockTemplate,
		cfg.WorldOffice.DefaultCityID,
		logger.Named(log, "cartera"),
	)

	// Gin engine and middleware
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewAgreementHandler(agreementService, agreementRepo))
	r.Register(handler.NewCarteraHandler(carteraService))
	r.Register(handler.NewTemplateHandler(templateRepo))
	r.Register(handler.NewSystemHandler(db, cityCache))

	// Support tickets are optional; without a ClickUp token the routes are absent
	if cfg.ClickUp.Token != "" {
		clickupClient, err := clickup.NewClient(&clickup.Config{
			BaseURL:        cfg.ClickUp.BaseURL,
			APIToken:       cfg.ClickUp.Token,
			ListID:         cfg.ClickUp.ListID,
			TimeoutSeconds: cfg.ClickUp.TimeoutSeconds,
		}, logger.Named(log, "clickup"))
		if err != nil {
			log.Fatal("Failed to initialize ClickUp client", zap.Error(err))
		}
		supportService := supportapp.NewService(clickupClient, logger.Named(log, "support"))
		r.Register(handler.NewSupportHandler(supportService))
	} else {
		log.Warn("ClickUp token not configured, support ticket routes disabled")
	}

	r.Setup()

	// Plain health probe outside API versioning, for load balancers
	engine.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
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
