package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/adapter/ai/azure"
	"github.com/bankislami/voicebot/internal/adapter/cache"
	grpcserver "github.com/bankislami/voicebot/internal/adapter/grpc/server"
	"github.com/bankislami/voicebot/internal/adapter/http/fiber/handlers"
	"github.com/bankislami/voicebot/internal/adapter/http/fiber/middleware"
	"github.com/bankislami/voicebot/internal/adapter/queue"
	"github.com/bankislami/voicebot/internal/adapter/retrieval"
	"github.com/bankislami/voicebot/internal/adapter/storage/postgres"
	"github.com/bankislami/voicebot/internal/adapter/vault"
	wsAdapter "github.com/bankislami/voicebot/internal/adapter/websocket"
	"github.com/bankislami/voicebot/internal/lexicon"
	"github.com/bankislami/voicebot/internal/observability/telemetry"
	"github.com/bankislami/voicebot/internal/ports"
	"github.com/bankislami/voicebot/internal/service/admin"
	"github.com/bankislami/voicebot/internal/service/assistant"
	"github.com/bankislami/voicebot/internal/service/email"
	"github.com/bankislami/voicebot/internal/service/health"
	"github.com/bankislami/voicebot/internal/service/media"
	"github.com/bankislami/voicebot/internal/service/whatsapp"
	"github.com/bankislami/voicebot/internal/worker"
	"github.com/bankislami/voicebot/pkg/config"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// 2. Initialize Logger
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting voicebot",
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	// 3. Overlay secrets from Vault
	if cfg.Vault.Enabled {
		overlayVaultSecrets(cfg, logger)
	}

	// 4. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(cfg.App.Name, cfg.App.Version, cfg.OpenTelemetry.Jaeger.Endpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 5. Initialize Cache (Redis, or in-process when Redis is unavailable)
	appCache := newCache(cfg, logger)
	defer appCache.Close()

	// 6. Initialize Message Queue
	messageQueue := newQueue(cfg, logger)
	defer messageQueue.Close()

	// 7. Initialize PostgreSQL (optional audit log)
	var (
		convRepo ports.ConversationRepository
		sqlDB    = newDatabase(cfg, logger, &convRepo)
	)

	// 8. Load the voice lexicon and product catalog
	lex, err := lexicon.Load(cfg.Lexicon.VoiceConfigPath, logger)
	if err != nil {
		logger.Fatal("Failed to load voice config", zap.Error(err))
	}
	lex.DisplayNames = lexicon.LoadCatalog(cfg.Lexicon.KnowledgeBaseURL, logger)

	// 9. Initialize Azure clients
	var (
		transcriber ports.Transcriber
		synthesizer ports.Synthesizer
		generator   ports.Generator
		embedder    ports.Embedder
	)
	if cfg.Azure.Speech.Key != "" && cfg.Azure.Speech.Region != "" {
		speech := azure.NewSpeechClient(azure.SpeechConfig{
			Key:      cfg.Azure.Speech.Key,
			Region:   cfg.Azure.Speech.Region,
			Language: cfg.Azure.Speech.Language,
			Voice:    cfg.Azure.Speech.Voice,
			Timeout:  cfg.Azure.Speech.Timeout,
		}, logger)
		transcriber = speech
		synthesizer = speech
	} else {
		logger.Warn("Azure Speech not configured, audio endpoints disabled")
	}
	if cfg.Azure.OpenAI.Endpoint != "" && cfg.Azure.OpenAI.Key != "" {
		openAI := azure.NewOpenAIClient(azure.OpenAIConfig{
			Endpoint:            cfg.Azure.OpenAI.Endpoint,
			Key:                 cfg.Azure.OpenAI.Key,
			ChatDeployment:      cfg.Azure.OpenAI.ChatDeployment,
			EmbeddingDeployment: cfg.Azure.OpenAI.EmbeddingDeployment,
			Timeout:             cfg.Azure.OpenAI.Timeout,
		}, logger)
		generator = openAI
		if cfg.Retrieval.UseEmbeddings {
			embedder = openAI
		}
	} else {
		logger.Warn("Azure OpenAI not configured, every answer degrades to a fallback")
	}

	// 10. Build the retrieval index over the knowledge base
	var retriever ports.Retriever
	{
		opts := []retrieval.Option{}
		if embedder != nil {
			opts = append(opts, retrieval.WithEmbedder(embedder))
		}
		if cfg.Retrieval.CacheContext {
			opts = append(opts, retrieval.WithCache(appCache))
		}
		index, err := retrieval.NewIndex(context.Background(), cfg.Lexicon.KnowledgeBaseURL, logger, opts...)
		if err != nil {
			logger.Warn("Knowledge base unavailable, retrieval disabled", zap.Error(err))
		} else {
			retriever = index
		}
	}

	// 11. Initialize Media Store (synthesized audio served over /media/:id)
	mediaStore := media.NewStore(appCache, cfg.Media.TTL, logger)

	// 12. Initialize Email (support handoff escalation)
	var emailSender ports.EmailSender
	emailSvc, err := email.NewService(&email.Config{
		Provider:       cfg.Email.Provider,
		FromEmail:      cfg.Email.FromEmail,
		FromName:       cfg.Email.FromName,
		SendGridAPIKey: cfg.Email.SendGridAPIKey,
		SMTPHost:       cfg.Email.SMTPHost,
		SMTPPort:       cfg.Email.SMTPPort,
		SMTPUsername:   cfg.Email.SMTPUsername,
		SMTPPassword:   cfg.Email.SMTPPassword,
		SMTPUseTLS:     cfg.Email.SMTPUseTLS,
	}, logger)
	if err != nil {
		logger.Warn("Email disabled", zap.Error(err))
	} else {
		emailSender = emailSvc
	}

	// 13. Initialize Services (Business Logic Layer)
	assistantSvc := assistant.NewService(lex, retriever, generator, convRepo, emailSender, cfg.Email.SupportTo, logger)
	adminSvc := admin.NewService(cfg.Admin.JWTSecret, cfg.Admin.APIKeyHash, cfg.Admin.TokenTTL, convRepo, logger)

	// 14. Initialize WhatsApp channel
	var waSvc *whatsapp.Service
	if cfg.WhatsApp.Enabled {
		waSvc, err = whatsapp.NewService(whatsapp.Config{
			Provider:          cfg.WhatsApp.Provider,
			AccessToken:       cfg.WhatsApp.AccessToken,
			PhoneNumberID:     cfg.WhatsApp.PhoneNumberID,
			VerifyToken:       cfg.WhatsApp.VerifyToken,
			APIVersion:        cfg.WhatsApp.APIVersion,
			AppID:             cfg.WhatsApp.AppID,
			AppSecret:         cfg.WhatsApp.AppSecret,
			AccountSID:        cfg.WhatsApp.AccountSID,
			AuthToken:         cfg.WhatsApp.AuthToken,
			FromPhone:         cfg.WhatsApp.FromPhone,
			RecipientOverride: cfg.WhatsApp.RecipientOverride,
			PublicBaseURL:     cfg.HTTP.PublicBaseURL,
		}, mediaStore, logger)
		if err != nil {
			logger.Warn("WhatsApp channel disabled", zap.Error(err))
			waSvc = nil
		}
	}

	// 15. Start the webhook consumer
	if waSvc != nil {
		consumer := worker.NewWebhookConsumer(assistantSvc, waSvc, transcriber, synthesizer, waSvc, logger)
		if err := consumer.Start(messageQueue); err != nil {
			logger.Fatal("Failed to start webhook consumer", zap.Error(err))
		}
	}

	// 16. Health checks
	healthSvc := health.NewService(&health.Config{
		Version:   cfg.App.Version,
		DB:        sqlDB,
		Cache:     appCache,
		QueueKind: cfg.Queue.Kind,
	}, logger)

	// 17. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ServerHeader:          cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		BodyLimit:             25 * 1024 * 1024, // voice notes
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	}
	if cfg.RateLimiting.Enabled {
		app.Use(middleware.RateLimit(cfg.RateLimiting.MaxRequests, cfg.RateLimiting.Window))
	}
	if cfg.CircuitBreaker.Enabled {
		app.Use(middleware.CircuitBreaker(logger))
	}

	// Health Check Endpoints
	health.NewFiberHandler(healthSvc).RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	if cfg.Prometheus.Enabled {
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
			handler(c.Context())
			return nil
		})
	}

	// Chat UI + conversation endpoints
	uiHandler := handlers.NewUIHandler()
	app.Get("/", uiHandler.Index)

	convHandler := handlers.NewConversationHandler(assistantSvc, transcriber, synthesizer, mediaStore, logger)
	app.Post("/text", convHandler.Text)
	app.Post("/audio", convHandler.Audio)
	app.Get("/tts", convHandler.TTS)
	app.Get("/media/:id", convHandler.Media)

	// WhatsApp webhook
	if waSvc != nil {
		webhookHandler := handlers.NewWebhookHandler(waSvc, messageQueue, logger)
		app.Get("/webhook", webhookHandler.Verify)
		app.Post("/webhook", webhookHandler.Events)
	}

	// Admin routes
	adminHandler := handlers.NewAdminHandler(adminSvc, waSvc, logger)
	app.Post("/admin/login", adminHandler.Login)

	protected := app.Group("", middleware.AdminRequired(adminSvc))
	protected.Get("/admin/turns", adminHandler.Turns)
	if waSvc != nil {
		protected.Post("/whatsapp/push", adminHandler.Push)
		protected.Get("/whatsapp/diagnose", adminHandler.Diagnose)
	}

	// Streaming chat WebSocket
	chatStream := wsAdapter.NewChatStreamHandler(assistantSvc, transcriber, synthesizer, logger)
	wsAdapter.SetupChatRoutes(app, chatStream)

	// 18. Initialize gRPC Server (health + reflection for infra probes)
	var grpcSrv *grpcserver.GRPCServer
	if cfg.GRPC.Enabled {
		grpcSrv = grpcserver.NewGRPCServer(healthSvc, logger)
		go func() {
			logger.Info("Starting gRPC Server", zap.Int("port", cfg.GRPC.Port))
			lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
			if err != nil {
				logger.Fatal("Failed to listen for gRPC", zap.Error(err))
			}
			if err := grpcSrv.Serve(lis); err != nil {
				logger.Fatal("gRPC Server failed", zap.Error(err))
			}
		}()
	}

	// 19. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 20. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if grpcSrv != nil {
		grpcSrv.Stop()
	}

	logger.Info("Server exited gracefully")
}

// newLogger builds the zap logger from config. Unknown levels fall back to
// info rather than refusing to start.
func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	if level, err := zap.ParseAtomicLevel(cfg.Level); err == nil {
		zapCfg.Level = level
	}
	if cfg.Output != "" {
		zapCfg.OutputPaths = []string{cfg.Output}
	}
	if cfg.Sampling.Enabled {
		zapCfg.Sampling = &zap.SamplingConfig{
			Initial:    cfg.Sampling.Initial,
			Thereafter: cfg.Sampling.Thereafter,
		}
	}

	return zapCfg.Build()
}

// newCache connects to Redis, falling back to the in-process cache so a
// missing Redis never blocks startup.
func newCache(cfg *config.Config, logger *zap.Logger) ports.Cache {
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL, logger)
		if err == nil {
			return redisCache
		}
		logger.Warn("Redis unavailable, using in-process cache", zap.Error(err))
	}
	return cache.NewLocalCache(time.Minute, logger)
}

// newQueue builds the configured queue backend, falling back to the
// in-process queue when the broker is unreachable.
func newQueue(cfg *config.Config, logger *zap.Logger) queue.MessageQueue {
	switch cfg.Queue.Kind {
	case "nats":
		mq, err := queue.NewNATSQueue(cfg.NATS.URL, logger)
		if err == nil {
			return mq
		}
		logger.Warn("NATS unavailable, using in-process queue", zap.Error(err))
	case "rabbitmq":
		mq, err := queue.NewRabbitMQQueue(cfg.RabbitMQ.URL, logger)
		if err == nil {
			return mq
		}
		logger.Warn("RabbitMQ unavailable, using in-process queue", zap.Error(err))
	}
	return queue.NewMemoryQueue(logger)
}

// newDatabase connects the optional audit log store. Without a DATABASE_URL
// the assistant runs with the audit log disabled.
func newDatabase(cfg *config.Config, logger *zap.Logger, repo *ports.ConversationRepository) *sql.DB {
	if cfg.Database.URL == "" {
		logger.Info("No database configured, conversation audit log disabled")
		return nil
	}

	db, err := postgres.NewConnection(cfg.Database.URL, logger)
	if err != nil {
		logger.Warn("Database unavailable, conversation audit log disabled", zap.Error(err))
		return nil
	}
	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	*repo = postgres.NewConversationRepository(db, logger)

	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("Failed to expose sql.DB for health checks", zap.Error(err))
		return nil
	}
	return sqlDB
}

// overlayVaultSecrets replaces file-config credentials with Vault ones where
// present. Missing secrets are not an error, the file value stands.
func overlayVaultSecrets(cfg *config.Config, logger *zap.Logger) {
	sm, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token)
	if err != nil {
		logger.Warn("Vault unavailable, using file configuration", zap.Error(err))
		return
	}

	overlay := func(name string, target *string, fetch func() (string, error)) {
		value, err := fetch()
		if err != nil {
			logger.Debug("Vault secret not overlaid", zap.String("secret", name), zap.Error(err))
			return
		}
		*target = value
	}

	overlay("database", &cfg.Database.URL, sm.GetDatabaseURL)
	overlay("azure-speech", &cfg.Azure.Speech.Key, sm.GetAzureSpeechKey)
	overlay("azure-openai", &cfg.Azure.OpenAI.Key, sm.GetAzureOpenAIKey)
	overlay("whatsapp", &cfg.WhatsApp.AccessToken, sm.GetWhatsAppAccessToken)
	overlay("sendgrid", &cfg.Email.SendGridAPIKey, sm.GetSendGridKey)
	overlay("admin", &cfg.Admin.JWTSecret, sm.GetAdminJWTSecret)
}
