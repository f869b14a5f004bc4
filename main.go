package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-events/internal/analytics"
	analytics_api "campus-events/internal/analytics/api"
	"campus-events/internal/auth"
	"campus-events/internal/catalog/catalog_api"
	catalog_db "campus-events/internal/catalog/db"
	catalog "campus-events/internal/catalog/service"
	"campus-events/internal/checkin/checkin_api"
	checkin_redis "campus-events/internal/checkin/redis"
	checkin "campus-events/internal/checkin/service"
	"campus-events/internal/config"
	"campus-events/internal/contact/contact_api"
	contact_db "campus-events/internal/contact/db"
	contact "campus-events/internal/contact/service"
	"campus-events/internal/database"
	"campus-events/internal/database/migrations"
	event_db "campus-events/internal/events/db"
	"campus-events/internal/events/event_api"
	events "campus-events/internal/events/service"
	"campus-events/internal/jobsync"
	"campus-events/internal/jobsync/jobsync_api"
	"campus-events/internal/kafka"
	"campus-events/internal/logger"
	"campus-events/internal/middleware"
	"campus-events/internal/models"
	"campus-events/internal/notify/email"
	poll_db "campus-events/internal/polls/db"
	"campus-events/internal/polls/poll_api"
	polls "campus-events/internal/polls/service"
	profile_db "campus-events/internal/profiles/db"
	"campus-events/internal/profiles/profile_api"
	profiles "campus-events/internal/profiles/service"
	"campus-events/internal/qr"
	registration_db "campus-events/internal/registrations/db"
	"campus-events/internal/registrations/registration_api"
	registrations "campus-events/internal/registrations/service"
	"campus-events/internal/registrations/template"
	"campus-events/internal/sse"
	"campus-events/internal/uploads"
	"campus-events/internal/uploads/upload_api"
	"campus-events/internal/utils"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
)

func healthHandler(db *bun.DB, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"database": "ok", "redis": "ok"}
		code := http.StatusOK
		if err := db.PingContext(ctx); err != nil {
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			status["redis"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		utils.WriteJSON(w, code, status)
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("[CONFIG] .env file not found, using environment variables")
	}
	cfg := config.Load()

	logger := logger.New(logger.Options{
		Dir:      cfg.Logging.Dir,
		Service:  "campus-events",
		MinLevel: logger.ParseLevel(cfg.Logging.Level),
	})
	defer logger.Close()

	logger.Info("APP", "Starting Campus Events API initialization")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bunDB, err := database.Connect(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		opts := migrations.DefaultOptions()
		opts.Dir = cfg.Database.MigrationsDir
		opts.Seed = cfg.Database.SeedDemo
		runner := migrations.NewRunner(bunDB.DB, opts, logger)
		if err := runner.Run(); err != nil {
			logger.Fatal("MIGRATE", fmt.Sprintf("Migration failed: %v", err))
		}
	}

	redisClient, err := database.ConnectRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("REDIS", err.Error())
	}
	defer redisClient.Close()

	var publisher kafka.Publisher = kafka.NoopPublisher{}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
		defer producer.Close()
		publisher = producer
		logger.Info("KAFKA", fmt.Sprintf("Kafka producer initialized for %v", cfg.Kafka.Brokers))

		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, cfg.Kafka.Topics.All(), logger); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		logger.Warn("KAFKA", "KAFKA_ENABLED is false, domain events will not be published")
	}

	if cfg.Auth.OIDCIssuer == "" || cfg.Auth.OIDCClientID == "" {
		logger.Fatal("CONFIG", "OIDC_ISSUER and OIDC_CLIENT_ID must be set")
	}
	verifier, err := auth.NewOIDCVerifier(ctx, cfg.Auth.OIDCIssuer, cfg.Auth.OIDCClientID)
	if err != nil {
		logger.Fatal("AUTH", fmt.Sprintf("Failed to initialize OIDC verifier: %v", err))
	}

	if cfg.QR.SecretKey == "" {
		logger.Fatal("CONFIG", "QR_SECRET_KEY not set")
	}
	qrGenerator := qr.NewQRGenerator(cfg.QR.SecretKey, cfg.QR.Size)
	emitter := sse.NewCheckinEventEmitter()

	// --- Data layers ---
	eventDB := &event_db.DB{Bun: bunDB}
	registrationDB := &registration_db.DB{Bun: bunDB}
	catalogDB := &catalog_db.DB{Bun: bunDB}
	profileDB := &profile_db.DB{Bun: bunDB}

	// --- Services ---
	eventService := events.NewEventService(eventDB, logger)
	registrationService := registrations.NewRegistrationService(registrationDB, eventDB, publisher, cfg.Kafka.Topics,
		qrGenerator, template.NewTicketPDFGenerator(cfg.QR.FontPath), logger)
	checkinService := checkin.NewCheckinService(registrationDB, qrGenerator,
		checkin_redis.NewScanLock(redisClient, cfg.Redis.CheckinLock), publisher, cfg.Kafka.Topics.CheckinCompleted, emitter, logger)
	catalogService := catalog.NewCatalogService(catalogDB, logger)
	pollService := polls.NewPollService(&poll_db.DB{Bun: bunDB}, logger)
	profileService := profiles.NewProfileService(profileDB, logger)
	roleService := profiles.NewRoleService(profileDB, auth.NewRoleCache(redisClient, cfg.Redis.RoleCacheTTL), logger)
	sender := email.NewSender(cfg.Email.SendGridAPIKey, cfg.Email.FromName, cfg.Email.FromAddress, logger)
	contactService := contact.NewContactService(&contact_db.DB{Bun: bunDB}, sender, cfg.Email.ContactInbox, logger)
	syncer := jobsync.NewFromConfig(cfg.Sync, catalogDB, publisher, cfg.Kafka.Topics.InternshipsSynced, logger)
	uploader := uploads.NewUploader(cfg.Uploads.Endpoint, cfg.Uploads.APIKey, cfg.Uploads.MaxBytes,
		&http.Client{Timeout: 30 * time.Second})

	if cfg.Kafka.Enabled {
		contactService.WithQueue(publisher, cfg.Kafka.Topics.ContactSubmitted)
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.ContactSubmitted, cfg.Kafka.GroupID, logger)
		defer consumer.Close()
		go consumer.Start(ctx, contactService.HandleSubmitted)
	}

	// --- Handlers ---
	eventHandler := event_api.NewHandler(eventService, logger)
	registrationHandler := registration_api.NewHandler(registrationService, logger)
	checkinHandler := checkin_api.NewHandler(checkinService, emitter, logger)
	catalogHandler := catalog_api.NewHandler(catalogService, logger)
	pollHandler := poll_api.NewHandler(pollService, logger)
	profileHandler := profile_api.NewHandler(profileService, roleService, logger)
	contactHandler := contact_api.NewHandler(contactService, logger)
	syncHandler := jobsync_api.NewHandler(syncer, logger)
	uploadHandler := upload_api.NewHandler(uploader, logger)
	analyticsHandler := analytics_api.NewHandler(analytics.NewService(bunDB), logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	r.Get("/health", healthHandler(bunDB, redisClient))

	r.Route("/api", func(r chi.Router) {
		// --- Public Routes ---
		eventHandler.RegisterPublicRoutes(r)
		catalogHandler.RegisterPublicRoutes(r)
		pollHandler.RegisterPublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.PublicFormLimit(5, time.Minute))
			contactHandler.RegisterPublicRoutes(r)
		})
		logger.Info("ROUTER", "Public routes registered")

		// --- Protected Routes ---
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(verifier, logger))

			registrationHandler.RegisterRoutes(r)
			pollHandler.RegisterRoutes(r)
			profileHandler.RegisterRoutes(r)
			logger.Info("ROUTER", "Authenticated routes registered")

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(roleService, logger, models.RoleAdmin, models.RoleScanner))
				checkinHandler.RegisterRoutes(r)
			})
			logger.Info("ROUTER", "Scanner routes registered under /api/checkin")

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireRole(roleService, logger, models.RoleAdmin))
				eventHandler.RegisterAdminRoutes(r)
				registrationHandler.RegisterAdminRoutes(r)
				catalogHandler.RegisterAdminRoutes(r)
				syncHandler.RegisterAdminRoutes(r)
				pollHandler.RegisterAdminRoutes(r)
				profileHandler.RegisterAdminRoutes(r)
				contactHandler.RegisterAdminRoutes(r)
				uploadHandler.RegisterAdminRoutes(r)
				analyticsHandler.RegisterAdminRoutes(r)
			})
			logger.Info("ROUTER", "Admin routes registered under /api/admin")
		})
	})

	go syncer.Schedule(ctx, cfg.Sync.Interval)

	// WriteTimeout stays zero: check-in streams are long-lived
	server := &http.Server{
		Addr:        cfg.Server.Port,
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Campus Events API running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	cancel()
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Campus Events API shutdown complete")
	}
}
