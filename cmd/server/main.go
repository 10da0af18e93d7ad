package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caregame/internal/analytics"
	"caregame/internal/config"
	"caregame/internal/database"
	"caregame/internal/handlers"
	"caregame/internal/live"
	"caregame/internal/repository"
	"caregame/internal/security"
	"caregame/internal/service"
	"caregame/internal/store"

	"github.com/go-chi/cors"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := runMigrations(ctx, db, cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Session stores
	localCache, err := store.NewLocalCache(cfg.LocalCachePath)
	if err != nil {
		log.Fatalf("Failed to open local session cache: %v", err)
	}

	sessionRepo := repository.NewSessionRepository(db)
	var remote service.RemoteSessionStore = sessionRepo
	if cfg.RemoteStore == config.RemoteStoreRedis {
		redisStore, err := store.NewRedisSessionStore(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		remote = redisStore
		log.Printf("Using Redis session store at %s", cfg.RedisAddr)
	}

	norms := analytics.DefaultNorms
	if cfg.NormsPath != "" {
		norms, err = analytics.LoadNormTable(cfg.NormsPath)
		if err != nil {
			log.Fatalf("Failed to load norms: %v", err)
		}
		log.Printf("Loaded ADHD norms from %s", cfg.NormsPath)
	}

	policy, err := service.ParseDuplicatePolicy(cfg.DuplicatePolicy)
	if err != nil {
		log.Fatalf("Invalid duplicate policy: %v", err)
	}

	// Initialize repositories
	childRepo := repository.NewChildRepository(db)
	caregiverRepo := repository.NewCaregiverRepository(db)

	// Initialize services
	hub := live.NewHub()
	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.TokenDuration)
	authService := service.NewAuthService(caregiverRepo, tokens)
	reconcileService := service.NewReconcileService(localCache, remote, policy)
	reportService := service.NewReportService(reconcileService, childRepo, norms)
	ingestService := service.NewIngestService(localCache, remote, hub)

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService)
	caregiverHandler := handlers.NewCaregiverHandler(authService)
	childHandler := handlers.NewChildHandler(childRepo, ingestService)
	reportHandler := handlers.NewReportHandler(reportService, emailService)
	liveHandler := handlers.NewLiveHandler(reportService, hub, cfg.CORSOrigins)

	loginLimiter := security.NewRateLimiter(10, time.Minute)
	defer loginLimiter.Stop()
	emailLimiter := security.NewRateLimiter(5, time.Hour)
	defer emailLimiter.Stop()

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handlers.Health(db))

	// Caregiver accounts
	mux.HandleFunc("POST /api/caregivers/register", handlers.RateLimit(loginLimiter, caregiverHandler.Register))
	mux.HandleFunc("POST /api/caregivers/login", handlers.RateLimit(loginLimiter, caregiverHandler.Login))

	// Game client routes
	mux.HandleFunc("POST /api/children", childHandler.CreateChild)
	mux.HandleFunc("POST /api/children/{childId}/sessions", childHandler.RecordSession)

	// Caregiver report routes
	mux.HandleFunc("GET /api/children/{childId}/report", middleware.RequireCaregiver(reportHandler.GetReport))
	mux.HandleFunc("POST /api/children/{childId}/report/email", handlers.RateLimit(emailLimiter, middleware.RequireCaregiver(reportHandler.EmailReport)))
	mux.HandleFunc("GET /api/children/{childId}/report/live", middleware.RequireCaregiver(liveHandler.Stream))

	// Wrap with CORS and logging middleware
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	handler := handlers.Logging(corsHandler(mux))

	// Start server. WriteTimeout stays unset so live report streams are not cut off.
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// runMigrations applies migrations from dir when set, otherwise the embedded set
func runMigrations(ctx context.Context, db *database.DB, dir string) error {
	if dir != "" {
		log.Printf("Running migrations from %s", dir)
		return db.RunMigrationsFS(ctx, os.DirFS(dir))
	}
	return db.RunMigrations(ctx)
}
