package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/brajcamp/camp-registration/internal/config"     // Internal config loader
	"github.com/brajcamp/camp-registration/internal/database"   // MySQL connection pool
	"github.com/brajcamp/camp-registration/internal/gateway"    // Payment gateway client
	"github.com/brajcamp/camp-registration/internal/handler"    // HTTP handlers
	"github.com/brajcamp/camp-registration/internal/middleware" // Rate limiting middleware
	"github.com/brajcamp/camp-registration/internal/notify"     // Confirmation email sender
	"github.com/brajcamp/camp-registration/internal/queue"      // Registration event consumer
	"github.com/brajcamp/camp-registration/internal/repository" // Registration store implementations
	"github.com/brajcamp/camp-registration/internal/router"     // Route registration
	queue_publisher "github.com/brajcamp/camp-registration/internal/service" // Publishes confirmed registrations
)

func main() {
	_ = godotenv.Load() // Load .env when present; real env vars win

	cfg := config.Load() // Load environment config

	// Pick the registration store. A configured database host selects the
	// MySQL store; otherwise registrations live in process memory, which is
	// enough for a single-instance camp deployment.
	var store repository.RegistrationStore
	if cfg.DBHost != "" {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("database: %v", err) // Refuse to start half-configured
		}
		store = repository.NewMySQLStore(db)
		log.Printf("registration store: mysql (%s/%s)", cfg.DBHost, cfg.DBName)
	} else {
		store = repository.NewMemoryStore()
		log.Printf("registration store: in-memory")
	}

	rdb := config.NewRedisClient()                                        // Redis client for rate limiting (nil when unavailable)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb) // Token bucket over the public endpoints

	gw := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayKeyID, cfg.GatewayKeySecret) // Orders API client
	mailer := notify.NewMailer()                                                        // Confirmation mail (no-op without SMTP creds)

	pay := handler.NewPaymentHandler(cfg, gw)                                                          // Order creation + callback verification
	reg := handler.NewRegisterHandler(cfg, store, mailer, queue_publisher.PublishRegistrationConfirmed) // Registration completion
	auth := handler.NewAuthHandler(cfg)                                                                // Admin login
	adm := handler.NewAdminHandler(store)                                                              // Admin read-only views

	// Consume confirmed-registration events in the background. The consumer
	// reconnects on its own; a missing broker only disables the audit log.
	go func() {
		if err := queue.StartRegistrationConsumer(); err != nil {
			log.Printf("registration consumer: %v", err)
		}
	}()

	e := echo.New()                                   // Create Echo instance
	router.RegisterRoutes(e)                          // Health check
	router.RegisterPayment(e, pay, reg, limit)        // Public checkout endpoints
	router.RegisterAdmin(e, auth, adm, cfg.JWTSecret) // Admin login + protected views

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
