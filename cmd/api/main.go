package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BrightSmileDental/clinic-service/internal/appointment"
	"github.com/BrightSmileDental/clinic-service/internal/auth"
	"github.com/BrightSmileDental/clinic-service/internal/clinic"
	"github.com/BrightSmileDental/clinic-service/internal/db"
	httpserver "github.com/BrightSmileDental/clinic-service/internal/http"
	"github.com/BrightSmileDental/clinic-service/internal/messaging"
	"github.com/BrightSmileDental/clinic-service/internal/telemetry"
)

func main() {
	log.Println("clinic-service starting")

	ctx := context.Background()

	// Telemetry first so the DB driver instrumentation has a provider.
	telemetryProvider, err := telemetry.InitProvider(ctx, telemetry.LoadConfig())
	if err != nil {
		log.Printf("Warning: telemetry initialization failed: %v", err)
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	publisher, err := messaging.NewPublisher()
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	authCfg := auth.LoadConfig()
	jwks, err := auth.NewJWKS(authCfg.JWKSURL, 15*time.Minute)
	if err != nil {
		log.Fatalf("Failed to load JWKS from %s: %v", authCfg.JWKSURL, err)
	}
	defer jwks.Close()
	verifier := auth.NewVerifier(authCfg, jwks)

	permissionsPath := os.Getenv("PERMISSIONS_FILE")
	if permissionsPath == "" {
		permissionsPath = "permissions.yml"
	}
	perms, err := auth.LoadPermissions(permissionsPath)
	if err != nil {
		log.Fatalf("Failed to load permissions from %s: %v", permissionsPath, err)
	}
	log.Printf("✓ Loaded permissions for %d roles", len(perms))

	router := httpserver.SetupRouter(database, verifier, perms, publisher, metrics)

	// Background sweep marks past-due appointments as missed.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	sweeper := appointment.NewSweeper(
		appointment.NewRepository(database),
		clinic.NewRepository(database),
		publisher,
		metrics,
	)
	go sweeper.RunPeriodically(sweepCtx, sweepInterval())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("✓ clinic-service listening on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if telemetryProvider != nil {
		if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
			log.Printf("Telemetry shutdown error: %v", err)
		}
	}
	log.Println("✓ clinic-service stopped")
}

func sweepInterval() time.Duration {
	if s := os.Getenv("MISSED_SWEEP_INTERVAL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
		log.Printf("Warning: invalid MISSED_SWEEP_INTERVAL %q, using default", s)
	}
	return 5 * time.Minute
}
