package main

import (
	"context"
	"log"
	"time"

	"github.com/BrightSmileDental/clinic-service/internal/appointment"
	"github.com/BrightSmileDental/clinic-service/internal/clinic"
	"github.com/BrightSmileDental/clinic-service/internal/db"
	"github.com/BrightSmileDental/clinic-service/internal/messaging"
	"github.com/BrightSmileDental/clinic-service/internal/telemetry"
)

// One-shot sweep over every active clinic, intended for cron. The API server
// also sweeps periodically; running both is safe because MarkMissed only
// touches rows that are still confirmed.
func main() {
	log.Println("Missed Appointment Sweep - Starting")

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

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	sweeper := appointment.NewSweeper(
		appointment.NewRepository(database),
		clinic.NewRepository(database),
		publisher,
		metrics,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	marked, err := sweeper.Run(ctx)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}

	log.Printf("✓ Sweep completed: %d appointments marked missed", marked)
}
