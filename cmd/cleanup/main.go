package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/BrightSmileDental/clinic-service/internal/clinic"
	"github.com/BrightSmileDental/clinic-service/internal/db"
)

func main() {
	log.Println("Clinic Cleanup Job - Starting")
	log.Println("Retention Policy: 3 years")

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	cleanupService := clinic.NewCleanupService(database)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	count, err := cleanupService.GetExpiredClinicsCount(ctx)
	if err != nil {
		log.Fatalf("Failed to get expired clinics count: %v", err)
	}

	log.Printf("Found %d clinics eligible for permanent deletion", count)

	if count == 0 {
		log.Println("No cleanup needed. Exiting.")
		os.Exit(0)
	}

	deletedCount, err := cleanupService.CleanupExpiredClinics(ctx)
	if err != nil {
		log.Fatalf("Cleanup failed: %v", err)
	}

	log.Printf("✓ Cleanup completed successfully: %d clinics permanently deleted", deletedCount)
	log.Println("Cleanup Job - Finished")
}
