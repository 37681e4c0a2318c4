package main

import (
	"log"
	"time"

	"taskboard-notifier/internal/api"
	"taskboard-notifier/internal/config"
	"taskboard-notifier/internal/database"
	"taskboard-notifier/internal/notify"
	"taskboard-notifier/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize MongoDB client (the task table store)
	mongoClient, err := database.NewMongoDBClient(cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Close()

	if cfg.Notify.WebhookURL == "" {
		log.Printf("WARNING: WEBHOOK_URL not configured, notifications will be recorded as failed in the audit log")
	}

	loc := cfg.Location()

	// Initialize services
	dispatcher := notify.NewDispatcher(
		cfg.Notify.RetryAttempts,
		time.Duration(cfg.Notify.RetryBackoffMs)*time.Millisecond,
	)
	lock := services.NewTableLock()
	notifier := services.NewNotifier(mongoClient, dispatcher, lock, cfg.Notify, loc)
	scanner := services.NewScanner(mongoClient, dispatcher, cfg.Notify, loc)
	archiver := services.NewArchiver(mongoClient)
	importer := services.NewImporter(mongoClient, services.NewAllocator(), "schemas/import_plan.json", loc)

	// Start the cron scheduler for reminder scans and archive migration
	scheduler := services.NewScheduler(scanner, archiver)
	if err := scheduler.ScheduleReminders(cfg.Cron.ReminderSpec); err != nil {
		log.Fatalf("Failed to schedule reminder scan: %v", err)
	}
	if err := scheduler.ScheduleArchive(cfg.Cron.ArchiveSpec); err != nil {
		log.Fatalf("Failed to schedule archive migration: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize handlers
	handlers := api.NewHandlers(mongoClient, notifier, scanner, archiver, importer)

	// Setup routes
	router := api.SetupRoutes(handlers)

	// Start server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
