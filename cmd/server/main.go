package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OpenCarePath/carepath/internal/attachment"
	"github.com/OpenCarePath/carepath/internal/careteam"
	"github.com/OpenCarePath/carepath/internal/config"
	"github.com/OpenCarePath/carepath/internal/database"
	"github.com/OpenCarePath/carepath/internal/event"
	"github.com/OpenCarePath/carepath/internal/insight"
	"github.com/OpenCarePath/carepath/internal/integration"
	"github.com/OpenCarePath/carepath/internal/middleware"
	"github.com/OpenCarePath/carepath/internal/notification"
	"github.com/OpenCarePath/carepath/internal/pathway"
	"github.com/OpenCarePath/carepath/internal/patient"
	"github.com/OpenCarePath/carepath/internal/user"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	slog.Info("configuration loaded successfully",
		"db_host", cfg.Database.Host,
		"db_port", cfg.Database.Port,
		"db_name", cfg.Database.Name,
		"db_sslmode", cfg.Database.SSLMode,
	)

	slog.Info("server configuration",
		"port", cfg.Server.Port,
		"storage_type", cfg.Storage.Type,
	)

	// Initialize database connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	// Perform health check
	if err := database.HealthCheck(context.Background(), db); err != nil {
		log.Fatalf("database health check failed: %v", err)
	}

	// Create or update the schema
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Attachment storage backend
	blobStore, err := attachment.NewBlobStoreFromConfig(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize attachment storage: %v", err)
	}

	// The event bus connects the pathway engine to every subscriber below.
	bus := event.NewBus(db)

	patientService := patient.NewService(db)
	userService := user.NewService(db)
	careTeamService := careteam.NewService(db)
	attachmentService := attachment.NewService(db, blobStore)

	// Subscribers react to pathway events after commit. Each registers its
	// own handlers so a failing subscriber never blocks the engine.
	notificationService := notification.NewService(db)
	notificationService.RegisterEventHandlers(bus)

	insightService := insight.NewService(db)
	insightService.RegisterEventHandlers(bus)

	integrationService := integration.NewService(db, cfg.Integration)
	integrationService.RegisterEventHandlers(bus)

	// Pathway domain: templates, the execution engine, and assignments
	pathwayManager := pathway.NewManager(db, bus, patientService)

	// Set up HTTP routes
	mux := http.NewServeMux()
	pathwayManager.RegisterRoutes(mux)
	patient.NewRouter(patientService).RegisterRoutes(mux)
	user.NewRouter(userService).RegisterRoutes(mux)
	careteam.NewRouter(careTeamService).RegisterRoutes(mux)
	notification.NewRouter(notificationService).RegisterRoutes(mux)
	insight.NewRouter(insightService).RegisterRoutes(mux)
	integration.NewRouter(integrationService).RegisterRoutes(mux)
	attachment.NewRouter(attachmentService).RegisterRoutes(mux)

	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)

	// Wrap handler with CORS middleware
	handler := middleware.CORS(&cfg.CORS)(mux)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: handler,
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		slog.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	// Wait for interrupt signal
	<-quit
	slog.Info("shutting down server...")

	// Create a context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown of HTTP server
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	} else {
		slog.Info("server gracefully stopped")
	}

	slog.Info("server stopped")
}
