package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"freightdesk/internal/auth"
	"freightdesk/internal/config"
	"freightdesk/internal/handler"
	"freightdesk/internal/middleware"
	"freightdesk/internal/repository/postgres"
	"freightdesk/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	clientRepo := postgres.NewClientRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)

	// Create services
	clientValidator := service.NewClientValidator(clientRepo, logger)
	clientService := service.NewClientService(clientRepo, folderRepo, logger)
	folderService := service.NewFolderService(folderRepo, clientRepo, logger)
	batchService := service.NewBatchService(clientService, clientValidator, logger)

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	clientHandler := handler.NewClientHandler(clientService, clientValidator, logger)
	folderHandler := handler.NewFolderHandler(folderService, logger)
	batchHandler := handler.NewBatchHandler(batchService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", healthHandler.HealthCheck)

	// Client routes
	mux.HandleFunc("GET /api/clients", clientHandler.ListClients)
	mux.HandleFunc("POST /api/clients", clientHandler.CreateClient)
	mux.HandleFunc("GET /api/clients/{id}", clientHandler.GetClient)
	mux.HandleFunc("PATCH /api/clients/{id}", clientHandler.UpdateClient)
	mux.HandleFunc("DELETE /api/clients/{id}", clientHandler.DeleteClient)
	mux.HandleFunc("POST /api/clients/{id}/restore", clientHandler.RestoreClient)
	mux.HandleFunc("GET /api/clients/{id}/statistics", clientHandler.GetStatistics)
	mux.HandleFunc("GET /api/clients/{id}/folders", folderHandler.ListClientFolders)

	// Batch routes
	mux.HandleFunc("POST /api/clients/batch", batchHandler.BatchCreate)
	mux.HandleFunc("POST /api/clients/batch/update", batchHandler.BatchUpdate)
	mux.HandleFunc("POST /api/clients/batch/delete", batchHandler.BatchDelete)
	mux.HandleFunc("POST /api/clients/batch/tags", batchHandler.BatchUpdateTags)
	mux.HandleFunc("POST /api/clients/batch/status", batchHandler.BatchUpdateStatus)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.AuthMiddleware(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
