/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the day-ledger server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env / environment variables)
  2. Initialize SQLite store
  3. Load the product catalog
  4. Wire the daybook service and API handler
  5. Start server with graceful shutdown

CONFIGURATION (environment or .env):
  APP_PORT              HTTP server port (default: 8080)
  DB_PATH               SQLite database path (default: ./data/poscore.db)
                        Use ":memory:" for in-memory database
  CATALOG_PATH          Product catalog JSON (default: ./catalog.json)
  CORS_ALLOWED_ORIGINS  Frontend origins allowed to call the API

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - config/config.go: Configuration loading
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/braseria/poscore/api"
	"github.com/braseria/poscore/config"
	"github.com/braseria/poscore/daybook"
	"github.com/braseria/poscore/store/sqlite"
)

func main() {
	cfg := config.Load()

	// Initialize store
	store, err := sqlite.New(cfg.App.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Load product catalog
	catalog, err := daybook.LoadCatalogFile(cfg.App.CatalogPath)
	if err != nil {
		log.Printf("Warning: failed to load catalog from %s: %v", cfg.App.CatalogPath, err)
		catalog = daybook.StaticCatalog{}
	}

	// Wire the daybook service and API handler
	day := daybook.NewDaybook(store, catalog, daybook.NewMemoryTableBoard())
	handler := api.NewHandler(day)
	router := api.NewRouter(handler, cfg.CORS.AllowedOrigins)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.App.Port)
		log.Printf("API available at http://localhost:%s/api", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
