/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Kurso billing engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse flags
  2. Configure logging
  3. Initialize SQLite store
  4. Create API handler with dependencies
  5. Start the delinquency sweep
  6. Start server with graceful shutdown

CONFIGURATION:
  Flags, each overridable by an environment variable (.env supported):
  -port            PORT            HTTP server port (default: 8080)
  -db              DB_PATH         SQLite database path (default: kurso.db)
                                   Use ":memory:" for in-memory database
  -log-level       LOG_LEVEL       logrus level (default: info)
  -sweep-interval  SWEEP_INTERVAL  delinquency sweep interval (default: 1h,
                                   0 disables the sweep)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the sweep, close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/kurso.db"

  # Run with in-memory database and verbose logs
  ./server -db=":memory:" -log-level=debug

SEE ALSO:
  - api/server.go: Router configuration
  - api/sweep.go: Background delinquency sweep
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/kurso/billing-engine/api"
	"github.com/kurso/billing-engine/store/sqlite"
)

func main() {
	// .env is optional; flags and real env vars win
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "kurso.db"), "SQLite database path")
	logLevel := flag.String("log-level", envStr("LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	sweepInterval := flag.Duration("sweep-interval", envDuration("SWEEP_INTERVAL", time.Hour), "delinquency sweep interval (0 disables)")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("unknown log level %q, using info", *logLevel)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler and router
	handler := api.NewHandler(store, store, log)
	router := api.NewRouter(handler)

	// Background delinquency sweep
	sweep := api.NewDelinquencySweep(store, handler.Debt, log)
	if *sweepInterval > 0 {
		sweep.Interval = *sweepInterval
	} else {
		sweep.Enabled = false
	}
	sweep.Start()
	defer sweep.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Server starting on http://localhost:%d", *port)
		log.Infof("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
