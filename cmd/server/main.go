package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pinggolf/dockplanner/internal/api"
	"github.com/pinggolf/dockplanner/internal/audit"
	"github.com/pinggolf/dockplanner/internal/config"
	"github.com/pinggolf/dockplanner/internal/db"
	"github.com/pinggolf/dockplanner/internal/queue"
	"github.com/pinggolf/dockplanner/internal/solver"
	"github.com/pinggolf/dockplanner/internal/solver/exhaustive"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := db.MigrateCommand(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatalf("Migrations failed: %v", err)
		}
		return
	}

	database, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	database.SetMaxOpenConns(cfg.DatabaseMaxConnections)
	database.SetMaxIdleConns(cfg.DatabaseMaxIdleConnections)
	database.SetConnMaxLifetime(cfg.DatabaseConnectionLifetime)

	if err := database.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Database connection established")

	if cfg.RunMigrations {
		if err := db.Migrate(database, cfg.MigrationsPath); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("Skipping migrations (RUN_MIGRATIONS=false)")
	}

	auditLog := audit.New(database)

	natsManager, err := queue.NewManager(cfg.NATSURL, cfg.NATSMaxReconnects, cfg.NATSReconnectWait)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsManager.Close()
	log.Printf("NATS connection established (%s)", cfg.NATSURL)

	backend := newBackend(cfg)

	server := api.NewServer(cfg, natsManager, auditLog, backend)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.AppPort),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %d (environment: %s, solver: %s)", cfg.AppPort, cfg.AppEnv, cfg.SolverBackend)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

// newBackend picks the MILP backend stage-1 solves against. "golp" drives
// the lp_solve library through the github.com/draffensperger/golp cgo
// bindings; the
// default "exhaustive" backend is a dependency-free fallback suited to the
// assignment-shaped problems stage-1 produces (internal/solver/exhaustive).
func newBackend(cfg *config.Config) solver.Backend {
	if cfg.SolverBackend == "golp" {
		return solver.NewGolpBackend()
	}
	b := exhaustive.New()
	b.MaxBinaryVars = cfg.SolverMaxBinaryVars
	return b
}
