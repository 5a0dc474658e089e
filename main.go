package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/imageone/agentpress/internal/adapter/foundry"
	"github.com/imageone/agentpress/internal/config"
	store "github.com/imageone/agentpress/internal/repository"
	"github.com/imageone/agentpress/internal/service"
	handler "github.com/imageone/agentpress/internal/transport/http"
	"github.com/imageone/agentpress/internal/transport/ws"
	"github.com/imageone/agentpress/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Starting agentpress...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Model: %s", cfg.ModelDeploymentName)
	log.Printf("Max iterations: %d", cfg.MaxIterations)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize agent runner
	runner := foundry.NewRunner(cfg.FoundryEndpoint, cfg.FoundryAPIKey, cfg.AgentTimeout)

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize trace stream hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize service
	svc := service.New(db, runner, policyEngine, hub, cfg)

	// Create HTTP server
	server := handler.NewServer(svc, hub, cfg.CORSOrigins)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down agentpress...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("agentpress stopped")
}
