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

	"github.com/Timtroll/llm/internal/adapter/search"
	"github.com/Timtroll/llm/internal/auth"
	"github.com/Timtroll/llm/internal/config"
	"github.com/Timtroll/llm/internal/history"
	"github.com/Timtroll/llm/internal/llama"
	"github.com/Timtroll/llm/internal/policy"
	"github.com/Timtroll/llm/internal/service"
	"github.com/Timtroll/llm/internal/store"
	transport "github.com/Timtroll/llm/internal/transport/http"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting llm service...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Store driver: %s", cfg.StoreDriver)
	log.Printf("Model dir: %s", cfg.ModelDir)

	// Initialize store
	st, err := store.New(cfg.StoreDriver, cfg.RedisURL, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize collaborators
	hist := history.NewManager(st, cfg.HistoryTTL)
	runner := llama.NewRunner()
	searcher := search.NewClient(cfg.SearchURL, cfg.SearchEnabled)
	tokens := auth.NewManager(cfg.SecretKey, cfg.TokenExpiry)

	// Initialize service
	svc := service.New(st, hist, runner, searcher, tokens, policyEngine, cfg)

	// Warm the model directory so the first request does not pay for the scan
	if models, err := svc.ListModels(ctx); err != nil {
		log.Printf("Model directory scan failed: %v", err)
	} else {
		log.Printf("Found %d model(s) in %s", len(models), cfg.ModelDir)
	}

	// Create HTTP server
	server := transport.NewServer(svc, tokens, st)

	// Start server
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

	log.Println("Shutting down llm service...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Service stopped")
}
