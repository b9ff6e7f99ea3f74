package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"humanos.dev/coach/internal/api"
	"humanos.dev/coach/internal/config"
	"humanos.dev/coach/internal/core"
	"humanos.dev/coach/internal/gateway"
	"humanos.dev/coach/internal/store"
)

func main() {
	cfg := config.Load()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if cfg.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	completer, err := gateway.New(gateway.Config{
		Provider:     cfg.Provider,
		Timeout:      time.Duration(cfg.GatewayTimeoutSeconds) * time.Second,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		OpenAIModel:  cfg.OpenAIModel,
		OpenAIURL:    cfg.OpenAIURL,
		HFAPIKey:     cfg.HFAPIKey,
		HFModel:      cfg.HFModel,
		HFURL:        cfg.HFURL,
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
	})
	if err != nil {
		log.Fatalf("Failed to initialize completion gateway: %v", err)
	}
	if closer, ok := completer.(io.Closer); ok {
		defer closer.Close()
	}
	if _, offline := completer.(gateway.Offline); offline {
		log.Println("No completion credential configured, running in offline demo mode")
	}

	coachService := core.NewCoachService(dbStore, completer, cfg.MaxOutputTokens)

	apiHandler := api.NewAPIHandler(coachService)
	router := api.NewRouter(apiHandler)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // completion calls can take time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
