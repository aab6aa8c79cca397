package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tableside/internal/backend"
	"tableside/internal/cart"
	"tableside/internal/checkout"
	"tableside/internal/config"
	"tableside/internal/handler"
	"tableside/internal/router"
	"tableside/internal/selection"
	"tableside/internal/session"
	"tableside/internal/storage"

	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting tableside ordering API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cart and session state live in Redis when configured, otherwise in
	// process memory.
	var kv storage.KV
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		kv = storage.NewRedis(client, cfg.Cart.Expiration())
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("using redis storage")
	} else {
		kv = storage.NewMemory()
		logger.Warn().Msg("REDIS_ADDR not set, carts will not survive a restart")
	}

	// Backend API client
	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, cfg.Backend.Timeout(), logger)

	// Core stores and services
	cartStore := cart.NewStore(kv, cfg.Cart.Expiration(), logger)
	sessions := session.NewStore(kv, logger)
	composer := checkout.NewComposer(cartStore, sessions, backendClient, logger)
	verifier := checkout.NewCouponVerifier(backendClient, logger)

	// HTTP handlers
	catalogHandler := handler.NewCatalogHandler(backendClient, logger)
	cartHandler := handler.NewCartHandler(cartStore, backendClient, selection.DefaultPolicy(), logger)
	checkoutHandler := handler.NewCheckoutHandler(composer, verifier, cartStore, sessions, logger)
	sessionHandler := handler.NewSessionHandler(sessions, logger)

	// Router
	mux := router.New(catalogHandler, cartHandler, checkoutHandler, sessionHandler, cfg.Auth.APIKey, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
