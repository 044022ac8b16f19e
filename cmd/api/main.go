package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cassiomorais/checkout-bridge/internal/bootstrap"
	"github.com/cassiomorais/checkout-bridge/internal/controller"
	"github.com/cassiomorais/checkout-bridge/internal/gateway"
	"github.com/cassiomorais/checkout-bridge/internal/repository/postgres"
	"github.com/cassiomorais/checkout-bridge/internal/service"
	"github.com/cassiomorais/checkout-bridge/internal/webhook"
	"github.com/cassiomorais/checkout-bridge/pkg/retry"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, "checkout-bridge-api", "checkout")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	mappingRepo := postgres.NewMappingRepository(app.Pool, app.Logger)
	txInfoRepo := postgres.NewTransactionInfoRepository(app.Pool)
	outboxRepo := postgres.NewOutboxRepository(app.Pool)
	idempotencyRepo := postgres.NewIdempotencyRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Remote gateway ---
	retryCfg := retry.DefaultConfig()
	if app.Config.Gateway.MaxRetries > 0 {
		retryCfg.MaxAttempts = app.Config.Gateway.MaxRetries
	}
	if app.Config.Gateway.RetryDelay > 0 {
		retryCfg.InitialDelay = app.Config.Gateway.RetryDelay
	}
	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:        app.Config.Gateway.BaseURL,
		UserID:         app.Config.Gateway.UserID,
		APIKey:         app.Config.Gateway.APIKey,
		RequestTimeout: app.Config.Gateway.RequestTimeout,
		Retry:          retryCfg,
		Metrics:        app.Metrics,
	}, app.Logger)
	transactionGateway := gateway.NewTransactionService(gatewayClient)

	// --- Services ---
	assembler := service.NewAssembler(
		service.NewDefaultLineItemCollector(),
		app.Config.Checkout.SuccessURL,
		app.Config.Checkout.FailedURL,
	)
	checkoutService := service.NewTransactionService(
		transactionGateway,
		mappingRepo,
		txInfoRepo,
		outboxRepo,
		txManager,
		assembler,
		app.Config.Checkout,
		app.Metrics,
		app.Logger,
	)

	// --- Webhook dispatch ---
	dispatcher := webhook.NewDispatcher(app.Metrics, app.Logger)
	dispatcher.Register(webhook.ListenerTransaction, webhook.NewTransactionHandler(
		transactionGateway,
		txInfoRepo,
		outboxRepo,
		txManager,
		app.Logger,
	))

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:             app.Pool,
		RedisClient:      app.Redis,
		CheckoutService:  checkoutService,
		Dispatcher:       dispatcher,
		IdempotencyRepo:  idempotencyRepo,
		Metrics:          app.Metrics,
		CORSConfig:       app.Config.Server.CORS,
		WebhookRateLimit: app.Config.Checkout.WebhookRateLimit,
		Logger:           app.Logger,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
	}

	go func() {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	app.Logger.Info().Msg("Server exited")
}
