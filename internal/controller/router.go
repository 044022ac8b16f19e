package controller

import (
	"time"

	"github.com/cassiomorais/checkout-bridge/internal/config"
	"github.com/cassiomorais/checkout-bridge/internal/infrastructure/observability"
	customMW "github.com/cassiomorais/checkout-bridge/internal/middleware"
	"github.com/cassiomorais/checkout-bridge/internal/repository/postgres"
	"github.com/cassiomorais/checkout-bridge/internal/service"
	"github.com/cassiomorais/checkout-bridge/internal/webhook"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type RouterDeps struct {
	Pool             *pgxpool.Pool
	RedisClient      *redis.Client
	CheckoutService  *service.TransactionService
	Dispatcher       *webhook.Dispatcher
	IdempotencyRepo  *postgres.IdempotencyRepository
	Metrics          *observability.Metrics
	CORSConfig       config.CORSConfig
	WebhookRateLimit int
	Logger           zerolog.Logger
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	checkoutH := NewCheckoutController(deps.CheckoutService)
	webhookH := NewWebhookController(deps.Dispatcher, deps.Logger)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	webhookLimit := deps.WebhookRateLimit
	if webhookLimit <= 0 {
		webhookLimit = 300
	}
	r.With(customMW.RateLimit(webhookLimit)).Post("/webhook", webhookH.Receive)

	r.Route("/api/v1/checkout", func(r chi.Router) {
		// Idempotency middleware for mutating endpoints.
		idempotencyMW := customMW.Idempotency(deps.IdempotencyRepo)

		r.With(idempotencyMW).Post("/orders/{orderId}/transaction", checkoutH.OrderTransaction)
		r.With(idempotencyMW).Post("/orders/{orderId}/line-items", checkoutH.OrderLineItems)
		r.Post("/orders/{orderId}/payment-methods", checkoutH.OrderPaymentMethods)

		r.With(idempotencyMW).Post("/baskets/transaction", checkoutH.BasketTransaction)
		r.Post("/baskets/payment-methods", checkoutH.BasketPaymentMethods)
		r.Post("/baskets/javascript-url", checkoutH.BasketJavaScriptURL)
	})

	return r
}
