package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shinebook/shinebook/libs/config"
	"github.com/shinebook/shinebook/libs/db"
	"github.com/shinebook/shinebook/libs/httpx"
	"github.com/shinebook/shinebook/libs/kafkax"
	otelx "github.com/shinebook/shinebook/libs/otel"
	"github.com/shinebook/shinebook/libs/runtime"
	"github.com/shinebook/shinebook/services/booking-service/internal/consumer"
	"github.com/shinebook/shinebook/services/booking-service/internal/handlers"
	"github.com/shinebook/shinebook/services/booking-service/internal/hours"
	"github.com/shinebook/shinebook/services/booking-service/internal/inbox"
	"github.com/shinebook/shinebook/services/booking-service/internal/outbox"
	"github.com/shinebook/shinebook/services/booking-service/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8081")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	repo := storage.NewAppointmentRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	fallback := hours.DefaultConfig()
	var hoursProvider hours.Provider = hours.NewStaticProvider(fallback)
	if businessURL := config.String("BUSINESS_SERVICE_URL", ""); businessURL != "" {
		hoursProvider = hours.NewClient(businessURL, fallback)
	} else {
		logger.Warn("BUSINESS_SERVICE_URL not set; using static availability config")
	}

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	if brokers := config.String("KAFKA_BROKERS", ""); brokers != "" {
		paymentConsumer := consumer.New(logger, inbox.NewRepository(pool), repo, consumer.Config{
			Brokers: brokers,
			GroupID: config.String("KAFKA_GROUP_ID", "booking-service"),
		})
		go paymentConsumer.Run(ctx)
	}

	bookingHandler := handlers.NewBookingHandler(repo, outboxRepo, hoursProvider, logger)

	mux := runtime.NewBaseMux(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)

	publicLimit := publicRateLimit(logger)
	mux.Handle("/api/v1/public/slots", httpx.Chain(http.HandlerFunc(bookingHandler.Slots), publicLimit))
	mux.Handle("/api/v1/public/book", httpx.Chain(http.HandlerFunc(bookingHandler.Create), publicLimit))
	mux.HandleFunc("/api/v1/appointments", bookingHandler.List)
	mux.HandleFunc("/api/v1/appointments/get", bookingHandler.Get)
	mux.HandleFunc("/api/v1/appointments/reschedule", bookingHandler.Reschedule)
	mux.HandleFunc("/api/v1/appointments/cancel", bookingHandler.Cancel)
	mux.HandleFunc("/api/v1/appointments/status", bookingHandler.UpdateStatus)
	mux.HandleFunc("/api/v1/appointments/delete", bookingHandler.Delete)

	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: parseList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Request-Id", "X-Idempotency-Key"},
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func parseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// publicRateLimit guards the unauthenticated booking endpoints. Redis backs
// the counter when configured so limits hold across replicas; a single
// instance falls back to an in-process window.
func publicRateLimit(logger *slog.Logger) httpx.Middleware {
	limit := config.Int("RATE_LIMIT_REQUESTS", 30)
	window := config.Duration("RATE_LIMIT_WINDOW", time.Minute)

	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		return httpx.NewRedisRateLimiter(rdb, limit, window, "booking:public").
			Middleware(logger, true)
	}
	logger.Warn("REDIS_ADDR not set; using in-memory rate limiter")
	return httpx.NewRateLimiter(limit, window).Middleware()
}
