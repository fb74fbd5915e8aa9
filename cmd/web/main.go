package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/greengrocer-web/api/controllers"
	"github.com/angelmondragon/greengrocer-web/api/routes"
	"github.com/angelmondragon/greengrocer-web/internal/auth"
	"github.com/angelmondragon/greengrocer-web/internal/backend"
	"github.com/angelmondragon/greengrocer-web/internal/cart"
	"github.com/angelmondragon/greengrocer-web/internal/chat"
	"github.com/angelmondragon/greengrocer-web/internal/checkout"
	"github.com/angelmondragon/greengrocer-web/internal/clientstate"
	"github.com/angelmondragon/greengrocer-web/internal/dashboard"
	"github.com/angelmondragon/greengrocer-web/internal/events"
	"github.com/angelmondragon/greengrocer-web/internal/orders"
	"github.com/angelmondragon/greengrocer-web/internal/payments"
	"github.com/angelmondragon/greengrocer-web/internal/products"
	"github.com/angelmondragon/greengrocer-web/internal/reviews"
	"github.com/angelmondragon/greengrocer-web/internal/users"
	"github.com/angelmondragon/greengrocer-web/pkg/config"
	"github.com/angelmondragon/greengrocer-web/pkg/db"
	"github.com/angelmondragon/greengrocer-web/pkg/env"
	"github.com/angelmondragon/greengrocer-web/pkg/logger"
	"github.com/angelmondragon/greengrocer-web/pkg/metrics"
	"github.com/angelmondragon/greengrocer-web/pkg/migrate"
	"github.com/angelmondragon/greengrocer-web/pkg/pubsub"
	"github.com/angelmondragon/greengrocer-web/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "web"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "web",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "web server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i].Close())
		}
	}()

	health := map[string]controllers.Pinger{}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	closers = append(closers, redisClient)
	health["redis"] = redisClient

	var state clientstate.Store
	if cfg.State.UsesSQL() {
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return err
		}
		closers = append(closers, dbClient)
		health["db"] = dbClient

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			return err
		}
		if state, err = clientstate.NewSQLStore(dbClient); err != nil {
			return err
		}
	} else {
		if state, err = clientstate.NewRedisStore(redisClient); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefront(registry)

	var publisher events.Publisher = events.Noop{}
	if cfg.PubSub.Enabled {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return err
		}
		closers = append(closers, psClient)
		health["pubsub"] = psClient
		if publisher, err = events.NewPubSubPublisher(psClient.StorefrontPublisher()); err != nil {
			return err
		}
	}
	recorder := events.NewRecorder(publisher, logg)

	api, err := backend.NewClient(cfg.Backend.APIURL,
		backend.WithName("api"),
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithTokenSource(auth.TokenFromContext),
		backend.WithUnauthorizedHandler(auth.HandleUnauthorized),
		backend.WithObserver(storefrontMetrics),
		backend.WithLogger(logg),
	)
	if err != nil {
		return err
	}
	// The chatbot's 401s surface as transcript messages, not a global logout.
	chatbot, err := backend.NewClient(cfg.Backend.ChatbotURL,
		backend.WithName("chatbot"),
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithTokenSource(auth.TokenFromContext),
		backend.WithObserver(storefrontMetrics),
		backend.WithLogger(logg),
	)
	if err != nil {
		return err
	}

	deps := routes.Deps{
		Config:      cfg,
		Logger:      logg,
		State:       state,
		Locker:      cart.NewLocker(),
		RateLimiter: redisClient,
		Health:      health,
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	if deps.Auth, err = auth.NewService(api); err != nil {
		return err
	}
	if deps.Products, err = products.NewService(api); err != nil {
		return err
	}
	if deps.Orders, err = orders.NewService(api); err != nil {
		return err
	}
	if deps.Reviews, err = reviews.NewService(api); err != nil {
		return err
	}
	if deps.Users, err = users.NewService(api); err != nil {
		return err
	}
	if deps.Dashboard, err = dashboard.NewService(api); err != nil {
		return err
	}
	paymentService, err := payments.NewService(api)
	if err != nil {
		return err
	}
	deps.Checkout, err = checkout.NewService(checkout.ServiceParams{
		Orders:               deps.Orders,
		Payments:             paymentService,
		Events:               recorder,
		Metrics:              storefrontMetrics,
		Logger:               logg,
		RestoreCartOnFailure: cfg.Checkout.RestoreCartOnFailure,
		StatusRetries:        cfg.Checkout.StatusMaxRetries,
		StatusRetryDelay:     cfg.Checkout.StatusRetryDelay,
	})
	if err != nil {
		return err
	}
	deps.Chat, err = chat.NewService(chat.ServiceParams{
		API:     chatbot,
		Metrics: storefrontMetrics,
		Logger:  logg,
		Locker:  deps.Locker,
	})
	if err != nil {
		return err
	}

	port := env.First(cfg.App.Port, "PORT")
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":           cfg.App.Env,
		"addr":          server.Addr,
		"state_backend": cfg.State.Backend,
	})
	logg.Info(logCtx, "starting web server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
