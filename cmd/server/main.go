package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/monikerhq/moniker/config"
	"github.com/monikerhq/moniker/internal/email"
	"github.com/monikerhq/moniker/internal/event"
	"github.com/monikerhq/moniker/internal/health"
	"github.com/monikerhq/moniker/internal/infrastructure/postgres"
	"github.com/monikerhq/moniker/internal/janitor"
	ctxlog "github.com/monikerhq/moniker/internal/log"
	"github.com/monikerhq/moniker/internal/metrics"
	"github.com/monikerhq/moniker/internal/session"
	httptransport "github.com/monikerhq/moniker/internal/transport/http"
	"github.com/monikerhq/moniker/internal/transport/http/handler"
	"github.com/monikerhq/moniker/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	tokenRepo := postgres.NewTokenRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	bus := event.NewBus(logger)
	metrics.ObserveEvents(bus)
	mailer := email.NewMailer(email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger), cfg.LinkBaseURL)
	mailer.Register(bus)

	// Usecases
	authUsecase := usecase.NewAuthUsecase(userRepo, tokenRepo, bus, cfg.LoginTokenTTL)
	userUsecase := usecase.NewUserUsecase(userRepo, bus)
	registerUsecase := usecase.NewRegisterUsecase(userRepo, tokenRepo, bus, cfg.ActivationTokenTTL)

	// Sessions
	sessionManager := session.NewManager(sessionRepo, []byte(cfg.SessionSecret), cfg.SessionTTL)
	sessionWriter := handler.NewSessionWriter(sessionManager, cfg.Env != "local", logger)

	handlers := httptransport.Handlers{
		Home:     handler.NewHomeHandler(sessionWriter),
		Login:    handler.NewLoginHandler(authUsecase, sessionWriter, logger),
		Register: handler.NewRegisterHandler(registerUsecase, sessionWriter, logger),
		User:     handler.NewUserHandler(userUsecase, sessionWriter, logger),
	}

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, sessionManager, userRepo, handlers, "web/templates/*.html"),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	// Retention for login tokens is the activation TTL: anything older
	// than the longest-lived token kind is garbage either way.
	jan, err := janitor.New(tokenRepo, sessionRepo, cfg.CleanupCron, cfg.ActivationTokenTTL, logger)
	if err != nil {
		stop()
		log.Fatalf("janitor: %v", err)
	}
	go jan.Start(ctx)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
