package main

import (
	"context"
	"errors"
	stdhttp "net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/boostgo/customercare/internal/care_service/adapters/orderapi"
	"github.com/boostgo/customercare/internal/care_service/adapters/smsgateway"
	"github.com/boostgo/customercare/internal/care_service/adapters/telegram"
	"github.com/boostgo/customercare/internal/care_service/app"
	"github.com/boostgo/customercare/internal/care_service/repository/postgres"
	transporthttp "github.com/boostgo/customercare/internal/care_service/transport/http"
	"github.com/boostgo/customercare/internal/platform/config"
	"github.com/boostgo/customercare/internal/platform/database"
	"github.com/boostgo/customercare/internal/platform/logger"
	"github.com/boostgo/customercare/internal/platform/messagebroker"
)

const (
	serviceName     = "care_service"
	shutdownTimeout = 10 * time.Second
)

func main() {
	mainCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(serviceName)
	if err != nil {
		// Logger is not up yet.
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel).With("service", serviceName)
	log.Info("starting service")

	dbPool, err := database.NewDBPool(mainCtx, cfg.PostgresDSN)
	if err != nil {
		log.Error("failed to initialize database pool", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	log.Info("database pool initialized")

	natsClient, err := messagebroker.NewNATSClient(cfg.NATSUrl, serviceName, log)
	if err != nil {
		log.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()
	log.Info("NATS connection initialized")

	messageRepo := postgres.NewPgMessageRepository(dbPool, log)
	settingsRepo := postgres.NewPgSettingsRepository(dbPool, log)

	orderClient := orderapi.NewClient(log, cfg.OrderAPIBaseURL, cfg.OrderAPIDevice, cfg.OrderAPIToken, nil)
	gateway := smsgateway.NewHTTPGateway(log, cfg.GatewayBaseURL, cfg.GatewayAuthToken, cfg.GatewayCallbackURL, nil)
	notifier := telegram.NewNotifier(log, settingsRepo, "")
	alerter := app.NewLogAlerter(log)

	dispatcher := app.NewDispatcher(messageRepo, settingsRepo, gateway, log)
	poller := app.NewPoller(orderClient, dispatcher, app.PollerConfig{
		CycleTimeout: cfg.PollCycleTimeout,
		CallTimeout:  cfg.PollCallTimeout,
		BackoffMin:   cfg.PollBackoffMin,
		BackoffMax:   cfg.PollBackoffMax,
	}, log)

	resultProcessor := app.NewResultProcessor(
		messageRepo, orderClient, gateway, notifier, alerter,
		cfg.LowBalanceThreshold, cfg.USSDBalanceCode, log,
	)
	resultConsumer := app.NewResultConsumer(natsClient, resultProcessor, log)

	replyProcessor := app.NewReplyProcessor(messageRepo, notifier, log)
	replyConsumer := app.NewReplyConsumer(natsClient, replyProcessor, log)

	validate := validator.New()
	callbackHandler := transporthttp.NewCallbackHandler(natsClient, log, validate)
	adminHandler := transporthttp.NewAdminHandler(messageRepo, settingsRepo, poller, log, validate)
	router := transporthttp.NewRouter(callbackHandler, adminHandler)

	httpServer := &stdhttp.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.PollAutostart {
		poller.Start()
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		log.Info("HTTP server listening", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return resultConsumer.StartConsumingSent(groupCtx)
	})
	g.Go(func() error {
		return resultConsumer.StartConsumingDelivered(groupCtx)
	})
	g.Go(func() error {
		return replyConsumer.StartConsuming(groupCtx)
	})

	g.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received")

		poller.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("service exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("service stopped")
}
