package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/jobobdev/place-reminder/config"
	"github.com/jobobdev/place-reminder/module/core"
	"github.com/jobobdev/place-reminder/module/core/domain"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.NewPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg, logger)
	if err != nil {
		return err
	}
	defer mqttClient.Disconnect(250)

	coreModule, err := core.Build(db, amqpConn, mqttClient, core.Options{
		RadiusMeters:    cfg.ProximityRadiusMeters,
		AlertPolicy:     domain.AlertPolicy(cfg.AlertPolicy),
		PositionTopic:   cfg.MQTTPositionTopic,
		BreakerFailures: cfg.NotifyBreakerFailures,
		RefreshInterval: cfg.PlacesRefreshInterval,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	if err := coreModule.Init(ctx); err != nil {
		return err
	}

	r := gin.New()
	r.Use(gin.Recovery())

	coreModule.RegisterRoutes(&r.RouterGroup)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return coreModule.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
