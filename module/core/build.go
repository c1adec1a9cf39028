package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"

	"github.com/jobobdev/place-reminder/module/core/domain"
	handler "github.com/jobobdev/place-reminder/module/core/internal/handler/http"
	"github.com/jobobdev/place-reminder/module/core/internal/handler/subscriber"
	"github.com/jobobdev/place-reminder/module/core/internal/repository/database/postgres"
	"github.com/jobobdev/place-reminder/module/core/internal/repository/publisher"
	"github.com/jobobdev/place-reminder/module/core/internal/repository/publisher/rabbitmq"
	"github.com/jobobdev/place-reminder/module/core/internal/repository/publisher/websocket"
	"github.com/jobobdev/place-reminder/module/core/service"
)

type Options struct {
	RadiusMeters    float64
	AlertPolicy     domain.AlertPolicy
	PositionTopic   string
	BreakerFailures uint32
	RefreshInterval time.Duration
	Logger          *slog.Logger
}

type Module struct {
	PlaceSvc     *service.PlaceService
	ProximitySvc *service.ProximityService

	placeRepo        *postgres.PlaceRepo
	notificationPub  *rabbitmq.NotificationPublisher
	hub              *websocket.Hub
	placeHandler     *handler.PlaceHandler
	proximityHandler *handler.ProximityHandler
	healthHandler    *handler.HealthHandler
	subscriber       *subscriber.PositionSubscriber
	refreshInterval  time.Duration
	logger           *slog.Logger
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, opts Options) (*Module, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = time.Minute
	}

	placeRepo := postgres.NewPlaceRepo(db)

	notificationPub, err := rabbitmq.NewNotificationPublisher(amqpConn, opts.BreakerFailures)
	if err != nil {
		return nil, fmt.Errorf("notification publisher: %w", err)
	}
	hub := websocket.NewHub(logger)

	placeSvc := service.NewPlaceService(placeRepo)
	evaluator := service.NewEvaluator(opts.RadiusMeters, opts.AlertPolicy)
	proximitySvc := service.NewProximityService(
		evaluator,
		publisher.Fanout{notificationPub, hub},
		placeSvc,
		logger,
	)

	return &Module{
		PlaceSvc:         placeSvc,
		ProximitySvc:     proximitySvc,
		placeRepo:        placeRepo,
		notificationPub:  notificationPub,
		hub:              hub,
		placeHandler:     handler.NewPlaceHandler(placeSvc, proximitySvc, logger),
		proximityHandler: handler.NewProximityHandler(proximitySvc),
		healthHandler:    handler.NewHealthHandler(proximitySvc, hub, dependencyChecks(db, amqpConn, mqttClient)...),
		subscriber:       subscriber.NewPositionSubscriber(mqttClient, opts.PositionTopic, logger),
		refreshInterval:  opts.RefreshInterval,
		logger:           logger,
	}, nil
}

func dependencyChecks(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client) []handler.DependencyCheck {
	return []handler.DependencyCheck{
		{Name: "postgres", Check: db.PingContext},
		{Name: "rabbitmq", Check: func(context.Context) error {
			if amqpConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}},
		{Name: "mqtt", Check: func(context.Context) error {
			if !mqttClient.IsConnectionOpen() {
				return errors.New("not connected")
			}
			return nil
		}},
	}
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.placeHandler.Register(r)
	m.proximityHandler.Register(r)
	m.healthHandler.Register(r)
	r.GET("/ws/notifications", gin.WrapF(m.hub.ServeWS))
}

// Init creates the places table if needed and loads the saved places into
// the proximity session.
func (m *Module) Init(ctx context.Context) error {
	if err := m.placeRepo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	if err := m.ProximitySvc.RefreshPlaces(ctx); err != nil {
		return fmt.Errorf("load places: %w", err)
	}
	m.logger.Info("proximity session ready", slog.Float64("radius_meters", m.ProximitySvc.Radius()))
	return nil
}

// Run subscribes to device positions and drives the proximity session until
// ctx is cancelled. The subscription and the notification channel are
// released on the way out.
func (m *Module) Run(ctx context.Context) error {
	defer func() {
		if err := m.notificationPub.Close(); err != nil {
			m.logger.Warn("close notification publisher", slog.Any("error", err))
		}
	}()

	if err := m.subscriber.Start(); err != nil {
		return fmt.Errorf("start subscriber: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m.hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		return m.ProximitySvc.Run(ctx, m.subscriber.Updates())
	})
	g.Go(func() error {
		m.ProximitySvc.RunRefresher(ctx, m.refreshInterval)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		if err := m.subscriber.Stop(); err != nil {
			m.logger.Warn("mqtt unsubscribe failed", slog.Any("error", err))
		}
		return nil
	})
	return g.Wait()
}
