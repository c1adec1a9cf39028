package subscriber

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-playground/validator/v10"

	"github.com/jobobdev/place-reminder/module/core/domain"
)

const (
	DefaultTopic      = "/place-reminder/device/+/position"
	defaultBufferSize = 32
)

type positionMessage struct {
	DeviceID  string  `json:"device_id" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Accuracy  float64 `json:"accuracy" validate:"gte=0"`
	Timestamp int64   `json:"timestamp" validate:"gt=0"`
}

// PositionSubscriber turns device fixes published over MQTT into a stream of
// PositionUpdates for the proximity session.
type PositionSubscriber struct {
	client   mqtt.Client
	topic    string
	validate *validator.Validate
	logger   *slog.Logger

	mu      sync.Mutex
	closed  bool
	updates chan domain.PositionUpdate
}

func NewPositionSubscriber(client mqtt.Client, topic string, logger *slog.Logger) *PositionSubscriber {
	if topic == "" {
		topic = DefaultTopic
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PositionSubscriber{
		client:   client,
		topic:    topic,
		validate: validator.New(),
		logger:   logger,
		updates:  make(chan domain.PositionUpdate, defaultBufferSize),
	}
}

func (s *PositionSubscriber) Updates() <-chan domain.PositionUpdate {
	return s.updates
}

func (s *PositionSubscriber) Start() error {
	token := s.client.Subscribe(s.topic, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

// Stop unsubscribes and closes the updates channel. Safe to call more than once.
func (s *PositionSubscriber) Stop() error {
	var err error
	if s.client != nil {
		token := s.client.Unsubscribe(s.topic)
		token.Wait()
		err = token.Error()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.updates)
	}
	return err
}

func (s *PositionSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw positionMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		s.logger.Warn("invalid position message", slog.String("topic", msg.Topic()), slog.Any("error", err))
		return
	}

	if err := s.validate.Struct(&raw); err != nil {
		s.logger.Warn("position validation failed", slog.String("topic", msg.Topic()), slog.Any("error", err))
		return
	}

	update := domain.PositionUpdate{
		Position:   &domain.Coordinate{Lat: raw.Latitude, Lng: raw.Longitude},
		ReceivedAt: time.Unix(raw.Timestamp, 0),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.updates <- update:
	default:
		s.logger.Warn("position buffer full, dropping fix", slog.String("device_id", raw.DeviceID))
	}
}
