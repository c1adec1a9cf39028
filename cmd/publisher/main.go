package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jobobdev/place-reminder/module/core/domain"
	"github.com/jobobdev/place-reminder/module/core/geo"
)

const (
	startDistanceMeters = 300
	stepMeters          = 20
)

type positionMessage struct {
	DeviceID  string  `json:"device_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

func parseFloat(s, name string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s must be a number\n", name)
		os.Exit(1)
	}
	return v
}

// Simulates a phone walking up to a target, straight through it and out the
// other side, then back again.
func main() {
	if len(os.Args) < 4 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds> <lat> <lng>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}
	target := domain.Coordinate{
		Lat: parseFloat(os.Args[2], "lat"),
		Lng: parseFloat(os.Args[3], "lng"),
	}
	if err := domain.ValidateCoordinate(target); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	deviceID := fmt.Sprintf("phone-%04d", rand.Intn(10000))
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("place-reminder-" + deviceID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		slog.Error("mqtt connect", slog.Any("error", token.Error()))
		os.Exit(1)
	}
	defer client.Disconnect(250)

	bearing := rand.Float64() * 360
	start := geo.Offset(target, bearing, startDistanceMeters)
	heading := geo.Bearing(start, target)
	end := geo.Offset(target, heading, startDistanceMeters)

	slog.Info("walking toward target",
		slog.String("broker", broker),
		slog.String("device_id", deviceID),
		slog.Float64("lat", target.Lat),
		slog.Float64("lng", target.Lng),
		slog.Int("interval_seconds", intervalSec),
	)

	topic := fmt.Sprintf("/place-reminder/device/%s/position", deviceID)
	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	pos := start
	for range ticker.C {
		msg := positionMessage{
			DeviceID:  deviceID,
			Latitude:  pos.Lat,
			Longitude: pos.Lng,
			Accuracy:  5 + rand.Float64()*10,
			Timestamp: time.Now().Unix(),
		}

		payload, _ := json.Marshal(msg)
		token := client.Publish(topic, 1, false, payload)
		token.Wait()

		slog.Info("published",
			slog.String("topic", topic),
			slog.Float64("distance_meters", geo.DistanceMeters(pos, target)),
		)

		if geo.DistanceMeters(pos, end) < stepMeters {
			start, end = end, start
			pos = start
			continue
		}
		pos = geo.Offset(pos, geo.Bearing(pos, end), stepMeters)
	}
}
