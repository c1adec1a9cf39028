package config

import (
	"testing"
	"time"
)

func TestAMQPConfig_UsesOwnConnectionName(t *testing.T) {
	cfg := &Config{AMQPConnName: "place-reminder-notifier", MQTTClientID: "place-reminder-server"}

	c := amqpConfig(cfg)

	if got := c.Properties["connection_name"]; got != "place-reminder-notifier" {
		t.Errorf("expected connection_name place-reminder-notifier, got %v", got)
	}
	if c.Heartbeat != 10*time.Second {
		t.Errorf("expected 10s heartbeat, got %v", c.Heartbeat)
	}
}
