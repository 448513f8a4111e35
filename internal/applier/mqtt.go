/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package applier

import (
	"context"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"k8s.io/utils/clock"

	"github.com/ardikabs/autodark/internal/wellknown"
)

// ErrPublishTimeout is returned when the broker does not acknowledge a publish in time.
var ErrPublishTimeout = errors.New("mqtt publish timeout")

// Topic returns the topic carrying a user's theme state.
func Topic(user string) string {
	return fmt.Sprintf("%s/%s/theme", wellknown.AppName, user)
}

// publisher is the subset of paho.Client used to publish.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// MQTT publishes the theme state as a retained message so late subscribers
// (display agents, home automation) pick up the current value.
type MQTT struct {
	client publisher
	topic  string
	user   string
	clock  clock.PassiveClock
}

// MQTTConfig configures the broker connection.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// ConnectMQTT connects to the broker and returns the connected client.
func ConnectMQTT(cfg MQTTConfig) (paho.Client, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = wellknown.AppName
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(wellknown.MQTTConnectTimeout) {
		return nil, fmt.Errorf("connect to broker %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker %s: %w", cfg.Broker, err)
	}
	return client, nil
}

// NewMQTT creates an applier publishing user's theme on client.
func NewMQTT(client paho.Client, user string, clk clock.PassiveClock) *MQTT {
	return newMQTT(client, user, clk)
}

func newMQTT(client publisher, user string, clk clock.PassiveClock) *MQTT {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &MQTT{client: client, topic: Topic(user), user: user, clock: clk}
}

// Apply implements Applier.
func (m *MQTT) Apply(ctx context.Context, activated bool) error {
	payload, err := FormatPayload(m.user, activated, m.clock.Now())
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 1, retained
	token := m.client.Publish(m.topic, 1, true, payload)

	timeout := wellknown.MQTTPublishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if !token.WaitTimeout(timeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
