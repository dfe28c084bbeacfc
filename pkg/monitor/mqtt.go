package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// MQTTOptions configures the broker connection.
type MQTTOptions struct {
	Broker    string
	Username  string
	Password  string
	TopicRoot string
}

// statusMessage is published, retained, under "<root>/status".
type statusMessage struct {
	Printer             string    `json:"printer"`
	UID                 string    `json:"uid"`
	Connected           bool      `json:"connected"`
	Message             string    `json:"message"`
	Ready               bool      `json:"ready"`
	Errors              []string  `json:"errors"`
	Error               string    `json:"error,omitempty"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func newStatusMessage(snap Snapshot) statusMessage {
	msg := statusMessage{
		Printer:             snap.Printer.Name,
		UID:                 snap.Printer.UID,
		Connected:           snap.Connection.IsConnected,
		Message:             snap.Connection.Message,
		Ready:               snap.Ready(),
		Errors:              snap.Status.Errors,
		ConsecutiveFailures: snap.ConsecutiveFailures,
		UpdatedAt:           snap.LastUpdated,
	}
	if msg.Errors == nil {
		msg.Errors = []string{}
	}
	if snap.LastError != nil {
		msg.Error = snap.LastError.Error()
	}
	return msg
}

// MQTTPublisher publishes snapshots to an MQTT broker.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
	logger log.FieldLogger
}

// NewMQTTPublisher connects to the broker described by cfg.
func NewMQTTPublisher(cfg MQTTOptions, logger log.FieldLogger) (*MQTTPublisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker is empty")
	}

	opts := mqtt.NewClientOptions()
	opts.SetClientID("zebraprint-" + uuid.NewString())
	opts.AddBroker(cfg.Broker)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %v", token.Error())
	}
	return newMQTTPublisher(client, cfg.TopicRoot, logger), nil
}

func newMQTTPublisher(client mqtt.Client, topicRoot string, logger log.FieldLogger) *MQTTPublisher {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &MQTTPublisher{
		client: client,
		topic:  topicRoot + "/status",
		logger: logger.WithField("component", "mqtt"),
	}
}

// Topic returns the topic snapshots are published to.
func (p *MQTTPublisher) Topic() string {
	return p.topic
}

func (p *MQTTPublisher) Publish(ctx context.Context, snap Snapshot) error {
	if !p.client.IsConnected() {
		return fmt.Errorf("mqtt client is not connected")
	}

	payload, err := json.Marshal(newStatusMessage(snap))
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}

	p.logger.Debugf("Publishing to %s: %s", p.topic, payload)
	token := p.client.Publish(p.topic, 1, true, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("failed to publish status: %v", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
	p.logger.Info("Disconnected from MQTT broker")
}
