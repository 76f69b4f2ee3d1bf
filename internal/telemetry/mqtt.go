package telemetry

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/smazurov/histonode/internal/logging"
)

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
	disconnectMs   = 250
)

// ErrNotConnected is returned by Send while the broker link is down.
var ErrNotConnected = errors.New("mqtt not connected")

// ClientID returns a fresh broker client id.
func ClientID() string {
	return "histonode-" + uuid.NewString()[:8]
}

// Client is a Sender backed by a paho MQTT connection that reconnects on its
// own after the first successful connect.
type Client struct {
	client mqtt.Client
	broker string
	logger *slog.Logger
}

// Dial connects to cfg.Broker.
func Dial(cfg Config) (*Client, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt broker not configured")
	}
	logger := logging.GetLogger("telemetry")

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(ClientID())
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("MQTT connection established", "broker", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost, will auto-reconnect", "broker", cfg.Broker, "error", err)
	})

	client := mqtt.NewClient(opts)
	logger.Info("Connecting to MQTT broker", "broker", cfg.Broker)

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connection to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connection failed: %w", err)
	}

	return &Client{client: client, broker: cfg.Broker, logger: logger}, nil
}

// Send publishes payload and waits for the broker to accept it.
func (c *Client) Send(topic string, qos byte, retained bool, payload []byte) error {
	if !c.client.IsConnected() {
		return ErrNotConnected
	}
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s failed: %w", topic, err)
	}
	return nil
}

// Close disconnects with a short grace period.
func (c *Client) Close() {
	if c.client.IsConnected() {
		c.client.Disconnect(disconnectMs)
		c.logger.Info("MQTT disconnected", "broker", c.broker)
	}
}
