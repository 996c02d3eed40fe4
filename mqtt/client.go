package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bloom-monitor/config"
	"bloom-monitor/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Ingester accepts telemetry for an asset.
type Ingester interface {
	Ingest(ctx context.Context, assetID string, in models.ReadingInput) (*models.IngestResult, error)
}

// Client wraps the PAHO MQTT client. It feeds collector readings into the
// ingestion pipeline and republishes alert events for downstream consumers.
type Client struct {
	client   mqtt.Client
	prefix   string
	ingester Ingester
	logger   *slog.Logger
	timeout  time.Duration
}

// NewClient creates and connects a new MQTT client.
func NewClient(cfg *config.Config, ingester Ingester, logger *slog.Logger) (*Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetUsername(cfg.MQTTUsername).
		SetPassword(cfg.MQTTPassword).
		SetKeepAlive(60 * time.Second).
		SetPingTimeout(1 * time.Second).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(10 * time.Second).
		SetCleanSession(true)

	c := newClient(cfg.MQTTTopicPrefix, ingester, logger)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)
	c.client = mqtt.NewClient(opts)

	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return c, nil
}

func newClient(prefix string, ingester Ingester, logger *slog.Logger) *Client {
	return &Client{
		prefix:   strings.TrimSuffix(prefix, "/"),
		ingester: ingester,
		logger:   logger.With("component", "mqtt_client"),
		timeout:  5 * time.Second,
	}
}

// Disconnect gracefully disconnects the client.
func (c *Client) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
		c.logger.Info("MQTT Client disconnected")
	}
}

// Close disconnects the client.
func (c *Client) Close() error {
	c.Disconnect()
	return nil
}

func (c *Client) onConnect(client mqtt.Client) {
	c.logger.Info("Successfully connected to MQTT broker. Subscribing to topics...")
	c.subscribe(c.readingTopic(), c.handleReading)
}

func (c *Client) onConnectionLost(client mqtt.Client, err error) {
	c.logger.Error("Connection lost. Reconnecting...", slog.Any("error", err))
}

func (c *Client) subscribe(topic string, handler mqtt.MessageHandler) {
	if token := c.client.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
		c.logger.Error("Failed to subscribe to topic", "topic", topic, slog.Any("error", token.Error()))
	} else {
		c.logger.Info("Successfully subscribed to topic", "topic", topic)
	}
}

func (c *Client) handleReading(_ mqtt.Client, msg mqtt.Message) {
	c.ingest(msg.Topic(), msg.Payload())
}

// ingest is the transport-independent part of handleReading.
func (c *Client) ingest(topic string, payload []byte) {
	assetID, err := c.parseAssetID(topic)
	if err != nil {
		c.logger.Error("Failed to parse MQTT message", "topic", topic, slog.Any("error", err))
		return
	}
	logger := c.logger.With("assetId", assetID)

	var in models.ReadingInput
	if err := json.Unmarshal(payload, &in); err != nil {
		logger.Error("Failed to unmarshal JSON payload", "topic", topic, slog.Any("error", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result, err := c.ingester.Ingest(ctx, assetID, in)
	if err != nil {
		logger.Error("Failed to ingest MQTT reading", slog.Any("error", err))
		return
	}
	logger.Info("MQTT reading ingested", "alerts", len(result.TriggeredAlerts))
}

// Emit publishes event to {prefix}/alerts/{event}.
func (c *Client) Emit(event string, payload any) error {
	return c.publishJSON(c.alertTopic("", event), payload)
}

// EmitToRoom publishes event to {prefix}/alerts/{room}/{event}.
func (c *Client) EmitToRoom(room, event string, payload any) error {
	return c.publishJSON(c.alertTopic(room, event), payload)
}

func (c *Client) publishJSON(topic string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for %s: %w", topic, err)
	}
	return c.publish(topic, b)
}

func (c *Client) publish(topic string, payload []byte) error {
	if !c.client.IsConnected() {
		return fmt.Errorf("MQTT client is not connected")
	}
	token := c.client.Publish(topic, 1, false, payload)
	go func() {
		if token.WaitTimeout(c.timeout) && token.Error() != nil {
			c.logger.Error("Failed to publish message", "topic", topic, slog.Any("error", token.Error()))
		}
	}()
	return nil
}

func (c *Client) readingTopic() string {
	return fmt.Sprintf("%s/datacenter/+/reading", c.prefix)
}

func (c *Client) alertTopic(room, event string) string {
	if room == "" {
		return fmt.Sprintf("%s/alerts/%s", c.prefix, event)
	}
	return fmt.Sprintf("%s/alerts/%s/%s", c.prefix, room, event)
}

// parseAssetID extracts the asset from {prefix}/datacenter/{assetId}/reading.
func (c *Client) parseAssetID(topic string) (string, error) {
	rest, ok := strings.CutPrefix(topic, c.prefix+"/")
	if !ok {
		return "", fmt.Errorf("topic %s outside prefix %s", topic, c.prefix)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[0] != "datacenter" || parts[2] != "reading" || parts[1] == "" {
		return "", fmt.Errorf("invalid topic structure: %s", topic)
	}
	return parts[1], nil
}

func (c *Client) LogSubscribedTopics() {
	c.logger.Info("--- Subscribed Topics (Collector -> Monitor) ---")
	c.logger.Info("1. " + c.readingTopic())
	c.logger.Info("--- Published Topics (Monitor -> Consumers) ---")
	c.logger.Info("1. " + c.alertTopic("", "{event}"))
	c.logger.Info("2. " + c.alertTopic("{room}", "{event}"))
}
