package mqtt

//go:generate go run go.uber.org/mock/mockgen -source=./mqtt.go -destination=./mocks/mqtt_mock.go -package=mocks

import (
	"fmt"
	"time"

	"guesthouse/config"

	pahoMqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	QoSAtLeastOnce    byte = 1
	disconnectQuiesce      = 250
	connectTimeout         = 10 * time.Second
)

// Handler receives the topic and raw payload of one message.
type Handler func(topic string, payload []byte) error

type Client interface {
	Subscribe(topic string, qos byte, handler Handler) error
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Disconnect()
}

type clientImpl struct {
	client pahoMqtt.Client
}

func New(cfg *config.Config) (Client, error) {
	opts := pahoMqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTT.Broker)
	opts.SetClientID(cfg.MQTT.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(connectTimeout)

	if cfg.MQTT.Username != "" {
		opts.SetUsername(cfg.MQTT.Username)
	}

	if cfg.MQTT.Password != "" {
		opts.SetPassword(cfg.MQTT.Password)
	}

	client := pahoMqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Info().Str("broker", cfg.MQTT.Broker).Str("clientId", cfg.MQTT.ClientID).Msg("Connected to MQTT broker")

	return &clientImpl{client: client}, nil
}

func (c *clientImpl) Subscribe(topic string, qos byte, handler Handler) error {
	token := c.client.Subscribe(topic, qos, func(_ pahoMqtt.Client, msg pahoMqtt.Message) {
		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			log.Error().Err(err).Str("topic", msg.Topic()).Msg("Failed to handle MQTT message")
		}
	})

	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, token.Error())
	}

	return nil
}

func (c *clientImpl) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	token.Wait()

	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}

	return nil
}

func (c *clientImpl) Disconnect() {
	c.client.Disconnect(disconnectQuiesce)
}
