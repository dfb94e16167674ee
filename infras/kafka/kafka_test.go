package kafka_test

import (
	"context"
	"testing"

	"guesthouse/config"
	"guesthouse/infras/kafka"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stockEvent struct {
	ItemID string `json:"itemId"`
	Qty    int    `json:"qty"`
}

func TestMessage_RoundTrip(t *testing.T) {
	msg := kafka.Message{Key: "item-1", Value: stockEvent{ItemID: "item-1", Qty: 3}}

	raw, err := msg.ToKafkaMessage()
	require.NoError(t, err)
	assert.Equal(t, []byte("item-1"), raw.Key)
	assert.JSONEq(t, `{"itemId":"item-1","qty":3}`, string(raw.Value))

	decoded, err := kafka.Decode[stockEvent](raw)
	require.NoError(t, err)
	assert.Equal(t, stockEvent{ItemID: "item-1", Qty: 3}, decoded)
}

func TestMessage_UnmarshalableValue(t *testing.T) {
	msg := kafka.Message{Key: "k", Value: make(chan int)}

	_, err := msg.ToKafkaMessage()
	assert.Error(t, err)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := kafka.Decode[stockEvent](kafkaGo.Message{Value: []byte("{not json")})
	assert.Error(t, err)
}

func TestReader(t *testing.T) {
	cfg := &config.Config{}
	cfg.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Kafka.ConsumerGroup = "guesthouse-worker"

	client := kafka.New(cfg)
	t.Cleanup(func() { _ = client.Close() })

	assert.Nil(t, client.Reader("", ""))

	reader := client.Reader("", "guesthouse.events")
	require.NotNil(t, reader)
	t.Cleanup(func() { _ = reader.Close() })

	assert.Equal(t, "guesthouse-worker", reader.Config().GroupID)
	assert.Equal(t, "guesthouse.events", reader.Config().Topic)
}

func TestSendMessages_RejectsUnencodableValue(t *testing.T) {
	cfg := &config.Config{}
	cfg.Kafka.Brokers = []string{"localhost:9092"}

	client := kafka.New(cfg)
	t.Cleanup(func() { _ = client.Close() })

	assert.Error(t, client.SendMessages(context.Background(), "guesthouse.events", kafka.Message{Value: make(chan int)}))
}
