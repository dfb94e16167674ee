package amqp_test

import (
	"context"
	"testing"

	"guesthouse/config"
	"guesthouse/infras/amqp"

	"github.com/stretchr/testify/assert"
)

func TestNew_WithoutURLDegrades(t *testing.T) {
	client := amqp.New(&config.Config{})

	err := client.Publish(context.Background(), map[string]string{"item": "soap"})
	assert.ErrorIs(t, err, amqp.ErrNotConnected)

	err = client.Consume(context.Background(), func(_ context.Context, _ []byte) error { return nil })
	assert.ErrorIs(t, err, amqp.ErrNotConnected)

	assert.NoError(t, client.Close())
}
