package event

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory/internal/storage/mq"
)

type fakeConsumer struct {
	handlers map[string]mq.HandlerFunc
}

func (c *fakeConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if c.handlers == nil {
		c.handlers = map[string]mq.HandlerFunc{}
	}
	c.handlers[topic] = handler
	return nil
}

func (c *fakeConsumer) Run(context.Context) (mq.CleanupFunc, error) {
	return func() {}, nil
}

func TestServiceRun(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	consumer := &fakeConsumer{}

	cleanup, err := New(logger, consumer).Run(context.Background())
	require.NoError(t, err)
	defer cleanup()

	require.Len(t, consumer.handlers, 3)

	t.Run("Should log decoded events", func(t *testing.T) {
		h := consumer.handlers[TopicProductAdded]
		require.NotNil(t, h)

		err := h(context.Background(), TopicProductAdded, []byte(`{"product_id":7,"name":"Apple","quantity":10,"price":1.2,"category":"Fruit"}`))
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "product added")
		assert.Contains(t, buf.String(), "product_id=7")
	})

	t.Run("Should fail on malformed payload", func(t *testing.T) {
		err := consumer.handlers[TopicProductDeleted](context.Background(), TopicProductDeleted, []byte(`{`))
		assert.ErrorContains(t, err, "unmarshal inventory.product.deleted event")
	})
}
