package mq

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/inventory/pkg/ptr"
)

func TestBuildProduceRecord(t *testing.T) {
	t.Run("Should carry headers and key", func(t *testing.T) {
		rec := buildProduceRecord(ProduceMsg{
			Topic:        "inventory.product.added",
			Headers:      map[string]string{"X-Correlation-ID": "abc"},
			Payload:      []byte(`{"product_id":1}`),
			PartitionKey: ptr.New("1"),
		})

		assert.Equal(t, "inventory.product.added", rec.Topic)
		assert.Equal(t, []byte(`{"product_id":1}`), rec.Value)
		assert.Equal(t, []byte("1"), rec.Key)
		if assert.Len(t, rec.Headers, 1) {
			assert.Equal(t, "X-Correlation-ID", rec.Headers[0].Key)
			assert.Equal(t, []byte("abc"), rec.Headers[0].Value)
		}
	})

	t.Run("Should leave the key empty without a partition key", func(t *testing.T) {
		rec := buildProduceRecord(ProduceMsg{Topic: "inventory.imported"})
		assert.Nil(t, rec.Key)
		assert.Empty(t, rec.Headers)
	})
}
