package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodePayload(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		payload := decodePayload("evt-1", []byte(`{"slug":"api-docs","document_count":3}`))

		assert.Equal(t, "api-docs", payload["slug"])
		assert.Equal(t, float64(3), payload["document_count"])
	})

	t.Run("empty payload", func(t *testing.T) {
		assert.Nil(t, decodePayload("evt-2", nil))
	})

	t.Run("corrupt payload is dropped, not fatal", func(t *testing.T) {
		assert.Nil(t, decodePayload("evt-3", []byte(`{"slug":`)))
	})
}
