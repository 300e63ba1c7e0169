package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUUID(t *testing.T) {
	t.Run("Generates parseable UUID", func(t *testing.T) {
		id := GenerateUUID()
		assert.Len(t, id, 36)
		assert.True(t, IsUUID(id))
	})

	t.Run("Generates unique UUIDs", func(t *testing.T) {
		ids := make(map[string]bool)
		iterations := 100

		for i := 0; i < iterations; i++ {
			id := GenerateUUID()
			assert.False(t, ids[id], "GenerateUUID() should not generate duplicate UUID: %s", id)
			ids[id] = true
		}
	})
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID("3f1c2b7e-9d4a-4c1e-8f00-2a6b5c4d3e21"))
	assert.False(t, IsUUID(""))
	assert.False(t, IsUUID("device-1"))
}
