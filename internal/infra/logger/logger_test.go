package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("json in prod drops debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, "prod", "json")
		log.Debug("hidden")
		log.Info("imported", "rows", 3)

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "imported", rec["msg"])
		assert.EqualValues(t, 3, rec["rows"])
	})

	t.Run("text in dev keeps debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, "dev", "text")
		log.Debug("walk", "file", "steel.xml")
		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), "file=steel.xml")
	})
}
