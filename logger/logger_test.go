package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/storefront-service/logger"
	"go.uber.org/zap"
)

func TestConfig_ProductionUsesISOTimestamps(t *testing.T) {
	cfg := logger.Config("production")
	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, "timestamp", cfg.EncoderConfig.TimeKey)

	dev := logger.Config("development")
	assert.True(t, dev.Development)
}

func TestNew_TeesToCloudWatchWriter(t *testing.T) {
	var sink bytes.Buffer
	log, err := logger.New("production", &sink)
	require.NoError(t, err)

	log.Info("order placed", zap.String("order_id", "abc"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(sink.Bytes()), &entry))
	assert.Equal(t, "order placed", entry["msg"])
	assert.Equal(t, "abc", entry["order_id"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Contains(t, entry, "timestamp")
}
