package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_LevelFiltering(t *testing.T) {
	require.NoError(t, Init("warn", "text"))
	defer func() { log = nil }()

	var buf bytes.Buffer
	SetOutput(&buf)

	Infof("hidden %d", 1)
	Warnf("shown %d", 2)

	assert.NotContains(t, buf.String(), "hidden 1")
	assert.Contains(t, buf.String(), "shown 2")
}

func TestInit_JSONFields(t *testing.T) {
	require.NoError(t, Init("", "json"))
	defer func() { log = nil }()

	var buf bytes.Buffer
	SetOutput(&buf)

	WithFields(map[string]interface{}{"status": 200}).Info("request")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, "info", entry["level"])
}

func TestInit_InvalidLevel(t *testing.T) {
	err := Init("loud", "text")
	require.Error(t, err)
	assert.Nil(t, log)
}
