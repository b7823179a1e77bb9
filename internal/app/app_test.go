package app

import (
	"context"
	"testing"
	"time"

	"lingochat-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(provider string) *config.Config {
	return &config.Config{
		Model:      config.ModelConfig{Provider: provider},
		OpenAI:     config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini"},
		Processing: config.ProcessingConfig{OperationTimeout: time.Second},
		Storage:    config.StorageConfig{Type: "memory"},
		Capabilities: config.CapabilitiesConfig{
			Translation:   config.CapabilityConfig{Enabled: true, Availability: "readily"},
			Detection:     config.CapabilityConfig{Enabled: true, Availability: "readily"},
			Summarization: config.CapabilityConfig{Enabled: true, Availability: "readily"},
		},
	}
}

func TestNew_WithProvider(t *testing.T) {
	a := New(context.Background(), testConfig("openai"))
	defer a.Close()

	require.NotNil(t, a.Chat.Provider())
	assert.True(t, a.Chat.Provider().Capabilities().All())
	assert.NotNil(t, a.User)
}

func TestNew_UnknownProviderRunsWithoutAI(t *testing.T) {
	a := New(context.Background(), testConfig("nope"))
	defer a.Close()

	assert.Nil(t, a.Chat.Provider())

	_, _, err := a.Chat.SendMessage(context.Background(), "hello")
	require.Error(t, err)
	assert.Empty(t, a.Chat.ListChats())
}
