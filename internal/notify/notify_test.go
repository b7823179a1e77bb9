package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"lingochat-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_FanOut(t *testing.T) {
	hub := NewHub()
	a, cancelA := hub.Subscribe()
	b, cancelB := hub.Subscribe()
	defer cancelA()
	defer cancelB()

	hub.Publish(LevelSuccess, "Translator initialized", "es-en")

	for _, ch := range []<-chan Notification{a, b} {
		n := <-ch
		assert.Equal(t, LevelSuccess, n.Level)
		assert.Equal(t, "Translator initialized", n.Title)
		assert.Equal(t, "es-en", n.Description)
		assert.False(t, n.Time.IsZero())
	}
}

func TestHub_CancelClosesChannel(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	assert.Equal(t, 1, hub.Subscribers())

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Subscribers())

	hub.Publish(LevelInfo, "after cancel", "")
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer*2; i++ {
		hub.Publish(LevelInfo, "tick", "")
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestNewMailer_Disabled(t *testing.T) {
	m := NewMailer(config.EmailConfig{})
	_, ok := m.(NopMailer)
	require.True(t, ok)
	assert.NoError(t, m.SendWelcome(context.Background(), "Ana", "ana@example.com"))
	assert.NoError(t, m.NotifySender(context.Background(), "Ana", "ana@example.com"))
}

func TestSMTPMailer_SendWelcome(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	m := &SMTPMailer{
		cfg: config.EmailConfig{
			Enabled:  true,
			Host:     "smtp.example.com",
			Port:     587,
			Username: "bot@example.com",
			Password: "secret",
		},
		send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
			return nil
		},
	}

	require.NoError(t, m.SendWelcome(context.Background(), "Ana", "ana@example.com"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "bot@example.com", gotFrom)
	assert.Equal(t, []string{"ana@example.com"}, gotTo)
	assert.True(t, strings.Contains(string(gotMsg), "Subject: Welcome to LingoChat\r\n"))
	assert.True(t, strings.Contains(string(gotMsg), "Hi Ana,"))
}

func TestSMTPMailer_Errors(t *testing.T) {
	m := &SMTPMailer{
		cfg: config.EmailConfig{Enabled: true, Host: "smtp.example.com", Port: 25, NotifyTo: "ops@example.com"},
		send: func(string, smtp.Auth, string, []string, []byte) error {
			return errors.New("connection refused")
		},
	}

	err := m.NotifySender(context.Background(), "Ana", "ana@example.com")
	assert.ErrorContains(t, err, "connection refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.SendWelcome(ctx, "Ana", "ana@example.com"), context.Canceled)
}
