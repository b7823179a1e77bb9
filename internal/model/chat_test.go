package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatUnmarshal_CreatedAt(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{name: "rfc3339", raw: `"2023-11-14T22:13:20Z"`, want: time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)},
		{name: "epoch ms", raw: `1700000000000`, want: time.UnixMilli(1700000000000)},
		{name: "epoch ms string", raw: `"1700000000000"`, want: time.UnixMilli(1700000000000)},
		{name: "null", raw: `null`},
		{name: "empty string", raw: `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var chat Chat
			require.NoError(t, json.Unmarshal([]byte(`{"id":"a","title":"Chat 1","createdAt":`+tt.raw+`}`), &chat))
			assert.Equal(t, "a", chat.ID)
			assert.Equal(t, "Chat 1", chat.Title)
			assert.True(t, tt.want.Equal(chat.CreatedAt), "got %v", chat.CreatedAt)
		})
	}
}

func TestChatUnmarshal_MissingCreatedAt(t *testing.T) {
	var chat Chat
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","messagePairs":[]}`), &chat))
	assert.True(t, chat.CreatedAt.IsZero())
	assert.NotNil(t, chat.MessagePairs)
}

func TestChatUnmarshal_BadCreatedAt(t *testing.T) {
	var chat Chat
	err := json.Unmarshal([]byte(`{"id":"a","createdAt":"yesterday"}`), &chat)
	assert.Error(t, err)
}

func TestChat_MarshalRoundTrip(t *testing.T) {
	in := Chat{ID: "a", Title: "Chat 1", CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), MessagePairs: []MessagePair{}}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Chat
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
