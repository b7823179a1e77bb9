package capability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lingochat-backend/internal/config"
	"lingochat-backend/internal/utils"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIChatModel_Generate(t *testing.T) {
	type seenRequest struct {
		agent string
		body  map[string]interface{}
	}
	seen := make(chan seenRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := seenRequest{agent: r.Header.Get("User-Agent")}
		_ = json.NewDecoder(r.Body).Decode(&req.body)
		seen <- req
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"m",` +
			`"choices":[{"index":0,"message":{"role":"assistant","content":"Hello"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	m := newOpenAIChatModel(config.OpenAIConfig{APIKey: "k", BaseURL: srv.URL + "/v1", Model: "m"})

	out, err := m.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("translate"),
		schema.UserMessage("Hola"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", out.Content)
	assert.Equal(t, schema.Assistant, out.Role)

	req := <-seen
	assert.Equal(t, utils.UserAgent, req.agent)
	assert.Equal(t, "m", req.body["model"])
	assert.Len(t, req.body["messages"], 2)
}
