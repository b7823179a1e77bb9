package capability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"lingochat-backend/internal/config"
	"lingochat-backend/internal/utils"
	"lingochat-backend/pkg/logger"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/qwen"
	einoModel "github.com/cloudwego/eino/components/model"
)

// NewChatModel builds the chat model of the configured provider.
func NewChatModel(ctx context.Context, cfg *config.Config) (einoModel.BaseChatModel, error) {
	switch cfg.Model.Provider {
	case "doubao":
		return newDoubaoModel(ctx, cfg.Doubao)
	case "openai":
		logger.Infof("Using OpenAI model: %s", cfg.OpenAI.Model)
		return newOpenAIChatModel(cfg.OpenAI), nil
	case "qwen":
		return newQwenModel(ctx, cfg.Qwen)
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", cfg.Model.Provider)
	}
}

func newDoubaoModel(ctx context.Context, cfg config.DoubaoConfig) (einoModel.BaseChatModel, error) {
	logger.Infof("Using Doubao model: %s, API key: %s", cfg.Model, maskKey(cfg.APIKey))

	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("create doubao model: %w", err)
	}
	return chatModel, nil
}

func newQwenModel(ctx context.Context, cfg config.QwenConfig) (einoModel.BaseChatModel, error) {
	logger.Infof("Using Qwen model: %s, BaseURL: %s, API key: %s", cfg.Model, cfg.BaseURL, maskKey(cfg.APIKey))

	httpClient := utils.NewHTTPClient(cfg.Timeout)
	httpClient.Transport = NewDebugTransport(httpClient.Transport, cfg.DebugRequest)

	chatModel, err := qwen.NewChatModel(ctx, &qwen.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   &cfg.MaxTokens,
		Temperature: &cfg.Temperature,
		TopP:        &cfg.TopP,
		Timeout:     cfg.Timeout,
		HTTPClient:  httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create qwen model: %w", err)
	}

	if cfg.DebugRequest {
		logger.Info("Qwen request debugging enabled")
	}
	return chatModel, nil
}

func maskKey(key string) string {
	if len(key) > 10 {
		return key[:10] + "..."
	}
	if key == "" {
		return "(empty)"
	}
	return "***"
}

// DebugTransport logs outgoing POST requests with sensitive headers redacted.
type DebugTransport struct {
	base    http.RoundTripper
	enabled bool
}

func NewDebugTransport(base http.RoundTripper, enabled bool) *DebugTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &DebugTransport{base: base, enabled: enabled}
}

func (t *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.enabled && req.Method == http.MethodPost {
		t.logRequest(req)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil && t.enabled {
		logger.Errorf("Model request failed: %v", err)
	}
	return resp, err
}

func (t *DebugTransport) logRequest(req *http.Request) {
	headers := make(map[string]interface{}, len(req.Header))
	for name, values := range req.Header {
		if isSensitiveHeader(name) {
			headers[name] = "[REDACTED]"
		} else {
			headers[name] = strings.Join(values, ", ")
		}
	}

	fields := map[string]interface{}{
		"method":  req.Method,
		"url":     req.URL.String(),
		"headers": headers,
	}

	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			logger.Errorf("Failed to read request body: %v", err)
			return
		}
		// restore the body for the real round trip
		req.Body = io.NopCloser(bytes.NewReader(body))
		fields["body"] = string(body)
		fields["body_size"] = len(body)
	}

	logger.WithFields(fields).Info("Model request")
}

func isSensitiveHeader(name string) bool {
	for _, sensitive := range []string{"Authorization", "X-Api-Key", "X-Auth-Token", "Cookie"} {
		if strings.EqualFold(name, sensitive) {
			return true
		}
	}
	return false
}
