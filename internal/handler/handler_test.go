package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lingochat-backend/internal/capability"
	"lingochat-backend/internal/config"
	"lingochat-backend/internal/model"
	"lingochat-backend/internal/notify"
	"lingochat-backend/internal/service"
	"lingochat-backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	caps         capability.Capabilities
	translateErr error
}

func (s *stubProvider) Translate(_ context.Context, text, src, tgt string) (string, error) {
	if s.translateErr != nil {
		return "", s.translateErr
	}
	return src + ">" + tgt + ":" + text, nil
}

func (s *stubProvider) DetectLanguage(context.Context, string) (*capability.Detection, error) {
	return &capability.Detection{Code: "es", Name: "Spanish", Confidence: 0.8}, nil
}

func (s *stubProvider) Summarize(_ context.Context, text string, _ model.SummarizeOptions) (*capability.SummaryResult, error) {
	return &capability.SummaryResult{Summary: "tl;dr " + text, Status: capability.SummarySuccess}, nil
}

func (s *stubProvider) SummarizeStream(ctx context.Context, text string, opts model.SummarizeOptions, onChunk func(string)) (*capability.SummaryResult, error) {
	onChunk("tl;dr ")
	onChunk(text)
	return s.Summarize(ctx, text, opts)
}

func (s *stubProvider) Capabilities() capability.Capabilities { return s.caps }

type testServer struct {
	router *gin.Engine
	chat   *service.ChatService
	hub    *notify.Hub
}

func newTestServer(t *testing.T, provider capability.Provider) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStorage()
	hub := notify.NewHub()
	chat := service.NewChatService(store, config.ProcessingConfig{OperationTimeout: time.Second}, hub)
	if provider != nil {
		chat.SetProvider(provider)
	}
	user := service.NewUserService(store, notify.NopMailer{}, hub)

	router := NewRouter(config.CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Content-Type"},
	}, Services{Chat: chat, User: user, Hub: hub})

	return &testServer{router: router, chat: chat, hub: hub}
}

func readyProvider() *stubProvider {
	return &stubProvider{caps: capability.Capabilities{Translation: true, Detection: true, Summarization: true}}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndNoRoute(t *testing.T) {
	s := newTestServer(t, readyProvider())

	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "/", body["redirect"])
	assert.Equal(t, float64(3000), body["redirect_after_ms"])
}

func TestChatLifecycle(t *testing.T) {
	s := newTestServer(t, readyProvider())

	rec := s.do(t, http.MethodPost, "/api/chats", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[model.ChatResponse](t, rec)
	assert.Equal(t, "Chat 1", created.Chat.Title)

	rec = s.do(t, http.MethodPut, "/api/chats/"+created.Chat.ID+"/title", model.UpdateTitleRequest{Title: "  Travel "})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Travel", decode[model.Chat](t, rec).Title)

	rec = s.do(t, http.MethodPut, "/api/chats/"+created.Chat.ID+"/title", model.UpdateTitleRequest{Title: " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/chats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Chats         []model.ChatSummary `json:"chats"`
		CurrentChatID string              `json:"current_chat_id"`
	}](t, rec)
	require.Len(t, list.Chats, 1)
	assert.Equal(t, created.Chat.ID, list.CurrentChatID)

	rec = s.do(t, http.MethodGet, "/api/chats/search?q=trav", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"titleMatch":true`)

	rec = s.do(t, http.MethodDelete, "/api/chats/"+created.Chat.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/chats/"+created.Chat.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOpenChat_ResolvesUnknownID(t *testing.T) {
	s := newTestServer(t, readyProvider())

	rec := s.do(t, http.MethodPost, "/api/chats/does-not-exist/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[model.ChatResponse](t, rec)
	assert.True(t, resp.Created)
	assert.True(t, resp.Current)
	assert.Equal(t, s.chat.CurrentChatID(), resp.Chat.ID)
}

func TestOpenChat_SwitchesCurrent(t *testing.T) {
	s := newTestServer(t, readyProvider())
	first := s.chat.CreateNewChat()
	second := s.chat.CreateNewChat()

	rec := s.do(t, http.MethodPost, "/api/chats/"+first+"/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[model.ChatResponse](t, rec)
	assert.False(t, resp.Created)
	assert.Equal(t, first, resp.Chat.ID)
	assert.Equal(t, first, s.chat.CurrentChatID())
	assert.NotEqual(t, second, s.chat.CurrentChatID())
}

func TestGetChat_IsReadOnly(t *testing.T) {
	s := newTestServer(t, readyProvider())

	rec := s.do(t, http.MethodGet, "/api/chats/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, s.chat.ListChats())

	first := s.chat.CreateNewChat()
	second := s.chat.CreateNewChat()

	rec = s.do(t, http.MethodGet, "/api/chats/"+first, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[model.ChatResponse](t, rec)
	assert.Equal(t, first, resp.Chat.ID)
	assert.False(t, resp.Current)
	assert.Equal(t, second, s.chat.CurrentChatID())
}

func TestMessageFlow(t *testing.T) {
	s := newTestServer(t, readyProvider())

	rec := s.do(t, http.MethodPost, "/api/messages", model.SendMessageRequest{Message: "hola mundo"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sent := decode[model.SendMessageResponse](t, rec)
	assert.Equal(t, model.ResponsePrompt, sent.Pair.Response.Text)
	assert.Equal(t, "es", sent.Pair.UserMessage.DetectedLanguage.Code)

	responseID := sent.Pair.Response.ID

	rec = s.do(t, http.MethodPost, "/api/messages/"+responseID+"/translate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "es>en:hola mundo", decode[model.ResponseUpdate](t, rec).Response.Translation)

	rec = s.do(t, http.MethodPost, "/api/messages/"+responseID+"/summarize", model.SummarizeRequest{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	update := decode[model.ResponseUpdate](t, rec)
	assert.Equal(t, "tl;dr hola mundo", update.Response.Summary)
	assert.Equal(t, "es>en:hola mundo", update.Response.Translation)

	rec = s.do(t, http.MethodGet, "/api/processing", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[model.ProcessingState](t, rec).IsProcessing)
}

func TestMessageErrors(t *testing.T) {
	p := readyProvider()
	s := newTestServer(t, p)

	rec := s.do(t, http.MethodPost, "/api/messages", model.SendMessageRequest{Message: "   "})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.True(t, decode[model.ErrorResponse](t, rec).Skipped)

	rec = s.do(t, http.MethodPost, "/api/messages/unknown/translate", model.TranslateRequest{TargetLanguage: "en"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/messages", model.SendMessageRequest{Message: "hola"})
	require.Equal(t, http.StatusCreated, rec.Code)
	responseID := decode[model.SendMessageResponse](t, rec).Pair.Response.ID

	p.translateErr = errors.New("upstream down")
	rec = s.do(t, http.MethodPost, "/api/messages/"+responseID+"/translate", model.TranslateRequest{TargetLanguage: "fr"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	p.translateErr = capability.ErrUnsupportedPair
	rec = s.do(t, http.MethodPost, "/api/messages/"+responseID+"/translate", model.TranslateRequest{TargetLanguage: "de"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	p.translateErr = context.DeadlineExceeded
	rec = s.do(t, http.MethodPost, "/api/messages/"+responseID+"/translate", model.TranslateRequest{TargetLanguage: "fr"})
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/messages/"+responseID+"/summarize", map[string]interface{}{
		"options": map[string]string{"type": "poem"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummarizeStream(t *testing.T) {
	s := newTestServer(t, readyProvider())

	rec := s.do(t, http.MethodPost, "/api/messages", model.SendMessageRequest{Message: "texto"})
	require.Equal(t, http.StatusCreated, rec.Code)
	responseID := decode[model.SendMessageResponse](t, rec).Pair.Response.ID

	rec = s.do(t, http.MethodPost, "/api/messages/"+responseID+"/summarize?stream=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Equal(t, 2, strings.Count(body, "event: chunk\n"))
	assert.Contains(t, body, "event: done\n")
	assert.Contains(t, body, `"summary":"tl;dr texto"`)
	assert.True(t, strings.HasSuffix(body, "data: [DONE]\n\n"))
}

func TestCapabilitiesGate(t *testing.T) {
	p := &stubProvider{caps: capability.Capabilities{Translation: true, Detection: true}}
	s := newTestServer(t, p)

	rec := s.do(t, http.MethodPost, "/api/messages", model.SendMessageRequest{Message: "hola"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "summarization")
	assert.Contains(t, rec.Body.String(), "remediation")

	rec = s.do(t, http.MethodGet, "/api/capabilities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, false, body["supported"])
	assert.Equal(t, []interface{}{"summarization"}, body["missing"])

	noProvider := newTestServer(t, nil)
	rec = noProvider.do(t, http.MethodPost, "/api/messages", model.SendMessageRequest{Message: "hola"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPreferencesEndpoints(t *testing.T) {
	s := newTestServer(t, readyProvider())

	rec := s.do(t, http.MethodPatch, "/api/preferences/summarization", map[string]string{"defaultType": "teaser"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPatch, "/api/preferences/summarization", map[string]string{"defaultLength": "long"})
	require.Equal(t, http.StatusOK, rec.Code)

	prefs := decode[model.SummarizationPreferences](t, rec)
	assert.Equal(t, model.SummaryTeaser, prefs.DefaultType)
	assert.Equal(t, model.LengthLong, prefs.DefaultLength)
	assert.Equal(t, model.FormatMarkdown, prefs.DefaultFormat)

	rec = s.do(t, http.MethodPatch, "/api/preferences/summarization", map[string]string{"defaultFormat": "html"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/preferences/summarization/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.DefaultSummarizationPreferences(), decode[model.SummarizationPreferences](t, rec))

	rec = s.do(t, http.MethodPut, "/api/preferences/target-language", model.TargetLanguageRequest{TargetLanguage: "pt"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pt", decode[model.Preferences](t, rec).PreferredTargetLanguage)
}

func TestProfileEndpoints(t *testing.T) {
	s := newTestServer(t, readyProvider())

	rec := s.do(t, http.MethodGet, "/api/profile", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/profile", model.OnboardRequest{Name: "Ana", Email: "bad"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/profile", model.OnboardRequest{Name: "Ana", Email: "ana@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/profile", model.OnboardRequest{Name: "Ana", Email: "ana@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/profile", map[string]string{"avatar": model.AvatarOptions[3]})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.AvatarOptions[3], decode[model.UserProfile](t, rec).Avatar)

	rec = s.do(t, http.MethodGet, "/api/profile/avatars", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string][]string](t, rec)["avatars"], len(model.AvatarOptions))
}

func TestEventsStream(t *testing.T) {
	s := newTestServer(t, readyProvider())

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		s.router.ServeHTTP(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	s.hub.Publish(notify.LevelInfo, "Translator initialized", "Spanish to English")

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	assert.Contains(t, rec.Body.String(), "event: notification\n")
	assert.Contains(t, rec.Body.String(), "Translator initialized")
	assert.Equal(t, 0, s.hub.Subscribers())
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrEmptyMessage, http.StatusConflict},
		{service.ErrChatNotFound, http.StatusNotFound},
		{service.ErrProfileExists, http.StatusConflict},
		{service.ErrInvalidProfile, http.StatusBadRequest},
		{service.ErrOperationFailed, http.StatusBadGateway},
		{storage.ErrProfileNotFound, http.StatusNotFound},
		{capability.ErrCapabilityUnavailable, http.StatusServiceUnavailable},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, statusFor(c.err), c.err.Error())
	}
}
