package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"lingochat-backend/internal/capability"
	"lingochat-backend/internal/config"
	"lingochat-backend/internal/model"
	"lingochat-backend/internal/notify"
	"lingochat-backend/internal/storage"
	"lingochat-backend/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// ChatService owns the chat list, the current chat, the processing
// indicator and the preferences. Every mutation goes through it and is
// persisted before the method returns.
type ChatService struct {
	store     storage.Storage
	publisher notify.Publisher
	timeout   time.Duration

	mu         sync.RWMutex
	chats      []model.Chat
	currentID  string
	processing model.ProcessingState
	prefs      model.Preferences
	provider   capability.Provider

	// at most one AI operation at a time
	flight *semaphore.Weighted

	// set when a stored document could not be read nor backed up; saving
	// would destroy the only copy
	historyLocked bool
	prefsLocked   bool

	now   func() time.Time
	newID func() string
}

func NewChatService(store storage.Storage, cfg config.ProcessingConfig, publisher notify.Publisher) *ChatService {
	if publisher == nil {
		publisher = notify.Nop{}
	}

	s := &ChatService{
		store:     store,
		publisher: publisher,
		timeout:   cfg.OperationTimeout,
		chats:     []model.Chat{},
		prefs:     model.DefaultPreferences(),
		flight:    semaphore.NewWeighted(1),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}

	if history, err := store.LoadHistory(); err != nil {
		logger.Errorf("Failed to load chat history, starting empty: %v", err)
		s.historyLocked = !s.preserveUnreadable("chat history")
	} else {
		s.chats = history.Chats
		s.currentID = history.CurrentChatID
		if s.currentID != "" && s.indexLocked(s.currentID) < 0 {
			s.currentID = ""
		}
		logger.Infof("Loaded %d chats", len(s.chats))
	}

	if prefs, err := store.LoadPreferences(); err != nil {
		logger.Errorf("Failed to load preferences, using defaults: %v", err)
		s.prefsLocked = !s.preserveUnreadable("preferences")
	} else {
		s.prefs = *prefs
	}

	return s
}

func (s *ChatService) SetProvider(p capability.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = p
}

func (s *ChatService) Provider() capability.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider
}

func (s *ChatService) indexLocked(id string) int {
	for i := range s.chats {
		if s.chats[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *ChatService) findPairLocked(chatID, responseID string) *model.MessagePair {
	i := s.indexLocked(chatID)
	if i < 0 {
		return nil
	}
	pairs := s.chats[i].MessagePairs
	for j := range pairs {
		if pairs[j].Response.ID == responseID {
			return &pairs[j]
		}
	}
	return nil
}

// preserveUnreadable snapshots the stored documents before the service
// starts overwriting an unreadable one. It reports whether a copy exists.
func (s *ChatService) preserveUnreadable(doc string) bool {
	if err := s.store.Backup(); err != nil {
		logger.Errorf("Failed to back up unreadable %s, it will not be overwritten: %v", doc, err)
		s.publisher.Publish(notify.LevelError, "Stored data unreadable",
			fmt.Sprintf("The stored %s could not be read or backed up. Changes will not be saved.", doc))
		return false
	}
	s.publisher.Publish(notify.LevelWarning, "Stored data unreadable",
		fmt.Sprintf("The stored %s could not be read. A backup was taken before starting empty.", doc))
	return true
}

func (s *ChatService) persistHistoryLocked() {
	if s.historyLocked {
		logger.Warnf("Chat history not saved: the stored document is unreadable and has no backup")
		return
	}
	history := &model.ChatHistory{Chats: s.chats, CurrentChatID: s.currentID}
	if err := s.store.SaveHistory(history); err != nil {
		logger.Errorf("Failed to save chat history: %v", err)
	}
}

func (s *ChatService) persistPreferencesLocked() {
	if s.prefsLocked {
		logger.Warnf("Preferences not saved: the stored document is unreadable and has no backup")
		return
	}
	prefs := s.prefs
	if err := s.store.SavePreferences(&prefs); err != nil {
		logger.Errorf("Failed to save preferences: %v", err)
	}
}

// newChatLocked prepends a chat with the given id and makes it current.
func (s *ChatService) newChatLocked(id string) *model.Chat {
	chat := model.Chat{
		ID:           id,
		Title:        model.DefaultChatTitle(len(s.chats) + 1),
		CreatedAt:    s.now(),
		MessagePairs: []model.MessagePair{},
	}
	s.chats = append([]model.Chat{chat}, s.chats...)
	s.currentID = id
	return &s.chats[0]
}

func (s *ChatService) CreateNewChat() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.newChatLocked(s.newID())
	s.persistHistoryLocked()

	logger.Infof("Created chat %s (%s)", chat.ID, chat.Title)
	return chat.ID
}

func (s *ChatService) SwitchChat(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(id) < 0 {
		return fmt.Errorf("%w: %s", ErrChatNotFound, id)
	}
	if s.currentID != id {
		s.currentID = id
		s.persistHistoryLocked()
	}
	return nil
}

func (s *ChatService) DeleteChat(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrChatNotFound, id)
	}

	chats := make([]model.Chat, 0, len(s.chats)-1)
	chats = append(chats, s.chats[:i]...)
	chats = append(chats, s.chats[i+1:]...)
	s.chats = chats

	if s.currentID == id {
		s.currentID = ""
		if len(s.chats) > 0 {
			s.currentID = s.chats[0].ID
		}
	}

	s.persistHistoryLocked()
	logger.Infof("Deleted chat %s", id)
	return nil
}

func (s *ChatService) UpdateChatTitle(id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrChatNotFound, id)
	}

	s.chats[i].Title = title
	s.persistHistoryLocked()
	return nil
}

func (s *ChatService) setProcessing(kind model.ProcessingKind, id string) {
	s.mu.Lock()
	s.processing = model.NewProcessingState(true, kind, id)
	s.mu.Unlock()
}

func (s *ChatService) clearProcessing() {
	s.mu.Lock()
	s.processing = model.ProcessingState{}
	s.mu.Unlock()
}

func (s *ChatService) operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// acquire waits for the in-flight operation, if any, to finish.
func (s *ChatService) acquire(ctx context.Context) error {
	if err := s.flight.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("wait for in-flight operation: %w", err)
	}
	return nil
}

// SendMessage appends a new message pair to the current chat, creating the
// chat when there is none. It returns the id of the chat the pair went to.
func (s *ChatService) SendMessage(ctx context.Context, text string) (string, *model.MessagePair, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil, ErrEmptyMessage
	}

	provider := s.Provider()
	if provider == nil {
		return "", nil, ErrNoProvider
	}

	if err := s.acquire(ctx); err != nil {
		return "", nil, err
	}
	defer s.flight.Release(1)

	pair := model.MessagePair{
		UserMessage: model.UserMessage{
			ID:     s.newID(),
			IsUser: true,
			Text:   text,
		},
		Response: model.ResponseMessage{
			ID:   s.newID(),
			Text: model.ResponsePrompt,
		},
	}

	s.setProcessing(model.ProcessingNone, pair.Response.ID)
	defer s.clearProcessing()

	opCtx, cancel := s.operationContext(ctx)
	detection, err := provider.DetectLanguage(opCtx, text)
	cancel()
	if err != nil {
		logger.Warnf("Language detection failed, continuing without it: %v", err)
	} else if detection != nil {
		detected := &model.DetectedLanguage{
			Code:       detection.Code,
			Name:       detection.Name,
			Confidence: detection.Confidence,
		}
		pair.UserMessage.DetectedLanguage = detected
		copied := *detected
		pair.Response.DetectedLanguage = &copied
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// the current chat is resolved after detection, so a chat deleted
	// meanwhile is never written to
	var chat *model.Chat
	if i := s.indexLocked(s.currentID); i >= 0 {
		chat = &s.chats[i]
	} else {
		chat = s.newChatLocked(s.newID())
	}

	chat.MessagePairs = append(chat.MessagePairs, pair)
	s.persistHistoryLocked()

	out := pair.Clone()
	return chat.ID, &out, nil
}

type responseTarget struct {
	chatID string
	pair   model.MessagePair
}

// lookupResponse finds a response in the current chat.
func (s *ChatService) lookupResponse(responseID string) (*responseTarget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.indexLocked(s.currentID) < 0 {
		return nil, ErrNoCurrentChat
	}
	pair := s.findPairLocked(s.currentID, responseID)
	if pair == nil {
		return nil, fmt.Errorf("%w: %s", ErrMessageNotFound, responseID)
	}
	return &responseTarget{chatID: s.currentID, pair: pair.Clone()}, nil
}

// runOnResponse drives a translate or summarize command: it sets the
// processing flags, awaits fn and stores its result with apply. The result
// is written back to the chat the response was found in, even when the
// user switched chats meanwhile.
func (s *ChatService) runOnResponse(
	ctx context.Context,
	responseID string,
	kind model.ProcessingKind,
	check func(t *responseTarget) error,
	fn func(ctx context.Context, provider capability.Provider, t *responseTarget) (string, error),
	apply func(resp *model.ResponseMessage, result string),
) (*model.ResponseUpdate, error) {
	provider := s.Provider()
	if provider == nil {
		return nil, ErrNoProvider
	}

	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.flight.Release(1)

	target, err := s.lookupResponse(responseID)
	if err != nil {
		return nil, err
	}
	if check != nil {
		if err := check(target); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.processing = model.NewProcessingState(true, kind, responseID)
	if pair := s.findPairLocked(target.chatID, responseID); pair != nil {
		setMessageFlag(&pair.Response, kind, true)
	}
	s.mu.Unlock()

	opCtx, cancel := s.operationContext(ctx)
	result, opErr := fn(opCtx, provider, target)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.processing = model.ProcessingState{}
	pair := s.findPairLocked(target.chatID, responseID)
	if pair != nil {
		setMessageFlag(&pair.Response, kind, false)
	}

	if opErr != nil {
		logger.Errorf("%s of %s failed: %v", kind, responseID, opErr)
		s.publisher.Publish(notify.LevelError, fmt.Sprintf("%s failed", operationName(kind)), opErr.Error())
		return nil, fmt.Errorf("%w: %w", ErrOperationFailed, opErr)
	}
	if pair == nil {
		return nil, fmt.Errorf("%w: %s", ErrMessageNotFound, responseID)
	}

	apply(&pair.Response, result)
	s.persistHistoryLocked()

	out := pair.Clone()
	return &model.ResponseUpdate{ChatID: target.chatID, Response: out.Response}, nil
}

func setMessageFlag(resp *model.ResponseMessage, kind model.ProcessingKind, on bool) {
	switch kind {
	case model.ProcessingTranslating:
		resp.ProcessingState.IsTranslating = on
	case model.ProcessingSummarizing:
		resp.ProcessingState.IsSummarizing = on
	}
}

func operationName(kind model.ProcessingKind) string {
	if kind == model.ProcessingTranslating {
		return "Translation"
	}
	return "Summarization"
}

// Translate translates the user message paired with responseID into
// targetLanguage and stores the result on the response.
func (s *ChatService) Translate(ctx context.Context, responseID, targetLanguage string) (*model.ResponseUpdate, error) {
	target := capability.NormalizeCode(targetLanguage)
	if target == "" {
		return nil, fmt.Errorf("%w: target language %q", ErrInvalidPreference, targetLanguage)
	}

	update, err := s.runOnResponse(ctx, responseID, model.ProcessingTranslating,
		func(t *responseTarget) error {
			if t.pair.UserMessage.DetectedLanguage == nil || t.pair.UserMessage.DetectedLanguage.Code == "" {
				return ErrUnknownSourceLanguage
			}
			return nil
		},
		func(ctx context.Context, p capability.Provider, t *responseTarget) (string, error) {
			return p.Translate(ctx, t.pair.UserMessage.Text, t.pair.UserMessage.DetectedLanguage.Code, target)
		},
		func(resp *model.ResponseMessage, result string) {
			resp.Translation = result
		},
	)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.prefs.PreferredTargetLanguage != target {
		s.prefs.PreferredTargetLanguage = target
		s.persistPreferencesLocked()
	}
	s.mu.Unlock()

	return update, nil
}

// Summarize summarizes the user message paired with responseID. Options
// left empty take the stored summarization preferences.
func (s *ChatService) Summarize(ctx context.Context, responseID string, opts model.SummarizeOptions) (*model.ResponseUpdate, error) {
	return s.SummarizeStream(ctx, responseID, opts, nil)
}

// SummarizeStream is Summarize with incremental chunks relayed to onChunk.
func (s *ChatService) SummarizeStream(ctx context.Context, responseID string, opts model.SummarizeOptions, onChunk func(string)) (*model.ResponseUpdate, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	return s.runOnResponse(ctx, responseID, model.ProcessingSummarizing, nil,
		func(ctx context.Context, p capability.Provider, t *responseTarget) (string, error) {
			// defaults as of when the operation runs, not when it was queued
			s.mu.RLock()
			merged := s.prefs.Summarization.Merge(opts)
			s.mu.RUnlock()

			var (
				res *capability.SummaryResult
				err error
			)
			if onChunk != nil {
				res, err = p.SummarizeStream(ctx, t.pair.UserMessage.Text, merged, onChunk)
			} else {
				res, err = p.Summarize(ctx, t.pair.UserMessage.Text, merged)
			}
			if err != nil {
				return "", err
			}
			if res == nil {
				return "", errors.New("summarizer returned no result")
			}
			if res.Status == capability.SummaryError {
				return "", errors.New(res.Error)
			}
			return res.Summary, nil
		},
		func(resp *model.ResponseMessage, result string) {
			resp.Summary = result
		},
	)
}

func validateOptions(opts model.SummarizeOptions) error {
	if opts.Type != "" && !opts.Type.Valid() {
		return fmt.Errorf("%w: summary type %q", ErrInvalidPreference, opts.Type)
	}
	if opts.Length != "" && !opts.Length.Valid() {
		return fmt.Errorf("%w: summary length %q", ErrInvalidPreference, opts.Length)
	}
	if opts.Format != "" && !opts.Format.Valid() {
		return fmt.Errorf("%w: summary format %q", ErrInvalidPreference, opts.Format)
	}
	return nil
}

// State returns a deep copy of the whole store.
func (s *ChatService) State() model.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := model.ChatHistory{Chats: s.chats, CurrentChatID: s.currentID}.Clone()
	return model.AppState{
		Chats:         history.Chats,
		CurrentChatID: s.currentID,
		Processing:    s.processing,
		Preferences:   s.prefs,
	}
}

func (s *ChatService) ListChats() []model.ChatSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ChatSummary, 0, len(s.chats))
	for _, c := range s.chats {
		out = append(out, model.ChatSummary{
			ID:           c.ID,
			Title:        c.Title,
			CreatedAt:    c.CreatedAt,
			MessageCount: len(c.MessagePairs),
			Current:      c.ID == s.currentID,
		})
	}
	return out
}

func (s *ChatService) GetChat(id string) (*model.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrChatNotFound, id)
	}
	chat := s.chats[i].Clone()
	return &chat, nil
}

func (s *ChatService) CurrentChatID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

func (s *ChatService) Processing() model.ProcessingState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processing
}

// ResolveChat maps a chat id from the URL to a chat: a known id is made
// current, anything else falls back to the first chat, and a new chat is
// created when there are none. created reports the last case.
func (s *ChatService) ResolveChat(id string) (chat *model.Chat, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *model.Chat
	if i := s.indexLocked(id); id != "" && i >= 0 {
		target = &s.chats[i]
	} else if len(s.chats) > 0 {
		target = &s.chats[0]
	} else {
		target = s.newChatLocked(s.newID())
		created = true
	}

	if created || s.currentID != target.ID {
		s.currentID = target.ID
		s.persistHistoryLocked()
	}

	out := target.Clone()
	return &out, created
}

// SearchChats matches query case-insensitively against chat titles and
// message texts. An empty query lists every chat.
func (s *ChatService) SearchChats(query string) []model.ChatMatch {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.ChatMatch{}
	for _, c := range s.chats {
		m := model.ChatMatch{ID: c.ID, Title: c.Title, Messages: []model.MessageMatch{}}
		if q == "" {
			out = append(out, m)
			continue
		}

		m.TitleMatch = strings.Contains(strings.ToLower(c.Title), q)
		for _, p := range c.MessagePairs {
			if pairMatches(p, q) {
				m.Messages = append(m.Messages, model.MessageMatch{
					UserMessage: p.UserMessage.Text,
					Response:    p.Response.Text,
				})
			}
		}

		if m.TitleMatch || len(m.Messages) > 0 {
			out = append(out, m)
		}
	}
	return out
}

func pairMatches(p model.MessagePair, q string) bool {
	for _, text := range []string{p.UserMessage.Text, p.Response.Text} {
		if strings.Contains(strings.ToLower(text), q) {
			return true
		}
	}
	return false
}

func (s *ChatService) Preferences() model.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// UpdateSummarizationPreferences merges patch into the stored preferences.
func (s *ChatService) UpdateSummarizationPreferences(patch model.SummarizationPreferencesPatch) (model.SummarizationPreferences, error) {
	if patch.DefaultType != nil && !patch.DefaultType.Valid() {
		return model.SummarizationPreferences{}, fmt.Errorf("%w: summary type %q", ErrInvalidPreference, *patch.DefaultType)
	}
	if patch.DefaultLength != nil && !patch.DefaultLength.Valid() {
		return model.SummarizationPreferences{}, fmt.Errorf("%w: summary length %q", ErrInvalidPreference, *patch.DefaultLength)
	}
	if patch.DefaultFormat != nil && !patch.DefaultFormat.Valid() {
		return model.SummarizationPreferences{}, fmt.Errorf("%w: summary format %q", ErrInvalidPreference, *patch.DefaultFormat)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs.Summarization = s.prefs.Summarization.Apply(patch)
	s.persistPreferencesLocked()
	return s.prefs.Summarization, nil
}

func (s *ChatService) ResetSummarizationPreferences() model.SummarizationPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs.Summarization = model.DefaultSummarizationPreferences()
	s.persistPreferencesLocked()
	return s.prefs.Summarization
}

func (s *ChatService) SetPreferredTargetLanguage(code string) error {
	normalized := capability.NormalizeCode(code)
	if !capability.IsSupportedLanguage(normalized) {
		return fmt.Errorf("%w: target language %q", ErrInvalidPreference, code)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs.PreferredTargetLanguage = normalized
	s.persistPreferencesLocked()
	return nil
}

// Backup snapshots the underlying storage.
func (s *ChatService) Backup() error {
	return s.store.Backup()
}
