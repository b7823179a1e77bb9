package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"lingochat-backend/internal/config"
	"lingochat-backend/internal/model"
	"lingochat-backend/pkg/logger"
)

const (
	historyDocument     = "chat-storage"
	preferencesDocument = "preferences"
	profileDocument     = "user"
)

// Open builds the configured backend and falls back to memory when it
// cannot be initialized.
func Open(cfg config.StorageConfig) Storage {
	var store Storage

	switch cfg.Type {
	case "disk":
		store = NewDiskStorage(cfg.DataDir)
	case "sqlite":
		store = NewSQLiteStorage(cfg.DataDir)
	default:
		store = NewMemoryStorage()
	}

	if err := store.Init(); err != nil {
		logger.Errorf("Failed to initialize %s storage, falling back to memory: %v", cfg.Type, err)
		store = NewMemoryStorage()
		store.Init()
	}

	return store
}

// decodeHistory parses a stored chat history and upgrades legacy shapes:
// chats stored before titles and creation times existed get defaults, and
// in-flight flags left over from a previous run are cleared.
func decodeHistory(data []byte, loadedAt time.Time) (*model.ChatHistory, error) {
	var history model.ChatHistory
	if len(data) > 0 {
		if err := json.Unmarshal(data, &history); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
	}
	normalizeHistory(&history, loadedAt)
	return &history, nil
}

func normalizeHistory(history *model.ChatHistory, loadedAt time.Time) {
	if history.Chats == nil {
		history.Chats = []model.Chat{}
	}

	n := len(history.Chats)
	for i := range history.Chats {
		chat := &history.Chats[i]
		if chat.Title == "" {
			// chats are prepended, so the oldest one is "Chat 1"
			chat.Title = model.DefaultChatTitle(n - i)
		}
		if chat.CreatedAt.IsZero() {
			chat.CreatedAt = loadedAt
		}
		if chat.MessagePairs == nil {
			chat.MessagePairs = []model.MessagePair{}
		}
		for j := range chat.MessagePairs {
			pair := &chat.MessagePairs[j]
			pair.UserMessage.IsUser = true
			pair.Response.IsUser = false
			pair.Response.ProcessingState = model.MessageProcessing{}
		}
	}
}

// decodePreferences overlays the stored document on the defaults so that
// fields missing from older documents keep their default values.
func decodePreferences(data []byte) (*model.Preferences, error) {
	prefs := model.DefaultPreferences()
	if len(data) > 0 {
		if err := json.Unmarshal(data, &prefs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
	}
	defaults := model.DefaultSummarizationPreferences()
	if !prefs.Summarization.DefaultType.Valid() {
		prefs.Summarization.DefaultType = defaults.DefaultType
	}
	if !prefs.Summarization.DefaultLength.Valid() {
		prefs.Summarization.DefaultLength = defaults.DefaultLength
	}
	if !prefs.Summarization.DefaultFormat.Valid() {
		prefs.Summarization.DefaultFormat = defaults.DefaultFormat
	}
	if prefs.PreferredTargetLanguage == "" {
		prefs.PreferredTargetLanguage = model.DefaultTargetLanguage
	}
	return &prefs, nil
}

func decodeProfile(data []byte) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return &profile, nil
}
