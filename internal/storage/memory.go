package storage

import (
	"sync"
	"time"

	"lingochat-backend/internal/model"
)

type MemoryStorage struct {
	history *model.ChatHistory
	prefs   *model.Preferences
	profile *model.UserProfile
	mu      sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Init() error {
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

func (m *MemoryStorage) Backup() error {
	return nil
}

func (m *MemoryStorage) LoadHistory() (*model.ChatHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.history == nil {
		return &model.ChatHistory{Chats: []model.Chat{}}, nil
	}

	history := m.history.Clone()
	normalizeHistory(&history, time.Now())
	return &history, nil
}

func (m *MemoryStorage) SaveHistory(history *model.ChatHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := history.Clone()
	m.history = &clone
	return nil
}

func (m *MemoryStorage) LoadPreferences() (*model.Preferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.prefs == nil {
		prefs := model.DefaultPreferences()
		return &prefs, nil
	}

	prefs := *m.prefs
	return &prefs, nil
}

func (m *MemoryStorage) SavePreferences(prefs *model.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *prefs
	m.prefs = &stored
	return nil
}

func (m *MemoryStorage) LoadProfile() (*model.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.profile == nil {
		return nil, ErrProfileNotFound
	}

	profile := *m.profile
	return &profile, nil
}

func (m *MemoryStorage) SaveProfile(profile *model.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *profile
	m.profile = &stored
	return nil
}
