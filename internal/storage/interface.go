package storage

import (
	"lingochat-backend/internal/model"
)

// Storage persists the three documents of the application: the chat
// history, the preferences and the user profile. Missing history and
// preferences load as empty/default values; a missing profile is
// ErrProfileNotFound.
type Storage interface {
	// chat history
	LoadHistory() (*model.ChatHistory, error)
	SaveHistory(history *model.ChatHistory) error

	// preferences
	LoadPreferences() (*model.Preferences, error)
	SavePreferences(prefs *model.Preferences) error

	// user profile
	LoadProfile() (*model.UserProfile, error)
	SaveProfile(profile *model.UserProfile) error

	// lifecycle
	Init() error
	Close() error
	Backup() error
}
