package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lingochat-backend/internal/model"
	"lingochat-backend/pkg/logger"

	_ "modernc.org/sqlite"
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	name       TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLiteStorage keeps the documents as JSON rows of a single table.
type SQLiteStorage struct {
	dataDir string
	db      *sql.DB
}

func NewSQLiteStorage(dataDir string) *SQLiteStorage {
	return &SQLiteStorage{dataDir: dataDir}
}

func (s *SQLiteStorage) path() string {
	return filepath.Join(s.dataDir, "lingochat.db")
}

func (s *SQLiteStorage) Init() error {
	if err := os.MkdirAll(filepath.Join(s.dataDir, "backup"), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite", s.path())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	// one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		documentsSchema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("%w: %v", ErrStorageInit, err)
		}
	}

	s.db = db
	logger.Infof("SQLite storage initialized at %s", s.path())
	return nil
}

func (s *SQLiteStorage) readDocument(name string) ([]byte, error) {
	var body string
	err := s.db.QueryRow("SELECT body FROM documents WHERE name = ?", name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return []byte(body), nil
}

func (s *SQLiteStorage) writeDocument(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	_, err = s.db.Exec(`INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		name, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return nil
}

func (s *SQLiteStorage) LoadHistory() (*model.ChatHistory, error) {
	data, err := s.readDocument(historyDocument)
	if err != nil {
		return nil, err
	}
	return decodeHistory(data, time.Now())
}

func (s *SQLiteStorage) SaveHistory(history *model.ChatHistory) error {
	return s.writeDocument(historyDocument, history)
}

func (s *SQLiteStorage) LoadPreferences() (*model.Preferences, error) {
	data, err := s.readDocument(preferencesDocument)
	if err != nil {
		return nil, err
	}
	return decodePreferences(data)
}

func (s *SQLiteStorage) SavePreferences(prefs *model.Preferences) error {
	return s.writeDocument(preferencesDocument, prefs)
}

func (s *SQLiteStorage) LoadProfile() (*model.UserProfile, error) {
	data, err := s.readDocument(profileDocument)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrProfileNotFound
	}
	return decodeProfile(data)
}

func (s *SQLiteStorage) SaveProfile(profile *model.UserProfile) error {
	return s.writeDocument(profileDocument, profile)
}

func (s *SQLiteStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Backup writes a consistent copy of the database with VACUUM INTO.
func (s *SQLiteStorage) Backup() error {
	target := filepath.Join(s.dataDir, "backup", fmt.Sprintf("lingochat_%d.db", time.Now().UnixNano()))
	if _, err := s.db.Exec("VACUUM INTO ?", target); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	logger.Infof("Backup completed: %s", target)
	return nil
}
