package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"lingochat-backend/internal/model"
	"lingochat-backend/pkg/logger"
)

// DiskStorage keeps each document in its own JSON file under dataDir.
type DiskStorage struct {
	dataDir string
	mu      sync.RWMutex
}

func NewDiskStorage(dataDir string) *DiskStorage {
	return &DiskStorage{
		dataDir: dataDir,
	}
}

func (d *DiskStorage) Init() error {
	dirs := []string{
		d.dataDir,
		filepath.Join(d.dataDir, "backup"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageInit, err)
		}
	}

	logger.Infof("Disk storage initialized at %s", d.dataDir)
	return nil
}

func (d *DiskStorage) documentPath(name string) string {
	return filepath.Join(d.dataDir, name+".json")
}

// readDocument returns nil data when the document does not exist yet.
func (d *DiskStorage) readDocument(name string) ([]byte, error) {
	data, err := os.ReadFile(d.documentPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrFileOperation, err)
	}
	return data, nil
}

func (d *DiskStorage) writeDocument(name string, v interface{}) error {
	path := d.documentPath(name)
	tempPath := path + ".tmp"

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	return nil
}

func (d *DiskStorage) LoadHistory() (*model.ChatHistory, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, err := d.readDocument(historyDocument)
	if err != nil {
		return nil, err
	}
	return decodeHistory(data, time.Now())
}

func (d *DiskStorage) SaveHistory(history *model.ChatHistory) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.writeDocument(historyDocument, history)
}

func (d *DiskStorage) LoadPreferences() (*model.Preferences, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, err := d.readDocument(preferencesDocument)
	if err != nil {
		return nil, err
	}
	return decodePreferences(data)
}

func (d *DiskStorage) SavePreferences(prefs *model.Preferences) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.writeDocument(preferencesDocument, prefs)
}

func (d *DiskStorage) LoadProfile() (*model.UserProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, err := d.readDocument(profileDocument)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrProfileNotFound
	}
	return decodeProfile(data)
}

func (d *DiskStorage) SaveProfile(profile *model.UserProfile) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.writeDocument(profileDocument, profile)
}

func (d *DiskStorage) Close() error {
	return nil
}

// Backup copies every existing document into backup/backup_<unix>.
func (d *DiskStorage) Backup() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	backupDir := filepath.Join(d.dataDir, "backup", fmt.Sprintf("backup_%d", time.Now().UnixNano()))
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	for _, name := range []string{historyDocument, preferencesDocument, profileDocument} {
		src := d.documentPath(name)
		data, err := os.ReadFile(src)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("%w: %v", ErrFileOperation, err)
		}
		if err := os.WriteFile(filepath.Join(backupDir, filepath.Base(src)), data, 0644); err != nil {
			return fmt.Errorf("%w: %v", ErrFileOperation, err)
		}
	}

	logger.Infof("Backup completed: %s", backupDir)
	return nil
}
