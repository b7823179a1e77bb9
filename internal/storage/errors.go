package storage

import "errors"

var (
	ErrProfileNotFound = errors.New("user profile not found")
	ErrInvalidData     = errors.New("invalid data")
	ErrStorageInit     = errors.New("storage initialization failed")
	ErrFileOperation   = errors.New("file operation failed")
	ErrDatabase        = errors.New("database operation failed")
)
