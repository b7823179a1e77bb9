package service

import (
	"errors"
	"fmt"
)

// ErrSkipped marks a command that did nothing because a precondition did
// not hold. It is not a failure.
var ErrSkipped = errors.New("skipped")

var (
	ErrEmptyMessage          = fmt.Errorf("%w: message is blank", ErrSkipped)
	ErrNoProvider            = fmt.Errorf("%w: no AI capability provider registered", ErrSkipped)
	ErrNoCurrentChat         = fmt.Errorf("%w: no current chat", ErrSkipped)
	ErrMessageNotFound       = fmt.Errorf("%w: message not found", ErrSkipped)
	ErrUnknownSourceLanguage = fmt.Errorf("%w: source language unknown", ErrSkipped)
)

var (
	ErrOperationFailed   = errors.New("operation failed")
	ErrChatNotFound      = errors.New("chat not found")
	ErrEmptyTitle        = errors.New("title is empty")
	ErrInvalidPreference = errors.New("invalid preference")
	ErrProfileExists     = errors.New("user already onboarded")
	ErrInvalidProfile    = errors.New("invalid profile")
)

// IsSkipped reports whether err is a precondition skip rather than a failure.
func IsSkipped(err error) bool {
	return errors.Is(err, ErrSkipped)
}
