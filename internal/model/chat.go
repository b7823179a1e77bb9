package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ResponsePrompt is the fixed text of every response message.
const ResponsePrompt = "What would you like to do with this text?"

type DetectedLanguage struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type UserMessage struct {
	ID               string            `json:"id"`
	IsUser           bool              `json:"isUser"`
	Text             string            `json:"text"`
	DetectedLanguage *DetectedLanguage `json:"detectedLanguage,omitempty"`
}

// MessageProcessing holds the per-response in-flight flags.
type MessageProcessing struct {
	IsTranslating bool `json:"isTranslating"`
	IsSummarizing bool `json:"isSummarizing"`
}

type ResponseMessage struct {
	ID               string            `json:"id"`
	IsUser           bool              `json:"isUser"`
	Text             string            `json:"text"`
	DetectedLanguage *DetectedLanguage `json:"detectedLanguage,omitempty"`
	Translation      string            `json:"translation,omitempty"`
	Summary          string            `json:"summary,omitempty"`
	ProcessingState  MessageProcessing `json:"processingState"`
}

type MessagePair struct {
	UserMessage UserMessage     `json:"userMessage"`
	Response    ResponseMessage `json:"response"`
}

type Chat struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	CreatedAt    time.Time     `json:"createdAt"`
	MessagePairs []MessagePair `json:"messagePairs"`
}

// UnmarshalJSON accepts createdAt as an RFC 3339 string or as epoch
// milliseconds, which is how older clients stored it.
func (c *Chat) UnmarshalJSON(data []byte) error {
	type plain Chat
	aux := struct {
		*plain
		CreatedAt json.RawMessage `json:"createdAt"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	createdAt, err := parseTimestamp(aux.CreatedAt)
	if err != nil {
		return fmt.Errorf("chat %q: createdAt: %w", c.ID, err)
	}
	c.CreatedAt = createdAt
	return nil
}

func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, err
		}
		if s == "" {
			return time.Time{}, nil
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, nil
		}
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
		}
		return time.UnixMilli(ms), nil
	}

	ms, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %s", raw)
	}
	return time.UnixMilli(int64(ms)), nil
}

// DefaultChatTitle is the title given to the n-th chat (1-based).
func DefaultChatTitle(n int) string {
	return fmt.Sprintf("Chat %d", n)
}

// ChatHistory is the persisted chat document.
type ChatHistory struct {
	Chats         []Chat `json:"chats"`
	CurrentChatID string `json:"currentChatId,omitempty"`
}

type ProcessingKind string

const (
	ProcessingNone        ProcessingKind = ""
	ProcessingTranslating ProcessingKind = "translating"
	ProcessingSummarizing ProcessingKind = "summarizing"
)

// ProcessingState is the global in-flight indicator.
type ProcessingState struct {
	IsProcessing        bool   `json:"isProcessing"`
	IsTranslating       bool   `json:"isTranslating"`
	IsSummarizing       bool   `json:"isSummarizing"`
	CurrentProcessingID string `json:"currentProcessingId,omitempty"`
}

func NewProcessingState(processing bool, kind ProcessingKind, id string) ProcessingState {
	st := ProcessingState{
		IsProcessing:  processing,
		IsTranslating: processing && kind == ProcessingTranslating,
		IsSummarizing: processing && kind == ProcessingSummarizing,
	}
	if processing {
		st.CurrentProcessingID = id
	}
	return st
}

// Clone returns a deep copy of the chat.
func (c Chat) Clone() Chat {
	out := c
	out.MessagePairs = make([]MessagePair, len(c.MessagePairs))
	for i, p := range c.MessagePairs {
		out.MessagePairs[i] = p.Clone()
	}
	return out
}

func (p MessagePair) Clone() MessagePair {
	out := p
	if p.UserMessage.DetectedLanguage != nil {
		dl := *p.UserMessage.DetectedLanguage
		out.UserMessage.DetectedLanguage = &dl
	}
	if p.Response.DetectedLanguage != nil {
		dl := *p.Response.DetectedLanguage
		out.Response.DetectedLanguage = &dl
	}
	return out
}

func (h ChatHistory) Clone() ChatHistory {
	out := ChatHistory{
		Chats:         make([]Chat, len(h.Chats)),
		CurrentChatID: h.CurrentChatID,
	}
	for i, c := range h.Chats {
		out.Chats[i] = c.Clone()
	}
	return out
}

// ChatSummary is the sidebar listing entry.
type ChatSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"createdAt"`
	MessageCount int       `json:"messageCount"`
	Current      bool      `json:"current"`
}

type MessageMatch struct {
	UserMessage string `json:"userMessage"`
	Response    string `json:"response"`
}

type ChatMatch struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	TitleMatch bool           `json:"titleMatch"`
	Messages   []MessageMatch `json:"messages"`
}

// AppState is a full snapshot of the chat store.
type AppState struct {
	Chats         []Chat          `json:"chats"`
	CurrentChatID string          `json:"currentChatId,omitempty"`
	Processing    ProcessingState `json:"processing"`
	Preferences   Preferences     `json:"preferences"`
}
