package model

type ChatResponse struct {
	Chat    *Chat `json:"chat"`
	Current bool  `json:"current"`
	Created bool  `json:"created,omitempty"`
}

type SendMessageResponse struct {
	ChatID string      `json:"chat_id"`
	Pair   MessagePair `json:"pair"`
}

type ResponseUpdate struct {
	ChatID   string          `json:"chat_id"`
	Response ResponseMessage `json:"response"`
}

// StreamChunk is one incremental piece of a streamed summary.
type StreamChunk struct {
	ResponseID string `json:"response_id"`
	Content    string `json:"content"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Skipped bool   `json:"skipped,omitempty"`
}
