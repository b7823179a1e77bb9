package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrStreamClosed = errors.New("event stream closed")

// SSEWriter writes numbered server-sent events and flushes after each one.
// Not safe for concurrent use.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
	closed  bool
}

func NewSSEWriter(w http.ResponseWriter) *SSEWriter {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, _ := w.(http.Flusher)
	return &SSEWriter{w: w, flusher: flusher}
}

// Write sends one event. Multi-line data is split into several data lines
// so that newlines in model output survive the framing.
func (s *SSEWriter) Write(event, data string) error {
	if s.closed {
		return ErrStreamClosed
	}

	s.nextID++
	var b strings.Builder
	fmt.Fprintf(&b, "id: %d\n", s.nextID)
	if event != "" {
		fmt.Fprintf(&b, "event: %s\n", event)
	}
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", strings.TrimSuffix(line, "\r"))
	}
	b.WriteString("\n")

	return s.send(b.String())
}

func (s *SSEWriter) WriteJSON(event string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Write(event, string(data))
}

// Comment sends a comment line, which clients ignore. Used as keep-alive.
func (s *SSEWriter) Comment(text string) error {
	if s.closed {
		return ErrStreamClosed
	}
	return s.send(": " + text + "\n\n")
}

// Close sends the [DONE] terminator. Later writes fail with ErrStreamClosed.
func (s *SSEWriter) Close() error {
	if s.closed {
		return nil
	}
	err := s.Write("", "[DONE]")
	s.closed = true
	return err
}

func (s *SSEWriter) send(frame string) error {
	if _, err := s.w.Write([]byte(frame)); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}
