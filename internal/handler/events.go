package handler

import (
	"fmt"
	"time"

	"lingochat-backend/internal/notify"
	"lingochat-backend/internal/utils"
	"lingochat-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

const heartbeatInterval = 30 * time.Second

type EventsHandler struct {
	hub *notify.Hub
}

func NewEventsHandler(hub *notify.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream relays notifications as server-sent events until the client goes
// away. A heartbeat keeps idle connections open.
func (h *EventsHandler) Stream(c *gin.Context) {
	events, cancel := h.hub.Subscribe()
	defer cancel()

	sse := utils.NewSSEWriter(c.Writer)
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case n, ok := <-events:
			if !ok {
				return
			}
			if err := sse.WriteJSON("notification", n); err != nil {
				logger.Warnf("Failed to write notification: %v", err)
				return
			}
		case t := <-heartbeat.C:
			if err := sse.Comment(fmt.Sprintf("heartbeat %d", t.Unix())); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
