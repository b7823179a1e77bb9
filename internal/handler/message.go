package handler

import (
	"errors"
	"io"
	"net/http"

	"lingochat-backend/internal/model"
	"lingochat-backend/internal/service"
	"lingochat-backend/internal/utils"
	"lingochat-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	chatService *service.ChatService
}

func NewMessageHandler(chatService *service.ChatService) *MessageHandler {
	return &MessageHandler{chatService: chatService}
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	chatID, pair, err := h.chatService.SendMessage(c.Request.Context(), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.SendMessageResponse{ChatID: chatID, Pair: *pair})
}

func (h *MessageHandler) Translate(c *gin.Context) {
	var req model.TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	if req.TargetLanguage == "" {
		req.TargetLanguage = h.chatService.Preferences().PreferredTargetLanguage
	}

	update, err := h.chatService.Translate(c.Request.Context(), c.Param("response_id"), req.TargetLanguage)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, update)
}

// Summarize stores a summary on the response. With ?stream=1 the summary is
// streamed as server-sent events: "chunk" events, then "done" or "error".
func (h *MessageHandler) Summarize(c *gin.Context) {
	var req model.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	responseID := c.Param("response_id")

	if c.Query("stream") == "" || c.Query("stream") == "0" {
		update, err := h.chatService.Summarize(c.Request.Context(), responseID, req.Options)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, update)
		return
	}

	sse := utils.NewSSEWriter(c.Writer)
	update, err := h.chatService.SummarizeStream(c.Request.Context(), responseID, req.Options, func(chunk string) {
		if werr := sse.WriteJSON("chunk", model.StreamChunk{ResponseID: responseID, Content: chunk}); werr != nil {
			logger.Warnf("Failed to write summary chunk: %v", werr)
		}
	})
	if err != nil {
		sse.WriteJSON("error", model.ErrorResponse{Error: err.Error(), Skipped: service.IsSkipped(err)})
		sse.Close()
		return
	}

	sse.WriteJSON("done", update)
	sse.Close()
}
