package handler

import (
	"net/http"

	"lingochat-backend/internal/model"
	"lingochat-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type PreferencesHandler struct {
	chatService *service.ChatService
}

func NewPreferencesHandler(chatService *service.ChatService) *PreferencesHandler {
	return &PreferencesHandler{chatService: chatService}
}

func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, h.chatService.Preferences())
}

func (h *PreferencesHandler) GetSummarization(c *gin.Context) {
	c.JSON(http.StatusOK, h.chatService.Preferences().Summarization)
}

func (h *PreferencesHandler) UpdateSummarization(c *gin.Context) {
	var patch model.SummarizationPreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	prefs, err := h.chatService.UpdateSummarizationPreferences(patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *PreferencesHandler) ResetSummarization(c *gin.Context) {
	c.JSON(http.StatusOK, h.chatService.ResetSummarizationPreferences())
}

func (h *PreferencesHandler) SetTargetLanguage(c *gin.Context) {
	var req model.TargetLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.chatService.SetPreferredTargetLanguage(req.TargetLanguage); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.chatService.Preferences())
}
