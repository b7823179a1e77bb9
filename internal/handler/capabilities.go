package handler

import (
	"net/http"

	"lingochat-backend/internal/capability"
	"lingochat-backend/internal/service"

	"github.com/gin-gonic/gin"
)

const remediation = "Enable translation, language detection and summarization in the capabilities " +
	"section of the configuration, check the model provider credentials, then restart the server."

func currentCapabilities(chatService *service.ChatService) capability.Capabilities {
	if p := chatService.Provider(); p != nil {
		return p.Capabilities()
	}
	return capability.Capabilities{}
}

type CapabilitiesHandler struct {
	chatService *service.ChatService
}

func NewCapabilitiesHandler(chatService *service.ChatService) *CapabilitiesHandler {
	return &CapabilitiesHandler{chatService: chatService}
}

func (h *CapabilitiesHandler) Get(c *gin.Context) {
	caps := currentCapabilities(h.chatService)

	resp := gin.H{
		"capabilities": caps,
		"supported":    caps.All(),
		"languages":    capability.SupportedLanguages,
	}
	if !caps.All() {
		resp["missing"] = caps.Missing()
		resp["remediation"] = remediation
	}
	c.JSON(http.StatusOK, resp)
}

// RequireCapabilities answers 503 with remediation text when any AI
// capability is missing.
func RequireCapabilities(chatService *service.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caps := currentCapabilities(chatService)
		if caps.All() {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error":       "AI capabilities not supported on this server",
			"missing":     caps.Missing(),
			"remediation": remediation,
		})
	}
}
