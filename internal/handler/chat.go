package handler

import (
	"net/http"

	"lingochat-backend/internal/model"
	"lingochat-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

func (h *ChatHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.chatService.State())
}

func (h *ChatHandler) CreateChat(c *gin.Context) {
	id := h.chatService.CreateNewChat()

	chat, err := h.chatService.GetChat(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.ChatResponse{Chat: chat, Current: true, Created: true})
}

func (h *ChatHandler) ListChats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"chats":           h.chatService.ListChats(),
		"current_chat_id": h.chatService.CurrentChatID(),
	})
}

func (h *ChatHandler) SearchChats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"query":   c.Query("q"),
		"results": h.chatService.SearchChats(c.Query("q")),
	})
}

// GetChat is read-only: it never switches the current chat.
func (h *ChatHandler) GetChat(c *gin.Context) {
	id := c.Param("chat_id")
	chat, err := h.chatService.GetChat(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ChatResponse{Chat: chat, Current: id == h.chatService.CurrentChatID()})
}

// OpenChat resolves the chat id of a page URL and makes it current. Unknown
// ids fall back to the first chat, so the client should follow the returned id.
func (h *ChatHandler) OpenChat(c *gin.Context) {
	chat, created := h.chatService.ResolveChat(c.Param("chat_id"))
	c.JSON(http.StatusOK, model.ChatResponse{Chat: chat, Current: true, Created: created})
}

func (h *ChatHandler) UpdateChatTitle(c *gin.Context) {
	var req model.UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.chatService.UpdateChatTitle(c.Param("chat_id"), req.Title); err != nil {
		respondError(c, err)
		return
	}

	chat, err := h.chatService.GetChat(c.Param("chat_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

func (h *ChatHandler) DeleteChat(c *gin.Context) {
	if err := h.chatService.DeleteChat(c.Param("chat_id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Chat deleted successfully",
		"current_chat_id": h.chatService.CurrentChatID(),
	})
}

func (h *ChatHandler) GetProcessing(c *gin.Context) {
	c.JSON(http.StatusOK, h.chatService.Processing())
}
