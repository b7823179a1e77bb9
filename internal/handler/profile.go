package handler

import (
	"net/http"

	"lingochat-backend/internal/model"
	"lingochat-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	userService *service.UserService
}

func NewProfileHandler(userService *service.UserService) *ProfileHandler {
	return &ProfileHandler{userService: userService}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.userService.Profile()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) Onboard(c *gin.Context) {
	var req model.OnboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.userService.Onboard(c.Request.Context(), req.Name, req.Email, req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var patch model.UserProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.userService.UpdateProfile(patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) Avatars(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"avatars": h.userService.AvatarOptions()})
}
