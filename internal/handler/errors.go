package handler

import (
	"context"
	"errors"
	"net/http"

	"lingochat-backend/internal/capability"
	"lingochat-backend/internal/model"
	"lingochat-backend/internal/service"
	"lingochat-backend/internal/storage"
	"lingochat-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case service.IsSkipped(err):
		return http.StatusConflict
	case errors.Is(err, service.ErrEmptyTitle),
		errors.Is(err, service.ErrInvalidPreference),
		errors.Is(err, service.ErrInvalidProfile),
		errors.Is(err, capability.ErrUnsupportedPair):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrChatNotFound),
		errors.Is(err, storage.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrProfileExists):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, capability.ErrCapabilityUnsupported),
		errors.Is(err, capability.ErrCapabilityUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrOperationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, model.ErrorResponse{
		Error:   err.Error(),
		Skipped: service.IsSkipped(err),
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
}
