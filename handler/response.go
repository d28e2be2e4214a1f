package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/meninojhony/modec-challenger/service"
)

// apiError writes the structured error envelope every client of this API
// parses: {"error": {"code": ..., "message": ...}}.
func apiError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// fail translates service errors into the envelope.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		apiError(c, http.StatusNotFound, "NotFoundError", sentinelMessage(err, service.ErrNotFound))
	case errors.Is(err, service.ErrConflict):
		apiError(c, http.StatusConflict, "ConflictError", sentinelMessage(err, service.ErrConflict))
	case errors.Is(err, service.ErrInvalid):
		apiError(c, http.StatusBadRequest, "ValidationError", sentinelMessage(err, service.ErrInvalid))
	default:
		apiError(c, http.StatusInternalServerError, "InternalServerError", "An unexpected error occurred")
	}
}

// sentinelMessage strips the sentinel prefix so the envelope carries only
// the human-readable part.
func sentinelMessage(err error, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}
