package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/errors"
)

// Success writes the standard success envelope.
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"status": "success", "data": data})
}

// Error maps an application error to an HTTP status and writes the error
// envelope. Untyped errors become 500 without leaking internals.
func Error(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	status := http.StatusInternalServerError
	message := "internal server error"

	if errors.As(err, &appErr) {
		message = appErr.Message
		switch appErr.Code {
		case apperrors.ErrValidation:
			status = http.StatusBadRequest
		case apperrors.ErrNotFound:
			status = http.StatusNotFound
		case apperrors.ErrSlotUnavailable, apperrors.ErrConflict:
			status = http.StatusConflict
		case apperrors.ErrRescheduleWindowExpired:
			status = http.StatusUnprocessableEntity
		case apperrors.ErrTransientStore:
			status = http.StatusServiceUnavailable
		default:
			status = http.StatusInternalServerError
			message = "internal server error"
		}
	}

	c.JSON(status, gin.H{"status": "error", "message": message})
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": message})
}
