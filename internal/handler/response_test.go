package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/errors"
)

func TestError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperrors.NewValidation("bad input", nil), http.StatusBadRequest},
		{"not found", apperrors.NewNotFound("appointment", nil), http.StatusNotFound},
		{"slot unavailable", apperrors.NewSlotUnavailable(nil), http.StatusConflict},
		{"conflict", apperrors.NewConflict("cannot cancel", nil), http.StatusConflict},
		{"reschedule window expired", apperrors.NewRescheduleWindowExpired(nil), http.StatusUnprocessableEntity},
		{"transient store", apperrors.NewTransientStore(nil), http.StatusServiceUnavailable},
		{"internal", apperrors.NewInternal(nil), http.StatusInternalServerError},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			Error(c, tc.err)

			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), `"status":"error"`)
		})
	}
}

func TestError_UntypedErrorDoesNotLeak(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, errors.New("pq: connection reset by peer"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, http.StatusCreated, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"success"`)
	assert.Contains(t, w.Body.String(), `"id":"abc"`)
}
