package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestWithDetails_DoesNotMutateSentinel(t *testing.T) {
	e := ErrInsufficientStock.WithDetails(map[string]any{"available": 2})

	assert.Nil(t, ErrInsufficientStock.Details)
	assert.Equal(t, 2, e.Details["available"])
	assert.True(t, stderrors.Is(e, ErrInsufficientStock))
	assert.False(t, stderrors.Is(e, ErrValidation))
}

func TestWrap_KeepsCauseAndIdentity(t *testing.T) {
	cause := fmt.Errorf("dial tcp: timeout")
	e := ErrServiceUnavailable.Wrap(cause)

	assert.Nil(t, ErrServiceUnavailable.Err)
	assert.ErrorIs(t, e, ErrServiceUnavailable)
	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.Error(), "timeout")
}

func TestFrom(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrNotFound)
	assert.Equal(t, http.StatusNotFound, From(wrapped).Code)
	assert.Equal(t, http.StatusInternalServerError, From(stderrors.New("x")).Code)
}

func TestErrorMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorMiddleware())
	r.GET("/x", func(c *gin.Context) {
		_ = c.Error(ErrValidation.WithDetails(map[string]any{"quantity": "must be at least 1"}))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Validation error","details":{"quantity":"must be at least 1"}}`, w.Body.String())
}
