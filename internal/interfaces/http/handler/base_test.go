package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/affiliate/backend/internal/domain/affiliate"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/interfaces/http/dto"
	"github.com/affiliate/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

const testUserID = "user-123"

// withUser simulates JWTAuth having run
func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, userID)
		c.Set(middleware.JWTNameKey, "Alex Johnson")
		c.Next()
	}
}

func newTestRouter(userID string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	if userID != "" {
		r.Use(withUser(userID))
	}
	return r
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "not found",
			err:        shared.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrCodeNotFound,
		},
		{
			name:       "invalid state",
			err:        shared.NewDomainError("INVALID_STATE", "cannot share in step 2"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeInvalidState,
			wantMsg:    "cannot share in step 2",
		},
		{
			name:       "wrapped upstream unavailable",
			err:        fmt.Errorf("save profile: %w", affiliate.ErrUpstreamUnavailable),
			wantStatus: http.StatusBadGateway,
			wantCode:   dto.ErrCodeUpstreamUnavailable,
		},
		{
			name:       "platform message is surfaced",
			err:        affiliate.Rejected("Email already registered"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeUpstreamRejected,
			wantMsg:    "Email already registered",
		},
		{
			name:       "session closed",
			err:        shared.ErrSessionClosed,
			wantStatus: http.StatusGone,
			wantCode:   dto.ErrCodeSessionClosed,
		},
		{
			name:       "unknown error is hidden",
			err:        errors.New("redis: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
			wantMsg:    "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			r := newTestRouter("")
			r.GET("/err", func(c *gin.Context) { h.HandleError(c, tt.err) })

			w := doRequest(r, http.MethodGet, "/err", "")
			assert.Equal(t, tt.wantStatus, w.Code)

			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, resp.Error.Message)
			}
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestBaseHandler_HandleError_Validation(t *testing.T) {
	h := &BaseHandler{}
	r := newTestRouter("")
	r.GET("/err", func(c *gin.Context) {
		h.HandleError(c, shared.NewValidationError(map[string]string{
			"phone": "Phone number is required",
			"email": "Email must contain @",
		}))
	})

	w := doRequest(r, http.MethodGet, "/err", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "email", resp.Error.Details[0].Field)
	assert.Equal(t, "phone", resp.Error.Details[1].Field)
}

func TestBaseHandler_HandleError_Nil(t *testing.T) {
	h := &BaseHandler{}
	r := newTestRouter("")
	r.GET("/ok", func(c *gin.Context) {
		h.HandleError(c, nil)
		if !c.Writer.Written() {
			c.Status(http.StatusNoContent)
		}
	})

	assert.Equal(t, http.StatusNoContent, doRequest(r, http.MethodGet, "/ok", "").Code)
}

func TestBaseHandler_ParseSessionID(t *testing.T) {
	h := &BaseHandler{}
	r := newTestRouter("")
	r.GET("/sessions/:id", func(c *gin.Context) {
		if id, ok := h.parseSessionID(c); ok {
			h.Success(c, id.String())
		}
	})

	w := doRequest(r, http.MethodGet, "/sessions/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, decode(t, w).Error.Code)

	w = doRequest(r, http.MethodGet, "/sessions/6f1c2d8e-3b4a-4c5d-8e9f-0a1b2c3d4e5f", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "6f1c2d8e-3b4a-4c5d-8e9f-0a1b2c3d4e5f", decode(t, w).Data)
}
