package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		store      Pinger
		wantStatus int
		wantState  string
	}{
		{name: "no store", wantStatus: http.StatusOK, wantState: "ok"},
		{name: "store reachable", store: pingerFunc(func(context.Context) error { return nil }), wantStatus: http.StatusOK, wantState: "ok"},
		{name: "store down", store: pingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") }), wantStatus: http.StatusServiceUnavailable, wantState: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("affiliate-gateway", "test", tt.store)
			r := newTestRouter("")
			r.GET("/health", h.Health)

			w := doRequest(r, http.MethodGet, "/health", "")
			assert.Equal(t, tt.wantStatus, w.Code)

			resp := decode(t, w)
			assert.Equal(t, tt.wantStatus == http.StatusOK, resp.Success)
			data := resp.Data.(map[string]any)
			assert.Equal(t, tt.wantState, data["status"])
			assert.Equal(t, "affiliate-gateway", data["name"])
			assert.NotEmpty(t, data["go_version"])
		})
	}
}
