package telemetry_test

import (
	"context"
	"sync"
	"testing"

	"github.com/affiliate/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         false,
		ServerAddress:   "http://localhost:4040",
		ApplicationName: "affiliate-gateway-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     telemetry.ProfilerConfig
		wantErr string
	}{
		{
			name:    "missing server address",
			cfg:     telemetry.ProfilerConfig{Enabled: true, ApplicationName: "affiliate-gateway"},
			wantErr: "server address is required",
		},
		{
			name:    "missing application name",
			cfg:     telemetry.ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"},
			wantErr: "application name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := telemetry.NewProfiler(tt.cfg, zaptest.NewLogger(t))
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProfiler_StopConcurrent(t *testing.T) {
	p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Stop())
		}()
	}
	wg.Wait()
}

func TestDefaultProfileTypes(t *testing.T) {
	assert.NotEmpty(t, telemetry.DefaultProfileTypes)
}

func TestWithProfilingLabels(t *testing.T) {
	t.Run("runs the function with labels", func(t *testing.T) {
		called := false
		telemetry.WithProfilingLabels(context.Background(), map[string]string{
			telemetry.ProfilingLabelMethod: "POST",
			telemetry.ProfilingLabelRoute:  "/api/v1/onboarding/sessions/:id/share",
		}, func(ctx context.Context) {
			called = true
			assert.NotNil(t, ctx)
		})
		assert.True(t, called)
	})

	t.Run("no labels passes the context through", func(t *testing.T) {
		type key struct{}
		ctx := context.WithValue(context.Background(), key{}, "v")
		telemetry.WithProfilingLabels(ctx, map[string]string{telemetry.ProfilingLabelRoute: ""}, func(got context.Context) {
			assert.Equal(t, ctx, got)
		})
	})
}
