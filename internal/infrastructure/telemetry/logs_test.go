package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	lp, err := NewLoggerProvider(ctx, LogsConfig{ServiceName: "affiliate-gateway-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.Shutdown(ctx))

	core := NewZapOTELCore(lp, "test", zapcore.InfoLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel), "disabled provider yields a no-op core")
}

func TestNewZapOTELCore_NilProvider(t *testing.T) {
	core := NewZapOTELCore(nil, "test", zapcore.InfoLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestNewZapOTELCore_LevelFilter(t *testing.T) {
	lp := &LoggerProvider{
		provider: sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(nopExporter{}))),
		logger:   zap.NewNop(),
		config:   LogsConfig{Enabled: true},
	}
	t.Cleanup(func() { _ = lp.provider.Shutdown(context.Background()) })

	core := NewZapOTELCore(lp, "test", zapcore.WarnLevel)

	tests := []struct {
		level   zapcore.Level
		enabled bool
	}{
		{zapcore.DebugLevel, false},
		{zapcore.InfoLevel, false},
		{zapcore.WarnLevel, true},
		{zapcore.ErrorLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			assert.Equal(t, tt.enabled, core.Enabled(tt.level))
		})
	}

	withFields := core.With([]zapcore.Field{zap.String("session_id", "abc")})
	assert.False(t, withFields.Enabled(zapcore.InfoLevel), "With keeps the minimum level")

	entry := zapcore.Entry{Level: zapcore.InfoLevel, Message: "filtered"}
	assert.Nil(t, core.Check(entry, nil))
}

type nopExporter struct{}

func (nopExporter) Export(context.Context, []sdklog.Record) error { return nil }
func (nopExporter) Shutdown(context.Context) error                { return nil }
func (nopExporter) ForceFlush(context.Context) error              { return nil }
