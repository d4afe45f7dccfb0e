package logger

import (
	"path/filepath"
	"testing"

	"github.com/example/storefront/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app.log")
	l, err := New(config.LogConfig{Level: "warn", Encoding: "console", OutputPaths: []string{out}}, "shop")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	_, err = New(config.LogConfig{Level: "loud"}, "shop")
	assert.Error(t, err)
}
