package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/andy/invoicedesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("chatty"))
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoicedesk.log")

	log, err := New(config.LogConfig{Level: "info", Path: path, JSON: true})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Error("fetch invoices failed", zap.Int64("id", 7))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"fetch invoices failed"`)
	assert.Contains(t, string(data), `"id":7`)
	assert.NotContains(t, string(data), "hidden")
}
