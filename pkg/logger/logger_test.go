package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"statustracker/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunID(t *testing.T) {
	assert.Equal(t, "0", RunID(context.Background()))

	ctx := WithRunID(context.Background())
	id := RunID(ctx)
	assert.NotEqual(t, "0", id)
	assert.Len(t, id, 36)

	assert.NotEqual(t, id, RunID(WithRunID(context.Background())))
}

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "st.log")
	defer func() {
		// restore a console logger for other tests
		require.NoError(t, Init(config.LoggerConfig{Level: "info", Output: "console"}, false))
	}()

	require.NoError(t, Init(config.LoggerConfig{
		Level:  "warn",
		Output: "file",
		File:   config.LoggerFileConfig{Path: path},
	}, false))

	ctx := WithRunID(context.Background())
	InfoCtx(ctx, "not written at warn level")
	WarnCtx(ctx, "update %s", "failed")
	_ = Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "update failed")
	assert.Contains(t, content, RunID(ctx))
	assert.False(t, strings.Contains(content, "not written"))
}

func TestInit_DebugFlagOverridesLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	defer func() {
		require.NoError(t, Init(config.LoggerConfig{Level: "info", Output: "console"}, false))
	}()

	require.NoError(t, Init(config.LoggerConfig{
		Level:  "error",
		Output: "file",
		File:   config.LoggerFileConfig{Path: path},
	}, true))

	DebugCtx(context.Background(), "merged %d rows", 3)
	_ = Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "merged 3 rows")
}
