package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := New(Config{
		Level:    "debug",
		Dir:      tmpDir,
		Filename: "test.log",
	})

	assert.NoError(t, err)
	assert.NotNil(t, logger)

	err = logger.Close()
	assert.NoError(t, err)
}

func TestLogger_Info(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := New(Config{
		Level:    "info",
		Dir:      tmpDir,
		Filename: "info.log",
	})
	require.NoError(t, err)
	defer logger.Close()

	testMsg := "test info message"
	logger.Info(testMsg)

	time.Sleep(10 * time.Millisecond)

	content, err := os.ReadFile(filepath.Join(tmpDir, "info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), testMsg)
}

func TestLogger_InfoTag(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := New(Config{
		Level:    "info",
		Dir:      tmpDir,
		Filename: "tag.log",
	})
	require.NoError(t, err)
	defer logger.Close()

	logger.InfoTag(TagWatch, "watcher started on %s", "/tmp/screens")

	time.Sleep(10 * time.Millisecond)

	content, err := os.ReadFile(filepath.Join(tmpDir, "tag.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[WATCH] watcher started on /tmp/screens")
}

func TestLogger_DebugSuppressedAtInfo(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := New(Config{
		Level:    "info",
		Dir:      tmpDir,
		Filename: "quiet.log",
	})
	require.NoError(t, err)
	defer logger.Close()

	logger.Debug("should not appear")

	time.Sleep(10 * time.Millisecond)

	content, err := os.ReadFile(filepath.Join(tmpDir, "quiet.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "should not appear")
}

func TestFormatLog(t *testing.T) {
	assert.Equal(t, "[CLIP] change detected", FormatLog(TagClip, "change detected"))
	assert.Equal(t, "[IMAGE] already tagged", FormatLog(TagWatch, "[IMAGE] already tagged"))
	assert.Equal(t, "bare message", FormatLog("", "bare message"))
}

func TestNilLoggerTagHelpersDoNotPanic(t *testing.T) {
	var logger *Logger
	logger.InfoTag(TagBoot, "no-op")
	logger.WarnTag(TagBoot, "no-op")
	logger.ErrorTag(TagBoot, "no-op")
	logger.DebugTag(TagBoot, "no-op")
}
