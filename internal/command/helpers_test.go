package command

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"editcmd/internal/logging"
	"editcmd/internal/surface"
)

// newWorkspace returns a pane whose active tab holds text with the cursor at cursor.
func newWorkspace(text string, cursor int, opts ...surface.BufferOption) (*surface.Pane, *surface.Buffer) {
	buf := surface.NewBuffer(text, opts...)
	buf.SetName("test")
	buf.SetCursor(cursor)
	return surface.NewPane(buf), buf
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := logging.UseLogger(zap.New(core))
	t.Cleanup(restore)
	return logs
}
