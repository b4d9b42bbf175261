package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_Log(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core), "jobmatch-test", "test")

	t.Run("User id is hashed", func(t *testing.T) {
		l.MatchCached(context.Background(), "user-123")

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "match_cached", fields["event"])
		assert.Equal(t, HashValue("user-123"), fields["subject"])
		assert.NotContains(t, fields, "user_id")
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	})

	t.Run("Failures log at warn", func(t *testing.T) {
		l.MatchFailed(context.Background(), "user-123", errors.New("engine unreachable"))

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("Unauthorized access logs at error", func(t *testing.T) {
		l.UnauthorizedAccess(context.Background(), "10.0.0.1", "req-1", "invalid_token")

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "10.0.0.1", entries[0].ContextMap()["ip"])
	})
}

func TestHashValue(t *testing.T) {
	assert.Len(t, HashValue("abc"), 16)
	assert.Equal(t, HashValue("abc"), HashValue("abc"))
	assert.NotEqual(t, HashValue("abc"), HashValue("abd"))
}
