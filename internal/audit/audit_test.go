// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package audit

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"grimm.is/relayprofile/internal/logging"
)

func TestLoggerRecordsSuccess(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(logging.New(logging.Config{Level: logging.LevelInfo, Output: &buf}))

	ev := l.Decode("profile.conf", nil)
	require.Equal(t, EventProfileDecode, ev.Type)
	require.True(t, ev.Success)
	require.NotEmpty(t, ev.ID)
	require.False(t, ev.Timestamp.IsZero())
	require.Contains(t, buf.String(), "profile_decode")
	require.Contains(t, buf.String(), "profile.conf")
}

func TestLoggerRecordsFailure(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(logging.New(logging.Config{Level: logging.LevelInfo, Output: &buf}))

	ev := l.Validate("profile.conf", errors.New("unknown policy PROXY"))
	require.False(t, ev.Success)
	require.Equal(t, "unknown policy PROXY", ev.Error)
	require.Contains(t, buf.String(), "unknown policy PROXY")
}

func TestNewLoggerDiscardsWhenNil(t *testing.T) {
	l := NewLogger(nil)
	require.NotPanics(t, func() { l.Encode("profile.conf", nil) })
}
