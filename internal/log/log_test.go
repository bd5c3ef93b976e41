package log

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInit_WritesCategory(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, slog.LevelDebug)
	t.Cleanup(func() { Init(&bytes.Buffer{}, slog.LevelInfo) })

	Debug(CatDB, "Opening database", "path", "/tmp/x.db")

	out := buf.String()
	require.Contains(t, out, "Opening database")
	require.Contains(t, out, "cat=db")
	require.Contains(t, out, "path=/tmp/x.db")
}

func TestInit_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, slog.LevelWarn)
	t.Cleanup(func() { Init(&bytes.Buffer{}, slog.LevelInfo) })

	Info(CatApp, "hidden")
	Warn(CatApp, "shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestErrorErr_AttachesError(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, slog.LevelInfo)
	t.Cleanup(func() { Init(&bytes.Buffer{}, slog.LevelInfo) })

	ErrorErr(CatDB, "Failed to ping database", errors.New("disk gone"), "path", "a.db")

	out := buf.String()
	require.Contains(t, out, "level=ERROR")
	require.Contains(t, out, `error="disk gone"`)
	require.Contains(t, out, "path=a.db")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{" Debug ", slog.LevelDebug},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}
