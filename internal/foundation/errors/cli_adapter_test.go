package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "not found", err: NotFoundError("missing").Build(), expected: 4},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "content", err: ContentError("pages failed").Build(), expected: 11},
		{name: "script", err: ScriptError("init failed").Build(), expected: 11},
		{name: "filesystem", err: FileSystemError("disk full").Build(), expected: 11},
		{name: "internal", err: InternalError("boom").Build(), expected: 10},
		{name: "unknown category", err: NewError("other", "x").Build(), expected: 1},
		{name: "unclassified", err: errors.New("unknown"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, nil)
	verbose := NewCLIErrorAdapter(true, nil)

	internal := InternalError("stack corrupted").Build()
	require.Contains(t, quiet.FormatError(internal), "use -v")
	require.Contains(t, verbose.FormatError(internal), "stack corrupted")

	cfg := ConfigError("config not found").WithContext("path", "x.yml").Build()
	require.Equal(t, "Error: config not found (path=x.yml)", quiet.FormatError(cfg))
	require.Equal(t, "Error: plain", quiet.FormatError(errors.New("plain")))
	require.Empty(t, quiet.FormatError(nil))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logs, out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("config not found").WithContext("path", "x.yml").Build())

	require.Equal(t, 7, code)
	require.Contains(t, out.String(), "config not found")
	require.Contains(t, logs.String(), "category=config")
	require.Contains(t, logs.String(), "path=x.yml")
}

func TestCLIErrorAdapter_HandleError_NonFatalNotLogged(t *testing.T) {
	var logs, out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ContentError("site has 2 error(s)").Build())

	require.Equal(t, 11, code)
	require.Empty(t, logs.String())
	require.True(t, strings.HasPrefix(out.String(), "Error: site has 2 error(s)"))
}

func TestCLIErrorAdapter_HandleError_Nil(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)
	called := false
	adapter.exit = func(int) { called = true }

	adapter.HandleError(nil)
	require.False(t, called)
}
