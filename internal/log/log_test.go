package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLog_WritesLevelCategoryAndFields(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(buf, LevelDebug)
	t.Cleanup(Disable)

	Info(CatHTTP, "request", "method", "GET", "status", 200)

	out := buf.String()
	require.Contains(t, out, "[INFO] [http] request")
	require.Contains(t, out, "method=GET")
	require.Contains(t, out, "status=200")
}

func TestLog_RespectsMinLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(buf, LevelWarn)
	t.Cleanup(Disable)

	Debug(CatCatalog, "dropped")
	Info(CatCatalog, "dropped too")
	Warn(CatCatalog, "kept")

	require.NotContains(t, buf.String(), "dropped")
	require.Contains(t, buf.String(), "[WARN] [catalog] kept")
}

func TestLog_OrphanKeyAndErrorValue(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(buf, LevelDebug)
	t.Cleanup(Disable)

	Info(CatDB, "odd", "lonely")
	ErrorErr(CatDB, "failed", errors.New("boom"), "attempt", 2)

	out := buf.String()
	require.Contains(t, out, "lonely=<missing>")
	require.Contains(t, out, "attempt=2 error=boom")
}

func TestLog_DisabledIsSilent(t *testing.T) {
	Disable()
	// Must not panic without a logger installed.
	Error(CatNotify, "nothing")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, LevelWarn, ParseLevel("warning"))
	require.Equal(t, LevelError, ParseLevel(" error "))
	require.Equal(t, LevelInfo, ParseLevel("verbose"))
}
