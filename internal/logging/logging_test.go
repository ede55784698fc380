package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetRoot(t *testing.T) {
	t.Cleanup(func() { setRoot(slog.NewTextHandler(io.Discard, nil)) })
}

func TestForComponent_CreatedBeforeSetOutput(t *testing.T) {
	resetRoot(t)
	log := ForComponent(CompSession)

	var buf bytes.Buffer
	SetOutput(&buf, false)

	log.Info("suggestion_fetch_failed", slog.String("query", "cat"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "session", rec["component"])
	assert.Equal(t, "cat", rec["query"])
	assert.Equal(t, "suggestion_fetch_failed", rec["msg"])
}

func TestForComponent_WithAttrsSurvivesSwap(t *testing.T) {
	resetRoot(t)
	log := ForComponent(CompTUI).With(slog.String("session", "abc"))

	var first, second bytes.Buffer
	SetOutput(&first, false)
	log.Info("one")
	SetOutput(&second, false)
	log.Info("two")

	assert.Contains(t, first.String(), `"session":"abc"`)
	assert.NotContains(t, first.String(), `"two"`)
	assert.Contains(t, second.String(), `"session":"abc"`)
	assert.Contains(t, second.String(), `"msg":"two"`)
}

func TestDebugLevel(t *testing.T) {
	resetRoot(t)
	log := ForComponent(CompHits)

	var buf bytes.Buffer
	SetOutput(&buf, false)
	log.Debug("hidden")
	assert.Empty(t, buf.String())

	SetOutput(&buf, true)
	log.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetup_WritesFile(t *testing.T) {
	resetRoot(t)
	path := filepath.Join(t.TempDir(), "logs", "wfind.log")

	closer, err := Setup(path, false)
	require.NoError(t, err)

	ForComponent(CompCLI).Info("started")
	require.NoError(t, closer.Close())

	ForComponent(CompCLI).Info("after close")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), `"component":"cli"`)
}
