package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type reloads struct {
	mu   sync.Mutex
	cfgs []*Config
}

func (r *reloads) add(cfg *Config) {
	r.mu.Lock()
	r.cfgs = append(r.cfgs, cfg)
	r.mu.Unlock()
}

func (r *reloads) last() *Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.cfgs) == 0 {
		return nil
	}
	return r.cfgs[len(r.cfgs)-1]
}

func startWatcher(t *testing.T, path string, r *reloads) {
	t.Helper()
	w, err := NewWatcher(path, r.add)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx) //nolint:errcheck
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// give fsnotify a moment to register the directory
	time.Sleep(50 * time.Millisecond)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`debounce = "300ms"`), 0600))

	var r reloads
	startWatcher(t, path, &r)

	require.NoError(t, os.WriteFile(path, []byte(`debounce = "120ms"`+"\n"+`link_origin = "https://fr.wikipedia.org"`), 0600))

	require.Eventually(t, func() bool {
		cfg := r.last()
		return cfg != nil && cfg.Debounce.Duration == 120*time.Millisecond
	}, 5*time.Second, 20*time.Millisecond)
	require.Equal(t, "https://fr.wikipedia.org", r.last().LinkOrigin)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`debounce = "300ms"`), 0600))

	var r reloads
	startWatcher(t, path, &r)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte(`x = 1`), 0600))
	time.Sleep(3 * reloadDelay)

	require.Nil(t, r.last())
}

func TestWatcher_BadReloadKeepsWatching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`debounce = "300ms"`), 0600))

	var r reloads
	startWatcher(t, path, &r)

	require.NoError(t, os.WriteFile(path, []byte(`debounce = `), 0600))
	time.Sleep(3 * reloadDelay)
	require.Nil(t, r.last())

	require.NoError(t, os.WriteFile(path, []byte(`debounce = "90ms"`), 0600))
	require.Eventually(t, func() bool {
		cfg := r.last()
		return cfg != nil && cfg.Debounce.Duration == 90*time.Millisecond
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_InvalidReloadIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`debounce = "300ms"`), 0600))

	var r reloads
	startWatcher(t, path, &r)

	require.NoError(t, os.WriteFile(path, []byte(`link_origin = "javascript:alert(1)"`), 0600))
	time.Sleep(3 * reloadDelay)
	require.Nil(t, r.last())

	require.NoError(t, os.WriteFile(path, []byte(`link_origin = "https://de.wikipedia.org"`), 0600))
	require.Eventually(t, func() bool {
		cfg := r.last()
		return cfg != nil && cfg.LinkOrigin == "https://de.wikipedia.org"
	}, 5*time.Second, 20*time.Millisecond)
}
