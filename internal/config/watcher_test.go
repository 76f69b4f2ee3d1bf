package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// settingsFile mirrors the shape of the persisted settings document.
type settingsFile struct {
	Version int              `toml:"version"`
	Values  map[string]int32 `toml:"values"`
}

func loadSettings(path string) (settingsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return settingsFile{}, err
	}
	var cfg settingsFile
	err = toml.Unmarshal(data, &cfg)
	return cfg, err
}

func settingsDoc(evBias int) []byte {
	return fmt.Appendf(nil, "version = 1\n\n[values]\nev_bias = %d\nfps = 1\n", evBias)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func startWatcher(t *testing.T, w *Watcher[settingsFile]) {
	t.Helper()
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := w.Stop(); err != nil {
			t.Errorf("watcher.Stop failed: %v", err)
		}
	})
	// Wait for watcher to initialize
	time.Sleep(100 * time.Millisecond)
}

func TestConfigWatcher_BasicReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, settingsDoc(0), 0o644); err != nil {
		t.Fatal(err)
	}

	received := make(chan settingsFile, 1)
	watcher := NewConfigWatcher(path, loadSettings, newTestLogger(),
		WithDebounce[settingsFile](50*time.Millisecond))
	watcher.OnReload(func(cfg settingsFile) {
		received <- cfg
	})
	startWatcher(t, watcher)

	if err := os.WriteFile(path, settingsDoc(-2), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-received:
		if cfg.Values["ev_bias"] != -2 || cfg.Values["fps"] != 1 {
			t.Errorf("got %+v, want ev_bias=-2 fps=1", cfg.Values)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}
}

func TestConfigWatcher_FileCreatedAfterStart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")

	received := make(chan settingsFile, 1)
	watcher := NewConfigWatcher(path, loadSettings, newTestLogger(),
		WithDebounce[settingsFile](50*time.Millisecond))
	watcher.OnReload(func(cfg settingsFile) {
		received <- cfg
	})
	startWatcher(t, watcher)

	// Unrelated files in the directory are ignored
	if err := os.WriteFile(filepath.Join(dir, "other.toml"), settingsDoc(9), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, settingsDoc(3), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-received:
		if cfg.Values["ev_bias"] != 3 {
			t.Errorf("ev_bias = %d, want 3", cfg.Values["ev_bias"])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}
}

func TestConfigWatcher_ReplacedByRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	if err := os.WriteFile(path, settingsDoc(0), 0o644); err != nil {
		t.Fatal(err)
	}

	received := make(chan settingsFile, 4)
	watcher := NewConfigWatcher(path, loadSettings, newTestLogger(),
		WithDebounce[settingsFile](50*time.Millisecond))
	watcher.OnReload(func(cfg settingsFile) {
		received <- cfg
	})
	startWatcher(t, watcher)

	tmp := filepath.Join(dir, "settings.toml.swp")
	if err := os.WriteFile(tmp, settingsDoc(5), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-received:
		if cfg.Values["ev_bias"] != 5 {
			t.Errorf("ev_bias = %d, want 5", cfg.Values["ev_bias"])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}
}

func TestConfigWatcher_Unsubscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, settingsDoc(0), 0o644); err != nil {
		t.Fatal(err)
	}

	var count1, count2 atomic.Int32
	var lastValue1, lastValue2 atomic.Int32
	watcher := NewConfigWatcher(path, loadSettings, newTestLogger(),
		WithDebounce[settingsFile](50*time.Millisecond))

	watcher.OnReload(func(cfg settingsFile) {
		lastValue1.Store(cfg.Values["ev_bias"])
		count1.Add(1)
	})
	unsub2 := watcher.OnReload(func(cfg settingsFile) {
		lastValue2.Store(cfg.Values["ev_bias"])
		count2.Add(1)
	})
	startWatcher(t, watcher)

	// First change - both handlers called
	if err := os.WriteFile(path, settingsDoc(1), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	unsub2()

	// Second change - only first handler called
	if err := os.WriteFile(path, settingsDoc(2), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if got := count1.Load(); got != 2 {
		t.Errorf("handler1: expected 2 calls, got %d", got)
	}
	if got := count2.Load(); got != 1 {
		t.Errorf("handler2: expected 1 call, got %d", got)
	}
	if got := lastValue1.Load(); got != 2 {
		t.Errorf("handler1: expected last value 2, got %d", got)
	}
	if got := lastValue2.Load(); got != 1 {
		t.Errorf("handler2: expected last value 1, got %d", got)
	}
}

func TestConfigWatcher_ErrorHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, settingsDoc(0), 0o644); err != nil {
		t.Fatal(err)
	}

	errorReceived := make(chan error, 1)
	configReceived := make(chan settingsFile, 1)

	watcher := NewConfigWatcher(path, loadSettings, newTestLogger(),
		WithDebounce[settingsFile](50*time.Millisecond),
		WithErrorHandler[settingsFile](func(err error) {
			errorReceived <- err
		}),
	)
	watcher.OnReload(func(cfg settingsFile) {
		configReceived <- cfg
	})
	startWatcher(t, watcher)

	if err := os.WriteFile(path, []byte("invalid toml [[["), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-errorReceived:
	case <-configReceived:
		t.Fatal("config handler should not be called on error")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error handler")
	}
}

func TestConfigWatcher_Debounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, settingsDoc(0), 0o644); err != nil {
		t.Fatal(err)
	}

	var count atomic.Int32
	var lastValue atomic.Int32

	watcher := NewConfigWatcher(path, loadSettings, newTestLogger(),
		WithDebounce[settingsFile](200*time.Millisecond))
	watcher.OnReload(func(cfg settingsFile) {
		count.Add(1)
		lastValue.Store(cfg.Values["ev_bias"])
	})
	startWatcher(t, watcher)

	// Rapid changes within debounce window
	for i := 1; i <= 5; i++ {
		if err := os.WriteFile(path, settingsDoc(i), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)

	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 debounced call, got %d", got)
	}
	if got := lastValue.Load(); got != 5 {
		t.Errorf("expected final value 5, got %d", got)
	}
}

func TestConfigWatcher_ThreadSafety(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, settingsDoc(0), 0o644); err != nil {
		t.Fatal(err)
	}

	watcher := NewConfigWatcher(path, loadSettings, newTestLogger(),
		WithDebounce[settingsFile](10*time.Millisecond))
	startWatcher(t, watcher)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsub := watcher.OnReload(func(_ settingsFile) {})
			time.Sleep(time.Millisecond)
			unsub()
		}()
	}

	for i := range 10 {
		if err := os.WriteFile(path, settingsDoc(i), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	wg.Wait()
}

func TestConfigWatcher_Stop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, settingsDoc(0), 0o644); err != nil {
		t.Fatal(err)
	}

	var count atomic.Int32
	watcher := NewConfigWatcher(path, loadSettings, newTestLogger(),
		WithDebounce[settingsFile](50*time.Millisecond))
	watcher.OnReload(func(_ settingsFile) {
		count.Add(1)
	})

	if err := watcher.Start(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := watcher.Stop(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, settingsDoc(7), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected no calls after stop, got %d", got)
	}
}
