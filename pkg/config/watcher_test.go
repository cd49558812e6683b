package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, path, level string) {
	t.Helper()
	content := []byte("log:\n  level: " + level + "\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topomind.yaml")
	writeConfigFile(t, path, "info")

	changed := make(chan *Config, 1)
	w := NewWatcher(path, func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	}, WithWatchInterval(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	// Mod times have one-second granularity on some filesystems; force a
	// future timestamp instead of sleeping.
	writeConfigFile(t, path, "error")
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	select {
	case cfg := <-changed:
		if cfg.Log.Level != "error" {
			t.Fatalf("reloaded level = %q", cfg.Log.Level)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("change was not detected")
	}
}

func TestWatcherKeepsLastConfigOnBrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topomind.yaml")
	writeConfigFile(t, path, "info")

	fired := make(chan struct{}, 1)
	w := NewWatcher(path, func(*Config) {
		select {
		case fired <- struct{}{}:
		default:
		}
	}, WithWatchInterval(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	if err := os.WriteFile(path, []byte("log: [unclosed\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	select {
	case <-fired:
		t.Fatal("callback fired for an unparseable file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestReloadableConfig(t *testing.T) {
	first, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := NewReloadableConfig(first)

	updated := *first
	updated.Agent.ReplanConfidenceFloor = 0.9
	r.Update(&updated)

	if r.Agent().ReplanConfidenceFloor != 0.9 {
		t.Fatalf("confidence floor = %v after update", r.Agent().ReplanConfidenceFloor)
	}
	if r.Get() == first {
		t.Fatal("Get returned the stale config")
	}
}
