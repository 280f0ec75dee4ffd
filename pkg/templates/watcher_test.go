package templates

import (
	"context"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "review.yaml", reviewTemplate)

	registry, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}

	watcher, err := NewWatcher(registry)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- watcher.Watch(ctx)
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	writeTemplate(t, dir, "summary.yaml", summaryTemplate)

	deadline := time.Now().Add(5 * time.Second)
	for registry.Len() != 2 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if registry.Len() != 2 {
		t.Fatalf("Expected reload to pick up new template, have %v", registry.Names())
	}

	if err := watcher.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := <-watchDone; err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
}

func TestWatcher_StopWithoutWatch(t *testing.T) {
	dir := t.TempDir()
	registry := NewRegistry(dir)

	watcher, err := NewWatcher(registry)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := watcher.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestShouldProcessEvent(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{"yaml file", "/tmp/templates/review.yaml", true},
		{"yml file", "/tmp/templates/review.yml", true},
		{"hidden file", "/tmp/templates/.review.yaml.swp", false},
		{"other extension", "/tmp/templates/review.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := fsnotify.Event{Name: tt.path, Op: fsnotify.Write}
			if got := shouldProcessEvent(event); got != tt.want {
				t.Errorf("shouldProcessEvent(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
