package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func gitRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git", "refs", "tags"), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	return root
}

func TestNewTagWatcher_RequiresGitRepo(t *testing.T) {
	if _, err := NewTagWatcher(t.TempDir(), 0); err == nil {
		t.Error("expected error outside a git repository")
	}
}

func TestTagWatcher_EmitsNewTag(t *testing.T) {
	root := gitRepo(t)

	w, err := NewTagWatcher(root, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewTagWatcher failed: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	refPath := filepath.Join(root, ".git", "refs", "tags", "v1.0")
	if err := os.WriteFile(refPath, []byte("abc123\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case event := <-w.Events():
		if event.Tag != "v1.0" {
			t.Errorf("tag: got %q, want %q", event.Tag, "v1.0")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for tag event")
	}
}

func TestTagWatcher_DebouncesRewrites(t *testing.T) {
	root := gitRepo(t)

	w, err := NewTagWatcher(root, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewTagWatcher failed: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// git writes the ref file more than once while creating a tag.
	refPath := filepath.Join(root, ".git", "refs", "tags", "v2.0")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(refPath, []byte("abc123\n"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case event := <-w.Events():
		if event.Tag != "v2.0" {
			t.Errorf("tag: got %q, want %q", event.Tag, "v2.0")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for tag event")
	}

	// The rewrites collapse into a single event.
	select {
	case event := <-w.Events():
		t.Errorf("unexpected second event: %+v", event)
	case <-time.After(200 * time.Millisecond):
	}
}
