package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunBuildsOnceImmediately(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "design.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	var builds atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	w := New(nil, WithDebounce(10*time.Millisecond))
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, path, func(context.Context) error {
			builds.Add(1)
			return nil
		})
	}()

	waitFor(t, func() bool { return builds.Load() == 1 })
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRunRebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "design.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	var builds atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(nil, WithDebounce(10*time.Millisecond))
	go func() {
		_ = w.Run(ctx, path, func(context.Context) error {
			builds.Add(1)
			return nil
		})
	}()

	waitFor(t, func() bool { return builds.Load() == 1 })

	if err := os.WriteFile(path, []byte(`{"changed":true}`), 0o644); err != nil {
		t.Fatalf("Failed to rewrite file: %v", err)
	}
	waitFor(t, func() bool { return builds.Load() >= 2 })
}

func TestRunIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "design.json")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	var builds atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(nil, WithDebounce(10*time.Millisecond))
	go func() {
		_ = w.Run(ctx, path, func(context.Context) error {
			builds.Add(1)
			return nil
		})
	}()

	waitFor(t, func() bool { return builds.Load() == 1 })

	if err := os.WriteFile(other, []byte("scratch"), 0o644); err != nil {
		t.Fatalf("Failed to write other file: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if got := builds.Load(); got != 1 {
		t.Errorf("Expected 1 build, got %d", got)
	}
}

func TestRunContinuesAfterBuildFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "design.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	var builds atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(nil, WithDebounce(10*time.Millisecond))
	go func() {
		_ = w.Run(ctx, path, func(context.Context) error {
			if builds.Add(1) == 1 {
				return errors.New("broken document")
			}
			return nil
		})
	}()

	waitFor(t, func() bool { return builds.Load() == 1 })

	if err := os.WriteFile(path, []byte(`{"fixed":true}`), 0o644); err != nil {
		t.Fatalf("Failed to rewrite file: %v", err)
	}
	waitFor(t, func() bool { return builds.Load() >= 2 })
}

func TestRunMissingFile(t *testing.T) {
	w := New(nil)
	err := w.Run(context.Background(), filepath.Join(t.TempDir(), "nope.json"), func(context.Context) error {
		return nil
	})
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Condition not met within deadline")
}
