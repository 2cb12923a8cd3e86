// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func waitSource(t *testing.T, w *Watcher, timeout time.Duration) string {
	t.Helper()
	select {
	case src := <-w.Sources():
		return src
	case err := <-w.Errors():
		t.Fatalf("watcher error: %v", err)
		return ""
	case <-time.After(timeout):
		t.Fatal("no source delivered within deadline")
		return ""
	}
}

func TestWatcherDeliversOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.wgsl")
	writeFile(t, path, "v1")

	w, err := New(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	writeFile(t, path, "v2")
	if got := waitSource(t, w, 2*time.Second); got != "v2" {
		t.Errorf("delivered %q, want %q", got, "v2")
	}
}

func TestWatcherDeliversOnRenameOver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.wgsl")
	writeFile(t, path, "v1")

	w, err := New(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	// Atomic-save style: write a sibling, rename it over the target.
	tmp := filepath.Join(dir, ".shader.wgsl.tmp")
	writeFile(t, tmp, "v2")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	if got := waitSource(t, w, 2*time.Second); got != "v2" {
		t.Errorf("delivered %q, want %q", got, "v2")
	}
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.wgsl")
	writeFile(t, path, "v1")

	w, err := New(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	writeFile(t, filepath.Join(dir, "other.wgsl"), "noise")
	select {
	case src := <-w.Sources():
		t.Errorf("sibling write delivered %q", src)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.wgsl")
	writeFile(t, path, "v0")

	w, err := New(path, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	// Several writes inside one debounce window collapse to the last.
	for i := 0; i < 5; i++ {
		writeFile(t, path, "burst")
		time.Sleep(10 * time.Millisecond)
	}
	writeFile(t, path, "final")

	if got := waitSource(t, w, 2*time.Second); got != "final" {
		t.Errorf("delivered %q, want %q", got, "final")
	}
	select {
	case src := <-w.Sources():
		t.Errorf("burst produced a second delivery: %q", src)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherReplacesPendingDelivery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.wgsl")
	writeFile(t, path, "v0")

	w, err := New(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	// Nobody receives between the two settled changes; only the second
	// version must remain.
	writeFile(t, path, "stale")
	time.Sleep(200 * time.Millisecond)
	writeFile(t, path, "fresh")
	time.Sleep(200 * time.Millisecond)

	if got := waitSource(t, w, 2*time.Second); got != "fresh" {
		t.Errorf("delivered %q, want %q", got, "fresh")
	}
}

func TestWatcherMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", "shader.wgsl")
	if _, err := New(path, 0); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shader.wgsl")
	writeFile(t, path, "v1")

	w, err := New(path, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
