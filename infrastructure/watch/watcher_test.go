package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	batches chan []string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{batches: make(chan []string, 16)}
}

func (n *recordingNotifier) Notify(_ context.Context, paths []string) {
	n.batches <- paths
}

func (n *recordingNotifier) next(t *testing.T) []string {
	t.Helper()
	select {
	case b := <-n.batches:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for batch")
		return nil
	}
}

func (n *recordingNotifier) none(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case b := <-n.batches:
		t.Fatalf("unexpected batch %v", b)
	case <-time.After(wait):
	}
}

type suffixFilter string

func (f suffixFilter) ShouldIgnore(path string, _ bool) bool {
	return strings.HasSuffix(path, string(f))
}

// startWatcher runs w in the background and returns once its watches are registered.
func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()

	ready := make(chan struct{})
	w.ready = func() { close(ready) }

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Go(func() {
		assert.NoError(t, w.Run(ctx))
	})
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not start")
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatcher_BatchesEventsWithinWindow(t *testing.T) {
	root := t.TempDir()
	n := newRecordingNotifier()
	startWatcher(t, New(root, n, WithDebounce(100*time.Millisecond)))

	write(t, filepath.Join(root, "a.go"), "package a")
	write(t, filepath.Join(root, "b.go"), "package b")

	assert.Equal(t, []string{"a.go", "b.go"}, n.next(t))
	n.none(t, 300*time.Millisecond)
}

func TestWatcher_SteadyWritesStillFlushWithinMaxWait(t *testing.T) {
	root := t.TempDir()
	n := newRecordingNotifier()
	startWatcher(t, New(root, n,
		WithDebounce(200*time.Millisecond),
		WithMaxWait(400*time.Millisecond),
	))

	path := filepath.Join(root, "busy.log")
	deadline := time.Now().Add(1500 * time.Millisecond)
	for i := 0; time.Now().Before(deadline); i++ {
		write(t, path, strings.Repeat("x", i+1))
		select {
		case batch := <-n.batches:
			assert.Equal(t, []string{"busy.log"}, batch)
			return
		case <-time.After(50 * time.Millisecond):
		}
	}
	t.Fatal("no batch delivered while writes kept arriving")
}

func TestWatcher_NextFlushIsCappedByMaxWait(t *testing.T) {
	w := New(t.TempDir(), newRecordingNotifier(),
		WithDebounce(time.Second),
		WithMaxWait(2*time.Second),
	)

	assert.Equal(t, time.Second, w.nextFlush(time.Now()))
	assert.LessOrEqual(t, w.nextFlush(time.Now().Add(-1500*time.Millisecond)), 500*time.Millisecond)
	assert.Equal(t, time.Duration(0), w.nextFlush(time.Now().Add(-3*time.Second)))
}

func TestWatcher_SkipsGitDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))
	n := newRecordingNotifier()
	startWatcher(t, New(root, n, WithDebounce(50*time.Millisecond)))

	write(t, filepath.Join(root, ".git", "index"), "x")
	write(t, filepath.Join(root, ".git", "objects", "ab"), "x")
	n.none(t, 300*time.Millisecond)

	write(t, filepath.Join(root, "main.go"), "package main")
	assert.Equal(t, []string{"main.go"}, n.next(t))
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	n := newRecordingNotifier()
	startWatcher(t, New(root, n, WithDebounce(50*time.Millisecond)))

	require.NoError(t, os.Mkdir(filepath.Join(root, "pkg"), 0o755))
	assert.Equal(t, []string{"pkg"}, n.next(t))

	write(t, filepath.Join(root, "pkg", "lib.go"), "package pkg")
	assert.Equal(t, []string{"pkg/lib.go"}, n.next(t))
}

func TestWatcher_AppliesFilter(t *testing.T) {
	root := t.TempDir()
	n := newRecordingNotifier()
	startWatcher(t, New(root, n, WithDebounce(50*time.Millisecond), WithFilter(suffixFilter(".log"))))

	write(t, filepath.Join(root, "debug.log"), "noise")
	n.none(t, 300*time.Millisecond)

	write(t, filepath.Join(root, "app.go"), "package app")
	assert.Equal(t, []string{"app.go"}, n.next(t))
}

func TestWatcher_ReportsRemovals(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "old.go")
	write(t, path, "package old")

	n := newRecordingNotifier()
	startWatcher(t, New(root, n, WithDebounce(50*time.Millisecond)))

	require.NoError(t, os.Remove(path))
	assert.Equal(t, []string{"old.go"}, n.next(t))
}

func TestWatcher_MissingRoot(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), newRecordingNotifier())

	err := w.Run(context.Background())
	assert.Error(t, err)
}
