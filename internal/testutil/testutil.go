// Package testutil provides testing utilities for mpsc tests.
package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// DefaultWait bounds how long helpers wait for asynchronous conditions.
const DefaultWait = 5 * time.Second

// Eventually polls cond until it returns true or DefaultWait elapses, then
// fails the test with msg.
func Eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(DefaultWait)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", DefaultWait, msg)
}

// WaitGroup waits for wg, failing the test if it does not finish within
// DefaultWait.
func WaitGroup(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(DefaultWait):
		t.Fatalf("goroutines did not finish within %v", DefaultWait)
	}
}

// Result carries the outcome of a call run in the background by Go.
type Result[T any] struct {
	Value T
	Err   error
}

// Go runs fn on a new goroutine and returns a channel that receives its
// result exactly once.
func Go[T any](fn func() (T, error)) <-chan Result[T] {
	out := make(chan Result[T], 1)
	go func() {
		v, err := fn()
		out <- Result[T]{Value: v, Err: err}
	}()
	return out
}

// Await waits for a result from Go, failing the test after DefaultWait.
func Await[T any](t *testing.T, ch <-chan Result[T]) Result[T] {
	t.Helper()

	select {
	case r := <-ch:
		return r
	case <-time.After(DefaultWait):
		t.Fatalf("background call did not return within %v", DefaultWait)
		return Result[T]{}
	}
}

// StillBlocked fails the test if ch yields a result within d.
func StillBlocked[T any](t *testing.T, ch <-chan Result[T], d time.Duration) {
	t.Helper()

	select {
	case r := <-ch:
		t.Fatalf("expected call to block, got value=%v err=%v", r.Value, r.Err)
	case <-time.After(d):
	}
}

// WriteFiles creates files under dir from a map of relative path to content,
// creating parent directories as needed.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for path, content := range files {
		fullPath := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write file %s: %v", path, err)
		}
	}
}
