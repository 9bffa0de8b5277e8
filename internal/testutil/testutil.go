// Package testutil provides testing utilities for amrex tests.
package testutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

// Aborted is the panic value raised by [Aborter] and [PanicExit] so a
// test can stop a diverging call at the exact point the process would
// have died.
type Aborted struct {
	// Code is the exit status passed to PanicExit; zero for Aborter.
	Code int
}

// Aborter is a collective-abort stand-in. Abort counts the call and
// panics with Aborted.
type Aborter struct {
	Calls int
}

// Abort records the call and unwinds the caller.
func (a *Aborter) Abort() {
	a.Calls++
	panic(Aborted{})
}

// PanicExit is an os.Exit replacement that unwinds with Aborted{Code}.
func PanicExit(code int) {
	panic(Aborted{Code: code})
}

// ExpectAbort runs fn and fails the test unless fn unwinds with Aborted.
// It returns the recovered value.
func ExpectAbort(t *testing.T, fn func()) (got Aborted) {
	t.Helper()

	returned := false
	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			a, ok := r.(Aborted)
			if !ok {
				panic(r)
			}
			got = a
		}()
		fn()
		returned = true
	}()

	if returned {
		t.Fatal("expected call to abort, but it returned")
	}
	return got
}

// CaptureFile returns the write end of a pipe and a function that closes
// it and returns everything written. Writes go to a real descriptor, so
// raw fd writers can be observed.
func CaptureFile(t *testing.T) (*os.File, func() string) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	t.Cleanup(func() {
		_ = r.Close()
		_ = w.Close()
	})

	read := func() string {
		t.Helper()
		_ = w.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("failed to read pipe: %v", err)
		}
		return string(data)
	}
	return w, read
}

// WriteFile creates name under a fresh temp directory with content and
// returns its path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
