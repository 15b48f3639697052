package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultLockTimeout bounds the wait for another process to release a file.
const DefaultLockTimeout = 5 * time.Second

// AtomicWriter replaces files through a synced temporary file in the same
// directory and a rename, holding a <path>.lock file meanwhile.
type AtomicWriter struct {
	lockTimeout time.Duration

	mu    sync.Mutex
	locks map[string]*os.File
}

// NewAtomicWriter creates a writer waiting up to DefaultLockTimeout for locks
func NewAtomicWriter() *AtomicWriter {
	return &AtomicWriter{lockTimeout: DefaultLockTimeout, locks: make(map[string]*os.File)}
}

// WriteFile atomically replaces path with content, keeping its permissions
func (aw *AtomicWriter) WriteFile(path string, content []byte) error {
	if err := aw.lock(path); err != nil {
		return fmt.Errorf("failed to acquire lock for %s: %w", path, err)
	}
	defer aw.unlock(path)

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.pegasus.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to %s %s: %w", step, path, err)
	}

	if _, err := tmp.Write(content); err != nil {
		return fail("write", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename onto %s: %w", path, err)
	}
	return nil
}

// lock creates <path>.lock holding our PID, replacing it when the owning
// process is gone.
func (aw *AtomicWriter) lock(path string) error {
	aw.mu.Lock()
	defer aw.mu.Unlock()
	if _, held := aw.locks[path]; held {
		return nil
	}

	lockPath := path + ".lock"
	deadline := time.Now().Add(aw.lockTimeout)
	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			aw.locks[path] = f
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("failed to create lock file: %w", err)
		}
		if staleLock(lockPath) {
			os.Remove(lockPath)
			continue
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("timeout waiting for lock on %s", path)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func (aw *AtomicWriter) unlock(path string) {
	aw.mu.Lock()
	defer aw.mu.Unlock()
	aw.release(path)
}

// release expects aw.mu to be held
func (aw *AtomicWriter) release(path string) {
	f, held := aw.locks[path]
	if !held {
		return
	}
	f.Close()
	os.Remove(f.Name())
	delete(aw.locks, path)
}

func staleLock(lockPath string) bool {
	content, err := os.ReadFile(lockPath)
	if err != nil {
		return true
	}
	var pid int
	if _, err := fmt.Sscanf(string(content), "%d", &pid); err != nil {
		return true
	}
	return !isProcessAlive(pid)
}

// Cleanup releases every lock still held
func (aw *AtomicWriter) Cleanup() {
	aw.mu.Lock()
	defer aw.mu.Unlock()
	for path := range aw.locks {
		aw.release(path)
	}
}
