package core

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

// ErrModified is returned when a file changed on disk after it was linted.
var ErrModified = errors.New("file changed since it was read")

// ErrFinished is returned when a committed or rolled back transaction is
// used again.
var ErrFinished = errors.New("transaction already finished")

// TxStatus is the state of a Transaction.
type TxStatus string

const (
	TxPending    TxStatus = "pending"
	TxCommitted  TxStatus = "committed"
	TxRolledBack TxStatus = "rolled_back"
)

type written struct {
	path     string
	original []byte
}

// Transaction writes a batch of fixed files. Rollback restores every file
// written so far to the content it had when it was read.
type Transaction struct {
	ID string

	writer  *AtomicWriter
	mu      sync.Mutex
	written []written
	status  TxStatus
}

// Begin starts a transaction writing through aw.
func (aw *AtomicWriter) Begin() *Transaction {
	return &Transaction{ID: uuid.NewString(), writer: aw, status: TxPending}
}

// Status returns the transaction state.
func (tx *Transaction) Status() TxStatus {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.status
}

// Files returns the paths written so far.
func (tx *Transaction) Files() []string {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	out := make([]string, len(tx.written))
	for i, w := range tx.written {
		out[i] = w.path
	}
	return out
}

// Write replaces path with content after checking that it still holds
// original.
func (tx *Transaction) Write(path string, original, content []byte) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.status != TxPending {
		return ErrFinished
	}

	current, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if checksum(current) != checksum(original) {
		return fmt.Errorf("%s: %w", path, ErrModified)
	}
	if bytes.Equal(original, content) {
		return nil
	}

	if err := tx.writer.WriteFile(path, content); err != nil {
		return err
	}
	tx.written = append(tx.written, written{path: path, original: original})
	return nil
}

// Commit finishes the transaction.
func (tx *Transaction) Commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.status != TxPending {
		return ErrFinished
	}
	tx.status = TxCommitted
	return nil
}

// Rollback restores written files in reverse order.
func (tx *Transaction) Rollback() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.status != TxPending {
		return ErrFinished
	}

	var errs []error
	for i := len(tx.written) - 1; i >= 0; i-- {
		w := tx.written[i]
		if err := tx.writer.WriteFile(w.path, w.original); err != nil {
			errs = append(errs, fmt.Errorf("failed to rollback %s: %w", w.path, err))
		}
	}
	tx.status = TxRolledBack
	return errors.Join(errs...)
}

func checksum(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}
