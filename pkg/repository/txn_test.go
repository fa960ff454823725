package repository

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(tries uint) *RetryConfig {
	return &RetryConfig{
		MaxTries:        tries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}
}

func TestRunInTransaction_RetriesConflicts(t *testing.T) {
	attempts := 0
	err := RunInTransaction(context.Background(), fastRetry(5), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return NewStorageError("memory", "update", errors.Join(ErrConflict, errors.New("busy")))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTransaction() failed: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRunInTransaction_PermanentErrorStops(t *testing.T) {
	attempts := 0
	wantErr := errors.New("schema broken")
	err := RunInTransaction(context.Background(), fastRetry(5), func(ctx context.Context) error {
		attempts++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected the original error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("non-conflict errors must not be retried, got %d attempts", attempts)
	}
}

func TestRunInTransaction_GivesUpAfterMaxTries(t *testing.T) {
	attempts := 0
	err := RunInTransaction(context.Background(), fastRetry(3), func(ctx context.Context) error {
		attempts++
		return NewStorageError("memory", "update", errors.Join(ErrConflict, errors.New("busy")))
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !IsConflict(err) {
		t.Errorf("surfaced error should still classify as conflict: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestIsConflictClassification(t *testing.T) {
	conflict := NewStorageError("sqlite", "delete", errors.Join(ErrConflict, errors.New("database is locked")))
	if !IsConflict(conflict) {
		t.Error("wrapped conflict not recognized")
	}
	if IsConflict(NewNotFoundError("doc-001")) {
		t.Error("not-found must not classify as conflict")
	}
	if IsConflict(nil) {
		t.Error("nil must not classify as conflict")
	}
}
