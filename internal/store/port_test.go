package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestBackoffRetriesContention(t *testing.T) {
	attempts := 0
	err := Backoff(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("lock wait: %w", ErrContention)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Backoff: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestBackoffSurfacesLogicalErrors(t *testing.T) {
	attempts := 0
	err := Backoff(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		return fmt.Errorf("missing row: %w", ErrNotFound)
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if attempts != 1 {
		t.Fatalf("logical error retried: %d attempts", attempts)
	}
}

func TestBackoffExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := Backoff(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		return fmt.Errorf("deadlock: %w", ErrContention)
	})
	if !errors.Is(err, ErrContention) {
		t.Fatalf("error = %v, want ErrContention after exhaustion", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestBackoffHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Backoff(ctx, 3, time.Minute, func() error {
		return fmt.Errorf("deadlock: %w", ErrContention)
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestIsContention(t *testing.T) {
	if !IsContention(fmt.Errorf("wrapped: %w", ErrContention)) {
		t.Fatal("wrapped ErrContention not detected")
	}
	if IsContention(ErrNotFound) {
		t.Fatal("ErrNotFound misread as contention")
	}
	if IsContention(nil) {
		t.Fatal("nil misread as contention")
	}
}
