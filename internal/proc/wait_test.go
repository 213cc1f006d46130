package proc

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestWaitReady_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cfg     WaitReadyConfig
		wantErr error
	}{
		"zero interval": {
			cfg:     WaitReadyConfig{Interval: 0, Timeout: 5 * time.Second, Name: "worker"},
			wantErr: ErrIntervalNotPositive,
		},
		"negative interval": {
			cfg:     WaitReadyConfig{Interval: -time.Second, Timeout: 5 * time.Second, Name: "worker"},
			wantErr: ErrIntervalNotPositive,
		},
		"zero timeout": {
			cfg:     WaitReadyConfig{Interval: 100 * time.Millisecond, Timeout: 0, Name: "worker"},
			wantErr: ErrTimeoutNotPositive,
		},
		"negative timeout": {
			cfg:     WaitReadyConfig{Interval: 100 * time.Millisecond, Timeout: -time.Second, Name: "worker"},
			wantErr: ErrTimeoutNotPositive,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := WaitReady(context.Background(), tc.cfg, func(_ context.Context, _ int) (bool, error) {
				t.Fatal("check should not be called with invalid config")
				return false, nil
			})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestWaitReady_EmptyName(t *testing.T) {
	t.Parallel()

	err := WaitReady(context.Background(), WaitReadyConfig{
		Interval: 10 * time.Millisecond,
		Timeout:  time.Second,
	}, func(_ context.Context, _ int) (bool, error) {
		return true, nil
	})
	if err == nil {
		t.Fatal("expected error for empty name, got nil")
	}
	if !strings.Contains(err.Error(), "name must not be empty") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestWaitReady_ProcessExited(t *testing.T) {
	t.Parallel()

	// Pre-close the channel to simulate a process that has already exited.
	exited := make(chan struct{})
	close(exited)

	start := time.Now()
	err := WaitReady(context.Background(), WaitReadyConfig{
		Interval:      100 * time.Millisecond,
		Timeout:       10 * time.Second,
		Name:          "worker",
		Port:          8188,
		ProcessExited: exited,
	}, func(_ context.Context, _ int) (bool, error) {
		// Should never be called because the exited check fires first.
		t.Fatal("readiness check should not have been called")
		return false, nil
	})
	elapsed := time.Since(start)

	if !errors.Is(err, ErrProcessExited) {
		t.Fatalf("expected ErrProcessExited, got %v", err)
	}
	// The function should return almost immediately, well under 1 second.
	if elapsed > time.Second {
		t.Fatalf("expected fast abort, took %v", elapsed)
	}
}

func TestWaitReady_SucceedsOnLaterAttempt(t *testing.T) {
	t.Parallel()

	err := WaitReady(context.Background(), WaitReadyConfig{
		Interval: 10 * time.Millisecond,
		Timeout:  5 * time.Second,
		Name:     "worker",
	}, func(_ context.Context, attempt int) (bool, error) {
		return attempt >= 3, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitReady_FatalCheckError(t *testing.T) {
	t.Parallel()

	fatal := errors.New("permanent failure")
	err := WaitReady(context.Background(), WaitReadyConfig{
		Interval: 10 * time.Millisecond,
		Timeout:  5 * time.Second,
		Name:     "worker",
	}, func(_ context.Context, _ int) (bool, error) {
		return false, fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("expected fatal check error, got %v", err)
	}
}
