package worker

import (
	"errors"
	"testing"
	"time"
)

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := map[string]Config{
		"empty binary":   {DataDir: "/tmp/w", Port: 8188},
		"empty data dir": {Binary: "/usr/bin/worker", Port: 8188},
		"zero port":      {Binary: "/usr/bin/worker", DataDir: "/tmp/w"},
		"negative port":  {Binary: "/usr/bin/worker", DataDir: "/tmp/w", Port: -1},
	}

	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, err := New(cfg)
			if err == nil {
				t.Fatal("expected error for invalid config, got nil")
			}
			if p != nil {
				t.Errorf("expected nil Process on error, got %v", p)
			}
		})
	}
}

func TestNew_DefaultsReadyPath(t *testing.T) {
	t.Parallel()

	p, err := New(Config{Binary: "/usr/bin/worker", DataDir: "/tmp/w", Port: 8188})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if p.config.ReadyPath != "/health" {
		t.Errorf("ReadyPath = %q, want %q", p.config.ReadyPath, "/health")
	}
}

func TestProcess_NotStarted(t *testing.T) {
	t.Parallel()

	p, err := New(Config{Binary: "/usr/bin/worker", DataDir: "/tmp/w", Port: 8188})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if pid := p.PID(); pid != 0 {
		t.Errorf("PID() = %d, want 0 before Start", pid)
	}
	if ch := p.Exited(); ch != nil {
		t.Error("Exited() should be nil before Start")
	}
	if err := p.WaitReady(t.Context(), time.Second); !errors.Is(err, ErrNotStarted) {
		t.Errorf("WaitReady() = %v, want ErrNotStarted", err)
	}
	if err := p.Stop(time.Second); err != nil {
		t.Errorf("Stop() before Start = %v, want nil", err)
	}
	p.Close() // must not panic
}

func TestProcess_URL(t *testing.T) {
	t.Parallel()

	p, err := New(Config{Binary: "/usr/bin/worker", DataDir: "/tmp/w", Port: 8188})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if got, want := p.URL(), "http://127.0.0.1:8188"; got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}
