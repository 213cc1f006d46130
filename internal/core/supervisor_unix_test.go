//go:build !windows

package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glacierworks/workerenv/internal/proc"
)

// writeWorkerScript creates an executable shell script standing in for the
// worker binary.
func writeWorkerScript(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fake-worker")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write fake worker script: %v", err)
	}
	return path
}

// serveHealth starts an HTTP server answering 200 on /health and returns
// its port. It stands in for the worker's API; the fake worker binary only
// keeps the process alive.
func serveHealth(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Handler: mux}
	go srv.Serve(ln) //nolint:errcheck // closed by Shutdown below
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return ln.Addr().(*net.TCPAddr).Port
}

func TestSupervisor_StartStopCycle(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.BaseDataDir = t.TempDir()
	cfg.WorkerBinary = writeWorkerScript(t, "sleep 60")
	cfg.Port = serveHealth(t)
	cfg.StartTimeout = 10 * time.Second

	s := NewSupervisorWithConfig(cfg)
	t.Cleanup(func() { _ = s.Shutdown() })

	ctx := context.Background()
	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	if s.WorkerPID() <= 0 {
		t.Errorf("WorkerPID() = %d, want > 0", s.WorkerPID())
	}
	if want := fmt.Sprintf("http://127.0.0.1:%d", cfg.Port); s.WorkerURL() != want {
		t.Errorf("WorkerURL() = %q, want %q", s.WorkerURL(), want)
	}
	if err := s.Start(ctx); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() = %v, want ErrAlreadyStarted", err)
	}

	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if s.WorkerPID() != 0 {
		t.Errorf("WorkerPID() = %d after Stop, want 0", s.WorkerPID())
	}

	// The supervisor can launch a fresh worker after a clean stop.
	if err := s.Start(ctx); err != nil {
		t.Fatalf("restart after Stop error: %v", err)
	}
}

func TestSupervisor_StartRetriesThenFails(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.BaseDataDir = t.TempDir()
	cfg.WorkerBinary = writeWorkerScript(t, "exit 1")
	cfg.MaxStartRetries = 2
	cfg.StartTimeout = 10 * time.Second

	s := NewSupervisorWithConfig(cfg)
	t.Cleanup(func() { _ = s.Shutdown() })

	ctx := context.Background()
	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	err := s.Start(ctx)
	if !errors.Is(err, proc.ErrProcessExited) {
		t.Errorf("Start() = %v, want ErrProcessExited", err)
	}
	if s.WorkerPID() != 0 {
		t.Errorf("WorkerPID() = %d after failed Start, want 0", s.WorkerPID())
	}
}

func TestSupervisor_SpawnFailure(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.BaseDataDir = t.TempDir()
	cfg.WorkerBinary = filepath.Join(t.TempDir(), "no-such-binary")
	cfg.MaxStartRetries = 1

	s := NewSupervisorWithConfig(cfg)
	t.Cleanup(func() { _ = s.Shutdown() })

	ctx := context.Background()
	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if err := s.Start(ctx); !errors.Is(err, ErrSpawn) {
		t.Errorf("Start() = %v, want ErrSpawn", err)
	}
}

func TestSupervisor_ShutdownStopsRunningWorker(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.BaseDataDir = t.TempDir()
	cfg.WorkerBinary = writeWorkerScript(t, "sleep 60")
	cfg.Port = serveHealth(t)
	cfg.StartTimeout = 10 * time.Second

	s := NewSupervisorWithConfig(cfg)

	ctx := context.Background()
	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	if err := s.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}
	if s.WorkerPID() != 0 {
		t.Errorf("WorkerPID() = %d after Shutdown, want 0", s.WorkerPID())
	}
}
