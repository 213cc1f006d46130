package netutil

import (
	"sync"
	"testing"
)

func TestNewPortRegistry(t *testing.T) {
	t.Parallel()

	t.Run("nil logger uses default", func(t *testing.T) {
		r := NewPortRegistry(nil)
		if r == nil {
			t.Fatal("expected non-nil registry")
		}
		// Verify the registry is functional by reserving and releasing a port.
		if !r.reserve(8188) {
			t.Fatal("expected reserve to succeed on new registry")
		}
		r.Release(8188)
	})
}

func TestPortRegistry_reserve(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		setup  func(r *PortRegistry)
		port   int
		wantOK bool
	}{
		"reserve new port": {
			setup:  func(_ *PortRegistry) {},
			port:   8188,
			wantOK: true,
		},
		"reserve duplicate port": {
			setup: func(r *PortRegistry) {
				r.reserve(9090)
			},
			port:   9090,
			wantOK: false,
		},
		"reserve different ports": {
			setup: func(r *PortRegistry) {
				r.reserve(8188)
			},
			port:   9090,
			wantOK: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := NewPortRegistry(nil)
			tc.setup(r)

			got := r.reserve(tc.port)
			if got != tc.wantOK {
				t.Errorf("reserve(%d) = %v, want %v", tc.port, got, tc.wantOK)
			}
			// Regardless of outcome, the port must now be held.
			if r.reserve(tc.port) {
				t.Errorf("port %d should be reserved, but second reserve succeeded", tc.port)
			}
		})
	}
}

func TestPortRegistry_Release(t *testing.T) {
	t.Parallel()

	r := NewPortRegistry(nil)

	if !r.reserve(8188) {
		t.Fatal("first reserve should succeed")
	}
	if r.reserve(8188) {
		t.Fatal("duplicate reserve should fail")
	}

	r.Release(8188)
	if !r.reserve(8188) {
		t.Fatal("reserve after release should succeed")
	}
}

func TestPortRegistry_ConcurrentDuplicateReserve(t *testing.T) {
	t.Parallel()

	r := NewPortRegistry(nil)
	const goroutines = 100
	const targetPort = 12345

	var wg sync.WaitGroup
	successes := make(chan bool, goroutines)

	for range goroutines {
		wg.Go(func() {
			successes <- r.reserve(targetPort)
		})
	}

	wg.Wait()
	close(successes)

	successCount := 0
	for ok := range successes {
		if ok {
			successCount++
		}
	}
	if successCount != 1 {
		t.Errorf("expected exactly 1 successful reserve, got %d", successCount)
	}
}

func TestPortRegistry_Allocate(t *testing.T) {
	t.Parallel()

	r := NewPortRegistry(nil)

	port, err := r.Allocate()
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}
	if port == 0 {
		t.Error("port should be non-zero")
	}

	// The port is registered until released.
	if r.reserve(port) {
		t.Errorf("port %d should already be registered, but reserve succeeded", port)
	}

	r.Release(port)
	if !r.reserve(port) {
		t.Errorf("port %d should be available after release, but reserve failed", port)
	}
}

func TestPortRegistry_AllocateDistinct(t *testing.T) {
	t.Parallel()

	r := NewPortRegistry(nil)

	seen := make(map[int]bool)
	const allocations = 5

	for i := range allocations {
		port, err := r.Allocate()
		if err != nil {
			t.Fatalf("allocation %d: Allocate() error: %v", i, err)
		}
		if seen[port] {
			t.Errorf("allocation %d: port %d already seen", i, port)
		}
		seen[port] = true
	}

	for port := range seen {
		r.Release(port)
	}
}

func TestPortRegistry_ConcurrentAllocate(t *testing.T) {
	t.Parallel()

	r := NewPortRegistry(nil)
	const goroutines = 20

	var wg sync.WaitGroup
	ports := make(chan int, goroutines)

	for range goroutines {
		wg.Go(func() {
			port, err := r.Allocate()
			if err != nil {
				t.Errorf("Allocate() error: %v", err)
				return
			}
			ports <- port
		})
	}

	wg.Wait()
	close(ports)

	seen := make(map[int]bool)
	for port := range ports {
		if seen[port] {
			t.Errorf("port %d allocated twice", port)
		}
		seen[port] = true
		r.Release(port)
	}
}
