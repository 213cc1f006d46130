package proc

import (
	"errors"
	"testing"
	"time"
)

func TestLaunch_EmptyProgram(t *testing.T) {
	t.Parallel()

	h, err := Launch(Request{Name: "worker"})
	if err == nil {
		t.Fatal("expected error for empty program, got nil")
	}
	if !errors.Is(err, ErrEmptyProgram) {
		t.Fatalf("expected ErrEmptyProgram, got %v", err)
	}
	if h != nil {
		t.Fatalf("expected nil handle, got %v", h)
	}
}

func TestLaunch_EmptyName(t *testing.T) {
	t.Parallel()

	h, err := Launch(Request{Program: "/bin/true"})
	if err == nil {
		t.Fatal("expected error for empty name, got nil")
	}
	if h != nil {
		t.Fatalf("expected nil handle, got %v", h)
	}
}

func TestLaunch_NonexistentProgram(t *testing.T) {
	t.Parallel()

	h, err := Launch(Request{
		Program: "/nonexistent/path/to/worker-binary",
		Name:    "worker",
	})
	if err == nil {
		t.Fatal("expected error for nonexistent program, got nil")
	}
	if !errors.Is(err, ErrSpawn) {
		t.Fatalf("expected ErrSpawn through wrapped chain, got %v", err)
	}
	if h != nil {
		t.Fatalf("expected nil handle, got %v", h)
	}
}

// fakeStoppable records Stop/Close calls for StopCloseAndNil tests.
type fakeStoppable struct {
	stopCalled  bool
	closeCalled bool
	stopErr     error
}

func (f *fakeStoppable) Stop(_ time.Duration) error {
	f.stopCalled = true
	return f.stopErr
}

func (f *fakeStoppable) Close() {
	f.closeCalled = true
}

func TestStopCloseAndNil(t *testing.T) {
	t.Parallel()

	t.Run("nil pointer returns nil", func(t *testing.T) {
		t.Parallel()

		var p *fakeStoppable
		if err := StopCloseAndNil(&p, time.Second); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("nil pointer-to-pointer returns nil", func(t *testing.T) {
		t.Parallel()

		if err := StopCloseAndNil[*fakeStoppable](nil, time.Second); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("stops closes and nils", func(t *testing.T) {
		t.Parallel()

		f := &fakeStoppable{}
		p := f
		if err := StopCloseAndNil(&p, time.Second); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !f.stopCalled {
			t.Error("Stop was not called")
		}
		if !f.closeCalled {
			t.Error("Close was not called")
		}
		if p != nil {
			t.Error("pointer was not nilled")
		}
	})

	t.Run("close and nil run despite stop error", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("stop failed")
		f := &fakeStoppable{stopErr: wantErr}
		p := f
		err := StopCloseAndNil(&p, time.Second)
		if !errors.Is(err, wantErr) {
			t.Fatalf("expected stop error, got %v", err)
		}
		if !f.closeCalled {
			t.Error("Close was not called after Stop error")
		}
		if p != nil {
			t.Error("pointer was not nilled after Stop error")
		}
	})
}

func TestDrainDone(t *testing.T) {
	t.Parallel()

	t.Run("delivers in time", func(t *testing.T) {
		t.Parallel()

		done := make(chan error, 1)
		done <- nil
		ok, err := drainDone(done, time.Second)
		if !ok {
			t.Fatal("expected delivery, got timeout")
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("times out", func(t *testing.T) {
		t.Parallel()

		done := make(chan error)
		ok, err := drainDone(done, 10*time.Millisecond)
		if ok {
			t.Fatal("expected timeout, got delivery")
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
