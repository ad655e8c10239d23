package admission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewGate_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		if _, err := NewGate(capacity, time.Second); err == nil {
			t.Errorf("expected error for capacity %d", capacity)
		}
	}
}

func TestGate_AcquireRelease(t *testing.T) {
	gate, err := NewGate(2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	if err := gate.Acquire(ctx); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	if err := gate.Acquire(ctx); err != nil {
		t.Fatalf("second acquire failed: %v", err)
	}
	if gate.InUse() != 2 || gate.Available() != 0 {
		t.Errorf("expected full gate, got in_use=%d available=%d", gate.InUse(), gate.Available())
	}
	if gate.TryAcquire() {
		t.Error("expected TryAcquire to fail on a full gate")
	}

	gate.Release()
	if !gate.TryAcquire() {
		t.Error("expected TryAcquire to succeed after release")
	}
	gate.Release()
	gate.Release()

	if gate.InUse() != 0 || gate.Available() != 2 {
		t.Errorf("expected empty gate, got in_use=%d available=%d", gate.InUse(), gate.Available())
	}
	if gate.Capacity() != 2 || gate.Timeout() != time.Second {
		t.Error("unexpected gate settings")
	}
}

func TestGate_Timeout(t *testing.T) {
	gate, _ := NewGate(1, 50*time.Millisecond)
	ctx := context.Background()
	if err := gate.Acquire(ctx); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer gate.Release()

	start := time.Now()
	err := gate.Acquire(ctx)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("expected to wait for the timeout, returned after %v", elapsed)
	}
	if gate.Waiting() != 0 {
		t.Errorf("expected no waiters after timeout, got %d", gate.Waiting())
	}
}

func TestGate_ZeroTimeoutFailsFast(t *testing.T) {
	gate, _ := NewGate(1, 0)
	if err := gate.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer gate.Release()

	if err := gate.Acquire(context.Background()); !errors.Is(err, ErrTimeout) {
		t.Errorf("expected immediate ErrTimeout, got %v", err)
	}
}

func TestGate_ContextCancelled(t *testing.T) {
	gate, _ := NewGate(1, time.Minute)
	if err := gate.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer gate.Release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if err := gate.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGate_WaiterIsAdmittedOnRelease(t *testing.T) {
	gate, _ := NewGate(1, time.Second)
	if err := gate.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- gate.Acquire(context.Background()) }()

	deadline := time.Now().Add(time.Second)
	for gate.Waiting() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("waiter never blocked")
		}
		time.Sleep(time.Millisecond)
	}

	gate.Release()
	if err := <-done; err != nil {
		t.Fatalf("waiter failed: %v", err)
	}
	if gate.InUse() != 1 {
		t.Errorf("expected waiter to hold the slot, got in_use=%d", gate.InUse())
	}
	gate.Release()
}

func TestGate_AdmitsWaitersInArrivalOrder(t *testing.T) {
	const waiters = 5
	gate, _ := NewGate(1, 5*time.Second)
	if err := gate.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	admitted := make(chan int, waiters)
	for i := 0; i < waiters; i++ {
		go func(id int) {
			if err := gate.Acquire(context.Background()); err != nil {
				t.Errorf("waiter %d failed: %v", id, err)
				return
			}
			admitted <- id
		}(i)

		deadline := time.Now().Add(time.Second)
		for gate.Waiting() != int64(i+1) {
			if time.Now().After(deadline) {
				t.Fatalf("waiter %d never blocked", i)
			}
			time.Sleep(time.Millisecond)
		}
		// Waiting is counted just before the semaphore queues the caller.
		time.Sleep(10 * time.Millisecond)
	}

	for want := 0; want < waiters; want++ {
		gate.Release()
		select {
		case got := <-admitted:
			if got != want {
				t.Errorf("release %d admitted waiter %d, want %d", want, got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("no waiter admitted after release %d", want)
		}
	}
	gate.Release()

	if gate.InUse() != 0 || gate.Waiting() != 0 {
		t.Errorf("expected idle gate, got in_use=%d waiting=%d", gate.InUse(), gate.Waiting())
	}
}

func TestGate_NeverExceedsCapacity(t *testing.T) {
	const capacity = 3
	gate, _ := NewGate(capacity, time.Second)

	var mu sync.Mutex
	current, peak := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gate.Acquire(context.Background()); err != nil {
				t.Errorf("acquire failed: %v", err)
				return
			}
			defer gate.Release()

			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if peak > capacity {
		t.Errorf("peak concurrency %d exceeded capacity %d", peak, capacity)
	}
	if gate.InUse() != 0 {
		t.Errorf("expected all slots released, got %d", gate.InUse())
	}
}
