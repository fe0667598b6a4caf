package parallel

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

// =============================================================================
// WorkerPool Creation Tests
// =============================================================================

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestWorkerPool_CreateDefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -5} {
		pool := NewWorkerPool(n)
		if got, want := pool.Workers(), runtime.GOMAXPROCS(0); got != want {
			t.Errorf("NewWorkerPool(%d).Workers() = %d, want %d", n, got, want)
		}
		pool.Close()
	}
}

// =============================================================================
// ExecuteAll Tests
// =============================================================================

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	work := make([]func(), 1000)
	for i := range work {
		work[i] = func() { counter.Add(1) }
	}

	if err := pool.ExecuteAll(work); err != nil {
		t.Fatalf("ExecuteAll: %v", err)
	}
	if counter.Load() != int64(len(work)) {
		t.Errorf("counter = %d, want %d", counter.Load(), len(work))
	}
}

func TestWorkerPool_ExecuteAll_Empty(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	if err := pool.ExecuteAll(nil); err != nil {
		t.Errorf("ExecuteAll(nil) = %v, want nil", err)
	}
}

func TestWorkerPool_ExecuteAll_Panic(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	var ran atomic.Int64
	work := make([]func(), 30)
	for i := range work {
		work[i] = func() {
			if i == 7 {
				panic("row 7 exploded")
			}
			ran.Add(1)
		}
	}

	err := pool.ExecuteAll(work)
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("ExecuteAll error = %v, want *PanicError", err)
	}
	if pe.Value != "row 7 exploded" {
		t.Errorf("PanicError.Value = %v", pe.Value)
	}
	if len(pe.Stack) == 0 {
		t.Error("PanicError.Stack is empty")
	}
	if ran.Load() != 29 {
		t.Errorf("ran = %d, want 29 (other items must still run)", ran.Load())
	}

	// The pool survives the panic.
	var after atomic.Int64
	if err := pool.ExecuteAll([]func(){func() { after.Add(1) }}); err != nil {
		t.Fatalf("ExecuteAll after panic: %v", err)
	}
	if after.Load() != 1 {
		t.Error("pool did not run work after a panic")
	}
}

func TestWorkerPool_ExecuteAll_Concurrent(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			work := make([]func(), 50)
			for i := range work {
				work[i] = func() { counter.Add(1) }
			}
			_ = pool.ExecuteAll(work)
		}()
	}
	wg.Wait()

	if counter.Load() != 400 {
		t.Errorf("counter = %d, want 400", counter.Load())
	}
}

func TestWorkerPool_ClosedIsNoop(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close() // idempotent

	if pool.IsRunning() {
		t.Error("IsRunning() = true after Close")
	}

	called := false
	if err := pool.ExecuteAll([]func(){func() { called = true }}); err != nil {
		t.Errorf("ExecuteAll on closed pool = %v", err)
	}
	if called {
		t.Error("closed pool executed work")
	}
}

func BenchmarkWorkerPool_ExecuteAll(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	var sink atomic.Int64
	work := make([]func(), 256)
	for i := range work {
		work[i] = func() { sink.Add(int64(i)) }
	}

	b.ResetTimer()
	for range b.N {
		_ = pool.ExecuteAll(work)
	}
}
