package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunsAllTasks(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p := New(3, 10)
	results := p.Run(ctx)

	var ran atomic.Int32
	boom := errors.New("boom")
	for i := 0; i < 10; i++ {
		key := "ok"
		task := func(context.Context) error { ran.Add(1); return nil }
		if i == 4 {
			key = "bad"
			task = func(context.Context) error { ran.Add(1); return boom }
		}
		if err := p.Submit(ctx, key, task); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	p.Close()

	var failed []string
	n := 0
	for r := range results {
		n++
		if r.Err != nil {
			failed = append(failed, r.Key)
		}
	}
	if n != 10 || ran.Load() != 10 {
		t.Fatalf("expected 10 results, got %d (ran %d)", n, ran.Load())
	}
	if len(failed) != 1 || failed[0] != "bad" {
		t.Fatalf("unexpected failures: %v", failed)
	}
}

func TestPool_SubmitAfterClose(t *testing.T) {
	p := New(1, 0)
	p.Close()
	p.Close()
	if err := p.Submit(context.Background(), "x", func(context.Context) error { return nil }); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

func TestPool_SubmitHonoursContext(t *testing.T) {
	p := New(1, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// No workers are running, so the unbuffered send can only fail on ctx.
	if err := p.Submit(ctx, "x", func(context.Context) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
