package dedupe

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestWorkPoolRunsAllAndCollectsErrors(t *testing.T) {
	var n atomic.Int64
	wp := newWorkPool(4, func(_ int, w int) error {
		n.Add(int64(w))
		if w == 13 {
			return errors.New("boom")
		}
		return nil
	})
	var want int64
	for i := 1; i <= 100; i++ {
		want += int64(i)
		wp.submit(i)
	}
	err := wp.wait()
	if err == nil {
		t.Fatalf("expected an error from the w==13 unit of work")
	}
	if n.Load() != want {
		t.Fatalf("sum = %d, want %d", n.Load(), want)
	}
}

func TestWorkPoolDefaultsThreads(t *testing.T) {
	wp := newWorkPool(0, func(_ int, w int) error { return nil })
	wp.submit(1)
	if err := wp.wait(); err != nil {
		t.Fatalf("wait: %s", err)
	}
}
