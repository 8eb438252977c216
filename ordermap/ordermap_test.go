package ordermap

import "testing"

func TestMapSortedPreservesOrder(t *testing.T) {
	in := make(chan int)
	go func() {
		defer close(in)
		for i := 0; i < 200; i++ {
			in <- i
		}
	}()

	results := Map(in, 8, true, func(v int) (int, error) {
		return v * v, nil
	})

	next := 0
	for r := range results {
		if r.Index != next {
			t.Fatalf("out of order: got Index %d, want %d", r.Index, next)
		}
		if r.Value != next*next {
			t.Fatalf("wrong value at index %d: got %d, want %d", next, r.Value, next*next)
		}
		next++
	}
	if next != 200 {
		t.Fatalf("received %d results, want 200", next)
	}
}

func TestMapUnsortedCompletesAll(t *testing.T) {
	in := make(chan int)
	go func() {
		defer close(in)
		for i := 0; i < 100; i++ {
			in <- i
		}
	}()

	results := Map(in, 4, false, func(v int) (int, error) {
		return v + 1, nil
	})

	seen := make(map[int]bool)
	for r := range results {
		if r.Value != r.Index+1 {
			t.Fatalf("value %d does not match its own index %d", r.Value, r.Index)
		}
		seen[r.Index] = true
	}
	if len(seen) != 100 {
		t.Fatalf("saw %d distinct indices, want 100", len(seen))
	}
}

func TestMapPropagatesErrors(t *testing.T) {
	in := make(chan int, 3)
	in <- 1
	in <- 2
	in <- 3
	close(in)

	results := Map(in, 2, true, func(v int) (int, error) {
		if v == 2 {
			return 0, errBoom
		}
		return v, nil
	})

	var errs int
	for r := range results {
		if r.Err != nil {
			errs++
		}
	}
	if errs != 1 {
		t.Fatalf("expected exactly 1 error result, got %d", errs)
	}
}

var errBoom = &testError{"boom"}

type testError struct{ s string }

func (e *testError) Error() string { return e.s }
