// ordermap.go - order-preserving parallel map
//
// (c) 2024- Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package ordermap implements a bounded producer -> N worker ->
// reorder buffer pipeline: Map applies a function to every item of
// an input channel across N worker goroutines and emits results
// either in input order (sorted) or in completion order.
package ordermap

import (
	"runtime"
)

// job tags an input value with its position in the input sequence,
// so results can be reassembled in that order downstream.
type job[In any] struct {
	index int
	value In
}

// Result is one (possibly out-of-order) outcome of applying f to a
// single input; Index is its position in the original input stream.
type Result[Out any] struct {
	Index int
	Value Out
	Err   error
}

// Map applies f to every value received on in using nworkers worker
// goroutines and returns a channel of results. When sorted is true,
// results are emitted in the same order as in (the reorder buffer
// parks out-of-order results keyed by job index and releases them as
// the "next expected" index advances); an error at job j is released
// only after every earlier result has been emitted, so an error never
// jumps the queue. When sorted is false, results are emitted as soon
// as a worker produces them, with no ordering guarantee. The returned
// channel is closed once in is drained, every worker has exited, and
// every result has been emitted.
func Map[In, Out any](in <-chan In, nworkers int, sorted bool, f func(In) (Out, error)) <-chan Result[Out] {
	if nworkers <= 0 {
		nworkers = runtime.NumCPU()
	}

	jobs := make(chan job[In], nworkers)
	results := make(chan Result[Out])
	rawResults := make(chan indexedResult[Out], nworkers)

	// producer: tag each input item with its sequence number
	go func() {
		defer close(jobs)
		i := 0
		for v := range in {
			jobs <- job[In]{index: i, value: v}
			i++
		}
	}()

	// N workers drain jobs and push tagged results
	done := make(chan struct{}, nworkers)
	for w := 0; w < nworkers; w++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := range jobs {
				out, err := f(j.value)
				rawResults <- indexedResult[Out]{index: j.index, value: out, err: err}
			}
		}()
	}

	// closer: once all workers have exited, no more raw results come
	go func() {
		for w := 0; w < nworkers; w++ {
			<-done
		}
		close(rawResults)
	}()

	// consumer: reassemble order (if requested) and emit
	go func() {
		defer close(results)

		if !sorted {
			for r := range rawResults {
				results <- Result[Out]{Index: r.index, Value: r.value, Err: r.err}
			}
			return
		}

		pending := make(map[int]indexedResult[Out])
		next := 0
		for r := range rawResults {
			pending[r.index] = r
			for {
				r2, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				results <- Result[Out]{Index: r2.index, Value: r2.value, Err: r2.err}
				next++
			}
		}
	}()

	return results
}

type indexedResult[Out any] struct {
	index int
	value Out
	err   error
}
