// Package merge combines several chronological per-source streams into one
// chronological stream via a min-heap, the same k-way merge shape as the
// original engine's MergedLogStream/ProcessedLineMerger (reversed Ord over
// a BinaryHeap), expressed here with Go generics and container/heap.
package merge

import (
	"container/heap"
	"time"
)

// Source is anything that lazily yields values of type T. It matches
// lineiter.Iterator.Next's signature exactly, so a lineiter.Iterator can be
// passed directly as a Source[model.LogLine].
type Source[T any] interface {
	Next() (T, bool, error)
}

type item[T any] struct {
	value     T
	ts        time.Time
	sourceIdx int
}

type itemHeap[T any] []item[T]

func (h itemHeap[T]) Len() int { return len(h) }
func (h itemHeap[T]) Less(i, j int) bool {
	if !h[i].ts.Equal(h[j].ts) {
		return h[i].ts.Before(h[j].ts)
	}
	return h[i].sourceIdx < h[j].sourceIdx
}
func (h itemHeap[T]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *itemHeap[T]) Push(x any)        { *h = append(*h, x.(item[T])) }
func (h *itemHeap[T]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Merger yields values from a fixed set of sources in non-decreasing
// timestamp order, breaking ties by source index. It refills its heap from
// the same source a value was popped from, so memory stays O(number of
// sources) regardless of stream length.
type Merger[T any] struct {
	sources []Source[T]
	timeOf  func(T) time.Time
	h       itemHeap[T]
}

// NewMerger primes the heap with one value from every source. timeOf
// extracts the sort key from a value of T.
func NewMerger[T any](sources []Source[T], timeOf func(T) time.Time) (*Merger[T], error) {
	m := &Merger[T]{sources: sources, timeOf: timeOf, h: make(itemHeap[T], 0, len(sources))}
	for idx, src := range sources {
		v, ok, err := src.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		m.h = append(m.h, item[T]{value: v, ts: timeOf(v), sourceIdx: idx})
	}
	heap.Init(&m.h)
	return m, nil
}

// Next pops the chronologically earliest value across all sources and
// refills from whichever source it came from. ok is false with a nil error
// once every source is exhausted.
func (m *Merger[T]) Next() (T, bool, error) {
	var zero T
	if m.h.Len() == 0 {
		return zero, false, nil
	}
	popped := heap.Pop(&m.h).(item[T])

	next, ok, err := m.sources[popped.sourceIdx].Next()
	if err != nil {
		return zero, false, err
	}
	if ok {
		heap.Push(&m.h, item[T]{value: next, ts: m.timeOf(next), sourceIdx: popped.sourceIdx})
	}
	return popped.value, true, nil
}
