// Package ring implements a fixed-capacity ring buffer on top of package
// list. Below capacity it appends to the list tail; once full it overwrites
// the oldest slot in place and advances the "oldest" cursor, wrapping from
// tail to head. No node is allocated or relinked after the buffer fills.
//
// A Buffer is not safe for concurrent use.
package ring

import (
	"errors"
	"fmt"
	"iter"

	"github.com/IvanBrykalov/linkedcache/list"
)

// ErrInvalidCapacity is returned by constructors when Capacity <= 0.
var ErrInvalidCapacity = errors.New("ring: capacity must be > 0")

// Metrics receives ring buffer signals.
type Metrics interface {
	// Append is called for every appended item.
	Append()
	// Overwrite is called when an append replaced the oldest item.
	Overwrite()
}

// NoopMetrics discards all signals. It is the default.
type NoopMetrics struct{}

func (NoopMetrics) Append()    {}
func (NoopMetrics) Overwrite() {}

// Options configures a Buffer. Defaults are applied in NewWithOptions():
//   - nil Metrics => NoopMetrics
type Options[T any] struct {
	// Capacity is the fixed number of retained items. Must be > 0.
	Capacity int

	// OnOverwrite receives the item about to be replaced.
	OnOverwrite func(old T)

	Metrics Metrics
}

// Buffer keeps the last Cap() appended items.
type Buffer[T any] struct {
	cap    int
	items  *list.List[T]
	oldest list.Handle // next slot to overwrite; Nil while below capacity

	opt Options[T]
}

// New returns a Buffer retaining the last capacity items.
func New[T any](capacity int) (*Buffer[T], error) {
	return NewWithOptions(Options[T]{Capacity: capacity})
}

// NewWithOptions returns a Buffer configured by opt.
func NewWithOptions[T any](opt Options[T]) (*Buffer[T], error) {
	if opt.Capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, opt.Capacity)
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	return &Buffer[T]{
		cap:   opt.Capacity,
		items: list.New[T](opt.Capacity),
		opt:   opt,
	}, nil
}

// Append adds v. At capacity it replaces the oldest item in place.
func (b *Buffer[T]) Append(v T) {
	b.opt.Metrics.Append()

	if b.items.Len() < b.cap {
		b.items.AddToTail(v)
		if b.items.Len() == b.cap {
			b.oldest = b.items.Front()
		}
		return
	}

	slot := b.items.Value(b.oldest)
	if cb := b.opt.OnOverwrite; cb != nil {
		cb(*slot)
	}
	*slot = v
	b.opt.Metrics.Overwrite()

	if b.oldest == b.items.Back() {
		b.oldest = b.items.Front()
	} else {
		b.oldest = b.items.Next(b.oldest)
	}
}

// Get returns the retained values from oldest to newest: after n appends
// it is the last min(n, Cap()) items in append order.
func (b *Buffer[T]) Get() []T {
	out := make([]T, 0, b.items.Len())
	for v := range b.All() {
		out = append(out, v)
	}
	return out
}

// All yields the values in the same order as Get.
func (b *Buffer[T]) All() iter.Seq[T] {
	if b.oldest == list.Nil {
		return b.items.All()
	}
	return func(yield func(T) bool) {
		h := b.oldest
		for range b.items.Len() {
			if !yield(*b.items.Value(h)) {
				return
			}
			if h = b.items.Next(h); h == list.Nil {
				h = b.items.Front()
			}
		}
	}
}

// Slots returns the values in physical slot order (list head to tail).
// Once the buffer has wrapped this reflects in-place overwrites rather than
// append order.
func (b *Buffer[T]) Slots() []T { return b.items.Values() }

// Len returns the number of retained items.
func (b *Buffer[T]) Len() int { return b.items.Len() }

// Cap returns the fixed capacity.
func (b *Buffer[T]) Cap() int { return b.cap }

// Reset drops every item. Capacity is unchanged.
func (b *Buffer[T]) Reset() {
	b.items.Clear()
	b.oldest = list.Nil
}
