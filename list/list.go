// Package list implements a generic doubly linked list whose nodes live in
// an arena and are addressed by integer handles.
//
// The list owns every node by value. Head, tail and any index a caller keeps
// (for example a cache's key->Handle map) are non-owning views into the
// arena, so there are no aliased pointers to invalidate. Every operation that
// takes a Handle is O(1): relocation and removal are pointer surgery on the
// neighbors, never positional scans.
//
// A List is not safe for concurrent use.
package list

import (
	"cmp"
	"iter"
)

// List is a doubly linked list of T. The zero value is an empty list
// ready to use.
type List[T any] struct {
	nodes []node[T] // arena; Handle h lives at nodes[h-1]
	free  []Handle  // recycled slots

	head Handle
	tail Handle
	len  int
}

// New returns an empty list with room for size nodes before the arena grows.
func New[T any](size int) *List[T] {
	if size < 0 {
		size = 0
	}
	return &List[T]{nodes: make([]node[T], 0, size)}
}

// Len returns the number of linked nodes in O(1).
func (l *List[T]) Len() int { return l.len }

// Front returns the head handle, or Nil if the list is empty.
func (l *List[T]) Front() Handle { return l.head }

// Back returns the tail handle, or Nil if the list is empty.
func (l *List[T]) Back() Handle { return l.tail }

// Next returns the neighbor after h, or Nil if h is the tail or Nil.
func (l *List[T]) Next(h Handle) Handle {
	if h == Nil {
		return Nil
	}
	return l.at(h).next
}

// Prev returns the neighbor before h, or Nil if h is the head or Nil.
func (l *List[T]) Prev(h Handle) Handle {
	if h == Nil {
		return Nil
	}
	return l.at(h).prev
}

// Value returns a pointer to the payload of h for in-place reads and writes,
// or nil for a Nil handle. The pointer is valid until the next insertion
// (the arena may grow).
func (l *List[T]) Value(h Handle) *T {
	if h == Nil {
		return nil
	}
	return &l.at(h).val
}

// AddToHead inserts v as the new head and returns its handle.
func (l *List[T]) AddToHead(v T) Handle {
	var h Handle
	if l.head == Nil {
		h = l.alloc(v)
		l.tail = h
	} else {
		h = l.insertBefore(l.head, v)
	}
	l.head = h
	l.len++
	return h
}

// AddToTail inserts v as the new tail and returns its handle.
func (l *List[T]) AddToTail(v T) Handle {
	var h Handle
	if l.tail == Nil {
		h = l.alloc(v)
		l.head = h
	} else {
		h = l.insertAfter(l.tail, v)
	}
	l.tail = h
	l.len++
	return h
}

// InsertAfter inserts v right after the linked node at and returns its handle.
func (l *List[T]) InsertAfter(at Handle, v T) Handle {
	h := l.insertAfter(at, v)
	if at == l.tail {
		l.tail = h
	}
	l.len++
	return h
}

// InsertBefore inserts v right before the linked node at and returns its handle.
func (l *List[T]) InsertBefore(at Handle, v T) Handle {
	h := l.insertBefore(at, v)
	if at == l.head {
		l.head = h
	}
	l.len++
	return h
}

// RemoveFromHead detaches the head and returns its value.
// It reports false on an empty list.
func (l *List[T]) RemoveFromHead() (T, bool) { return l.Remove(l.head) }

// RemoveFromTail detaches the tail and returns its value.
// It reports false on an empty list.
func (l *List[T]) RemoveFromTail() (T, bool) { return l.Remove(l.tail) }

// Remove detaches the linked node h and returns its value. The handle must
// not be used afterwards. It reports false on an empty list or a Nil handle.
func (l *List[T]) Remove(h Handle) (T, bool) {
	if l.len == 0 || h == Nil {
		var zero T
		return zero, false
	}
	v := l.at(h).val

	switch {
	case l.head == l.tail:
		// sole element
		l.head, l.tail = Nil, Nil
	case h == l.head:
		l.head = l.at(h).next
		l.unlink(h)
	case h == l.tail:
		l.tail = l.at(h).prev
		l.unlink(h)
	default:
		l.unlink(h)
	}

	l.len--
	l.release(h)
	return v, true
}

// MoveToFront relocates the linked node h to the head. The handle is
// unchanged. No-op if h is already the head.
func (l *List[T]) MoveToFront(h Handle) {
	if h == l.head {
		return
	}
	if h == l.tail {
		l.tail = l.at(h).prev
	}
	l.unlink(h)
	l.linkBefore(l.head, h)
	l.head = h
}

// MoveToEnd relocates the linked node h to the tail. The handle is
// unchanged. No-op if h is already the tail.
func (l *List[T]) MoveToEnd(h Handle) {
	if h == l.tail {
		return
	}
	if h == l.head {
		l.head = l.at(h).next
	}
	l.unlink(h)
	l.linkAfter(l.tail, h)
	l.tail = h
}

// Clear unlinks every node and drops all payloads. Arena capacity is kept.
func (l *List[T]) Clear() {
	clear(l.nodes)
	l.nodes = l.nodes[:0]
	l.free = l.free[:0]
	l.head, l.tail = Nil, Nil
	l.len = 0
}

// All yields the values from head to tail.
// The list must not be modified during iteration.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for h := l.head; h != Nil; h = l.at(h).next {
			if !yield(l.at(h).val) {
				return
			}
		}
	}
}

// Backward yields the values from tail to head.
func (l *List[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for h := l.tail; h != Nil; h = l.at(h).prev {
			if !yield(l.at(h).val) {
				return
			}
		}
	}
}

// Values returns a snapshot of the values from head to tail.
func (l *List[T]) Values() []T {
	out := make([]T, 0, l.len)
	for v := range l.All() {
		out = append(out, v)
	}
	return out
}

// Max returns the largest value in the list in O(n).
// It reports false on an empty list.
func Max[T cmp.Ordered](l *List[T]) (T, bool) {
	if l.head == Nil {
		var zero T
		return zero, false
	}
	best := l.at(l.head).val
	for h := l.at(l.head).next; h != Nil; h = l.at(h).next {
		best = max(best, l.at(h).val)
	}
	return best, true
}
