package list

// Handle addresses a node slot in a List's arena.
// Handles stay valid while the node is linked; once the node is removed
// its slot may be recycled for a later insertion.
type Handle uint32

// Nil is the "no neighbor" sentinel. The zero Handle never addresses a node.
const Nil Handle = 0

// node is an arena cell: the payload plus links to its neighbors.
type node[T any] struct {
	val  T
	prev Handle
	next Handle
}

// ---- node primitives ----
//
// These rewire links only. They never touch head, tail or len, and they do
// no bounds checks: callers must pass handles of live, consistently linked
// nodes.

// at returns the arena cell for h (h must not be Nil).
func (l *List[T]) at(h Handle) *node[T] { return &l.nodes[h-1] }

// alloc takes a slot from the free stack (or grows the arena) and stores v.
// The new node is unlinked.
func (l *List[T]) alloc(v T) Handle {
	if n := len(l.free); n > 0 {
		h := l.free[n-1]
		l.free = l.free[:n-1]
		*l.at(h) = node[T]{val: v}
		return h
	}
	l.nodes = append(l.nodes, node[T]{val: v})
	return Handle(len(l.nodes))
}

// release drops the payload of h and returns its slot to the free stack.
func (l *List[T]) release(h Handle) {
	*l.at(h) = node[T]{}
	l.free = append(l.free, h)
}

// linkAfter splices the unlinked node h between at and at.next.
func (l *List[T]) linkAfter(at, h Handle) {
	a, n := l.at(at), l.at(h)
	n.prev = at
	n.next = a.next
	if a.next != Nil {
		l.at(a.next).prev = h
	}
	a.next = h
}

// linkBefore splices the unlinked node h between at.prev and at.
func (l *List[T]) linkBefore(at, h Handle) {
	a, n := l.at(at), l.at(h)
	n.next = at
	n.prev = a.prev
	if a.prev != Nil {
		l.at(a.prev).next = h
	}
	a.prev = h
}

// insertAfter creates a node holding v right after at.
func (l *List[T]) insertAfter(at Handle, v T) Handle {
	h := l.alloc(v)
	l.linkAfter(at, h)
	return h
}

// insertBefore creates a node holding v right before at.
func (l *List[T]) insertBefore(at Handle, v T) Handle {
	h := l.alloc(v)
	l.linkBefore(at, h)
	return h
}

// unlink makes the neighbors of h skip it. h keeps its own prev/next.
func (l *List[T]) unlink(h Handle) {
	n := l.at(h)
	if n.prev != Nil {
		l.at(n.prev).next = n.next
	}
	if n.next != Nil {
		l.at(n.next).prev = n.prev
	}
}
