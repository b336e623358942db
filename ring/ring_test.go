package ring

import (
	"errors"
	"slices"
	"testing"
)

type countingMetrics struct{ appends, overwrites int }

func (m *countingMetrics) Append()    { m.appends++ }
func (m *countingMetrics) Overwrite() { m.overwrites++ }

func mustNew[T any](t *testing.T, capacity int) *Buffer[T] {
	t.Helper()
	b, err := New[T](capacity)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestBuffer_RejectsNonPositiveCapacity(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{0, -3} {
		b, err := New[int](capacity)
		if !errors.Is(err, ErrInvalidCapacity) || b != nil {
			t.Fatalf("capacity %d: got %v, %v", capacity, b, err)
		}
	}
}

// Capacity 3: append 1..4 -> [2 3 4].
func TestBuffer_OverwriteScenario(t *testing.T) {
	t.Parallel()

	b := mustNew[int](t, 3)
	for i := 1; i <= 4; i++ {
		b.Append(i)
	}
	if got := b.Get(); !slices.Equal(got, []int{2, 3, 4}) {
		t.Fatalf("Get = %v, want [2 3 4]", got)
	}
	// the first slot was reused in place
	if got := b.Slots(); !slices.Equal(got, []int{4, 2, 3}) {
		t.Fatalf("Slots = %v, want [4 2 3]", got)
	}
}

func TestBuffer_BelowCapacity(t *testing.T) {
	t.Parallel()

	b := mustNew[string](t, 4)
	if got := b.Get(); len(got) != 0 {
		t.Fatalf("empty Get = %v", got)
	}
	b.Append("a")
	b.Append("b")
	if got := b.Get(); !slices.Equal(got, []string{"a", "b"}) || b.Len() != 2 || b.Cap() != 4 {
		t.Fatalf("Get = %v len=%d cap=%d", got, b.Len(), b.Cap())
	}
}

// After capacity+k appends Get returns the last capacity items in append
// order, and Len never exceeds capacity.
func TestBuffer_RetainsLastItems(t *testing.T) {
	t.Parallel()

	for capacity := 1; capacity <= 5; capacity++ {
		b := mustNew[int](t, capacity)
		for n := 1; n <= 3*capacity+2; n++ {
			b.Append(n)
			if b.Len() > capacity {
				t.Fatalf("cap %d: Len %d", capacity, b.Len())
			}
			var want []int
			for v := max(1, n-capacity+1); v <= n; v++ {
				want = append(want, v)
			}
			if got := b.Get(); !slices.Equal(got, want) {
				t.Fatalf("cap %d after %d appends: Get = %v, want %v", capacity, n, got, want)
			}
		}
	}
}

// Once full, appends overwrite payloads without relinking nodes.
func TestBuffer_NoRelinkAfterFull(t *testing.T) {
	t.Parallel()

	b := mustNew[int](t, 3)
	for i := range 3 {
		b.Append(i)
	}
	head, tail := b.items.Front(), b.items.Back()
	for i := range 10 {
		b.Append(i)
	}
	if b.items.Front() != head || b.items.Back() != tail || b.Len() != 3 {
		t.Fatal("overwrite must not relink nodes")
	}
}

func TestBuffer_OptionsCallbacksAndReset(t *testing.T) {
	t.Parallel()

	m := &countingMetrics{}
	var dropped []int
	b, err := NewWithOptions(Options[int]{
		Capacity:    2,
		Metrics:     m,
		OnOverwrite: func(old int) { dropped = append(dropped, old) },
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 5; i++ {
		b.Append(i)
	}
	if m.appends != 5 || m.overwrites != 3 {
		t.Fatalf("metrics = %+v", m)
	}
	if !slices.Equal(dropped, []int{1, 2, 3}) {
		t.Fatalf("dropped = %v", dropped)
	}

	b.Reset()
	if b.Len() != 0 || len(b.Get()) != 0 {
		t.Fatal("Reset must empty the buffer")
	}
	b.Append(9)
	b.Append(10)
	b.Append(11)
	if got := b.Get(); !slices.Equal(got, []int{10, 11}) {
		t.Fatalf("after Reset Get = %v", got)
	}
}

func TestBuffer_AllStopsEarly(t *testing.T) {
	t.Parallel()

	b := mustNew[int](t, 3)
	for i := 1; i <= 5; i++ {
		b.Append(i)
	}
	var got []int
	for v := range b.All() {
		got = append(got, v)
		if len(got) == 2 {
			break
		}
	}
	if !slices.Equal(got, []int{3, 4}) {
		t.Fatalf("got %v", got)
	}
}
