package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestSharded_RejectsNonPositiveCapacity(t *testing.T) {
	t.Parallel()

	if _, err := NewSharded(ShardedOptions[string, int]{}); !errors.Is(err, ErrInvalidCapacity) {
		t.Fatalf("want ErrInvalidCapacity, got %v", err)
	}
}

func TestSharded_ShardCountPowerOfTwo(t *testing.T) {
	t.Parallel()

	s, err := NewSharded(ShardedOptions[string, int]{
		Options: Options[string, int]{Capacity: 100},
		Shards:  5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(s.shards) != 8 {
		t.Fatalf("shards = %d, want 8", len(s.shards))
	}
	if got := s.shards[0].c.Cap(); got != 13 {
		t.Fatalf("per-shard capacity = %d, want ceil(100/8)=13", got)
	}
}

func TestSharded_SmallCapacityClampsShards(t *testing.T) {
	t.Parallel()

	s, err := NewSharded(ShardedOptions[int, int]{
		Options: Options[int, int]{Capacity: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(s.shards) != 1 {
		t.Fatalf("shards = %d, want 1", len(s.shards))
	}
	for i := range 100 {
		s.Set(i, i)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}

	s, err = NewSharded(ShardedOptions[int, int]{
		Options: Options[int, int]{Capacity: 3},
		Shards:  16,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(s.shards) != 4 {
		t.Fatalf("shards = %d, want NextPow2(3)=4", len(s.shards))
	}
	for i := range 100 {
		s.Set(i, i)
	}
	if s.Len() > 4 {
		t.Fatalf("Len = %d, want <= 4", s.Len())
	}
}

// Keys that are neither byte-like nor integers still route to a stable shard.
func TestSharded_StructKeys(t *testing.T) {
	t.Parallel()

	type point struct{ x, y int }
	s, err := NewSharded(ShardedOptions[point, int]{
		Options: Options[point, int]{Capacity: 64},
		Shards:  8,
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := range 32 {
		s.Set(point{i, -i}, i)
	}
	if s.Len() != 32 {
		t.Fatalf("Len = %d, want 32", s.Len())
	}
	for i := range 32 {
		if v, ok := s.Get(point{i, -i}); !ok || v != i {
			t.Fatalf("Get(%d) = %d,%v", i, v, ok)
		}
	}
	if !s.Remove(point{3, -3}) || s.Len() != 31 {
		t.Fatalf("Remove failed, Len = %d", s.Len())
	}
}

// A single shard keeps LRU order global.
func TestSharded_SingleShardLRU(t *testing.T) {
	t.Parallel()

	var evicted []string
	s, err := NewSharded(ShardedOptions[string, int]{
		Options: Options[string, int]{
			Capacity: 2,
			OnEvict:  func(k string, _ int, _ EvictReason) { evicted = append(evicted, k) },
		},
		Shards: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	s.Set("a", 1)
	s.Set("b", 2)
	if _, ok := s.Get("a"); !ok {
		t.Fatal("expect hit for a")
	}
	s.Set("c", 3)

	if _, ok := s.Get("b"); ok {
		t.Fatal("b must be evicted")
	}
	if v, ok := s.Peek("c"); !ok || v != 3 {
		t.Fatal("c must be present")
	}
	if !s.Add("d", 4) || s.Add("d", 5) {
		t.Fatal("Add must insert once")
	}
	if !s.Remove("d") {
		t.Fatal("Remove d must be true")
	}
	if len(evicted) != 2 || evicted[0] != "b" {
		t.Fatalf("evicted = %v", evicted)
	}

	st := s.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Evictions != 2 {
		t.Fatalf("stats = %+v", st)
	}

	s.Purge()
	if s.Len() != 0 {
		t.Fatalf("Len after Purge = %d", s.Len())
	}
}

func TestSharded_GetOrLoadWithoutLoader(t *testing.T) {
	t.Parallel()

	s, err := NewSharded(ShardedOptions[string, int]{Options: Options[string, int]{Capacity: 4}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetOrLoad(context.Background(), "k"); !errors.Is(err, ErrNoLoader) {
		t.Fatalf("want ErrNoLoader, got %v", err)
	}
}

func TestSharded_GetOrLoadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	s, err := NewSharded(ShardedOptions[string, int]{
		Options: Options[string, int]{Capacity: 4},
		Loader:  func(context.Context, string) (int, error) { return 0, boom },
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetOrLoad(context.Background(), "k"); !errors.Is(err, boom) {
		t.Fatalf("want loader error, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatal("failed load must not be cached")
	}
}

// Concurrent GetOrLoad calls for the same key should trigger the Loader
// at most once; subsequent calls are cache hits.
func TestSharded_GetOrLoad_Singleflight(t *testing.T) {
	var calls int64

	s, err := NewSharded(ShardedOptions[string, string]{
		Options: Options[string, string]{Capacity: 64},
		Loader: func(_ context.Context, k string) (string, error) {
			atomic.AddInt64(&calls, 1)
			time.Sleep(5 * time.Millisecond) // simulate I/O
			return "v:" + k, nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	const N = 64
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := make(chan struct{})
	var g errgroup.Group
	for i := 0; i < N; i++ {
		g.Go(func() error {
			<-start
			v, err := s.GetOrLoad(ctx, "k")
			if err != nil {
				return err
			}
			if v != "v:k" {
				return fmt.Errorf("got %q", v)
			}
			return nil
		})
	}
	close(start)
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("loader must run exactly once, got %d", got)
	}
	if v, err := s.GetOrLoad(context.Background(), "k"); err != nil || v != "v:k" {
		t.Fatalf("second GetOrLoad failed: v=%q err=%v", v, err)
	}
}

// A mixed workload of concurrent Set/Get/Add/Remove on random keys.
// Should pass under -race; capacity must hold throughout.
func TestSharded_RaceMixed(t *testing.T) {
	const capacity = 512
	s, err := NewSharded(ShardedOptions[string, []byte]{
		Options: Options[string, []byte]{Capacity: capacity},
		Shards:  16,
	})
	if err != nil {
		t.Fatal(err)
	}

	workers := 4 * runtime.GOMAXPROCS(0)
	keyspace := 5_000
	deadline := time.Now().Add(300 * time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(id) * 9973))
			for time.Now().Before(deadline) {
				k := "k:" + strconv.Itoa(r.Intn(keyspace))
				switch r.Intn(10) {
				case 0:
					s.Remove(k)
				case 1:
					s.Add(k, []byte("x"))
				case 2, 3:
					s.Set(k, []byte("x"))
				default:
					s.Get(k)
				}
			}
		}(w)
	}
	wg.Wait()

	// 16 shards × ceil(512/16)
	if n := s.Len(); n > capacity {
		t.Fatalf("Len = %d exceeds capacity %d", n, capacity)
	}
}
