// Command bench runs a synthetic Zipf workload against a sharded LRU cache
// and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IvanBrykalov/linkedcache/cache"
	pmet "github.com/IvanBrykalov/linkedcache/metrics/prom"
	"github.com/IvanBrykalov/linkedcache/ring"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type counters struct {
	reads, writes, hits, misses, total atomic.Uint64
}

func main() {
	// ---- Flags ----
	var (
		capacity = flag.Int("cap", 100_000, "cache capacity (entries)")
		shards   = flag.Int("shards", 0, "number of shards (0=auto)")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")

		keys    = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS   = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf_v", 1.0, "Zipf v >= 1")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload = flag.Int("preload", 0, "preload entries (0 = cap/2)")
		window  = flag.Int("window", 10, "number of per-second throughput samples to keep")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr; empty = disabled")
		logLevel    = flag.String("log-level", "info", "log level: debug | info | warn | error")
	)
	flag.Parse()

	// ---- Logging ----
	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", *logLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if *keys < 1 || *zipfS <= 1 || *zipfV < 1 || *readPct < 0 || *readPct > 100 {
		log.Fatal().
			Int("keys", *keys).Float64("zipf_s", *zipfS).Float64("zipf_v", *zipfV).Int("reads", *readPct).
			Msg("invalid workload flags")
	}

	// ---- pprof + Prometheus (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go serve("pprof", *pprofAddr)
	}
	metrics := pmet.New(nil, "linkedcache", "bench", nil)
	samplesMetrics := pmet.NewRing(nil, "linkedcache", "bench_samples", nil)
	if *metricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go serve("metrics", *metricsAddr)
	}

	// ---- Build cache ----
	c, err := cache.NewSharded(cache.ShardedOptions[string, string]{
		Options: cache.Options[string, string]{
			Capacity: *capacity,
			Metrics:  metrics,
		},
		Shards: *shards,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build cache")
	}
	samples, err := ring.NewWithOptions(ring.Options[float64]{Capacity: *window, Metrics: samplesMetrics})
	if err != nil {
		log.Fatal().Err(err).Msg("build sample window")
	}

	// ---- Preload to get a realistic hit-rate ----
	pl := *preload
	if pl == 0 {
		pl = *capacity / 2
	}
	for i := 0; i < pl; i++ {
		k := "k:" + strconv.Itoa(i)
		c.Set(k, "v"+strconv.Itoa(i))
	}
	log.Info().Int("entries", c.Len()).Msg("preloaded")

	// ---- Load generation ----
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	var cnt counters
	workersN := max(*workers, 1)
	keysMax := uint64(*keys - 1)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workersN; w++ {
		g.Go(func() error {
			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			r := rand.New(rand.NewSource(*seed + int64(w)*9973))
			z := rand.NewZipf(r, *zipfS, *zipfV, keysMax)
			return work(gctx, c, r, z, *readPct, &cnt)
		})
	}
	g.Go(func() error {
		sample(gctx, &cnt, samples)
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("workload failed")
	}
	elapsed := time.Since(start)

	// ---- Report ----
	ops := cnt.total.Load()
	readsN := cnt.reads.Load()
	hitRate := 0.0
	if readsN > 0 {
		hitRate = float64(cnt.hits.Load()) / float64(readsN) * 100
	}
	st := c.Stats()

	log.Info().
		Int("cap", *capacity).Int("shards", *shards).Int("workers", workersN).
		Int("keys", *keys).Dur("elapsed", elapsed).Int64("seed", *seed).
		Msg("workload finished")
	log.Info().
		Uint64("ops", ops).
		Float64("ops_per_sec", float64(ops)/elapsed.Seconds()).
		Uint64("reads", readsN).
		Uint64("writes", cnt.writes.Load()).
		Uint64("hits", cnt.hits.Load()).
		Uint64("misses", cnt.misses.Load()).
		Float64("hit_rate_pct", hitRate).
		Uint64("evictions", st.Evictions).
		Int("len", c.Len()).
		Msg("results")
	log.Info().Floats64("ops_per_sec", samples.Get()).Msg("throughput window (oldest first)")
}

// work runs the read/write mix until ctx is done.
func work(ctx context.Context, c *cache.Sharded[string, string], r *rand.Rand, z *rand.Zipf, readPct int, cnt *counters) error {
	key := func() string { return "k:" + strconv.FormatUint(z.Uint64(), 10) }
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		cnt.total.Add(1)
		if int(r.Int31n(100)) < readPct {
			cnt.reads.Add(1)
			if _, ok := c.Get(key()); ok {
				cnt.hits.Add(1)
			} else {
				cnt.misses.Add(1)
			}
		} else {
			cnt.writes.Add(1)
			c.Set(key(), "v"+strconv.Itoa(r.Int()))
		}
	}
}

// sample appends ops/sec once per second into the window.
func sample(ctx context.Context, cnt *counters, window *ring.Buffer[float64]) {
	t := time.NewTicker(time.Second)
	defer t.Stop()

	last, lastAt := cnt.total.Load(), time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			total := cnt.total.Load()
			rate := float64(total-last) / now.Sub(lastAt).Seconds()
			window.Append(rate)
			log.Debug().Float64("ops_per_sec", rate).Msg("sample")
			last, lastAt = total, now
		}
	}
}

func serve(name, addr string) {
	log.Info().Str("addr", addr).Msgf("%s: serving", name)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Str("addr", addr).Msgf("%s: server stopped", name)
	}
}
