// factorizer drives a memoslot cache the way a request-handling layer
// would: a pool of workers, one GetOrCompute call per request, each
// request asking for the prime factors of an integer.
//
// Usage:
//
//	factorizer [flags]
//
// Flags:
//
//	-w, --workers         Concurrent request workers (default 8)
//	-n, --requests        Requests per worker (default 10000)
//	-d, --distinct        Distinct inputs cycled through (default 4)
//	-b, --burst           Consecutive requests per input (default 16)
//	    --base            First input (default 600851475143)
//	-c, --coalesce        Share in-flight computations
//	    --stats-interval  Periodic stats logging (default off)
//	-t, --timeout         Per-request timeout (default off)
//	    --log-level       debug, info, warn or error (default info)
//
// Every flag can also be set through the FACTORIZER_* environment variable
// of the same name, or a .env file in the working directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/Krishna8167/memoslot"
	"github.com/Krishna8167/memoslot/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := loadConfig(args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "factorizer: %v\n", err)
		return 2
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	opts := []memoslot.Option{
		memoslot.WithCopy(memoslot.CloneSlice[uint64]),
		memoslot.WithLogger(log),
		memoslot.WithStatsInterval(cfg.StatsInterval),
	}
	if cfg.Coalesce {
		opts = append(opts, memoslot.WithCoalescing(func(n uint64) string {
			return strconv.FormatUint(n, 10)
		}))
	}

	cache, err := memoslot.New(factor, opts...)
	if err != nil {
		log.Error("create cache", logger.Error(err))
		return 1
	}
	defer cache.Stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(memoslot.NewCollector("factorizer", cache, nil))

	start := time.Now()
	failed := serve(ctx, cache, cfg, log)

	s := cache.Stats()
	log.Info("run finished",
		logger.Elapsed(start),
		logger.Count("failed", failed),
		logger.Count("requests", s.Requests),
		logger.Ratio("hit_ratio", s.HitRatio()),
	)

	if err := printMetrics(stdout, reg); err != nil {
		log.Error("gather metrics", logger.Error(err))
		return 1
	}

	if ctx.Err() != nil {
		return 130
	}
	return 0
}

// serve runs the worker pool and returns the number of failed requests.
func serve(ctx context.Context, cache *memoslot.Cache[uint64, []uint64], cfg Config, log *slog.Logger) uint64 {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed uint64
	)

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < cfg.Requests; i++ {
				if ctx.Err() != nil {
					return
				}

				n := input(cfg, w, i)
				if err := handle(ctx, cache, n, cfg.Timeout); err != nil {
					log.Debug("request failed", logger.Input(n), logger.Error(err))
					mu.Lock()
					failed++
					mu.Unlock()
				}
			}
		}(w)
	}

	wg.Wait()
	return failed
}

// input picks the n-th request's integer for worker w. Workers are offset
// from each other so their bursts interleave on the shared slot.
func input(cfg Config, w, i int) uint64 {
	idx := (i/cfg.Burst + w) % cfg.Distinct
	return cfg.Base + uint64(idx)
}

func handle(ctx context.Context, cache *memoslot.Cache[uint64, []uint64], n uint64, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	factors, err := cache.GetOrCompute(ctx, n)
	if err != nil {
		return err
	}

	product := uint64(1)
	for _, f := range factors {
		product *= f
	}
	if product != n {
		return fmt.Errorf("factorizer: factors of %d multiply to %d", n, product)
	}
	return nil
}

func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var v float64
			switch {
			case m.GetCounter() != nil:
				v = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				v = m.GetGauge().GetValue()
			}
			if _, err := fmt.Fprintf(w, "%s %g\n", mf.GetName(), v); err != nil {
				return err
			}
		}
	}
	return nil
}
