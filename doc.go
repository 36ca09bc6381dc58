// Package memoslot provides a single-slot memoizing cache for expensive,
// pure computations shared by many goroutines.
//
// A Cache remembers the last input it computed and that input's output.
// Repeating the input returns a copy of the stored output; any other input
// is computed with the lock released and then replaces the slot, input and
// output together.
//
//	cache, err := memoslot.New(factor, memoslot.WithCopy(memoslot.CloneSlice[uint64]))
//	if err != nil {
//		return err
//	}
//	factors, err := cache.GetOrCompute(ctx, 600851475143)
//
// Request and hit counters are exact under any concurrency; see Stats,
// TotalRequests and CacheHitRatio. NewCollector exports them to Prometheus.
package memoslot
