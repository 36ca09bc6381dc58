package memoslot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Krishna8167/memoslot/internal/logger"
)

/*
Cache memoizes the most recent result of an expensive, pure computation.

It holds exactly one (input, output) pair, the "slot", together with
request counters. A call whose input equals the stored input is served
from the slot; any other input is computed afresh and replaces the slot.

================================================================================
ARCHITECTURAL OVERVIEW
================================================================================

The cache is the generic form of the classic cached-factorizer servlet:

    lastInput, lastOutput   -> the slot (always updated together)
    requests, hits          -> exact counters for hit ratio reporting

The computation itself is owned by the caller and supplied once to New.

================================================================================
CONCURRENCY MODEL
================================================================================

A single sync.Mutex guards every field of the cache state. It is held in
two narrow critical sections only:

1. Check-and-count
   - Increment requests.
   - Compare input with the slot; on a hit, increment hits and copy out
     the stored output.

2. Replace
   - Write input and output into the slot as one step.

The compute function always runs with the lock released, so a slow
computation never serializes unrelated callers. Two concurrent misses
each compute independently; whichever finishes last owns the slot, and
its input and output are always stored as a matched pair.

================================================================================
ALIASING
================================================================================

Outputs with internal mutable structure (slices, maps, pointers) are
copied with the configured CopyFunc on the way in and on every hit, so
no caller ever holds a reference to the stored value.

================================================================================
STRUCTURE FIELDS
================================================================================

compute  -> caller-supplied computation, fixed for the cache lifetime
copy     -> defensive copy for O (identity unless WithCopy is used)
mu       -> exclusive lock over slot and stats
slot     -> the cached pair
stats    -> request, hit, failure, abandon and replacement counters
computes -> compute invocations, atomic so the miss path never takes
            the lock between the two critical sections
log      -> structured logger (discards by default)
interval -> stats reporter period (0 disables the reporter)
group    -> in-flight deduplication, nil unless WithCoalescing is used
*/
type Cache[I comparable, O any] struct {
	compute ComputeFunc[I, O]
	copy    CopyFunc[O]

	mu    sync.Mutex
	slot  slot[I, O]
	stats Stats

	// computes is counted outside both critical sections; Stats folds it
	// into the snapshot.
	computes atomic.Uint64

	log      *slog.Logger
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once

	group *singleflight.Group
	keyOf func(I) string
}

// ComputeFunc produces the output for an input. It must be pure: the same
// input always yields an equivalent output. It may block, and it must not
// call back into the Cache that invokes it.
type ComputeFunc[I, O any] func(ctx context.Context, input I) (O, error)

/*
New creates a Cache around compute.

INITIALIZATION STEPS:
1. Validate compute.
2. Apply user-provided options over the defaults (identity copy,
   discarding logger, no reporter, no coalescing).
3. Check typed options against I and O.
4. Start the stats reporter if an interval was configured.

The slot starts EMPTY and every counter starts at zero.
*/
func New[I comparable, O any](compute ComputeFunc[I, O], opts ...Option) (*Cache[I, O], error) {
	if compute == nil {
		return nil, ErrNilCompute
	}

	o := options{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cache[I, O]{
		compute:  compute,
		copy:     identity[O],
		log:      o.log.With(logger.Component("memoslot")),
		interval: o.interval,
		stopChan: make(chan struct{}),
	}

	if o.copy != nil {
		fn, ok := o.copy.(CopyFunc[O])
		if !ok {
			return nil, fmt.Errorf("%w: WithCopy got %T, want CopyFunc[%T]", ErrOptionType, o.copy, *new(O))
		}
		c.copy = fn
	}

	if o.key != nil {
		fn, ok := o.key.(func(I) string)
		if !ok {
			return nil, fmt.Errorf("%w: WithCoalescing got %T, want func(%T) string", ErrOptionType, o.key, *new(I))
		}
		c.keyOf = fn
		c.group = &singleflight.Group{}
	}

	c.startReporter()

	return c, nil
}

// MustNew is like New but panics on error.
func MustNew[I comparable, O any](compute ComputeFunc[I, O], opts ...Option) *Cache[I, O] {
	c, err := New(compute, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

/*
GetOrCompute returns the output for input, serving it from the slot when
input equals the last successfully computed input.

EXECUTION FLOW:

1. Check-and-count under the lock (see Cache).
2. Hit  -> return the copied output; compute is not called.
3. Miss -> if ctx is already done, return ctx.Err() without computing.
           Otherwise call compute with no lock held.
4. compute failed    -> return its error unchanged; the slot is untouched.
   ctx done by then  -> discard the result, return ctx.Err(); slot untouched.
   success           -> replace the slot with (input, copy(result)).
5. Return result itself, not the stored copy.

The request is counted in step 1 whatever the outcome.
*/
func (c *Cache[I, O]) GetOrCompute(ctx context.Context, input I) (O, error) {
	if out, ok := c.lookup(input); ok {
		return out, nil
	}

	if c.group != nil {
		return c.computeShared(ctx, input)
	}
	return c.computeAndStore(ctx, input)
}

// lookup is critical section 1.
func (c *Cache[I, O]) lookup(input I) (O, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Requests++
	if c.slot.matches(input) {
		c.stats.Hits++
		return c.copy(c.slot.output), true
	}

	var zero O
	return zero, false
}

func (c *Cache[I, O]) computeAndStore(ctx context.Context, input I) (O, error) {
	var zero O

	if err := ctx.Err(); err != nil {
		c.recordFailure(input, err)
		return zero, err
	}

	c.computes.Add(1)

	start := time.Now()
	out, err := c.compute(ctx, input)
	if err != nil {
		c.recordFailure(input, err)
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		c.recordFailure(input, err)
		return zero, err
	}

	c.store(input, out)
	c.log.Debug("slot replaced", logger.Input(input), logger.Elapsed(start))

	return out, nil
}

// store is critical section 2.
func (c *Cache[I, O]) store(input I, out O) {
	stored := c.copy(out)

	c.mu.Lock()
	c.slot.replace(input, stored)
	c.stats.Replacements++
	c.mu.Unlock()
}

func (c *Cache[I, O]) recordFailure(input I, err error) {
	c.mu.Lock()
	c.stats.Failures++
	c.mu.Unlock()

	c.log.Debug("compute failed", logger.Input(input), logger.Error(err))
}

// TotalRequests returns the number of GetOrCompute calls made so far.
func (c *Cache[I, O]) TotalRequests() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.Requests
}

// CacheHitRatio returns hits divided by requests, or 0 before the first
// request.
func (c *Cache[I, O]) CacheHitRatio() float64 {
	return c.Stats().HitRatio()
}

// Stats returns a consistent snapshot of all counters and the slot state.
func (c *Cache[I, O]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Computes = c.computes.Load()
	s.State = c.slot.state()
	return s
}

// State reports whether the slot has been populated.
func (c *Cache[I, O]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slot.state()
}

// Peek returns a copy of the cached pair without counting a request.
// ok is false while the slot is empty.
func (c *Cache[I, O]) Peek() (input I, output O, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.slot.populated {
		return input, output, false
	}
	return c.slot.input, c.copy(c.slot.output), true
}

// String implements fmt.Stringer for debugging output.
func (c *Cache[I, O]) String() string {
	s := c.Stats()
	return fmt.Sprintf("memoslot.Cache{state=%s requests=%d hits=%d ratio=%.3f}",
		s.State, s.Requests, s.Hits, s.HitRatio())
}
