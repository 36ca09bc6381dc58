package memoslot

import (
	"log/slog"
	"time"
)

/*
Option configures a Cache before it is returned from New.

    cache, err := memoslot.New(factor,
        memoslot.WithCopy(memoslot.CloneSlice[uint64]),
        memoslot.WithLogger(log),
        memoslot.WithStatsInterval(10*time.Second),
    )

Options are not generic so that call sites never spell out type
arguments. Typed options (WithCopy, WithCoalescing) are checked against
the cache's types in New, which fails with ErrOptionType on a mismatch.
*/
type Option func(*options)

type options struct {
	log      *slog.Logger
	interval time.Duration
	copy     any // CopyFunc[O]
	key      any // func(I) string
}

/*
WithCopy sets the defensive copy applied to outputs.

The copy runs when a fresh result is stored and whenever a stored output
leaves the cache (hits, Peek). Use it for any O with internal mutable
structure; immutable types need nothing.

A nil fn keeps the identity copy.
*/
func WithCopy[O any](fn CopyFunc[O]) Option {
	return func(o *options) {
		if fn != nil {
			o.copy = fn
		}
	}
}

// WithLogger sets the structured logger. A nil logger keeps the default,
// which discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

/*
WithStatsInterval starts a background reporter that logs a Stats snapshot
at Info level every d.

If d <= 0 no reporter is started. Call Stop to end it.
*/
func WithStatsInterval(d time.Duration) Option {
	return func(o *options) {
		o.interval = d
	}
}

/*
WithCoalescing makes concurrent misses for the same key share one compute.

By default every miss computes independently, even when several callers
miss on the same new input at once. With coalescing, callers whose inputs
map to the same key wait for a single in-flight compute and each receive
an independent copy of its result.

key must be injective over the inputs in use: two inputs with equal keys
are treated as the same input. A nil key disables coalescing.

The shared compute runs on a context that keeps the first caller's values
but not its cancellation, so one caller giving up does not fail the
others. Each caller still stops waiting when its own ctx is done.
*/
func WithCoalescing[I comparable](key func(I) string) Option {
	return func(o *options) {
		if key == nil {
			o.key = nil
			return
		}
		o.key = key
	}
}
