package memoslot

/*
Stats is a point-in-time snapshot of a Cache.

================================================================================
FIELDS
================================================================================

Requests     -> GetOrCompute calls, counted on entry whatever the outcome
Hits         -> calls served from the slot
Computes     -> compute invocations started by this cache
Failures     -> misses that ended in an error or a cancelled context
Abandoned    -> coalesced waiters whose ctx ended before the shared
                compute did (the compute itself carries on)
Replacements -> successful slot writes
State        -> slot state at the moment of the snapshot

Invariants of every snapshot:

    Hits <= Requests
    Replacements + Failures <= Requests - Hits
    Failures + Abandoned    <= Requests - Hits
    Computes                <= Requests - Hits
    State == StateEmpty  iff  Replacements == 0

Without coalescing Abandoned stays 0. With it, followers that share a
leader's compute are neither Computes nor Replacements, and an abandoned
waiter may be followed by the Replacement of the flight it left.

================================================================================
CONCURRENCY MODEL
================================================================================

Counters other than Computes are mutated under Cache.mu and copied out
as a whole by Cache.Stats, so they belong to the same instant. Computes
is an atomic counter read while that lock is held; it is bumped after
the request was counted, so it never runs ahead of the misses.
*/
type Stats struct {
	Requests     uint64
	Hits         uint64
	Computes     uint64
	Failures     uint64
	Abandoned    uint64
	Replacements uint64
	State        State
}

// Misses is Requests - Hits.
func (s Stats) Misses() uint64 {
	return s.Requests - s.Hits
}

// HitRatio returns Hits / Requests, or 0 when no request has been made.
func (s Stats) HitRatio() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Requests)
}
