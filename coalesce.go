package memoslot

import (
	"context"
	"time"

	"github.com/Krishna8167/memoslot/internal/logger"
)

/*
computeShared is the miss path used when WithCoalescing is enabled.

EXECUTION FLOW:

1. The first caller for a key becomes the leader and runs compute inside
   the singleflight group, on context.WithoutCancel(ctx).
2. On success the leader's flight stores the result exactly like the
   uncoalesced path (critical section 2).
3. Every caller for that key, leader included, waits on the flight or on
   its own ctx, whichever finishes first.
4. When the result was shared between several callers, each gets its own
   copy; a caller that was alone gets the result itself.

Abandoning the wait does not stop the flight: a leader that gives up may
still see its computation land in the slot for the callers that stayed.
Such a caller is counted in Abandoned, not Failures, because the flight
it joined may still end in a Replacement.
*/
func (c *Cache[I, O]) computeShared(ctx context.Context, input I) (O, error) {
	var zero O

	if err := ctx.Err(); err != nil {
		c.recordFailure(input, err)
		return zero, err
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(c.keyOf(input), func() (any, error) {
		c.computes.Add(1)

		start := time.Now()
		out, err := c.compute(flightCtx, input)
		if err != nil {
			return nil, err
		}

		c.store(input, out)
		c.log.Debug("slot replaced", logger.Input(input), logger.Elapsed(start))
		return out, nil
	})

	select {
	case <-ctx.Done():
		err := ctx.Err()
		c.recordAbandon(input, err)
		return zero, err
	case res := <-ch:
		if res.Err != nil {
			c.recordFailure(input, res.Err)
			return zero, res.Err
		}
		out, _ := res.Val.(O)
		if res.Shared {
			return c.copy(out), nil
		}
		return out, nil
	}
}

func (c *Cache[I, O]) recordAbandon(input I, err error) {
	c.mu.Lock()
	c.stats.Abandoned++
	c.mu.Unlock()

	c.log.Debug("wait abandoned", logger.Input(input), logger.Error(err))
}
