package memoslot

import (
	"log/slog"
	"time"

	"github.com/Krishna8167/memoslot/internal/logger"
)

/*
startReporter launches the background stats reporter.

================================================================================
EXECUTION MODEL
================================================================================

- If interval <= 0:
    → No goroutine is started.

- If interval > 0:
    → A time.Ticker is created.
    → A dedicated goroutine logs one Stats snapshot per tick.

The reporter only reads state through Stats, taking the cache lock for
the length of a struct copy. It never touches the slot.

================================================================================
SHUTDOWN
================================================================================

Stop closes stopChan; the goroutine stops its ticker and returns.
*/
func (c *Cache[I, O]) startReporter() {
	if c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)

	go func() {
		for {
			select {
			case <-ticker.C:
				c.report()
			case <-c.stopChan:
				ticker.Stop()
				return
			}
		}
	}()
}

func (c *Cache[I, O]) report() {
	s := c.Stats()
	c.log.Info("cache stats",
		logger.Group("stats",
			logger.Count("requests", s.Requests),
			logger.Count("hits", s.Hits),
			logger.Count("computes", s.Computes),
			logger.Count("failures", s.Failures),
			logger.Count("abandoned", s.Abandoned),
			logger.Count("replacements", s.Replacements),
			logger.Ratio("hit_ratio", s.HitRatio()),
		),
		slog.String("state", s.State.String()),
	)
}

/*
Stop terminates the background stats reporter, if one is running.

Stop is safe to call more than once and on caches created without
WithStatsInterval. The cache itself stays fully usable afterwards: Stop
only ends reporting.
*/
func (c *Cache[I, O]) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}
