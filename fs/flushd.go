package fs

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultFlushPeriod is how often the write-back daemon flushes the
// buffer cache (spec.md §4.13).
const DefaultFlushPeriod = 30 * time.Second

// StartFlushd launches the write-back daemon under g: it sleeps for
// period, then calls Cache.FlushAll(), repeating until ctx is canceled,
// flushing once more before returning (spec.md §4.13: "on orderly
// shutdown, the cache is also flushed"). Grounded on the teacher's use
// of a dedicated goroutine per kernel daemon and the DOMAIN STACK's
// choice of errgroup.Group to supervise it.
func (fs *Fs_t) StartFlushd(ctx context.Context, g *errgroup.Group, period time.Duration) {
	g.Go(func() error {
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				fs.Cache.FlushAll()
				return nil
			case <-t.C:
				fs.Cache.FlushAll()
			}
		}
	})
}
