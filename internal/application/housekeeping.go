package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// flushInterval bounds how long analysis-driven state changes stay unsaved
const flushInterval = time.Minute

// Sweep evicts cache entries older than the configured maximum age from both
// caches, regardless of their shorter per-use TTLs
func (e *Engine) Sweep(ctx context.Context) (reputations, analyses int) {
	reputations = e.reputations.Sweep(e.timings.SweepMaxAge)
	analyses = e.analyses.Sweep(e.timings.SweepMaxAge)

	e.metrics.CacheEvictions.WithLabelValues("reputation").Add(float64(reputations))
	e.metrics.CacheEvictions.WithLabelValues("analysis").Add(float64(analyses))

	if reputations > 0 {
		e.markDirty()
	}
	e.flush(ctx, false)

	e.logger.WithFields(logrus.Fields{
		"reputation_evicted": reputations,
		"analysis_evicted":   analyses,
	}).Info("Cache housekeeping complete")

	return reputations, analyses
}

// Start launches the background intelligence refresh, cache sweep and state
// flush loops. The first refresh runs immediately. Calling Start twice is a no-op.
func (e *Engine) Start(ctx context.Context) {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()

	if e.cancel != nil {
		return
	}
	ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(3)
	go e.runEvery(ctx, e.timings.UpdateInterval, true, func(ctx context.Context) {
		_, _ = e.Refresh(ctx)
	})
	go e.runEvery(ctx, e.timings.SweepInterval, false, func(ctx context.Context) {
		e.Sweep(ctx)
	})
	go e.runEvery(ctx, flushInterval, false, func(ctx context.Context) {
		e.flush(ctx, false)
	})

	e.logger.WithFields(logrus.Fields{
		"update_interval": e.timings.UpdateInterval,
		"sweep_interval":  e.timings.SweepInterval,
	}).Info("Background tasks started")
}

// Stop cancels the background loops, waits for them to return and saves
// any unsaved state
func (e *Engine) Stop() {
	e.lifecycleMu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
		e.wg.Wait()
	}

	ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	e.flush(ctx, false)
}

func (e *Engine) runEvery(ctx context.Context, interval time.Duration, immediate bool, task func(context.Context)) {
	defer e.wg.Done()

	if immediate {
		task(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			task(ctx)
		}
	}
}
