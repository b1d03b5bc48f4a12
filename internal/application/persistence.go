package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/phishguard/risk-engine/internal/cache"
	"github.com/phishguard/risk-engine/internal/domain"
	"github.com/phishguard/risk-engine/internal/ports"
)

// restore loads the persisted snapshot. It reports whether the snapshot
// carried saved lists, in which case they are authoritative and the caller
// must not seed. Snapshots without the Initialized mark are merged into the seeds.
func (e *Engine) restore(ctx context.Context) bool {
	snapshot, err := e.storage.Load(ctx)
	if err != nil {
		e.metrics.PersistenceErrors.WithLabelValues("load").Inc()
		e.logger.WithError(err).Warn("Failed to load persisted state, starting with defaults")
		return false
	}
	if snapshot == nil {
		return false
	}

	e.lists.Add(Blacklist, normalizeAll(snapshot.Blacklist)...)
	e.lists.Add(Whitelist, normalizeAll(snapshot.Whitelist)...)

	entries := make(map[string]cache.Entry[domain.ReputationEntry], len(snapshot.ReputationCache))
	for d, cached := range snapshot.ReputationCache {
		entries[d] = cache.Entry[domain.ReputationEntry]{Value: cached.Entry, RecordedAt: cached.RecordedAt}
	}
	e.reputations.Restore(entries)

	e.stats.restore(snapshot.Statistics)

	e.intelMu.Lock()
	e.intel = snapshot.Intelligence
	e.intelMu.Unlock()

	black, white := e.lists.Sizes()
	e.logger.WithFields(logrus.Fields{
		"blacklist":        black,
		"whitelist":        white,
		"reputation_cache": len(entries),
		"authoritative":    snapshot.Initialized,
	}).Info("Persisted state loaded")

	return snapshot.Initialized
}

// snapshot captures the persistent state
func (e *Engine) snapshot() *ports.Snapshot {
	black, white := e.lists.Snapshot()

	reputations := make(map[string]ports.CachedReputation)
	for d, entry := range e.reputations.Snapshot() {
		reputations[d] = ports.CachedReputation{Entry: entry.Value, RecordedAt: entry.RecordedAt}
	}

	return &ports.Snapshot{
		Initialized:     true,
		Blacklist:       black,
		Whitelist:       white,
		ReputationCache: reputations,
		Statistics:      e.stats.snapshot(),
		Intelligence:    e.intelSummary(),
	}
}

func (e *Engine) markDirty() {
	e.persistMu.Lock()
	e.dirty = true
	e.persistMu.Unlock()
}

// flush saves the snapshot if forced or if there are unsaved changes.
// A failed save keeps the state dirty so the next flush retries it.
func (e *Engine) flush(ctx context.Context, force bool) {
	if err := e.save(ctx, force); err != nil {
		e.metrics.PersistenceErrors.WithLabelValues("save").Inc()
		e.logger.WithError(err).Warn("Failed to persist state, will retry")
	}
}

func (e *Engine) save(ctx context.Context, force bool) error {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	if !force && !e.dirty {
		return nil
	}
	e.dirty = true

	if err := e.storage.Save(ctx, e.snapshot()); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	e.dirty = false
	return nil
}

// Flush saves unsaved state immediately
func (e *Engine) Flush(ctx context.Context) error {
	return e.save(ctx, false)
}

// Dirty reports whether there are unsaved changes
func (e *Engine) Dirty() bool {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()
	return e.dirty
}
