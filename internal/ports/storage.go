package ports

import (
	"context"
	"time"

	"github.com/phishguard/risk-engine/internal/domain"
)

// CachedReputation is a reputation cache entry as persisted
type CachedReputation struct {
	Entry      domain.ReputationEntry `json:"entry"`
	RecordedAt time.Time              `json:"recorded_at"`
}

// Snapshot is the opaque document the engine loads at startup and flushes after mutations
type Snapshot struct {
	// Initialized is set on every snapshot the engine saves. The saved lists
	// then replace the seed lists at startup, so user removals survive restarts.
	Initialized bool `json:"initialized"`

	Blacklist       []string                    `json:"blacklist"`
	Whitelist       []string                    `json:"whitelist"`
	ReputationCache map[string]CachedReputation `json:"reputation_cache"`
	Statistics      domain.Statistics           `json:"statistics"`
	Intelligence    domain.UpdateSummary        `json:"intelligence"`
}

// Storage defines the contract for persisting engine state
type Storage interface {
	// Load returns the last saved snapshot, or an empty one if nothing was saved yet
	Load(ctx context.Context) (*Snapshot, error)

	// Save replaces the stored snapshot
	Save(ctx context.Context, snapshot *Snapshot) error

	// SaveReport appends a user phishing report
	SaveReport(ctx context.Context, report domain.Report) error

	// Lifecycle
	Close() error
}
