package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishguard/risk-engine/internal/domain"
	"github.com/phishguard/risk-engine/internal/ports"
)

func sampleSnapshot() *ports.Snapshot {
	recorded := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &ports.Snapshot{
		Initialized: true,
		Blacklist:   []string{"evil.com"},
		Whitelist:   []string{"good.com"},
		ReputationCache: map[string]ports.CachedReputation{
			"example.com": {
				Entry:      domain.ReputationEntry{Status: domain.ReputationLegitimate, Confidence: 0.85, Source: domain.SourceExternal},
				RecordedAt: recorded,
			},
		},
		Statistics:   domain.Statistics{SitesAnalyzed: 4, ThreatsBlocked: 1, TotalRiskScore: 120},
		Intelligence: domain.UpdateSummary{LastUpdate: recorded, PhishingAdded: 2},
	}
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"))

	snapshot, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot.Blacklist)
	assert.Empty(t, snapshot.Whitelist)
	assert.NotNil(t, snapshot.ReputationCache)
	assert.False(t, snapshot.Initialized)
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	ctx := context.Background()

	require.NoError(t, NewFileStore(path).Save(ctx, sampleSnapshot()))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")

	// A fresh store reads what the first one wrote
	loaded, err := NewFileStore(path).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), loaded)
}

func TestFileStore_ReportsSurviveSave(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	ctx := context.Background()

	report := domain.Report{
		ID:         uuid.New(),
		Domain:     "evil.com",
		URL:        "http://evil.com/",
		RiskScore:  90,
		Status:     domain.StatusPhishing,
		Reasons:    []string{"No SSL certificate"},
		ReportedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveReport(ctx, report))
	require.NoError(t, store.Save(ctx, sampleSnapshot()))

	reports, err := store.Reports()
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, report, reports[0])
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}
