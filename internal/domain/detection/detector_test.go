package detection

import (
	"context"
	"testing"

	"github.com/phishguard/risk-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReputationExtractor struct {
	entry domain.ReputationEntry
}

func (f *fakeReputationExtractor) Name() string { return "fake reputation" }

func (f *fakeReputationExtractor) Extract(ctx context.Context, target Target, signals *Signals) {
	signals.Reputation = f.entry
}

type panickingExtractor struct{}

func (p *panickingExtractor) Name() string { return "panicking" }

func (p *panickingExtractor) Extract(ctx context.Context, target Target, signals *Signals) {
	panic("boom")
}

func TestDetector_Collect(t *testing.T) {
	blacklisted := domain.ReputationEntry{Status: domain.ReputationPhishing, Confidence: 0.95, Source: domain.SourceBlacklist}
	detector := NewDetector(NewRegistry(), &fakeReputationExtractor{entry: blacklisted})

	target := Target{URL: "http://192.168.1.1/secure-update", Domain: "192.168.1.1"}
	signals, err := detector.Collect(context.Background(), target)

	require.NoError(t, err)
	assert.Equal(t, blacklisted, signals.Reputation)
	assert.False(t, signals.TLS.HasTLS)
	assert.Equal(t, 75, signals.Patterns.TotalWeight)
	assert.Equal(t, domain.AgeUnknown, signals.Age.Category, "Age stays neutral without an age extractor")
}

func TestDetector_Collect_PanicDegradesToNeutral(t *testing.T) {
	detector := NewDetector(NewRegistry(), &panickingExtractor{})

	target := Target{URL: "https://t.co/x", Domain: "t.co"}
	signals, err := detector.Collect(context.Background(), target)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicking")
	require.NotNil(t, signals)
	assert.True(t, signals.Redirects.Suspicious, "Other extractors should still complete")
	assert.Equal(t, domain.ReputationUnknown, signals.Reputation.Status)
}

func TestDetector_Extractors(t *testing.T) {
	detector := NewDetector(NewRegistry())

	assert.Equal(t, []string{
		"TLS Presence",
		"Suspicious Patterns",
		"Phishing Keywords",
		"Homograph Characters",
		"Domain Structure",
		"Redirect Heuristics",
	}, detector.Extractors())
}
