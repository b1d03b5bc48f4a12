package ports

import (
	"context"

	"github.com/phishguard/risk-engine/internal/domain"
)

// ReputationSource is the external reputation collaborator consulted after list and pattern checks
type ReputationSource interface {
	// Lookup classifies a domain; implementations report Source as domain.SourceExternal
	Lookup(ctx context.Context, domainName string) (domain.ReputationEntry, error)
}

// IntelligenceSource supplies batches of newly known phishing and legitimate domains
type IntelligenceSource interface {
	FetchUpdates(ctx context.Context) (domain.IntelligenceUpdate, error)
}

// DomainAgeSource estimates how long a domain has been registered
type DomainAgeSource interface {
	Estimate(ctx context.Context, domainName string) (domain.DomainAge, error)
}
