package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/phishguard/risk-engine/internal/cache"
	"github.com/phishguard/risk-engine/internal/domain"
	"github.com/phishguard/risk-engine/internal/domain/detection"
	"github.com/phishguard/risk-engine/internal/metrics"
	"github.com/phishguard/risk-engine/internal/ports"
)

// Reputation confidences by source
const (
	blacklistConfidence = 0.95
	whitelistConfidence = 0.98
	patternConfidence   = 0.90
)

// ReputationResolver classifies a domain from its list membership, the
// legitimate allow-patterns and finally the external source.
//
// Resolutions are cached per domain. Source failures and timeouts fall back
// to an unknown reputation that is not cached, so the next analysis retries.
type ReputationResolver struct {
	lists    *DomainLists
	registry *detection.Registry
	source   ports.ReputationSource
	cache    *cache.TTLCache[string, domain.ReputationEntry]
	ttl      time.Duration
	timeout  time.Duration
	logger   *logrus.Logger
	metrics  *metrics.Metrics

	// generation guards write-through against a concurrent Invalidate
	mu         sync.Mutex
	generation uint64
}

// Name returns the extractor name
func (r *ReputationResolver) Name() string {
	return "Reputation"
}

// Extract resolves the reputation of the target domain
func (r *ReputationResolver) Extract(ctx context.Context, target detection.Target, signals *detection.Signals) {
	signals.Reputation = r.Resolve(ctx, target.Domain)
}

// Resolve returns the cached reputation if fresh, otherwise resolves it and
// writes it through to the cache
func (r *ReputationResolver) Resolve(ctx context.Context, domainName string) domain.ReputationEntry {
	if entry, ok := r.cache.Get(domainName, r.ttl); ok {
		r.metrics.CacheLookups.WithLabelValues("reputation", "hit").Inc()
		return entry
	}
	r.metrics.CacheLookups.WithLabelValues("reputation", "miss").Inc()

	r.mu.Lock()
	generation := r.generation
	r.mu.Unlock()

	entry, cacheable := r.resolve(ctx, domainName)
	if cacheable {
		r.mu.Lock()
		if r.generation == generation {
			r.cache.Set(domainName, entry)
		}
		r.mu.Unlock()
	}
	return entry
}

// resolve applies the precedence blacklist, whitelist, allow-pattern, external source
func (r *ReputationResolver) resolve(ctx context.Context, domainName string) (domain.ReputationEntry, bool) {
	switch {
	case r.lists.Contains(Blacklist, domainName):
		return domain.ReputationEntry{Status: domain.ReputationPhishing, Confidence: blacklistConfidence, Source: domain.SourceBlacklist}, true
	case r.lists.Contains(Whitelist, domainName):
		return domain.ReputationEntry{Status: domain.ReputationLegitimate, Confidence: whitelistConfidence, Source: domain.SourceWhitelist}, true
	case r.registry.IsKnownLegitimatePattern(domainName):
		return domain.ReputationEntry{Status: domain.ReputationLegitimate, Confidence: patternConfidence, Source: domain.SourcePattern}, true
	}

	if r.source == nil {
		return domain.UnknownReputation(), true
	}

	entry, err := callWithTimeout(ctx, r.timeout, func(ctx context.Context) (domain.ReputationEntry, error) {
		return r.source.Lookup(ctx, domainName)
	})
	if err == nil {
		err = validateReputation(entry)
	}
	if err != nil {
		r.metrics.SourceFallbacks.WithLabelValues("reputation", fallbackReason(err)).Inc()
		r.logger.WithError(err).WithField("domain", domainName).Warn("Reputation lookup failed, using unknown")
		return domain.UnknownReputation(), false
	}

	entry.Source = domain.SourceExternal
	return entry, true
}

func validateReputation(entry domain.ReputationEntry) error {
	switch entry.Status {
	case domain.ReputationLegitimate, domain.ReputationPhishing, domain.ReputationUnknown:
	default:
		return fmt.Errorf("%w: unknown status %q", domain.ErrSourceFailure, entry.Status)
	}
	if entry.Confidence < 0 || entry.Confidence > 1 {
		return fmt.Errorf("%w: confidence %.2f out of range", domain.ErrSourceFailure, entry.Confidence)
	}
	return nil
}

// Invalidate drops the cached reputation of the given domains
func (r *ReputationResolver) Invalidate(domains ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generation++
	for _, d := range domains {
		r.cache.Delete(d)
	}
}

// AgeEstimator supplies the domain-age signal from a DomainAgeSource.
// A failed or slow estimate leaves the age unknown, which adds no risk.
type AgeEstimator struct {
	source  ports.DomainAgeSource
	timeout time.Duration
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

// Name returns the extractor name
func (a *AgeEstimator) Name() string {
	return "Domain Age"
}

// Extract estimates the age of the target domain
func (a *AgeEstimator) Extract(ctx context.Context, target detection.Target, signals *detection.Signals) {
	if a.source == nil {
		return
	}

	age, err := callWithTimeout(ctx, a.timeout, func(ctx context.Context) (domain.DomainAge, error) {
		return a.source.Estimate(ctx, target.Domain)
	})
	if err == nil && age.Days < 0 {
		err = fmt.Errorf("%w: negative age %d", domain.ErrSourceFailure, age.Days)
	}
	if err != nil {
		a.metrics.SourceFallbacks.WithLabelValues("domain_age", fallbackReason(err)).Inc()
		a.logger.WithError(err).WithField("domain", target.Domain).Warn("Domain age estimate failed, using unknown")
		return
	}

	// The category is derived from days whenever the source leaves it out
	if age.Category == "" {
		age.Category = domain.CategorizeAge(age.Days)
	}
	signals.Age = age
}
