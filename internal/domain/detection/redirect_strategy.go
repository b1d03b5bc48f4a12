package detection

import (
	"context"

	"golang.org/x/net/publicsuffix"
)

const redirectPenalty = 20

// RedirectStrategy flags URLs served through a known redirector.
//
// The redirect chain itself is not followed; a shortener host is taken as
// evidence that the final destination is hidden from the user.
type RedirectStrategy struct {
	shorteners map[string]struct{}
}

// NewRedirectStrategy creates a new redirect heuristic strategy
func NewRedirectStrategy(registry *Registry) *RedirectStrategy {
	shorteners := make(map[string]struct{}, len(registry.Shorteners))
	for _, s := range registry.Shorteners {
		shorteners[s] = struct{}{}
	}
	return &RedirectStrategy{shorteners: shorteners}
}

// Name returns the strategy name
func (s *RedirectStrategy) Name() string {
	return "Redirect Heuristics"
}

// Extract records the redirect heuristic for the target domain
func (s *RedirectStrategy) Extract(ctx context.Context, target Target, signals *Signals) {
	signals.Redirects = s.Check(target.Domain)
}

// Check compares the registrable domain of the host with the shortener list
func (s *RedirectStrategy) Check(domainName string) RedirectResult {
	if _, ok := s.shorteners[domainName]; ok {
		return RedirectResult{Suspicious: true, Score: redirectPenalty, Chain: []string{domainName}}
	}

	registrable, err := publicsuffix.EffectiveTLDPlusOne(domainName)
	if err != nil {
		return RedirectResult{}
	}
	if _, ok := s.shorteners[registrable]; ok {
		return RedirectResult{Suspicious: true, Score: redirectPenalty, Chain: []string{domainName}}
	}
	return RedirectResult{}
}
