package detection

import (
	"context"
)

// PatternStrategy matches the URL and its host against the weighted pattern table
type PatternStrategy struct {
	registry *Registry
}

// NewPatternStrategy creates a new suspicious pattern strategy
func NewPatternStrategy(registry *Registry) *PatternStrategy {
	return &PatternStrategy{registry: registry}
}

// Name returns the strategy name
func (s *PatternStrategy) Name() string {
	return "Suspicious Patterns"
}

// Extract records the pattern matches for the target URL
func (s *PatternStrategy) Extract(ctx context.Context, target Target, signals *Signals) {
	signals.Patterns = s.Match(target.Domain, target.URL)
}

// Match evaluates every pattern, without early exit, and sums the weights of
// all that match. The sum is not capped here.
//
// Two deliberate departures from plain substring matching on the URL:
//   - A pattern also matches against the bare host, so end-anchored TLD
//     patterns fire for "http://login.tk/" despite the trailing path.
//   - The shortener pattern only matches whole labels, so "microsoft.com"
//     does not count as t.co.
func (s *PatternStrategy) Match(domainName, rawURL string) PatternResult {
	result := PatternResult{Matches: make([]PatternMatch, 0)}
	for _, p := range s.registry.Patterns {
		if p.Pattern.MatchString(rawURL) || (domainName != "" && p.Pattern.MatchString(domainName)) {
			result.TotalWeight += p.Weight
			result.Matches = append(result.Matches, PatternMatch{
				ID:          p.ID,
				Description: p.Description,
				Weight:      p.Weight,
			})
		}
	}
	return result
}
