package detection

import (
	"context"
	"strings"
)

// StructureStrategy scores suspicious domain shapes
type StructureStrategy struct{}

// NewStructureStrategy creates a new domain structure strategy
func NewStructureStrategy() *StructureStrategy {
	return &StructureStrategy{}
}

// Name returns the strategy name
func (s *StructureStrategy) Name() string {
	return "Domain Structure"
}

// Extract records structural issues of the target domain
func (s *StructureStrategy) Extract(ctx context.Context, target Target, signals *Signals) {
	signals.Structure = s.Analyze(target.Domain)
}

// Analyze applies the structural rules; they are independent and additive
func (s *StructureStrategy) Analyze(domainName string) StructureResult {
	result := StructureResult{Issues: make([]StructureIssue, 0)}
	flag := func(description string, weight int) {
		result.Score += weight
		result.Issues = append(result.Issues, StructureIssue{Description: description, Weight: weight})
	}
	labels := strings.Split(domainName, ".")

	if len(labels) > 4 {
		flag("Excessive subdomains", 20)
	}

	// Short second-level label under a country-code TLD, e.g. "ab.cd"
	if len(labels) >= 2 {
		tld := labels[len(labels)-1]
		sld := labels[len(labels)-2]
		if len(tld) == 2 && len(sld) < 3 {
			flag("Suspicious domain structure", 15)
		}
	}

	if hasDigit(domainName) && hasLetter(domainName) && strings.Contains(domainName, "-") {
		flag("Mixed character types with hyphens", 10)
	}

	return result
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

func hasLetter(s string) bool {
	return strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz")
}
