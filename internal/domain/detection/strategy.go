package detection

import (
	"context"

	"github.com/phishguard/risk-engine/internal/domain"
)

// Extractor defines the interface that all signal extractors must implement
//
// This follows the Strategy pattern, allowing each heuristic to be:
//   - Independently developed and tested
//   - Run concurrently with the others (each writes only its own Signals slot)
//   - Degraded to a neutral contribution on failure without failing the analysis
type Extractor interface {
	// Extract analyzes the target and records its result in signals
	Extract(ctx context.Context, target Target, signals *Signals)

	// Name returns the human-readable name of this extractor
	Name() string
}

// Target is the parsed input shared by all extractors
type Target struct {
	// URL is the raw URL as submitted by the caller
	URL string

	// Domain is the lowercased hostname of URL, without port
	Domain string
}

// PatternMatch is one matching entry of the pattern table
type PatternMatch struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
}

// PatternResult is the uncapped sum of all matching pattern weights
type PatternResult struct {
	TotalWeight int            `json:"total_weight"`
	Matches     []PatternMatch `json:"matches"`
}

// KeywordMatch is one keyword rule that fired with at least one context term
type KeywordMatch struct {
	Word        string  `json:"word"`
	ContextHits int     `json:"context_hits"`
	Score       float64 `json:"score"`
}

// KeywordResult is the uncapped keyword score
type KeywordResult struct {
	Score   float64        `json:"score"`
	Matches []KeywordMatch `json:"matches"`
}

// HomographResult lists the distinct look-alike characters found in a domain
type HomographResult struct {
	Detected   bool     `json:"detected"`
	Score      int      `json:"score"`
	Characters []string `json:"characters"`
}

// StructureIssue is one structural rule that fired
type StructureIssue struct {
	Description string `json:"description"`
	Weight      int    `json:"weight"`
}

// StructureResult is the sum of the structural rules that fired
type StructureResult struct {
	Score  int              `json:"score"`
	Issues []StructureIssue `json:"issues"`
}

// TLSResult records whether the URL was requested over HTTPS
type TLSResult struct {
	HasTLS     bool `json:"has_tls"`
	InvalidURL bool `json:"invalid_url"`
	Score      int  `json:"score"`
}

// RedirectResult flags URLs that go through a known redirector
type RedirectResult struct {
	Suspicious bool     `json:"suspicious"`
	Score      int      `json:"score"`
	Chain      []string `json:"chain,omitempty"`
}

// Signals collects every extractor's output for one analysis
type Signals struct {
	Reputation domain.ReputationEntry
	TLS        TLSResult
	Age        domain.DomainAge
	Patterns   PatternResult
	Keywords   KeywordResult
	Homograph  HomographResult
	Structure  StructureResult
	Redirects  RedirectResult
}

// NewSignals returns signals preset to neutral contributions, so an extractor
// that fails leaves its slot neutral
func NewSignals() *Signals {
	return &Signals{
		Reputation: domain.UnknownReputation(),
		TLS:        TLSResult{HasTLS: true},
		Age:        domain.DomainAge{Category: domain.AgeUnknown},
	}
}
