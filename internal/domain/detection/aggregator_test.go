package detection

import (
	"testing"

	"github.com/phishguard/risk-engine/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAggregate_Scenarios(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		name            string
		url             string
		domain          string
		reputation      domain.ReputationEntry
		age             domain.DomainAge
		expectedScore   int
		expectedStatus  domain.Status
		expectedThreat  domain.Threat
		expectedReasons []string
	}{
		{
			name:           "IP literal with lure path over HTTP",
			url:            "http://192.168.1.1/secure-update",
			domain:         "192.168.1.1",
			reputation:     domain.UnknownReputation(),
			age:            domain.DomainAge{Days: 5, Category: domain.AgeVeryNew},
			expectedScore:  100,
			expectedStatus: domain.StatusPhishing,
			expectedThreat: domain.ThreatHigh,
			expectedReasons: []string{
				"No SSL certificate",
				"Very new domain (5 days old)",
				"Fake security update (weight: 25)",
				"Direct IP access (weight: 50)",
			},
		},
		{
			name:           "Whitelisted established domain",
			url:            "https://www.github.com",
			domain:         "www.github.com",
			reputation:     domain.ReputationEntry{Status: domain.ReputationLegitimate, Confidence: 0.98, Source: domain.SourceWhitelist},
			age:            domain.DomainAge{Days: 4000, Category: domain.AgeEstablished},
			expectedScore:  0,
			expectedStatus: domain.StatusLegitimate,
			expectedThreat: domain.ThreatMinimal,
			expectedReasons: []string{
				"Domain verified as legitimate (whitelist)",
			},
		},
		{
			name:           "Blacklisted domain over HTTPS",
			url:            "https://phishing-example.com/",
			domain:         "phishing-example.com",
			reputation:     domain.ReputationEntry{Status: domain.ReputationPhishing, Confidence: 0.95, Source: domain.SourceBlacklist},
			age:            domain.DomainAge{Days: 200, Category: domain.AgeRecent},
			expectedScore:  70,
			expectedStatus: domain.StatusPhishing,
			expectedThreat: domain.ThreatHigh,
			expectedReasons: []string{
				"Domain found in phishing database (blacklist)",
			},
		},
		{
			name:           "Plain HTTP on new domain",
			url:            "http://example.org/",
			domain:         "example.org",
			reputation:     domain.UnknownReputation(),
			age:            domain.DomainAge{Days: 45, Category: domain.AgeNew},
			expectedScore:  45,
			expectedStatus: domain.StatusSuspicious,
			expectedThreat: domain.ThreatMedium,
			expectedReasons: []string{
				"No SSL certificate",
				"New domain (45 days old)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := Target{URL: tt.url, Domain: tt.domain}
			signals := pureSignals(registry, target)
			signals.Reputation = tt.reputation
			signals.Age = tt.age

			result := Aggregate(target, signals)

			assert.Equal(t, tt.expectedScore, result.RiskScore)
			assert.Equal(t, tt.expectedStatus, result.Status)
			assert.Equal(t, tt.expectedThreat, result.Threat)
			assert.Equal(t, tt.expectedReasons, result.Reasons)
		})
	}
}

func TestAggregate_Caps(t *testing.T) {
	target := Target{URL: "https://example.com", Domain: "example.com"}

	t.Run("Pattern total capped at 50", func(t *testing.T) {
		signals := NewSignals()
		signals.Patterns = NewPatternStrategy(NewRegistry()).Match("secure-update.verify-account.tk", "https://secure-update.verify-account.tk/")
		assert.Equal(t, 95, signals.Patterns.TotalWeight)

		result := Aggregate(target, signals)
		assert.Equal(t, 50, result.RiskScore)
	})

	t.Run("Keyword total capped at 40", func(t *testing.T) {
		signals := NewSignals()
		signals.Keywords = KeywordResult{Score: 80, Matches: []KeywordMatch{{Word: "paypal", ContextHits: 2, Score: 80}}}

		result := Aggregate(target, signals)
		assert.Equal(t, 40, result.RiskScore)
		assert.Equal(t, []string{`Phishing keyword "paypal" with context (score: 80.0)`}, result.Reasons)
	})

	t.Run("Homograph and structure are uncapped", func(t *testing.T) {
		signals := NewSignals()
		signals.Homograph = HomographResult{Detected: true, Score: 60, Characters: []string{"а", "е", "о", "р"}}
		signals.Structure = StructureResult{Score: 35, Issues: []StructureIssue{
			{Description: "Excessive subdomains", Weight: 20},
			{Description: "Suspicious domain structure", Weight: 15},
		}}

		result := Aggregate(target, signals)
		assert.Equal(t, 95, result.RiskScore)
		assert.Equal(t, "Homograph attack detected: а, е, о, р", result.Reasons[0])
	})

	t.Run("Redirect adds a flat 20", func(t *testing.T) {
		signals := NewSignals()
		signals.Redirects = RedirectResult{Suspicious: true, Score: 20}

		result := Aggregate(target, signals)
		assert.Equal(t, 20, result.RiskScore)
		assert.Equal(t, []string{"Suspicious URL redirects detected"}, result.Reasons)
	})
}

func TestAggregate_ReasonsTruncatedInCheckOrder(t *testing.T) {
	target := Target{URL: "http://bad.example", Domain: "bad.example"}
	signals := NewSignals()
	signals.Reputation = domain.ReputationEntry{Status: domain.ReputationPhishing, Confidence: 0.95, Source: domain.SourceBlacklist}
	signals.TLS = TLSResult{Score: 25}
	signals.Age = domain.DomainAge{Days: 3, Category: domain.AgeVeryNew}
	for i := 0; i < 10; i++ {
		signals.Patterns.Matches = append(signals.Patterns.Matches, PatternMatch{ID: "p", Description: "Pattern", Weight: 10})
		signals.Patterns.TotalWeight += 10
	}

	result := Aggregate(target, signals)

	assert.Len(t, result.Findings, 13)
	assert.Len(t, result.Reasons, MaxReasons)
	assert.Equal(t, "Domain found in phishing database (blacklist)", result.Reasons[0])
	assert.Equal(t, "No SSL certificate", result.Reasons[1])
	assert.Equal(t, "Very new domain (3 days old)", result.Reasons[2])
	assert.Equal(t, 95, result.Confidence)
}

func TestAggregate_InvalidURL(t *testing.T) {
	target := Target{URL: "://nope", Domain: ""}
	signals := NewSignals()
	signals.TLS = NewTLSStrategy().Check(target.URL)

	result := Aggregate(target, signals)

	assert.Equal(t, 25, result.RiskScore)
	assert.Equal(t, domain.StatusQuestionable, result.Status)
	assert.Equal(t, []string{"Invalid URL"}, result.Reasons)
	assert.False(t, result.HasTLS)
}

func TestAggregate_NeutralSignals(t *testing.T) {
	result := Aggregate(Target{URL: "https://example.com", Domain: "example.com"}, NewSignals())

	assert.Equal(t, 0, result.RiskScore)
	assert.Equal(t, 50, result.Confidence)
	assert.Equal(t, domain.StatusLegitimate, result.Status)
	assert.Empty(t, result.Reasons)
}

// pureSignals runs the I/O-free extractors synchronously
func pureSignals(registry *Registry, target Target) *Signals {
	signals := NewSignals()
	signals.TLS = NewTLSStrategy().Check(target.URL)
	signals.Patterns = NewPatternStrategy(registry).Match(target.Domain, target.URL)
	signals.Keywords = NewKeywordStrategy(registry).Match(target.Domain, target.URL)
	signals.Homograph = NewHomographStrategy().Detect(target.Domain)
	signals.Structure = NewStructureStrategy().Analyze(target.Domain)
	signals.Redirects = NewRedirectStrategy(registry).Check(target.Domain)
	return signals
}
