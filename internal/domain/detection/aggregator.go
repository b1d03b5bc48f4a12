package detection

import (
	"math"
	"strconv"
	"strings"

	"github.com/phishguard/risk-engine/internal/domain"
)

const (
	// MaxReasons bounds the reasons list of a result
	MaxReasons = 8

	phishingReputationRisk   = 70
	legitimateReputationRisk = -40
	veryNewDomainRisk        = 35
	newDomainRisk            = 20
	establishedDomainRisk    = -10

	// Caps applied to the pattern and keyword totals before they are added.
	// Homograph, structure and redirect contributions are not capped.
	maxPatternRisk = 50
	maxKeywordRisk = 40

	baseConfidence = 0.5
)

// Aggregate combines the signals of one analysis into a verdict.
//
// It is a pure function: the same target and signals always give the same
// score, findings and reasons. Identity, timing and caching are left to the caller.
// Findings are appended in a fixed check order (reputation, TLS, age, patterns,
// keywords, homograph, structure, redirects) and the reasons list keeps the
// first MaxReasons of them; it is not sorted by severity.
func Aggregate(target Target, signals *Signals) domain.AnalysisResult {
	risk := 0.0
	confidence := baseConfidence
	findings := make([]domain.Finding, 0)

	add := func(check domain.Check, code string, weight float64, subject string) {
		findings = append(findings, domain.Finding{Check: check, Code: code, Weight: weight, Subject: subject})
	}

	// Reputation
	switch signals.Reputation.Status {
	case domain.ReputationPhishing:
		risk += phishingReputationRisk
		confidence = math.Max(confidence, signals.Reputation.Confidence)
		add(domain.CheckReputation, domain.CodePhishingDatabase, phishingReputationRisk, string(signals.Reputation.Source))
	case domain.ReputationLegitimate:
		risk += legitimateReputationRisk
		confidence = math.Max(confidence, signals.Reputation.Confidence)
		add(domain.CheckReputation, domain.CodeVerifiedLegitimate, legitimateReputationRisk, string(signals.Reputation.Source))
	}

	// TLS
	if !signals.TLS.HasTLS {
		risk += float64(signals.TLS.Score)
		code := domain.CodeNoTLS
		if signals.TLS.InvalidURL {
			code = domain.CodeInvalidURL
		}
		add(domain.CheckTLS, code, float64(signals.TLS.Score), "")
	}

	// Domain age
	switch signals.Age.Category {
	case domain.AgeVeryNew:
		risk += veryNewDomainRisk
		add(domain.CheckAge, domain.CodeVeryNewDomain, veryNewDomainRisk, strconv.Itoa(signals.Age.Days))
	case domain.AgeNew:
		risk += newDomainRisk
		add(domain.CheckAge, domain.CodeNewDomain, newDomainRisk, strconv.Itoa(signals.Age.Days))
	case domain.AgeEstablished:
		risk += establishedDomainRisk
	}

	// Patterns
	if signals.Patterns.TotalWeight > 0 {
		risk += math.Min(float64(signals.Patterns.TotalWeight), maxPatternRisk)
		for _, m := range signals.Patterns.Matches {
			add(domain.CheckPatterns, domain.CodeSuspiciousPattern, float64(m.Weight), m.Description)
		}
	}

	// Keywords
	if signals.Keywords.Score > 0 {
		risk += math.Min(signals.Keywords.Score, maxKeywordRisk)
		for _, m := range signals.Keywords.Matches {
			add(domain.CheckKeywords, domain.CodePhishingKeyword, m.Score, m.Word)
		}
	}

	// Homograph
	if signals.Homograph.Detected {
		risk += float64(signals.Homograph.Score)
		add(domain.CheckHomograph, domain.CodeHomographCharacters, float64(signals.Homograph.Score),
			strings.Join(signals.Homograph.Characters, ", "))
	}

	// Structure
	if signals.Structure.Score > 0 {
		risk += float64(signals.Structure.Score)
		for _, issue := range signals.Structure.Issues {
			add(domain.CheckStructure, domain.CodeStructureIssue, float64(issue.Weight), issue.Description)
		}
	}

	// Redirects
	if signals.Redirects.Suspicious {
		risk += float64(signals.Redirects.Score)
		add(domain.CheckRedirects, domain.CodeSuspiciousRedirect, float64(signals.Redirects.Score), "")
	}

	riskScore := clampScore(risk)
	verdict := domain.VerdictFor(riskScore)

	return domain.AnalysisResult{
		Domain:     target.Domain,
		URL:        target.URL,
		RiskScore:  riskScore,
		Confidence: int(math.Round(confidence * 100)),
		Status:     verdict.Status,
		Threat:     verdict.Threat,
		Message:    verdict.Message,
		Color:      verdict.Color,
		Reasons:    domain.Reasons(findings, MaxReasons),
		Findings:   findings,
		Detail: domain.SignalDetail{
			Reputation: signals.Reputation,
			Patterns:   len(signals.Patterns.Matches),
			Keywords:   len(signals.Keywords.Matches),
			Homograph:  signals.Homograph.Detected,
			Structure:  len(signals.Structure.Issues),
			Redirects:  signals.Redirects.Suspicious,
		},
		HasTLS:            signals.TLS.HasTLS,
		DomainAgeDays:     signals.Age.Days,
		DomainAgeCategory: signals.Age.Category,
	}
}

// clampScore rounds risk and bounds it to [0, 100]
func clampScore(risk float64) int {
	return int(math.Round(math.Max(0, math.Min(100, risk))))
}
