package domain

import (
	"fmt"
	"strings"
)

// Check names a signal in the fixed aggregation order
type Check string

const (
	CheckReputation Check = "reputation"
	CheckTLS        Check = "tls"
	CheckAge        Check = "domain_age"
	CheckPatterns   Check = "patterns"
	CheckKeywords   Check = "keywords"
	CheckHomograph  Check = "homograph"
	CheckStructure  Check = "structure"
	CheckRedirects  Check = "redirects"
)

// Finding codes
const (
	CodePhishingDatabase    = "PHISHING_DATABASE"
	CodeVerifiedLegitimate  = "VERIFIED_LEGITIMATE"
	CodeNoTLS               = "NO_TLS"
	CodeInvalidURL          = "INVALID_URL"
	CodeVeryNewDomain       = "VERY_NEW_DOMAIN"
	CodeNewDomain           = "NEW_DOMAIN"
	CodeSuspiciousPattern   = "SUSPICIOUS_PATTERN"
	CodePhishingKeyword     = "PHISHING_KEYWORD"
	CodeHomographCharacters = "HOMOGRAPH_CHARACTERS"
	CodeStructureIssue      = "STRUCTURE_ISSUE"
	CodeSuspiciousRedirect  = "SUSPICIOUS_REDIRECT"
)

// Finding is one structured, machine-checkable contribution to a verdict.
// Weight is the raw signal weight before any aggregation cap.
type Finding struct {
	Check   Check   `json:"check"`
	Code    string  `json:"code"`
	Weight  float64 `json:"weight"`
	Subject string  `json:"subject,omitempty"`
}

// Reason formats the finding for display
func (f Finding) Reason() string {
	switch f.Code {
	case CodePhishingDatabase:
		return fmt.Sprintf("Domain found in phishing database (%s)", f.Subject)
	case CodeVerifiedLegitimate:
		return fmt.Sprintf("Domain verified as legitimate (%s)", f.Subject)
	case CodeNoTLS:
		return "No SSL certificate"
	case CodeInvalidURL:
		return "Invalid URL"
	case CodeVeryNewDomain:
		return fmt.Sprintf("Very new domain (%s days old)", f.Subject)
	case CodeNewDomain:
		return fmt.Sprintf("New domain (%s days old)", f.Subject)
	case CodeSuspiciousPattern:
		return fmt.Sprintf("%s (weight: %.0f)", f.Subject, f.Weight)
	case CodePhishingKeyword:
		return fmt.Sprintf("Phishing keyword %q with context (score: %.1f)", f.Subject, f.Weight)
	case CodeHomographCharacters:
		return fmt.Sprintf("Homograph attack detected: %s", f.Subject)
	case CodeStructureIssue:
		return f.Subject
	case CodeSuspiciousRedirect:
		return "Suspicious URL redirects detected"
	default:
		return strings.TrimSpace(fmt.Sprintf("%s %s", f.Code, f.Subject))
	}
}

// Reasons formats up to limit findings, preserving their order
func Reasons(findings []Finding, limit int) []string {
	if limit > len(findings) {
		limit = len(findings)
	}
	reasons := make([]string, 0, limit)
	for _, f := range findings[:limit] {
		reasons = append(reasons, f.Reason())
	}
	return reasons
}
