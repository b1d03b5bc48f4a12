package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ReputationStatus classifies a domain from list membership or lookup
type ReputationStatus string

const (
	ReputationLegitimate ReputationStatus = "legitimate"
	ReputationPhishing   ReputationStatus = "phishing"
	ReputationUnknown    ReputationStatus = "unknown"
)

// ReputationSourceKind records where a reputation verdict came from
type ReputationSourceKind string

const (
	SourceBlacklist ReputationSourceKind = "blacklist"
	SourceWhitelist ReputationSourceKind = "whitelist"
	SourcePattern   ReputationSourceKind = "pattern"
	SourceExternal  ReputationSourceKind = "external"
)

// ReputationEntry is the resolved reputation of a single domain
type ReputationEntry struct {
	Status     ReputationStatus     `json:"status"`
	Confidence float64              `json:"confidence"` // 0.0 to 1.0
	Source     ReputationSourceKind `json:"source"`
}

// UnknownReputation is the neutral entry used when no source could classify a domain
func UnknownReputation() ReputationEntry {
	return ReputationEntry{Status: ReputationUnknown, Confidence: 0.5, Source: SourceExternal}
}

// AgeCategory buckets a domain's registration age
type AgeCategory string

const (
	AgeVeryNew     AgeCategory = "very_new"
	AgeNew         AgeCategory = "new"
	AgeRecent      AgeCategory = "recent"
	AgeEstablished AgeCategory = "established"

	// AgeUnknown is used when the age source failed; it contributes nothing to risk
	AgeUnknown AgeCategory = "unknown"
)

// DomainAge is the estimate returned by a DomainAgeSource
type DomainAge struct {
	Days     int         `json:"days"`
	Category AgeCategory `json:"category"`
}

// CategorizeAge converts an age in days to its category
func CategorizeAge(days int) AgeCategory {
	switch {
	case days < 30:
		return AgeVeryNew
	case days < 90:
		return AgeNew
	case days < 365:
		return AgeRecent
	default:
		return AgeEstablished
	}
}

// FormatDomainAge renders an age for display, e.g. "3 years (Established)"
func FormatDomainAge(age DomainAge) string {
	switch {
	case age.Category == AgeUnknown:
		return "Unknown"
	case age.Days < 30:
		return fmt.Sprintf("%d days (Very New)", age.Days)
	case age.Days < 90:
		return fmt.Sprintf("%d months (New)", age.Days/30)
	case age.Days < 365:
		return fmt.Sprintf("%d months (Recent)", age.Days/30)
	default:
		return fmt.Sprintf("%d years (Established)", age.Days/365)
	}
}

// Status is the categorical verdict of an analysis
type Status string

const (
	StatusLegitimate   Status = "legitimate"
	StatusQuestionable Status = "questionable"
	StatusSuspicious   Status = "suspicious"
	StatusPhishing     Status = "phishing"
)

// Threat is the threat level paired with a Status
type Threat string

const (
	ThreatMinimal Threat = "minimal"
	ThreatLow     Threat = "low"
	ThreatMedium  Threat = "medium"
	ThreatHigh    Threat = "high"
)

// Verdict bundles the presentation attributes of a risk band
type Verdict struct {
	Status  Status
	Threat  Threat
	Message string
	Color   string
}

// VerdictFor converts a clamped risk score to its verdict.
// Lower bounds are inclusive.
func VerdictFor(riskScore int) Verdict {
	switch {
	case riskScore >= 70:
		return Verdict{
			Status:  StatusPhishing,
			Threat:  ThreatHigh,
			Message: "This site is very likely a phishing attempt. Do not enter personal information!",
			Color:   "#ef4444",
		}
	case riskScore >= 45:
		return Verdict{
			Status:  StatusSuspicious,
			Threat:  ThreatMedium,
			Message: "This site shows multiple suspicious characteristics. Exercise extreme caution.",
			Color:   "#f59e0b",
		}
	case riskScore >= 25:
		return Verdict{
			Status:  StatusQuestionable,
			Threat:  ThreatLow,
			Message: "This site has some concerning features. Verify before proceeding.",
			Color:   "#eab308",
		}
	default:
		return Verdict{
			Status:  StatusLegitimate,
			Threat:  ThreatMinimal,
			Message: "This site appears to be legitimate and safe.",
			Color:   "#10b981",
		}
	}
}

// SignalDetail is the per-signal summary attached to an analysis
type SignalDetail struct {
	Reputation ReputationEntry `json:"reputation"`
	Patterns   int             `json:"patterns"`
	Keywords   int             `json:"keywords"`
	Homograph  bool            `json:"homograph"`
	Structure  int             `json:"structure"`
	Redirects  bool            `json:"redirects"`
}

// AnalysisResult is the verdict for one URL
//
// The engine caches results for the analysis TTL and hands every caller a
// Clone, so a caller mutating its result never alters the cached verdict.
type AnalysisResult struct {
	ID                uuid.UUID    `json:"id"`
	Domain            string       `json:"domain"`
	URL               string       `json:"url"`
	RiskScore         int          `json:"risk_score"` // 0 to 100
	Confidence        int          `json:"confidence"` // 0 to 100
	Status            Status       `json:"status"`
	Threat            Threat       `json:"threat"`
	Message           string       `json:"message"`
	Color             string       `json:"color"`
	Reasons           []string     `json:"reasons"`
	Findings          []Finding    `json:"findings"`
	Detail            SignalDetail `json:"detail"`
	HasTLS            bool         `json:"has_tls"`
	DomainAgeDays     int          `json:"domain_age_days"`
	DomainAgeCategory AgeCategory  `json:"domain_age_category"`
	AnalyzedAt        time.Time    `json:"analyzed_at"`
	ElapsedMS         int64        `json:"elapsed_ms"`
}

// Clone returns a copy that shares no slices with r
func (r AnalysisResult) Clone() AnalysisResult {
	r.Reasons = slices.Clone(r.Reasons)
	r.Findings = slices.Clone(r.Findings)
	return r
}

// ErrorResult is the wire shape of a failed analysis
type ErrorResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Statistics are the running verdict counters
type Statistics struct {
	SitesAnalyzed    int64     `json:"sites_analyzed"`
	ThreatsBlocked   int64     `json:"threats_blocked"`
	LegitimateSites  int64     `json:"legitimate_sites"`
	SuspiciousSites  int64     `json:"suspicious_sites"`
	TotalRiskScore   int64     `json:"total_risk_score"`
	ProtectionRate   float64   `json:"protection_rate"`    // percent of analyses that were phishing
	AverageRiskScore float64   `json:"average_risk_score"` // mean risk over all analyses
	LastUpdate       time.Time `json:"last_update,omitempty"`
}

// UpdateSummary records the outcome of the last threat-intelligence merge
type UpdateSummary struct {
	LastUpdate      time.Time `json:"last_update"`
	PhishingAdded   int       `json:"phishing_added"`
	LegitimateAdded int       `json:"legitimate_added"`
	PhishingTotal   int       `json:"phishing_total"`
	LegitimateTotal int       `json:"legitimate_total"`
}

// IntelligenceUpdate is one batch fetched from a threat-intelligence source
type IntelligenceUpdate struct {
	Phishing   []string `json:"phishing"`
	Legitimate []string `json:"legitimate"`
}

// Report is a user-submitted phishing report
type Report struct {
	ID         uuid.UUID `json:"id"`
	Domain     string    `json:"domain"`
	URL        string    `json:"url"`
	RiskScore  int       `json:"risk_score"`
	Status     Status    `json:"status"`
	Reasons    []string  `json:"reasons"`
	Comment    string    `json:"comment,omitempty"`
	ReportedAt time.Time `json:"reported_at"`
}
