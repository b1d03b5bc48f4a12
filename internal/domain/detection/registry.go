package detection

import (
	"regexp"
	"strings"
)

// SuspiciousPattern is one weighted signature from the pattern table
type SuspiciousPattern struct {
	ID          string
	Pattern     *regexp.Regexp
	Weight      int
	Description string
}

// KeywordRule pairs a brand or lure word with the context terms that make it suspicious
type KeywordRule struct {
	Word         string
	ContextTerms []string
	BaseWeight   float64
}

// Registry holds the static scoring tables. It is read-only after construction
// and safe to share between goroutines.
type Registry struct {
	Patterns           []SuspiciousPattern
	LegitimatePatterns []*regexp.Regexp
	KeywordRules       []KeywordRule

	// Seed lists loaded into the engine's blacklist and whitelist at startup
	KnownPhishing   []string
	KnownLegitimate []string

	// Hosts whose presence implies an unseen redirect hop
	Shorteners []string
}

func pattern(id, expr string, weight int, description string) SuspiciousPattern {
	return SuspiciousPattern{ID: id, Pattern: regexp.MustCompile(expr), Weight: weight, Description: description}
}

// NewRegistry builds the default tables.
//
// Pattern order is significant: matches are reported in declaration order
// and reasons are assembled from that order.
func NewRegistry() *Registry {
	return &Registry{
		Patterns: []SuspiciousPattern{
			// Lure wording
			pattern("secure_update", `(?i)secure[.-]?update`, 25, "Fake security update"),
			pattern("verify_account", `(?i)verify[.-]?account`, 30, "Account verification scam"),
			pattern("suspended_account", `(?i)suspended[.-]?account`, 35, "Account suspension threat"),
			pattern("urgent_action", `(?i)urgent[.-]?action`, 20, "Urgency manipulation"),
			pattern("click_here", `(?i)click[.-]?here`, 15, "Generic click bait"),
			pattern("limited_time", `(?i)limited[.-]?time`, 20, "Time pressure tactic"),
			pattern("confirm_identity", `(?i)confirm[.-]?identity`, 25, "Identity confirmation scam"),
			pattern("billing_problem", `(?i)billing[.-]?problem`, 25, "Fake billing issue"),
			pattern("payment_failed", `(?i)payment[.-]?failed`, 30, "Payment failure scam"),
			pattern("security_alert", `(?i)security[.-]?alert`, 25, "Fake security alert"),

			// Free and abused TLDs
			pattern("tld_tk", `(?i)\.tk$`, 40, "High-risk TLD (.tk)"),
			pattern("tld_ml", `(?i)\.ml$`, 40, "High-risk TLD (.ml)"),
			pattern("tld_ga", `(?i)\.ga$`, 40, "High-risk TLD (.ga)"),
			pattern("tld_cf", `(?i)\.cf$`, 40, "High-risk TLD (.cf)"),
			pattern("tld_pw", `(?i)\.pw$`, 35, "Suspicious TLD (.pw)"),

			pattern("ip_literal", `[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}`, 50, "Direct IP access"),

			// Structure
			pattern("multiple_hyphens", `(?i)[a-z0-9]+-[a-z0-9]+-[a-z0-9]+\.`, 20, "Multiple hyphens in domain"),
			pattern("long_numbers", `[0-9]{4,}`, 25, "Long number sequences"),
			pattern("long_label", `(?i)[a-z]{20,}`, 15, "Unusually long domain parts"),

			// Homograph character classes
			pattern("cyrillic", `(?i)[а-я]`, 45, "Cyrillic characters (homograph)"),
			pattern("greek", `(?i)[αβγδεζηθικλμνξοπρστυφχψω]`, 45, "Greek characters (homograph)"),

			// Shorteners only count as a whole host, so "microsoft.com" does not match t.co
			pattern("shortener", `(?i)(?:^|[/.@])(?:bit\.ly|tinyurl\.com|t\.co|goo\.gl|ow\.ly|short\.link)(?:[/:?#]|$)`, 15, "URL shortener"),
		},

		LegitimatePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^(www\.)?google\.(com|co\.[a-z]{2}|[a-z]{2})$`),
			regexp.MustCompile(`(?i)^(www\.)?github\.com$`),
			regexp.MustCompile(`(?i)^(www\.)?stackoverflow\.com$`),
			regexp.MustCompile(`(?i)^(www\.)?microsoft\.(com|co\.[a-z]{2})$`),
			regexp.MustCompile(`(?i)^(www\.)?amazon\.(com|co\.[a-z]{2}|[a-z]{2})$`),
			regexp.MustCompile(`(?i)^(www\.)?facebook\.com$`),
			regexp.MustCompile(`(?i)^(www\.)?twitter\.com$`),
			regexp.MustCompile(`(?i)^(www\.)?linkedin\.com$`),
			regexp.MustCompile(`(?i)^(www\.)?youtube\.com$`),
			regexp.MustCompile(`(?i)^(www\.)?wikipedia\.org$`),
		},

		KeywordRules: []KeywordRule{
			{Word: "paypal", ContextTerms: []string{"secure", "verify", "suspended"}, BaseWeight: 40},
			{Word: "amazon", ContextTerms: []string{"account", "suspended", "verify"}, BaseWeight: 35},
			{Word: "apple", ContextTerms: []string{"id", "locked", "verify"}, BaseWeight: 35},
			{Word: "microsoft", ContextTerms: []string{"account", "security", "verify"}, BaseWeight: 30},
			{Word: "google", ContextTerms: []string{"account", "suspended", "verify"}, BaseWeight: 30},
			{Word: "bank", ContextTerms: []string{"account", "suspended", "verify"}, BaseWeight: 45},
			{Word: "security", ContextTerms: []string{"alert", "warning", "breach"}, BaseWeight: 25},
		},

		KnownPhishing: []string{
			"phishing-example.com",
			"fake-bank.net",
			"suspicious-site.org",
			"scam-paypal.com",
			"fake-amazon.net",
			"phish-apple.com",
			"bogus-microsoft.org",
			"fraudulent-bank.com",
			"fake-security.net",
		},

		KnownLegitimate: []string{
			"google.com", "www.google.com", "mail.google.com", "drive.google.com",
			"github.com", "www.github.com", "gist.github.com",
			"stackoverflow.com", "www.stackoverflow.com",
			"mozilla.org", "www.mozilla.org", "developer.mozilla.org",
			"microsoft.com", "www.microsoft.com", "office.microsoft.com",
			"amazon.com", "www.amazon.com", "aws.amazon.com",
			"paypal.com", "www.paypal.com",
			"apple.com", "www.apple.com", "support.apple.com",
			"facebook.com", "www.facebook.com",
			"twitter.com", "www.twitter.com",
			"linkedin.com", "www.linkedin.com",
			"youtube.com", "www.youtube.com",
		},

		Shorteners: []string{"bit.ly", "tinyurl.com", "t.co"},
	}
}

// IsKnownLegitimatePattern reports whether the full hostname matches an allow-pattern
func (r *Registry) IsKnownLegitimatePattern(domainName string) bool {
	domainName = strings.ToLower(domainName)
	for _, re := range r.LegitimatePatterns {
		if re.MatchString(domainName) {
			return true
		}
	}
	return false
}
