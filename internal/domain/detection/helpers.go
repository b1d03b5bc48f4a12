package detection

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/phishguard/risk-engine/internal/domain"
)

// maxDomainLength is the DNS limit on a full hostname
const maxDomainLength = 253

var domainRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)*\.[a-z]{2,}$`)

// ExtractDomain parses rawURL and returns its lowercased hostname without port.
// Input without a scheme or host is rejected with domain.ErrInvalidURL.
func ExtractDomain(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty input", domain.ErrInvalidURL)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return "", fmt.Errorf("%w: %q has no scheme or host", domain.ErrInvalidURL, rawURL)
	}

	return strings.ToLower(u.Hostname()), nil
}

// NormalizeDomain lowercases a domain and strips surrounding whitespace and a trailing dot
func NormalizeDomain(domainName string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domainName)), ".")
}

// ValidateDomain performs basic hostname format validation.
//
// The last label must be alphabetic, so IP literals are rejected. IP hosts can
// still be analyzed but cannot be blocked or trusted through the lists.
func ValidateDomain(domainName string) bool {
	return len(domainName) <= maxDomainLength && domainRegex.MatchString(domainName)
}
