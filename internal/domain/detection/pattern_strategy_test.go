package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatternStrategy_Match(t *testing.T) {
	strategy := NewPatternStrategy(NewRegistry())

	tests := []struct {
		name          string
		domain        string
		url           string
		expectedIDs   []string
		expectedTotal int
	}{
		{
			name:          "IP literal with lure path",
			domain:        "192.168.1.1",
			url:           "http://192.168.1.1/secure-update",
			expectedIDs:   []string{"secure_update", "ip_literal"},
			expectedTotal: 75,
		},
		{
			name:          "Three co-matching patterns are summed without cap",
			domain:        "secure-update.verify-account.tk",
			url:           "http://secure-update.verify-account.tk/",
			expectedIDs:   []string{"secure_update", "verify_account", "tld_tk"},
			expectedTotal: 95,
		},
		{
			name:          "High-risk TLD matched on host despite trailing path",
			domain:        "login.ml",
			url:           "http://login.ml/index.html",
			expectedIDs:   []string{"tld_ml"},
			expectedTotal: 40,
		},
		{
			name:          "End-anchored TLD fires on the host of a URL with a path",
			domain:        "login.tk",
			url:           "http://login.tk/",
			expectedIDs:   []string{"tld_tk"},
			expectedTotal: 40,
		},
		{
			name:          "Shortener host",
			domain:        "t.co",
			url:           "https://t.co/abc123",
			expectedIDs:   []string{"shortener"},
			expectedTotal: 15,
		},
		{
			name:          "Shortener suffix inside a longer host does not match",
			domain:        "microsoft.com",
			url:           "https://microsoft.com",
			expectedIDs:   []string{},
			expectedTotal: 0,
		},
		{
			name:          "Long number sequence",
			domain:        "shop12345.com",
			url:           "https://shop12345.com",
			expectedIDs:   []string{"long_numbers"},
			expectedTotal: 25,
		},
		{
			name:          "Cyrillic character",
			domain:        "аpple.com",
			url:           "https://аpple.com",
			expectedIDs:   []string{"cyrillic"},
			expectedTotal: 45,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := strategy.Match(tt.domain, tt.url)

			ids := make([]string, 0, len(result.Matches))
			for _, m := range result.Matches {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids, "Matches should be exhaustive and in declaration order")
			assert.Equal(t, tt.expectedTotal, result.TotalWeight)
		})
	}
}

func TestRegistry_IsKnownLegitimatePattern(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		domain   string
		expected bool
	}{
		{"google.com", true},
		{"www.google.co.uk", true},
		{"GitHub.com", true},
		{"amazon.de", true},
		{"github.com.evil.tk", false},
		{"login-github.com", false},
		{"google.com.phish.net", false},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			assert.Equal(t, tt.expected, registry.IsKnownLegitimatePattern(tt.domain))
		})
	}
}
