package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordStrategy_Match(t *testing.T) {
	strategy := NewKeywordStrategy(NewRegistry())

	tests := []struct {
		name          string
		domain        string
		url           string
		expectedScore float64
		expectedWords []string
	}{
		{
			name:          "Brand with two context terms",
			domain:        "paypal-secure-login.com",
			url:           "https://paypal-secure-login.com/verify",
			expectedScore: 80, // 40 * (1 + 2*0.5)
			expectedWords: []string{"paypal"},
		},
		{
			name:          "Bare brand mention is not penalized",
			domain:        "www.paypal.com",
			url:           "https://www.paypal.com/",
			expectedScore: 0,
			expectedWords: []string{},
		},
		{
			name:          "Context found only in the path",
			domain:        "apple-support.net",
			url:           "https://apple-support.net/locked",
			expectedScore: 52.5, // 35 * 1.5
			expectedWords: []string{"apple"},
		},
		{
			name:          "Case-insensitive",
			domain:        "security-alert.example",
			url:           "HTTPS://SECURITY-ALERT.EXAMPLE/",
			expectedScore: 37.5, // 25 * 1.5
			expectedWords: []string{"security"},
		},
		{
			name:          "Several rules fire",
			domain:        "bank-account-google.com",
			url:           "https://bank-account-google.com/",
			expectedScore: 67.5 + 45, // bank 45*1.5, google 30*1.5
			expectedWords: []string{"google", "bank"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := strategy.Match(tt.domain, tt.url)

			words := make([]string, 0, len(result.Matches))
			for _, m := range result.Matches {
				words = append(words, m.Word)
				assert.Greater(t, m.ContextHits, 0)
			}
			assert.InDelta(t, tt.expectedScore, result.Score, 0.001)
			assert.Equal(t, tt.expectedWords, words)
		})
	}
}
