package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTLSStrategy_Check(t *testing.T) {
	strategy := NewTLSStrategy()

	tests := []struct {
		name     string
		url      string
		expected TLSResult
	}{
		{"HTTPS", "https://example.com", TLSResult{HasTLS: true}},
		{"Uppercase scheme", "HTTPS://example.com", TLSResult{HasTLS: true}},
		{"Plain HTTP", "http://example.com", TLSResult{Score: 25}},
		{"Unparseable", "://missing-scheme", TLSResult{InvalidURL: true, Score: 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, strategy.Check(tt.url))
		})
	}
}

func TestRedirectStrategy_Check(t *testing.T) {
	strategy := NewRedirectStrategy(NewRegistry())

	tests := []struct {
		domain     string
		suspicious bool
	}{
		{"bit.ly", true},
		{"www.bit.ly", true},
		{"t.co", true},
		{"tinyurl.com", true},
		{"microsoft.com", false},
		{"192.168.1.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			result := strategy.Check(tt.domain)
			assert.Equal(t, tt.suspicious, result.Suspicious)
			if tt.suspicious {
				assert.Equal(t, 20, result.Score)
			}
		})
	}
}
