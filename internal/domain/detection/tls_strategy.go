package detection

import (
	"context"
	"net/url"
	"strings"
)

// noTLSPenalty applies both to plain HTTP and to URLs that cannot be parsed
const noTLSPenalty = 25

// TLSStrategy checks whether the URL uses HTTPS.
// Certificate validity is not checked.
type TLSStrategy struct{}

// NewTLSStrategy creates a new TLS presence strategy
func NewTLSStrategy() *TLSStrategy {
	return &TLSStrategy{}
}

// Name returns the strategy name
func (s *TLSStrategy) Name() string {
	return "TLS Presence"
}

// Extract records the TLS check for the target URL
func (s *TLSStrategy) Extract(ctx context.Context, target Target, signals *Signals) {
	signals.TLS = s.Check(target.URL)
}

// Check inspects the URL scheme
func (s *TLSStrategy) Check(rawURL string) TLSResult {
	u, err := url.Parse(rawURL)
	if err != nil {
		return TLSResult{HasTLS: false, InvalidURL: true, Score: noTLSPenalty}
	}
	if strings.EqualFold(u.Scheme, "https") {
		return TLSResult{HasTLS: true}
	}
	return TLSResult{HasTLS: false, Score: noTLSPenalty}
}
