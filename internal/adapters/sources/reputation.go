// Package sources provides the reputation, threat-intelligence and domain-age
// collaborators consulted by the engine.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/phishguard/risk-engine/internal/domain"
)

// Score thresholds mapping a 0..1 source score to a reputation
const (
	legitimateScore      = 0.8
	phishingScore        = 0.2
	legitimateConfidence = 0.85
	phishingConfidence   = 0.75
)

// classifyScore converts a reputation score to an entry: above 0.8 is
// legitimate, below 0.2 is phishing, anything else unknown
func classifyScore(score float64) domain.ReputationEntry {
	switch {
	case score > legitimateScore:
		return domain.ReputationEntry{Status: domain.ReputationLegitimate, Confidence: legitimateConfidence, Source: domain.SourceExternal}
	case score < phishingScore:
		return domain.ReputationEntry{Status: domain.ReputationPhishing, Confidence: phishingConfidence, Source: domain.SourceExternal}
	default:
		return domain.UnknownReputation()
	}
}

// StaticReputationSource scores domains with a stable hash instead of a
// remote service, so the same domain always gets the same verdict
type StaticReputationSource struct{}

// NewStaticReputationSource creates the deterministic reputation source
func NewStaticReputationSource() *StaticReputationSource {
	return &StaticReputationSource{}
}

// Lookup classifies the domain from its hash score
func (s *StaticReputationSource) Lookup(ctx context.Context, domainName string) (domain.ReputationEntry, error) {
	if err := ctx.Err(); err != nil {
		return domain.ReputationEntry{}, err
	}
	return classifyScore(hashScore(domainName)), nil
}

// hashScore maps a string to [0, 1]
func hashScore(s string) float64 {
	return float64(hash(s)) / math.MaxUint32
}

// HTTPReputationSource queries a remote reputation service:
//
//	GET {endpoint}?domain=example.com  ->  {"score": 0.93}
//
// Outbound requests are rate limited; callers waiting on the limiter give up
// when their context expires.
type HTTPReputationSource struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewHTTPReputationSource creates a rate-limited reputation client. A qps of
// zero disables limiting.
func NewHTTPReputationSource(endpoint string, qps float64, burst int) *HTTPReputationSource {
	limit := rate.Inf
	if qps > 0 {
		limit = rate.Limit(qps)
	}
	if burst < 1 {
		burst = 1
	}
	return &HTTPReputationSource{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(limit, burst),
	}
}

type reputationResponse struct {
	Score *float64 `json:"score"`
}

// Lookup fetches and classifies the domain's score
func (s *HTTPReputationSource) Lookup(ctx context.Context, domainName string) (domain.ReputationEntry, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return domain.ReputationEntry{}, fmt.Errorf("rate limiter: %w", err)
	}

	u, err := url.Parse(s.endpoint)
	if err != nil {
		return domain.ReputationEntry{}, fmt.Errorf("invalid reputation endpoint: %w", err)
	}
	q := u.Query()
	q.Set("domain", domainName)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.ReputationEntry{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.ReputationEntry{}, fmt.Errorf("reputation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ReputationEntry{}, fmt.Errorf("reputation service returned HTTP %d", resp.StatusCode)
	}

	var body reputationResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&body); err != nil {
		return domain.ReputationEntry{}, fmt.Errorf("failed to decode reputation response: %w", err)
	}
	if body.Score == nil || *body.Score < 0 || *body.Score > 1 {
		return domain.ReputationEntry{}, fmt.Errorf("reputation response has no valid score")
	}

	return classifyScore(*body.Score), nil
}
