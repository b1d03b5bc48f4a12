package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/phishguard/risk-engine/internal/config"
	"github.com/phishguard/risk-engine/internal/domain"
)

const maxFeedSize = 50 * 1024 * 1024 // 50 MB

// StaticIntelligenceSource returns the same batch on every fetch
type StaticIntelligenceSource struct {
	update domain.IntelligenceUpdate
}

// NewStaticIntelligenceSource creates a source serving a fixed batch
func NewStaticIntelligenceSource(update domain.IntelligenceUpdate) *StaticIntelligenceSource {
	return &StaticIntelligenceSource{update: update}
}

// DefaultIntelligenceUpdate is the built-in batch used when no feeds are configured
func DefaultIntelligenceUpdate() domain.IntelligenceUpdate {
	return domain.IntelligenceUpdate{
		Phishing:   []string{"new-phishing-site.com", "another-scam.net"},
		Legitimate: []string{"trusted-new-site.com"},
	}
}

// FetchUpdates returns a copy of the configured batch
func (s *StaticIntelligenceSource) FetchUpdates(ctx context.Context) (domain.IntelligenceUpdate, error) {
	if err := ctx.Err(); err != nil {
		return domain.IntelligenceUpdate{}, err
	}
	return domain.IntelligenceUpdate{
		Phishing:   append([]string(nil), s.update.Phishing...),
		Legitimate: append([]string(nil), s.update.Legitimate...),
	}, nil
}

// FeedIntelligenceSource downloads remote feeds and reads local list files.
//
// A fetch returns one combined batch. If any feed fails the whole fetch
// fails, so the engine never merges a partial update.
type FeedIntelligenceSource struct {
	feeds  []config.FeedConfig
	client *http.Client
	logger *logrus.Logger
}

// NewFeedIntelligenceSource creates a feed source
func NewFeedIntelligenceSource(feeds []config.FeedConfig, logger *logrus.Logger) *FeedIntelligenceSource {
	return &FeedIntelligenceSource{
		feeds:  feeds,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// FetchUpdates reads every configured feed
func (s *FeedIntelligenceSource) FetchUpdates(ctx context.Context) (domain.IntelligenceUpdate, error) {
	update := domain.IntelligenceUpdate{Phishing: make([]string, 0), Legitimate: make([]string, 0)}

	for _, feed := range s.feeds {
		var (
			domains []string
			err     error
			name    string
		)
		if feed.URL != "" {
			name = sanitizeURL(feed.URL)
			domains, err = s.fetchFeed(ctx, feed)
		} else {
			name = feed.Path
			domains, err = s.readFile(feed)
		}
		if err != nil {
			return domain.IntelligenceUpdate{}, fmt.Errorf("feed %s: %w", name, err)
		}

		s.logger.WithFields(logrus.Fields{
			"feed":       name,
			"domains":    len(domains),
			"legitimate": feed.Legitimate,
		}).Debug("Threat feed read")

		if feed.Legitimate {
			update.Legitimate = append(update.Legitimate, domains...)
		} else {
			update.Phishing = append(update.Phishing, domains...)
		}
	}

	return update, nil
}

func (s *FeedIntelligenceSource) fetchFeed(ctx context.Context, feed config.FeedConfig) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return parseLimited(resp.Body, feed.Format)
}

func (s *FeedIntelligenceSource) readFile(feed config.FeedConfig) ([]string, error) {
	f, err := os.Open(feed.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseLimited(f, feed.Format)
}

// parseLimited parses at most maxFeedSize bytes and fails on anything larger
// rather than returning a truncated list
func parseLimited(r io.Reader, format string) ([]string, error) {
	lr := &io.LimitedReader{R: r, N: maxFeedSize + 1}
	domains, err := ParserForFormat(format).Parse(lr)
	if err != nil {
		return nil, err
	}
	if lr.N == 0 {
		return nil, fmt.Errorf("feed exceeds %d bytes", maxFeedSize)
	}
	return domains, nil
}

// sanitizeURL strips everything except scheme and host from a URL for safe
// logging. Path segments may contain tokens in some feed URLs.
func sanitizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	return u.Scheme + "://" + u.Host
}
