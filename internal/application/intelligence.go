package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/phishguard/risk-engine/internal/domain"
	"github.com/phishguard/risk-engine/internal/domain/detection"
)

// Refresh fetches one threat-intelligence batch and merges it into the lists.
//
// The batch is applied all-or-nothing: a fetch failure or a single invalid
// domain leaves the lists untouched and returns the previous summary with the error.
func (e *Engine) Refresh(ctx context.Context) (domain.UpdateSummary, error) {
	previous := e.intelSummary()

	if e.intelligence == nil {
		return previous, fmt.Errorf("%w: no intelligence source configured", domain.ErrSourceFailure)
	}

	update, err := callWithTimeout(ctx, e.timings.IntelTimeout, e.intelligence.FetchUpdates)
	if err != nil {
		e.metrics.IntelUpdates.WithLabelValues(fallbackReason(err)).Inc()
		e.logger.WithError(err).Warn("Threat intelligence update failed")
		return previous, fmt.Errorf("failed to fetch intelligence: %w", err)
	}

	phishing, err := normalizeBatch(update.Phishing)
	if err == nil {
		var legitimate []string
		legitimate, err = normalizeBatch(update.Legitimate)
		update = domain.IntelligenceUpdate{Phishing: phishing, Legitimate: legitimate}
	}
	if err != nil {
		e.metrics.IntelUpdates.WithLabelValues("rejected").Inc()
		e.logger.WithError(err).Warn("Threat intelligence batch rejected")
		return previous, fmt.Errorf("failed to validate intelligence batch: %w", err)
	}

	phishingAdded, legitimateAdded := e.lists.Merge(update.Phishing, update.Legitimate)
	if phishingAdded+legitimateAdded > 0 {
		e.invalidate(append(append([]string(nil), update.Phishing...), update.Legitimate...)...)
		e.updateListGauges()
	}

	black, white := e.lists.Sizes()
	summary := domain.UpdateSummary{
		LastUpdate:      e.now(),
		PhishingAdded:   phishingAdded,
		LegitimateAdded: legitimateAdded,
		PhishingTotal:   black,
		LegitimateTotal: white,
	}

	e.intelMu.Lock()
	e.intel = summary
	e.intelMu.Unlock()

	e.flush(ctx, true)
	e.metrics.IntelUpdates.WithLabelValues("success").Inc()
	e.logger.WithFields(logrus.Fields{
		"phishing_added":   phishingAdded,
		"legitimate_added": legitimateAdded,
		"phishing_total":   black,
		"legitimate_total": white,
	}).Info("Threat intelligence updated")

	return summary, nil
}

func (e *Engine) intelSummary() domain.UpdateSummary {
	e.intelMu.Lock()
	defer e.intelMu.Unlock()
	return e.intel
}

// normalizeBatch normalizes and deduplicates a domain list, failing on the first invalid entry
func normalizeBatch(domains []string) ([]string, error) {
	seen := make(map[string]struct{}, len(domains))
	out := make([]string, 0, len(domains))
	for _, raw := range domains {
		d := detection.NormalizeDomain(raw)
		if !detection.ValidateDomain(d) {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDomain, raw)
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out, nil
}
