package application

import (
	"sync"
	"time"

	"github.com/phishguard/risk-engine/internal/domain"
)

// statistics accumulates verdict counters. Only computed analyses are
// recorded; cache hits are not.
type statistics struct {
	mu    sync.Mutex
	stats domain.Statistics
}

func (s *statistics) record(result domain.AnalysisResult, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.SitesAnalyzed++
	s.stats.TotalRiskScore += int64(result.RiskScore)

	switch result.Status {
	case domain.StatusPhishing:
		s.stats.ThreatsBlocked++
	case domain.StatusLegitimate:
		s.stats.LegitimateSites++
	default:
		s.stats.SuspiciousSites++
	}

	s.stats.ProtectionRate = float64(s.stats.ThreatsBlocked) / float64(s.stats.SitesAnalyzed) * 100
	s.stats.AverageRiskScore = float64(s.stats.TotalRiskScore) / float64(s.stats.SitesAnalyzed)
	s.stats.LastUpdate = now
}

func (s *statistics) snapshot() domain.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *statistics) restore(stats domain.Statistics) {
	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
}

func (s *statistics) reset(now time.Time) {
	s.mu.Lock()
	s.stats = domain.Statistics{LastUpdate: now}
	s.mu.Unlock()
}
