package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/phishguard/risk-engine/internal/cache"
	"github.com/phishguard/risk-engine/internal/config"
	"github.com/phishguard/risk-engine/internal/domain"
	"github.com/phishguard/risk-engine/internal/domain/detection"
	"github.com/phishguard/risk-engine/internal/logging"
	"github.com/phishguard/risk-engine/internal/metrics"
	"github.com/phishguard/risk-engine/internal/ports"
)

// Options wires an Engine to its collaborators. Registry and Storage are
// required. A nil source leaves its signal neutral, and zero timings take
// the defaults.
type Options struct {
	Registry     *detection.Registry
	Reputation   ports.ReputationSource
	Intelligence ports.IntelligenceSource
	Age          ports.DomainAgeSource
	Storage      ports.Storage
	Timings      config.Timings

	// Extra seed domains on top of the registry's known lists
	SeedBlacklist []string
	SeedWhitelist []string

	Logger  *logrus.Logger
	Metrics *metrics.Metrics

	// Now overrides the clock, for tests
	Now func() time.Time
}

// analysisKey identifies a cached analysis
type analysisKey struct {
	domain string
	url    string
}

// Engine is the URL risk-scoring service. It owns the lists, both caches,
// the statistics and the background tasks; there is no package-level state.
type Engine struct {
	registry     *detection.Registry
	detector     *detection.Detector
	resolver     *ReputationResolver
	lists        *DomainLists
	analyses     *cache.TTLCache[analysisKey, domain.AnalysisResult]
	reputations  *cache.TTLCache[string, domain.ReputationEntry]
	stats        statistics
	storage      ports.Storage
	intelligence ports.IntelligenceSource
	timings      config.Timings
	logger       *logrus.Logger
	metrics      *metrics.Metrics
	now          func() time.Time

	// inflight holds at most one computation per analysis key
	inflight singleflight.Group

	// generation is bumped by every list change; results computed under an
	// older generation are returned but not cached
	genMu      sync.RWMutex
	generation uint64

	intelMu sync.Mutex
	intel   domain.UpdateSummary

	persistMu sync.Mutex
	dirty     bool

	lifecycleMu sync.Mutex
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewEngine builds an engine and restores its persisted state.
//
// A failing Load is logged and counted; the engine then starts from the seed
// lists with empty caches and statistics.
func NewEngine(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if opts.Storage == nil {
		return nil, errors.New("storage is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	timings := withDefaultTimings(opts.Timings)

	e := &Engine{
		registry:     opts.Registry,
		lists:        NewDomainLists(),
		analyses:     cache.NewWithClock[analysisKey, domain.AnalysisResult](opts.Now),
		reputations:  cache.NewWithClock[string, domain.ReputationEntry](opts.Now),
		storage:      opts.Storage,
		intelligence: opts.Intelligence,
		timings:      timings,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		now:          opts.Now,
	}

	e.resolver = &ReputationResolver{
		lists:    e.lists,
		registry: opts.Registry,
		source:   opts.Reputation,
		cache:    e.reputations,
		ttl:      timings.ReputationTTL,
		timeout:  timings.SourceTimeout,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
	age := &AgeEstimator{
		source:  opts.Age,
		timeout: timings.SourceTimeout,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	e.detector = detection.NewDetector(opts.Registry, e.resolver, age)

	// Seeds only fill lists that were never saved
	if !e.restore(ctx) {
		e.lists.Add(Blacklist, normalizeAll(opts.Registry.KnownPhishing)...)
		e.lists.Add(Whitelist, normalizeAll(opts.Registry.KnownLegitimate)...)
		e.lists.Add(Blacklist, normalizeAll(opts.SeedBlacklist)...)
		e.lists.Add(Whitelist, normalizeAll(opts.SeedWhitelist)...)
	}
	e.updateListGauges()

	return e, nil
}

func withDefaultTimings(t config.Timings) config.Timings {
	defaults := config.Timings{
		AnalysisTTL:    10 * time.Minute,
		ReputationTTL:  time.Hour,
		SourceTimeout:  150 * time.Millisecond,
		IntelTimeout:   30 * time.Second,
		UpdateInterval: 30 * time.Minute,
		SweepInterval:  60 * time.Minute,
		SweepMaxAge:    24 * time.Hour,
	}
	pick := func(v, d time.Duration) time.Duration {
		if v <= 0 {
			return d
		}
		return v
	}
	return config.Timings{
		AnalysisTTL:    pick(t.AnalysisTTL, defaults.AnalysisTTL),
		ReputationTTL:  pick(t.ReputationTTL, defaults.ReputationTTL),
		SourceTimeout:  pick(t.SourceTimeout, defaults.SourceTimeout),
		IntelTimeout:   pick(t.IntelTimeout, defaults.IntelTimeout),
		UpdateInterval: pick(t.UpdateInterval, defaults.UpdateInterval),
		SweepInterval:  pick(t.SweepInterval, defaults.SweepInterval),
		SweepMaxAge:    pick(t.SweepMaxAge, defaults.SweepMaxAge),
	}
}

// Analyze scores a URL.
//
// Only an unparseable URL is an error (domain.ErrInvalidURL); every other
// failure degrades the affected signal. A result computed within the analysis
// TTL is returned from cache unchanged, and concurrent calls for the same
// URL share one computation.
func (e *Engine) Analyze(ctx context.Context, rawURL string) (*domain.AnalysisResult, error) {
	domainName, err := detection.ExtractDomain(rawURL)
	if err != nil {
		return nil, err
	}
	key := analysisKey{domain: domainName, url: rawURL}

	if cached, ok := e.analyses.Get(key, e.timings.AnalysisTTL); ok {
		e.metrics.CacheLookups.WithLabelValues("analysis", "hit").Inc()
		result := cached.Clone()
		return &result, nil
	}
	e.metrics.CacheLookups.WithLabelValues("analysis", "miss").Inc()

	e.genMu.RLock()
	generation := e.generation
	e.genMu.RUnlock()
	flightKey := fmt.Sprintf("%d\x00%s\x00%s", generation, domainName, rawURL)

	v, _, _ := e.inflight.Do(flightKey, func() (interface{}, error) {
		// The computation is shared, so one caller going away must not cancel it
		return e.compute(context.WithoutCancel(ctx), key, generation), nil
	})

	// Callers sharing one flight each get their own copy
	result := v.(domain.AnalysisResult).Clone()
	return &result, nil
}

func (e *Engine) compute(ctx context.Context, key analysisKey, generation uint64) domain.AnalysisResult {
	started := e.now()
	target := detection.Target{URL: key.url, Domain: key.domain}

	signals, err := e.detector.Collect(ctx, target)
	if err != nil {
		e.metrics.ExtractorFailures.WithLabelValues("collect").Inc()
		e.logger.WithError(err).WithField("domain", key.domain).Warn("Signal extraction degraded")
	}

	result := detection.Aggregate(target, signals)
	finished := e.now()
	result.ID = uuid.New()
	result.AnalyzedAt = finished
	result.ElapsedMS = finished.Sub(started).Milliseconds()

	// A list change during the computation makes this result stale for caching
	e.genMu.RLock()
	if e.generation == generation {
		e.analyses.Set(key, result)
	}
	e.genMu.RUnlock()

	e.stats.record(result, finished)
	e.markDirty()

	e.metrics.AnalysesTotal.WithLabelValues(string(result.Status)).Inc()
	e.metrics.AnalysisDuration.Observe(finished.Sub(started).Seconds())

	entry := e.logger.WithFields(logrus.Fields{
		"domain":     result.Domain,
		"risk_score": result.RiskScore,
		"status":     result.Status,
	})
	if result.Status == domain.StatusPhishing {
		entry.Warn("Phishing URL detected")
	} else {
		entry.Debug("Analysis complete")
	}

	return result
}

// Block adds a domain to the blacklist and removes it from the whitelist
func (e *Engine) Block(ctx context.Context, domainName string) error {
	return e.changeList(ctx, domainName, func(d string) bool { return e.lists.Move(Blacklist, d) })
}

// Trust adds a domain to the whitelist and removes it from the blacklist
func (e *Engine) Trust(ctx context.Context, domainName string) error {
	return e.changeList(ctx, domainName, func(d string) bool { return e.lists.Move(Whitelist, d) })
}

// Unblock removes a domain from the blacklist
func (e *Engine) Unblock(ctx context.Context, domainName string) error {
	return e.changeList(ctx, domainName, func(d string) bool { return e.lists.Remove(Blacklist, d) })
}

// Untrust removes a domain from the whitelist
func (e *Engine) Untrust(ctx context.Context, domainName string) error {
	return e.changeList(ctx, domainName, func(d string) bool { return e.lists.Remove(Whitelist, d) })
}

// changeList validates the domain, applies the mutation and drops every cached
// verdict for the domain, even when the lists did not change
func (e *Engine) changeList(ctx context.Context, domainName string, mutate func(string) bool) error {
	d := detection.NormalizeDomain(domainName)
	if !detection.ValidateDomain(d) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDomain, domainName)
	}

	changed := mutate(d)
	e.invalidate(d)

	if changed {
		e.updateListGauges()
		e.flush(ctx, true)
	}
	return nil
}

// invalidate removes the reputation and analysis cache entries of the given domains
func (e *Engine) invalidate(domains ...string) {
	e.resolver.Invalidate(domains...)

	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		set[d] = struct{}{}
	}

	e.genMu.Lock()
	defer e.genMu.Unlock()
	e.generation++
	e.analyses.DeleteFunc(func(k analysisKey) bool {
		_, ok := set[k.domain]
		return ok
	})
}

// Report records a user phishing report for an analysis
func (e *Engine) Report(ctx context.Context, result *domain.AnalysisResult, comment string) (*domain.Report, error) {
	if result == nil {
		return nil, errors.New("report requires an analysis")
	}

	report := domain.Report{
		ID:         uuid.New(),
		Domain:     result.Domain,
		URL:        result.URL,
		RiskScore:  result.RiskScore,
		Status:     result.Status,
		Reasons:    append([]string(nil), result.Reasons...),
		Comment:    comment,
		ReportedAt: e.now(),
	}

	if err := e.storage.SaveReport(ctx, report); err != nil {
		e.metrics.PersistenceErrors.WithLabelValues("report").Inc()
		return nil, fmt.Errorf("%w: failed to save report: %v", domain.ErrPersistence, err)
	}

	e.logger.WithFields(logrus.Fields{
		"report_id": report.ID,
		"domain":    report.Domain,
	}).Info("Phishing report recorded")

	return &report, nil
}

// Statistics returns a snapshot of the verdict counters
func (e *Engine) Statistics() domain.Statistics {
	return e.stats.snapshot()
}

// ResetStatistics zeroes the counters
func (e *Engine) ResetStatistics(ctx context.Context) {
	e.stats.reset(e.now())
	e.flush(ctx, true)
}

// ListSummary describes the current lists
type ListSummary struct {
	Blacklist    int                  `json:"blacklist"`
	Whitelist    int                  `json:"whitelist"`
	Intelligence domain.UpdateSummary `json:"intelligence"`
}

// Lists returns the list sizes and the last intelligence update
func (e *Engine) Lists() ListSummary {
	black, white := e.lists.Sizes()
	e.intelMu.Lock()
	defer e.intelMu.Unlock()
	return ListSummary{Blacklist: black, Whitelist: white, Intelligence: e.intel}
}

// Reputation resolves the reputation of a single domain
func (e *Engine) Reputation(ctx context.Context, domainName string) domain.ReputationEntry {
	return e.resolver.Resolve(ctx, detection.NormalizeDomain(domainName))
}

func (e *Engine) updateListGauges() {
	black, white := e.lists.Sizes()
	e.metrics.ListSize.WithLabelValues(string(Blacklist)).Set(float64(black))
	e.metrics.ListSize.WithLabelValues(string(Whitelist)).Set(float64(white))
}

func normalizeAll(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = detection.NormalizeDomain(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}
