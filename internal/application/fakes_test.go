package application

import (
	"context"
	"sync"
	"time"

	"github.com/phishguard/risk-engine/internal/domain"
	"github.com/phishguard/risk-engine/internal/ports"
)

type fakeStorage struct {
	mu       sync.Mutex
	snapshot *ports.Snapshot
	reports  []domain.Report
	saves    int
	loadErr  error
	saveErr  error
}

func (f *fakeStorage) Load(ctx context.Context) (*ports.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.snapshot, nil
}

func (f *fakeStorage) Save(ctx context.Context, snapshot *ports.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.snapshot = snapshot
	f.saves++
	return nil
}

func (f *fakeStorage) SaveReport(ctx context.Context, report domain.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeStorage) Close() error { return nil }

func (f *fakeStorage) setSaveErr(err error) {
	f.mu.Lock()
	f.saveErr = err
	f.mu.Unlock()
}

func (f *fakeStorage) saved() *ports.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot
}

type fakeReputation struct {
	mu    sync.Mutex
	entry domain.ReputationEntry
	err   error
	delay time.Duration
	calls int
}

func (f *fakeReputation) Lookup(ctx context.Context, domainName string) (domain.ReputationEntry, error) {
	f.mu.Lock()
	f.calls++
	entry, err, delay := f.entry, f.err, f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay) // deliberately ignores ctx
	}
	return entry, err
}

func (f *fakeReputation) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeAge struct {
	ages     map[string]domain.DomainAge
	fallback domain.DomainAge
}

func (f *fakeAge) Estimate(ctx context.Context, domainName string) (domain.DomainAge, error) {
	if age, ok := f.ages[domainName]; ok {
		return age, nil
	}
	return f.fallback, nil
}

type fakeIntelligence struct {
	mu     sync.Mutex
	update domain.IntelligenceUpdate
	err    error
	calls  int
}

func (f *fakeIntelligence) FetchUpdates(ctx context.Context) (domain.IntelligenceUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.update, f.err
}

func (f *fakeIntelligence) set(update domain.IntelligenceUpdate, err error) {
	f.mu.Lock()
	f.update, f.err = update, err
	f.mu.Unlock()
}

func (f *fakeIntelligence) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
