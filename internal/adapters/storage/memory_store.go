package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/phishguard/risk-engine/internal/domain"
	"github.com/phishguard/risk-engine/internal/ports"
)

// MemoryStore keeps state in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu       sync.Mutex
	snapshot []byte
	reports  []domain.Report
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the last saved snapshot
func (s *MemoryStore) Load(ctx context.Context) (*ports.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return emptySnapshot(), nil
	}
	var snapshot ports.Snapshot
	if err := json.Unmarshal(s.snapshot, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Save stores an encoded copy, so later changes by the caller are not seen
func (s *MemoryStore) Save(ctx context.Context, snapshot *ports.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.snapshot = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SaveReport(ctx context.Context, report domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	report.Reasons = append([]string(nil), report.Reasons...)
	s.reports = append(s.reports, report)
	return nil
}

// Reports returns the saved reports, oldest first
func (s *MemoryStore) Reports() []domain.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Report(nil), s.reports...)
}

func (s *MemoryStore) Close() error {
	return nil
}
