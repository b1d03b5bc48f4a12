package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/phishguard/risk-engine/internal/domain"
	"github.com/phishguard/risk-engine/internal/ports"
)

// fileDocument is the on-disk layout of a FileStore
type fileDocument struct {
	State   *ports.Snapshot `json:"state"`
	Reports []domain.Report `json:"reports"`
}

// FileStore persists state as a single JSON document.
//
// Every write goes to a temporary file that is renamed over the target, so a
// crash mid-write leaves the previous document intact.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path. The file is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the saved snapshot, or an empty one if the file does not exist
func (s *FileStore) Load(ctx context.Context) (*ports.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	if doc.State == nil {
		return emptySnapshot(), nil
	}
	return doc.State, nil
}

// Save replaces the stored snapshot, keeping previously saved reports
func (s *FileStore) Save(ctx context.Context, snapshot *ports.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.State = snapshot
	return s.write(doc)
}

// SaveReport appends a report to the document
func (s *FileStore) SaveReport(ctx context.Context, report domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Reports = append(doc.Reports, report)
	return s.write(doc)
}

// Reports returns every saved report, oldest first
func (s *FileStore) Reports() ([]domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Reports, nil
}

// Close is a no-op; every write is already on disk
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) read() (*fileDocument, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &fileDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode state file %s: %w", s.path, err)
	}
	return &doc, nil
}

func (s *FileStore) write(doc *fileDocument) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	// On Windows, os.Rename fails if the destination exists. Remove it first.
	if runtime.GOOS == "windows" {
		os.Remove(s.path)
	}
	return os.Rename(tmp, s.path)
}

func emptySnapshot() *ports.Snapshot {
	return &ports.Snapshot{
		Blacklist:       make([]string, 0),
		Whitelist:       make([]string, 0),
		ReputationCache: make(map[string]ports.CachedReputation),
	}
}
