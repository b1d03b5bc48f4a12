package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/phishguard/risk-engine/internal/domain"
	"github.com/phishguard/risk-engine/internal/ports"
)

// List names used in the domain_lists table
const (
	listBlacklist = "blacklist"
	listWhitelist = "whitelist"
)

// PostgresStore implements ports.Storage for PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL storage instance
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// The engine writes one snapshot at a time; a small pool is enough
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	return NewPostgresStoreWithDB(db), nil
}

// NewPostgresStoreWithDB wraps an already opened database handle
func NewPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// InitSchema creates database tables if they don't exist
// In production, use proper migration tools
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	schema := `
	-- ============================================================================
	-- DOMAIN_LISTS TABLE
	-- ============================================================================
	-- Custom blacklist and whitelist, seeds included. Rewritten as a whole on
	-- every snapshot save, so no per-row timestamps are kept.
	CREATE TABLE IF NOT EXISTS domain_lists (
		domain VARCHAR(253) NOT NULL,
		list VARCHAR(10) NOT NULL CHECK (list IN ('blacklist', 'whitelist')),
		PRIMARY KEY (domain, list)
	);

	-- ============================================================================
	-- ENGINE_STATE TABLE
	-- ============================================================================
	-- Single-row table holding the rest of the snapshot.
	--
	-- reputation_cache, statistics and intelligence are JSONB: they are always
	-- loaded together at startup and never queried individually.
	CREATE TABLE IF NOT EXISTS engine_state (
		id SMALLINT PRIMARY KEY CHECK (id = 1),
		reputation_cache JSONB NOT NULL DEFAULT '{}',
		statistics JSONB NOT NULL DEFAULT '{}',
		intelligence JSONB NOT NULL DEFAULT '{}',
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	-- ============================================================================
	-- PHISHING_REPORTS TABLE
	-- ============================================================================
	-- Append-only log of user reports, with the verdict the user saw.
	CREATE TABLE IF NOT EXISTS phishing_reports (
		id UUID PRIMARY KEY,
		domain VARCHAR(253) NOT NULL,
		url TEXT NOT NULL,
		risk_score SMALLINT NOT NULL,
		status VARCHAR(20) NOT NULL,
		reasons TEXT[],
		comment TEXT,
		reported_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	-- Triage: "all reports for this domain, newest first"
	CREATE INDEX IF NOT EXISTS idx_reports_domain ON phishing_reports(domain, reported_at DESC);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Load reads the stored snapshot. An empty database yields an empty snapshot.
func (s *PostgresStore) Load(ctx context.Context) (*ports.Snapshot, error) {
	snapshot := &ports.Snapshot{
		Blacklist:       make([]string, 0),
		Whitelist:       make([]string, 0),
		ReputationCache: make(map[string]ports.CachedReputation),
	}

	rows, err := s.db.QueryContext(ctx, `SELECT domain, list FROM domain_lists ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("failed to query domain lists: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d, list string
		if err := rows.Scan(&d, &list); err != nil {
			return nil, err
		}
		switch list {
		case listBlacklist:
			snapshot.Blacklist = append(snapshot.Blacklist, d)
		case listWhitelist:
			snapshot.Whitelist = append(snapshot.Whitelist, d)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var cacheJSON, statsJSON, intelJSON []byte
	err = s.db.QueryRowContext(ctx, `
		SELECT reputation_cache, statistics, intelligence
		FROM engine_state
		WHERE id = 1
	`).Scan(&cacheJSON, &statsJSON, &intelJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return snapshot, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query engine state: %w", err)
	}

	if err := json.Unmarshal(cacheJSON, &snapshot.ReputationCache); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reputation cache: %w", err)
	}
	if err := json.Unmarshal(statsJSON, &snapshot.Statistics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statistics: %w", err)
	}
	if err := json.Unmarshal(intelJSON, &snapshot.Intelligence); err != nil {
		return nil, fmt.Errorf("failed to unmarshal intelligence summary: %w", err)
	}
	// The state row is only written by Save, together with the lists
	snapshot.Initialized = true

	return snapshot, nil
}

// Save replaces the stored snapshot in one transaction
func (s *PostgresStore) Save(ctx context.Context, snapshot *ports.Snapshot) error {
	cacheJSON, err := json.Marshal(snapshot.ReputationCache)
	if err != nil {
		return fmt.Errorf("failed to marshal reputation cache: %w", err)
	}
	statsJSON, err := json.Marshal(snapshot.Statistics)
	if err != nil {
		return fmt.Errorf("failed to marshal statistics: %w", err)
	}
	intelJSON, err := json.Marshal(snapshot.Intelligence)
	if err != nil {
		return fmt.Errorf("failed to marshal intelligence summary: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM domain_lists`); err != nil {
		return fmt.Errorf("failed to clear domain lists: %w", err)
	}

	insertList := `
		INSERT INTO domain_lists (domain, list)
		SELECT unnest($1::text[]), $2
		ON CONFLICT DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, insertList, pq.Array(snapshot.Blacklist), listBlacklist); err != nil {
		return fmt.Errorf("failed to save blacklist: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertList, pq.Array(snapshot.Whitelist), listWhitelist); err != nil {
		return fmt.Errorf("failed to save whitelist: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO engine_state (id, reputation_cache, statistics, intelligence, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET reputation_cache = EXCLUDED.reputation_cache,
		    statistics = EXCLUDED.statistics,
		    intelligence = EXCLUDED.intelligence,
		    updated_at = EXCLUDED.updated_at
	`, cacheJSON, statsJSON, intelJSON)
	if err != nil {
		return fmt.Errorf("failed to save engine state: %w", err)
	}

	return tx.Commit()
}

// SaveReport inserts a user phishing report
func (s *PostgresStore) SaveReport(ctx context.Context, report domain.Report) error {
	query := `
		INSERT INTO phishing_reports (id, domain, url, risk_score, status, reasons, comment, reported_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		report.ID, report.Domain, report.URL, report.RiskScore,
		string(report.Status), pq.Array(report.Reasons), report.Comment, report.ReportedAt,
	)
	return err
}
