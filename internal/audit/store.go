// Package audit persists anonymization runs to PostgreSQL. It records what
// was replaced and where, never the original text.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/srepho/allyanonimiser-go/internal/anonymizer"
)

// Store handles audit persistence with PostgreSQL
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Run is one recorded anonymization run
type Run struct {
	ID         int64     `db:"id" json:"id"`
	TextHash   string    `db:"text_hash" json:"text_hash"`
	TextLength int       `db:"text_length" json:"text_length"`
	ItemCount  int       `db:"item_count" json:"item_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ItemRecord is one replacement within a run
type ItemRecord struct {
	ID          int64  `db:"id" json:"id"`
	RunID       int64  `db:"run_id" json:"run_id"`
	EntityType  string `db:"entity_type" json:"entity_type"`
	StartOffset int    `db:"start_offset" json:"start_offset"`
	EndOffset   int    `db:"end_offset" json:"end_offset"`
	Replacement string `db:"replacement" json:"replacement"`
}

const schema = `
CREATE TABLE IF NOT EXISTS anonymization_runs (
	id          BIGSERIAL PRIMARY KEY,
	text_hash   TEXT NOT NULL,
	text_length INTEGER NOT NULL,
	item_count  INTEGER NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS anonymization_items (
	id           BIGSERIAL PRIMARY KEY,
	run_id       BIGINT NOT NULL REFERENCES anonymization_runs(id) ON DELETE CASCADE,
	entity_type  TEXT NOT NULL,
	start_offset INTEGER NOT NULL,
	end_offset   INTEGER NOT NULL,
	replacement  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_anonymization_items_run_id ON anonymization_items(run_id);
CREATE INDEX IF NOT EXISTS idx_anonymization_runs_created_at ON anonymization_runs(created_at);
`

// NewStore connects to the audit database and ensures the schema exists
func NewStore(dsn string, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &Store{db: db, logger: logger}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit store: %w", err)
	}

	logger.Info("Audit store initialized",
		zap.String("database_url", maskDSN(dsn)))

	return store, nil
}

func (s *Store) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create audit schema: %w", err)
	}
	return nil
}

// RecordRun stores one anonymization run and its items in a transaction.
// The original text is hashed, not stored.
func (s *Store) RecordRun(ctx context.Context, text string, items []anonymizer.Item) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var runID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO anonymization_runs (text_hash, text_length, item_count)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		fmt.Sprintf("%016x", xxhash.Sum64String(text)),
		len(text),
		len(items),
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	for _, item := range items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO anonymization_items (run_id, entity_type, start_offset, end_offset, replacement)
			 VALUES ($1, $2, $3, $4, $5)`,
			runID, item.EntityType, item.Start, item.End, item.Replacement,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	s.logger.Debug("Anonymization run recorded",
		zap.Int64("run_id", runID),
		zap.Int("item_count", len(items)))

	return runID, nil
}

// RecentRuns returns the most recent runs, newest first
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	runs := []Run{}
	err := s.db.SelectContext(ctx, &runs,
		`SELECT id, text_hash, text_length, item_count, created_at
		 FROM anonymization_runs
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	return runs, nil
}

// RunItems returns the items recorded for a run
func (s *Store) RunItems(ctx context.Context, runID int64) ([]ItemRecord, error) {
	items := []ItemRecord{}
	err := s.db.SelectContext(ctx, &items,
		`SELECT id, run_id, entity_type, start_offset, end_offset, replacement
		 FROM anonymization_items
		 WHERE run_id = $1
		 ORDER BY start_offset`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	return items, nil
}

// TypeCounts aggregates how often each entity type was anonymized
func (s *Store) TypeCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT entity_type, COUNT(*) AS n
		 FROM anonymization_items
		 GROUP BY entity_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to query type counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var entityType string
		var n int64
		if err := rows.Scan(&entityType, &n); err != nil {
			return nil, fmt.Errorf("failed to scan type count: %w", err)
		}
		counts[entityType] = n
	}
	return counts, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// maskDSN hides credentials in a connection string for logging
func maskDSN(dsn string) string {
	if at := strings.LastIndex(dsn, "@"); at != -1 {
		if scheme := strings.Index(dsn, "://"); scheme != -1 {
			return dsn[:scheme+3] + "***" + dsn[at:]
		}
	}
	return dsn
}
