package cache

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go-product-insight/internal/model"
	"go-product-insight/internal/schema"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps validated analysis results keyed by user and image hash.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
	mu  sync.RWMutex
}

func NewSQLiteStore(dbPath string, ttl time.Duration) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db, ttl: ttl, now: time.Now}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS analysis_cache (
		image_hash TEXT PRIMARY KEY,
		result TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create analysis_cache table: %w", err)
	}
	return nil
}

// Get returns the cached result for the hash, or nil when there is none or it expired.
func (s *SQLiteStore) Get(ctx context.Context, imageHash string) (*model.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT result, created_at FROM analysis_cache WHERE image_hash = ?",
		imageHash,
	).Scan(&raw, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis cache: %w", err)
	}

	if s.ttl > 0 && s.now().Sub(time.Unix(createdAt, 0)) > s.ttl {
		return nil, nil
	}

	// a stored row that no longer satisfies the contract counts as a miss
	result, err := schema.Validate([]byte(raw))
	if err != nil {
		log.Warn().Err(err).Str("hash", imageHash).Msg("discarding invalid cached analysis")
		return nil, nil
	}

	return &result, nil
}

func (s *SQLiteStore) Set(ctx context.Context, imageHash string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analysis_cache (image_hash, result, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(image_hash) DO UPDATE SET
			result = excluded.result,
			created_at = excluded.created_at
	`, imageHash, string(raw), s.now().Unix())

	if err != nil {
		return fmt.Errorf("failed to cache analysis result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, imageHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM analysis_cache WHERE image_hash = ?", imageHash); err != nil {
		return fmt.Errorf("failed to delete cached analysis: %w", err)
	}
	return nil
}

// Purge removes expired rows.
func (s *SQLiteStore) Purge(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM analysis_cache WHERE created_at < ?", s.now().Add(-s.ttl).Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge analysis cache: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
