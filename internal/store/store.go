package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/venturedigest/venturedigest/pkg/curate"
)

// Store is the persistence interface: the seen-URL ledger consulted by
// the deduplicator plus the digest archive served by the API.
type Store interface {
	curate.History

	SaveDigest(ctx context.Context, d *curate.Digest) error
	LatestDigest(ctx context.Context) (*curate.Digest, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Seen returns the url -> last-shown date mapping for the whole ledger.
func (s *SQLiteStore) Seen(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT url, last_shown FROM seen_urls")
	if err != nil {
		return nil, fmt.Errorf("load seen urls: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]string)
	for rows.Next() {
		var url, lastShown string
		if err := rows.Scan(&url, &lastShown); err != nil {
			return nil, fmt.Errorf("scan seen url: %w", err)
		}
		seen[url] = lastShown
	}
	return seen, rows.Err()
}

// Record upserts urls as last shown on day (YYYY-MM-DD). Re-showing a
// URL refreshes its date so retention counts from the latest appearance.
func (s *SQLiteStore) Record(ctx context.Context, urls []string, day string) error {
	if len(urls) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record seen urls: %w", err)
	}
	defer tx.Rollback()

	for _, url := range urls {
		if url == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO seen_urls (url, last_shown) VALUES (?, ?)
			ON CONFLICT(url) DO UPDATE SET last_shown = excluded.last_shown
		`, url, day); err != nil {
			return fmt.Errorf("record seen url %s: %w", url, err)
		}
	}
	return tx.Commit()
}

// Prune removes ledger entries last shown before cutoff (YYYY-MM-DD).
// The dates sort lexicographically, so plain string comparison works.
func (s *SQLiteStore) Prune(ctx context.Context, cutoff string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM seen_urls WHERE last_shown < ?", cutoff)
	if err != nil {
		return fmt.Errorf("prune seen urls: %w", err)
	}
	return nil
}

// SaveDigest archives the bundle as a JSON payload row.
func (s *SQLiteStore) SaveDigest(ctx context.Context, d *curate.Digest) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode digest: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO digests (generated_at, item_count, payload) VALUES (?, ?, ?)
	`, d.GeneratedAt.UTC(), d.ItemCount, string(payload))
	if err != nil {
		return fmt.Errorf("save digest: %w", err)
	}
	return nil
}

// LatestDigest returns the most recent archived bundle, or (nil, nil)
// when none has been generated yet.
func (s *SQLiteStore) LatestDigest(ctx context.Context) (*curate.Digest, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload,
		"SELECT payload FROM digests ORDER BY generated_at DESC, id DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest digest: %w", err)
	}
	var d curate.Digest
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return nil, fmt.Errorf("decode digest: %w", err)
	}
	return &d, nil
}

// PruneDigests drops archived bundles older than cutoff.
func (s *SQLiteStore) PruneDigests(ctx context.Context, cutoff time.Time) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM digests WHERE generated_at < ?", cutoff.UTC())
	if err != nil {
		return fmt.Errorf("prune digests: %w", err)
	}
	return nil
}
