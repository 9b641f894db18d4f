package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"

	_ "modernc.org/sqlite"
)

// Entry is a cached attachment body.
type Entry struct {
	URL       string
	Data      []byte
	MIME      string
	Size      int64
	FetchedAt time.Time
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries int
	Bytes   int64
}

// Store keeps downloaded attachment bytes in a local SQLite database so a
// preview opened twice is only downloaded once.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path and runs migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	_, _ = db.Exec("PRAGMA busy_timeout=5000")
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS attachments (
	url        TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	mime       TEXT NOT NULL DEFAULT '',
	size       INTEGER NOT NULL DEFAULT 0,
	fetched_at INTEGER NOT NULL DEFAULT 0
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the entry for url. The bool is false on a miss.
func (s *Store) Get(ctx context.Context, url string) (Entry, bool, error) {
	e := Entry{URL: url}
	var ts int64
	err := s.db.QueryRowContext(ctx,
		"SELECT data, mime, size, fetched_at FROM attachments WHERE url = ?", url,
	).Scan(&e.Data, &e.MIME, &e.Size, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	e.FetchedAt = time.Unix(ts, 0)
	return e, true, nil
}

// Put stores data for url, replacing any previous entry.
func (s *Store) Put(ctx context.Context, url string, data []byte) error {
	mt := mimetype.Detect(data).String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attachments (url, data, mime, size, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			data       = excluded.data,
			mime       = excluded.mime,
			size       = excluded.size,
			fetched_at = excluded.fetched_at
	`, url, data, mt, len(data), time.Now().Unix())
	return err
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(size), 0) FROM attachments",
	).Scan(&st.Entries, &st.Bytes)
	return st, err
}

// Prune deletes entries fetched more than maxAge ago and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()
	res, err := s.db.ExecContext(ctx, "DELETE FROM attachments WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
