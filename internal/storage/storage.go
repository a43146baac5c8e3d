// Package storage persists component records in SQLite. Each record is
// sealed with lib/encoding before it is written.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pthm/wcx"
	"github.com/pthm/wcx/lib/encoding"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS components (
	name     TEXT PRIMARY KEY,
	id       TEXT NOT NULL,
	version  TEXT NOT NULL,
	payload  TEXT NOT NULL,
	saved_at TEXT NOT NULL
);
`

// ErrNotFound is returned when no record is stored under a name.
var ErrNotFound = errors.New("storage: not found")

// Entry describes a stored revision.
type Entry struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Version string    `json:"version"`
	SavedAt time.Time `json:"savedAt"`
}

// Repository is the subset of Store used by the HTTP and MCP servers.
type Repository interface {
	Save(ctx context.Context, rec *wcx.Record) (Entry, error)
	Get(ctx context.Context, name string) (*wcx.Record, Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Ping(ctx context.Context) error
}

var _ Repository = (*Store)(nil)

// Store is a SQLite-backed Repository.
type Store struct {
	db        *sql.DB
	enc       *encoding.Encoder
	sensitive bool
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithSensitive encrypts payloads instead of only signing them.
func WithSensitive(sensitive bool) Option {
	return func(s *Store) { s.sensitive = sensitive }
}

// WithClock overrides the save timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string, key []byte, opts ...Option) (*Store, error) {
	enc, err := encoding.NewEncoder(key)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}

	s := &Store{db: conn, enc: enc, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Save stores rec under its name, replacing any previous revision. Every
// save gets a fresh revision id.
func (s *Store) Save(ctx context.Context, rec *wcx.Record) (Entry, error) {
	payload, err := s.enc.Seal(rec, s.sensitive)
	if err != nil {
		return Entry{}, fmt.Errorf("storage: seal %s: %w", rec.Name, err)
	}
	e := Entry{
		ID:      uuid.NewString(),
		Name:    rec.Name,
		Version: rec.Version,
		SavedAt: s.now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO components (name, id, version, payload, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			id = excluded.id,
			version = excluded.version,
			payload = excluded.payload,
			saved_at = excluded.saved_at`,
		e.Name, e.ID, e.Version, payload, e.SavedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Entry{}, fmt.Errorf("storage: save %s: %w", rec.Name, err)
	}
	return e, nil
}

// Get returns the record stored under name.
func (s *Store) Get(ctx context.Context, name string) (*wcx.Record, Entry, error) {
	var (
		e       = Entry{Name: name}
		payload string
		savedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, version, payload, saved_at FROM components WHERE name = ?`, name,
	).Scan(&e.ID, &e.Version, &payload, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, Entry{}, fmt.Errorf("storage: get %s: %w", name, err)
	}
	if e.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
		return nil, Entry{}, fmt.Errorf("storage: get %s: %w", name, err)
	}

	rec := &wcx.Record{}
	if err := s.enc.Open(payload, s.sensitive, rec); err != nil {
		return nil, Entry{}, fmt.Errorf("storage: open %s: %w", name, err)
	}
	return rec, e, nil
}

// List returns every stored entry ordered by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, id, version, saved_at FROM components ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			savedAt string
		)
		if err := rows.Scan(&e.Name, &e.ID, &e.Version, &savedAt); err != nil {
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		if e.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
