// Package sqlstore keeps sessions in a SQL database: SQLite for a single node,
// PostgreSQL when several servers share them.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
)

//go:embed migrations
var migrations embed.FS

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Store implements ports.SessionStore on database/sql.
// Sessions are stored as JSON rows. Expired rows are invisible to Load and
// pruned by List.
type Store struct {
	db      *sql.DB
	dialect dialect
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*Store)

// WithTTL sets the expiration for sessions. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock sets the clock used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open picks the backend from the URL scheme: postgres:// or postgresql://
// for PostgreSQL, sqlite: followed by a file path for SQLite.
func Open(url string, opts ...Option) (*Store, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return OpenPostgres(url, opts...)
	case strings.HasPrefix(url, "sqlite:"):
		return OpenSQLite(strings.TrimPrefix(strings.TrimPrefix(url, "sqlite:"), "//"), opts...)
	default:
		return nil, fmt.Errorf("unsupported database url %q: use postgres:// or sqlite:<path>", url)
	}
}

func newStore(db *sql.DB, d dialect, opts ...Option) *Store {
	s := &Store{db: db, dialect: d, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying sql.DB instance.
func (s *Store) DB() *sql.DB {
	return s.db
}

// rebind rewrites ? placeholders for the dialect.
func (s *Store) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) expiry() int64 {
	if s.ttl == 0 {
		return 0
	}
	return s.now().Add(s.ttl).UnixMilli()
}

// Save upserts the session row.
func (s *Store) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
INSERT INTO waypoint_sessions (id, wizard, data, expires_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    wizard = excluded.wizard,
    data = excluded.data,
    expires_at = excluded.expires_at,
    updated_at = excluded.updated_at`),
		session.ID, session.Wizard, string(data), s.expiry(), s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load retrieves a session that has not expired.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, s.rebind(`
SELECT data FROM waypoint_sessions
WHERE id = ? AND (expires_at = 0 OR expires_at > ?)`),
		sessionID, s.now().UnixMilli(),
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if session.Values == nil {
		session.Values = make(map[string]any)
	}
	return &session, nil
}

// Delete removes the session. Missing sessions are not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM waypoint_sessions WHERE id = ?`), sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// List prunes expired rows and returns the remaining ids in order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	_, err := s.db.ExecContext(ctx, s.rebind(`
DELETE FROM waypoint_sessions WHERE expires_at <> 0 AND expires_at <= ?`),
		s.now().UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM waypoint_sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
