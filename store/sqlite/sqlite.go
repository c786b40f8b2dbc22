/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

INTERFACES IMPLEMENTED:
  punch.Store:    Punch persistence (append, query, all)
  punch.Registry: People

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on punches
  - No DELETE statements on punches
  - People are insert-if-absent

KEY TABLES:
  people:  One row per tax ID
  punches: Immutable punch log; seq keeps insertion order

INDEXES:
  - idx_punches_person_day: person-day lookups (validator hot path)

CONCURRENCY:
  Uses sync.RWMutex plus a single database connection, so there is one
  writer at a time. Each Append is its own SQL transaction: a crash
  mid-write loses at most that punch, never the table.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Readers don't block the writer
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/timeclock.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  recorder := punch.NewRecorder(store, clock, logger)

SEE ALSO:
  - punch/store.go: Interface definitions
  - punch/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/timeclock/punch"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: ":memory:" is per-connection, and it keeps a single writer.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS people (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Punches (append-only)
	CREATE TABLE IF NOT EXISTS punches (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		person_id TEXT NOT NULL REFERENCES people(id),
		name TEXT NOT NULL,
		day TEXT NOT NULL,
		at TEXT NOT NULL,
		kind TEXT NOT NULL,
		latitude TEXT NOT NULL,
		longitude TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_punches_person_day
		ON punches(person_id, day, at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PUNCH STORE (punch.Store interface)
// =============================================================================

// Append adds an event to the log inside a transaction.
func (s *Store) Append(ctx context.Context, e punch.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	query := `
		INSERT INTO punches
		(id, person_id, name, day, at, kind, latitude, longitude, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = sqlTx.ExecContext(ctx, query,
		e.ID,
		e.PersonID,
		e.Name,
		e.Date.String(),
		e.At.Format(time.RFC3339),
		string(e.Kind),
		e.Location.Latitude,
		e.Location.Longitude,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("punch %s: %w", e.ID, punch.ErrDuplicateEvent)
		}
		return fmt.Errorf("failed to append punch: %w", err)
	}

	return sqlTx.Commit()
}

// Query returns one person-day ordered by time of day.
func (s *Store) Query(ctx context.Context, personID punch.PersonID, date punch.Date) ([]punch.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, person_id, name, day, at, kind, latitude, longitude
		FROM punches
		WHERE person_id = ? AND day = ?
		ORDER BY at ASC, seq ASC
	`
	return s.queryEvents(ctx, query, personID, date.String())
}

// All returns every event in insertion order.
func (s *Store) All(ctx context.Context) ([]punch.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, person_id, name, day, at, kind, latitude, longitude
		FROM punches
		ORDER BY seq ASC
	`
	return s.queryEvents(ctx, query)
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]punch.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query punches: %w", err)
	}
	defer rows.Close()

	events := []punch.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

func scanEvent(rows *sql.Rows) (punch.Event, error) {
	var (
		e    punch.Event
		day  string
		at   string
		kind string
	)

	err := rows.Scan(
		&e.ID, &e.PersonID, &e.Name, &day, &at, &kind,
		&e.Location.Latitude, &e.Location.Longitude,
	)
	if err != nil {
		return e, fmt.Errorf("failed to scan punch: %w", err)
	}

	if e.Date, err = punch.ParseDate(day); err != nil {
		return e, fmt.Errorf("punch %s: %w", e.ID, err)
	}
	if e.At, err = time.Parse(time.RFC3339, at); err != nil {
		return e, fmt.Errorf("punch %s: invalid timestamp: %w", e.ID, err)
	}
	e.Kind = punch.Kind(kind)

	return e, nil
}

// =============================================================================
// PEOPLE (punch.Registry interface)
// =============================================================================

// SavePerson inserts p unless its ID exists.
func (s *Store) SavePerson(ctx context.Context, p punch.Person) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO people (id, name, created_at) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING",
		p.ID, p.Name, p.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("failed to save person: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetPerson retrieves a person by ID.
func (s *Store) GetPerson(ctx context.Context, id punch.PersonID) (*punch.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p punch.Person
	var createdAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM people WHERE id = ?",
		id,
	).Scan(&p.ID, &p.Name, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if p.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("person %s: invalid created_at: %w", p.ID, err)
	}
	return &p, nil
}

// ListPeople returns all people ordered by registration.
func (s *Store) ListPeople(ctx context.Context) ([]punch.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM people ORDER BY rowid ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	people := []punch.Person{}
	for rows.Next() {
		var p punch.Person
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &createdAt); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("person %s: invalid created_at: %w", p.ID, err)
		}
		p.CreatedAt = ts
		people = append(people, p)
	}
	return people, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
