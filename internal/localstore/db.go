package localstore

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is the per-device cache of household data. It is the only thing the
// UI reads from; the sync engine overwrites it from the backend and mirrors
// local writes back out. Records are keyed by id and scoped by household id.
type Store struct {
	db       *sql.DB
	notifier *Notifier
}

// Open opens the device database at the given path and runs migrations.
// Use ":memory:" for tests.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, notifier: NewNotifier()}, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Notifier returns the change feed for live UI subscribers.
func (s *Store) Notifier() *Notifier {
	return s.notifier
}

func (s *Store) publish(typ EventType, collection Collection, id, householdID string) {
	s.notifier.Publish(Event{
		Type:        typ,
		Collection:  collection,
		ID:          id,
		HouseholdID: householdID,
	})
}
