// Package sqlite implements repository.Store on a relational SQLite schema.
//
// Workouts, exercises and sets are linked by foreign keys with ON DELETE CASCADE,
// so deleting a workout removes its whole aggregate. Copy provenance lives in
// the workout_copies relation, whose primary key (user_id, source_workout_id)
// serializes concurrent copies of the same workout by the same user.
//
// The pool is limited to one connection: a transaction holds that connection
// until it commits or rolls back, so code running inside WithinTx must only use
// the repositories it is handed.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"liftlog/workout-engine/internal/repository"
)

// Timestamps are stored as fixed-width UTC text so lexical order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Open opens (or creates) the database file at path with foreign keys enforced.
func Open(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type repos struct {
	q querier
}

func (r repos) Users() repository.UserRepository            { return &userRepository{q: r.q} }
func (r repos) Workouts() repository.WorkoutRepository      { return &workoutRepository{q: r.q} }
func (r repos) Exercises() repository.ExerciseRepository    { return &exerciseRepository{q: r.q} }
func (r repos) Sets() repository.SetRepository              { return &setRepository{q: r.q} }
func (r repos) Provenance() repository.ProvenanceRepository { return &provenanceRepository{q: r.q} }
func (r repos) Follows() repository.FollowRepository        { return &followRepository{q: r.q} }
func (r repos) Catalog() repository.CatalogRepository       { return &catalogRepository{q: r.q} }

// Store implements repository.Store.
type Store struct {
	repos
	db *sql.DB
}

// NewStore wraps an opened and migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{repos: repos{q: db}, db: db}
}

// WithinTx runs fn in one transaction. The transaction is detached from ctx
// cancellation: once begun it either commits or rolls back completely.
func (s *Store) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	ctx = context.WithoutCancel(ctx)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(ctx, repos{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func now() time.Time {
	return time.Now().UTC()
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	i := int(ni.Int64)
	return &i
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func notFoundIfNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
