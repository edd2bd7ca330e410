package store

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound signals the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConstraintViolation indicates a required foreign key did not resolve.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrConcurrencyConflict indicates the row changed since it was read.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	// ErrUserExists signals the login is already taken.
	ErrUserExists = errors.New("user already exists")
)

// Store provides catalog persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
