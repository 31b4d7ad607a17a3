package store

import (
	"errors"

	"commerce-server/internal/observability"

	_ "github.com/jackc/pgx/v5/stdlib" // Import the pgx stdlib for sqlx
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("not found")

// ErrStatusConflict is returned when a guarded customer status update finds
// the row in a different state than expected. Callers treat it as a lost
// race, never as a retryable store failure.
var ErrStatusConflict = errors.New("customer status conflict")

type Store struct {
	db     *sqlx.DB
	logger *observability.Logger
}

func New(connectionString string, logger *observability.Logger) (Store, error) {
	db, err := sqlx.Open("pgx", connectionString)
	if err != nil {
		return Store{}, err
	}
	return Store{db: db, logger: logger}, nil
}

// NewFromDB wraps an existing connection. Used by tests that drive the
// store against a mocked database.
func NewFromDB(db *sqlx.DB, logger *observability.Logger) Store {
	return Store{db: db, logger: logger}
}

// DB returns the underlying database connection
func (s *Store) DB() *sqlx.DB {
	return s.db
}
