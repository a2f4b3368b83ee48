package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/freeeve/gridwar/internal/repository"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx, so the
// same repository code serves plain reads and transactional writes.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Connect opens a connection pool to the PostgreSQL database.
func Connect(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

// Store implements repository.UnitOfWork over a Postgres pool.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func reposFor(q DBTX) repository.Repos {
	return repository.Repos{
		Users:     &UserRepo{q: q},
		Templates: &TemplateRepo{q: q},
		Matches:   &MatchRepo{q: q},
		Groups:    &GroupRepo{q: q},
		Logs:      &LogRepo{q: q},
	}
}

// Repos returns repositories bound to the pool, for read-only paths that do
// not need transactional isolation.
func (s *Store) Repos() repository.Repos {
	return reposFor(s.db)
}

// WithinTx runs fn against transaction-scoped repositories. The transaction
// commits iff fn returns nil; any error (including commit conflicts) rolls
// back every write of the operation.
func (s *Store) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(reposFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
