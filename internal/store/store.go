// Package store is the record store for users, user details and accounts.
// Every method maps GORM and driver errors onto the domain error taxonomy.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"account_system/internal/domain"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// mysqlDuplicateEntry is the MySQL error number for a unique index violation.
const mysqlDuplicateEntry = 1062

// Store wraps a GORM handle. A Store obtained inside Transaction is bound to
// that transaction.
type Store struct {
	db *gorm.DB
}

// New returns a Store over db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for health checks and migrations.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn in one database transaction. Any error from fn rolls
// everything back and is returned unchanged.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&Store{db: tx})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return mapErr(err, nil) // begin or commit failed
}

func (s *Store) with(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// forUpdate adds a row lock. sqlite has no row locks and serialises writers anyway.
func (s *Store) forUpdate(ctx context.Context) *gorm.DB {
	q := s.with(ctx)
	if s.db.Dialector.Name() == "sqlite" {
		return q
	}
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}

// mapErr translates err. dup is returned for unique index violations; a nil
// dup falls through to ErrStoreUnavailable.
func mapErr(err error, dup error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case dup != nil && isDuplicate(err):
		return dup
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") // sqlite without translation
}
