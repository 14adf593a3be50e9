// Package accounts implements owner-scoped account CRUD. Every operation takes
// the acting owner's id; an account of another owner is reported as not found.
package accounts

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"account_system/internal/domain"
	"account_system/internal/store"

	"github.com/sirupsen/logrus"
)

// Options configures a Service.
type Options struct {
	DefaultType    string // Type used when a create request has none
	HideSoftDelete bool   // List omits soft-deleted accounts unless asked
}

// CreateInput is the payload of Create.
type CreateInput struct {
	AccountType  string
	AccountValue int64
}

// UpdateInput is a partial update; nil fields are left alone.
type UpdateInput struct {
	AccountType  *string
	AccountValue *int64
}

// Service manages accounts.
type Service struct {
	store *store.Store
	opts  Options
}

// NewService returns a Service over st. The default type comes from
// configuration and must be a valid account type.
func NewService(st *store.Store, opts Options) (*Service, error) {
	s := &Service{store: st, opts: opts}
	typ, err := s.normalizeType(opts.DefaultType, false)
	if err != nil {
		return nil, fmt.Errorf("default account type: %w", err)
	}
	s.opts.DefaultType = typ
	return s, nil
}

// DefaultType is the type given to accounts created without one.
func (s *Service) DefaultType() string {
	return s.opts.DefaultType
}

// Create adds an account for owner. The (owner, type) pair must be unused,
// soft-deleted accounts included.
func (s *Service) Create(ctx context.Context, ownerID uint, in CreateInput) (*domain.Account, error) {
	typ, err := s.normalizeType(in.AccountType, true)
	if err != nil {
		return nil, err
	}
	taken, err := s.store.AccountTypeTaken(ctx, ownerID, typ, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: you already have an account with the name '%s'", domain.ErrDuplicateAccountType, typ)
	}
	a := &domain.Account{UserID: ownerID, AccountType: typ, AccountValue: in.AccountValue}
	if err := s.store.CreateAccount(ctx, a); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":      ownerID,
		"account_id":   a.ID,
		"account_type": typ,
	}).Info("Account created")
	return a, nil
}

// List returns owner's accounts. includeDeleted only matters when soft-deleted
// accounts are hidden by default.
func (s *Service) List(ctx context.Context, ownerID uint, includeDeleted bool) ([]domain.Account, error) {
	return s.store.AccountsByOwner(ctx, ownerID, includeDeleted || !s.opts.HideSoftDelete)
}

// Get returns one account of owner.
func (s *Service) Get(ctx context.Context, ownerID, id uint) (*domain.Account, error) {
	return s.store.OwnedAccount(ctx, ownerID, id)
}

// Update applies a partial update to an account of owner.
func (s *Service) Update(ctx context.Context, ownerID, id uint, in UpdateInput) (*domain.Account, error) {
	var out *domain.Account
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		a, err := tx.LockOwnedAccount(ctx, ownerID, id)
		if err != nil {
			return err
		}
		fields := map[string]any{}
		if in.AccountType != nil {
			typ, err := s.normalizeType(*in.AccountType, false)
			if err != nil {
				return err
			}
			if typ != a.AccountType {
				taken, err := tx.AccountTypeTaken(ctx, ownerID, typ, a.ID)
				if err != nil {
					return err
				}
				if taken {
					return fmt.Errorf("%w: you already have an account with the name '%s'", domain.ErrDuplicateAccountType, typ)
				}
				fields["account_type"] = typ
				a.AccountType = typ
			}
		}
		if in.AccountValue != nil {
			fields["account_value"] = *in.AccountValue
			a.AccountValue = *in.AccountValue
		}
		if len(fields) > 0 {
			if err := tx.UpdateAccount(ctx, a, fields); err != nil {
				return err
			}
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete permanently removes an account of owner.
func (s *Service) Delete(ctx context.Context, ownerID, id uint) error {
	a, err := s.store.OwnedAccount(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteAccount(ctx, a); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":    ownerID,
		"account_id": id,
	}).Info("Account deleted")
	return nil
}

func (s *Service) normalizeType(typ string, allowDefault bool) (string, error) {
	typ = strings.TrimSpace(typ)
	if typ == "" {
		if !allowDefault {
			return "", fmt.Errorf("%w: account_type may not be blank", domain.ErrValidation)
		}
		typ = s.opts.DefaultType
	}
	if utf8.RuneCountInString(typ) > domain.MaxAccountTypeLength {
		return "", fmt.Errorf("%w: account_type must be at most %d characters", domain.ErrValidation, domain.MaxAccountTypeLength)
	}
	return typ, nil
}
