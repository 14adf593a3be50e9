// Package lifecycle applies the ACTIVE <-> SOFT_DELETED transitions to user
// details and accounts. Each transition is a single-row update inside its own
// transaction, so a failure leaves the row unchanged.
package lifecycle

import (
	"context"
	"time"

	"account_system/internal/domain"
	"account_system/internal/metrics"
	"account_system/internal/store"

	"github.com/sirupsen/logrus"
)

// Service performs soft delete and restore.
type Service struct {
	store *store.Store
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a Service over st.
func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{store: st, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SoftDeleteUser marks the details of userID as deleted. Repeating it refreshes deleted_at.
func (s *Service) SoftDeleteUser(ctx context.Context, userID uint) (*domain.UserDetails, error) {
	return s.transitionUser(ctx, userID, func(d *domain.UserDetails) { d.MarkDeleted(s.now()) }, "soft_delete")
}

// RestoreUser clears the deletion marks of userID. Restoring an active user is a no-op.
func (s *Service) RestoreUser(ctx context.Context, userID uint) (*domain.UserDetails, error) {
	return s.transitionUser(ctx, userID, func(d *domain.UserDetails) { d.Restore() }, "restore")
}

// SoftDeleteAccount marks an account of owner as deleted.
func (s *Service) SoftDeleteAccount(ctx context.Context, ownerID, accountID uint) (*domain.Account, error) {
	return s.transitionAccount(ctx, ownerID, accountID, func(a *domain.Account) { a.MarkDeleted(s.now()) }, "soft_delete")
}

// RestoreAccount clears the deletion marks of an account of owner.
func (s *Service) RestoreAccount(ctx context.Context, ownerID, accountID uint) (*domain.Account, error) {
	return s.transitionAccount(ctx, ownerID, accountID, func(a *domain.Account) { a.Restore() }, "restore")
}

func (s *Service) transitionUser(ctx context.Context, userID uint, apply func(*domain.UserDetails), op string) (*domain.UserDetails, error) {
	var out *domain.UserDetails
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		d, err := tx.LockDetails(ctx, userID)
		if err != nil {
			return err
		}
		apply(d)
		if err := tx.SaveDetailsState(ctx, d); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.LifecycleTransitionsTotal.WithLabelValues("user", op).Inc()
	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"op":      op,
		"state":   out.State(),
	}).Info("User details transition")
	return out, nil
}

func (s *Service) transitionAccount(ctx context.Context, ownerID, accountID uint, apply func(*domain.Account), op string) (*domain.Account, error) {
	var out *domain.Account
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		a, err := tx.LockOwnedAccount(ctx, ownerID, accountID)
		if err != nil {
			return err
		}
		apply(a)
		if err := tx.SaveAccountState(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.LifecycleTransitionsTotal.WithLabelValues("account", op).Inc()
	logrus.WithFields(logrus.Fields{
		"user_id":    ownerID,
		"account_id": accountID,
		"op":         op,
		"state":      out.State(),
	}).Info("Account transition")
	return out, nil
}
