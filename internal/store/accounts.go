package store

import (
	"context"

	"account_system/internal/domain"
)

// CreateAccount inserts a. A unique index hit becomes ErrDuplicateAccountType.
func (s *Store) CreateAccount(ctx context.Context, a *domain.Account) error {
	return mapErr(s.with(ctx).Create(a).Error, domain.ErrDuplicateAccountType)
}

// AccountsByOwner lists the accounts of owner, optionally including soft-deleted ones.
func (s *Store) AccountsByOwner(ctx context.Context, ownerID uint, includeDeleted bool) ([]domain.Account, error) {
	q := s.with(ctx).Where("user_id = ?", ownerID)
	if !includeDeleted {
		q = q.Where("is_deleted = ?", false)
	}
	var out []domain.Account
	err := q.Order("id").Find(&out).Error
	return out, mapErr(err, nil)
}

// OwnedAccount loads account id only if it belongs to owner; otherwise ErrNotFound.
func (s *Store) OwnedAccount(ctx context.Context, ownerID, id uint) (*domain.Account, error) {
	var a domain.Account
	err := s.with(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&a).Error
	if err != nil {
		return nil, mapErr(err, nil)
	}
	return &a, nil
}

// LockOwnedAccount is OwnedAccount with a row lock held until the transaction ends.
func (s *Store) LockOwnedAccount(ctx context.Context, ownerID, id uint) (*domain.Account, error) {
	var a domain.Account
	err := s.forUpdate(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&a).Error
	if err != nil {
		return nil, mapErr(err, nil)
	}
	return &a, nil
}

// AccountTypeTaken reports whether owner already holds accountType on a row other than exceptID.
func (s *Store) AccountTypeTaken(ctx context.Context, ownerID uint, accountType string, exceptID uint) (bool, error) {
	var n int64
	err := s.with(ctx).Model(&domain.Account{}).
		Where("user_id = ? AND account_type = ? AND id <> ?", ownerID, accountType, exceptID).
		Count(&n).Error
	return n > 0, mapErr(err, nil)
}

// UpdateAccount writes the given columns of a.
func (s *Store) UpdateAccount(ctx context.Context, a *domain.Account, fields map[string]any) error {
	err := s.with(ctx).Model(a).Updates(fields).Error
	return mapErr(err, domain.ErrDuplicateAccountType)
}

// SaveAccountState persists the soft-delete columns of a.
func (s *Store) SaveAccountState(ctx context.Context, a *domain.Account) error {
	return s.UpdateAccount(ctx, a, a.SoftDelete.Columns())
}

// DeleteAccount removes a single account.
func (s *Store) DeleteAccount(ctx context.Context, a *domain.Account) error {
	return mapErr(s.with(ctx).Delete(a).Error, nil)
}

// DeleteAccountsByOwner removes every account of owner and returns how many went.
func (s *Store) DeleteAccountsByOwner(ctx context.Context, ownerID uint) (int64, error) {
	res := s.with(ctx).Where("user_id = ?", ownerID).Delete(&domain.Account{})
	return res.RowsAffected, mapErr(res.Error, nil)
}

// CountAccounts counts every account row of owner, soft-deleted included.
func (s *Store) CountAccounts(ctx context.Context, ownerID uint) (int64, error) {
	var n int64
	err := s.with(ctx).Model(&domain.Account{}).Where("user_id = ?", ownerID).Count(&n).Error
	return n, mapErr(err, nil)
}
