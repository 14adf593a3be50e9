package store

import (
	"context"
	"strings"
	"time"

	"account_system/internal/domain"
)

// CreateUser inserts the identity record only; details and accounts are created separately.
// A unique violation is resolved to ErrEmailTaken or ErrUsernameTaken by looking
// the email up again, since translated driver errors no longer name the index.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	err := s.with(ctx).Omit("Details", "Accounts").Create(u).Error
	if err == nil || !isDuplicate(err) {
		return mapErr(err, nil)
	}
	taken, lookupErr := s.EmailInUse(ctx, u.Email, 0)
	if lookupErr != nil {
		return lookupErr
	}
	if taken {
		return domain.ErrEmailTaken
	}
	return domain.ErrUsernameTaken
}

// UserByID loads a user with its details.
func (s *Store) UserByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	err := s.with(ctx).Preload("Details").First(&u, id).Error
	if err != nil {
		return nil, mapErr(err, nil)
	}
	return &u, nil
}

// UserByUsername loads a user by its lowercased username.
func (s *Store) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := s.with(ctx).Preload("Details").Where("username = ?", strings.ToLower(username)).First(&u).Error
	if err != nil {
		return nil, mapErr(err, nil)
	}
	return &u, nil
}

// UserByEmail loads a user by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := s.with(ctx).Preload("Details").Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		return nil, mapErr(err, nil)
	}
	return &u, nil
}

// EmailInUse reports whether another user already holds email.
func (s *Store) EmailInUse(ctx context.Context, email string, exceptID uint) (bool, error) {
	var n int64
	err := s.with(ctx).Model(&domain.User{}).
		Where("email = ? AND id <> ?", strings.ToLower(strings.TrimSpace(email)), exceptID).
		Count(&n).Error
	return n > 0, mapErr(err, nil)
}

// UpdateUser writes the given columns of user id. MySQL reports zero affected
// rows for unchanged values, so callers load the row first to prove it exists.
func (s *Store) UpdateUser(ctx context.Context, id uint, fields map[string]any) error {
	err := s.with(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields).Error
	if err != nil && isDuplicate(err) {
		return domain.ErrEmailTaken
	}
	return mapErr(err, nil)
}

// SetPassword replaces the stored password hash.
func (s *Store) SetPassword(ctx context.Context, id uint, hash string) error {
	return s.UpdateUser(ctx, id, map[string]any{"password": hash})
}

// TouchLogin records a successful login.
func (s *Store) TouchLogin(ctx context.Context, id uint, at time.Time) error {
	return s.UpdateUser(ctx, id, map[string]any{"last_login": at.UTC()})
}

// DeleteUser removes the identity record. Deleting a missing user is not an error.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return mapErr(s.with(ctx).Delete(&domain.User{}, id).Error, nil)
}

// CountUsers returns the number of users, soft-deleted ones included.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	err := s.with(ctx).Model(&domain.User{}).Count(&total).Error
	return total, mapErr(err, nil)
}

// ListUsers returns users with their details ordered by id.
func (s *Store) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, error) {
	var users []domain.User
	err := s.with(ctx).Preload("Details").Order("id").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, mapErr(err, nil)
	}
	return users, nil
}

// CreateDetails inserts the details row of a user.
func (s *Store) CreateDetails(ctx context.Context, d *domain.UserDetails) error {
	return mapErr(s.with(ctx).Create(d).Error, nil)
}

// DetailsByUserID loads the details of a user.
func (s *Store) DetailsByUserID(ctx context.Context, userID uint) (*domain.UserDetails, error) {
	var d domain.UserDetails
	err := s.with(ctx).Where("user_id = ?", userID).First(&d).Error
	if err != nil {
		return nil, mapErr(err, nil)
	}
	return &d, nil
}

// LockDetails loads the details of a user holding a row lock until the
// surrounding transaction ends.
func (s *Store) LockDetails(ctx context.Context, userID uint) (*domain.UserDetails, error) {
	var d domain.UserDetails
	err := s.forUpdate(ctx).Where("user_id = ?", userID).First(&d).Error
	if err != nil {
		return nil, mapErr(err, nil)
	}
	return &d, nil
}

// UpdateDetails writes the given columns of a details row.
func (s *Store) UpdateDetails(ctx context.Context, d *domain.UserDetails, fields map[string]any) error {
	return mapErr(s.with(ctx).Model(&domain.UserDetails{}).Where("id = ?", d.ID).Updates(fields).Error, nil)
}

// SaveDetailsState persists the soft-delete columns of d.
func (s *Store) SaveDetailsState(ctx context.Context, d *domain.UserDetails) error {
	return s.UpdateDetails(ctx, d, d.SoftDelete.Columns())
}

// ExpiredDetails returns soft-deleted details rows deleted before cutoff, oldest first.
func (s *Store) ExpiredDetails(ctx context.Context, cutoff time.Time) ([]domain.UserDetails, error) {
	var out []domain.UserDetails
	err := s.with(ctx).
		Where("is_deleted = ? AND deleted_at < ?", true, cutoff.UTC()).
		Order("deleted_at").
		Find(&out).Error
	return out, mapErr(err, nil)
}

// DeleteDetails removes the details row of a user. Deleting a missing row is not an error.
func (s *Store) DeleteDetails(ctx context.Context, userID uint) error {
	return mapErr(s.with(ctx).Where("user_id = ?", userID).Delete(&domain.UserDetails{}).Error, nil)
}
