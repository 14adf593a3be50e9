// Package users exposes profile management and the administrative user views.
package users

import (
	"context"
	"fmt"
	"strings"

	"account_system/internal/domain"
	"account_system/internal/lifecycle"
	"account_system/internal/store"
	"account_system/internal/utils"

	"github.com/sirupsen/logrus"
)

// MaxPageSize caps List.
const MaxPageSize = 100

// ProfileInput is a partial profile update; nil fields are left alone.
type ProfileInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	PhoneNumber *string
}

// Page is one page of List.
type Page struct {
	Users      []domain.User
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// Service manages user profiles.
type Service struct {
	store     *store.Store
	lifecycle *lifecycle.Service
}

// NewService returns a Service.
func NewService(st *store.Store, lc *lifecycle.Service) *Service {
	return &Service{store: st, lifecycle: lc}
}

// Profile loads a user with details.
func (s *Service) Profile(ctx context.Context, userID uint) (*domain.User, error) {
	return s.store.UserByID(ctx, userID)
}

// UpdateProfile changes names, email and phone number of userID.
func (s *Service) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*domain.User, error) {
	userFields := map[string]any{}
	detailFields := map[string]any{}
	if in.FirstName != nil {
		userFields["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		userFields["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if !utils.IsValidEmail(email) {
			return nil, fmt.Errorf("%w: enter a valid email address", domain.ErrValidation)
		}
		userFields["email"] = email
	}
	if in.PhoneNumber != nil {
		phone := strings.TrimSpace(*in.PhoneNumber)
		if phone == "" {
			detailFields["phone_number"] = nil
		} else if !utils.IsValidPhone(phone) {
			return nil, fmt.Errorf("%w: phone number must be at most 10 digits", domain.ErrValidation)
		} else {
			detailFields["phone_number"] = phone
		}
	}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		d, err := tx.LockDetails(ctx, userID)
		if err != nil {
			return err
		}
		if email, ok := userFields["email"].(string); ok {
			taken, err := tx.EmailInUse(ctx, email, userID)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrEmailTaken
			}
		}
		if len(userFields) > 0 {
			if err := tx.UpdateUser(ctx, userID, userFields); err != nil {
				return err
			}
		}
		if len(detailFields) > 0 {
			return tx.UpdateDetails(ctx, d, detailFields)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithField("user_id", userID).Info("Profile updated")
	return s.store.UserByID(ctx, userID)
}

// List returns one page of users, soft-deleted ones included. A page past the
// last one is ErrNotFound; page 1 of an empty table is an empty page.
func (s *Service) List(ctx context.Context, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = 20
	}
	total, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if page > max(totalPages, 1) {
		return nil, fmt.Errorf("%w: invalid page", domain.ErrNotFound)
	}
	users, err := s.store.ListUsers(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	return &Page{
		Users:      users,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// SetRole changes the role of target together with its staff flags. Only a
// super admin may do it, and not on themselves.
func (s *Service) SetRole(ctx context.Context, actor domain.Actor, targetID uint, role domain.Role) (*domain.UserDetails, error) {
	if actor.Role != domain.RoleSuperAdmin {
		return nil, domain.ErrForbidden
	}
	if actor.UserID == targetID {
		return nil, fmt.Errorf("%w: you cannot change your own role", domain.ErrForbidden)
	}
	var out *domain.UserDetails
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		d, err := tx.LockDetails(ctx, targetID)
		if err != nil {
			return err
		}
		if err := tx.UpdateDetails(ctx, d, map[string]any{"role": role}); err != nil {
			return err
		}
		staff, superuser := role.StaffFlags()
		if err := tx.UpdateUser(ctx, targetID, map[string]any{"is_staff": staff, "is_superuser": superuser}); err != nil {
			return err
		}
		d.Role = role
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"actor_id": actor.UserID,
		"user_id":  targetID,
		"role":     role,
	}).Info("Role changed")
	return out, nil
}

// SoftDelete deactivates target on behalf of an admin.
func (s *Service) SoftDelete(ctx context.Context, actor domain.Actor, targetID uint) (*domain.UserDetails, error) {
	if err := s.authorize(ctx, actor, targetID); err != nil {
		return nil, err
	}
	return s.lifecycle.SoftDeleteUser(ctx, targetID)
}

// Restore re-activates target on behalf of an admin.
func (s *Service) Restore(ctx context.Context, actor domain.Actor, targetID uint) (*domain.UserDetails, error) {
	if err := s.authorize(ctx, actor, targetID); err != nil {
		return nil, err
	}
	return s.lifecycle.RestoreUser(ctx, targetID)
}

// authorize lets admins act on others; a group admin may not touch a super admin.
func (s *Service) authorize(ctx context.Context, actor domain.Actor, targetID uint) error {
	if !actor.Role.IsAdmin() {
		return domain.ErrForbidden
	}
	if actor.UserID == targetID {
		return fmt.Errorf("%w: use the self-service endpoints for your own user", domain.ErrForbidden)
	}
	target, err := s.store.DetailsByUserID(ctx, targetID)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleSuperAdmin && actor.Role != domain.RoleSuperAdmin {
		return domain.ErrForbidden
	}
	return nil
}
