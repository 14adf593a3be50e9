// Package auth verifies credentials and issues, refreshes and revokes tokens.
// It also owns signup, password change/reset and self-service deactivation.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"account_system/internal/domain"
	"account_system/internal/lifecycle"
	"account_system/internal/metrics"
	"account_system/internal/queue"
	"account_system/internal/store"
	"account_system/internal/utils"

	"github.com/sirupsen/logrus"
)

// Options configures a Service.
type Options struct {
	JWTSecret          string
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	ResetTTL           time.Duration
	BcryptCost         int
	Password           utils.PasswordPolicy
	DefaultAccountType string
	BlockSoftDeleted   bool
	PublicBaseURL      string
}

// TokenPair is returned by login and restore.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// SignupInput is the registration payload.
type SignupInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Service is the auth gateway.
type Service struct {
	store     *store.Store
	lifecycle *lifecycle.Service
	blacklist Blacklist
	publisher queue.Publisher
	opts      Options
}

// NewService wires the gateway. Secret, token lifetimes and the default
// account type come from configuration and are required. blacklist may be
// nil, in which case logout fails; a nil publisher only logs reset links.
func NewService(st *store.Store, lc *lifecycle.Service, bl Blacklist, pub queue.Publisher, opts Options) (*Service, error) {
	switch {
	case opts.JWTSecret == "":
		return nil, fmt.Errorf("%w: jwt secret is required", domain.ErrValidation)
	case opts.AccessTTL <= 0, opts.RefreshTTL <= 0, opts.ResetTTL <= 0:
		return nil, fmt.Errorf("%w: token lifetimes must be positive", domain.ErrValidation)
	case strings.TrimSpace(opts.DefaultAccountType) == "":
		return nil, fmt.Errorf("%w: default account type is required", domain.ErrValidation)
	}
	opts.DefaultAccountType = strings.TrimSpace(opts.DefaultAccountType)
	if pub == nil {
		pub = queue.LogPublisher{}
	}
	return &Service{store: st, lifecycle: lc, blacklist: bl, publisher: pub, opts: opts}, nil
}

// Signup creates the user, their details and a default account atomically.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	u, err := s.signup(ctx, in)
	metrics.SignupsTotal.WithLabelValues(metrics.Status(err)).Inc()
	return u, err
}

func (s *Service) signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	username := utils.NormalizeUsername(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !utils.IsValidUsername(username) {
		return nil, fmt.Errorf("%w: username may contain only letters, digits and @.+-_", domain.ErrValidation)
	}
	if !utils.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: enter a valid email address", domain.ErrValidation)
	}
	if problems := s.opts.Password.Validate(in.Password); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, " "))
	}
	if _, err := s.store.UserByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if taken, err := s.store.EmailInUse(ctx, email, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.ErrEmailTaken
	}
	hash, err := utils.HashPassword(in.Password, s.opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:  username,
		Email:     email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  hash,
	}
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		user.Details = domain.UserDetails{UserID: user.ID, Role: domain.RoleUser}
		if err := tx.CreateDetails(ctx, &user.Details); err != nil {
			return err
		}
		return tx.CreateAccount(ctx, &domain.Account{UserID: user.ID, AccountType: s.opts.DefaultAccountType})
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": username}).Info("User registered")
	return user, nil
}

// Login checks credentials and returns a token pair.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	pair, err := s.login(ctx, username, password)
	metrics.LoginAttemptsTotal.WithLabelValues(metrics.Status(err)).Inc()
	return pair, err
}

func (s *Service) login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if s.opts.BlockSoftDeleted && user.Details.IsDeleted {
		return nil, domain.ErrUserDeactivated
	}
	if err := s.store.TouchLogin(ctx, user.ID, time.Now()); err != nil {
		return nil, err
	}
	return s.issue(user.ID)
}

// Refresh exchanges a valid, non-revoked refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refresh string) (string, error) {
	claims, err := utils.ParseJWT(refresh, s.opts.JWTSecret, utils.RefreshToken)
	if err != nil {
		return "", domain.ErrInvalidToken
	}
	if s.blacklist != nil {
		revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		if revoked {
			return "", domain.ErrInvalidToken
		}
	}
	if _, err := s.ActiveUser(ctx, claims.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrInvalidToken
		}
		return "", err
	}
	access, _, err := utils.GenerateJWT(claims.UserID, s.opts.JWTSecret, utils.AccessToken, s.opts.AccessTTL)
	return access, err
}

// Logout blacklists a refresh token of userID until it expires.
func (s *Service) Logout(ctx context.Context, userID uint, refresh string) error {
	claims, err := utils.ParseJWT(refresh, s.opts.JWTSecret, utils.RefreshToken)
	if err != nil || claims.UserID != userID {
		return domain.ErrInvalidToken
	}
	if s.blacklist == nil {
		return fmt.Errorf("%w: token blacklist not configured", domain.ErrStoreUnavailable)
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	logrus.WithField("user_id", userID).Info("User logged out")
	return nil
}

// ChangePassword replaces the password of userID after checking the old one.
func (s *Service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(user.Password, oldPassword) {
		return domain.ErrWrongPassword
	}
	if err := s.setPassword(ctx, user.ID, newPassword); err != nil {
		return err
	}
	logrus.WithField("user_id", userID).Info("Password changed")
	return nil
}

// ForgetPassword publishes a reset link for the user holding email and returns it.
func (s *Service) ForgetPassword(ctx context.Context, email string) (string, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	token, _, err := utils.GenerateJWT(user.ID, s.resetSecret(user), utils.ResetToken, s.opts.ResetTTL)
	if err != nil {
		return "", err
	}
	link := fmt.Sprintf("%s/auth/reset-password/%s/%s", strings.TrimRight(s.opts.PublicBaseURL, "/"), EncodeUID(user.ID), token)
	ev := queue.PasswordResetEvent{
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		ResetLink:   link,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.Publish(ctx, queue.PasswordResetQueue, ev); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return link, nil
}

// ResetPassword sets a new password given the uid and token from a reset link.
// The token is bound to the current password hash, so it works once.
func (s *Service) ResetPassword(ctx context.Context, uidb64, token, newPassword string) error {
	id, err := DecodeUID(uidb64)
	if err != nil {
		return domain.ErrInvalidToken
	}
	user, err := s.store.UserByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrInvalidToken
	}
	if err != nil {
		return err
	}
	claims, err := utils.ParseJWT(token, s.resetSecret(user), utils.ResetToken)
	if err != nil || claims.UserID != user.ID {
		return domain.ErrInvalidToken
	}
	if err := s.setPassword(ctx, user.ID, newPassword); err != nil {
		return err
	}
	logrus.WithField("user_id", user.ID).Info("Password reset")
	return nil
}

// DeleteSelf soft-deletes the signed-in user.
func (s *Service) DeleteSelf(ctx context.Context, userID uint) error {
	_, err := s.lifecycle.SoftDeleteUser(ctx, userID)
	return err
}

// RestoreSelf re-activates a soft-deleted user who proves their credentials
// and returns fresh tokens.
func (s *Service) RestoreSelf(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if _, err := s.lifecycle.RestoreUser(ctx, user.ID); err != nil {
		return nil, err
	}
	return s.issue(user.ID)
}

// ActiveUser loads userID and rejects it if soft-deleted users are blocked.
func (s *Service) ActiveUser(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.opts.BlockSoftDeleted && user.Details.IsDeleted {
		return nil, domain.ErrUserDeactivated
	}
	return user, nil
}

func (s *Service) authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.store.UserByUsername(ctx, utils.NormalizeUsername(username))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(user.Password, password) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) setPassword(ctx context.Context, userID uint, password string) error {
	if problems := s.opts.Password.Validate(password); len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, " "))
	}
	hash, err := utils.HashPassword(password, s.opts.BcryptCost)
	if err != nil {
		return err
	}
	return s.store.SetPassword(ctx, userID, hash)
}

func (s *Service) issue(userID uint) (*TokenPair, error) {
	access, _, err := utils.GenerateJWT(userID, s.opts.JWTSecret, utils.AccessToken, s.opts.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, _, err := utils.GenerateJWT(userID, s.opts.JWTSecret, utils.RefreshToken, s.opts.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// resetSecret ties reset tokens to the current password hash.
func (s *Service) resetSecret(u *domain.User) string {
	return s.opts.JWTSecret + u.Password
}

// EncodeUID encodes a user id for reset links.
func EncodeUID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(s string) (uint, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}
