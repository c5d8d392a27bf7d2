// Package services – UserService
//
// This file implements account management: first-run setup of the initial
// admin, login, password rotation, and the admin-only user administration
// operations (create with temporary password, enable/disable, reset, delete).
// Guard rails: admins cannot disable or delete themselves, and the last
// enabled admin account cannot be deleted.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/auth"
	"github.com/tbourn/go-crm-backend/internal/domain"
	"github.com/tbourn/go-crm-backend/internal/repo"
)

// UserService implements account and credential use-cases.
type UserService struct {
	DB    *gorm.DB
	Clock Clock
}

// NewUserService constructs a UserService on the system clock.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db, Clock: SystemClock{}}
}

// NeedsSetup reports whether no user exists yet, i.e. first-run setup is open.
func (s *UserService) NeedsSetup(ctx context.Context) (bool, error) {
	n, err := repo.CountUsers(ctx, s.DB)
	return n == 0, err
}

// Setup creates the initial admin account. It only works while the users
// table is empty.
func (s *UserService) Setup(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, errors.New("email and password required")
	}
	if len(password) < auth.MinPasswordLength {
		return nil, ErrWeakPassword
	}

	n, err := repo.CountUsers(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrSetupDone
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := domain.User{Email: email, PasswordHash: hash, Role: domain.RoleAdmin}
	if err := repo.CreateUser(ctx, s.DB, &u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &u, nil
}

// Login verifies credentials and records the login time. Disabled accounts
// are rejected regardless of password.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := repo.GetUserByEmail(ctx, s.DB, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.IsDisabled {
		return nil, ErrAccountDisabled
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	now := s.Clock.Now().UTC()
	if err := repo.TouchUserLogin(ctx, s.DB, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLoginAt = &now
	return u, nil
}

// Get fetches a user by ID.
func (s *UserService) Get(ctx context.Context, id uint) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// ChangePassword rotates a user's password. The current password is required
// unless the account is flagged must-change (first login on a temporary
// password).
func (s *UserService) ChangePassword(ctx context.Context, id uint, currentPassword, newPassword string) (*domain.User, error) {
	if len(newPassword) < auth.MinPasswordLength {
		return nil, ErrWeakPassword
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.MustChangePassword {
		if currentPassword == "" || !auth.CheckPassword(u.PasswordHash, currentPassword) {
			return nil, ErrWrongPassword
		}
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	if err := repo.UpdateUserPassword(ctx, s.DB, id, hash, false); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// List returns all users, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return repo.ListUsers(ctx, s.DB)
}

// Create adds an account with a generated temporary password, returned once
// to the calling admin. The account is flagged must-change.
func (s *UserService) Create(ctx context.Context, email, role string) (*domain.User, string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, "", errors.New("email required")
	}
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return nil, "", ErrInvalidRole
	}

	temp, err := auth.TempPassword()
	if err != nil {
		return nil, "", err
	}
	hash, err := auth.HashPassword(temp)
	if err != nil {
		return nil, "", err
	}

	u := domain.User{Email: email, PasswordHash: hash, Role: role, MustChangePassword: true}
	if err := repo.CreateUser(ctx, s.DB, &u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}
	return &u, temp, nil
}

// SetDisabled enables or disables an account. Admins cannot disable
// themselves.
func (s *UserService) SetDisabled(ctx context.Context, actorID, id uint, disabled bool) error {
	if disabled && actorID == id {
		return ErrSelfTarget
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return repo.SetUserDisabled(ctx, s.DB, id, disabled)
}

// ResetPassword issues a fresh temporary password for an account and flags it
// must-change.
func (s *UserService) ResetPassword(ctx context.Context, id uint) (string, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return "", err
	}
	temp, err := auth.TempPassword()
	if err != nil {
		return "", err
	}
	hash, err := auth.HashPassword(temp)
	if err != nil {
		return "", err
	}
	if err := repo.UpdateUserPassword(ctx, s.DB, id, hash, true); err != nil {
		return "", err
	}
	return temp, nil
}

// Delete removes an account. Self-deletion and deleting the last enabled
// admin are rejected.
func (s *UserService) Delete(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return ErrSelfTarget
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == domain.RoleAdmin {
		admins, err := repo.CountActiveAdmins(ctx, s.DB)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}
	return repo.DeleteUser(ctx, s.DB, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
