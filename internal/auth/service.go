package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/motorlot/dealerd/internal"
	"github.com/motorlot/dealerd/internal/permission"
	"github.com/motorlot/dealerd/internal/user"
)

// PermissionLoader supplies the permission snapshot attached to a
// freshly authenticated principal.
type PermissionLoader interface {
	Load(userID int64, defaultVal bool) (permission.Set, error)
}

type Service struct {
	repo        Repository
	perms       PermissionLoader
	bcryptCost  int
	maxAttempts int
	logger      *slog.Logger
}

func NewService(repo Repository, perms PermissionLoader, bcryptCost, maxAttempts int, logger *slog.Logger) *Service {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Service{
		repo:        repo,
		perms:       perms,
		bcryptCost:  bcryptCost,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Login runs the credential and lockout state machine.
//
// Admins are exempt from locking: a wrong admin password reports a plain
// invalid-credentials failure with no counter mutation. For everyone
// else a wrong password increments the persisted counter, re-reads the
// authoritative count from the store, and deactivates the account once
// the count reaches the threshold. A locked account short-circuits
// before the password is even checked, so attempts while locked never
// move the counter past the threshold.
func (s *Service) Login(username, password string) (*Principal, error) {
	u, err := s.repo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewInternalError("store failure during login", err)
	}

	if !u.IsAdmin() && !u.IsActive {
		s.logger.Warn("login attempt on locked account", "username", u.Username)
		return nil, internal.ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, s.failedAttempt(u)
	}

	if !u.IsAdmin() {
		if err := s.repo.ResetFailedAttempts(u.ID); err != nil {
			return nil, internal.NewInternalError("reset failed attempts", err)
		}
	}

	perms, err := s.perms.Load(u.ID, false)
	if err != nil {
		return nil, internal.NewInternalError("load permissions", err)
	}

	principal := &Principal{
		UserID:             u.ID,
		Username:           u.Username,
		Role:               u.Role,
		RoleName:           u.Role.String(),
		Name:               u.Name,
		Active:             u.IsActive,
		MustChangePassword: u.IsTempPassword,
		Permissions:        perms,
		PermissionMap:      perms.Map(),
	}

	s.logger.Info("login succeeded", "username", u.Username, "role", principal.RoleName,
		"must_change_password", principal.MustChangePassword)
	return principal, nil
}

// failedAttempt applies the wrong-password transition and reports the
// outcome the caller should see.
func (s *Service) failedAttempt(u *user.User) error {
	if u.IsAdmin() {
		s.logger.Warn("invalid admin password", "username", u.Username)
		return internal.ErrInvalidCredentials
	}

	if err := s.repo.IncrementFailedAttempts(u.ID); err != nil {
		return internal.NewInternalError("track failed attempts", err)
	}

	// Re-read the authoritative count; the persisted row is the
	// serialization point under concurrent attempts.
	count, err := s.repo.FailedAttempts(u.ID)
	if err != nil {
		return internal.NewInternalError("read failed attempts", err)
	}

	if count >= s.maxAttempts {
		if err := s.repo.Deactivate(u.ID); err != nil {
			return internal.NewInternalError("lock account", err)
		}
		s.logger.Warn("account locked after repeated failures", "username", u.Username, "attempts", count)
		return internal.ErrAccountLocked
	}

	remaining := s.maxAttempts - count
	s.logger.Warn("invalid password", "username", u.Username, "remaining_attempts", remaining)

	plural := "s"
	if remaining == 1 {
		plural = ""
	}
	return internal.NewUnauthorizedError(
		fmt.Sprintf("Invalid password. %d attempt%s remaining.", remaining, plural),
		internal.ErrCodeInvalidCredentials,
	).WithDetails(map[string]int{"remaining_attempts": remaining})
}

// ChangePassword verifies the current password and stores a new hash,
// clearing the temporary-password flag. The failed-attempt counter and
// the active flag are left untouched.
func (s *Service) ChangePassword(dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeMissingField)
	}

	u, err := s.repo.GetByUsername(dto.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return internal.ErrUserNotFound
		}
		return internal.NewInternalError("store failure during password change", err)
	}

	if !u.IsAdmin() && !u.IsActive {
		return internal.ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.CurrentPassword)); err != nil {
		return internal.ErrInvalidCredentials
	}

	hash, err := s.HashPassword(dto.NewPassword)
	if err != nil {
		return internal.NewInternalError("hash password", err)
	}

	if err := s.repo.UpdatePassword(u.ID, hash, true); err != nil {
		return internal.NewInternalError("persist password change", err)
	}

	s.logger.Info("password changed", "username", u.Username)
	return nil
}

// RequestPasswordReset appends to the self-service reset log. The log
// is append-only; an administrator consumes it manually.
func (s *Service) RequestPasswordReset(dto ResetRequestDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeMissingField)
	}

	u, err := s.repo.GetByUsername(dto.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return internal.ErrUserNotFound
		}
		return internal.NewInternalError("store failure during reset request", err)
	}

	if err := s.repo.InsertResetRequest(u.Username, time.Now().Format(time.RFC3339)); err != nil {
		return internal.NewInternalError("record reset request", err)
	}

	s.logger.Info("password reset requested", "username", u.Username)
	return nil
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
