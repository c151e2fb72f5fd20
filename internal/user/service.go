package user

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/motorlot/dealerd/internal"
)

type Repository interface {
	GetByUsername(username string) (*User, error)
	Insert(u *User) (int64, error)
	UpdatePassword(userID int64, passwordHash string) error
	SetActive(userID int64, active bool) error
	List() ([]*User, error)
	ResetRequests() ([]ResetRequest, error)
	SalesHistory() ([]SaleRecord, error)
}

// Service implements the administrator-facing account operations. Every
// operation is gated by an explicit role check at the boundary; the
// acting principal's role comes in as a parameter so the service never
// trusts the transport to have done the check.
type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{repo: repo, bcryptCost: bcryptCost, logger: logger}
}

// Create provisions a profile with a temporary password the recipient
// must change on first login. Duplicate usernames are rejected with a
// validation error before the store's uniqueness constraint can turn
// the collision into an opaque store failure.
func (s *Service) Create(actor Role, dto CreateUserDTO) (*CreatedUser, error) {
	if actor != RoleAdmin {
		return nil, internal.ErrAdminOnly
	}

	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(validationMessage(err), internal.ErrCodeMissingField)
	}

	role, err := RoleFromName(dto.Role)
	if err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeUnknownRole)
	}

	existing, err := s.repo.GetByUsername(dto.Username)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, internal.NewInternalError("check username availability", err)
	}
	if existing != nil {
		return nil, internal.ErrUserExists
	}

	tempPassword := dto.TempPassword
	if tempPassword == "" {
		tempPassword = generatePassword("temp")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("hash temporary password", err)
	}

	u := &User{
		Username:       dto.Username,
		PasswordHash:   string(hash),
		Role:           role,
		Name:           dto.Name,
		Email:          dto.Email,
		Phone:          dto.Phone,
		IsActive:       true,
		IsTempPassword: true,
	}

	id, err := s.repo.Insert(u)
	if err != nil {
		return nil, internal.NewInternalError("create user", err)
	}

	s.logger.Info("user created", "username", u.Username, "role", role.String(), "user_id", id)
	return &CreatedUser{ID: id, Username: u.Username, TempPassword: tempPassword}, nil
}

// ResetPassword sets a new password chosen (or generated) for the
// target. Unlike creation-time temp passwords, the result is not
// flagged temporary, so the user is not forced to change it again.
func (s *Service) ResetPassword(actor Role, username, newPassword string) (string, error) {
	if actor != RoleAdmin {
		return "", internal.ErrAdminOnly
	}

	u, err := s.repo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", internal.ErrUserNotFound
		}
		return "", internal.NewInternalError("load user", err)
	}

	if newPassword == "" {
		newPassword = generatePassword("reset")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return "", internal.NewInternalError("hash password", err)
	}

	if err := s.repo.UpdatePassword(u.ID, string(hash)); err != nil {
		return "", internal.NewInternalError("persist password reset", err)
	}

	s.logger.Info("password reset by admin", "username", u.Username)
	return newPassword, nil
}

// ToggleActive flips the active flag. Reactivation also zeroes the
// failed-attempt counter in the same persisted operation, which is the
// only exit from the locked state.
func (s *Service) ToggleActive(actor Role, username string) (bool, error) {
	if actor != RoleAdmin {
		return false, internal.ErrAdminOnly
	}

	u, err := s.repo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, internal.ErrUserNotFound
		}
		return false, internal.NewInternalError("load user", err)
	}

	newActive := !u.IsActive
	if err := s.repo.SetActive(u.ID, newActive); err != nil {
		return false, internal.NewInternalError("toggle active status", err)
	}

	s.logger.Info("active status toggled", "username", u.Username, "is_active", newActive)
	return newActive, nil
}

// List returns every profile with its role name, for the employee list.
func (s *Service) List(actor Role) ([]*User, error) {
	if actor != RoleAdmin {
		return nil, internal.ErrAdminOnly
	}

	users, err := s.repo.List()
	if err != nil {
		return nil, internal.NewInternalError("list users", err)
	}
	return users, nil
}

// ResetRequests returns the pending self-service reset log.
func (s *Service) ResetRequests(actor Role) ([]ResetRequest, error) {
	if actor != RoleAdmin {
		return nil, internal.ErrAdminOnly
	}

	requests, err := s.repo.ResetRequests()
	if err != nil {
		return nil, internal.NewInternalError("list reset requests", err)
	}
	return requests, nil
}

// SalesHistory reads the joined sales log. Permission gating
// (VIEW_SALES_HISTORY) happens at the transport boundary against the
// principal's snapshot.
func (s *Service) SalesHistory() ([]SaleRecord, error) {
	records, err := s.repo.SalesHistory()
	if err != nil {
		s.logger.Error("sales history read failed", "error", err)
		return nil, internal.NewInternalError("load sales history", err)
	}
	return records, nil
}

func generatePassword(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.Split(uuid.NewString(), "-")[0])
}

func validationMessage(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", "; ")
}
