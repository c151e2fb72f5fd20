package auth

import (
	"github.com/motorlot/dealerd/internal/permission"
	"github.com/motorlot/dealerd/internal/user"
)

// Principal is the authenticated identity handed back by a successful
// login: the role, the account flags and a point-in-time permission
// snapshot. The snapshot is not live; after an administrator edits
// permissions the user must log in again to observe the change.
type Principal struct {
	UserID             int64          `json:"user_id"`
	Username           string         `json:"username"`
	Role               user.Role      `json:"-"`
	RoleName           string         `json:"role"`
	Name               string         `json:"name"`
	Active             bool           `json:"active"`
	MustChangePassword bool           `json:"must_change_password"`
	Permissions        permission.Set `json:"-"`
	PermissionMap      map[string]bool `json:"permissions"`
}

func (p *Principal) IsAdmin() bool {
	return p.Role == user.RoleAdmin
}

func (p *Principal) HasPermission(name string) bool {
	return p.Permissions.Has(name)
}

// Repository is the store surface the login state machine needs. All
// reads hit the active store on every call; nothing is cached across
// calls, so a sandbox switch is observed immediately.
type Repository interface {
	GetByUsername(username string) (*user.User, error)
	FailedAttempts(userID int64) (int, error)
	IncrementFailedAttempts(userID int64) error
	ResetFailedAttempts(userID int64) error
	Deactivate(userID int64) error
	UpdatePassword(userID int64, passwordHash string, clearTempFlag bool) error
	InsertResetRequest(username, requestDate string) error
}
