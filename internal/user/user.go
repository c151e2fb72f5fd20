package user

import "fmt"

// Role mirrors the roles table, seeded with exactly these three rows at
// ids 1/2/3. Behavior differences between roles are data-driven through
// the permission map; the only type-level distinction is the handful of
// Admin-only operations, gated by an explicit role check at the
// operation boundary.
type Role int64

const (
	RoleAdmin       Role = 1
	RoleManager     Role = 2
	RoleSalesperson Role = 3
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleManager:
		return "Manager"
	case RoleSalesperson:
		return "Salesperson"
	default:
		return fmt.Sprintf("Role(%d)", int64(r))
	}
}

// RoleFromName resolves a role name as stored in roles.role_name.
func RoleFromName(name string) (Role, error) {
	switch name {
	case "Admin":
		return RoleAdmin, nil
	case "Manager":
		return RoleManager, nil
	case "Salesperson":
		return RoleSalesperson, nil
	default:
		return 0, fmt.Errorf("unknown role %q", name)
	}
}

// User is the identity plus security record persisted in the users
// table. Users are never physically deleted; deactivation is the only
// retirement mechanism.
type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	PasswordHash   string `json:"-"`
	Role           Role   `json:"-"`
	RoleName       string `json:"role"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	IsActive       bool   `json:"is_active"`
	IsTempPassword bool   `json:"is_temp_password"`
	FailedAttempts int    `json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ResetRequest is one row of the append-only self-service password
// reset log, consumed manually by an administrator.
type ResetRequest struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	RequestDate string `json:"request_date"`
}

// SaleRecord is a sales-history row joined across vehicles and users.
type SaleRecord struct {
	SaleID       int64   `json:"sale_id"`
	Vehicle      string  `json:"vehicle"`
	Price        float64 `json:"price"`
	Salesperson  string  `json:"salesperson"`
	BuyerName    string  `json:"buyer_name"`
	BuyerContact string  `json:"buyer_contact"`
	SaleDate     string  `json:"sale_date"`
}
