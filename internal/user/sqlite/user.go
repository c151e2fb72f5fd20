package sqlite

import (
	"fmt"

	"github.com/motorlot/dealerd/internal/store"
	"github.com/motorlot/dealerd/internal/user"
)

type Repository struct {
	db *store.Handle
}

func NewRepository(db *store.Handle) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByUsername(username string) (*user.User, error) {
	row := r.db.QueryRow(`
		SELECT u.user_id, u.username, u.password, u.role_id, r.role_name,
		       u.name, COALESCE(u.email, ''), COALESCE(u.phone, ''),
		       u.is_active, u.is_temp_password, u.failed_attempts
		FROM users u
		JOIN roles r ON u.role_id = r.role_id
		WHERE LOWER(u.username) = LOWER(?)`, username)

	var u user.User
	var roleID int64
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &roleID, &u.RoleName,
		&u.Name, &u.Email, &u.Phone, &u.IsActive, &u.IsTempPassword, &u.FailedAttempts)
	if err != nil {
		return nil, err
	}
	u.Role = user.Role(roleID)
	return &u, nil
}

func (r *Repository) Insert(u *user.User) (int64, error) {
	return r.db.InsertReturningID(`
		INSERT INTO users (username, password, role_id, name, email, phone, is_active, is_temp_password, failed_attempts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		u.Username, u.PasswordHash, int64(u.Role), u.Name, u.Email, u.Phone, u.IsActive, u.IsTempPassword)
}

func (r *Repository) UpdatePassword(userID int64, passwordHash string) error {
	return r.db.Exec(`UPDATE users SET password = ? WHERE user_id = ?`, passwordHash, userID)
}

// SetActive flips the flag and, on reactivation, clears the lockout
// counter in the same statement so no interleaved state with
// is_active=1 and a maxed counter can ever be observed.
func (r *Repository) SetActive(userID int64, active bool) error {
	if active {
		return r.db.Exec(`UPDATE users SET is_active = 1, failed_attempts = 0 WHERE user_id = ?`, userID)
	}
	return r.db.Exec(`UPDATE users SET is_active = 0 WHERE user_id = ?`, userID)
}

func (r *Repository) List() ([]*user.User, error) {
	rows, err := r.db.Query(`
		SELECT u.user_id, u.username, u.role_id, r.role_name,
		       u.name, COALESCE(u.email, ''), COALESCE(u.phone, ''),
		       u.is_active, u.is_temp_password
		FROM users u
		JOIN roles r ON u.role_id = r.role_id
		ORDER BY u.user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		var u user.User
		var roleID int64
		err := rows.Scan(&u.ID, &u.Username, &roleID, &u.RoleName,
			&u.Name, &u.Email, &u.Phone, &u.IsActive, &u.IsTempPassword)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		u.Role = user.Role(roleID)
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *Repository) ResetRequests() ([]user.ResetRequest, error) {
	rows, err := r.db.Query(`SELECT id, username, request_date FROM password_reset_requests ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []user.ResetRequest
	for rows.Next() {
		var req user.ResetRequest
		if err := rows.Scan(&req.ID, &req.Username, &req.RequestDate); err != nil {
			return nil, fmt.Errorf("scan reset request row: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *Repository) SalesHistory() ([]user.SaleRecord, error) {
	rows, err := r.db.Query(`
		SELECT s.sale_id, v.make || ' ' || v.model, v.price, u.name,
		       COALESCE(s.buyer_name, ''), COALESCE(s.buyer_contact, ''), s.sale_date
		FROM sales s
		JOIN vehicles v ON s.vehicle_id = v.vehicle_id
		JOIN users u ON s.user_id = u.user_id
		ORDER BY s.sale_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []user.SaleRecord
	for rows.Next() {
		var rec user.SaleRecord
		err := rows.Scan(&rec.SaleID, &rec.Vehicle, &rec.Price, &rec.Salesperson,
			&rec.BuyerName, &rec.BuyerContact, &rec.SaleDate)
		if err != nil {
			return nil, fmt.Errorf("scan sale row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
