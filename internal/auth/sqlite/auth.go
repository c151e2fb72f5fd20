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

// GetByUsername loads the full security record, matching the username
// case-insensitively. sql.ErrNoRows propagates untouched so the service
// can distinguish not-found from a store failure.
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

func (r *Repository) FailedAttempts(userID int64) (int, error) {
	var count int
	row := r.db.QueryRow(`SELECT failed_attempts FROM users WHERE user_id = ?`, userID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("read failed_attempts for user %d: %w", userID, err)
	}
	return count, nil
}

func (r *Repository) IncrementFailedAttempts(userID int64) error {
	return r.db.Exec(`UPDATE users SET failed_attempts = failed_attempts + 1 WHERE user_id = ?`, userID)
}

func (r *Repository) ResetFailedAttempts(userID int64) error {
	return r.db.Exec(`UPDATE users SET failed_attempts = 0 WHERE user_id = ?`, userID)
}

func (r *Repository) Deactivate(userID int64) error {
	return r.db.Exec(`UPDATE users SET is_active = 0 WHERE user_id = ?`, userID)
}

func (r *Repository) UpdatePassword(userID int64, passwordHash string, clearTempFlag bool) error {
	if clearTempFlag {
		return r.db.Exec(`UPDATE users SET password = ?, is_temp_password = 0 WHERE user_id = ?`, passwordHash, userID)
	}
	return r.db.Exec(`UPDATE users SET password = ? WHERE user_id = ?`, passwordHash, userID)
}

func (r *Repository) InsertResetRequest(username, requestDate string) error {
	return r.db.Exec(`INSERT INTO password_reset_requests (username, request_date) VALUES (?, ?)`,
		username, requestDate)
}
