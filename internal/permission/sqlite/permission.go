package sqlite

import (
	"fmt"

	"github.com/motorlot/dealerd/internal/store"
	"gorm.io/gorm"
)

type Repository struct {
	db *store.Handle
}

func NewRepository(db *store.Handle) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetGrants(userID int64) (map[string]bool, error) {
	rows, err := r.db.Query(`
		SELECT p.permission_name, up.is_enabled
		FROM user_permissions up
		JOIN permissions p ON up.permission_id = p.permission_id
		WHERE up.user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grants := make(map[string]bool)
	for rows.Next() {
		var name string
		var enabled bool
		if err := rows.Scan(&name, &enabled); err != nil {
			return nil, fmt.Errorf("scan permission row: %w", err)
		}
		grants[name] = enabled
	}
	return grants, rows.Err()
}

// ReplaceGrants clears all rows for the user and re-inserts one row per
// enabled permission inside one transaction, so a failure partway leaves
// the previous set intact rather than a half-replaced one.
func (r *Repository) ReplaceGrants(userID int64, enabled []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM user_permissions WHERE user_id = ?`, userID).Error; err != nil {
			return fmt.Errorf("clear permissions: %w", err)
		}

		for _, name := range enabled {
			var permissionID int64
			row := tx.Raw(`SELECT permission_id FROM permissions WHERE permission_name = ?`, name).Row()
			if err := row.Scan(&permissionID); err != nil {
				return fmt.Errorf("permission %s not found in store: %w", name, err)
			}

			err := tx.Exec(`INSERT INTO user_permissions (user_id, permission_id, is_enabled) VALUES (?, ?, 1)`,
				userID, permissionID).Error
			if err != nil {
				return fmt.Errorf("grant %s: %w", name, err)
			}
		}
		return nil
	})
}
