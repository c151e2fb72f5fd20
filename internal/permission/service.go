package permission

import (
	"fmt"
	"log/slog"

	"github.com/motorlot/dealerd/internal"
)

type Repository interface {
	GetGrants(userID int64) (map[string]bool, error)
	ReplaceGrants(userID int64, enabled []string) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Load reads the user's stored grants into a snapshot. Permissions with
// no stored row resolve to defaultVal.
func (s *Service) Load(userID int64, defaultVal bool) (Set, error) {
	grants, err := s.repo.GetGrants(userID)
	if err != nil {
		return Set{}, fmt.Errorf("load permissions for user %d: %w", userID, err)
	}
	return NewSet(grants, defaultVal), nil
}

// Replace swaps the user's entire permission set for the desired one:
// every stored row is cleared, then one row per enabled permission is
// inserted, as a single all-or-nothing unit.
func (s *Service) Replace(userID int64, desired map[string]bool) error {
	var enabled []string
	for name, on := range desired {
		if !Known(name) {
			return internal.NewValidationError(fmt.Sprintf("unknown permission %q", name), internal.ErrCodeUnknownPermission)
		}
		if on {
			enabled = append(enabled, name)
		}
	}

	if err := s.repo.ReplaceGrants(userID, enabled); err != nil {
		return fmt.Errorf("replace permissions for user %d: %w", userID, err)
	}

	s.logger.Info("permissions replaced", "user_id", userID, "enabled", enabled)
	return nil
}
