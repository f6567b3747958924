package services

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/shelfworks/readstack/readstack/database/models"
	"github.com/shelfworks/readstack/readstack/database/repositories"
)

type BadgeService struct {
	badgeRepo repositories.BadgeRepository
}

func NewBadgeService(badgeRepo repositories.BadgeRepository) *BadgeService {
	return &BadgeService{badgeRepo: badgeRepo}
}

// AwardBadge grants the named badge to the account. Granting is idempotent:
// the first call creates the award (plus its notification and activity
// records) and returns true, any later call is a no-op returning false.
func (s *BadgeService) AwardBadge(ctx context.Context, accountID int64, badgeName string) (bool, error) {
	badge, err := s.badgeRepo.GetByName(ctx, badgeName)
	if err != nil {
		if repositories.IsNotFound(err) {
			return false, ErrBadgeNotFound
		}
		return false, fmt.Errorf("failed to get badge: %w", err)
	}

	granted, err := s.badgeRepo.Award(ctx, accountID, badge)
	if err != nil {
		return false, fmt.Errorf("failed to award badge: %w", err)
	}

	if granted {
		slog.Info("Badge awarded",
			slog.Int64("account_id", accountID),
			slog.String("badge", badgeName))
	}
	return granted, nil
}

// Catalog returns every badge that can be earned.
func (s *BadgeService) Catalog(ctx context.Context) ([]*models.Badge, error) {
	badges, err := s.badgeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	return badges, nil
}

func (s *BadgeService) ListAwards(ctx context.Context, accountID int64) ([]*models.BadgeAward, error) {
	awards, err := s.badgeRepo.ListAwards(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badge awards: %w", err)
	}
	return awards, nil
}
