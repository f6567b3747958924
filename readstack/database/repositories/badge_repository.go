package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shelfworks/readstack/readstack/database"
	"github.com/shelfworks/readstack/readstack/database/models"
	"github.com/uptrace/bun"
)

type BadgeRepository interface {
	List(ctx context.Context) ([]*models.Badge, error)
	GetByName(ctx context.Context, name string) (*models.Badge, error)
	// Award creates the badge award together with its notification and
	// activity-log records in one transaction. Returns false without error if
	// the account already holds the badge.
	Award(ctx context.Context, accountID int64, badge *models.Badge) (bool, error)
	ListAwards(ctx context.Context, accountID int64) ([]*models.BadgeAward, error)
}

type badgeRepository struct {
	*BaseRepository
}

func NewBadgeRepository(db *bun.DB) BadgeRepository {
	return &badgeRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *badgeRepository) List(ctx context.Context) ([]*models.Badge, error) {
	var badges []*models.Badge
	err := r.DB().NewSelect().
		Model(&badges).
		Order("id ASC").
		Scan(ctx)
	return badges, r.HandleError("list", "badge", err)
}

func (r *badgeRepository) GetByName(ctx context.Context, name string) (*models.Badge, error) {
	badge := new(models.Badge)
	err := r.DB().NewSelect().
		Model(badge).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Entity: "badge", ID: name}
		}
		return nil, r.HandleErrorWithID("get_by_name", "badge", name, err)
	}
	return badge, nil
}

func (r *badgeRepository) Award(ctx context.Context, accountID int64, badge *models.Badge) (bool, error) {
	err := r.Transaction(ctx, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()

		award := &models.BadgeAward{
			AccountID: accountID,
			BadgeID:   badge.ID,
			AwardedAt: now,
		}
		if _, err := tx.NewInsert().Model(award).Exec(ctx); err != nil {
			return err
		}

		notification := &models.Notification{
			AccountID: accountID,
			Kind:      models.NotificationKindBadge,
			Body:      fmt.Sprintf("You earned the %q badge!", badge.Name),
			CreatedAt: now,
		}
		if _, err := tx.NewInsert().Model(notification).Exec(ctx); err != nil {
			return err
		}

		activity := &models.ActivityEntry{
			AccountID: accountID,
			Action:    models.ActivityBadgeAwarded,
			Detail:    badge.Name,
			CreatedAt: now,
		}
		_, err := tx.NewInsert().Model(activity).Exec(ctx)
		return err
	})

	if err != nil {
		if database.IsUniqueViolation(err) {
			// Already awarded, idempotent no-op.
			return false, nil
		}
		return false, r.HandleError("award", "badge award", err)
	}
	return true, nil
}

func (r *badgeRepository) ListAwards(ctx context.Context, accountID int64) ([]*models.BadgeAward, error) {
	var awards []*models.BadgeAward
	err := r.DB().NewSelect().
		Model(&awards).
		Relation("Badge").
		Where("ba.account_id = ?", accountID).
		Order("ba.awarded_at DESC").
		Scan(ctx)
	return awards, r.HandleError("list_awards", "badge award", err)
}
