package repositories

import (
	"context"
	"time"

	"log/slog"

	"github.com/shelfworks/readstack/readstack/database/models"
	"github.com/uptrace/bun"
)

type QuestRepository interface {
	// Quest windows
	ActiveQuests(ctx context.Context, now time.Time) ([]*models.Quest, error)
	// SeedRotation inserts a quest rotation; windows that already exist are
	// left untouched, so concurrent seeders cannot create duplicates.
	SeedRotation(ctx context.Context, quests []*models.Quest) error
	Get(ctx context.Context, questID int64) (*models.Quest, error)

	// Account progress
	ProgressFor(ctx context.Context, accountID int64, questIDs []int64) ([]*models.QuestProgress, error)
	// AddProgress upserts the progress row and applies the completion latch in
	// a single statement. Rows that are already completed are not touched.
	AddProgress(ctx context.Context, accountID int64, quest *models.Quest, amount int) error
	// ClaimReward marks the progress row claimed and credits the XP reward
	// atomically. Returns a ConflictError when the row is missing, not yet
	// completed, or already claimed.
	ClaimReward(ctx context.Context, accountID int64, quest *models.Quest) error
	CountClaimed(ctx context.Context, accountID int64) (int, error)
}

type questRepository struct {
	*BaseRepository
}

func NewQuestRepository(db *bun.DB) QuestRepository {
	return &questRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *questRepository) ActiveQuests(ctx context.Context, now time.Time) ([]*models.Quest, error) {
	var quests []*models.Quest
	err := r.DB().NewSelect().
		Model(&quests).
		Where("starts_at <= ?", now).
		Where("ends_at >= ?", now).
		Where("is_active").
		Order("type ASC", "id ASC").
		Scan(ctx)
	return quests, r.HandleError("active_quests", "quest", err)
}

func (r *questRepository) SeedRotation(ctx context.Context, quests []*models.Quest) error {
	if len(quests) == 0 {
		return nil
	}
	now := time.Now()
	for _, q := range quests {
		q.CreatedAt = now
	}

	_, err := r.DB().NewInsert().
		Model(&quests).
		On("CONFLICT (type, starts_at) DO NOTHING").
		Exec(ctx)
	if err != nil {
		slog.Error("Failed to seed quest rotation",
			slog.String("type", "db"),
			slog.Int("count", len(quests)),
			slog.Any("error", err))
		return r.HandleError("seed_rotation", "quest", err)
	}
	return nil
}

func (r *questRepository) Get(ctx context.Context, questID int64) (*models.Quest, error) {
	quest := new(models.Quest)
	err := r.DB().NewSelect().
		Model(quest).
		Where("id = ?", questID).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "quest", questID, err)
	}
	return quest, nil
}

func (r *questRepository) ProgressFor(ctx context.Context, accountID int64, questIDs []int64) ([]*models.QuestProgress, error) {
	if len(questIDs) == 0 {
		return nil, nil
	}
	var progress []*models.QuestProgress
	err := r.DB().NewSelect().
		Model(&progress).
		Where("account_id = ?", accountID).
		Where("quest_id IN (?)", bun.In(questIDs)).
		Scan(ctx)
	return progress, r.HandleError("progress_for", "quest progress", err)
}

func (r *questRepository) AddProgress(ctx context.Context, accountID int64, quest *models.Quest, amount int) error {
	now := time.Now()
	progress := &models.QuestProgress{
		AccountID: accountID,
		QuestID:   quest.ID,
		Progress:  amount,
		Completed: amount >= quest.Target,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if progress.Completed {
		progress.CompletedAt = &now
	}

	// completed is a one-way latch: once set the row is frozen for progress
	// purposes, even if a later write would compute a lower value.
	_, err := r.DB().NewInsert().
		Model(progress).
		On("CONFLICT (account_id, quest_id) DO UPDATE").
		Set("progress = CASE WHEN qp.completed THEN qp.progress ELSE qp.progress + EXCLUDED.progress END").
		Set("completed = qp.completed OR (qp.progress + EXCLUDED.progress >= ?)", quest.Target).
		Set("completed_at = CASE WHEN NOT qp.completed AND qp.progress + EXCLUDED.progress >= ? THEN EXCLUDED.updated_at ELSE qp.completed_at END", quest.Target).
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return r.HandleError("add_progress", "quest progress", err)
}

func (r *questRepository) ClaimReward(ctx context.Context, accountID int64, quest *models.Quest) error {
	err := r.Transaction(ctx, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()
		res, err := tx.NewUpdate().
			Model((*models.QuestProgress)(nil)).
			Set("claimed = TRUE").
			Set("claimed_at = ?", now).
			Set("updated_at = ?", now).
			Where("account_id = ?", accountID).
			Where("quest_id = ?", quest.ID).
			Where("completed").
			Where("NOT claimed").
			Exec(ctx)
		if err != nil {
			return err
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return &ConflictError{Entity: "quest progress", Field: "quest_id", Value: quest.ID}
		}

		_, err = tx.NewUpdate().
			Model((*models.Account)(nil)).
			Set("xp = xp + ?", quest.XPReward).
			Set("level = 1 + (xp + ?) / 1000", quest.XPReward).
			Set("updated_at = ?", now).
			Where("id = ?", accountID).
			Exec(ctx)
		return err
	})

	if err != nil {
		if IsConflict(err) {
			return err
		}
		return r.HandleError("claim_reward", "quest progress", err)
	}
	return nil
}

func (r *questRepository) CountClaimed(ctx context.Context, accountID int64) (int, error) {
	count, err := r.DB().NewSelect().
		Model((*models.QuestProgress)(nil)).
		Where("account_id = ?", accountID).
		Where("claimed").
		Count(ctx)
	return count, r.HandleError("count_claimed", "quest progress", err)
}
