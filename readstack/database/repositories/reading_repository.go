package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shelfworks/readstack/readstack/database/models"
	"github.com/uptrace/bun"
)

// ReadingStatusReader is the read-only view onto the catalog subsystem's
// reading-status records. The progression core never writes through it.
type ReadingStatusReader interface {
	CountFinishedInYear(ctx context.Context, accountID int64, year int) (int, error)
	// TopFinishers returns per-account finished-book counts, highest first,
	// ties broken by ascending account id.
	TopFinishers(ctx context.Context, limit int) ([]FinishedCount, error)
}

type FinishedCount struct {
	AccountID int64 `bun:"account_id"`
	Count     int64 `bun:"count"`
}

type ReadingRepository interface {
	ReadingStatusReader

	UpsertGoal(ctx context.Context, accountID int64, year, target int) (*models.ReadingGoal, error)
	GetGoal(ctx context.Context, accountID int64, year int) (*models.ReadingGoal, error)
}

type readingRepository struct {
	*BaseRepository
}

func NewReadingRepository(db *bun.DB) ReadingRepository {
	return &readingRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *readingRepository) CountFinishedInYear(ctx context.Context, accountID int64, year int) (int, error) {
	count, err := r.DB().NewSelect().
		Model((*models.ReadingStatus)(nil)).
		Where("account_id = ?", accountID).
		Where("status = ?", models.ReadingStatusFinished).
		Where("date_part('year', finished_at) = ?", year).
		Count(ctx)
	return count, r.HandleError("count_finished_in_year", "reading status", err)
}

func (r *readingRepository) TopFinishers(ctx context.Context, limit int) ([]FinishedCount, error) {
	var counts []FinishedCount
	err := r.DB().NewSelect().
		Model((*models.ReadingStatus)(nil)).
		ColumnExpr("account_id").
		ColumnExpr("count(*) AS count").
		Where("status = ?", models.ReadingStatusFinished).
		Group("account_id").
		OrderExpr("count DESC, account_id ASC").
		Limit(limit).
		Scan(ctx, &counts)
	return counts, r.HandleError("top_finishers", "reading status", err)
}

func (r *readingRepository) UpsertGoal(ctx context.Context, accountID int64, year, target int) (*models.ReadingGoal, error) {
	now := time.Now()
	goal := &models.ReadingGoal{
		AccountID: accountID,
		Year:      year,
		Target:    target,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.DB().NewInsert().
		Model(goal).
		On("CONFLICT (account_id, year) DO UPDATE").
		Set("target = EXCLUDED.target").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, r.HandleError("upsert_goal", "reading goal", err)
	}
	return goal, nil
}

func (r *readingRepository) GetGoal(ctx context.Context, accountID int64, year int) (*models.ReadingGoal, error) {
	goal := new(models.ReadingGoal)
	err := r.DB().NewSelect().
		Model(goal).
		Where("account_id = ?", accountID).
		Where("year = ?", year).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Entity: "reading goal", ID: year}
		}
		return nil, r.HandleError("get_goal", "reading goal", err)
	}
	return goal, nil
}
