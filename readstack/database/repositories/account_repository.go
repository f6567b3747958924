package repositories

import (
	"context"
	"time"

	"log/slog"

	"github.com/shelfworks/readstack/readstack/database"
	"github.com/shelfworks/readstack/readstack/database/models"
	"github.com/uptrace/bun"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	Get(ctx context.Context, id int64) (*models.Account, error)
	HasLogin(ctx context.Context, accountID int64, day time.Time) (bool, error)

	// RecordDailyLogin atomically inserts the login record for the given day
	// and applies the streak counter and rewards to the account. A concurrent
	// duplicate claim surfaces as a ConflictError.
	RecordDailyLogin(ctx context.Context, accountID int64, day time.Time, streak int, xp, points int64) error

	TopByXP(ctx context.Context, limit int) ([]*models.Account, error)
}

type accountRepository struct {
	*BaseRepository
}

func NewAccountRepository(db *bun.DB) AccountRepository {
	return &accountRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()
	if account.Level == 0 {
		account.Level = 1
	}
	_, err := r.DB().NewInsert().Model(account).Exec(ctx)
	return r.HandleError("create", "account", err)
}

func (r *accountRepository) Get(ctx context.Context, id int64) (*models.Account, error) {
	account := new(models.Account)
	err := r.DB().NewSelect().
		Model(account).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "account", id, err)
	}
	return account, nil
}

func (r *accountRepository) HasLogin(ctx context.Context, accountID int64, day time.Time) (bool, error) {
	exists, err := r.DB().NewSelect().
		Model((*models.LoginRecord)(nil)).
		Where("account_id = ?", accountID).
		Where("day = ?", day).
		Exists(ctx)
	return exists, r.HandleError("has_login", "login record", err)
}

func (r *accountRepository) RecordDailyLogin(ctx context.Context, accountID int64, day time.Time, streak int, xp, points int64) error {
	err := r.Transaction(ctx, func(ctx context.Context, tx bun.Tx) error {
		record := &models.LoginRecord{
			AccountID: accountID,
			Day:       day,
		}
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return err
		}

		res, err := tx.NewUpdate().
			Model((*models.Account)(nil)).
			Set("streak = ?", streak).
			Set("xp = xp + ?", xp).
			Set("level = 1 + (xp + ?) / 1000", xp).
			Set("points = points + ?", points).
			Set("last_seen_day = ?", day).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", accountID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return &NotFoundError{Entity: "account", ID: accountID}
		}
		return nil
	})

	if err != nil {
		if database.IsUniqueViolation(err) {
			return &ConflictError{Entity: "login record", Field: "day", Value: day.Format("2006-01-02")}
		}
		if IsNotFound(err) {
			return err
		}
		slog.Error("Failed to record daily login",
			slog.String("type", "db"),
			slog.Int64("account_id", accountID),
			slog.Any("error", err))
		return r.HandleError("record_daily_login", "login record", err)
	}
	return nil
}

func (r *accountRepository) TopByXP(ctx context.Context, limit int) ([]*models.Account, error) {
	var accounts []*models.Account
	err := r.DB().NewSelect().
		Model(&accounts).
		Order("xp DESC", "id ASC").
		Limit(limit).
		Scan(ctx)
	return accounts, r.HandleError("top_by_xp", "account", err)
}
