package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/shelfworks/readstack/readstack/database/models"
	"github.com/uptrace/bun"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	defaultConnTimeout = 5 * time.Second
	uniqueViolation    = "23505"
)

type DBConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	SSLMode      string `toml:"ssl_mode"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxLifetime) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database server unreachable: %w", err)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(buildConnString(cfg))))
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	return &DB{pool: pool, bunDB: bunDB}, nil
}

func buildConnString(cfg DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=5",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode,
	)
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func (db *DB) GetPool() *pgxpool.Pool {
	return db.pool
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

func (db *DB) ExecWithLog(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	start := time.Now()
	result, err := db.pool.Exec(ctx, sql, args...)
	duration := time.Since(start)

	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "exec"),
			slog.String("query", sql),
			slog.Duration("took", duration),
			slog.Any("error", err),
		)
		return result, err
	}

	slog.Debug("Query executed",
		slog.String("type", "db"),
		slog.String("operation", "exec"),
		slog.String("query", sql),
		slog.Duration("took", duration),
		slog.Int64("affected_rows", result.RowsAffected()),
	)
	return result, nil
}

func (db *DB) QueryWithLog(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	start := time.Now()
	rows, err := db.pool.Query(ctx, sql, args...)
	duration := time.Since(start)

	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "query"),
			slog.String("query", sql),
			slog.Duration("took", duration),
			slog.Any("error", err),
		)
		return rows, err
	}

	slog.Debug("Query executed",
		slog.String("type", "db"),
		slog.String("operation", "query"),
		slog.String("query", sql),
		slog.Duration("took", duration),
	)
	return rows, nil
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation, regardless of whether it came through pgx or the bun pgdriver.
// Duplicate-claim style races are detected through this and mapped to their
// idempotent outcomes.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var drvErr pgdriver.Error
	if errors.As(err, &drvErr) {
		return drvErr.Field('C') == uniqueViolation
	}
	return false
}

// InitializeSchema creates all tables, indexes and the integrity constraints
// the progression core relies on.
func (db *DB) InitializeSchema(ctx context.Context) error {
	tables := []interface{}{
		(*models.Account)(nil),
		(*models.LoginRecord)(nil),
		(*models.Quest)(nil),
		(*models.QuestProgress)(nil),
		(*models.Badge)(nil),
		(*models.BadgeAward)(nil),
		(*models.ShopItem)(nil),
		(*models.InventoryEntry)(nil),
		(*models.Notification)(nil),
		(*models.ActivityEntry)(nil),
		(*models.ReadingGoal)(nil),
		(*models.ReadingStatus)(nil),
	}

	for _, model := range tables {
		_, err := db.bunDB.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// Uniqueness is the concurrency mechanism here: a losing duplicate writer
	// fails at insert time instead of double-granting a reward.
	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_login_records_account_day ON login_records(account_id, day);",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_quest_progress_account_quest ON quest_progress(account_id, quest_id);",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_badge_awards_account_badge ON badge_awards(account_id, badge_id);",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_entries_account_item ON inventory_entries(account_id, item_id);",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_reading_goals_account_year ON reading_goals(account_id, year);",
		// Guards lazy rotation seeding against concurrent duplicate windows.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_quests_type_window ON quests(type, starts_at);",
		// At most one equipped entry per slot, enforced by the store itself.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_entries_equipped_slot ON inventory_entries(account_id, slot_type) WHERE equipped;",
		"CREATE INDEX IF NOT EXISTS idx_quests_window ON quests(starts_at, ends_at) WHERE is_active;",
		"CREATE INDEX IF NOT EXISTS idx_quest_progress_account ON quest_progress(account_id);",
		"CREATE INDEX IF NOT EXISTS idx_badge_awards_account ON badge_awards(account_id);",
		"CREATE INDEX IF NOT EXISTS idx_inventory_entries_account ON inventory_entries(account_id);",
		"CREATE INDEX IF NOT EXISTS idx_notifications_account_unread ON notifications(account_id) WHERE NOT read;",
		"CREATE INDEX IF NOT EXISTS idx_activity_entries_account ON activity_entries(account_id, created_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_reading_statuses_account_finished ON reading_statuses(account_id) WHERE status = 'finished';",
	}

	for _, idx := range indexes {
		if _, err := db.ExecWithLog(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	checks := []struct{ name, stmt string }{
		{"accounts_points_non_negative", "ALTER TABLE accounts ADD CONSTRAINT accounts_points_non_negative CHECK (points >= 0)"},
		{"accounts_streak_non_negative", "ALTER TABLE accounts ADD CONSTRAINT accounts_streak_non_negative CHECK (streak >= 0)"},
		{"shop_items_stock_non_negative", "ALTER TABLE shop_items ADD CONSTRAINT shop_items_stock_non_negative CHECK (stock IS NULL OR stock >= 0)"},
	}

	for _, c := range checks {
		stmt := fmt.Sprintf(`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint WHERE conname = '%s'
				) THEN
					%s;
				END IF;
			END $$;`, c.name, c.stmt)
		if _, err := db.ExecWithLog(ctx, stmt); err != nil {
			slog.Warn("Failed to add check constraint",
				slog.String("type", "db"),
				slog.String("constraint", c.name),
				slog.Any("error", err))
		}
	}

	if err := db.seedBadges(ctx); err != nil {
		return fmt.Errorf("failed to seed badges: %w", err)
	}

	return nil
}

// seedBadges makes sure the badge catalog the core grants from exists.
func (db *DB) seedBadges(ctx context.Context) error {
	badges := []*models.Badge{
		{Name: models.BadgeFirstLogin, Description: "Claimed your first daily login."},
		{Name: models.BadgeWeekStreak, Description: "Logged in seven days in a row."},
		{Name: models.BadgeMonthStreak, Description: "Logged in thirty days in a row."},
		{Name: models.BadgeFirstBook, Description: "Finished your first book."},
		{Name: models.BadgeQuestMaster, Description: "Claimed ten quest rewards."},
		{Name: models.BadgeShopRegular, Description: "Bought your first cosmetic."},
	}

	_, err := db.bunDB.NewInsert().
		Model(&badges).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx)
	return err
}
