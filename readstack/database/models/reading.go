package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ReadingGoal is a per-year target of finished books. The current count is not
// stored; it is derived from the catalog subsystem's reading-status records.
type ReadingGoal struct {
	bun.BaseModel `bun:"table:reading_goals,alias:rg"`

	ID        int64     `bun:"id,pk,autoincrement"`
	AccountID int64     `bun:"account_id,notnull"`
	Year      int       `bun:"year,notnull"`
	Target    int       `bun:"target,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// ReadingStatus is owned by the catalog subsystem; the progression core only
// ever reads it (finished counts for goals and the books_completed leaderboard).
type ReadingStatus struct {
	bun.BaseModel `bun:"table:reading_statuses,alias:rs"`

	ID         int64      `bun:"id,pk,autoincrement"`
	AccountID  int64      `bun:"account_id,notnull"`
	BookID     int64      `bun:"book_id,notnull"`
	Status     string     `bun:"status,notnull"`
	FinishedAt *time.Time `bun:"finished_at"`
}

const (
	ReadingStatusFinished = "finished"
)
