package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Quest struct {
	bun.BaseModel `bun:"table:quests,alias:q"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description"`
	Type        string    `bun:"type,notnull"`
	Target      int       `bun:"target,notnull"`
	XPReward    int64     `bun:"xp_reward,notnull,default:0"`
	StartsAt    time.Time `bun:"starts_at,notnull"`
	EndsAt      time.Time `bun:"ends_at,notnull"`
	IsActive    bool      `bun:"is_active,notnull,default:true"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

// Metric types a quest can track.
const (
	QuestTypeLogin        = "daily_logins"
	QuestTypeBookFinished = "books_finished"
	QuestTypePagesRead    = "pages_read"
	QuestTypeReviewPosted = "reviews_posted"
)

type QuestProgress struct {
	bun.BaseModel `bun:"table:quest_progress,alias:qp"`

	ID          int64      `bun:"id,pk,autoincrement"`
	AccountID   int64      `bun:"account_id,notnull"`
	QuestID     int64      `bun:"quest_id,notnull"`
	Progress    int        `bun:"progress,notnull,default:0"`
	Completed   bool       `bun:"completed,notnull,default:false"`
	Claimed     bool       `bun:"claimed,notnull,default:false"`
	CompletedAt *time.Time `bun:"completed_at"`
	ClaimedAt   *time.Time `bun:"claimed_at"`
	CreatedAt   time.Time  `bun:"created_at,notnull"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull"`

	// Relations
	Quest *Quest `bun:"rel:has-one,join:quest_id=id"`
}
