package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Badge struct {
	bun.BaseModel `bun:"table:badges,alias:b"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,notnull,unique"`
	Description string    `bun:"description"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Badge names granted by the progression core itself.
const (
	BadgeFirstLogin   = "first_login"
	BadgeWeekStreak   = "week_streak"
	BadgeMonthStreak  = "month_streak"
	BadgeFirstBook    = "first_book"
	BadgeQuestMaster  = "quest_master"
	BadgeShopRegular  = "shop_regular"
)

// BadgeAward is immutable once created; (account_id, badge_id) is unique so an
// account can hold a badge at most once.
type BadgeAward struct {
	bun.BaseModel `bun:"table:badge_awards,alias:ba"`

	ID        int64     `bun:"id,pk,autoincrement"`
	AccountID int64     `bun:"account_id,notnull"`
	BadgeID   int64     `bun:"badge_id,notnull"`
	AwardedAt time.Time `bun:"awarded_at,notnull"`

	// Relations
	Badge *Badge `bun:"rel:has-one,join:badge_id=id"`
}
