package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID        int64     `bun:"id,pk,autoincrement"`
	AccountID int64     `bun:"account_id,notnull"`
	Kind      string    `bun:"kind,notnull"`
	Body      string    `bun:"body,notnull"`
	Read      bool      `bun:"read,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

const (
	NotificationKindBadge = "badge_awarded"
)

// ActivityEntry is an append-only log line shown on the account's public feed.
type ActivityEntry struct {
	bun.BaseModel `bun:"table:activity_entries,alias:ae"`

	ID        int64     `bun:"id,pk,autoincrement"`
	AccountID int64     `bun:"account_id,notnull"`
	Action    string    `bun:"action,notnull"`
	Detail    string    `bun:"detail"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

const (
	ActivityBadgeAwarded = "badge_awarded"
)
