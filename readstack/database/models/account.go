package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Username string `bun:"username,notnull"`

	Points int64 `bun:"points,notnull,default:0"`
	XP     int64 `bun:"xp,notnull,default:0"`
	Level  int   `bun:"level,notnull,default:1"`
	Streak int   `bun:"streak,notnull,default:0"`

	LastSeenDay time.Time `bun:"last_seen_day,nullzero"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// LoginRecord marks one claimed daily login. The (account_id, day) pair is
// unique so a day can only ever be claimed once.
type LoginRecord struct {
	bun.BaseModel `bun:"table:login_records,alias:lr"`

	ID        int64     `bun:"id,pk,autoincrement"`
	AccountID int64     `bun:"account_id,notnull"`
	Day       time.Time `bun:"day,notnull,type:date"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
