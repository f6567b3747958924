package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ShopItem struct {
	bun.BaseModel `bun:"table:shop_items,alias:si"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description"`
	Price       int64     `bun:"price,notnull"`
	Rarity      int       `bun:"rarity,notnull,default:1"`
	SlotType    string    `bun:"slot_type,notnull"`
	Limited     bool      `bun:"limited,notnull,default:false"`
	Stock       *int      `bun:"stock"`
	Active      bool      `bun:"active,notnull,default:true"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

// Cosmetic slot categories. An account can have at most one equipped entry per
// slot type.
const (
	SlotTypeAvatarFrame  = "avatar_frame"
	SlotTypeProfileTheme = "profile_theme"
	SlotTypeNameColor    = "name_color"
	SlotTypeShelfSkin    = "shelf_skin"
)

// InventoryEntry records ownership of a shop item. SlotType is copied from the
// item at purchase time so the one-equipped-per-slot invariant can be enforced
// with a partial unique index on (account_id, slot_type) WHERE equipped.
type InventoryEntry struct {
	bun.BaseModel `bun:"table:inventory_entries,alias:ie"`

	ID         int64     `bun:"id,pk,autoincrement"`
	AccountID  int64     `bun:"account_id,notnull"`
	ItemID     int64     `bun:"item_id,notnull"`
	SlotType   string    `bun:"slot_type,notnull"`
	Equipped   bool      `bun:"equipped,notnull,default:false"`
	AcquiredAt time.Time `bun:"acquired_at,notnull"`

	// Relations
	Item *ShopItem `bun:"rel:has-one,join:item_id=id"`
}
