package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"log/slog"

	"github.com/shelfworks/readstack/readstack/database"
	"github.com/shelfworks/readstack/readstack/database/models"
	"github.com/uptrace/bun"
)

type ShopRepository interface {
	GetItem(ctx context.Context, itemID int64) (*models.ShopItem, error)
	ListItems(ctx context.Context, onlyActive bool) ([]*models.ShopItem, error)
	OwnedEntry(ctx context.Context, accountID, itemID int64) (*models.InventoryEntry, error)
	Inventory(ctx context.Context, accountID int64) ([]*models.InventoryEntry, error)

	// Purchase runs the whole exchange as one transaction: debit the account,
	// decrement limited stock, create the inventory entry. Any guard that
	// fails rolls the entire exchange back.
	Purchase(ctx context.Context, accountID int64, item *models.ShopItem) error

	// SetEquipped clears the equipped flag on every entry of the slot and, if
	// itemID is non-nil, sets it on the owned entry for that item.
	SetEquipped(ctx context.Context, accountID int64, slotType string, itemID *int64) error
}

type shopRepository struct {
	*BaseRepository
}

func NewShopRepository(db *bun.DB) ShopRepository {
	return &shopRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *shopRepository) GetItem(ctx context.Context, itemID int64) (*models.ShopItem, error) {
	item := new(models.ShopItem)
	err := r.DB().NewSelect().
		Model(item).
		Where("id = ?", itemID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Entity: "shop item", ID: itemID}
		}
		return nil, r.HandleErrorWithID("get_item", "shop item", itemID, err)
	}
	return item, nil
}

func (r *shopRepository) ListItems(ctx context.Context, onlyActive bool) ([]*models.ShopItem, error) {
	var items []*models.ShopItem
	query := r.DB().NewSelect().
		Model(&items).
		Order("rarity DESC", "price ASC", "id ASC")
	if onlyActive {
		query = query.Where("active")
	}
	err := query.Scan(ctx)
	return items, r.HandleError("list_items", "shop item", err)
}

func (r *shopRepository) OwnedEntry(ctx context.Context, accountID, itemID int64) (*models.InventoryEntry, error) {
	entry := new(models.InventoryEntry)
	err := r.DB().NewSelect().
		Model(entry).
		Where("account_id = ?", accountID).
		Where("item_id = ?", itemID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, r.HandleError("owned_entry", "inventory entry", err)
	}
	return entry, nil
}

func (r *shopRepository) Inventory(ctx context.Context, accountID int64) ([]*models.InventoryEntry, error) {
	var entries []*models.InventoryEntry
	err := r.DB().NewSelect().
		Model(&entries).
		Relation("Item").
		Where("ie.account_id = ?", accountID).
		Order("ie.acquired_at DESC").
		Scan(ctx)
	return entries, r.HandleError("inventory", "inventory entry", err)
}

func (r *shopRepository) Purchase(ctx context.Context, accountID int64, item *models.ShopItem) error {
	err := r.Transaction(ctx, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()

		// The points guard doubles as the non-negative balance invariant: a
		// concurrent spend that would overdraw affects zero rows.
		res, err := tx.NewUpdate().
			Model((*models.Account)(nil)).
			Set("points = points - ?", item.Price).
			Set("updated_at = ?", now).
			Where("id = ?", accountID).
			Where("points >= ?", item.Price).
			Exec(ctx)
		if err != nil {
			return err
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return &InsufficientError{Resource: "points"}
		}

		if item.Limited {
			res, err := tx.NewUpdate().
				Model((*models.ShopItem)(nil)).
				Set("stock = stock - 1").
				Set("updated_at = ?", now).
				Where("id = ?", item.ID).
				Where("stock > 0").
				Exec(ctx)
			if err != nil {
				return err
			}
			if rows, _ := res.RowsAffected(); rows == 0 {
				return &InsufficientError{Resource: "stock"}
			}
		}

		entry := &models.InventoryEntry{
			AccountID:  accountID,
			ItemID:     item.ID,
			SlotType:   item.SlotType,
			AcquiredAt: now,
		}
		_, err = tx.NewInsert().Model(entry).Exec(ctx)
		return err
	})

	if err != nil {
		if database.IsUniqueViolation(err) {
			return &ConflictError{Entity: "inventory entry", Field: "item_id", Value: item.ID}
		}
		if IsInsufficient(err) {
			return err
		}
		slog.Error("Failed to purchase item",
			slog.String("type", "db"),
			slog.Int64("account_id", accountID),
			slog.Int64("item_id", item.ID),
			slog.Any("error", err))
		return r.HandleError("purchase", "inventory entry", err)
	}
	return nil
}

func (r *shopRepository) SetEquipped(ctx context.Context, accountID int64, slotType string, itemID *int64) error {
	err := r.Transaction(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*models.InventoryEntry)(nil)).
			Set("equipped = FALSE").
			Where("account_id = ?", accountID).
			Where("slot_type = ?", slotType).
			Where("equipped").
			Exec(ctx)
		if err != nil {
			return err
		}

		if itemID == nil {
			return nil
		}

		res, err := tx.NewUpdate().
			Model((*models.InventoryEntry)(nil)).
			Set("equipped = TRUE").
			Where("account_id = ?", accountID).
			Where("item_id = ?", *itemID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return &NotFoundError{Entity: "inventory entry", ID: *itemID}
		}
		return nil
	})

	if err != nil {
		if IsNotFound(err) {
			return err
		}
		return r.HandleError("set_equipped", "inventory entry", err)
	}
	return nil
}
