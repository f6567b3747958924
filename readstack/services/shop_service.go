package services

import (
	"context"
	"errors"
	"fmt"

	"log/slog"

	"github.com/sahilm/fuzzy"
	"github.com/shelfworks/readstack/readstack/database/models"
	"github.com/shelfworks/readstack/readstack/database/repositories"
)

// EquipRequest selects what to equip. A nil ItemID unequips every entry of
// SlotType and leaves none equipped; otherwise the slot affected is the slot
// type of the target item and SlotType is ignored.
type EquipRequest struct {
	ItemID   *int64
	SlotType string
}

type ShopService struct {
	shopRepo repositories.ShopRepository
	tracker  *Tracker
}

func NewShopService(shopRepo repositories.ShopRepository, tracker *Tracker) *ShopService {
	return &ShopService{
		shopRepo: shopRepo,
		tracker:  tracker,
	}
}

// Purchase exchanges points for a shop item. The debit, the stock decrement
// and the inventory insert land together or not at all.
func (s *ShopService) Purchase(ctx context.Context, accountID, itemID int64) error {
	item, err := s.shopRepo.GetItem(ctx, itemID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to get shop item: %w", err)
	}
	if !item.Active {
		return ErrItemInactive
	}
	if item.Limited && (item.Stock == nil || *item.Stock <= 0) {
		return ErrOutOfStock
	}

	owned, err := s.shopRepo.OwnedEntry(ctx, accountID, itemID)
	if err != nil {
		return fmt.Errorf("failed to check inventory: %w", err)
	}
	if owned != nil {
		return ErrAlreadyOwned
	}

	err = s.shopRepo.Purchase(ctx, accountID, item)
	if err != nil {
		var ie *repositories.InsufficientError
		switch {
		case repositories.IsConflict(err):
			return ErrAlreadyOwned
		case errors.As(err, &ie) && ie.Resource == "stock":
			return ErrOutOfStock
		case errors.As(err, &ie):
			return ErrInsufficientPoints
		default:
			return fmt.Errorf("failed to purchase item: %w", err)
		}
	}

	slog.Info("Item purchased",
		slog.Int64("account_id", accountID),
		slog.Int64("item_id", itemID),
		slog.Int64("price", item.Price))

	if s.tracker != nil {
		s.tracker.TrackPurchase(ctx, accountID)
	}
	return nil
}

// Equip makes the target item the single equipped entry of its slot. The
// unequip scope always follows the target item's slot type; with a nil item
// the caller names the slot to clear.
func (s *ShopService) Equip(ctx context.Context, accountID int64, req EquipRequest) error {
	slotType := req.SlotType
	if req.ItemID != nil {
		item, err := s.shopRepo.GetItem(ctx, *req.ItemID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return ErrItemNotFound
			}
			return fmt.Errorf("failed to get shop item: %w", err)
		}
		slotType = item.SlotType
	}

	err := s.shopRepo.SetEquipped(ctx, accountID, slotType, req.ItemID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return ErrEquipNotOwned
		}
		return fmt.Errorf("failed to equip item: %w", err)
	}
	return nil
}

func (s *ShopService) Inventory(ctx context.Context, accountID int64) ([]*models.InventoryEntry, error) {
	entries, err := s.shopRepo.Inventory(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return entries, nil
}

// ListItems returns active shop items, optionally filtered by a fuzzy match
// on the item name.
func (s *ShopService) ListItems(ctx context.Context, query string) ([]*models.ShopItem, error) {
	items, err := s.shopRepo.ListItems(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list shop items: %w", err)
	}
	if query == "" {
		return items, nil
	}

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}

	matches := fuzzy.Find(query, names)
	filtered := make([]*models.ShopItem, 0, len(matches))
	for _, m := range matches {
		filtered = append(filtered, items[m.Index])
	}
	return filtered, nil
}
