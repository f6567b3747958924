package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfworks/readstack/readstack/database/models"
)

func intPtr(n int) *int       { return &n }
func int64Ptr(n int64) *int64 { return &n }

func TestPurchase_DebitsPointsAndGrantsItem(t *testing.T) {
	repo := newFakeShopRepo()
	svc := NewShopService(repo, nil)

	item := repo.addItem(&models.ShopItem{
		Name:     "Gilded Frame",
		Price:    80,
		SlotType: models.SlotTypeAvatarFrame,
		Active:   true,
	})
	repo.points[1] = 100

	require.NoError(t, svc.Purchase(context.Background(), 1, item.ID))
	assert.Equal(t, int64(20), repo.points[1])

	inventory, err := svc.Inventory(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, inventory, 1)
	assert.Equal(t, item.ID, inventory[0].ItemID)
	assert.False(t, inventory[0].Equipped)

	// Buying it a second time changes nothing.
	err = svc.Purchase(context.Background(), 1, item.ID)
	assert.ErrorIs(t, err, ErrAlreadyOwned)
	assert.Equal(t, int64(20), repo.points[1])
}

func TestPurchase_InsufficientPoints(t *testing.T) {
	repo := newFakeShopRepo()
	svc := NewShopService(repo, nil)

	item := repo.addItem(&models.ShopItem{
		Name:     "Midnight Theme",
		Price:    500,
		SlotType: models.SlotTypeProfileTheme,
		Active:   true,
	})
	repo.points[1] = 499

	err := svc.Purchase(context.Background(), 1, item.ID)
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	assert.Equal(t, int64(499), repo.points[1])

	inventory, err := svc.Inventory(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, inventory)
}

func TestPurchase_UnknownOrInactiveItem(t *testing.T) {
	repo := newFakeShopRepo()
	svc := NewShopService(repo, nil)

	err := svc.Purchase(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrItemNotFound)

	retired := repo.addItem(&models.ShopItem{
		Name:     "Retired Skin",
		Price:    10,
		SlotType: models.SlotTypeShelfSkin,
		Active:   false,
	})
	repo.points[1] = 100

	err = svc.Purchase(context.Background(), 1, retired.ID)
	assert.ErrorIs(t, err, ErrItemInactive)
}

func TestPurchase_LimitedStockRunsOut(t *testing.T) {
	repo := newFakeShopRepo()
	svc := NewShopService(repo, nil)

	item := repo.addItem(&models.ShopItem{
		Name:     "Launch Frame",
		Price:    10,
		SlotType: models.SlotTypeAvatarFrame,
		Limited:  true,
		Stock:    intPtr(1),
		Active:   true,
	})
	repo.points[1] = 100
	repo.points[2] = 100

	require.NoError(t, svc.Purchase(context.Background(), 1, item.ID))

	err := svc.Purchase(context.Background(), 2, item.ID)
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, int64(100), repo.points[2])

	stored, err := repo.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, *stored.Stock)
}

func TestPurchase_StockRaceLoserIsRolledBack(t *testing.T) {
	repo := newFakeShopRepo()
	svc := NewShopService(repo, nil)

	// The listing still showed stock when the loser checked, but the guard
	// inside the exchange sees zero.
	item := repo.addItem(&models.ShopItem{
		Name:     "Launch Frame",
		Price:    10,
		SlotType: models.SlotTypeAvatarFrame,
		Limited:  true,
		Stock:    intPtr(1),
		Active:   true,
	})
	repo.points[1] = 100

	snapshot, err := repo.GetItem(context.Background(), item.ID)
	require.NoError(t, err)

	*repo.items[item.ID].Stock = 0

	err = repo.Purchase(context.Background(), 1, snapshot)
	require.Error(t, err)
	assert.Equal(t, int64(100), repo.points[1])

	inventory, err := svc.Inventory(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, inventory)
}

func TestEquip_OneEquippedPerSlot(t *testing.T) {
	repo := newFakeShopRepo()
	svc := NewShopService(repo, nil)

	frameA := repo.addItem(&models.ShopItem{
		Name:     "Frame A",
		Price:    10,
		SlotType: models.SlotTypeAvatarFrame,
		Active:   true,
	})
	frameB := repo.addItem(&models.ShopItem{
		Name:     "Frame B",
		Price:    10,
		SlotType: models.SlotTypeAvatarFrame,
		Active:   true,
	})
	theme := repo.addItem(&models.ShopItem{
		Name:     "Theme",
		Price:    10,
		SlotType: models.SlotTypeProfileTheme,
		Active:   true,
	})
	repo.points[1] = 100
	require.NoError(t, svc.Purchase(context.Background(), 1, frameA.ID))
	require.NoError(t, svc.Purchase(context.Background(), 1, frameB.ID))
	require.NoError(t, svc.Purchase(context.Background(), 1, theme.ID))

	require.NoError(t, svc.Equip(context.Background(), 1, EquipRequest{ItemID: int64Ptr(theme.ID)}))
	require.NoError(t, svc.Equip(context.Background(), 1, EquipRequest{ItemID: int64Ptr(frameA.ID)}))
	require.NoError(t, svc.Equip(context.Background(), 1, EquipRequest{ItemID: int64Ptr(frameB.ID)}))

	// Equipping B displaced A but left the other slot alone.
	frames := repo.equippedInSlot(1, models.SlotTypeAvatarFrame)
	require.Len(t, frames, 1)
	assert.Equal(t, frameB.ID, frames[0].ItemID)

	themes := repo.equippedInSlot(1, models.SlotTypeProfileTheme)
	require.Len(t, themes, 1)
	assert.Equal(t, theme.ID, themes[0].ItemID)
}

func TestEquip_NilItemClearsSlot(t *testing.T) {
	repo := newFakeShopRepo()
	svc := NewShopService(repo, nil)

	frame := repo.addItem(&models.ShopItem{
		Name:     "Frame",
		Price:    10,
		SlotType: models.SlotTypeAvatarFrame,
		Active:   true,
	})
	repo.points[1] = 100
	require.NoError(t, svc.Purchase(context.Background(), 1, frame.ID))
	require.NoError(t, svc.Equip(context.Background(), 1, EquipRequest{ItemID: int64Ptr(frame.ID)}))

	require.NoError(t, svc.Equip(context.Background(), 1, EquipRequest{SlotType: models.SlotTypeAvatarFrame}))
	assert.Empty(t, repo.equippedInSlot(1, models.SlotTypeAvatarFrame))
}

func TestEquip_RejectsUnownedItem(t *testing.T) {
	repo := newFakeShopRepo()
	svc := NewShopService(repo, nil)

	frame := repo.addItem(&models.ShopItem{
		Name:     "Frame",
		Price:    10,
		SlotType: models.SlotTypeAvatarFrame,
		Active:   true,
	})

	err := svc.Equip(context.Background(), 1, EquipRequest{ItemID: int64Ptr(frame.ID)})
	assert.ErrorIs(t, err, ErrEquipNotOwned)

	err = svc.Equip(context.Background(), 1, EquipRequest{ItemID: int64Ptr(999)})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestListItems_FuzzyNameFilter(t *testing.T) {
	repo := newFakeShopRepo()
	svc := NewShopService(repo, nil)

	repo.addItem(&models.ShopItem{Name: "Gilded Frame", Price: 10, SlotType: models.SlotTypeAvatarFrame, Active: true})
	repo.addItem(&models.ShopItem{Name: "Midnight Theme", Price: 10, SlotType: models.SlotTypeProfileTheme, Active: true})
	repo.addItem(&models.ShopItem{Name: "Hidden", Price: 10, SlotType: models.SlotTypeNameColor, Active: false})

	all, err := svc.ListItems(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	matched, err := svc.ListItems(context.Background(), "gldfrm")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Gilded Frame", matched[0].Name)
}
