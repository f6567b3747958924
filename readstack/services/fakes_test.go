package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shelfworks/readstack/readstack/database/models"
	"github.com/shelfworks/readstack/readstack/database/repositories"
)

// In-memory repositories mirroring the store's constraint behavior, so the
// services can be exercised without Postgres.

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[int64]*models.Account
	logins   map[string]bool
	nextID   int64

	// forces the next RecordDailyLogin to behave like a lost insert race
	failNextLoginInsert bool
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts: make(map[int64]*models.Account),
		logins:   make(map[string]bool),
	}
}

func loginKey(accountID int64, day time.Time) string {
	return fmt.Sprintf("%d:%s", accountID, day.Format("2006-01-02"))
}

func (r *fakeAccountRepo) Create(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	account.ID = r.nextID
	if account.Level == 0 {
		account.Level = 1
	}
	r.accounts[account.ID] = account
	return nil
}

func (r *fakeAccountRepo) Get(_ context.Context, id int64) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, &repositories.NotFoundError{Entity: "account", ID: id}
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) HasLogin(_ context.Context, accountID int64, day time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logins[loginKey(accountID, day)], nil
}

func (r *fakeAccountRepo) RecordDailyLogin(_ context.Context, accountID int64, day time.Time, streak int, xp, points int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := loginKey(accountID, day)
	if r.logins[key] || r.failNextLoginInsert {
		r.failNextLoginInsert = false
		return &repositories.ConflictError{Entity: "login record", Field: "day", Value: day}
	}

	account, ok := r.accounts[accountID]
	if !ok {
		return &repositories.NotFoundError{Entity: "account", ID: accountID}
	}

	r.logins[key] = true
	account.Streak = streak
	account.XP += xp
	account.Level = 1 + int(account.XP/1000)
	account.Points += points
	account.LastSeenDay = day
	return nil
}

func (r *fakeAccountRepo) TopByXP(_ context.Context, limit int) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts := make([]*models.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		copied := *a
		accounts = append(accounts, &copied)
	}
	for i := 0; i < len(accounts); i++ {
		for j := i + 1; j < len(accounts); j++ {
			if accounts[j].XP > accounts[i].XP ||
				(accounts[j].XP == accounts[i].XP && accounts[j].ID < accounts[i].ID) {
				accounts[i], accounts[j] = accounts[j], accounts[i]
			}
		}
	}
	if len(accounts) > limit {
		accounts = accounts[:limit]
	}
	return accounts, nil
}

type fakeQuestRepo struct {
	mu        sync.Mutex
	quests    []*models.Quest
	progress  map[string]*models.QuestProgress
	nextID    int64
	seedCalls int
}

func newFakeQuestRepo() *fakeQuestRepo {
	return &fakeQuestRepo{progress: make(map[string]*models.QuestProgress)}
}

func progressKey(accountID, questID int64) string {
	return fmt.Sprintf("%d:%d", accountID, questID)
}

func (r *fakeQuestRepo) ActiveQuests(_ context.Context, now time.Time) ([]*models.Quest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var active []*models.Quest
	for _, q := range r.quests {
		if q.IsActive && !q.StartsAt.After(now) && !q.EndsAt.Before(now) {
			active = append(active, q)
		}
	}
	return active, nil
}

func (r *fakeQuestRepo) SeedRotation(_ context.Context, quests []*models.Quest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seedCalls++

	for _, q := range quests {
		duplicate := false
		for _, existing := range r.quests {
			if existing.Type == q.Type && existing.StartsAt.Equal(q.StartsAt) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		r.nextID++
		q.ID = r.nextID
		r.quests = append(r.quests, q)
	}
	return nil
}

func (r *fakeQuestRepo) Get(_ context.Context, questID int64) (*models.Quest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quests {
		if q.ID == questID {
			return q, nil
		}
	}
	return nil, &repositories.NotFoundError{Entity: "quest", ID: questID}
}

func (r *fakeQuestRepo) ProgressFor(_ context.Context, accountID int64, questIDs []int64) ([]*models.QuestProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.QuestProgress
	for _, id := range questIDs {
		if p, ok := r.progress[progressKey(accountID, id)]; ok {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeQuestRepo) AddProgress(_ context.Context, accountID int64, quest *models.Quest, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := progressKey(accountID, quest.ID)
	now := time.Now()
	p, ok := r.progress[key]
	if !ok {
		p = &models.QuestProgress{
			AccountID: accountID,
			QuestID:   quest.ID,
			CreatedAt: now,
		}
		r.progress[key] = p
	}
	if p.Completed {
		return nil
	}
	p.Progress += amount
	p.UpdatedAt = now
	if p.Progress >= quest.Target {
		p.Completed = true
		p.CompletedAt = &now
	}
	return nil
}

func (r *fakeQuestRepo) ClaimReward(_ context.Context, accountID int64, quest *models.Quest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.progress[progressKey(accountID, quest.ID)]
	if !ok || !p.Completed || p.Claimed {
		return &repositories.ConflictError{Entity: "quest progress", Field: "quest_id", Value: quest.ID}
	}
	now := time.Now()
	p.Claimed = true
	p.ClaimedAt = &now
	return nil
}

func (r *fakeQuestRepo) CountClaimed(_ context.Context, accountID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, p := range r.progress {
		if p.AccountID == accountID && p.Claimed {
			count++
		}
	}
	return count, nil
}

type fakeBadgeRepo struct {
	mu            sync.Mutex
	badges        map[string]*models.Badge
	awards        map[string]*models.BadgeAward
	notifications []*models.Notification
	activity      []*models.ActivityEntry
	nextID        int64
}

func newFakeBadgeRepo(names ...string) *fakeBadgeRepo {
	r := &fakeBadgeRepo{
		badges: make(map[string]*models.Badge),
		awards: make(map[string]*models.BadgeAward),
	}
	for i, name := range names {
		r.badges[name] = &models.Badge{ID: int64(i + 1), Name: name}
	}
	return r
}

func (r *fakeBadgeRepo) List(_ context.Context) ([]*models.Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	badges := make([]*models.Badge, 0, len(r.badges))
	for _, b := range r.badges {
		badges = append(badges, b)
	}
	sort.Slice(badges, func(i, j int) bool { return badges[i].ID < badges[j].ID })
	return badges, nil
}

func (r *fakeBadgeRepo) GetByName(_ context.Context, name string) (*models.Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	badge, ok := r.badges[name]
	if !ok {
		return nil, &repositories.NotFoundError{Entity: "badge", ID: name}
	}
	return badge, nil
}

func (r *fakeBadgeRepo) Award(_ context.Context, accountID int64, badge *models.Badge) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%d:%d", accountID, badge.ID)
	if _, ok := r.awards[key]; ok {
		return false, nil
	}

	now := time.Now()
	r.nextID++
	r.awards[key] = &models.BadgeAward{
		ID:        r.nextID,
		AccountID: accountID,
		BadgeID:   badge.ID,
		AwardedAt: now,
		Badge:     badge,
	}
	r.notifications = append(r.notifications, &models.Notification{
		AccountID: accountID,
		Kind:      models.NotificationKindBadge,
		Body:      badge.Name,
		CreatedAt: now,
	})
	r.activity = append(r.activity, &models.ActivityEntry{
		AccountID: accountID,
		Action:    models.ActivityBadgeAwarded,
		Detail:    badge.Name,
		CreatedAt: now,
	})
	return true, nil
}

func (r *fakeBadgeRepo) ListAwards(_ context.Context, accountID int64) ([]*models.BadgeAward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.BadgeAward
	for _, a := range r.awards {
		if a.AccountID == accountID {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeShopRepo struct {
	mu      sync.Mutex
	items   map[int64]*models.ShopItem
	entries map[string]*models.InventoryEntry
	points  map[int64]int64
	nextID  int64
}

func newFakeShopRepo() *fakeShopRepo {
	return &fakeShopRepo{
		items:   make(map[int64]*models.ShopItem),
		entries: make(map[string]*models.InventoryEntry),
		points:  make(map[int64]int64),
	}
}

func entryKey(accountID, itemID int64) string {
	return fmt.Sprintf("%d:%d", accountID, itemID)
}

func (r *fakeShopRepo) addItem(item *models.ShopItem) *models.ShopItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item
	return item
}

func (r *fakeShopRepo) GetItem(_ context.Context, itemID int64) (*models.ShopItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok {
		return nil, &repositories.NotFoundError{Entity: "shop item", ID: itemID}
	}
	copied := *item
	return &copied, nil
}

func (r *fakeShopRepo) ListItems(_ context.Context, onlyActive bool) ([]*models.ShopItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.ShopItem
	for _, item := range r.items {
		if onlyActive && !item.Active {
			continue
		}
		copied := *item
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeShopRepo) OwnedEntry(_ context.Context, accountID, itemID int64) (*models.InventoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[entryKey(accountID, itemID)]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeShopRepo) Inventory(_ context.Context, accountID int64) ([]*models.InventoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.InventoryEntry
	for _, e := range r.entries {
		if e.AccountID == accountID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeShopRepo) Purchase(_ context.Context, accountID int64, item *models.ShopItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.points[accountID] < item.Price {
		return &repositories.InsufficientError{Resource: "points"}
	}
	stored := r.items[item.ID]
	if item.Limited {
		if stored == nil || stored.Stock == nil || *stored.Stock <= 0 {
			return &repositories.InsufficientError{Resource: "stock"}
		}
	}
	key := entryKey(accountID, item.ID)
	if _, ok := r.entries[key]; ok {
		return &repositories.ConflictError{Entity: "inventory entry", Field: "item_id", Value: item.ID}
	}

	r.points[accountID] -= item.Price
	if item.Limited {
		*stored.Stock--
	}
	r.entries[key] = &models.InventoryEntry{
		AccountID:  accountID,
		ItemID:     item.ID,
		SlotType:   item.SlotType,
		AcquiredAt: time.Now(),
		Item:       stored,
	}
	return nil
}

func (r *fakeShopRepo) SetEquipped(_ context.Context, accountID int64, slotType string, itemID *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.AccountID == accountID && e.SlotType == slotType {
			e.Equipped = false
		}
	}
	if itemID == nil {
		return nil
	}

	e, ok := r.entries[entryKey(accountID, *itemID)]
	if !ok {
		return &repositories.NotFoundError{Entity: "inventory entry", ID: *itemID}
	}
	e.Equipped = true
	return nil
}

func (r *fakeShopRepo) equippedInSlot(accountID int64, slotType string) []*models.InventoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.InventoryEntry
	for _, e := range r.entries {
		if e.AccountID == accountID && e.SlotType == slotType && e.Equipped {
			out = append(out, e)
		}
	}
	return out
}

type fakeReadingRepo struct {
	mu       sync.Mutex
	goals    map[string]*models.ReadingGoal
	finished map[int64][]time.Time
}

func newFakeReadingRepo() *fakeReadingRepo {
	return &fakeReadingRepo{
		goals:    make(map[string]*models.ReadingGoal),
		finished: make(map[int64][]time.Time),
	}
}

func (r *fakeReadingRepo) CountFinishedInYear(_ context.Context, accountID int64, year int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, t := range r.finished[accountID] {
		if t.Year() == year {
			count++
		}
	}
	return count, nil
}

func (r *fakeReadingRepo) TopFinishers(_ context.Context, limit int) ([]repositories.FinishedCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var counts []repositories.FinishedCount
	for accountID, times := range r.finished {
		counts = append(counts, repositories.FinishedCount{
			AccountID: accountID,
			Count:     int64(len(times)),
		})
	}
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts, nil
}

func (r *fakeReadingRepo) UpsertGoal(_ context.Context, accountID int64, year, target int) (*models.ReadingGoal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%d:%d", accountID, year)
	goal, ok := r.goals[key]
	if !ok {
		goal = &models.ReadingGoal{AccountID: accountID, Year: year}
		r.goals[key] = goal
	}
	goal.Target = target
	copied := *goal
	return &copied, nil
}

func (r *fakeReadingRepo) GetGoal(_ context.Context, accountID int64, year int) (*models.ReadingGoal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	goal, ok := r.goals[fmt.Sprintf("%d:%d", accountID, year)]
	if !ok {
		return nil, &repositories.NotFoundError{Entity: "reading goal", ID: year}
	}
	copied := *goal
	return &copied, nil
}
