package services

import (
	"context"

	"log/slog"

	"github.com/shelfworks/readstack/readstack/database/models"
)

// Tracker fans progression events out to the quest engine and the badge
// awarder. Tracking is best-effort: a failure here is logged and never fails
// the operation that produced the event.
type Tracker struct {
	quests *QuestService
	badges *BadgeService
}

func NewTracker(quests *QuestService, badges *BadgeService) *Tracker {
	return &Tracker{
		quests: quests,
		badges: badges,
	}
}

func (t *Tracker) TrackLogin(ctx context.Context, accountID int64, streak int) {
	t.record(ctx, accountID, models.QuestTypeLogin, 1)

	t.award(ctx, accountID, models.BadgeFirstLogin)
	if streak >= streakTierWeek {
		t.award(ctx, accountID, models.BadgeWeekStreak)
	}
	if streak >= streakTierMonth {
		t.award(ctx, accountID, models.BadgeMonthStreak)
	}
}

func (t *Tracker) TrackBookFinished(ctx context.Context, accountID int64, count int) {
	t.record(ctx, accountID, models.QuestTypeBookFinished, count)
	t.award(ctx, accountID, models.BadgeFirstBook)
}

func (t *Tracker) TrackPagesRead(ctx context.Context, accountID int64, pages int) {
	t.record(ctx, accountID, models.QuestTypePagesRead, pages)
}

func (t *Tracker) TrackReviewPosted(ctx context.Context, accountID int64) {
	t.record(ctx, accountID, models.QuestTypeReviewPosted, 1)
}

func (t *Tracker) TrackPurchase(ctx context.Context, accountID int64) {
	t.award(ctx, accountID, models.BadgeShopRegular)
}

// questMasterThreshold is how many claimed quest rewards earn the mastery
// badge.
const questMasterThreshold = 10

func (t *Tracker) TrackQuestClaimed(ctx context.Context, accountID int64) {
	if t.quests == nil {
		return
	}
	count, err := t.quests.ClaimedCount(ctx, accountID)
	if err != nil {
		slog.Error("Failed to count claimed quests",
			slog.Int64("account_id", accountID),
			slog.Any("error", err))
		return
	}
	if count >= questMasterThreshold {
		t.award(ctx, accountID, models.BadgeQuestMaster)
	}
}

// TrackEvent routes a raw metric event from an outside subsystem.
func (t *Tracker) TrackEvent(ctx context.Context, accountID int64, questType string, amount int) {
	switch questType {
	case models.QuestTypeBookFinished:
		t.TrackBookFinished(ctx, accountID, amount)
	case models.QuestTypePagesRead:
		t.TrackPagesRead(ctx, accountID, amount)
	case models.QuestTypeReviewPosted:
		t.record(ctx, accountID, questType, amount)
	default:
		t.record(ctx, accountID, questType, amount)
	}
}

func (t *Tracker) record(ctx context.Context, accountID int64, questType string, amount int) {
	if t.quests == nil {
		return
	}
	if err := t.quests.RecordProgress(ctx, accountID, questType, amount); err != nil {
		slog.Error("Failed to track quest progress",
			slog.Int64("account_id", accountID),
			slog.String("quest_type", questType),
			slog.Any("error", err))
	}
}

func (t *Tracker) award(ctx context.Context, accountID int64, badgeName string) {
	if t.badges == nil {
		return
	}
	if _, err := t.badges.AwardBadge(ctx, accountID, badgeName); err != nil {
		slog.Error("Failed to award badge",
			slog.Int64("account_id", accountID),
			slog.String("badge", badgeName),
			slog.Any("error", err))
	}
}
