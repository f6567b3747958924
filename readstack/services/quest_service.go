package services

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/shelfworks/readstack/readstack/database/models"
	"github.com/shelfworks/readstack/readstack/database/repositories"
	"golang.org/x/sync/singleflight"
)

// QuestEntry is one active quest merged with the account's progress toward it.
type QuestEntry struct {
	Quest     *models.Quest `json:"quest"`
	Progress  int           `json:"progress"`
	Completed bool          `json:"completed"`
	Claimed   bool          `json:"claimed"`
}

type ClaimRewardResult struct {
	XPAwarded int64 `json:"xp_awarded"`
}

type QuestService struct {
	questRepo repositories.QuestRepository
	seeding   singleflight.Group
}

func NewQuestService(questRepo repositories.QuestRepository) *QuestService {
	return &QuestService{questRepo: questRepo}
}

// ListActiveQuests returns the quests whose window covers now, merged with the
// account's progress. When no window is open a fresh rotation is seeded first;
// the singleflight group plus the (type, starts_at) uniqueness guard keep
// concurrent read traffic from seeding duplicates.
func (s *QuestService) ListActiveQuests(ctx context.Context, accountID int64, now time.Time) ([]QuestEntry, error) {
	quests, err := s.activeOrSeeded(ctx, now)
	if err != nil {
		return nil, err
	}

	questIDs := make([]int64, 0, len(quests))
	for _, q := range quests {
		questIDs = append(questIDs, q.ID)
	}

	progress, err := s.questRepo.ProgressFor(ctx, accountID, questIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get quest progress: %w", err)
	}

	byQuest := make(map[int64]*models.QuestProgress, len(progress))
	for _, p := range progress {
		byQuest[p.QuestID] = p
	}

	entries := make([]QuestEntry, 0, len(quests))
	for _, q := range quests {
		entry := QuestEntry{Quest: q}
		if p, ok := byQuest[q.ID]; ok {
			entry.Progress = p.Progress
			entry.Completed = p.Completed
			entry.Claimed = p.Claimed
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *QuestService) activeOrSeeded(ctx context.Context, now time.Time) ([]*models.Quest, error) {
	quests, err := s.questRepo.ActiveQuests(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get active quests: %w", err)
	}
	if len(quests) > 0 {
		return quests, nil
	}

	_, err, _ = s.seeding.Do(DayOf(now).Format("2006-01-02"), func() (interface{}, error) {
		slog.Info("Seeding quest rotation",
			slog.Time("window_start", DayOf(now)))
		return nil, s.questRepo.SeedRotation(ctx, rotationFor(now))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed quest rotation: %w", err)
	}

	quests, err = s.questRepo.ActiveQuests(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get active quests: %w", err)
	}
	return quests, nil
}

// RecordProgress adds amount to every active, not-yet-completed quest tracking
// the given metric. Completion latches on when the target is reached and never
// reverts.
func (s *QuestService) RecordProgress(ctx context.Context, accountID int64, questType string, amount int) error {
	if amount <= 0 {
		return nil
	}

	quests, err := s.questRepo.ActiveQuests(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to get active quests: %w", err)
	}

	for _, quest := range quests {
		if quest.Type != questType {
			continue
		}
		if err := s.questRepo.AddProgress(ctx, accountID, quest, amount); err != nil {
			slog.Error("Failed to add quest progress",
				slog.Int64("account_id", accountID),
				slog.Int64("quest_id", quest.ID),
				slog.Any("error", err))
			return fmt.Errorf("failed to add quest progress: %w", err)
		}
	}
	return nil
}

// ClaimReward marks a completed quest claimed and credits its XP reward. It
// succeeds at most once per (account, quest).
func (s *QuestService) ClaimReward(ctx context.Context, accountID, questID int64) (*ClaimRewardResult, error) {
	quest, err := s.questRepo.Get(ctx, questID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrQuestNotFound
		}
		return nil, fmt.Errorf("failed to get quest: %w", err)
	}

	if err := s.questRepo.ClaimReward(ctx, accountID, quest); err != nil {
		if repositories.IsConflict(err) {
			return nil, ErrQuestNotCompletable
		}
		return nil, fmt.Errorf("failed to claim quest reward: %w", err)
	}

	slog.Info("Quest reward claimed",
		slog.Int64("account_id", accountID),
		slog.Int64("quest_id", questID),
		slog.Int64("xp", quest.XPReward))

	return &ClaimRewardResult{XPAwarded: quest.XPReward}, nil
}

// ClaimedCount reports how many quest rewards the account has claimed overall.
func (s *QuestService) ClaimedCount(ctx context.Context, accountID int64) (int, error) {
	return s.questRepo.CountClaimed(ctx, accountID)
}
