package services

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/shelfworks/readstack/readstack/database/repositories"
)

// Daily login reward tiers; exactly one applies, the highest matched.
const (
	streakTierWeek  = 7
	streakTierMonth = 30

	baseXPReward      = 50
	basePointsReward  = 10
	weekXPReward      = 150
	weekPointsReward  = 30
	monthXPReward     = 500
	monthPointsReward = 100
)

type DailyClaimResult struct {
	Streak         int   `json:"streak"`
	XPAwarded      int64 `json:"xp_awarded"`
	PointsAwarded  int64 `json:"points_awarded"`
	AlreadyClaimed bool  `json:"already_claimed"`
}

type StreakService struct {
	accountRepo repositories.AccountRepository
	tracker     *Tracker
}

func NewStreakService(accountRepo repositories.AccountRepository, tracker *Tracker) *StreakService {
	return &StreakService{
		accountRepo: accountRepo,
		tracker:     tracker,
	}
}

// ClaimDailyLogin grants the once-per-day login reward and advances the
// consecutive-day counter. Safe to call any number of times per day: repeat
// calls (including a losing concurrent claim) report AlreadyClaimed without
// touching the account.
func (s *StreakService) ClaimDailyLogin(ctx context.Context, accountID int64, now time.Time) (*DailyClaimResult, error) {
	today := DayOf(now)

	claimed, err := s.accountRepo.HasLogin(ctx, accountID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to check login record: %w", err)
	}
	if claimed {
		return &DailyClaimResult{AlreadyClaimed: true}, nil
	}

	account, err := s.accountRepo.Get(ctx, accountID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	yesterday := today.AddDate(0, 0, -1)
	consecutive, err := s.accountRepo.HasLogin(ctx, accountID, yesterday)
	if err != nil {
		return nil, fmt.Errorf("failed to check previous login: %w", err)
	}

	streak := 1
	if consecutive {
		streak = account.Streak + 1
	}

	xp, points := rewardForStreak(streak)

	err = s.accountRepo.RecordDailyLogin(ctx, accountID, today, streak, xp, points)
	if err != nil {
		if repositories.IsConflict(err) {
			// Lost the race against a concurrent claim for the same day.
			return &DailyClaimResult{AlreadyClaimed: true}, nil
		}
		if repositories.IsNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to record daily login: %w", err)
	}

	slog.Info("Daily login claimed",
		slog.Int64("account_id", accountID),
		slog.Int("streak", streak),
		slog.Int64("xp", xp),
		slog.Int64("points", points))

	if s.tracker != nil {
		s.tracker.TrackLogin(ctx, accountID, streak)
	}

	return &DailyClaimResult{
		Streak:        streak,
		XPAwarded:     xp,
		PointsAwarded: points,
	}, nil
}

func rewardForStreak(streak int) (xp, points int64) {
	switch {
	case streak >= streakTierMonth:
		return monthXPReward, monthPointsReward
	case streak >= streakTierWeek:
		return weekXPReward, weekPointsReward
	default:
		return baseXPReward, basePointsReward
	}
}

// DayOf truncates a timestamp to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
