package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/shelfworks/readstack/readstack/database/repositories"
)

const (
	MetricXP             = "xp"
	MetricBooksCompleted = "books_completed"
	MetricTotalReadTime  = "total_read_time"

	// TODO: replace with tracked reading time once the reader app reports it;
	// until then read time is approximated as a fixed multiple of xp.
	readTimeProxyMinutesPerXP = 3

	leaderboardCacheSize = 64
	leaderboardCacheTTL  = 30 * time.Second
)

type RankEntry struct {
	AccountID int64 `json:"account_id"`
	Value     int64 `json:"value"`
	Rank      int   `json:"rank"`
}

type cachedRanking struct {
	entries   []RankEntry
	fetchedAt time.Time
}

// LeaderboardService is a read-only ranking view over committed progression
// state; it never mutates anything.
type LeaderboardService struct {
	accountRepo repositories.AccountRepository
	reading     repositories.ReadingStatusReader
	cache       *lru.Cache
}

func NewLeaderboardService(accountRepo repositories.AccountRepository, reading repositories.ReadingStatusReader) *LeaderboardService {
	cache, _ := lru.New(leaderboardCacheSize)
	return &LeaderboardService{
		accountRepo: accountRepo,
		reading:     reading,
		cache:       cache,
	}
}

// Rank returns the top accounts for the metric, 1-based, ties broken by
// ascending account id.
func (s *LeaderboardService) Rank(ctx context.Context, metric string, limit int) ([]RankEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	key := fmt.Sprintf("%s:%d", metric, limit)
	if v, ok := s.cache.Get(key); ok {
		cached := v.(cachedRanking)
		if time.Since(cached.fetchedAt) < leaderboardCacheTTL {
			return cached.entries, nil
		}
		s.cache.Remove(key)
	}

	var entries []RankEntry
	var err error
	switch metric {
	case MetricXP:
		entries, err = s.rankByXP(ctx, limit, 1)
	case MetricBooksCompleted:
		entries, err = s.rankByBooks(ctx, limit)
	case MetricTotalReadTime:
		entries, err = s.rankByXP(ctx, limit, readTimeProxyMinutesPerXP)
	default:
		return nil, ErrUnknownMetric
	}
	if err != nil {
		return nil, err
	}

	s.cache.Add(key, cachedRanking{entries: entries, fetchedAt: time.Now()})
	return entries, nil
}

func (s *LeaderboardService) rankByXP(ctx context.Context, limit int, factor int64) ([]RankEntry, error) {
	accounts, err := s.accountRepo.TopByXP(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank accounts: %w", err)
	}

	entries := make([]RankEntry, 0, len(accounts))
	for i, a := range accounts {
		entries = append(entries, RankEntry{
			AccountID: a.ID,
			Value:     a.XP * factor,
			Rank:      i + 1,
		})
	}
	return entries, nil
}

func (s *LeaderboardService) rankByBooks(ctx context.Context, limit int) ([]RankEntry, error) {
	counts, err := s.reading.TopFinishers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank finishers: %w", err)
	}

	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].AccountID < counts[j].AccountID
	})

	entries := make([]RankEntry, 0, len(counts))
	for i, c := range counts {
		entries = append(entries, RankEntry{
			AccountID: c.AccountID,
			Value:     c.Count,
			Rank:      i + 1,
		})
	}
	return entries, nil
}
