package services

import (
	"context"
	"fmt"

	"github.com/shelfworks/readstack/readstack/database/repositories"
)

type GoalStatus struct {
	Year    int  `json:"year"`
	Target  int  `json:"target"`
	Current int  `json:"current"`
	Reached bool `json:"reached"`
}

type GoalService struct {
	readingRepo repositories.ReadingRepository
}

func NewGoalService(readingRepo repositories.ReadingRepository) *GoalService {
	return &GoalService{readingRepo: readingRepo}
}

func (s *GoalService) SetGoal(ctx context.Context, accountID int64, year, target int) (*GoalStatus, error) {
	if target <= 0 {
		return nil, ErrInvalidTarget
	}

	goal, err := s.readingRepo.UpsertGoal(ctx, accountID, year, target)
	if err != nil {
		return nil, fmt.Errorf("failed to set reading goal: %w", err)
	}
	return s.status(ctx, accountID, goal.Year, goal.Target)
}

func (s *GoalService) GetGoal(ctx context.Context, accountID int64, year int) (*GoalStatus, error) {
	goal, err := s.readingRepo.GetGoal(ctx, accountID, year)
	if err != nil {
		return nil, err
	}
	return s.status(ctx, accountID, goal.Year, goal.Target)
}

// status derives the current count from the catalog subsystem's finished
// reading-status records; it is never stored.
func (s *GoalService) status(ctx context.Context, accountID int64, year, target int) (*GoalStatus, error) {
	current, err := s.readingRepo.CountFinishedInYear(ctx, accountID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to count finished books: %w", err)
	}
	return &GoalStatus{
		Year:    year,
		Target:  target,
		Current: current,
		Reached: current >= target,
	}, nil
}
