package services

import (
	"time"

	"github.com/shelfworks/readstack/readstack/database/models"
)

// rotationWindow is how long a lazily seeded quest rotation stays open.
const rotationWindow = 7 * 24 * time.Hour

type questTemplate struct {
	Title       string
	Description string
	Type        string
	Target      int
	XPReward    int64
}

// One template per tracked metric. Seeded whenever no active window covers
// "now".
var rotationTemplates = []questTemplate{
	{
		Title:       "Regular Reader",
		Description: "Log in five days this week.",
		Type:        models.QuestTypeLogin,
		Target:      5,
		XPReward:    200,
	},
	{
		Title:       "Page Turner",
		Description: "Read 300 pages.",
		Type:        models.QuestTypePagesRead,
		Target:      300,
		XPReward:    350,
	},
	{
		Title:       "Finisher",
		Description: "Finish two books.",
		Type:        models.QuestTypeBookFinished,
		Target:      2,
		XPReward:    500,
	},
	{
		Title:       "Critic",
		Description: "Post three reviews.",
		Type:        models.QuestTypeReviewPosted,
		Target:      3,
		XPReward:    300,
	},
}

func rotationFor(now time.Time) []*models.Quest {
	start := DayOf(now)
	end := start.Add(rotationWindow)

	quests := make([]*models.Quest, 0, len(rotationTemplates))
	for _, t := range rotationTemplates {
		quests = append(quests, &models.Quest{
			Title:       t.Title,
			Description: t.Description,
			Type:        t.Type,
			Target:      t.Target,
			XPReward:    t.XPReward,
			StartsAt:    start,
			EndsAt:      end,
			IsActive:    true,
		})
	}
	return quests
}
