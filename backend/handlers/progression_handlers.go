package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shelfworks/readstack/backend/utils"
)

func ClaimDailyLogin(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := webApp.App.Streaks.ClaimDailyLogin(c.Context(), accountID(c), time.Now())
		if err != nil {
			return sendDomainError(c, err)
		}
		if result.AlreadyClaimed {
			return utils.SendSuccess(c, result, "Daily reward already claimed today")
		}
		return utils.SendSuccess(c, result, "Daily reward claimed")
	}
}

func ListActiveQuests(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := webApp.App.Quests.ListActiveQuests(c.Context(), accountID(c), time.Now())
		if err != nil {
			return sendDomainError(c, err)
		}
		return utils.SendSuccess(c, entries, "Active quests retrieved")
	}
}

func ClaimQuestReward(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		questID, err := parseInt64(c.Params("id"))
		if err != nil {
			return utils.SendBadRequest(c, "Invalid quest ID", map[string]string{
				"quest_id": c.Params("id"),
			})
		}

		result, err := webApp.App.Quests.ClaimReward(c.Context(), accountID(c), questID)
		if err != nil {
			return sendDomainError(c, err)
		}
		webApp.App.Tracker.TrackQuestClaimed(c.Context(), accountID(c))
		return utils.SendSuccess(c, result, "Quest reward claimed")
	}
}

type progressEventRequest struct {
	Type   string `json:"type"`
	Amount int    `json:"amount"`
}

// RecordProgressEvent is the internal surface the catalog and feed subsystems
// push metric events through (book finished, pages read, review posted).
func RecordProgressEvent(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req progressEventRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if req.Type == "" || req.Amount <= 0 {
			return utils.SendBadRequest(c, "type and a positive amount are required", nil)
		}

		webApp.App.Tracker.TrackEvent(c.Context(), accountID(c), req.Type, req.Amount)
		return utils.SendNoContent(c)
	}
}

func ListBadges(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		badges, err := webApp.App.Badges.Catalog(c.Context())
		if err != nil {
			return sendDomainError(c, err)
		}
		return utils.SendSuccess(c, badges, "Badge catalog retrieved")
	}
}

func ListBadgeAwards(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		awards, err := webApp.App.Badges.ListAwards(c.Context(), accountID(c))
		if err != nil {
			return sendDomainError(c, err)
		}
		return utils.SendSuccess(c, awards, "Badges retrieved")
	}
}

// AwardBadge is a system surface; the gateway only routes trusted callers
// here.
func AwardBadge(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		granted, err := webApp.App.Badges.AwardBadge(c.Context(), accountID(c), c.Params("name"))
		if err != nil {
			return sendDomainError(c, err)
		}
		return utils.SendSuccess(c, fiber.Map{"granted": granted}, "Badge processed")
	}
}

func Leaderboard(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		metric := c.Query("metric", "xp")
		limit := c.QueryInt("limit", 10)

		entries, err := webApp.App.Leaderboard.Rank(c.Context(), metric, limit)
		if err != nil {
			return sendDomainError(c, err)
		}
		return utils.SendSuccess(c, entries, "Leaderboard retrieved")
	}
}
