package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shelfworks/readstack/backend/utils"
)

// RegisterRoutes mounts the progression API under /api/v1.
func RegisterRoutes(app *fiber.App, webApp *WebApp) {
	app.Use(RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, fiber.Map{
			"version": webApp.App.Version,
			"commit":  webApp.App.Commit,
		}, "ok")
	})

	v1 := app.Group("/api/v1", RequireAccount())

	progression := v1.Group("/progression")
	progression.Post("/daily-claim", ClaimDailyLogin(webApp))
	progression.Get("/quests", ListActiveQuests(webApp))
	progression.Post("/quests/:id/claim", ClaimQuestReward(webApp))
	progression.Post("/events", RecordProgressEvent(webApp))

	v1.Get("/badges", ListBadges(webApp))
	v1.Get("/accounts/me/badges", ListBadgeAwards(webApp))
	v1.Post("/badges/:name/award", AwardBadge(webApp))

	shop := v1.Group("/shop")
	shop.Get("/items", ListShopItems(webApp))
	shop.Post("/items/:id/purchase", PurchaseItem(webApp))
	shop.Post("/equip", EquipItem(webApp))
	shop.Get("/inventory", ListInventory(webApp))

	v1.Get("/leaderboard", Leaderboard(webApp))

	v1.Get("/goals/:year", GetReadingGoal(webApp))
	v1.Put("/goals/:year", SetReadingGoal(webApp))
}
