package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shelfworks/readstack/backend/utils"
	"github.com/shelfworks/readstack/readstack/services"
)

func ListShopItems(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := webApp.App.Shop.ListItems(c.Context(), c.Query("q"))
		if err != nil {
			return sendDomainError(c, err)
		}
		return utils.SendSuccess(c, items, "Shop items retrieved")
	}
}

func PurchaseItem(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		itemID, err := parseInt64(c.Params("id"))
		if err != nil {
			return utils.SendBadRequest(c, "Invalid item ID", map[string]string{
				"item_id": c.Params("id"),
			})
		}

		if err := webApp.App.Shop.Purchase(c.Context(), accountID(c), itemID); err != nil {
			return sendDomainError(c, err)
		}
		return utils.SendNoContent(c)
	}
}

type equipRequest struct {
	ItemID   *int64 `json:"item_id"`
	SlotType string `json:"slot_type"`
}

func EquipItem(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req equipRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if req.ItemID == nil && req.SlotType == "" {
			return utils.SendBadRequest(c, "item_id or slot_type is required", nil)
		}

		err := webApp.App.Shop.Equip(c.Context(), accountID(c), services.EquipRequest{
			ItemID:   req.ItemID,
			SlotType: req.SlotType,
		})
		if err != nil {
			return sendDomainError(c, err)
		}
		return utils.SendNoContent(c)
	}
}

func ListInventory(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := webApp.App.Shop.Inventory(c.Context(), accountID(c))
		if err != nil {
			return sendDomainError(c, err)
		}
		return utils.SendSuccess(c, entries, "Inventory retrieved")
	}
}

func GetReadingGoal(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year, err := strconv.Atoi(c.Params("year"))
		if err != nil {
			return utils.SendBadRequest(c, "Invalid year", map[string]string{
				"year": c.Params("year"),
			})
		}

		status, err := webApp.App.Goals.GetGoal(c.Context(), accountID(c), year)
		if err != nil {
			return sendDomainError(c, err)
		}
		return utils.SendSuccess(c, status, "Reading goal retrieved")
	}
}

type goalRequest struct {
	Target int `json:"target"`
}

func SetReadingGoal(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year, err := strconv.Atoi(c.Params("year"))
		if err != nil {
			return utils.SendBadRequest(c, "Invalid year", map[string]string{
				"year": c.Params("year"),
			})
		}

		var req goalRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		status, err := webApp.App.Goals.SetGoal(c.Context(), accountID(c), year, req.Target)
		if err != nil {
			return sendDomainError(c, err)
		}
		return utils.SendSuccess(c, status, "Reading goal saved")
	}
}
