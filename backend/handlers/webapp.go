package handlers

import (
	"errors"
	"strconv"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/shelfworks/readstack/backend/utils"
	"github.com/shelfworks/readstack/readstack"
	"github.com/shelfworks/readstack/readstack/database/repositories"
	"github.com/shelfworks/readstack/readstack/services"
)

// WebApp holds the request-handler side of the application.
type WebApp struct {
	App *readstack.App
}

func NewWebApp(app *readstack.App) *WebApp {
	return &WebApp{App: app}
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// accountID returns the authenticated account id resolved by the auth
// middleware.
func accountID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(localsAccountID).(int64)
	return id
}

// sendDomainError maps a service failure onto the response codes the outer
// platform expects. Anything unrecognized is logged and reported as a generic
// failure without internal detail.
func sendDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrQuestNotFound),
		errors.Is(err, services.ErrBadgeNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrAccountNotFound),
		repositories.IsNotFound(err):
		return utils.SendNotFound(c, err.Error())

	case errors.Is(err, services.ErrQuestNotCompletable),
		errors.Is(err, services.ErrAlreadyOwned),
		errors.Is(err, services.ErrEquipNotOwned),
		errors.Is(err, services.ErrItemInactive),
		errors.Is(err, services.ErrInsufficientPoints),
		errors.Is(err, services.ErrOutOfStock):
		return utils.SendConflict(c, err.Error(), nil)

	case errors.Is(err, services.ErrUnknownMetric),
		errors.Is(err, services.ErrInvalidTarget):
		return utils.SendBadRequest(c, err.Error(), nil)

	default:
		slog.Error("Request failed",
			slog.String("type", "api"),
			slog.String("path", c.Path()),
			slog.Any("error", err))
		return utils.SendInternalServerError(c, "Something went wrong. Please try again later.")
	}
}
