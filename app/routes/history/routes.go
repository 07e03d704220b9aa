package history

import (
	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/ahmedkatalov/fowWorkProject/app/routes/auth"
	"github.com/ahmedkatalov/fowWorkProject/app/routes/httperr"
	"github.com/ahmedkatalov/fowWorkProject/app/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// Handler serves the admin payment history.
type Handler struct {
	Ledger     *services.Ledger
	Recipients []string
	Logger     *zap.Logger
}

func SetupHistoryRoutes(app *fiber.App, a *auth.Handler, h *Handler) {
	if h.Logger == nil {
		h.Logger = zap.NewNop()
	}
	admin := auth.RoleMiddleware(models.RoleAdmin)

	app.Get("/history", a.AuthMiddleware, admin, h.ShowHistoryPage)

	api := app.Group("/api/history", a.AuthMiddleware, admin)
	api.Get("/", h.GetHistoryAPI)
	api.Post("/manual", h.AddManualPaymentAPI)
}

func (h *Handler) ShowHistoryPage(c *fiber.Ctx) error {
	view, err := h.Ledger.History(c.UserContext(), utils.CopyString(c.Query("date")))
	if err != nil {
		return err
	}
	view.Recipients = h.Recipients

	return c.Render("history", fiber.Map{
		"Title":       "История",
		"CurrentPage": "history",
		"View":        view,
		"Session":     auth.Session(c),
		"IsAdmin":     true,
	})
}

func (h *Handler) GetHistoryAPI(c *fiber.Ctx) error {
	view, err := h.Ledger.History(c.UserContext(), utils.CopyString(c.Query("date")))
	if err != nil {
		return httperr.JSON(c, h.Logger, err)
	}
	view.Recipients = h.Recipients
	return c.JSON(view)
}

func (h *Handler) AddManualPaymentAPI(c *fiber.Ctx) error {
	var form services.ManualPaymentForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	rec, err := h.Ledger.AddManualPayment(c.UserContext(), &form, auth.Session(c))
	if err != nil {
		return httperr.JSON(c, h.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}
