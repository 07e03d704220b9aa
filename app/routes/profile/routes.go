package profile

import (
	"bytes"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/ahmedkatalov/fowWorkProject/app/routes/auth"
	"github.com/ahmedkatalov/fowWorkProject/app/routes/httperr"
	"github.com/ahmedkatalov/fowWorkProject/app/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	Ledger *services.Ledger
	Logger *zap.Logger
}

func SetupProfileRoutes(app *fiber.App, a *auth.Handler, h *Handler) {
	if h.Logger == nil {
		h.Logger = zap.NewNop()
	}
	admin := auth.RoleMiddleware(models.RoleAdmin)

	app.Get("/profile", a.AuthMiddleware, h.ShowProfilePage)

	api := app.Group("/api/profile", a.AuthMiddleware)
	api.Get("/", h.GetProfileAPI)
	api.Get("/export", admin, h.ExportHistoryAPI)
	api.Delete("/history", admin, h.ClearHistoryAPI)
}

func (h *Handler) ShowProfilePage(c *fiber.Ctx) error {
	session := auth.Session(c)
	view, err := h.Ledger.Profile(c.UserContext(), session)
	if err != nil {
		return err
	}

	return c.Render("profile", fiber.Map{
		"Title":       "Профиль",
		"CurrentPage": "profile",
		"View":        view,
		"Session":     session,
		"IsAdmin":     session.IsAdmin(),
		"Selected":    c.Query("date"),
	})
}

func (h *Handler) GetProfileAPI(c *fiber.Ctx) error {
	view, err := h.Ledger.Profile(c.UserContext(), auth.Session(c))
	if err != nil {
		return httperr.JSON(c, h.Logger, err)
	}
	return c.JSON(view)
}

func (h *Handler) ExportHistoryAPI(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.Ledger.ExportProfitHistory(c.UserContext(), &buf); err != nil {
		return httperr.JSON(c, h.Logger, err)
	}
	c.Attachment(services.ProfitHistoryFilename)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(buf.Bytes())
}

func (h *Handler) ClearHistoryAPI(c *fiber.Ctx) error {
	if err := h.Ledger.ClearProfitHistory(c.UserContext()); err != nil {
		return httperr.JSON(c, h.Logger, err)
	}
	h.Logger.Info("profit history cleared", zap.String("by", auth.Session(c).Actor()))
	return c.JSON(fiber.Map{"message": "История удалена"})
}
