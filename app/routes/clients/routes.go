package clients

import (
	"fmt"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/ahmedkatalov/fowWorkProject/app/routes/auth"
	"github.com/ahmedkatalov/fowWorkProject/app/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// Handler serves the today and overdue views and the client API.
type Handler struct {
	Ledger     *services.Ledger
	Recipients []string
	Logger     *zap.Logger
}

func SetupClientRoutes(app *fiber.App, a *auth.Handler, h *Handler) {
	if h.Logger == nil {
		h.Logger = zap.NewNop()
	}
	admin := auth.RoleMiddleware(models.RoleAdmin)

	// Web Routes
	app.Get("/today", a.AuthMiddleware, h.ShowTodayPage)
	app.Get("/overdue", a.AuthMiddleware, h.ShowOverduePage)

	// API Routes
	api := app.Group("/api/clients", a.AuthMiddleware)
	api.Get("/", h.ListClientsAPI)
	api.Get("/stream", h.StreamAPI)
	api.Get("/export", h.ExportAPI)
	api.Get("/pending-delete", h.PendingDeleteAPI)
	api.Post("/", admin, h.CreateClientAPI)
	api.Post("/:id/status", h.ChangeStatusAPI)
	api.Delete("/:id", admin, h.DeleteClientAPI)
	api.Post("/:id/restore", admin, h.RestoreClientAPI)
}

// parseQuery reads the bucket filters; fallback is used when ?bucket= is absent.
// The values are copied out of the request buffer since the stream outlives the handler.
// Payment history is served to admins by /api/history only.
func parseQuery(c *fiber.Ctx, fallback models.Bucket) (services.Query, error) {
	q := services.Query{
		Bucket: models.Bucket(utils.CopyString(c.Query("bucket", string(fallback)))),
		Status: utils.CopyString(c.Query("status", services.StatusAll)),
		Age:    services.OverdueAge(utils.CopyString(c.Query("age"))),
	}
	switch q.Bucket {
	case models.BucketToday, models.BucketOverdue:
	case models.BucketHistory:
		return q, fiber.NewError(fiber.StatusForbidden, "history is available at /api/history")
	default:
		return q, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown bucket %q", q.Bucket))
	}
	if q.Status != services.StatusAll && q.Status != "" && !models.ClientStatus(q.Status).Valid() {
		return q, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown status %q", q.Status))
	}
	switch q.Age {
	case services.AgeAny, services.AgeOneMonth, services.AgeTwoMonths:
	default:
		return q, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown age %q", q.Age))
	}
	return q, nil
}

// pathID copies the :id param; the delete scheduler keeps it past the request.
func pathID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

func (h *Handler) ShowTodayPage(c *fiber.Ctx) error {
	return h.renderBucket(c, models.BucketToday, "today", "Сегодня")
}

func (h *Handler) ShowOverduePage(c *fiber.Ctx) error {
	return h.renderBucket(c, models.BucketOverdue, "overdue", "Просрочено")
}

func (h *Handler) renderBucket(c *fiber.Ctx, bucket models.Bucket, view, title string) error {
	q, err := parseQuery(c, bucket)
	if err != nil {
		return err
	}
	q.Bucket = bucket

	data, err := h.Ledger.Bucket(c.UserContext(), q)
	if err != nil {
		return err
	}

	session := auth.Session(c)
	pendingID, deadline, pending := h.Ledger.Deleter.Pending()
	return c.Render(view, fiber.Map{
		"Title":         title,
		"CurrentPage":   view,
		"View":          data,
		"Statuses":      models.Statuses,
		"Recipients":    h.Recipients,
		"Session":       session,
		"IsAdmin":       session.IsAdmin(),
		"PendingDelete": pending,
		"PendingID":     pendingID,
		"Deadline":      deadline,
	})
}
