package clients

import (
	"bytes"
	"fmt"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/ahmedkatalov/fowWorkProject/app/routes/auth"
	"github.com/ahmedkatalov/fowWorkProject/app/routes/httperr"
	"github.com/ahmedkatalov/fowWorkProject/app/services"
	"github.com/gofiber/fiber/v2"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) ListClientsAPI(c *fiber.Ctx) error {
	q, err := parseQuery(c, models.BucketToday)
	if err != nil {
		return httperr.JSON(c, h.Logger, err)
	}
	view, err := h.Ledger.Bucket(c.UserContext(), q)
	if err != nil {
		return httperr.JSON(c, h.Logger, err)
	}
	return c.JSON(view)
}

func (h *Handler) CreateClientAPI(c *fiber.Ctx) error {
	var form services.NewClientForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	rec, err := h.Ledger.CreateClient(c.UserContext(), &form, auth.Session(c))
	if err != nil {
		return httperr.JSON(c, h.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (h *Handler) ChangeStatusAPI(c *fiber.Ctx) error {
	var req services.StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	rec, err := h.Ledger.ChangeStatus(c.UserContext(), pathID(c), req, auth.Session(c))
	if err != nil {
		return httperr.JSON(c, h.Logger, err)
	}
	return c.JSON(rec)
}

func (h *Handler) DeleteClientAPI(c *fiber.Ctx) error {
	id := pathID(c)
	deadline, err := h.Ledger.ScheduleDelete(c.UserContext(), id, auth.Session(c))
	if err != nil {
		return httperr.JSON(c, h.Logger, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"id":       id,
		"deadline": deadline,
		"message":  "Клиент будет удалён",
	})
}

func (h *Handler) RestoreClientAPI(c *fiber.Ctx) error {
	id := pathID(c)
	if !h.Ledger.RestoreDelete(id) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Nothing to restore"})
	}
	return c.JSON(fiber.Map{"id": id, "message": "Удаление отменено"})
}

func (h *Handler) PendingDeleteAPI(c *fiber.Ctx) error {
	id, deadline, ok := h.Ledger.Deleter.Pending()
	if !ok {
		return c.JSON(fiber.Map{"pending": false})
	}
	return c.JSON(fiber.Map{"pending": true, "id": id, "deadline": deadline})
}

func (h *Handler) ExportAPI(c *fiber.Ctx) error {
	q, err := parseQuery(c, models.BucketToday)
	if err != nil {
		return httperr.JSON(c, h.Logger, err)
	}

	var buf bytes.Buffer
	if err := h.Ledger.ExportBucket(c.UserContext(), &buf, q); err != nil {
		return httperr.JSON(c, h.Logger, err)
	}
	c.Attachment(fmt.Sprintf("clients_%s_%s.xlsx", q.Bucket, h.Ledger.Clock().Format(services.DateLayout)))
	c.Set(fiber.HeaderContentType, xlsxMIME)
	return c.Send(buf.Bytes())
}
