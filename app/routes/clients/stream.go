package clients

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/ahmedkatalov/fowWorkProject/app/routes/httperr"
	"github.com/ahmedkatalov/fowWorkProject/app/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const keepAlive = 15 * time.Second

// StreamAPI pushes the filtered bucket as server-sent events after every change.
func (h *Handler) StreamAPI(c *fiber.Ctx) error {
	q, err := parseQuery(c, models.BucketToday)
	if err != nil {
		return httperr.JSON(c, h.Logger, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	snapshots, cancel := h.Ledger.Feed.Subscribe()
	ledger := h.Ledger
	logger := h.Logger

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		for {
			select {
			case snap, ok := <-snapshots:
				if !ok {
					return
				}
				view := services.View(snap.Clients, q, ledger.Clock())
				if err := writeEvent(w, "snapshot", view); err != nil {
					logger.Debug("stream closed", zap.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
	return nil
}

func writeEvent(w *bufio.Writer, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}
