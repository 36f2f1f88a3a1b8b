package handler

import (
	"errors"
	"log/slog"
	"time"

	"go-retail-pos/internal/middleware"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// getActor reads operator info from the JWT context (set by RequireAuth)
func getActor(c *fiber.Ctx) service.Actor {
	actor := service.Actor{ID: "system", Name: "Unknown"}
	if id, ok := c.Locals(middleware.LocalOperatorID).(string); ok && id != "" {
		actor.ID = id
	}
	if name, ok := c.Locals(middleware.LocalOperatorName).(string); ok && name != "" {
		actor.Name = name
	}
	if store, ok := c.Locals(middleware.LocalStore).(string); ok {
		actor.Store = store
	}
	return actor
}

// storeParam returns the store query parameter, falling back to the operator's store.
func storeParam(c *fiber.Ctx) model.Warehouse {
	if s := c.Query("store"); s != "" {
		return model.Warehouse(s)
	}
	return model.Warehouse(getActor(c).Store)
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// parseDay parses a YYYY-MM-DD query value; empty yields fallback.
func parseDay(v string, fallback time.Time) (time.Time, error) {
	if v == "" {
		return fallback, nil
	}
	return time.ParseInLocation(dateLayout, v, time.Local)
}

func today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// writeError maps service errors onto HTTP responses.
func writeError(c *fiber.Ctx, err error) error {
	var (
		ve  *service.ValidationError
		pme *service.PaymentMismatchError
		ise *service.InsufficientStockError
		ive *service.InvalidStockError
		bue *service.BackendUnavailableError
	)
	switch {
	case errors.As(err, &ve):
		return c.Status(400).JSON(fiber.Map{"error": ve.Error(), "field": ve.Field, "tag": ve.Tag})
	case errors.As(err, &pme):
		return c.Status(422).JSON(fiber.Map{
			"error":     pme.Error(),
			"kind":      pme.Kind,
			"total":     pme.Total.StringFixed(2),
			"paid":      pme.Paid.StringFixed(2),
			"remaining": pme.Remaining.StringFixed(2),
		})
	case errors.As(err, &ise):
		return c.Status(409).JSON(fiber.Map{"error": ise.Error(), "item_id": ise.ItemID, "stock": ise.Stock, "delta": ise.Delta})
	case errors.As(err, &ive):
		return c.Status(409).JSON(fiber.Map{"error": ive.Error(), "item_id": ive.ItemID, "value": ive.Value})
	case errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrReceiptNotFound),
		errors.Is(err, service.ErrDesignNotFound),
		errors.Is(err, service.ErrCashEntryNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrIllegalTransition),
		errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrReceiptVoided):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &bue):
		slog.Error("backend unavailable", slog.String("op", bue.Op), slog.Any("error", bue.Err), slog.String("path", c.Path()))
		return c.Status(503).JSON(fiber.Map{"error": "Service temporarily unavailable"})
	default:
		slog.Error("unhandled error", slog.Any("error", err), slog.String("path", c.Path()))
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}
