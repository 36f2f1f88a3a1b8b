package handler

import (
	"time"

	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

const headerIdempotencyKey = "Idempotency-Key"

type ReceiptHandler struct {
	service service.ReceiptService
}

func NewReceiptHandler(s service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{service: s}
}

func parseReceiptRequest(c *fiber.Ctx) (*service.PrintReceiptRequest, error) {
	var req service.PrintReceiptRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, err
	}
	if req.Store == "" {
		req.Store = storeParam(c)
	}
	return &req, nil
}

// PreviewReceipt prices and reconciles a draft without committing it.
func (h *ReceiptHandler) PreviewReceipt(c *fiber.Ctx) error {
	req, err := parseReceiptRequest(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	preview, err := h.service.Preview(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(preview)
}

func (h *ReceiptHandler) PrintReceipt(c *fiber.Ctx) error {
	req, err := parseReceiptRequest(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	receipt, err := h.service.Print(c.UserContext(), req, c.Get(headerIdempotencyKey), getActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Receipt printed", "data": receipt})
}

func (h *ReceiptHandler) GetReceipt(c *fiber.Ctx) error {
	receiptID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid receipt ID"})
	}

	receipt, err := h.service.Get(c.UserContext(), receiptID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(receipt)
}

// GetReceipts lists receipts for store between from and to (inclusive days).
func (h *ReceiptHandler) GetReceipts(c *fiber.Ctx) error {
	filter := repository.ReceiptFilter{
		Store:         storeParam(c),
		IncludeVoided: c.QueryBool("include_voided", false),
	}
	if v := c.Query("from"); v != "" {
		from, err := parseDay(v, time.Time{})
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid from date"})
		}
		filter.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := parseDay(v, time.Time{})
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid to date"})
		}
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}

	receipts, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(receipts)
}

func (h *ReceiptHandler) VoidReceipt(c *fiber.Ctx) error {
	receiptID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid receipt ID"})
	}

	receipt, err := h.service.Void(c.UserContext(), receiptID, getActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Receipt voided", "data": receipt})
}

func (h *ReceiptHandler) ReprintReceipt(c *fiber.Ctx) error {
	receiptID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid receipt ID"})
	}

	receipt, err := h.service.Reprint(c.UserContext(), receiptID, getActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Receipt reprinted", "data": receipt})
}

func (h *ReceiptHandler) DeleteReceipt(c *fiber.Ctx) error {
	receiptID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid receipt ID"})
	}

	if err := h.service.Delete(c.UserContext(), receiptID, getActor(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Receipt deleted"})
}
