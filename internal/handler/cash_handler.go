package handler

import (
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CashHandler struct {
	service service.CashService
}

func NewCashHandler(s service.CashService) *CashHandler {
	return &CashHandler{service: s}
}

type openDrawerRequest struct {
	Store  model.Warehouse `json:"store"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *CashHandler) parseEntry(c *fiber.Ctx) (*service.CashEntryRequest, error) {
	var req service.CashEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, err
	}
	if req.Store == "" {
		req.Store = storeParam(c)
	}
	return &req, nil
}

// CreateCash records a cash in/out movement.
func (h *CashHandler) CreateCash(c *fiber.Ctx) error {
	req, err := h.parseEntry(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	entry, err := h.service.Record(c.UserContext(), req, getActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Cash entry recorded", "data": entry})
}

// CreateDrawerEntry records an opening or closing balance.
func (h *CashHandler) CreateDrawerEntry(c *fiber.Ctx) error {
	req, err := h.parseEntry(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	entry, err := h.service.RecordBalance(c.UserContext(), req, getActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Drawer balance recorded", "data": entry})
}

func (h *CashHandler) OpenDrawer(c *fiber.Ctx) error {
	var req openDrawerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Store == "" {
		req.Store = storeParam(c)
	}

	entry, err := h.service.OpenDrawer(c.UserContext(), req.Store, req.Amount, getActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Drawer opened", "data": entry})
}

func (h *CashHandler) DeleteEntry(c *fiber.Ctx) error {
	entryID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cash entry ID"})
	}

	if err := h.service.Delete(c.UserContext(), entryID, getActor(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cash entry deleted"})
}

func (h *CashHandler) GetEntries(c *fiber.Ctx) error {
	day, err := parseDay(c.Query("date"), today())
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date"})
	}

	entries, err := h.service.List(c.UserContext(), storeParam(c), day)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(entries)
}

func (h *CashHandler) GetSummary(c *fiber.Ctx) error {
	day, err := parseDay(c.Query("date"), today())
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date"})
	}

	summary, err := h.service.Summary(c.UserContext(), storeParam(c), day)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
