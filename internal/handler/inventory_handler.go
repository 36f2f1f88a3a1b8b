package handler

import (
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// InventoryHandler serves the catalog and the stock ledger.
type InventoryHandler struct {
	catalog service.CatalogService
	stock   service.StockService
}

func NewInventoryHandler(catalog service.CatalogService, stock service.StockService) *InventoryHandler {
	return &InventoryHandler{catalog: catalog, stock: stock}
}

type stockDeltaRequest struct {
	Delta  int    `json:"delta"`
	Remark string `json:"remark"`
}

type stockSetRequest struct {
	Stock  *int   `json:"stock"`
	Remark string `json:"remark"`
}

func (h *InventoryHandler) CreateDesign(c *fiber.Ctx) error {
	var design model.Design
	if err := c.BodyParser(&design); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.catalog.CreateDesign(c.UserContext(), &design, getActor(c)); err != nil {
		return writeError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Design created", "data": design})
}

func (h *InventoryHandler) UpdateDesign(c *fiber.Ctx) error {
	designID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid design ID"})
	}

	var design model.Design
	if err := c.BodyParser(&design); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.catalog.UpdateDesign(c.UserContext(), designID, &design, getActor(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Design updated", "data": updated})
}

func (h *InventoryHandler) GetDesigns(c *fiber.Ctx) error {
	designs, err := h.catalog.ListDesigns(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(designs)
}

func (h *InventoryHandler) GetDesign(c *fiber.Ctx) error {
	designID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid design ID"})
	}

	design, err := h.catalog.GetDesign(c.UserContext(), designID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(design)
}

func (h *InventoryHandler) CreateItems(c *fiber.Ctx) error {
	var req service.CreateItemsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	items, err := h.catalog.CreateItems(c.UserContext(), &req, getActor(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Items created", "data": items})
}

func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	itemID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	item, err := h.stock.GetItem(c.UserContext(), itemID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(item)
}

// ApplyDelta handles relative stock changes.
func (h *InventoryHandler) ApplyDelta(c *fiber.Ctx) error {
	itemID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var req stockDeltaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	item, err := h.stock.ApplyDelta(c.UserContext(), itemID, req.Delta, req.Remark, getActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock adjusted", "data": item})
}

// SetStock handles manual absolute corrections.
func (h *InventoryHandler) SetStock(c *fiber.Ctx) error {
	itemID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var req stockSetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Stock == nil {
		return c.Status(400).JSON(fiber.Map{"error": "stock is required"})
	}

	item, err := h.stock.SetStock(c.UserContext(), itemID, *req.Stock, req.Remark, getActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock corrected", "data": item})
}

func (h *InventoryHandler) GetMovements(c *fiber.Ctx) error {
	itemID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	movements, err := h.stock.GetMovements(c.UserContext(), itemID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(movements)
}
