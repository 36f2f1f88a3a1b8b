package handler

import (
	"fmt"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

type deleteOrdersRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// orderFilter reads item_id, status, warehouse, from and to (YYYY-MM-DD, inclusive).
func orderFilter(c *fiber.Ctx) (repository.OrderFilter, error) {
	var f repository.OrderFilter
	if v := c.Query("item_id"); v != "" {
		id, err := parseUUID(v)
		if err != nil {
			return f, fmt.Errorf("invalid item_id")
		}
		f.ItemID = &id
	}
	if v := c.Query("status"); v != "" {
		st, err := model.ParseOrderStatus(v)
		if err != nil {
			return f, err
		}
		f.Status = &st
	}
	if v := c.Query("warehouse"); v != "" {
		w := model.Warehouse(v)
		if !w.Valid() {
			return f, fmt.Errorf("unknown warehouse %q", v)
		}
		f.Warehouse = w
	}
	if v := c.Query("from"); v != "" {
		from, err := parseDay(v, time.Time{})
		if err != nil {
			return f, fmt.Errorf("invalid from date")
		}
		f.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := parseDay(v, time.Time{})
		if err != nil {
			return f, fmt.Errorf("invalid to date")
		}
		end := to.AddDate(0, 0, 1)
		f.To = &end
	}
	return f, nil
}

func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req service.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.service.Create(c.UserContext(), &req, getActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Order created", "data": order})
}

func (h *OrderHandler) EditOrder(c *fiber.Ctx) error {
	orderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var req service.EditOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.service.Edit(c.UserContext(), orderID, &req, getActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order updated", "data": order})
}

func (h *OrderHandler) TransitionOrder(c *fiber.Ctx) error {
	orderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var req service.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.service.Transition(c.UserContext(), orderID, &req, getActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order status updated", "data": order})
}

func (h *OrderHandler) ResetOrder(c *fiber.Ctx) error {
	orderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := h.service.Reset(c.UserContext(), orderID, getActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order reset", "data": order})
}

func (h *OrderHandler) DeleteOrders(c *fiber.Ctx) error {
	var req deleteOrdersRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	n, err := h.service.Delete(c.UserContext(), req.IDs, getActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Orders deleted", "deleted": n})
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	orderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := h.service.Get(c.UserContext(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	filter, err := orderFilter(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	orders, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders)
}

// ExportOrders streams the filtered orders as CSV.
func (h *OrderHandler) ExportOrders(c *fiber.Ctx) error {
	filter, err := orderFilter(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="orders-%s.csv"`, time.Now().Format("20060102")))
	if err := h.service.Export(c.UserContext(), filter, c.Response().BodyWriter()); err != nil {
		c.Response().ResetBody()
		c.Response().Header.Del(fiber.HeaderContentDisposition)
		return writeError(c, err)
	}
	return nil
}
