package handler

import (
	"strconv"

	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.ReportService
}

func NewDashboardHandler(s service.ReportService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStockMovement returns daily inbound/outbound totals for the chart.
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid days"})
	}

	data, err := h.service.GetStockMovement(c.UserContext(), days)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(data)
}

func (h *DashboardHandler) salesRange(c *fiber.Ctx) (service.SalesRange, error) {
	r := service.SalesRange{Store: storeParam(c)}
	var err error
	if r.From, err = parseDay(c.Query("from"), today()); err != nil {
		return r, err
	}
	if r.To, err = parseDay(c.Query("to"), r.From); err != nil {
		return r, err
	}
	return r, nil
}

func (h *DashboardHandler) GetDailySales(c *fiber.Ctx) error {
	r, err := h.salesRange(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date range"})
	}

	data, err := h.service.DailySales(c.UserContext(), r)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(data)
}

func (h *DashboardHandler) GetPaymentMethodSales(c *fiber.Ctx) error {
	r, err := h.salesRange(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date range"})
	}

	data, err := h.service.PaymentMethodSales(c.UserContext(), r)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(data)
}
