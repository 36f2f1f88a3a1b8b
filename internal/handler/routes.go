package handler

import (
	"go-retail-pos/internal/middleware"
	"go-retail-pos/internal/model"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Inventory *InventoryHandler
	Orders    *OrderHandler
	Receipts  *ReceiptHandler
	Cash      *CashHandler
	Dashboard *DashboardHandler
}

// RegisterRoutes mounts the authenticated API under /api/v1.
func RegisterRoutes(app fiber.Router, h Handlers) {
	api := app.Group("/api/v1")
	protected := api.Group("", middleware.RequireAuth())

	// Operator info (echo of the token claims)
	protected.Get("/me", func(c *fiber.Ctx) error {
		actor := getActor(c)
		privileges, _ := c.Locals(middleware.LocalPrivileges).([]string)
		return c.JSON(fiber.Map{"id": actor.ID, "name": actor.Name, "store": actor.Store, "privileges": privileges})
	})
	protected.Get("/privileges", func(c *fiber.Ctx) error {
		return c.JSON(model.DefaultPrivileges)
	})

	// Catalog
	protected.Get("/designs", h.Inventory.GetDesigns)
	protected.Get("/designs/:id", h.Inventory.GetDesign)
	protected.Post("/designs", middleware.RequirePrivilege(model.PrivCatalogManage), h.Inventory.CreateDesign)
	protected.Put("/designs/:id", middleware.RequirePrivilege(model.PrivCatalogManage), h.Inventory.UpdateDesign)

	// Items & stock ledger
	protected.Post("/items", middleware.RequirePrivilege(model.PrivCatalogManage), h.Inventory.CreateItems)
	protected.Get("/items/:id", h.Inventory.GetItem)
	protected.Get("/items/:id/movements", h.Inventory.GetMovements)
	protected.Post("/items/:id/stock/delta", middleware.RequirePrivilege(model.PrivStockAdjust), h.Inventory.ApplyDelta)
	protected.Put("/items/:id/stock", middleware.RequirePrivilege(model.PrivStockAdjust), h.Inventory.SetStock)

	// Orders
	protected.Get("/orders", h.Orders.GetOrders)
	protected.Get("/orders/export", h.Orders.ExportOrders)
	protected.Get("/orders/:id", h.Orders.GetOrder)
	protected.Post("/orders", middleware.RequirePrivilege(model.PrivOrderManage), h.Orders.CreateOrder)
	protected.Patch("/orders/:id", middleware.RequirePrivilege(model.PrivOrderManage), h.Orders.EditOrder)
	protected.Post("/orders/:id/transition", middleware.RequirePrivilege(model.PrivOrderManage), h.Orders.TransitionOrder)
	protected.Post("/orders/:id/reset", middleware.RequirePrivilege(model.PrivOrderManage), h.Orders.ResetOrder)
	protected.Delete("/orders", middleware.RequirePrivilege(model.PrivOrderManage), h.Orders.DeleteOrders)

	// Receipts
	protected.Post("/receipts/preview", h.Receipts.PreviewReceipt)
	protected.Post("/receipts", middleware.RequirePrivilege(model.PrivReceiptPrint), h.Receipts.PrintReceipt)
	protected.Get("/receipts", middleware.RequireAnyPrivilege(model.PrivReceiptPrint, model.PrivReportView), h.Receipts.GetReceipts)
	protected.Get("/receipts/:id", middleware.RequireAnyPrivilege(model.PrivReceiptPrint, model.PrivReportView), h.Receipts.GetReceipt)
	protected.Post("/receipts/:id/reprint", middleware.RequirePrivilege(model.PrivReceiptPrint), h.Receipts.ReprintReceipt)
	protected.Post("/receipts/:id/void", middleware.RequirePrivilege(model.PrivReceiptVoid), h.Receipts.VoidReceipt)
	protected.Delete("/receipts/:id", middleware.RequirePrivilege(model.PrivReceiptDelete), h.Receipts.DeleteReceipt)

	// Cash drawer
	protected.Get("/cash", h.Cash.GetEntries)
	protected.Get("/cash/summary", h.Cash.GetSummary)
	protected.Post("/cash", middleware.RequirePrivilege(model.PrivCashManage), h.Cash.CreateCash)
	protected.Delete("/cash/:id", middleware.RequirePrivilege(model.PrivCashManage), h.Cash.DeleteEntry)
	protected.Post("/cash-drawer", middleware.RequirePrivilege(model.PrivCashManage), h.Cash.CreateDrawerEntry)
	protected.Post("/cash-drawer/open", middleware.RequirePrivilege(model.PrivCashManage), h.Cash.OpenDrawer)
	protected.Delete("/cash-drawer/:id", middleware.RequirePrivilege(model.PrivCashManage), h.Cash.DeleteEntry)

	// Dashboard & reports
	protected.Get("/dashboard/stock-movement", h.Dashboard.GetStockMovement)
	protected.Get("/reports/daily-sales", middleware.RequirePrivilege(model.PrivReportView), h.Dashboard.GetDailySales)
	protected.Get("/reports/payment-methods", middleware.RequirePrivilege(model.PrivReportView), h.Dashboard.GetPaymentMethodSales)
}
