package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stocker-api/internal/application/inventory"
	"github.com/jhoicas/stocker-api/internal/application/purchasing"
	"github.com/jhoicas/stocker-api/internal/application/reporting"
	"github.com/jhoicas/stocker-api/internal/application/usecase"
	"github.com/jhoicas/stocker-api/pkg/jwt"
	"github.com/jhoicas/stocker-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC        *usecase.ItemUseCase
	CategoryUC    *usecase.CategoryUseCase
	SupplierUC    *usecase.SupplierUseCase
	Ledger        *inventory.LedgerUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Purchasing    *purchasing.UseCase
	Reporting     *reporting.UseCase
	ExpiryDays    int
	JWTSecret     string
	AppName       string
	Logger        *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api", withLogger(log.Component("http")))

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	// Admin: todo. Employee: productos (ver, crear, editar), movimientos (ver, registrar),
	// lectura de categorías y proveedores, y reportes en pantalla.
	adminOnly := RequireRole(jwt.RoleAdmin)

	// Items
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC, deps.Ledger)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", itemHandler.Update)
	items.Delete("/:id", adminOnly, itemHandler.Delete)
	items.Put("/:id/suppliers", itemHandler.SetSuppliers)
	items.Get("/:id/movements", itemHandler.History)
	items.Post("/:id/movements", itemHandler.ApplyMovement)

	// Categories
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", adminOnly, categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", adminOnly, categoryHandler.Update)
	categories.Delete("/:id", adminOnly, categoryHandler.Delete)

	// Suppliers
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", adminOnly, supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", adminOnly, supplierHandler.Update)
	suppliers.Delete("/:id", adminOnly, supplierHandler.Delete)

	// Purchase orders
	orders := protected.Group("/purchase-orders", adminOnly)
	orderHandler := NewPurchaseOrderHandler(deps.Purchasing)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Put("/:id", orderHandler.Update)
	orders.Post("/:id/lines", orderHandler.AddLine)
	orders.Post("/:id/lines/:lineId/receive", orderHandler.Receive)
	orders.Post("/:id/cancel", orderHandler.Cancel)
	orders.Get("/:id/pdf", orderHandler.DownloadPDF)

	// Reports
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.Reporting, deps.Replenishment, deps.ExpiryDays)
	reports.Get("/summary", reportHandler.Summary)
	reports.Get("/dashboard", reportHandler.Dashboard)
	reports.Get("/movements", reportHandler.Movements)
	reports.Get("/categories", reportHandler.Categories)
	reports.Get("/suppliers", reportHandler.Suppliers)
	reports.Get("/low-stock", reportHandler.LowStock)
	reports.Get("/expiring", reportHandler.Expiring)
	reports.Get("/replenishment", reportHandler.Replenishment)
	reports.Get("/inventory.csv", adminOnly, reportHandler.InventoryCSV)
	reports.Get("/suppliers.csv", adminOnly, reportHandler.SuppliersCSV)
	reports.Get("/inventory.xlsx", adminOnly, reportHandler.InventoryXLSX)
}
