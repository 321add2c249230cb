package http

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stocker-api/internal/application/dto"
	"github.com/jhoicas/stocker-api/internal/application/inventory"
	"github.com/jhoicas/stocker-api/internal/application/reporting"
	"github.com/jhoicas/stocker-api/internal/domain"
	"github.com/jhoicas/stocker-api/internal/infrastructure/export"
)

// ReportHandler reportes, alertas y exportaciones (protegido).
type ReportHandler struct {
	uc            *reporting.UseCase
	replenishment *inventory.ReplenishmentUseCase
	expiryDays    int
}

// NewReportHandler construye el handler. expiryDays es la ventana por defecto de /expiring.
func NewReportHandler(uc *reporting.UseCase, replenishment *inventory.ReplenishmentUseCase, expiryDays int) *ReportHandler {
	if expiryDays <= 0 {
		expiryDays = 7
	}
	return &ReportHandler{uc: uc, replenishment: replenishment, expiryDays: expiryDays}
}

// Summary godoc
// @Summary      Totales del inventario
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventorySummaryDTO
// @Router       /api/reports/summary [get]
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	out, err := h.uc.InventorySummary(c.UserContext(), ownerID)
	if err != nil {
		return writeError(c, err, "")
	}
	return c.JSON(out)
}

// Dashboard godoc
// @Summary      Dashboard
// @Description  Resumen, movimientos de los últimos 30 días, bajo stock y totales por categoría.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardDTO
// @Router       /api/reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	out, err := h.uc.Dashboard(c.UserContext(), ownerID)
	if err != nil {
		return writeError(c, err, "")
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Movimientos por período
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start  query  string  false  "YYYY-MM-DD (por defecto hoy - 29 días)"
// @Param        end    query  string  false  "YYYY-MM-DD (por defecto hoy)"
// @Success      200  {object}  dto.MovementSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/movements [get]
func (h *ReportHandler) Movements(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	var req dto.MovementReportRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.MovementSummary(c.UserContext(), ownerID, req)
	if err != nil {
		return writeError(c, err, "")
	}
	return c.JSON(out)
}

// Categories godoc
// @Summary      Totales por categoría
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.GroupRollupDTO
// @Router       /api/reports/categories [get]
func (h *ReportHandler) Categories(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	out, err := h.uc.CategoryRollup(c.UserContext(), ownerID)
	if err != nil {
		return writeError(c, err, "")
	}
	return c.JSON(out)
}

// Suppliers godoc
// @Summary      Totales por proveedor
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.GroupRollupDTO
// @Router       /api/reports/suppliers [get]
func (h *ReportHandler) Suppliers(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	out, err := h.uc.SupplierRollup(c.UserContext(), ownerID)
	if err != nil {
		return writeError(c, err, "")
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos en o bajo el punto de reorden
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Límite"  default(50)
// @Success      200  {array}  dto.LowStockItemDTO
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	out, err := h.uc.LowStockList(c.UserContext(), ownerID, c.QueryInt("limit", 50))
	if err != nil {
		return writeError(c, err, "")
	}
	return c.JSON(out)
}

// Expiring godoc
// @Summary      Productos por vencer
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Ventana en días (incluye vencidos)"
// @Success      200  {array}  dto.ExpiringItemDTO
// @Router       /api/reports/expiring [get]
func (h *ReportHandler) Expiring(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	out, err := h.uc.ExpiringItems(c.UserContext(), ownerID, c.QueryInt("days", h.expiryDays))
	if err != nil {
		return writeError(c, err, "")
	}
	return c.JSON(out)
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Productos bajo el punto de reorden con la cantidad sugerida para llegar a 1.5 × reorden.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReplenishmentSuggestionDTO
// @Router       /api/reports/replenishment [get]
func (h *ReportHandler) Replenishment(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	out, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), ownerID)
	if err != nil {
		return writeError(c, err, "")
	}
	return c.JSON(out)
}

// InventoryCSV godoc
// @Summary      Exportar inventario (CSV)
// @Tags         reports
// @Security     Bearer
// @Produce      text/csv
// @Param        encoding  query  string  false  "utf-8 | windows-1252"
// @Success      200  {file}  binary
// @Router       /api/reports/inventory.csv [get]
func (h *ReportHandler) InventoryCSV(c *fiber.Ctx) error {
	return h.csv(c, "inventory.csv", h.uc.InventoryTable)
}

// SuppliersCSV godoc
// @Summary      Exportar proveedores (CSV)
// @Tags         reports
// @Security     Bearer
// @Produce      text/csv
// @Param        encoding  query  string  false  "utf-8 | windows-1252"
// @Success      200  {file}  binary
// @Router       /api/reports/suppliers.csv [get]
func (h *ReportHandler) SuppliersCSV(c *fiber.Ctx) error {
	return h.csv(c, "suppliers.csv", h.uc.SupplierTable)
}

// InventoryXLSX godoc
// @Summary      Exportar inventario (Excel)
// @Tags         reports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  binary
// @Router       /api/reports/inventory.xlsx [get]
func (h *ReportHandler) InventoryXLSX(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	table, err := h.uc.InventoryTable(c.UserContext(), ownerID)
	if err != nil {
		return writeError(c, err, "")
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, table); err != nil {
		return writeError(c, err, "")
	}
	return sendFile(c, "inventory.xlsx", export.ContentTypeXLSX, buf.Bytes())
}

type tableFunc func(ctx context.Context, ownerID string) (*reporting.Table, error)

func (h *ReportHandler) csv(c *fiber.Ctx, filename string, build tableFunc) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	enc, err := export.ParseEncoding(c.Query("encoding"))
	if err != nil {
		return writeError(c, domain.Invalid("encoding", err.Error()), "")
	}
	table, err := build(c.UserContext(), ownerID)
	if err != nil {
		return writeError(c, err, "")
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, table, enc); err != nil {
		return writeError(c, err, "")
	}
	return sendFile(c, filename, export.CSVContentType(enc), buf.Bytes())
}

func sendFile(c *fiber.Ctx, filename, contentType string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(body)
}
