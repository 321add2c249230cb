package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stocker-api/internal/application/dto"
	"github.com/jhoicas/stocker-api/internal/application/purchasing"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
	"github.com/jhoicas/stocker-api/internal/infrastructure/pdf"
)

const orderNotFound = "orden de compra no encontrada"

// PurchaseOrderHandler flujo de órdenes de compra (protegido).
type PurchaseOrderHandler struct {
	uc *purchasing.UseCase
}

// NewPurchaseOrderHandler construye el handler.
func NewPurchaseOrderHandler(uc *purchasing.UseCase) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de compra
// @Description  Nace en DRAFT; con líneas pasa a SUBMITTED.
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "Proveedor, fechas y líneas"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	var in dto.CreatePurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	order, err := h.uc.Create(c.UserContext(), ownerID, GetUserID(c), in)
	if err != nil {
		return writeError(c, err, "proveedor o producto no encontrado")
	}
	return c.Status(fiber.StatusCreated).JSON(purchasing.ToResponse(order))
}

// List godoc
// @Summary      Listar órdenes de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        status       query  string  false  "DRAFT | SUBMITTED | PARTIAL | RECEIVED | CANCELLED"
// @Param        supplier_id  query  string  false  "Filtrar por proveedor"
// @Success      200  {object}  dto.PurchaseOrderListResponse
// @Router       /api/purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	limit, offset := pageParams(c)
	list, err := h.uc.List(c.UserContext(), repository.PurchaseOrderFilter{
		OwnerID:    ownerID,
		Status:     c.Query("status"),
		SupplierID: c.Query("supplier_id"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return writeError(c, err, orderNotFound)
	}
	out := dto.PurchaseOrderListResponse{
		Items: make([]dto.PurchaseOrderResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, o := range list {
		out.Items = append(out.Items, *purchasing.ToResponse(o))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	order, err := h.uc.Get(c.UserContext(), ownerID, c.Params("id"))
	if err != nil {
		return writeError(c, err, orderNotFound)
	}
	return c.JSON(purchasing.ToResponse(order))
}

// Update godoc
// @Summary      Actualizar cabecera de la orden
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.UpdatePurchaseOrderRequest  true  "Campos de cabecera"
// @Success      200   {object}  dto.PurchaseOrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [put]
func (h *PurchaseOrderHandler) Update(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	var in dto.UpdatePurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	order, err := h.uc.Update(c.UserContext(), ownerID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err, orderNotFound)
	}
	return c.JSON(purchasing.ToResponse(order))
}

// AddLine godoc
// @Summary      Agregar o actualizar línea
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.AddPurchaseOrderLineRequest  true  "item_id, quantity_ordered, unit_cost"
// @Success      200   {object}  dto.PurchaseOrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/lines [post]
func (h *PurchaseOrderHandler) AddLine(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	var in dto.AddPurchaseOrderLineRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	order, err := h.uc.AddLine(c.UserContext(), ownerID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err, "orden o producto no encontrado")
	}
	return c.JSON(purchasing.ToResponse(order))
}

// Receive godoc
// @Summary      Recibir mercancía de una línea
// @Description  La cantidad se acota a lo pendiente. Sobre una orden cerrada no hace nada (received = 0).
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string  true  "ID de la orden"
// @Param        lineId  path  string  true  "ID de la línea"
// @Param        body    body  dto.ReceiveLineRequest  true  "Cantidad recibida"
// @Success      200     {object}  dto.ReceiveResponse
// @Router       /api/purchase-orders/{id}/lines/{lineId}/receive [post]
func (h *PurchaseOrderHandler) Receive(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	var in dto.ReceiveLineRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.Receive(c.UserContext(), ownerID, GetUserID(c), c.Params("id"), c.Params("lineId"), in.Quantity)
	if err != nil {
		return writeError(c, err, "orden o línea no encontrada")
	}
	return c.JSON(purchasing.ToReceiveResponse(res))
}

// Cancel godoc
// @Summary      Cancelar orden de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	order, err := h.uc.Cancel(c.UserContext(), ownerID, c.Params("id"))
	if err != nil {
		return writeError(c, err, orderNotFound)
	}
	return c.JSON(purchasing.ToResponse(order))
}

// DownloadPDF godoc
// @Summary      Descargar orden de compra en PDF
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/pdf [get]
func (h *PurchaseOrderHandler) DownloadPDF(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	doc, order, err := h.uc.PDF(c.UserContext(), ownerID, c.Params("id"))
	if err != nil {
		return writeError(c, err, orderNotFound)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.pdf"`, pdf.OrderNumber(order.ID)))
	return c.Send(doc)
}
