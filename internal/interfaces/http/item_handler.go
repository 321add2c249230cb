package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stocker-api/internal/application/dto"
	"github.com/jhoicas/stocker-api/internal/application/inventory"
	"github.com/jhoicas/stocker-api/internal/application/usecase"
	"github.com/jhoicas/stocker-api/internal/domain/repository"
)

const itemNotFound = "producto no encontrado"

// ItemHandler maneja productos y su libro de movimientos (protegido).
type ItemHandler struct {
	uc     *usecase.ItemUseCase
	ledger *inventory.LedgerUseCase
}

// NewItemHandler construye el handler.
func NewItemHandler(uc *usecase.ItemUseCase, ledger *inventory.LedgerUseCase) *ItemHandler {
	return &ItemHandler{uc: uc, ledger: ledger}
}

// Create godoc
// @Summary      Crear producto
// @Description  initial_quantity se registra como ajuste en el libro de stock.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), ownerID, GetUserID(c), in)
	if err != nil {
		return writeError(c, err, itemNotFound)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	out, err := h.uc.GetByID(c.UserContext(), ownerID, c.Params("id"))
	if err != nil {
		return writeError(c, err, itemNotFound)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        q            query  string  false  "Busca en nombre, SKU y categoría"
// @Param        low          query  bool    false  "Solo bajo stock"
// @Param        category_id  query  string  false  "Filtrar por categoría"
// @Param        supplier_id  query  string  false  "Filtrar por proveedor"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ItemListResponse
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.UserContext(), repository.ItemFilter{
		OwnerID:    ownerID,
		Query:      c.Query("q"),
		LowOnly:    c.QueryBool("low", false),
		CategoryID: c.Query("category_id"),
		SupplierID: c.Query("supplier_id"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return writeError(c, err, itemNotFound)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Description  on_hand no se modifica aquí: usar movimientos.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateItemRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/items/{id} [put]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), ownerID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err, itemNotFound)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar producto
// @Description  Rechazado con 409 si el producto tiene movimientos o líneas de órdenes de compra.
// @Tags         items
// @Security     Bearer
// @Param        id   path  string  true  "ID del producto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [delete]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	if err := h.uc.Delete(c.UserContext(), ownerID, c.Params("id")); err != nil {
		return writeError(c, err, itemNotFound)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetSuppliers godoc
// @Summary      Reemplazar proveedores del producto
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.SetSuppliersRequest  true  "IDs de proveedores"
// @Success      200   {object}  dto.ItemResponse
// @Router       /api/items/{id}/suppliers [put]
func (h *ItemHandler) SetSuppliers(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	var in dto.SetSuppliersRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SetSuppliers(c.UserContext(), ownerID, c.Params("id"), in.SupplierIDs)
	if err != nil {
		return writeError(c, err, itemNotFound)
	}
	return c.JSON(out)
}

// ApplyMovement godoc
// @Summary      Registrar movimiento de stock
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.ApplyMovementRequest  true  "type (IN|OUT|ADJ), quantity, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/items/{id}/movements [post]
func (h *ItemHandler) ApplyMovement(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.ledger.ApplyFromRequest(c.UserContext(), ownerID, GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err, itemNotFound)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// History godoc
// @Summary      Historial de movimientos del producto
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/items/{id}/movements [get]
func (h *ItemHandler) History(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	limit, offset := pageParams(c)
	list, err := h.ledger.History(c.UserContext(), ownerID, c.Params("id"), limit, offset)
	if err != nil {
		return writeError(c, err, itemNotFound)
	}
	out := dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, m := range list {
		out.Items = append(out.Items, *inventory.ToMovementResponse(m))
	}
	return c.JSON(out)
}
