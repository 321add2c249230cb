package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stocker-api/internal/application/dto"
	"github.com/jhoicas/stocker-api/internal/application/usecase"
)

// CategoryHandler CRUD de categorías (protegido).
type CategoryHandler struct {
	uc *usecase.CategoryUseCase
}

// NewCategoryHandler construye el handler.
func NewCategoryHandler(uc *usecase.CategoryUseCase) *CategoryHandler {
	return &CategoryHandler{uc: uc}
}

// Create godoc
// @Summary      Crear categoría
// @Tags         categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CategoryRequest  true  "Datos de la categoría"
// @Success      201   {object}  dto.CategoryResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/categories [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	var in dto.CategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), ownerID, in)
	if err != nil {
		return writeError(c, err, "categoría no encontrada")
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener categoría
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la categoría"
// @Success      200  {object}  dto.CategoryResponse
// @Router       /api/categories/{id} [get]
func (h *CategoryHandler) GetByID(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	out, err := h.uc.GetByID(c.UserContext(), ownerID, c.Params("id"))
	if err != nil {
		return writeError(c, err, "categoría no encontrada")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar categorías
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Param        q  query  string  false  "Buscar por nombre"
// @Success      200  {array}  dto.CategoryResponse
// @Router       /api/categories [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.UserContext(), ownerID, c.Query("q"), limit, offset)
	if err != nil {
		return writeError(c, err, "categoría no encontrada")
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar categoría
// @Tags         categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la categoría"
// @Param        body  body  dto.CategoryRequest  true  "Datos de la categoría"
// @Success      200   {object}  dto.CategoryResponse
// @Router       /api/categories/{id} [put]
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	var in dto.CategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), ownerID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err, "categoría no encontrada")
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar categoría
// @Description  Los productos de la categoría quedan sin categoría.
// @Tags         categories
// @Security     Bearer
// @Param        id   path  string  true  "ID de la categoría"
// @Success      204
// @Router       /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	if err := h.uc.Delete(c.UserContext(), ownerID, c.Params("id")); err != nil {
		return writeError(c, err, "categoría no encontrada")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SupplierHandler CRUD de proveedores (protegido).
type SupplierHandler struct {
	uc *usecase.SupplierUseCase
}

// NewSupplierHandler construye el handler.
func NewSupplierHandler(uc *usecase.SupplierUseCase) *SupplierHandler {
	return &SupplierHandler{uc: uc}
}

// Create godoc
// @Summary      Crear proveedor
// @Tags         suppliers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SupplierRequest  true  "Datos del proveedor"
// @Success      201   {object}  dto.SupplierResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/suppliers [post]
func (h *SupplierHandler) Create(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	var in dto.SupplierRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), ownerID, in)
	if err != nil {
		return writeError(c, err, "proveedor no encontrado")
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener proveedor
// @Tags         suppliers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del proveedor"
// @Success      200  {object}  dto.SupplierResponse
// @Router       /api/suppliers/{id} [get]
func (h *SupplierHandler) GetByID(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	out, err := h.uc.GetByID(c.UserContext(), ownerID, c.Params("id"))
	if err != nil {
		return writeError(c, err, "proveedor no encontrado")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar proveedores
// @Tags         suppliers
// @Security     Bearer
// @Produce      json
// @Param        q  query  string  false  "Buscar por nombre"
// @Success      200  {array}  dto.SupplierResponse
// @Router       /api/suppliers [get]
func (h *SupplierHandler) List(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.UserContext(), ownerID, c.Query("q"), limit, offset)
	if err != nil {
		return writeError(c, err, "proveedor no encontrado")
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar proveedor
// @Tags         suppliers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del proveedor"
// @Param        body  body  dto.SupplierRequest  true  "Datos del proveedor"
// @Success      200   {object}  dto.SupplierResponse
// @Router       /api/suppliers/{id} [put]
func (h *SupplierHandler) Update(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	var in dto.SupplierRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), ownerID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err, "proveedor no encontrado")
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar proveedor
// @Description  Rechazado con 409 si tiene órdenes de compra abiertas.
// @Tags         suppliers
// @Security     Bearer
// @Param        id   path  string  true  "ID del proveedor"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/suppliers/{id} [delete]
func (h *SupplierHandler) Delete(c *fiber.Ctx) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return nil
	}
	if err := h.uc.Delete(c.UserContext(), ownerID, c.Params("id")); err != nil {
		return writeError(c, err, "proveedor no encontrado")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
