package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stocker-api/internal/application/dto"
	"github.com/jhoicas/stocker-api/internal/application/inventory"
	"github.com/jhoicas/stocker-api/internal/application/purchasing"
	"github.com/jhoicas/stocker-api/internal/application/reporting"
	"github.com/jhoicas/stocker-api/internal/application/usecase"
	"github.com/jhoicas/stocker-api/internal/domain/entity"
	"github.com/jhoicas/stocker-api/internal/infrastructure/memory"
	"github.com/jhoicas/stocker-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/stocker-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stocker-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers: API completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	s := memory.NewStore()
	ledger := inventory.NewLedgerUseCase(s.TxRunner(), s.Items(), s.Movements(), nil, nil)
	orders := purchasing.NewUseCase(s.TxRunner(), s.PurchaseOrders(), s.Suppliers(), s.Items(), ledger, nil).
		WithPDF(pdf.NewMarotoPDFGenerator("Stocker"))

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ItemUC:        usecase.NewItemUseCase(s.TxRunner(), s.Items(), s.Categories(), s.Suppliers(), ledger),
		CategoryUC:    usecase.NewCategoryUseCase(s.Categories(), s.Items()),
		SupplierUC:    usecase.NewSupplierUseCase(s.TxRunner(), s.Suppliers()),
		Ledger:        ledger,
		Replenishment: inventory.NewReplenishmentUseCase(s.Items()),
		Purchasing:    orders,
		Reporting:     reporting.NewUseCase(s.Reports(), s.Items(), time.UTC),
		ExpiryDays:    7,
		JWTSecret:     testJWTSecret,
		AppName:       "stocker-test",
	})
	return app
}

func tokenFor(t *testing.T, ownerID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, ownerID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func createItem(t *testing.T, app *fiber.App, token, sku string, initial, reorder int64) dto.ItemResponse {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/items", token, map[string]interface{}{
		"sku": sku, "name": "Producto " + sku, "cost_price": "2.50",
		"initial_quantity": initial, "reorder_level": reorder,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var item dto.ItemResponse
	decode(t, resp, &item)
	return item
}

func createSupplier(t *testing.T, app *fiber.App, token, name string) dto.SupplierResponse {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/suppliers", token, dto.SupplierRequest{Name: name})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sp dto.SupplierResponse
	decode(t, resp, &sp)
	return sp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	app := buildAPI(t)
	resp := call(t, app, http.MethodGet, "/health", "", nil)
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestRutasProtegidas_SinToken_Retorna401(t *testing.T) {
	app := buildAPI(t)
	resp := call(t, app, http.MethodGet, "/api/items", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Caso 1: producto con stock inicial, salida y consulta del historial.
func TestItems_MovimientosEHistorial(t *testing.T) {
	app := buildAPI(t)
	tok := tokenFor(t, testOwnerID, pkgjwt.RoleEmployee)
	item := createItem(t, app, tok, "ARZ-1", 10, 5)
	assert.Equal(t, int64(10), item.OnHand)

	resp := call(t, app, http.MethodPost, "/api/items/"+item.ID+"/movements", tok,
		dto.ApplyMovementRequest{Type: entity.MovementTypeOUT, Quantity: 7, Reason: "venta mostrador"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var mov dto.MovementResponse
	decode(t, resp, &mov)
	assert.Equal(t, int64(3), mov.ResultingQuantity)
	assert.Equal(t, int64(-7), mov.Effect)
	require.NotNil(t, mov.CreatedBy)
	assert.Equal(t, testUserID, *mov.CreatedBy)

	resp = call(t, app, http.MethodGet, "/api/items/"+item.ID+"/movements", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hist dto.MovementListResponse
	decode(t, resp, &hist)
	require.Len(t, hist.Items, 2)
	assert.Equal(t, mov.ID, hist.Items[0].ID, "más reciente primero")

	resp = call(t, app, http.MethodGet, "/api/items?low=true", tok, nil)
	var list dto.ItemListResponse
	decode(t, resp, &list)
	require.Len(t, list.Items, 1)
	assert.True(t, list.Items[0].LowStock)
}

// Caso 2: tipo de movimiento desconocido → 400 con el campo inválido.
func TestItems_MovimientoInvalido_Retorna400ConCampo(t *testing.T) {
	app := buildAPI(t)
	tok := tokenFor(t, testOwnerID, pkgjwt.RoleEmployee)
	item := createItem(t, app, tok, "ARZ-1", 0, 0)

	resp := call(t, app, http.MethodPost, "/api/items/"+item.ID+"/movements", tok,
		dto.ApplyMovementRequest{Type: "XX", Quantity: 1})
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Equal(t, "type", body.Field)
}

// Caso 3: SKU duplicado → 409.
func TestItems_SKUDuplicado_Retorna409(t *testing.T) {
	app := buildAPI(t)
	tok := tokenFor(t, testOwnerID, pkgjwt.RoleEmployee)
	createItem(t, app, tok, "ARZ-1", 0, 0)

	resp := call(t, app, http.MethodPost, "/api/items", tok, map[string]interface{}{"sku": "arz-1", "name": "Otro"})
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", body.Code)
}

// Caso 4: otro dueño no ve el producto.
func TestItems_OtroDueno_Retorna404(t *testing.T) {
	app := buildAPI(t)
	item := createItem(t, app, tokenFor(t, testOwnerID, pkgjwt.RoleAdmin), "ARZ-1", 1, 0)

	resp := call(t, app, http.MethodGet, "/api/items/"+item.ID, tokenFor(t, "otro-dueno", pkgjwt.RoleAdmin), nil)
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

// Caso 5: eliminar exige admin y se rechaza si hay movimientos.
func TestItems_Eliminar(t *testing.T) {
	app := buildAPI(t)
	employee := tokenFor(t, testOwnerID, pkgjwt.RoleEmployee)
	admin := tokenFor(t, testOwnerID, pkgjwt.RoleAdmin)
	conStock := createItem(t, app, admin, "CON-1", 5, 0)
	sinStock := createItem(t, app, admin, "SIN-1", 0, 0)

	resp := call(t, app, http.MethodDelete, "/api/items/"+sinStock.ID, employee, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodDelete, "/api/items/"+conStock.ID, admin, nil)
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "IN_USE", body.Code)

	resp = call(t, app, http.MethodDelete, "/api/items/"+sinStock.ID, admin, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

// Caso 6: orden de compra completa: crear, recibir de más (se acota), PDF y cierre.
func TestPurchaseOrders_FlujoCompleto(t *testing.T) {
	app := buildAPI(t)
	admin := tokenFor(t, testOwnerID, pkgjwt.RoleAdmin)
	item := createItem(t, app, admin, "ARZ-1", 3, 5)
	sp := createSupplier(t, app, admin, "Distribuidora Central")

	resp := call(t, app, http.MethodPost, "/api/purchase-orders", admin, map[string]interface{}{
		"supplier_id": sp.ID,
		"lines":       []map[string]interface{}{{"item_id": item.ID, "quantity_ordered": 20, "unit_cost": "2.00"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order dto.PurchaseOrderResponse
	decode(t, resp, &order)
	assert.Equal(t, entity.POStatusSubmitted, order.Status)
	require.Len(t, order.Lines, 1)

	resp = call(t, app, http.MethodPost, "/api/purchase-orders/"+order.ID+"/lines/"+order.Lines[0].ID+"/receive", admin,
		dto.ReceiveLineRequest{Quantity: 25})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec dto.ReceiveResponse
	decode(t, resp, &rec)
	assert.Equal(t, int64(20), rec.Received)
	require.NotNil(t, rec.Movement)
	assert.Equal(t, int64(23), rec.Movement.ResultingQuantity)
	assert.Equal(t, entity.POStatusReceived, rec.Order.Status)
	assert.True(t, rec.Order.Closed)

	// Recibir sobre una orden cerrada no hace nada.
	resp = call(t, app, http.MethodPost, "/api/purchase-orders/"+order.ID+"/lines/"+order.Lines[0].ID+"/receive", admin,
		dto.ReceiveLineRequest{Quantity: 5})
	decode(t, resp, &rec)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), rec.Received)
	assert.Nil(t, rec.Movement)

	resp = call(t, app, http.MethodPost, "/api/purchase-orders/"+order.ID+"/cancel", admin, nil)
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ORDER_CLOSED", body.Code)

	resp = call(t, app, http.MethodGet, "/api/purchase-orders/"+order.ID+"/pdf", admin, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), pdf.OrderNumber(order.ID))
	doc, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

// Caso 7: estado desconocido en el filtro de órdenes → 400.
func TestPurchaseOrders_FiltroEstadoInvalido(t *testing.T) {
	app := buildAPI(t)
	resp := call(t, app, http.MethodGet, "/api/purchase-orders?status=LOST", tokenFor(t, testOwnerID, pkgjwt.RoleAdmin), nil)
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "status", body.Field)
}

// Caso 8: proveedor con orden abierta no se puede eliminar.
func TestSuppliers_EliminarConOrdenAbierta_Retorna409(t *testing.T) {
	app := buildAPI(t)
	admin := tokenFor(t, testOwnerID, pkgjwt.RoleAdmin)
	sp := createSupplier(t, app, admin, "Lácteos del Valle")
	resp := call(t, app, http.MethodPost, "/api/purchase-orders", admin, map[string]interface{}{"supplier_id": sp.ID})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodDelete, "/api/suppliers/"+sp.ID, admin, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// Caso 9: reportes y exportaciones.
func TestReports_ResumenYExportaciones(t *testing.T) {
	app := buildAPI(t)
	admin := tokenFor(t, testOwnerID, pkgjwt.RoleAdmin)
	createItem(t, app, admin, "CAFÉ-1", 4, 10)

	resp := call(t, app, http.MethodGet, "/api/reports/summary", admin, nil)
	var summary dto.InventorySummaryDTO
	decode(t, resp, &summary)
	assert.Equal(t, 1, summary.TotalItems)
	assert.Equal(t, int64(4), summary.TotalOnHand)
	assert.Equal(t, "10", summary.TotalValuation.String())
	assert.Equal(t, 1, summary.LowStockCount)

	resp = call(t, app, http.MethodGet, "/api/reports/movements?start=bad", admin, nil)
	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "start", errBody.Field)

	resp = call(t, app, http.MethodGet, "/api/reports/inventory.csv?encoding=windows-1252", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=windows-1252", resp.Header.Get("Content-Type"))
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, bytes.Contains(raw, []byte{'C', 'A', 'F', 0xC9}), "É en windows-1252")

	resp = call(t, app, http.MethodGet, "/api/reports/inventory.csv?encoding=ebcdic", admin, nil)
	decode(t, resp, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "encoding", errBody.Field)

	resp = call(t, app, http.MethodGet, "/api/reports/inventory.xlsx", tokenFor(t, testOwnerID, pkgjwt.RoleEmployee), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/reports/inventory.xlsx", admin, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/vnd.openxmlformats"))

	resp = call(t, app, http.MethodGet, "/api/reports/replenishment", admin, nil)
	var sugg []dto.ReplenishmentSuggestionDTO
	decode(t, resp, &sugg)
	require.Len(t, sugg, 1)
	assert.Equal(t, int64(11), sugg[0].SuggestedOrderQty)
}

// Caso 10: permisos del grupo Employee.
func TestPermisosEmployee(t *testing.T) {
	app := buildAPI(t)
	admin := tokenFor(t, testOwnerID, pkgjwt.RoleAdmin)
	employee := tokenFor(t, testOwnerID, pkgjwt.RoleEmployee)
	createSupplier(t, app, admin, "Distribuidora Central")

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"lista proveedores", http.MethodGet, "/api/suppliers", nil, http.StatusOK},
		{"lista categorias", http.MethodGet, "/api/categories", nil, http.StatusOK},
		{"no crea categorias", http.MethodPost, "/api/categories", dto.CategoryRequest{Name: "Bebidas"}, http.StatusForbidden},
		{"no crea proveedores", http.MethodPost, "/api/suppliers", dto.SupplierRequest{Name: "Otro"}, http.StatusForbidden},
		{"no ve ordenes de compra", http.MethodGet, "/api/purchase-orders", nil, http.StatusForbidden},
		{"ve el dashboard", http.MethodGet, "/api/reports/dashboard", nil, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, app, tc.method, tc.path, employee, tc.body)
			resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
