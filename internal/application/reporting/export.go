package reporting

import (
	"context"
	"fmt"
	"strconv"
)

// Encabezados de las exportaciones.
var (
	InventoryHeader = []string{"SKU", "Name", "Category", "On hand", "Reorder level", "Cost", "Valuation", "Low stock?"}
	SupplierHeader  = []string{"Supplier", "Products", "On hand (sum)", "Valuation (cost)"}
)

// Table filas listas para escribir en CSV o XLSX (Header + Rows).
// Numeric indica las columnas que el XLSX guarda como número.
type Table struct {
	Name    string
	Header  []string
	Rows    [][]string
	Numeric []int
}

// InventoryTable una fila por producto, ordenado por nombre.
func (uc *UseCase) InventoryTable(ctx context.Context, ownerID string) (*Table, error) {
	items, err := uc.reports.InventoryRows(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("reporting: inventario: %w", err)
	}
	t := &Table{Name: "Inventory", Header: InventoryHeader, Rows: make([][]string, 0, len(items)), Numeric: []int{3, 4, 5, 6}}
	for _, it := range items {
		low := "No"
		if it.IsLowStock() {
			low = "Yes"
		}
		t.Rows = append(t.Rows, []string{
			it.SKU,
			it.Name,
			it.CategoryName,
			strconv.FormatInt(it.OnHand, 10),
			strconv.FormatInt(it.ReorderLevel, 10),
			it.CostPrice.StringFixed(2),
			it.Valuation().StringFixed(2),
			low,
		})
	}
	return t, nil
}

// SupplierTable una fila por proveedor con cantidad de productos, unidades y valorización.
func (uc *UseCase) SupplierTable(ctx context.Context, ownerID string) (*Table, error) {
	rows, err := uc.reports.SupplierTotals(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("reporting: proveedores: %w", err)
	}
	t := &Table{Name: "Suppliers", Header: SupplierHeader, Rows: make([][]string, 0, len(rows)), Numeric: []int{1, 2, 3}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Name,
			strconv.Itoa(r.Items),
			strconv.FormatInt(r.OnHand, 10),
			r.Valuation.Round(2).StringFixed(2),
		})
	}
	return t, nil
}
