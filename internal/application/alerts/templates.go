package alerts

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/jhoicas/stocker-api/internal/domain/entity"
)

const (
	lowStockSubject = "Stocker • Low stock alert"
	expirySubject   = "Stocker • Items expiring in ≤ %d days"
)

var lowStockTmpl = template.Must(template.New("low_stock").Parse(
	`The following items are at or below their reorder level:

{{range .Items}}- {{.SKU}} · {{.Name}}: {{.OnHand}} on hand (reorder level {{.ReorderLevel}})
{{end}}
Total: {{len .Items}} item(s).
`))

var expiryTmpl = template.Must(template.New("expiry").Funcs(template.FuncMap{
	"date": func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("2006-01-02")
	},
}).Parse(
	`The following items expire within {{.Days}} days:

{{range .Items}}- {{.SKU}} · {{.Name}}: expires {{date .ExpiryDate}} ({{.OnHand}} on hand)
{{end}}
Total: {{len .Items}} item(s).
`))

func expirySubjectFor(days int) string {
	return fmt.Sprintf(expirySubject, days)
}

func renderLowStock(items []*entity.Item) (string, error) {
	var buf bytes.Buffer
	if err := lowStockTmpl.Execute(&buf, struct{ Items []*entity.Item }{items}); err != nil {
		return "", fmt.Errorf("render low stock: %w", err)
	}
	return buf.String(), nil
}

func renderExpiry(items []*entity.Item, days int) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Items []*entity.Item
		Days  int
	}{items, days}
	if err := expiryTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render expiry: %w", err)
	}
	return buf.String(), nil
}
