package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/stocker-api/internal/domain"
)

// DefaultWindowDays ventana por defecto de los reportes de movimientos (hoy incluido).
const DefaultWindowDays = 30

// MaxWindowDays rango máximo aceptado; acota la serie diaria rellenada con ceros.
const MaxWindowDays = 366

// Period rango de días calendario [Start, End] (ambos inclusive) en una zona horaria.
type Period struct {
	Start time.Time // 00:00 del primer día
	End   time.Time // 00:00 del último día
}

// From inicio del rango (inclusive).
func (p Period) From() time.Time { return p.Start }

// To fin del rango (exclusivo): 00:00 del día siguiente a End.
func (p Period) To() time.Time { return p.End.AddDate(0, 0, 1) }

// Days cantidad de días del rango.
func (p Period) Days() int {
	n := 0
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// ParsePeriod interpreta start/end (YYYY-MM-DD) en loc. Sin fechas usa los últimos 30 días (hoy - 29 … hoy);
// con una sola, la otra toma el valor por defecto. Si start > end se intercambian.
// Un rango de más de MaxWindowDays días es inválido.
func ParsePeriod(startStr, endStr string, now time.Time, loc *time.Location) (Period, error) {
	today := startOfDay(now.In(loc))

	end := today
	if s := strings.TrimSpace(endStr); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, loc)
		if err != nil {
			return Period{}, domain.Invalid("end", fmt.Sprintf("fecha inválida %q", s))
		}
		end = t
	}
	start := today.AddDate(0, 0, -(DefaultWindowDays - 1))
	if s := strings.TrimSpace(startStr); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, loc)
		if err != nil {
			return Period{}, domain.Invalid("start", fmt.Sprintf("fecha inválida %q", s))
		}
		start = t
	}
	if start.After(end) {
		start, end = end, start
	}
	if end.After(start.AddDate(0, 0, MaxWindowDays-1)) {
		return Period{}, domain.Invalid("end", fmt.Sprintf("el rango no puede superar %d días", MaxWindowDays))
	}
	return Period{Start: start, End: end}, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
