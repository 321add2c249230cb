// Package export escribe las tablas de reportes como CSV o XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/stocker-api/internal/application/reporting"
)

// Codificaciones de CSV admitidas.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseEncoding normaliza el nombre pedido ("", "utf8", "cp1252", "latin1"...).
func ParseEncoding(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "windows-1252", "cp1252", "latin1", "iso-8859-1":
		return EncodingWindows1252, nil
	}
	return "", fmt.Errorf("codificación no soportada: %q", name)
}

// CSVContentType valor de Content-Type con el charset de la codificación.
func CSVContentType(enc string) string {
	return ContentTypeCSV + "; charset=" + enc
}

// WriteCSV escribe encabezado y filas. En windows-1252 los caracteres sin equivalente se reemplazan.
func WriteCSV(w io.Writer, t *reporting.Table, enc string) error {
	if enc == EncodingWindows1252 {
		w = encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()).Writer(w)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("csv: encabezado: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("csv: filas: %w", err)
	}
	// el transformador de charmap retiene bytes hasta Close
	if c, ok := w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
