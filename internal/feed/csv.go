// internal/feed/csv.go
package feed

import (
	"strings"
	"unicode"
)

// The feeds arrive with either comma or semicolon delimiters depending
// on which workstation exported them, so the delimiter is sniffed from
// the header line instead of configured.

func stripBOM(text string) string {
	return strings.TrimPrefix(text, "\ufeff")
}

func detectDelimiter(headerLine string) rune {
	commaCount := strings.Count(headerLine, ",")
	semicolonCount := strings.Count(headerLine, ";")
	if semicolonCount > commaCount {
		return ';'
	}
	return ','
}

// Rows parses raw CSV text into rows of cells. Quoted cells may span
// lines and escape quotes by doubling; rows whose every cell is blank
// are dropped.
func Rows(text string) [][]string {
	normalized := stripBOM(text)
	normalized = strings.ReplaceAll(normalized, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	headerLine := normalized
	if idx := strings.IndexByte(normalized, '\n'); idx >= 0 {
		headerLine = normalized[:idx]
	}
	delimiter := detectDelimiter(headerLine)

	var (
		rows     [][]string
		row      []string
		value    strings.Builder
		inQuotes bool
	)

	flushValue := func() {
		row = append(row, value.String())
		value.Reset()
	}
	flushRow := func() {
		flushValue()
		empty := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if !empty {
			rows = append(rows, row)
		}
		row = nil
	}

	runes := []rune(normalized)
	for i := 0; i < len(runes); {
		ch := runes[i]

		if inQuotes {
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					value.WriteRune('"')
					i += 2
					continue
				}
				inQuotes = false
				i++
				continue
			}
			value.WriteRune(ch)
			i++
			continue
		}

		switch ch {
		case '"':
			inQuotes = true
		case delimiter:
			flushValue()
		case '\n':
			flushRow()
		default:
			value.WriteRune(ch)
		}
		i++
	}
	flushRow()

	return rows
}

// canonicalHeaders maps normalized header cells to canonical column
// names. Export tools disagree on naming, accents and casing.
var canonicalHeaders = map[string]string{
	"nombre":             "Nombre",
	"name":               "Nombre",
	"categoria":          "Categoria",
	"category":           "Categoria",
	"codigosiges":        "CodigoSIGES",
	"codsiges":           "CodigoSIGES",
	"siges":              "CodigoSIGES",
	"codigosicop":        "IdentificadorSICOP",
	"identificadorsicop": "IdentificadorSICOP",
	"identificac":        "IdentificadorSICOP",
	"identificador":      "IdentificadorSICOP",
	"idsicop":            "IdentificadorSICOP",
	"clasificadorsicop":  "ClasificadorSICOP",
	"clasificador":       "ClasificadorSICOP",
	"sicopclasificador":  "ClasificadorSICOP",
	"sicopidentificador": "IdentificadorSICOP",
	"medicamento":        "Medicamento",
	"descripcionsicop":   "Medicamento",
	"descripcion":        "Medicamento",
	"producto":           "Medicamento",
	"item":               "Medicamento",
	"lote":               "Lote",
	"batch":              "Lote",
	"vencimiento":        "Vencimiento",
	"expirydate":         "Vencimiento",
	"stock":              "Stock",
	"stockminimo":        "StockMinimo",
	"minstock":           "StockMinimo",
	"unidad":             "Unidad",
	"unit":               "Unidad",
	"cantidad":           "Cantidad",
	"consumo":            "Cantidad",
	"salida":             "Cantidad",
	"responsable":        "Responsable",
	"usuario":            "Responsable",
	"user":               "Responsable",
	"motivo":             "Motivo",
	"destino":            "Motivo",
	"observacion":        "Motivo",
	"fecha":              "Fecha",
	"fechahora":          "Fecha",
	"date":               "Fecha",
}

// normalizeHeaderCell lowercases, strips accents and drops everything
// that is not a letter or digit, so "Código SIGES" and "codigosiges"
// normalize alike.
func normalizeHeaderCell(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	stripped := removeAccents(lowered)

	var b strings.Builder
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func removeAccents(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case 'á', 'à', 'ä', 'â', 'ã':
			b.WriteRune('a')
		case 'é', 'è', 'ë', 'ê':
			b.WriteRune('e')
		case 'í', 'ì', 'ï', 'î':
			b.WriteRune('i')
		case 'ó', 'ò', 'ö', 'ô', 'õ':
			b.WriteRune('o')
		case 'ú', 'ù', 'ü', 'û':
			b.WriteRune('u')
		case 'ñ':
			b.WriteRune('n')
		case 'ç':
			b.WriteRune('c')
		default:
			if unicode.Is(unicode.Mn, r) {
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func mapHeaders(headers []string) []string {
	mapped := make([]string, len(headers))
	for i, h := range headers {
		if canonical, ok := canonicalHeaders[normalizeHeaderCell(h)]; ok {
			mapped[i] = canonical
		} else {
			mapped[i] = strings.TrimSpace(h)
		}
	}
	return mapped
}

// Records parses CSV text into maps keyed by canonical header names.
// The first row is always taken as the header row.
func Records(text string) []map[string]string {
	rows := Rows(text)
	if len(rows) == 0 {
		return nil
	}

	headers := mapHeaders(rows[0])
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(headers))
		for i, key := range headers {
			if key == "" {
				continue
			}
			if i < len(row) {
				record[key] = row[i]
			} else {
				record[key] = ""
			}
		}
		records = append(records, record)
	}
	return records
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// LooksLikeInventoryHeader reports whether the first row of a
// positional inventory CSV is a header rather than data.
func LooksLikeInventoryHeader(row []string) bool {
	a := normalizeHeaderCell(cellAt(row, 0))
	b := normalizeHeaderCell(cellAt(row, 1))
	c := normalizeHeaderCell(cellAt(row, 2))
	return strings.Contains(a, "siges") ||
		strings.Contains(a, "codigosiges") ||
		strings.Contains(b, "medicamento") ||
		strings.Contains(b, "nombre") ||
		strings.Contains(c, "inventario") ||
		strings.Contains(c, "stock")
}

// LooksLikeConsumptionHeader reports whether a monthly consumption row
// is a header. Any cell mentioning the known column names qualifies.
func LooksLikeConsumptionHeader(row []string) bool {
	for _, cell := range row {
		lowered := strings.ToLower(cell)
		for _, word := range []string{"codigo", "siges", "medicamento", "consumo", "costo"} {
			if strings.Contains(lowered, word) {
				return true
			}
		}
	}
	return false
}

// LooksLikePackagingHeader reports whether the first row of a tertiary
// packaging sheet is a header.
func LooksLikePackagingHeader(row []string) bool {
	a := normalizeHeaderCell(cellAt(row, 0))
	b := normalizeHeaderCell(cellAt(row, 1))
	c := normalizeHeaderCell(cellAt(row, 2))
	return strings.Contains(a, "siges") ||
		strings.Contains(a, "codigo") ||
		strings.Contains(b, "medicamento") ||
		strings.Contains(c, "cantidad")
}

// LooksLikeCategoriesHeader reports whether the first row of a
// categories sheet is a header.
func LooksLikeCategoriesHeader(row []string) bool {
	a := normalizeHeaderCell(cellAt(row, 0))
	b := normalizeHeaderCell(cellAt(row, 1))
	c := normalizeHeaderCell(cellAt(row, 2))
	return strings.Contains(a, "codigo") ||
		strings.Contains(a, "siges") ||
		strings.Contains(b, "medicamento") ||
		strings.Contains(c, "categoria")
}
