// internal/domain/keys.go
package domain

import (
	"strings"
	"unicode"
)

// MedicationKey identifies a medication across imports. Codes win over
// names; a record with neither has no identity and is skipped.
func MedicationKey(sigesCode, name string) string {
	code := strings.TrimSpace(sigesCode)
	if code != "" {
		return "code:" + code
	}
	n := strings.ToLower(strings.TrimSpace(name))
	if n != "" {
		return "name:" + n
	}
	return ""
}

// LotKey identifies a single lot of a 771 inventory.
func LotKey(sigesCode, name, batch, expiryDate string) string {
	code := strings.TrimSpace(sigesCode)
	lot := strings.ToLower(strings.TrimSpace(batch))
	expiry := strings.TrimSpace(expiryDate)
	if code != "" {
		return "code:" + code + "|lot:" + lot + "|exp:" + expiry
	}
	return "name:" + strings.ToLower(strings.TrimSpace(name)) + "|lot:" + lot + "|exp:" + expiry
}

// NormalizeSigesCode formats a 9-digit SIGES code as NNN-NN-NNNN.
// Anything else is passed through with whitespace collapsed.
func NormalizeSigesCode(value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return ""
	}

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 9 {
		d := digits.String()
		return d[0:3] + "-" + d[3:5] + "-" + d[5:9]
	}

	return strings.Join(strings.Fields(raw), " ")
}

// Fixed storage categories accepted by the category loads.
const (
	CategoryOrdinario      = "Ordinario"
	CategoryFrio           = "Frío"
	CategoryEstupefaciente = "Estupefaciente"
	CategoryPsicotropico   = "Psicotrópico"
	CategoryAlcohol        = "Alcohol"
	CategorySuero          = "Suero"
	CategoryCompraLocal    = "Compra Local"
)

// NormalizeCategory maps a free-form category cell onto the fixed set.
// Unknown categories map to "".
func NormalizeCategory(value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return ""
	}
	normalized := strings.Join(strings.Fields(stripAccents(strings.ToLower(raw))), " ")

	switch normalized {
	case "ordinario":
		return CategoryOrdinario
	case "frio":
		return CategoryFrio
	case "estupefaciente":
		return CategoryEstupefaciente
	case "psicotropico":
		return CategoryPsicotropico
	case "alcohol":
		return CategoryAlcohol
	case "suero":
		return CategorySuero
	case "compra local", "compralocal":
		return CategoryCompraLocal
	}
	return ""
}

// stripAccents removes combining marks from the common Latin-1 range.
func stripAccents(s string) string {
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
