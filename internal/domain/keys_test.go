package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedicationKey(t *testing.T) {
	tests := []struct {
		name      string
		sigesCode string
		medName   string
		want      string
	}{
		{"code wins over name", "110-16-0010", "Paracetamol", "code:110-16-0010"},
		{"name fallback is lowercased", "", "  Paracetamol 500 MG  ", "name:paracetamol 500 mg"},
		{"code is trimmed but not lowercased", "  ABC-1  ", "x", "code:ABC-1"},
		{"empty record has no key", "   ", "  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MedicationKey(tt.sigesCode, tt.medName))
		})
	}
}

func TestLotKey(t *testing.T) {
	assert.Equal(t,
		"code:110-16-0010|lot:lot-2025-01|exp:2027-12-31",
		LotKey("110-16-0010", "Paracetamol", "LOT-2025-01", "2027-12-31"))

	assert.Equal(t,
		"name:paracetamol|lot:|exp:",
		LotKey("", "Paracetamol", "", ""))
}

func TestNormalizeSigesCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"110160010", "110-16-0010"},
		{" 110 16 0010 ", "110-16-0010"},
		{"110-16-0010", "110-16-0010"},
		{"SIG-0001", "SIG-0001"},
		{"ABC   DEF", "ABC DEF"},
		{"", ""},
		{"12345678", "12345678"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSigesCode(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ordinario", "Ordinario"},
		{"ORDINARIO", "Ordinario"},
		{"Frío", "Frío"},
		{"frio", "Frío"},
		{"psicotrópico", "Psicotrópico"},
		{"compra  local", "Compra Local"},
		{"compralocal", "Compra Local"},
		{"refrigerado", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCategory(tt.in), "input %q", tt.in)
	}
}
