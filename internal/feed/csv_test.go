package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsDelimiterSniffing(t *testing.T) {
	comma := "a,b,c\n1,2,3\n"
	semicolon := "a;b;c\n1;2;3\n"
	mixed := "a;b,c;d\n1;2;3;4\n" // more semicolons than commas

	assert.Equal(t, [][]string{{"a", "b", "c"}, {"1", "2", "3"}}, Rows(comma))
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"1", "2", "3"}}, Rows(semicolon))
	assert.Equal(t, [][]string{{"a", "b,c", "d"}, {"1", "2", "3", "4"}}, Rows(mixed))
}

func TestRowsCommaWinsTies(t *testing.T) {
	// Equal counts keep the comma.
	rows := Rows("a,b;c\n")
	assert.Equal(t, [][]string{{"a", "b;c"}}, rows)
}

func TestRowsQuoting(t *testing.T) {
	text := "name,notes\n\"Suero, fisiológico\",\"dice \"\"frágil\"\"\"\n"
	rows := Rows(text)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Suero, fisiológico", `dice "frágil"`}, rows[1])
}

func TestRowsQuotedNewline(t *testing.T) {
	text := "a,b\n\"line1\nline2\",x\n"
	rows := Rows(text)
	require.Len(t, rows, 2)
	assert.Equal(t, "line1\nline2", rows[1][0])
}

func TestRowsStripsBOMAndBlankRows(t *testing.T) {
	text := "\ufeffa,b\n , \n1,2\n\n"
	rows := Rows(text)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, rows)
}

func TestRowsNormalizesLineEndings(t *testing.T) {
	rows := Rows("a,b\r\n1,2\r3,4")
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}, {"3", "4"}}, rows)
}

func TestRecordsHeaderSynonyms(t *testing.T) {
	text := "Código SIGES;Descripción;Lote;Vencimiento;Stock\nSIG-1;Paracetamol;L1;2027-12-31;10\n"
	records := Records(text)
	require.Len(t, records, 1)

	assert.Equal(t, "SIG-1", records[0]["CodigoSIGES"])
	assert.Equal(t, "Paracetamol", records[0]["Medicamento"])
	assert.Equal(t, "L1", records[0]["Lote"])
	assert.Equal(t, "2027-12-31", records[0]["Vencimiento"])
	assert.Equal(t, "10", records[0]["Stock"])
}

func TestRecordsUnknownHeaderKeptVerbatim(t *testing.T) {
	records := Records("Foo,Stock\nx,5\n")
	require.Len(t, records, 1)
	assert.Equal(t, "x", records[0]["Foo"])
	assert.Equal(t, "5", records[0]["Stock"])
}

func TestRecordsShortRowsFillEmpty(t *testing.T) {
	records := Records("CodigoSIGES,Medicamento,Stock\nSIG-1,Ibuprofeno\n")
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0]["Stock"])
}

func TestLooksLikeInventoryHeader(t *testing.T) {
	assert.True(t, LooksLikeInventoryHeader([]string{"Código SIGES", "Medicamento", "Inventario"}))
	assert.True(t, LooksLikeInventoryHeader([]string{"", "Nombre", ""}))
	assert.False(t, LooksLikeInventoryHeader([]string{"110-16-0010", "Paracetamol", "100"}))
}

func TestLooksLikeConsumptionHeader(t *testing.T) {
	assert.True(t, LooksLikeConsumptionHeader([]string{"CodigoSIGES", "Medicamento", "Consumo", "Costo"}))
	assert.False(t, LooksLikeConsumptionHeader([]string{"110-16-0010", "Paracetamol", "12", "100"}))
}
