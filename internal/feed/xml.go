// internal/feed/xml.go
package feed

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/bodegapp/backend-go/internal/parse"
)

// ErrMalformedXML is returned when a 771 upload is not well-formed XML.
// The import is rejected as a whole rather than partially applied.
var ErrMalformedXML = errors.New("xml inválido o mal formado")

// Lot771 is one lot-level record extracted from a 771 inventory file.
type Lot771 struct {
	SigesCode  string
	Name       string
	Batch      string
	ExpiryDate string
	Stock      float64
}

type xmlNode struct {
	local    string
	attrs    []xml.Attr
	parent   *xmlNode
	children []*xmlNode
	text     strings.Builder
}

func (n *xmlNode) attr(name string) string {
	for _, a := range n.attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// textContent concatenates all character data below the node.
func (n *xmlNode) textContent() string {
	var b strings.Builder
	var walk func(*xmlNode)
	walk = func(node *xmlNode) {
		b.WriteString(node.text.String())
		for _, child := range node.children {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

// descendants returns every element below the node, document order.
func (n *xmlNode) descendants() []*xmlNode {
	var out []*xmlNode
	var walk func(*xmlNode)
	walk = func(node *xmlNode) {
		for _, child := range node.children {
			out = append(out, child)
			walk(child)
		}
	}
	walk(n)
	return out
}

func (n *xmlNode) descendantsByLocal(local string) []*xmlNode {
	var out []*xmlNode
	for _, d := range n.descendants() {
		if d.local == local {
			out = append(out, d)
		}
	}
	return out
}

func (n *xmlNode) firstDescendantByLocal(local string) *xmlNode {
	for _, d := range n.descendants() {
		if d.local == local {
			return d
		}
	}
	return nil
}

func parseXMLTree(text string) (*xmlNode, error) {
	decoder := xml.NewDecoder(strings.NewReader(text))
	root := &xmlNode{}
	current := root

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node := &xmlNode{
				local:  t.Name.Local,
				attrs:  append([]xml.Attr(nil), t.Attr...),
				parent: current,
			}
			current.children = append(current.children, node)
			current = node
		case xml.EndElement:
			current = current.parent
		case xml.CharData:
			current.text.Write(t)
		}
	}

	if len(root.children) == 0 {
		return nil, ErrMalformedXML
	}
	return root, nil
}

// documentElement is the first (top-level) element of the parsed tree.
func (n *xmlNode) documentElement() *xmlNode {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// Parse771 extracts lot records from a 771 inventory XML export. The
// Crystal Reports layout is tried first; anything else falls back to a
// tag-name heuristic that handles the hand-rolled exports.
func Parse771(text string) ([]Lot771, error) {
	root, err := parseXMLTree(text)
	if err != nil {
		return nil, err
	}

	if records, ok := parse771CrystalReport(root); ok {
		return records, nil
	}
	return parse771Heuristic(root), nil
}

// parse771CrystalReport reads the report layout the SIGES system emits:
// Level=4 Group pairs per medication, Level=5 Details pairs per lot,
// with fully qualified field names.
func parse771CrystalReport(root *xmlNode) ([]Lot771, bool) {
	var groups []*xmlNode
	for _, pair := range root.descendantsByLocal("FormattedAreaPair") {
		if pair.attr("Level") == "4" && pair.attr("Type") == "Group" {
			groups = append(groups, pair)
		}
	}
	if len(groups) == 0 {
		return nil, false
	}

	records := []Lot771{}
	for _, group := range groups {
		codeRaw := readFieldValue(group, ".PRODUCTO}")
		nameRaw := readFieldValue(group, ".DSC_PRODUCTO}")
		sigesCode := domain.NormalizeSigesCode(codeRaw)
		name := strings.TrimSpace(nameRaw)
		if sigesCode == "" || name == "" {
			continue
		}

		for _, detail := range group.descendantsByLocal("FormattedAreaPair") {
			if detail.attr("Level") != "5" || detail.attr("Type") != "Details" {
				continue
			}

			batch := readFieldValue(detail, ".IDE_LOTE}")
			if batch == "" {
				batch = "S/N"
			}
			stockRaw := readFieldValue(detail, ".CAN_LOTE}")
			if stockRaw == "" {
				stockRaw = "0"
			}
			expiryRaw := readFieldValue(detail, ".FEC_VENCIMIENTO}")

			records = append(records, Lot771{
				SigesCode:  sigesCode,
				Name:       name,
				Batch:      orDefault(strings.TrimSpace(batch), "S/N"),
				ExpiryDate: parse.Date(expiryRaw),
				Stock:      parse.Number(stockRaw),
			})
		}
	}

	return records, true
}

// readFieldValue finds the first FormattedReportObject whose FieldName
// contains the suffix and returns its Value, falling back to
// FormattedValue.
func readFieldValue(root *xmlNode, fieldSuffix string) string {
	for _, obj := range root.descendantsByLocal("FormattedReportObject") {
		fieldName := obj.attr("FieldName")
		if fieldName == "" || !strings.Contains(fieldName, fieldSuffix) {
			continue
		}

		raw := ""
		if v := obj.firstDescendantByLocal("Value"); v != nil {
			raw = v.textContent()
		}
		if raw == "" {
			if fv := obj.firstDescendantByLocal("FormattedValue"); fv != nil {
				raw = fv.textContent()
			}
		}
		if value := strings.TrimSpace(raw); value != "" {
			return value
		}
	}
	return ""
}

var (
	xml771CodeTags = []string{
		"CodigoSIGES", "CodigoSiges", "codigoSIGES", "codigoSiges",
		"Codigo", "codigo", "SIGES", "Siges", "siges_code",
	}
	xml771NameTags = []string{
		"Medicamento", "medicamento", "Nombre", "nombre",
		"Descripcion", "descripcion", "Medication",
	}
	xml771LotTags = []string{
		"Lote", "lote", "Batch", "batch", "LoteMedicamento", "loteMedicamento",
	}
	xml771ExpiryTags = []string{
		"Vencimiento", "vencimiento", "FechaVencimiento", "fechaVencimiento",
		"FechaCaducidad", "fechaCaducidad", "expiry_date", "ExpiryDate",
	}
	xml771StockTags = []string{
		"Inventario", "inventario", "Stock", "stock",
		"Existencia", "existencia", "Cantidad", "cantidad",
	}
)

// xmlValue returns the first non-empty trimmed text among the named
// child tags, then the named attributes.
func xmlValue(el *xmlNode, tagNames, attrNames []string) string {
	if el == nil {
		return ""
	}
	for _, tag := range tagNames {
		if node := el.firstDescendantByLocal(tag); node != nil {
			if value := strings.TrimSpace(node.textContent()); value != "" {
				return value
			}
		}
	}
	for _, attr := range attrNames {
		if value := strings.TrimSpace(el.attr(attr)); value != "" {
			return value
		}
	}
	return ""
}

// parse771Heuristic locates record elements by walking up from any
// code-bearing tag to the nearest ancestor that also carries lot,
// expiry or stock data.
func parse771Heuristic(root *xmlNode) []Lot771 {
	docElement := root.documentElement()

	var recordElements []*xmlNode
	seen := map[*xmlNode]bool{}
	for _, tag := range xml771CodeTags {
		for _, node := range root.descendantsByLocal(tag) {
			el := node.parent
			hops := 0
			for el != nil && el != docElement && hops < 6 {
				hasLot := xmlValue(el, xml771LotTags, []string{"lote", "Lote", "batch", "Batch"}) != ""
				hasExpiry := xmlValue(el, xml771ExpiryTags, []string{"vencimiento", "Vencimiento", "expiry", "Expiry"}) != ""
				hasStock := xmlValue(el, xml771StockTags, []string{"inventario", "Inventario", "stock", "Stock"}) != ""
				if hasLot || hasExpiry || hasStock {
					break
				}
				el = el.parent
				hops++
			}
			if el != nil && el != root && !seen[el] {
				seen[el] = true
				recordElements = append(recordElements, el)
			}
		}
	}

	records := []Lot771{}
	for _, el := range recordElements {
		sigesCode := xmlValue(el, xml771CodeTags, []string{"CodigoSIGES", "codigoSIGES", "siges_code", "Codigo", "codigo"})
		name := strings.TrimSpace(xmlValue(el, xml771NameTags, []string{"Medicamento", "medicamento", "Nombre", "nombre"}))
		batch := strings.TrimSpace(xmlValue(el, xml771LotTags, []string{"Lote", "lote", "Batch", "batch"}))
		expiryRaw := strings.TrimSpace(xmlValue(el, xml771ExpiryTags, []string{"Vencimiento", "vencimiento", "ExpiryDate", "expiry_date"}))
		stockRaw := strings.TrimSpace(xmlValue(el, xml771StockTags, []string{"Inventario", "inventario", "Stock", "stock"}))

		if sigesCode == "" || name == "" {
			continue
		}

		records = append(records, Lot771{
			SigesCode:  domain.NormalizeSigesCode(sigesCode),
			Name:       orDefault(name, "Sin nombre"),
			Batch:      orDefault(batch, "S/N"),
			ExpiryDate: parse.Date(expiryRaw),
			Stock:      parse.Number(stockRaw),
		})
	}

	return records
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
