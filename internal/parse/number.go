// internal/parse/number.go
package parse

import (
	"math"
	"strconv"
	"strings"
)

// Number parses quantities the way the warehouse exports write them.
// "1.234,56" and "1,234.56" both parse; when comma and dot are mixed
// the comma is treated as a thousands separator, a lone comma as the
// decimal mark. Unparseable input yields 0.
func Number(value string) float64 {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 0
	}

	compact := removeSpaces(raw)
	hasComma := strings.Contains(compact, ",")
	hasDot := strings.Contains(compact, ".")

	normalized := compact
	if hasComma && hasDot {
		normalized = strings.ReplaceAll(compact, ",", "")
	} else if hasComma {
		normalized = strings.ReplaceAll(compact, ",", ".")
	}

	num, err := parseFloatPrefix(normalized)
	if err != nil || math.IsInf(num, 0) || math.IsNaN(num) {
		return 0
	}
	return num
}

func removeSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f', '\u00a0':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// parseFloatPrefix mimics parseFloat: it reads the longest numeric
// prefix so "100 uds" style values still yield a number.
func parseFloatPrefix(s string) (float64, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}

	end := 0
	seenDot := false
	seenDigit := false
	for i, r := range s {
		if i == 0 && (r == '+' || r == '-') {
			end = i + 1
			continue
		}
		if r == '.' && !seenDot {
			seenDot = true
			end = i + 1
			continue
		}
		if r >= '0' && r <= '9' {
			seenDigit = true
			end = i + 1
			continue
		}
		break
	}
	if !seenDigit {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
}
