// internal/parse/date.go
package parse

import (
	"regexp"
	"strings"
	"time"
)

var (
	isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dmyDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	digitRe   = regexp.MustCompile(`\D`)
)

// genericLayouts are tried, in order, for dates that match none of the
// structured formats.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006", // US order, what Date() would do with a short slash date
	"Jan 2, 2006",
	"2 Jan 2006",
}

// Date normalizes the expiry date formats seen in the warehouse feeds
// to YYYY-MM-DD. It tries, in order: an ISO prefix, an 8-digit
// YYYYMMDD, DD/MM/YYYY, then a handful of generic layouts. Unknown
// formats yield "".
func Date(value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return ""
	}

	if len(raw) >= 10 {
		dateOnly := raw[:10]
		if isoDateRe.MatchString(dateOnly) {
			return dateOnly
		}
	}

	digits := digitRe.ReplaceAllString(raw, "")
	if len(digits) == 8 {
		return digits[0:4] + "-" + digits[4:6] + "-" + digits[6:8]
	}

	if m := dmyDateRe.FindStringSubmatch(raw); m != nil {
		dd := pad2(m[1])
		mm := pad2(m[2])
		return m[3] + "-" + mm + "-" + dd
	}

	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// DateOrToday is Date for feeds where a missing or unusable expiry
// defaults to the import day rather than an empty value.
func DateOrToday(value string) string {
	if d := Date(value); d != "" {
		return d
	}
	return time.Now().UTC().Format("2006-01-02")
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
