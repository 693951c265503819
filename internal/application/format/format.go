// Package format holds the business-locale formatting helpers shared by
// templates and CSV export. Amounts are stored in euro cents everywhere;
// rendering is Belgian French style (comma decimals, space grouping,
// trailing euro sign).
package format

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the day/month/year layout used across the admin.
const DateLayout = "02/01/2006"

// EUR renders an amount in cents as "1 234,56 €".
// POST: negative amounts keep a leading minus sign
func EUR(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	units := cents / 100
	frac := cents % 100
	return fmt.Sprintf("%s%s,%02d €", sign, group(units), frac)
}

// Date renders a time in the business layout, or an empty string for the
// zero time so optional dates render cleanly.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ISODate renders a time as YYYY-MM-DD (storage and filename form).
func ISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// group inserts a space every three digits from the right.
func group(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
