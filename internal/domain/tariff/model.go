// Package tariff defines pricing conditions: discounts and surcharges
// applied on top of a stage's base price, optionally scoped to a school
// and a validity window.
package tariff

import (
	"strings"
	"time"
)

// Kind constants.
const (
	KindDiscount  = "discount"
	KindSurcharge = "surcharge"
	KindSibling   = "sibling"
)

// Tariff holds state for one pricing condition. Exactly one of Percent and
// AmountCents is set.
type Tariff struct {
	ID          string
	Label       string
	Kind        string
	Percent     int   // 0 when AmountCents is used
	AmountCents int64 // 0 when Percent is used
	SchoolID    string
	ValidFrom   time.Time
	ValidTo     time.Time
	CreatedAt   time.Time
}

// FieldErrors validates the tariff for the admin form.
// POST: cross-field rules (one-of percent/amount, date ordering) attach to
// the field that must change
func (t *Tariff) FieldErrors() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(t.Label) == "" {
		errs["label"] = "label is required"
	}
	switch t.Kind {
	case KindDiscount, KindSurcharge, KindSibling:
	default:
		errs["kind"] = "kind must be discount, surcharge, or sibling"
	}
	hasPercent := t.Percent != 0
	hasAmount := t.AmountCents != 0
	if hasPercent == hasAmount {
		errs["percent"] = "set exactly one of percent or amount"
	}
	if t.Percent < 0 || t.Percent > 100 {
		errs["percent"] = "percent must be between 0 and 100"
	}
	if t.AmountCents < 0 {
		errs["amount"] = "amount cannot be negative"
	}
	if !t.ValidFrom.IsZero() && !t.ValidTo.IsZero() && t.ValidTo.Before(t.ValidFrom) {
		errs["valid_to"] = "end of validity cannot be before its start"
	}
	return errs
}

// ActiveOn reports whether the tariff applies on the given day. Zero bounds
// are open-ended.
func (t *Tariff) ActiveOn(day time.Time) bool {
	if !t.ValidFrom.IsZero() && day.Before(t.ValidFrom) {
		return false
	}
	if !t.ValidTo.IsZero() && day.After(t.ValidTo) {
		return false
	}
	return true
}

// Apply returns the price in cents after applying this tariff.
// PRE: the tariff is valid
func (t *Tariff) Apply(baseCents int64) int64 {
	var delta int64
	if t.Percent != 0 {
		delta = baseCents * int64(t.Percent) / 100
	} else {
		delta = t.AmountCents
	}
	if t.Kind == KindSurcharge {
		return baseCents + delta
	}
	result := baseCents - delta
	if result < 0 {
		return 0
	}
	return result
}
