// Package school defines partner schools that send groups to camps and may
// carry a negotiated discount.
package school

import (
	"strings"
	"time"
)

// School holds state for one partner school.
type School struct {
	ID           string
	Name         string
	City         string
	ContactName  string
	ContactEmail string
	DiscountPct  int // negotiated discount in whole percent, 0..100
	CreatedAt    time.Time
}

// FieldErrors validates the school for the admin form.
func (s *School) FieldErrors() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(s.Name) == "" {
		errs["name"] = "name is required"
	}
	if s.ContactEmail != "" && !strings.Contains(s.ContactEmail, "@") {
		errs["contact_email"] = "contact email must be valid"
	}
	if s.DiscountPct < 0 || s.DiscountPct > 100 {
		errs["discount_pct"] = "discount must be between 0 and 100"
	}
	return errs
}
