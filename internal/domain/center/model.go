// Package center defines camp venues.
package center

import (
	"strings"
	"time"
)

// Center holds state for one venue.
type Center struct {
	ID         string
	Name       string
	Address    string
	City       string
	PostalCode string
	Phone      string
	Email      string
	Capacity   int
	PhotoURL   string
	Active     bool
	CreatedAt  time.Time
}

// FieldErrors validates the center for the admin form.
func (c *Center) FieldErrors() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(c.Name) == "" {
		errs["name"] = "name is required"
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		errs["email"] = "email must be valid"
	}
	if c.Capacity < 0 {
		errs["capacity"] = "capacity cannot be negative"
	}
	return errs
}
