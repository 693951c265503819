// Package stage defines activity templates: the catalogue entries that get
// scheduled into sessions at a center.
package stage

import (
	"fmt"
	"strings"
	"time"
)

// Configured age bounds for any stage.
const (
	AgeFloor   = 2
	AgeCeiling = 18
)

// MaxTitleLength bounds the user-editable title.
const MaxTitleLength = 120

// Stage holds state for one activity template.
type Stage struct {
	ID             string
	Title          string
	Description    string
	Category       string
	AgeMin         int
	AgeMax         int
	BasePriceCents int64
	PhotoURL       string
	Active         bool
	CreatedAt      time.Time
}

// FieldErrors validates the stage and returns per-field messages, keyed the
// way the admin form names its inputs. Cross-field rules attach to the
// field that must change (age_max for an inverted range).
// POST: empty map means the stage is valid
func (s *Stage) FieldErrors() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(s.Title) == "" {
		errs["title"] = "title is required"
	} else if len(s.Title) > MaxTitleLength {
		errs["title"] = fmt.Sprintf("title cannot exceed %d characters", MaxTitleLength)
	}
	if s.AgeMin < AgeFloor {
		errs["age_min"] = fmt.Sprintf("minimum age cannot be below %d", AgeFloor)
	}
	if s.AgeMax > AgeCeiling {
		errs["age_max"] = fmt.Sprintf("maximum age cannot exceed %d", AgeCeiling)
	} else if s.AgeMax < s.AgeMin {
		errs["age_max"] = "maximum age cannot be below minimum age"
	}
	if s.BasePriceCents < 0 {
		errs["base_price"] = "base price cannot be negative"
	}
	return errs
}

// Validate reports whether the stage is storable.
// POST: returns nil iff FieldErrors is empty
func (s *Stage) Validate() error {
	if errs := s.FieldErrors(); len(errs) > 0 {
		for _, msg := range errs {
			return fmt.Errorf("invalid stage: %s", msg)
		}
	}
	return nil
}

// AcceptsAge reports whether a child of the given age fits the range.
func (s *Stage) AcceptsAge(age int) bool {
	return age >= s.AgeMin && age <= s.AgeMax
}
