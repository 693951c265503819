// Package payment implements the Belgian structured communication used on
// invoices: a 10-digit base plus a two-digit modulo-97 check, rendered as
// +++XXX/XXXX/XXXXX+++.
package payment

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// MaxBase is the largest 10-digit reference base.
const MaxBase = 9_999_999_999

// Domain errors.
var (
	ErrBaseOutOfRange   = errors.New("reference base must be a 10-digit number")
	ErrMalformed        = errors.New("malformed structured reference")
	ErrCheckDigitsWrong = errors.New("structured reference check digits do not match")
)

// CheckDigits computes the two-digit check value for a base:
// 97 - (base mod 97), mapped to 97 when the remainder is zero.
// POST: result is always in [1, 97]
func CheckDigits(base uint64) int {
	rem := base % 97
	if rem == 0 {
		return 97
	}
	return int(97 - rem)
}

// FormatReference renders a base and its check digits in the standard
// 3/4/5 grouping.
// PRE: base <= MaxBase
// POST: returned string matches +++\d{3}/\d{4}/\d{5}+++ (12 digits, the
// last two being the check value)
func FormatReference(base uint64) (string, error) {
	if base > MaxBase {
		return "", ErrBaseOutOfRange
	}
	digits := fmt.Sprintf("%010d%02d", base, CheckDigits(base))
	return "+++" + digits[0:3] + "/" + digits[3:7] + "/" + digits[7:12] + "+++", nil
}

// NewReference generates a structured reference from a random 10-digit base.
func NewReference() string {
	base := uint64(rand.Int63n(MaxBase + 1))
	ref, _ := FormatReference(base)
	return ref
}

// ValidateReference checks the grouping and the modulo-97 round trip.
// POST: returns nil only for a well-formed reference whose check digits
// match 97 - (base mod 97), with 97 standing in for a zero remainder
func ValidateReference(ref string) error {
	if !strings.HasPrefix(ref, "+++") || !strings.HasSuffix(ref, "+++") {
		return ErrMalformed
	}
	digits := strings.ReplaceAll(strings.Trim(ref, "+"), "/", "")
	if len(digits) != 12 {
		return ErrMalformed
	}
	base, err := strconv.ParseUint(digits[:10], 10, 64)
	if err != nil {
		return ErrMalformed
	}
	check, err := strconv.Atoi(digits[10:])
	if err != nil {
		return ErrMalformed
	}
	if check != CheckDigits(base) {
		return ErrCheckDigitsWrong
	}
	return nil
}
