package payment

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
)

// TestCheckDigits_Range verifies the check value is always in [1, 97].
func TestCheckDigits_Range(t *testing.T) {
	for _, base := range []uint64{0, 1, 96, 97, 98, 194, 9_999_999_999} {
		c := CheckDigits(base)
		if c < 1 || c > 97 {
			t.Errorf("CheckDigits(%d) = %d, want [1,97]", base, c)
		}
	}
}

// TestCheckDigits_ZeroRemainder verifies the 0 -> 97 mapping.
func TestCheckDigits_ZeroRemainder(t *testing.T) {
	if got := CheckDigits(97); got != 97 {
		t.Errorf("CheckDigits(97) = %d, want 97", got)
	}
	if got := CheckDigits(0); got != 97 {
		t.Errorf("CheckDigits(0) = %d, want 97", got)
	}
}

// TestFormatReference_Grouping verifies the +++XXX/XXXX/XXXXX+++ layout.
func TestFormatReference_Grouping(t *testing.T) {
	ref, err := FormatReference(1234567890)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1234567890 mod 97 = 2, so the check digits are 95.
	if ref != "+++123/4567/89095+++" {
		t.Errorf("got %s, want +++123/4567/89095+++", ref)
	}
}

// TestFormatReference_BaseOutOfRange verifies 11-digit bases are rejected.
func TestFormatReference_BaseOutOfRange(t *testing.T) {
	if _, err := FormatReference(10_000_000_000); err != ErrBaseOutOfRange {
		t.Errorf("expected ErrBaseOutOfRange, got %v", err)
	}
}

// TestNewReference_Property runs the generator repeatedly and asserts the
// shape, the check-digit range, and the modulo-97 round trip every time.
func TestNewReference_Property(t *testing.T) {
	pattern := regexp.MustCompile(`^\+\+\+\d{3}/\d{4}/\d{5}\+\+\+$`)
	for i := 0; i < 100_000; i++ {
		ref := NewReference()
		if !pattern.MatchString(ref) {
			t.Fatalf("iteration %d: %q does not match expected shape", i, ref)
		}
		digits := strings.ReplaceAll(strings.Trim(ref, "+"), "/", "")
		check, err := strconv.Atoi(digits[10:])
		if err != nil || check < 1 || check > 97 {
			t.Fatalf("iteration %d: check digits %q out of [01,97]", i, digits[10:])
		}
		if err := ValidateReference(ref); err != nil {
			t.Fatalf("iteration %d: round trip failed for %q: %v", i, ref, err)
		}
	}
}

// TestValidateReference_Rejections covers malformed and mismatched inputs.
func TestValidateReference_Rejections(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want error
	}{
		{"missingFrame", "123/4567/89095", ErrMalformed},
		{"shortDigits", "+++123/4567/89+++", ErrMalformed},
		{"nonNumeric", "+++abc/defg/hijkl+++", ErrMalformed},
		{"wrongCheck", "+++123/4567/89005+++", ErrCheckDigitsWrong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateReference(tt.ref); err != tt.want {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
