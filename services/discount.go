package services

import (
	"errors"
	"fmt"
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cast"
)

// ErrInvalidDiscount is reported for a discount that is not a number in [0, 100].
var ErrInvalidDiscount = errors.New("discount must be a number between 0 and 100")

// DiscountInput is the discount as typed by the user together with the
// value used for pricing. An invalid input prices as 0 but keeps Raw so
// the form can show it flagged.
type DiscountInput struct {
	Raw     string
	Percent float64
	Err     error
}

func (d DiscountInput) Valid() bool { return d.Err == nil }

// ParseDiscount validates raw. Blank input means no discount.
func ParseDiscount(raw string) DiscountInput {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if trimmed == "" {
		return DiscountInput{Raw: raw}
	}

	v, err := cast.ToFloat64E(trimmed)
	if err != nil {
		return DiscountInput{Raw: raw, Err: fmt.Errorf("%w: %q is not a number", ErrInvalidDiscount, raw)}
	}
	if err := ValidateDiscountPercent(v); err != nil {
		return DiscountInput{Raw: raw, Err: err}
	}
	return DiscountInput{Raw: raw, Percent: v}
}

// ValidateDiscountPercent checks v is within [0, 100].
func ValidateDiscountPercent(v float64) error {
	if math.IsNaN(v) {
		return fmt.Errorf("%w: NaN", ErrInvalidDiscount)
	}
	if err := validation.Validate(v, validation.Min(0.0), validation.Max(100.0)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDiscount, err)
	}
	return nil
}
