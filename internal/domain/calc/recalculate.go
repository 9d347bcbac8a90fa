// Package calc recomputes the amounts derived from a record's inputs.
package calc

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/garyjia/swenshares/internal/domain/entity"
)

var (
	// ErrMissingInput is returned when a transaction lacks quantity or price
	ErrMissingInput = errors.New("missing input")

	// ErrInvalidCapital is returned when social act capitals are unset or inconsistent
	ErrInvalidCapital = errors.New("invalid capital")
)

// Recalculate overwrites the derived fields of rec from its inputs.
// Calling it twice gives the same result as calling it once.
func Recalculate(rec entity.Record) error {
	switch r := rec.(type) {
	case *entity.Transaction:
		return transaction(r)
	case *entity.SocialAct:
		return socialAct(r)
	default:
		return nil
	}
}

func transaction(t *entity.Transaction) error {
	if t.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrMissingInput, t.Quantity)
	}
	if !t.PricePerShare.Valid || !t.PricePerShare.Decimal.IsPositive() {
		return fmt.Errorf("%w: price per share must be set and positive", ErrMissingInput)
	}

	t.TotalAmount = decimal.NewFromInt(t.Quantity).Mul(t.PricePerShare.Decimal)

	total := decimal.Zero
	for _, s := range t.Shares {
		total = total.Add(s.CapitalValue())
	}
	t.TotalCapitalValue = total
	return nil
}

func socialAct(a *entity.SocialAct) error {
	if !a.OlderCapital.Valid || !a.NewCapital.Valid {
		return fmt.Errorf("%w: older and new capital are required", ErrInvalidCapital)
	}
	older, newer := a.OlderCapital.Decimal, a.NewCapital.Decimal

	switch a.Variant {
	case entity.SocialActAugmentation:
		if !newer.GreaterThan(older) {
			return fmt.Errorf("%w: augmentation needs new capital %s above %s", ErrInvalidCapital, newer, older)
		}
		a.Amount = newer.Sub(older)
		a.ComputedNewCapital = decimal.NewNullDecimal(older.Add(a.Amount))
	case entity.SocialActReduction:
		if !newer.LessThan(older) {
			return fmt.Errorf("%w: reduction needs new capital %s below %s", ErrInvalidCapital, newer, older)
		}
		a.Amount = older.Sub(newer)
		a.ComputedNewCapital = decimal.NewNullDecimal(older.Sub(a.Amount))
	case entity.SocialActPlain:
		a.Amount = newer.Sub(older)
		a.ComputedNewCapital = decimal.NullDecimal{}
	default:
		return fmt.Errorf("%w: unknown variant %q", ErrInvalidCapital, a.Variant)
	}
	return nil
}
