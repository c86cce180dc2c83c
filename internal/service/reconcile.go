package service

import (
	"math/big"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jersey-sale/api/internal/database"
	"github.com/shopspring/decimal"
)

// OrderUpdate is an admin's partial order update. A nil field is absent.
type OrderUpdate struct {
	Status     *string
	AmountPaid *decimal.Decimal
	TotalPrice *decimal.Decimal
}

// IsEmpty reports whether no updatable field is present.
func (u OrderUpdate) IsEmpty() bool {
	return u.Status == nil && u.AmountPaid == nil && u.TotalPrice == nil
}

// maxAmountDigits is the integer part NUMERIC(12,2) can hold.
const maxAmountDigits = 10

var maxAmount = decimal.New(1, maxAmountDigits)

// normalized treats an empty status as absent and rounds both amounts to
// cents, so the remaining price is derived from the values actually stored.
func (u OrderUpdate) normalized() (OrderUpdate, error) {
	if u.Status != nil && *u.Status == "" {
		u.Status = nil
	}
	var err error
	if u.AmountPaid, err = roundAmount("amountPaid", u.AmountPaid); err != nil {
		return u, err
	}
	if u.TotalPrice, err = roundAmount("totalPrice", u.TotalPrice); err != nil {
		return u, err
	}
	return u, nil
}

// roundAmount rounds d to two decimals, rejecting magnitudes of 1e10 or more.
// The digit count is checked before any rescaling so huge exponents stay cheap.
func roundAmount(field string, d *decimal.Decimal) (*decimal.Decimal, error) {
	if d == nil {
		return nil, nil
	}
	zero := decimal.Zero
	if d.IsZero() {
		return &zero, nil
	}
	coef := new(big.Int).Abs(d.Coefficient())
	intDigits := len(coef.String()) + int(d.Exponent())
	if intDigits > maxAmountDigits {
		return nil, fieldError(field, ErrInvalidAmount)
	}
	if intDigits < -2 {
		// below 0.001, rounds to zero
		return &zero, nil
	}
	r := d.Round(2)
	if r.Abs().GreaterThanOrEqual(maxAmount) {
		return nil, fieldError(field, ErrInvalidAmount)
	}
	return &r, nil
}

// needsStoredAmounts is true when exactly one money field is present, so the
// other one has to come from the stored order.
func (u OrderUpdate) needsStoredAmounts() bool {
	return (u.AmountPaid == nil) != (u.TotalPrice == nil)
}

// ReconciledUpdate is the full set of columns to write. Nil fields keep their stored value.
type ReconciledUpdate struct {
	Status         *string
	AmountPaid     *decimal.Decimal
	TotalPrice     *decimal.Decimal
	RemainingPrice *decimal.Decimal
}

// Reconcile derives remainingPrice = totalPrice - amountPaid for an update.
// current supplies the missing money field when only one is present; a nil
// current or an unset stored value counts as zero. Results are never clamped.
func Reconcile(u OrderUpdate, current *database.JerseyOrder) ReconciledUpdate {
	out := ReconciledUpdate{
		Status:     u.Status,
		AmountPaid: u.AmountPaid,
		TotalPrice: u.TotalPrice,
	}

	switch {
	case u.AmountPaid != nil && u.TotalPrice != nil:
		remaining := u.TotalPrice.Sub(*u.AmountPaid)
		out.RemainingPrice = &remaining
	case u.AmountPaid != nil || u.TotalPrice != nil:
		paid, total := decimal.Zero, decimal.Zero
		if current != nil {
			paid = numericToDecimal(current.AmountPaid)
			total = numericToDecimal(current.TotalPrice)
		}
		if u.AmountPaid != nil {
			paid = *u.AmountPaid
		}
		if u.TotalPrice != nil {
			total = *u.TotalPrice
		}
		remaining := total.Sub(paid)
		out.RemainingPrice = &remaining
	}
	return out
}

func (r ReconciledUpdate) params(id uuid.UUID) database.UpdateJerseyOrderParams {
	p := database.UpdateJerseyOrderParams{ID: id}
	if r.Status != nil {
		p.Status = pgtype.Text{String: *r.Status, Valid: true}
	}
	p.AmountPaid = optionalNumeric(r.AmountPaid)
	p.TotalPrice = optionalNumeric(r.TotalPrice)
	p.RemainingPrice = optionalNumeric(r.RemainingPrice)
	return p
}

func optionalNumeric(d *decimal.Decimal) pgtype.Numeric {
	if d == nil {
		return pgtype.Numeric{}
	}
	return decimalToNumeric(*d)
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

// FormatMoney renders a stored amount with two decimals. ok is false when unset.
func FormatMoney(n pgtype.Numeric) (s string, ok bool) {
	if !n.Valid {
		return "", false
	}
	return numericToDecimal(n).StringFixed(2), true
}
