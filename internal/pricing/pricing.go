// Package pricing implements coupon evaluation and discounted total
// computation for bookings. Everything here is pure: same inputs, same
// result.
package pricing

import (
	"time"

	"github.com/eventhive/ticketing-api/internal/model"
	"github.com/shopspring/decimal"
)

// Match is the outcome of a successful coupon lookup.
type Match struct {
	Code            string
	DiscountPercent int
}

// CouponIndex keys an event's coupon list by code for O(1) lookup while
// preserving insertion order within a code. Codes are matched exactly,
// case-sensitive, and duplicates are kept: the first valid entry wins.
type CouponIndex struct {
	byCode map[string][]model.Coupon
}

// NewCouponIndex builds an index over coupons in their stored order.
func NewCouponIndex(coupons []model.Coupon) *CouponIndex {
	idx := &CouponIndex{byCode: make(map[string][]model.Coupon, len(coupons))}
	for _, c := range coupons {
		idx.byCode[c.Code] = append(idx.byCode[c.Code], c)
	}
	return idx
}

// Evaluate returns the first coupon, in insertion order, whose code equals
// code and whose valid-until instant is strictly after now. A missing,
// empty, or expired code is not an error: it reports ok=false and the
// booking proceeds at full price.
func (i *CouponIndex) Evaluate(code string, now time.Time) (Match, bool) {
	if code == "" {
		return Match{}, false
	}
	for _, c := range i.byCode[code] {
		if c.ValidUntil.After(now) {
			return Match{Code: c.Code, DiscountPercent: c.DiscountPercent}, true
		}
	}
	return Match{}, false
}

var hundred = decimal.NewFromInt(100)

// Total computes unitPrice * tickets * (100 - discountPercent) / 100 using
// decimal arithmetic. The discount is clamped to [0, 100]; stored coupons
// are already validated to that range at creation.
func Total(unitPrice decimal.Decimal, tickets, discountPercent int) decimal.Decimal {
	gross := unitPrice.Mul(decimal.NewFromInt(int64(tickets)))
	if discountPercent <= 0 {
		return gross
	}
	if discountPercent > 100 {
		discountPercent = 100
	}
	factor := hundred.Sub(decimal.NewFromInt(int64(discountPercent)))
	return gross.Mul(factor).Div(hundred)
}
