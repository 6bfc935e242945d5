package service

import (
	"math"
	"time"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/model"

	"github.com/shopspring/decimal"
)

// derive.go implements the pure recomputation pass for derived fields.
// The pricing service runs it on every write — never piecemeal — so stored
// values and derivable values cannot diverge. Out-of-range inputs clamp
// instead of failing: derivation feeds advisory and reporting paths where
// availability matters more than strictness.

const dayHours = 24

// DaysUntilExpiry is ceil((expiry - now) / 1 day). Nil when no expiry is set;
// negative when the record already expired.
func DaysUntilExpiry(expiry *time.Time, now time.Time) *int {
	if expiry == nil {
		return nil
	}
	days := int(math.Ceil(expiry.Sub(now).Hours() / dayHours))
	return &days
}

// ComputeMargin returns (price - cost) / price as a percentage rounded to one
// decimal place, or nil when price is zero (margin is undefined).
func ComputeMargin(price, cost decimal.Decimal) *decimal.Decimal {
	if price.IsZero() {
		return nil
	}
	m := price.Sub(cost).
		Div(price).
		Mul(decimal.NewFromInt(100)).
		Round(1)
	return &m
}

// FormatPriceChange renders (current - original) / original as a signed
// percentage string with one decimal place and an explicit "+" for
// non-negative values, e.g. "+5.0%" or "-12.5%".
func FormatPriceChange(current, original decimal.Decimal) string {
	if original.IsZero() {
		return "+0.0%"
	}
	change := current.Sub(original).
		Div(original).
		Mul(decimal.NewFromInt(100)).
		Round(1)
	if change.IsNegative() {
		return change.StringFixed(1) + "%"
	}
	return "+" + change.StringFixed(1) + "%"
}

// DeriveStatus maps stock and expiry state to one lifecycle status with fixed
// precedence — first matching rule wins. prevStatus is consulted only by the
// last rule: "optimal" set by an earlier optimization pass is retained,
// anything else falls back to "stable". Negative stock counts as zero.
func DeriveStatus(stock, minStockLevel int, daysUntilExpiry *int, prevStatus string) string {
	if stock < 0 {
		stock = 0
	}
	switch {
	case stock == 0:
		return model.StatusOutOfStock
	case daysUntilExpiry != nil && *daysUntilExpiry <= 0:
		return model.StatusCritical
	case stock <= minStockLevel:
		return model.StatusLowStock
	case daysUntilExpiry != nil && *daysUntilExpiry <= 3:
		return model.StatusExpiringSoon
	case prevStatus == model.StatusOptimal:
		return model.StatusOptimal
	default:
		return model.StatusStable
	}
}

// Derive runs the full recomputation pass over a record in place and stamps
// the mutation time.
func Derive(rec *model.PricingRecord, now time.Time) {
	rec.DaysUntilExpiry = DaysUntilExpiry(rec.ExpirationDate, now)
	rec.Margin = ComputeMargin(rec.CurrentPrice, rec.Cost)
	rec.PriceChange = FormatPriceChange(rec.CurrentPrice, rec.OriginalPrice)
	rec.Status = DeriveStatus(rec.Stock, rec.MinStockLevel, rec.DaysUntilExpiry, rec.Status)
	rec.LastUpdated = now
	rec.UpdatedAt = now
}
