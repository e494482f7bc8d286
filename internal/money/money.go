// Package money holds the pure ledger math. All monetary values are
// integers in minor currency units (cents); floats never leave this
// package except as line quantities.
package money

import "math"

// Line is the quantity/price pair a line total is computed from.
type Line struct {
	Quantity       float64
	UnitPriceCents int64
}

// Totals is a document total breakdown.
type Totals struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	DiscountCents int64 `json:"discount_cents"`
	TaxCents      int64 `json:"tax_cents"`
	TotalCents    int64 `json:"total_cents"`
}

// LineTotal returns quantity x unit price rounded half-up to the
// nearest cent.
func LineTotal(quantity float64, unitPriceCents int64) int64 {
	return int64(math.Floor(quantity*float64(unitPriceCents) + 0.5))
}

// DocumentTotals computes subtotal and grand total from line items.
// The grand total never goes below zero. Inputs are assumed
// pre-validated by callers (quantity > 0, prices and adjustments >= 0).
func DocumentTotals(lines []Line, discountCents, taxCents int64) Totals {
	var subtotal int64
	for _, line := range lines {
		subtotal += LineTotal(line.Quantity, line.UnitPriceCents)
	}

	total := subtotal - discountCents + taxCents
	if total < 0 {
		total = 0
	}

	return Totals{
		SubtotalCents: subtotal,
		DiscountCents: discountCents,
		TaxCents:      taxCents,
		TotalCents:    total,
	}
}
