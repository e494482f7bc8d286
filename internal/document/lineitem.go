// Package document holds the line-item value type shared by quotations
// and invoices, plus its builders and validation.
package document

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	"github.com/smallbiznis/servisdesk/internal/money"
)

// LineItemType distinguishes labour from parts.
type LineItemType string

const (
	LineItemTypeService LineItemType = "service"
	LineItemTypeProduct LineItemType = "product"
)

// LineItem is an immutable-after-create document line. LineTotalCents
// is always derivable from Quantity and UnitPriceCents.
type LineItem struct {
	ID             snowflake.ID  `json:"id"`
	Type           LineItemType  `json:"type"`
	Description    string        `json:"description"`
	Quantity       float64       `json:"quantity"`
	UnitPriceCents int64         `json:"unit_price_cents"`
	LineTotalCents int64         `json:"line_total_cents"`
	ProductID      *snowflake.ID `json:"product_id,omitempty"`
}

// LineItemInput is the caller-facing shape before ids and totals exist.
type LineItemInput struct {
	Type           LineItemType  `json:"type" binding:"required"`
	Description    string        `json:"description" binding:"required"`
	Quantity       float64       `json:"quantity" binding:"required"`
	UnitPriceCents int64         `json:"unit_price_cents"`
	ProductID      *snowflake.ID `json:"product_id,omitempty"`
}

// BuildLineItems materializes inputs into line items with generated ids
// and computed totals.
func BuildLineItems(genID *snowflake.Node, inputs []LineItemInput) []LineItem {
	items := make([]LineItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, LineItem{
			ID:             genID.Generate(),
			Type:           in.Type,
			Description:    in.Description,
			Quantity:       in.Quantity,
			UnitPriceCents: in.UnitPriceCents,
			LineTotalCents: money.LineTotal(in.Quantity, in.UnitPriceCents),
			ProductID:      in.ProductID,
		})
	}
	return items
}

// CalculateTotals computes the document total breakdown for a set of
// built line items.
func CalculateTotals(items []LineItem, discountCents, taxCents int64) money.Totals {
	lines := make([]money.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, money.Line{Quantity: item.Quantity, UnitPriceCents: item.UnitPriceCents})
	}
	return money.DocumentTotals(lines, discountCents, taxCents)
}

// ValidateLineItems rejects malformed inputs before any id or total is
// generated. Discounts and taxes are validated at the same gate so the
// math in package money never sees negatives.
func ValidateLineItems(inputs []LineItemInput, discountCents, taxCents int64) error {
	if len(inputs) == 0 {
		return fmt.Errorf("%w: at least one line item is required", apperr.ErrValidation)
	}
	if discountCents < 0 {
		return fmt.Errorf("%w: discount must not be negative", apperr.ErrValidation)
	}
	if taxCents < 0 {
		return fmt.Errorf("%w: tax must not be negative", apperr.ErrValidation)
	}

	for i, item := range inputs {
		if item.Type != LineItemTypeService && item.Type != LineItemTypeProduct {
			return fmt.Errorf("%w: item %d: unknown type %q", apperr.ErrValidation, i+1, item.Type)
		}
		if strings.TrimSpace(item.Description) == "" {
			return fmt.Errorf("%w: item %d: description is required", apperr.ErrValidation, i+1)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be greater than zero", apperr.ErrValidation, i+1)
		}
		if item.UnitPriceCents < 0 {
			return fmt.Errorf("%w: item %d: unit price must not be negative", apperr.ErrValidation, i+1)
		}
	}
	return nil
}
