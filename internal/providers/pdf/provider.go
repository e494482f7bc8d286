// Package pdf renders printable A4 documents for invoices and receipts.
package pdf

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/fx"
)

type Provider interface {
	RenderInvoice(ctx context.Context, doc InvoiceDocument) (io.Reader, error)
	RenderReceipt(ctx context.Context, doc ReceiptDocument) (io.Reader, error)
}

// DocumentItem is one printable line of an invoice or receipt table.
type DocumentItem struct {
	Description string
	Qty         string
	UnitPrice   string
	Amount      string
}

// formatCents renders integer cents as a decimal amount string.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)
