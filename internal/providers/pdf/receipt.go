package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	customerdomain "github.com/smallbiznis/servisdesk/internal/customer/domain"
	paymentdomain "github.com/smallbiznis/servisdesk/internal/payment/domain"
	receiptdomain "github.com/smallbiznis/servisdesk/internal/receipt/domain"
)

type ReceiptDocument struct {
	ShopName    string
	ShopAddress string

	ReceiptNo string
	InvoiceNo string
	PaidDate  string

	CustomerName string

	Payments []DocumentItem

	TotalPaid string
}

// BuildReceiptDocument flattens a receipt and its ledger into printable
// strings.
func BuildReceiptDocument(details *receiptdomain.Details, customer *customerdomain.Customer, shopName, shopAddress string) ReceiptDocument {
	doc := ReceiptDocument{
		ShopName:    shopName,
		ShopAddress: shopAddress,
		ReceiptNo:   details.Receipt.ReceiptNo,
		InvoiceNo:   details.Invoice.InvoiceNo,
		PaidDate:    details.Receipt.PaidAt.Format("2006-01-02"),
		TotalPaid:   formatCents(details.Receipt.TotalPaidCents),
	}
	if customer != nil {
		doc.CustomerName = customer.Name
	}
	for _, p := range details.Payments {
		doc.Payments = append(doc.Payments, DocumentItem{
			Description: paymentLabel(p),
			Qty:         p.ReceivedAt.Format("2006-01-02"),
			Amount:      formatCents(p.AmountCents),
		})
	}
	return doc
}

func paymentLabel(p paymentdomain.Payment) string {
	if p.Reference != "" {
		return fmt.Sprintf("%s (%s)", p.Method, p.Reference)
	}
	return string(p.Method)
}

func (p *provider) RenderReceipt(ctx context.Context, doc ReceiptDocument) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(10,
		text.NewCol(12, "Receipt", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Receipt number: "+doc.ReceiptNo, props.Text{Top: 0}),
			text.New("Invoice number: "+doc.InvoiceNo, props.Text{Top: 4}),
			text.New("Date paid: "+doc.PaidDate, props.Text{Top: 8}),
		),
		col.New(6),
	)

	m.AddRow(30,
		col.New(6).Add(
			text.New(doc.ShopName, props.Text{Style: fontstyle.Bold}),
			text.New(doc.ShopAddress, props.Text{Top: 5}),
		),
		col.New(6).Add(
			text.New("Received from", props.Text{Style: fontstyle.Bold}),
			text.New(doc.CustomerName, props.Text{Top: 5}),
		),
	)

	m.AddRow(15,
		text.NewCol(12, doc.TotalPaid+" paid on "+doc.PaidDate, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   5,
		}),
	)

	m.AddRow(10,
		text.NewCol(6, "Payment", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Date", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(3, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, payment := range doc.Payments {
		m.AddRow(12,
			text.NewCol(6, payment.Description, props.Text{Size: 9}),
			text.NewCol(3, payment.Qty, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(3, payment.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(6),
		text.NewCol(3, "Total paid", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, doc.TotalPaid, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	generated, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(generated.GetBytes()), nil
}
