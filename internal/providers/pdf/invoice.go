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
	devicedomain "github.com/smallbiznis/servisdesk/internal/device/domain"
	invoicedomain "github.com/smallbiznis/servisdesk/internal/invoice/domain"
)

type InvoiceDocument struct {
	ShopName    string
	ShopAddress string

	InvoiceNo string
	IssueDate string
	DueDate   string
	Status    string

	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	DeviceLabel     string

	Items []DocumentItem

	Subtotal   string
	Discount   string
	Tax        string
	Total      string
	AmountPaid string
	Balance    string
}

// BuildInvoiceDocument flattens the aggregates into printable strings.
func BuildInvoiceDocument(invoice *invoicedomain.Invoice, customer *customerdomain.Customer, device *devicedomain.Device, shopName, shopAddress string) InvoiceDocument {
	doc := InvoiceDocument{
		ShopName:    shopName,
		ShopAddress: shopAddress,
		InvoiceNo:   invoice.InvoiceNo,
		IssueDate:   invoice.CreatedAt.Format("2006-01-02"),
		Status:      string(invoice.Status),
		Subtotal:    formatCents(invoice.SubtotalCents),
		Discount:    formatCents(invoice.DiscountCents),
		Tax:         formatCents(invoice.TaxCents),
		Total:       formatCents(invoice.TotalCents),
		AmountPaid:  formatCents(invoice.AmountPaidCents),
		Balance:     formatCents(invoice.BalanceCents),
	}
	if invoice.DueDate != nil {
		doc.DueDate = invoice.DueDate.Format("2006-01-02")
	}
	if customer != nil {
		doc.CustomerName = customer.Name
		doc.CustomerPhone = customer.Phone
		doc.CustomerAddress = customer.Address
	}
	if device != nil {
		doc.DeviceLabel = fmt.Sprintf("%s %s", device.Brand, device.Model)
	}
	for _, item := range invoice.LineItems {
		doc.Items = append(doc.Items, DocumentItem{
			Description: item.Description,
			Qty:         fmt.Sprintf("%g", item.Quantity),
			UnitPrice:   formatCents(item.UnitPriceCents),
			Amount:      formatCents(item.LineTotalCents),
		})
	}
	return doc
}

type provider struct{}

func New() Provider {
	return &provider{}
}

func (p *provider) RenderInvoice(ctx context.Context, doc InvoiceDocument) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(10,
		text.NewCol(12, "Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Invoice number: "+doc.InvoiceNo, props.Text{Top: 0}),
			text.New("Date of issue: "+doc.IssueDate, props.Text{Top: 4}),
			text.New("Date due: "+doc.DueDate, props.Text{Top: 8}),
			text.New("Status: "+doc.Status, props.Text{Top: 12}),
		),
		col.New(6),
	)

	m.AddRow(40,
		col.New(4).Add(
			text.New(doc.ShopName, props.Text{Style: fontstyle.Bold}),
			text.New(doc.ShopAddress, props.Text{Top: 5}),
		),
		col.New(4).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(doc.CustomerName, props.Text{Top: 5}),
			text.New(doc.CustomerAddress, props.Text{Top: 9}),
			text.New(doc.CustomerPhone, props.Text{Top: 25}),
		),
		col.New(4).Add(
			text.New("Device", props.Text{Style: fontstyle.Bold}),
			text.New(doc.DeviceLabel, props.Text{Top: 5}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range doc.Items {
		m.AddRow(15,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, item.Qty, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	rows := []struct {
		label string
		value string
		bold  bool
	}{
		{"Subtotal", doc.Subtotal, false},
		{"Discount", doc.Discount, false},
		{"Tax", doc.Tax, false},
		{"Total", doc.Total, false},
		{"Amount paid", doc.AmountPaid, false},
		{"Balance due", doc.Balance, true},
	}
	for _, row := range rows {
		style := fontstyle.Normal
		if row.bold {
			style = fontstyle.Bold
		}
		m.AddRow(10,
			col.New(8),
			text.NewCol(2, row.label, props.Text{Size: 9, Style: style}),
			text.NewCol(2, row.value, props.Text{Size: 9, Align: align.Right, Style: style}),
		)
	}

	generated, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(generated.GetBytes()), nil
}
