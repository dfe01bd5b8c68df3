// Package document renders the receipt or invoice of a placed order and
// prints it through whichever print surface is available.
package document

import (
	"fmt"
	"strings"

	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/tracker"
	"github.com/shopspring/decimal"
)

const (
	DefaultSellerTaxID = "123-456-78-90"
	Currency           = "PLN"
	dateLayout         = "02.01.2006 15:04"
)

type Party struct {
	Name    string
	Address string
	TaxID   string
}

type Line struct {
	Index     int
	Name      string
	Quantity  int
	UnitPrice string
	Total     string
}

// Document is the printable view model of an order.
type Document struct {
	OrderID     string
	Title       string
	Invoice     bool
	Date        string
	Seller      Party
	Buyer       Party
	Lines       []Line
	Total       string
	ItemCount   int
	Payment     string
	Status      string
	StatusColor string
}

type Option func(*Document)

// WithSellerTaxID overrides the tax id printed in the seller block.
func WithSellerTaxID(taxID string) Option {
	return func(d *Document) {
		if taxID != "" {
			d.Seller.TaxID = taxID
		}
	}
}

func FromOrder(o *entity.Order, opts ...Option) Document {
	if o == nil {
		return Document{}
	}

	doc := Document{
		OrderID: o.ID,
		Title:   "Order receipt",
		Invoice: o.DocumentType == entity.DocumentInvoice,
		Seller: Party{
			Name:    o.RestaurantName,
			Address: o.RestaurantAddress,
			TaxID:   DefaultSellerTaxID,
		},
		Buyer:     Party{Address: o.DeliveryAddress},
		Total:     money(o.TotalAmount),
		ItemCount: len(o.Items),
		Payment:   paymentLabel(o.PaymentMethod),
	}
	if doc.Invoice {
		doc.Title = "VAT invoice"
	}
	if o.TaxID != nil {
		doc.Buyer.TaxID = strings.TrimSpace(*o.TaxID)
	}
	if !o.CreatedAt.IsZero() {
		doc.Date = o.CreatedAt.Format(dateLayout)
	}

	info := tracker.Describe(o.Status)
	doc.Status = info.Label
	doc.StatusColor = info.Color

	doc.Lines = make([]Line, 0, len(o.Items))
	for i, it := range o.Items {
		doc.Lines = append(doc.Lines, Line{
			Index:     i + 1,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: money(it.UnitPrice),
			Total:     money(it.Subtotal()),
		})
	}

	for _, opt := range opts {
		opt(&doc)
	}
	return doc
}

func paymentLabel(m entity.PaymentMethod) string {
	if m == entity.PaymentBlik {
		return "BLIK"
	}
	return "Payment card"
}

func money(d decimal.Decimal) string {
	return fmt.Sprintf("%s %s", d.StringFixed(2), Currency)
}
