package document

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() *entity.Order {
	tax := " 5213017228 "
	return &entity.Order{
		ID:                "42",
		Status:            "preparing",
		RestaurantName:    "Pizzeria <Roma>",
		RestaurantAddress: "Długa 5, Gdańsk",
		DeliveryAddress:   "Ogarna 1, Gdańsk",
		PaymentMethod:     entity.PaymentBlik,
		DocumentType:      entity.DocumentInvoice,
		TaxID:             &tax,
		TotalAmount:       decimal.RequireFromString("25"),
		CreatedAt:         time.Date(2026, 3, 14, 18, 7, 0, 0, time.UTC),
		Items: []entity.OrderItem{
			{ProductID: "10", Name: "Margherita", Quantity: 2, UnitPrice: decimal.RequireFromString("10")},
			{ProductID: "11", Name: "Calzone", Quantity: 1, UnitPrice: decimal.RequireFromString("5")},
		},
	}
}

func TestFromOrder_Invoice(t *testing.T) {
	doc := FromOrder(sampleOrder())

	assert.Equal(t, "VAT invoice", doc.Title)
	assert.True(t, doc.Invoice)
	assert.Equal(t, "14.03.2026 18:07", doc.Date)
	assert.Equal(t, DefaultSellerTaxID, doc.Seller.TaxID)
	assert.Equal(t, "5213017228", doc.Buyer.TaxID)
	assert.Equal(t, "25.00 PLN", doc.Total)
	assert.Equal(t, 2, doc.ItemCount)
	assert.Equal(t, "BLIK", doc.Payment)
	assert.Equal(t, "Preparing", doc.Status)

	require.Len(t, doc.Lines, 2)
	assert.Equal(t, Line{Index: 1, Name: "Margherita", Quantity: 2, UnitPrice: "10.00 PLN", Total: "20.00 PLN"}, doc.Lines[0])
}

func TestFromOrder_Receipt(t *testing.T) {
	o := sampleOrder()
	o.DocumentType = entity.DocumentReceipt
	o.TaxID = nil
	o.PaymentMethod = entity.PaymentCard

	doc := FromOrder(o, WithSellerTaxID("999-000-11-22"))
	assert.Equal(t, "Order receipt", doc.Title)
	assert.False(t, doc.Invoice)
	assert.Empty(t, doc.Buyer.TaxID)
	assert.Equal(t, "Payment card", doc.Payment)
	assert.Equal(t, "999-000-11-22", doc.Seller.TaxID)

	assert.Equal(t, Document{}, FromOrder(nil))
}

func TestRenderer(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	r.now = func() time.Time { return time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC) }
	doc := FromOrder(sampleOrder())

	var view bytes.Buffer
	require.NoError(t, r.RenderView(&view, doc))
	html := view.String()
	assert.Contains(t, html, "VAT invoice")
	assert.Contains(t, html, "#42")
	assert.Contains(t, html, "Pizzeria &lt;Roma&gt;")
	assert.Contains(t, html, "Customer tax ID:</strong> 5213017228")
	assert.Contains(t, html, "20.00 PLN")
	assert.Contains(t, html, "2 items in this order")
	assert.NotContains(t, html, "window.print()")

	var printable bytes.Buffer
	require.NoError(t, r.RenderPrintable(&printable, doc))
	assert.Contains(t, printable.String(), "Printed at: 14.03.2026 19:00")
	assert.Contains(t, printable.String(), "window.print()")
}

type fakeSurface struct {
	bytes.Buffer
	closed bool
}

func (s *fakeSurface) Close() error {
	s.closed = true
	return nil
}

type fakeOpener struct {
	surface *fakeSurface
	err     error
}

func (o *fakeOpener) Open(context.Context) (io.WriteCloser, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.surface, nil
}

func TestChain_PopupFirst(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	doc := FromOrder(sampleOrder())

	surface := &fakeSurface{}
	var inline bytes.Buffer
	p := Chain(NewPopupPrinter(&fakeOpener{surface: surface}, r), NewInlinePrinter(&inline, r))

	require.NoError(t, p.Print(context.Background(), doc))
	assert.True(t, surface.closed)
	assert.Contains(t, surface.String(), "Printed at:")
	assert.Zero(t, inline.Len())
}

func TestChain_FallsBackToInline(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	doc := FromOrder(sampleOrder())

	var inline bytes.Buffer
	p := Chain(NewPopupPrinter(&fakeOpener{err: ErrSurfaceUnavailable}, r), NewInlinePrinter(&inline, r))

	require.NoError(t, p.Print(context.Background(), doc))
	assert.Contains(t, inline.String(), "window.print()")
	assert.Contains(t, inline.String(), "VAT invoice")
}

func TestChain_StopsOnOtherErrors(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	boom := errors.New("boom")
	var inline bytes.Buffer
	p := Chain(NewPopupPrinter(&fakeOpener{err: boom}, r), NewInlinePrinter(&inline, r))

	assert.ErrorIs(t, p.Print(context.Background(), Document{}), boom)
	assert.Zero(t, inline.Len())

	assert.ErrorIs(t, Chain().Print(context.Background(), Document{}), ErrSurfaceUnavailable)
}
