package httpx

import (
	"github.com/jcmexdev/food-storefront/internal/storefront/core/cart"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type AddItemRequest struct {
	RestaurantID string `json:"restaurant_id"`
	ProductID    string `json:"product_id"`
}

type StatusUpdateRequest struct {
	NewStatus string `json:"new_status"`
}

type NewAddressDTO struct {
	City   string `json:"city"`
	Street string `json:"street"`
	Number string `json:"number"`
}

// DraftPatch carries the fields to change. Absent fields are left alone.
type DraftPatch struct {
	Remarks       *string        `json:"remarks"`
	DeliveryType  *string        `json:"delivery_type"`
	ScheduledTime *string        `json:"scheduled_time"`
	AddressID     *string        `json:"address_id"`
	NewAddress    *NewAddressDTO `json:"new_address"`
	PaymentMethod *string        `json:"payment_method"`
	BlikCode      *string        `json:"blik_code"`
	CardNumber    *string        `json:"card_number"`
	CardExpiry    *string        `json:"card_expiry"`
	CardCVC       *string        `json:"card_cvc"`
	DocumentType  *string        `json:"document_type"`
	TaxID         *string        `json:"nip"`
}

type ProductResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Price    string `json:"price"`
}

type MenuResponse struct {
	Restaurant RestaurantResponse `json:"restaurant"`
	Products   []ProductResponse  `json:"products"`
}

type RestaurantResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

type CartLineResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type CartResponse struct {
	Restaurant *RestaurantResponse `json:"restaurant,omitempty"`
	Lines      []CartLineResponse  `json:"lines"`
	Count      int                 `json:"count"`
	Total      string              `json:"total"`
	Empty      bool                `json:"empty"`
	Policy     string              `json:"policy"`
}

type AddressResponse struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Address string `json:"address"`
}

type DraftResponse struct {
	Step           int           `json:"step"`
	Remarks        string        `json:"remarks"`
	DeliveryType   string        `json:"delivery_type"`
	ScheduledTime  string        `json:"scheduled_time,omitempty"`
	AddressID      string        `json:"address_id"`
	NewAddress     NewAddressDTO `json:"new_address"`
	PaymentMethod  string        `json:"payment_method"`
	BlikCode       string        `json:"blik_code"`
	CardNumber     string        `json:"card_number"`
	CardExpiry     string        `json:"card_expiry"`
	CardCVC        string        `json:"card_cvc"`
	DocumentType   string        `json:"document_type"`
	TaxID          string        `json:"nip"`
	IdempotencyKey string        `json:"idempotency_key"`
}

type SummaryResponse struct {
	Restaurant string             `json:"restaurant"`
	Address    string             `json:"address"`
	Delivery   string             `json:"delivery"`
	Payment    string             `json:"payment"`
	Document   string             `json:"document"`
	Remarks    string             `json:"remarks,omitempty"`
	Lines      []CartLineResponse `json:"lines"`
	Count      int                `json:"count"`
	Total      string             `json:"total"`
}

type CheckoutResponse struct {
	Open       bool               `json:"open"`
	Step       int                `json:"step,omitempty"`
	Empty      bool               `json:"empty"`
	Submitting bool               `json:"submitting"`
	Draft      *DraftResponse     `json:"draft,omitempty"`
	Lines      []CartLineResponse `json:"lines"`
	Count      int                `json:"count"`
	Total      string             `json:"total"`
	Addresses  []AddressResponse  `json:"addresses"`
	Slots      []string           `json:"slots"`
	Summary    *SummaryResponse   `json:"summary,omitempty"`
	LastError  *ErrorResponse     `json:"last_error,omitempty"`
	Document   *OrderResponse     `json:"document,omitempty"`
}

type OrderItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type OrderResponse struct {
	ID                string              `json:"id"`
	Status            string              `json:"status"`
	RestaurantName    string              `json:"restaurant_name"`
	RestaurantAddress string              `json:"restaurant_address"`
	DeliveryAddress   string              `json:"delivery_address"`
	DeliveryTimeType  string              `json:"delivery_time_type"`
	ScheduledTime     string              `json:"scheduled_time,omitempty"`
	PaymentMethod     string              `json:"payment_method"`
	DocumentType      string              `json:"document_type"`
	TaxID             *string             `json:"nip"`
	Remarks           string              `json:"remarks,omitempty"`
	Total             string              `json:"total_amount"`
	Items             []OrderItemResponse `json:"items"`
	CreatedAt         string              `json:"created_at,omitempty"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func mapRestaurant(r *entity.Restaurant) *RestaurantResponse {
	if r == nil {
		return nil
	}
	return &RestaurantResponse{ID: r.ID, Name: r.Name, Address: r.Address}
}

func mapLines(lines []entity.CartLine) []CartLineResponse {
	out := make([]CartLineResponse, len(lines))
	for i, l := range lines {
		out[i] = CartLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: money(l.UnitPrice),
			Quantity:  l.Quantity,
			Subtotal:  money(l.Subtotal()),
		}
	}
	return out
}

func mapCart(snap cart.Snapshot, policy cart.Policy) CartResponse {
	return CartResponse{
		Restaurant: mapRestaurant(snap.Restaurant),
		Lines:      mapLines(snap.Lines),
		Count:      snap.Count(),
		Total:      money(snap.Total()),
		Empty:      len(snap.Lines) == 0,
		Policy:     policy.String(),
	}
}

func mapOrderToResponse(o *entity.Order) *OrderResponse {
	if o == nil {
		return nil
	}
	resp := &OrderResponse{
		ID:                o.ID,
		Status:            o.Status,
		RestaurantName:    o.RestaurantName,
		RestaurantAddress: o.RestaurantAddress,
		DeliveryAddress:   o.DeliveryAddress,
		DeliveryTimeType:  string(o.DeliveryTimeType),
		ScheduledTime:     o.ScheduledTime,
		PaymentMethod:     string(o.PaymentMethod),
		DocumentType:      string(o.DocumentType),
		TaxID:             o.TaxID,
		Remarks:           o.Remarks,
		Total:             money(o.TotalAmount),
		Items:             make([]OrderItemResponse, len(o.Items)),
	}
	for i, it := range o.Items {
		resp.Items[i] = OrderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: money(it.UnitPrice),
		}
	}
	if !o.CreatedAt.IsZero() {
		resp.CreatedAt = o.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

func mapCheckout(v checkout.View) CheckoutResponse {
	resp := CheckoutResponse{
		Open:       v.Open,
		Step:       v.Step,
		Empty:      v.Empty,
		Submitting: v.Submitting,
		Lines:      mapLines(v.Lines),
		Count:      v.Count,
		Total:      money(v.Total),
		Addresses:  make([]AddressResponse, len(v.Addresses)),
		Slots:      v.Slots,
		Document:   mapOrderToResponse(v.Document),
	}
	if resp.Slots == nil {
		resp.Slots = []string{}
	}
	for i, a := range v.Addresses {
		resp.Addresses[i] = AddressResponse{ID: a.ID, Label: a.Label, Address: a.String()}
	}
	if v.Open {
		d := v.Draft
		resp.Draft = &DraftResponse{
			Step:           d.Step,
			Remarks:        d.Remarks,
			DeliveryType:   string(d.DeliveryType),
			ScheduledTime:  d.ScheduledTime,
			AddressID:      d.AddressID,
			NewAddress:     NewAddressDTO(d.NewAddress),
			PaymentMethod:  string(d.PaymentMethod),
			BlikCode:       d.Payment.BlikCode,
			CardNumber:     d.Payment.CardNumber,
			CardExpiry:     d.Payment.CardExpiry,
			CardCVC:        d.Payment.CardCVC,
			DocumentType:   string(d.DocumentType),
			TaxID:          d.TaxID,
			IdempotencyKey: d.IdempotencyKey,
		}
	}
	if s := v.Summary; s != nil {
		sr := &SummaryResponse{
			Address:  s.Address,
			Delivery: s.Delivery,
			Payment:  s.Payment,
			Document: s.Document,
			Remarks:  s.Remarks,
			Lines:    mapLines(s.Lines),
			Count:    s.Count,
			Total:    money(s.Total),
		}
		if s.Restaurant != nil {
			sr.Restaurant = s.Restaurant.Name
		}
		resp.Summary = sr
	}
	if v.LastError != nil {
		code, _ := classify(v.LastError)
		resp.LastError = &ErrorResponse{Error: code, Message: v.LastError.Error()}
	}
	return resp
}
