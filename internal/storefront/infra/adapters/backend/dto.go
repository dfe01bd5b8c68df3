package backend

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
	"github.com/shopspring/decimal"
)

// flexID is an identifier the API encodes as a JSON number. Core ids are
// strings, so numeric ids are sent as numbers and anything else as a string.
type flexID string

func (id flexID) MarshalJSON() ([]byte, error) {
	s := string(id)
	if isDigits(s) {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

func (id *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

func isDigits(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type orderItemCreateDTO struct {
	ProductID flexID  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name"`
}

type orderCreateDTO struct {
	RestaurantID     flexID               `json:"restaurant_id"`
	TotalAmount      float64              `json:"total_amount"`
	DeliveryAddress  string               `json:"delivery_address"`
	DeliveryTimeType string               `json:"delivery_time_type"`
	ScheduledTime    string               `json:"scheduled_time,omitempty"`
	PaymentMethod    string               `json:"payment_method"`
	DocumentType     string               `json:"document_type"`
	NIP              *string              `json:"nip"`
	Remarks          string               `json:"remarks"`
	Items            []orderItemCreateDTO `json:"items"`
}

type orderItemDTO struct {
	ID        flexID  `json:"id"`
	ProductID flexID  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name"`
}

type orderDTO struct {
	ID                flexID         `json:"id"`
	Status            string         `json:"status"`
	CreatedAt         string         `json:"created_at"`
	TotalAmount       float64        `json:"total_amount"`
	RestaurantID      flexID         `json:"restaurant_id"`
	DeliveryAddress   string         `json:"delivery_address"`
	DeliveryTimeType  string         `json:"delivery_time_type"`
	ScheduledTime     string         `json:"scheduled_time,omitempty"`
	PaymentMethod     string         `json:"payment_method"`
	DocumentType      string         `json:"document_type"`
	NIP               *string        `json:"nip"`
	Remarks           *string        `json:"remarks"`
	Items             []orderItemDTO `json:"items"`
	RestaurantName    string         `json:"restaurant_name"`
	RestaurantAddress string         `json:"restaurant_address"`
}

type statusUpdateDTO struct {
	NewStatus string `json:"new_status"`
}

type userDTO struct {
	ID     flexID  `json:"id"`
	Email  string  `json:"email"`
	Role   string  `json:"role"`
	City   *string `json:"city"`
	Street *string `json:"street"`
}

type addressDTO struct {
	ID     flexID `json:"id"`
	Name   string `json:"name"`
	City   string `json:"city"`
	Street string `json:"street"`
	Number string `json:"number"`
}

type productDTO struct {
	ID           flexID  `json:"id"`
	RestaurantID flexID  `json:"restaurant_id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Category     string  `json:"category"`
}

type restaurantDTO struct {
	ID     flexID `json:"id"`
	Name   string `json:"name"`
	City   string `json:"city"`
	Street string `json:"street"`
	Number string `json:"number"`
}

func toOrderCreate(sub entity.Submission) orderCreateDTO {
	dto := orderCreateDTO{
		RestaurantID:     flexID(sub.RestaurantID),
		TotalAmount:      sub.TotalAmount.InexactFloat64(),
		DeliveryAddress:  sub.DeliveryAddress,
		DeliveryTimeType: string(sub.DeliveryTimeType),
		ScheduledTime:    sub.ScheduledTime,
		PaymentMethod:    string(sub.PaymentMethod),
		DocumentType:     string(sub.DocumentType),
		NIP:              sub.TaxID,
		Remarks:          sub.Remarks,
		Items:            make([]orderItemCreateDTO, 0, len(sub.Items)),
	}
	for _, it := range sub.Items {
		dto.Items = append(dto.Items, orderItemCreateDTO{
			ProductID: flexID(it.ProductID),
			Quantity:  it.Quantity,
			Price:     it.UnitPrice.InexactFloat64(),
			Name:      it.Name,
		})
	}
	return dto
}

func (d orderDTO) toEntity() *entity.Order {
	o := &entity.Order{
		ID:                string(d.ID),
		Status:            d.Status,
		RestaurantID:      string(d.RestaurantID),
		RestaurantName:    d.RestaurantName,
		RestaurantAddress: d.RestaurantAddress,
		DeliveryAddress:   d.DeliveryAddress,
		DeliveryTimeType:  entity.DeliveryTimeType(d.DeliveryTimeType),
		ScheduledTime:     d.ScheduledTime,
		PaymentMethod:     entity.PaymentMethod(d.PaymentMethod),
		DocumentType:      entity.DocumentType(d.DocumentType),
		TaxID:             d.NIP,
		TotalAmount:       money(d.TotalAmount),
		Items:             make([]entity.OrderItem, 0, len(d.Items)),
		CreatedAt:         parseTime(d.CreatedAt),
	}
	if d.Remarks != nil {
		o.Remarks = *d.Remarks
	}
	for _, it := range d.Items {
		o.Items = append(o.Items, entity.OrderItem{
			ProductID: string(it.ProductID),
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: money(it.Price),
		})
	}
	return o
}

func (d userDTO) toEntity() *entity.Profile {
	p := &entity.Profile{ID: string(d.ID), Email: d.Email, Role: d.Role}
	if d.City != nil {
		p.City = *d.City
	}
	if d.Street != nil {
		p.Street = *d.Street
	}
	return p
}

func (d addressDTO) toEntity() entity.Address {
	return entity.Address{
		ID:     string(d.ID),
		Label:  d.Name,
		City:   d.City,
		Street: d.Street,
		Number: d.Number,
	}
}

func (d productDTO) toEntity() entity.Product {
	return entity.Product{
		ID:           string(d.ID),
		RestaurantID: string(d.RestaurantID),
		Name:         d.Name,
		Category:     d.Category,
		Price:        money(d.Price),
	}
}

func (d restaurantDTO) toEntity() *entity.Restaurant {
	return &entity.Restaurant{
		ID:      string(d.ID),
		Name:    d.Name,
		Address: entity.FormatAddress(d.Street, d.Number, d.City),
	}
}

// money rounds a JSON float to cents.
func money(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}

// timeLayouts covers RFC 3339 and the zone-less ISO form the API emits.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// parseTime returns the zero time for empty or unparseable input.
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
