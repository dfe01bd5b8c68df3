package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           string          `json:"id"`
	RestaurantID string          `json:"restaurant_id"`
	Name         string          `json:"name"`
	Category     string          `json:"category,omitempty"`
	Price        decimal.Decimal `json:"price"`
}

type Restaurant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// CartLine is one product entry of the cart. UnitPrice is the price seen when
// the product was first added.
type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Address struct {
	ID     string
	Label  string
	City   string
	Street string
	Number string
}

// String formats the address the way it is sent as delivery_address.
func (a Address) String() string {
	return FormatAddress(a.Street, a.Number, a.City)
}

// FormatAddress renders "street number, city", dropping empty parts.
func FormatAddress(street, number, city string) string {
	line := strings.TrimSpace(strings.TrimSpace(street) + " " + strings.TrimSpace(number))
	city = strings.TrimSpace(city)
	switch {
	case line == "":
		return city
	case city == "":
		return line
	default:
		return line + ", " + city
	}
}

type Profile struct {
	ID     string
	Email  string
	Role   string
	City   string
	Street string
}
