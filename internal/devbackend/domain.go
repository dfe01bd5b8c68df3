// Package devbackend is an in-memory stand-in for the food-ordering API. It
// serves the subset of endpoints the storefront calls and is meant for local
// runs and end-to-end tests only.
package devbackend

import "time"

type Role string

const (
	RoleClient Role = "client"
	RoleOwner  Role = "owner"
)

type User struct {
	ID     int
	Email  string
	Role   Role
	City   string
	Street string
}

type Address struct {
	ID     int
	UserID int
	Name   string
	City   string
	Street string
	Number string
}

type Restaurant struct {
	ID      int
	OwnerID int
	Name    string
	City    string
	Street  string
	Number  string
}

func (r Restaurant) Address() string {
	return r.Street + " " + r.Number + ", " + r.City
}

type Product struct {
	ID           int
	RestaurantID int
	Name         string
	Category     string
	Price        float64
}

type OrderItem struct {
	ID        int
	ProductID int
	Quantity  int
	Price     float64
	Name      string
}

type Order struct {
	ID               int
	UserID           int
	RestaurantID     int
	Status           OrderStatus
	TotalAmount      float64
	DeliveryAddress  string
	DeliveryTimeType string
	ScheduledTime    string
	PaymentMethod    string
	DocumentType     string
	NIP              *string
	Remarks          *string
	Items            []OrderItem
	IdempotencyKey   string
	RequestID        string
	CreatedAt        time.Time
}

type OrderStatus string

const (
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusDelivery  OrderStatus = "delivery"
	StatusArrived   OrderStatus = "arrived"
	StatusDelivered OrderStatus = "delivered"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// Active reports whether the order still shows up in GET /orders/active.
func (s OrderStatus) Active() bool {
	switch s {
	case StatusConfirmed, StatusPreparing, StatusDelivery, StatusArrived:
		return true
	}
	return false
}
