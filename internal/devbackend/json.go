package devbackend

// createdAtLayout matches the zone-less ISO timestamps of the real API.
const createdAtLayout = "2006-01-02T15:04:05.999999"

type restaurantJSON struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	City   string `json:"city"`
	Street string `json:"street"`
	Number string `json:"number"`
}

func toRestaurantJSON(r Restaurant) restaurantJSON {
	return restaurantJSON{ID: r.ID, Name: r.Name, City: r.City, Street: r.Street, Number: r.Number}
}

type productJSON struct {
	ID           int     `json:"id"`
	RestaurantID int     `json:"restaurant_id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Category     string  `json:"category"`
}

type userJSON struct {
	ID     int     `json:"id"`
	Email  string  `json:"email"`
	Role   string  `json:"role"`
	City   *string `json:"city"`
	Street *string `json:"street"`
}

type addressJSON struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	City   string `json:"city"`
	Street string `json:"street"`
	Number string `json:"number"`
}

type orderItemCreateJSON struct {
	ProductID int     `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type orderCreateJSON struct {
	RestaurantID     int                   `json:"restaurant_id"`
	TotalAmount      float64               `json:"total_amount"`
	DeliveryAddress  string                `json:"delivery_address"`
	DeliveryTimeType string                `json:"delivery_time_type"`
	ScheduledTime    string                `json:"scheduled_time"`
	PaymentMethod    string                `json:"payment_method"`
	DocumentType     string                `json:"document_type"`
	NIP              *string               `json:"nip"`
	Remarks          *string               `json:"remarks"`
	Items            []orderItemCreateJSON `json:"items"`
}

type orderItemJSON struct {
	ID        int     `json:"id"`
	ProductID int     `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name"`
}

type orderJSON struct {
	ID                int             `json:"id"`
	Status            string          `json:"status"`
	CreatedAt         string          `json:"created_at"`
	TotalAmount       float64         `json:"total_amount"`
	RestaurantID      int             `json:"restaurant_id"`
	DeliveryAddress   string          `json:"delivery_address"`
	DeliveryTimeType  string          `json:"delivery_time_type"`
	ScheduledTime     string          `json:"scheduled_time,omitempty"`
	PaymentMethod     string          `json:"payment_method"`
	DocumentType      string          `json:"document_type"`
	NIP               *string         `json:"nip"`
	Remarks           *string         `json:"remarks"`
	Items             []orderItemJSON `json:"items"`
	RestaurantName    string          `json:"restaurant_name"`
	RestaurantAddress string          `json:"restaurant_address"`
}

type statusUpdateJSON struct {
	NewStatus string `json:"new_status"`
}

func (s *Server) orderJSON(o Order) orderJSON {
	out := orderJSON{
		ID:               o.ID,
		Status:           string(o.Status),
		CreatedAt:        o.CreatedAt.Format(createdAtLayout),
		TotalAmount:      o.TotalAmount,
		RestaurantID:     o.RestaurantID,
		DeliveryAddress:  o.DeliveryAddress,
		DeliveryTimeType: o.DeliveryTimeType,
		ScheduledTime:    o.ScheduledTime,
		PaymentMethod:    o.PaymentMethod,
		DocumentType:     o.DocumentType,
		NIP:              o.NIP,
		Remarks:          o.Remarks,
		Items:            make([]orderItemJSON, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, orderItemJSON{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price, Name: it.Name})
	}
	if r, err := s.store.Restaurant(o.RestaurantID); err == nil {
		out.RestaurantName = r.Name
		out.RestaurantAddress = r.Address()
	}
	return out
}
