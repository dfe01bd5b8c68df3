package checkout

import (
	"strings"

	"github.com/google/uuid"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
)

const (
	StepReview   = 1
	StepDelivery = 2
	StepConfirm  = 3
)

const (
	// NewAddressID selects the one-time address typed into the draft.
	NewAddressID = "new"
	// HomeAddressID is the profile address placed in front of the address book.
	HomeAddressID = "main_home"
)

// NewAddress is a one-time delivery address that is not saved anywhere.
type NewAddress struct {
	City   string
	Street string
	Number string
}

// Draft is the in-progress checkout form. It lives from Open until a
// successful submission or Cancel.
type Draft struct {
	Step          int
	Remarks       string
	DeliveryType  entity.DeliveryTimeType
	ScheduledTime string
	AddressID     string
	NewAddress    NewAddress
	PaymentMethod entity.PaymentMethod
	Payment       PaymentFields
	DocumentType  entity.DocumentType
	TaxID         string

	// IdempotencyKey is sent with every submit of this draft so a retry after
	// an ambiguous failure cannot create a second order.
	IdempotencyKey string
}

func newDraft(addresses []entity.Address) *Draft {
	d := &Draft{
		Step:           StepReview,
		DeliveryType:   entity.DeliveryASAP,
		AddressID:      NewAddressID,
		PaymentMethod:  entity.PaymentBlik,
		DocumentType:   entity.DocumentReceipt,
		IdempotencyKey: uuid.NewString(),
	}
	if len(addresses) > 0 {
		d.AddressID = addresses[0].ID
	}
	return d
}

// resolveAddress turns the draft's address selection into the string sent as
// delivery_address.
func resolveAddress(d *Draft, addresses []entity.Address) (string, error) {
	switch d.AddressID {
	case "":
		return "", ErrAddressRequired
	case NewAddressID:
		a := d.NewAddress
		if strings.TrimSpace(a.Street) == "" || strings.TrimSpace(a.City) == "" {
			return "", ErrAddressRequired
		}
		return entity.FormatAddress(a.Street, a.Number, a.City), nil
	}
	for _, a := range addresses {
		if a.ID != d.AddressID {
			continue
		}
		s := a.String()
		if s == "" {
			return "", ErrAddressRequired
		}
		return s, nil
	}
	return "", ErrUnknownAddress
}

func deliveryLabel(d *Draft) string {
	if d.DeliveryType == entity.DeliveryScheduled && d.ScheduledTime != "" {
		return "Scheduled " + d.ScheduledTime
	}
	return "ASAP"
}

func documentLabel(d *Draft) string {
	if d.DocumentType != entity.DocumentInvoice {
		return "Receipt"
	}
	if tax := strings.TrimSpace(d.TaxID); tax != "" {
		return "Invoice (" + tax + ")"
	}
	return "Invoice"
}
