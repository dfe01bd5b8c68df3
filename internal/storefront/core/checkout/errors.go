package checkout

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindGateway    Kind = "gateway"
	KindState      Kind = "state"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrTaxIDRequired     = errors.New("tax id is required for an invoice")
	ErrAddressRequired   = errors.New("delivery address is required")
	ErrUnknownAddress    = errors.New("unknown address")
	ErrSlotRequired      = errors.New("scheduled delivery needs a time slot")
	ErrInvalidSlot       = errors.New("time slot is not available")
	ErrInvalidDelivery   = errors.New("unknown delivery type")
	ErrInvalidPayment    = errors.New("unknown payment method")
	ErrInvalidDocument   = errors.New("unknown document type")
	ErrInvalidTransition = errors.New("invalid step transition")
	ErrSubmitInFlight    = errors.New("submission already in flight")
	ErrNotOpen           = errors.New("checkout is not open")
	ErrReadOnly          = errors.New("confirmation step is read-only")
	ErrNoDocument        = errors.New("no document to acknowledge")
)

// Error is returned by every wizard operation that fails. Op names the
// operation, Kind tells the caller how to surface it.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("checkout: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationErr(op string, err error) error {
	return &Error{Op: op, Kind: KindValidation, Err: err}
}

func stateErr(op string, err error) error {
	return &Error{Op: op, Kind: KindState, Err: err}
}

func gatewayErr(op string, err error) error {
	return &Error{Op: op, Kind: KindGateway, Err: err}
}

// KindOf returns the Kind of err, or "" when err is not a checkout error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
