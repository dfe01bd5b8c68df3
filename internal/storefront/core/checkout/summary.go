package checkout

import (
	"github.com/jcmexdev/food-storefront/internal/storefront/core/cart"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
	"github.com/shopspring/decimal"
)

// Summary is what the confirmation step shows. Payment details are masked.
type Summary struct {
	Restaurant *entity.Restaurant
	Address    string
	Delivery   string
	Payment    string
	Document   string
	Remarks    string
	Lines      []entity.CartLine
	Count      int
	Total      decimal.Decimal
}

// Summary returns the confirmation projection of the current draft.
func (w *Wizard) Summary() (Summary, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.draft == nil {
		return Summary{}, stateErr("summary", ErrNotOpen)
	}
	return w.summaryLocked(w.store.Snapshot()), nil
}

func (w *Wizard) summaryLocked(snap cart.Snapshot) Summary {
	d := w.draft
	// an unresolved address shows as empty, submit reports the error
	address, _ := resolveAddress(d, w.addresses)
	return Summary{
		Restaurant: snap.Restaurant,
		Address:    address,
		Delivery:   deliveryLabel(d),
		Payment:    maskPayment(d.PaymentMethod, d.Payment),
		Document:   documentLabel(d),
		Remarks:    d.Remarks,
		Lines:      snap.Lines,
		Count:      snap.Count(),
		Total:      snap.Total(),
	}
}
