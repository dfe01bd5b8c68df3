package httpx

import (
	"net/http"

	"github.com/jcmexdev/food-storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
)

func (h *Handler) OpenCheckout(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	token, err := bearer(r, s)
	if err != nil {
		writeErr(w, err)
		return
	}

	s.Lock()
	defer s.Unlock()
	if err := s.Wizard.Open(r.Context(), token); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCheckout(s.Wizard.State()))
}

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	writeJSON(w, http.StatusOK, mapCheckout(s.Wizard.State()))
}

func (h *Handler) PatchDraft(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)

	var patch DraftPatch
	if err := decode(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	s.Lock()
	defer s.Unlock()
	if err := applyPatch(s.Wizard, patch); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCheckout(s.Wizard.State()))
}

// applyPatch applies the present fields in a fixed order and stops at the
// first error. Fields applied before it stay applied.
func applyPatch(wz *checkout.Wizard, p DraftPatch) error {
	steps := []func() error{
		func() error {
			if p.Remarks == nil {
				return nil
			}
			return wz.SetRemarks(*p.Remarks)
		},
		func() error {
			if p.DeliveryType != nil {
				slot := ""
				if p.ScheduledTime != nil {
					slot = *p.ScheduledTime
				}
				return wz.SetDelivery(entity.DeliveryTimeType(*p.DeliveryType), slot)
			}
			if p.ScheduledTime != nil {
				return wz.SetScheduledTime(*p.ScheduledTime)
			}
			return nil
		},
		func() error {
			if p.NewAddress != nil {
				return wz.SelectNewAddress(p.NewAddress.City, p.NewAddress.Street, p.NewAddress.Number)
			}
			if p.AddressID != nil {
				return wz.SelectAddress(*p.AddressID)
			}
			return nil
		},
		func() error {
			if p.PaymentMethod == nil {
				return nil
			}
			return wz.SetPaymentMethod(entity.PaymentMethod(*p.PaymentMethod))
		},
		func() error {
			if p.BlikCode == nil {
				return nil
			}
			return wz.SetBlikCode(*p.BlikCode)
		},
		func() error {
			if p.CardNumber == nil {
				return nil
			}
			return wz.SetCardNumber(*p.CardNumber)
		},
		func() error {
			if p.CardExpiry == nil {
				return nil
			}
			return wz.SetCardExpiry(*p.CardExpiry)
		},
		func() error {
			if p.CardCVC == nil {
				return nil
			}
			return wz.SetCardCVC(*p.CardCVC)
		},
		func() error {
			if p.DocumentType == nil {
				return nil
			}
			return wz.SetDocumentType(entity.DocumentType(*p.DocumentType))
		},
		func() error {
			if p.TaxID == nil {
				return nil
			}
			return wz.SetTaxID(*p.TaxID)
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) NextStep(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	s.Lock()
	defer s.Unlock()
	if err := s.Wizard.Next(); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCheckout(s.Wizard.State()))
}

func (h *Handler) PrevStep(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	s.Lock()
	defer s.Unlock()
	if err := s.Wizard.Back(); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCheckout(s.Wizard.State()))
}

// Submit places the order. It does not take the session lock: the wizard
// itself rejects a second submit while one is in flight.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	token, err := bearer(r, s)
	if err != nil {
		writeErr(w, err)
		return
	}

	order, err := s.Wizard.Submit(r.Context(), token)
	if err != nil {
		writeErr(w, err)
		return
	}
	s.SetActiveOrder(order)
	h.hub.Publish(s.ID, order)

	writeJSON(w, http.StatusCreated, mapCheckout(s.Wizard.State()))
}

func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	s.Lock()
	defer s.Unlock()
	if err := s.Wizard.Cancel(); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCheckout(s.Wizard.State()))
}
