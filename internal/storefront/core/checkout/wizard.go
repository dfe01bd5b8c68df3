// Package checkout implements the three-step checkout flow that turns the
// cart into an order: review, delivery and payment, confirmation.
//
// The wizard never clears the cart on its own. A placed order is kept as a
// pending document and the cart is emptied only when that document is
// acknowledged.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jcmexdev/food-storefront/internal/storefront/core/cart"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/ports"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const homeAddressLabel = "Home address"

var errNoOrder = errors.New("gateway returned no order")

type Option func(*Wizard)

func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

func WithProfileSource(p ports.ProfileSource) Option {
	return func(w *Wizard) { w.profiles = p }
}

func WithSubmissionLog(r ports.SubmissionRecorder) Option {
	return func(w *Wizard) { w.recorder = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Wizard) { w.logger = l }
}

// Wizard is safe for concurrent use. The gateway call in Submit runs without
// the wizard lock held; every other operation is atomic.
type Wizard struct {
	store    *cart.Store
	gateway  ports.OrderGateway
	profiles ports.ProfileSource
	recorder ports.SubmissionRecorder
	logger   *slog.Logger
	now      func() time.Time

	mu         sync.Mutex
	draft      *Draft
	addresses  []entity.Address
	submitting bool
	lastErr    error
	document   *entity.Order
}

func NewWizard(store *cart.Store, gateway ports.OrderGateway, opts ...Option) *Wizard {
	w := &Wizard{
		store:   store,
		gateway: gateway,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Open starts a fresh draft and loads the delivery addresses of the user.
// Address lookups that fail are logged and leave the list shorter.
func (w *Wizard) Open(ctx context.Context, credential string) error {
	w.mu.Lock()
	busy := w.submitting
	w.mu.Unlock()
	if busy {
		return stateErr("open", ErrSubmitInFlight)
	}

	addresses := w.loadAddresses(ctx, credential)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitting {
		return stateErr("open", ErrSubmitInFlight)
	}
	w.addresses = addresses
	w.draft = newDraft(addresses)
	w.lastErr = nil
	return nil
}

func (w *Wizard) loadAddresses(ctx context.Context, credential string) []entity.Address {
	if w.profiles == nil {
		return nil
	}

	var (
		home *entity.Address
		book []entity.Address
		g    errgroup.Group
	)
	g.Go(func() error {
		p, err := w.profiles.Me(ctx, credential)
		if err != nil {
			w.logger.WarnContext(ctx, "checkout: profile unavailable, skipping home address", "error", err)
			return nil
		}
		if p == nil || (strings.TrimSpace(p.City) == "" && strings.TrimSpace(p.Street) == "") {
			return nil
		}
		home = &entity.Address{ID: HomeAddressID, Label: homeAddressLabel, City: p.City, Street: p.Street}
		return nil
	})
	g.Go(func() error {
		list, err := w.profiles.Addresses(ctx, credential)
		if err != nil {
			w.logger.WarnContext(ctx, "checkout: address book unavailable", "error", err)
			return nil
		}
		book = list
		return nil
	})
	_ = g.Wait()

	out := make([]entity.Address, 0, len(book)+1)
	if home != nil {
		out = append(out, *home)
	}
	return append(out, book...)
}

// Cancel discards the draft. A pending document survives.
func (w *Wizard) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitting {
		return stateErr("cancel", ErrSubmitInFlight)
	}
	w.draft = nil
	w.lastErr = nil
	return nil
}

func (w *Wizard) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft != nil
}

func (w *Wizard) Next() error {
	const op = "next"
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkIdleLocked(op); err != nil {
		return err
	}
	if w.store.IsEmpty() {
		return validationErr(op, ErrEmptyCart)
	}
	if w.draft.Step >= StepConfirm {
		return stateErr(op, ErrInvalidTransition)
	}
	w.draft.Step++
	return nil
}

func (w *Wizard) Back() error {
	const op = "back"
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkIdleLocked(op); err != nil {
		return err
	}
	if w.draft.Step <= StepReview {
		return stateErr(op, ErrInvalidTransition)
	}
	w.draft.Step--
	w.lastErr = nil
	return nil
}

func (w *Wizard) checkIdleLocked(op string) error {
	if w.draft == nil {
		return stateErr(op, ErrNotOpen)
	}
	if w.submitting {
		return stateErr(op, ErrSubmitInFlight)
	}
	return nil
}

// edit applies fn to the draft. The confirmation step is read-only.
func (w *Wizard) edit(op string, fn func(d *Draft) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkIdleLocked(op); err != nil {
		return err
	}
	if w.draft.Step == StepConfirm {
		return stateErr(op, ErrReadOnly)
	}
	if err := fn(w.draft); err != nil {
		return validationErr(op, err)
	}
	return nil
}

func (w *Wizard) SetRemarks(remarks string) error {
	return w.edit("set remarks", func(d *Draft) error {
		d.Remarks = remarks
		return nil
	})
}

func (w *Wizard) SetDeliveryASAP() error {
	return w.edit("set delivery", func(d *Draft) error {
		d.DeliveryType = entity.DeliveryASAP
		d.ScheduledTime = ""
		return nil
	})
}

// SetScheduledTime switches to scheduled delivery. slot must be one of the
// slots TimeSlots currently offers.
func (w *Wizard) SetScheduledTime(slot string) error {
	return w.edit("set delivery", func(d *Draft) error {
		if !validSlot(w.now(), slot) {
			return ErrInvalidSlot
		}
		d.DeliveryType = entity.DeliveryScheduled
		d.ScheduledTime = slot
		return nil
	})
}

// SetDelivery sets the delivery mode by name. SCHEDULED needs a slot; an
// unknown mode leaves the draft unchanged.
func (w *Wizard) SetDelivery(kind entity.DeliveryTimeType, slot string) error {
	switch kind {
	case entity.DeliveryASAP:
		return w.SetDeliveryASAP()
	case entity.DeliveryScheduled:
		if slot == "" {
			return w.edit("set delivery", func(*Draft) error { return ErrSlotRequired })
		}
		return w.SetScheduledTime(slot)
	}
	return w.edit("set delivery", func(*Draft) error {
		return fmt.Errorf("%w: %q", ErrInvalidDelivery, kind)
	})
}

func (w *Wizard) SelectAddress(id string) error {
	return w.edit("select address", func(d *Draft) error {
		if id == NewAddressID {
			d.AddressID = NewAddressID
			return nil
		}
		for _, a := range w.addresses {
			if a.ID == id {
				d.AddressID = id
				return nil
			}
		}
		return ErrUnknownAddress
	})
}

func (w *Wizard) SelectNewAddress(city, street, number string) error {
	return w.edit("select address", func(d *Draft) error {
		d.AddressID = NewAddressID
		d.NewAddress = NewAddress{City: city, Street: street, Number: number}
		return nil
	})
}

func (w *Wizard) SetPaymentMethod(m entity.PaymentMethod) error {
	return w.edit("set payment", func(d *Draft) error {
		if !m.Valid() {
			return ErrInvalidPayment
		}
		d.PaymentMethod = m
		return nil
	})
}

func (w *Wizard) SetBlikCode(raw string) error {
	return w.edit("set payment", func(d *Draft) error {
		d.Payment.BlikCode = FormatBlik(raw)
		return nil
	})
}

func (w *Wizard) SetCardNumber(raw string) error {
	return w.edit("set payment", func(d *Draft) error {
		d.Payment.CardNumber = FormatCardNumber(raw)
		return nil
	})
}

func (w *Wizard) SetCardExpiry(raw string) error {
	return w.edit("set payment", func(d *Draft) error {
		d.Payment.CardExpiry = FormatCardExpiry(raw)
		return nil
	})
}

func (w *Wizard) SetCardCVC(raw string) error {
	return w.edit("set payment", func(d *Draft) error {
		d.Payment.CardCVC = FormatCVC(raw)
		return nil
	})
}

func (w *Wizard) SetDocumentType(t entity.DocumentType) error {
	return w.edit("set document", func(d *Draft) error {
		if !t.Valid() {
			return ErrInvalidDocument
		}
		d.DocumentType = t
		return nil
	})
}

// SetTaxID stores the buyer tax id. It is only checked at submit time.
func (w *Wizard) SetTaxID(taxID string) error {
	return w.edit("set tax id", func(d *Draft) error {
		d.TaxID = taxID
		return nil
	})
}

// BuildSubmission validates the draft against the cart and flattens both
// into a Submission.
func (w *Wizard) BuildSubmission() (entity.Submission, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.draft == nil {
		return entity.Submission{}, stateErr("build submission", ErrNotOpen)
	}
	sub, err := w.buildLocked()
	if err != nil {
		return entity.Submission{}, validationErr("build submission", err)
	}
	return sub, nil
}

func (w *Wizard) buildLocked() (entity.Submission, error) {
	d := w.draft
	snap := w.store.Snapshot()
	if len(snap.Lines) == 0 || snap.Restaurant == nil {
		return entity.Submission{}, ErrEmptyCart
	}

	address, err := resolveAddress(d, w.addresses)
	if err != nil {
		return entity.Submission{}, err
	}

	var taxID *string
	if d.DocumentType == entity.DocumentInvoice {
		t := strings.TrimSpace(d.TaxID)
		if t == "" {
			return entity.Submission{}, ErrTaxIDRequired
		}
		taxID = &t
	}

	if d.DeliveryType == entity.DeliveryScheduled {
		if d.ScheduledTime == "" {
			return entity.Submission{}, ErrSlotRequired
		}
		if !validSlot(w.now(), d.ScheduledTime) {
			return entity.Submission{}, ErrInvalidSlot
		}
	}

	items := make([]entity.SubmissionItem, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		items = append(items, entity.SubmissionItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	return entity.Submission{
		RestaurantID:     snap.Restaurant.ID,
		TotalAmount:      snap.Total(),
		PaymentMethod:    d.PaymentMethod,
		DeliveryAddress:  address,
		DeliveryTimeType: d.DeliveryType,
		ScheduledTime:    d.ScheduledTime,
		DocumentType:     d.DocumentType,
		TaxID:            taxID,
		Remarks:          d.Remarks,
		Items:            items,
	}, nil
}

// Submit places the order. Only one submission runs at a time; a concurrent
// call fails with ErrSubmitInFlight without reaching the gateway.
//
// On success the draft starts over at step 1 and the order becomes the
// pending document. On failure everything stays as it was and the error is
// kept in the view for a manual retry.
func (w *Wizard) Submit(ctx context.Context, credential string) (*entity.Order, error) {
	const op = "submit"

	w.mu.Lock()
	if err := w.checkIdleLocked(op); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	if w.draft.Step != StepConfirm {
		w.mu.Unlock()
		return nil, stateErr(op, ErrInvalidTransition)
	}
	key := w.draft.IdempotencyKey
	sub, err := w.buildLocked()
	if err != nil {
		verr := validationErr(op, err)
		w.lastErr = verr
		w.mu.Unlock()
		w.record(ctx, ports.SubmissionAttempt{
			IdempotencyKey: key,
			Credential:     credential,
			Status:         ports.AttemptRejected,
			Error:          err.Error(),
		})
		return nil, verr
	}
	w.submitting = true
	w.lastErr = nil
	w.mu.Unlock()

	w.record(ctx, ports.SubmissionAttempt{
		IdempotencyKey: key,
		Credential:     credential,
		Status:         ports.AttemptStarted,
		Submission:     &sub,
	})

	order, err := w.gateway.PlaceOrder(ctx, credential, sub, key)
	if err == nil && order == nil {
		err = errNoOrder
	}

	w.mu.Lock()
	w.submitting = false
	if err != nil {
		gerr := gatewayErr(op, err)
		w.lastErr = gerr
		w.mu.Unlock()

		w.logger.ErrorContext(ctx, "checkout: order placement failed",
			"idempotency_key", key, "restaurant_id", sub.RestaurantID, "error", err)
		w.record(ctx, ports.SubmissionAttempt{
			IdempotencyKey: key,
			Credential:     credential,
			Status:         ports.AttemptFailed,
			Submission:     &sub,
			Error:          err.Error(),
		})
		return nil, gerr
	}
	w.document = order
	if w.draft != nil {
		w.draft = newDraft(w.addresses)
	}
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "checkout: order placed",
		"order_id", order.ID, "idempotency_key", key, "total", sub.TotalAmount.StringFixed(2))
	w.record(ctx, ports.SubmissionAttempt{
		IdempotencyKey: key,
		Credential:     credential,
		Status:         ports.AttemptPlaced,
		Submission:     &sub,
		OrderID:        order.ID,
	})
	return order, nil
}

func (w *Wizard) record(ctx context.Context, a ports.SubmissionAttempt) {
	if w.recorder == nil {
		return
	}
	if err := w.recorder.Record(context.WithoutCancel(ctx), a); err != nil {
		w.logger.WarnContext(ctx, "checkout: failed to record submission attempt",
			"idempotency_key", a.IdempotencyKey, "status", string(a.Status), "error", err)
	}
}

// Document returns the order waiting to be acknowledged, if any.
func (w *Wizard) Document() *entity.Order {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.document
}

// AcknowledgeDocument closes the pending document, empties the cart and
// closes the wizard.
func (w *Wizard) AcknowledgeDocument() error {
	w.mu.Lock()
	if w.document == nil {
		w.mu.Unlock()
		return stateErr("acknowledge document", ErrNoDocument)
	}
	w.document = nil
	w.draft = nil
	w.lastErr = nil
	w.mu.Unlock()

	// cart listeners may read the wizard back
	w.store.Clear()
	return nil
}

// View is a read-only copy of the wizard state.
type View struct {
	Open       bool
	Step       int
	Empty      bool
	Submitting bool
	Draft      Draft
	Lines      []entity.CartLine
	Count      int
	Total      decimal.Decimal
	Addresses  []entity.Address
	Slots      []string
	Summary    *Summary
	LastError  error
	Document   *entity.Order
}

func (w *Wizard) State() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := w.store.Snapshot()
	v := View{
		Open:       w.draft != nil,
		Empty:      len(snap.Lines) == 0,
		Submitting: w.submitting,
		Lines:      snap.Lines,
		Count:      snap.Count(),
		Total:      snap.Total(),
		Addresses:  append([]entity.Address(nil), w.addresses...),
		LastError:  w.lastErr,
		Document:   w.document,
	}
	if w.draft == nil {
		return v
	}
	v.Draft = *w.draft
	v.Step = w.draft.Step
	v.Slots = TimeSlots(w.now())
	if w.draft.Step == StepConfirm {
		s := w.summaryLocked(snap)
		v.Summary = &s
	}
	return v
}
