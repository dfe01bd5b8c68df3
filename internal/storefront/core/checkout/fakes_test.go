package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/ports"
)

var (
	_ ports.OrderGateway       = (*fakeGateway)(nil)
	_ ports.ProfileSource      = (*fakeProfiles)(nil)
	_ ports.SubmissionRecorder = (*fakeRecorder)(nil)
)

type placeCall struct {
	credential string
	sub        entity.Submission
	key        string
}

type fakeGateway struct {
	mu    sync.Mutex
	calls []placeCall
	place func(ctx context.Context, sub entity.Submission) (*entity.Order, error)
}

func (g *fakeGateway) PlaceOrder(ctx context.Context, credential string, sub entity.Submission, key string) (*entity.Order, error) {
	g.mu.Lock()
	g.calls = append(g.calls, placeCall{credential: credential, sub: sub, key: key})
	place := g.place
	g.mu.Unlock()

	if place != nil {
		return place(ctx, sub)
	}
	return &entity.Order{
		ID:              "101",
		Status:          "pending",
		RestaurantID:    sub.RestaurantID,
		DeliveryAddress: sub.DeliveryAddress,
		TotalAmount:     sub.TotalAmount,
		PaymentMethod:   sub.PaymentMethod,
		DocumentType:    sub.DocumentType,
		TaxID:           sub.TaxID,
	}, nil
}

func (g *fakeGateway) ActiveOrder(context.Context, string) (*entity.Order, error) {
	return nil, nil
}

func (g *fakeGateway) UpdateStatus(context.Context, string, string, string) (*entity.Order, error) {
	return nil, errors.New("not implemented")
}

func (g *fakeGateway) Calls() []placeCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]placeCall(nil), g.calls...)
}

type fakeProfiles struct {
	profile      *entity.Profile
	profileErr   error
	addresses    []entity.Address
	addressesErr error
}

func (f *fakeProfiles) Me(context.Context, string) (*entity.Profile, error) {
	return f.profile, f.profileErr
}

func (f *fakeProfiles) Addresses(context.Context, string) ([]entity.Address, error) {
	return f.addresses, f.addressesErr
}

type fakeRecorder struct {
	mu       sync.Mutex
	attempts []ports.SubmissionAttempt
	err      error
}

func (r *fakeRecorder) Record(_ context.Context, a ports.SubmissionAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, a)
	return r.err
}

func (r *fakeRecorder) Statuses() []ports.AttemptStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.AttemptStatus, 0, len(r.attempts))
	for _, a := range r.attempts {
		out = append(out, a.Status)
	}
	return out
}
