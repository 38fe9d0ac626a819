package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/osvs/memberportal/internal/domain/apierror"
	"github.com/osvs/memberportal/internal/domain/member"
)

// fakePayments serves a scripted sequence of statuses.
type fakePayments struct {
	mu       sync.Mutex
	statuses []member.PaymentStatus
	lists    [][]member.MembershipPayment
	polls    int
	failures int
	fatal    error
	listErrs []error
}

func (f *fakePayments) CreateMembershipPayment(_ context.Context, p member.Provider, body member.MembershipBody) (*member.Checkout, error) {
	if p == member.ProviderSwish {
		return &member.Checkout{Token: "swish-tok", PaymentID: 1}, nil
	}
	return &member.Checkout{ClientSecret: "pi_secret", InvoiceToken: "inv-tok", PaymentID: 1}, nil
}

func (f *fakePayments) MembershipStatus(context.Context, member.Provider, string) (*member.PaymentState, error) {
	return f.next()
}

func (f *fakePayments) EventPaymentStatus(context.Context, string) (*member.PaymentState, error) {
	return f.next()
}

func (f *fakePayments) CreateEventPayment(context.Context, int64) (*member.Checkout, error) {
	return &member.Checkout{InvoiceToken: "ev-tok"}, nil
}

func (f *fakePayments) MyMemberships(context.Context, int) ([]member.MembershipPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.listErrs) > 0 {
		err := f.listErrs[0]
		f.listErrs = f.listErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if len(f.lists) == 0 {
		return nil, errors.New("no more listings")
	}
	l := f.lists[0]
	if len(f.lists) > 1 {
		f.lists = f.lists[1:]
	}
	return l, nil
}

func (f *fakePayments) next() (*member.PaymentState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.fatal != nil {
		return nil, f.fatal
	}
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("gateway timeout")
	}
	s := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return &member.PaymentState{Status: s}, nil
}

func fastCheckout(fp *fakePayments, maxPolls int) *CheckoutService {
	return NewCheckoutService(fp,
		WithPollInterval(time.Millisecond),
		WithMaxPolls(maxPolls),
		WithCheckoutLogger(quietLogger()),
	)
}

func TestCheckoutService_AwaitSettles(t *testing.T) {
	fp := &fakePayments{
		statuses: []member.PaymentStatus{member.PaymentPending, member.PaymentPending, member.PaymentPaid},
		failures: 1,
	}
	svc := fastCheckout(fp, 10)

	co, err := svc.StartMembership(context.Background(), member.ProviderStripe, 2026, 500)
	if err != nil {
		t.Fatal(err)
	}
	st, err := svc.AwaitMembership(context.Background(), member.ProviderStripe, co.StatusToken())
	if err != nil {
		t.Fatalf("AwaitMembership() error = %v", err)
	}
	if st.Status != member.PaymentPaid {
		t.Errorf("Status = %s, want Paid", st.Status)
	}
	if fp.polls != 4 {
		t.Errorf("polls = %d, want 4 (one failure, two pending, paid)", fp.polls)
	}
}

func TestCheckoutService_AwaitTimeout(t *testing.T) {
	fp := &fakePayments{statuses: []member.PaymentStatus{member.PaymentPending}}
	svc := fastCheckout(fp, 3)

	_, err := svc.AwaitEvent(context.Background(), "ev-tok")
	if !errors.Is(err, ErrPaymentTimeout) {
		t.Errorf("AwaitEvent() error = %v, want ErrPaymentTimeout", err)
	}
	if fp.polls != 3 {
		t.Errorf("polls = %d, want 3", fp.polls)
	}
}

func TestCheckoutService_AwaitCancelled(t *testing.T) {
	fp := &fakePayments{statuses: []member.PaymentStatus{member.PaymentPending}}
	svc := NewCheckoutService(fp, WithPollInterval(time.Hour), WithCheckoutLogger(quietLogger()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := svc.AwaitEvent(ctx, "ev-tok"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("AwaitEvent() error = %v, want deadline exceeded", err)
	}
}

func TestCheckoutService_AwaitNeedsToken(t *testing.T) {
	svc := fastCheckout(&fakePayments{}, 3)
	if _, err := svc.AwaitEvent(context.Background(), ""); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestCheckoutService_WatchMemberships(t *testing.T) {
	pending := []member.MembershipPayment{{ID: 1, Year: 2026, Status: member.PaymentPending}}
	paid := []member.MembershipPayment{{ID: 1, Year: 2026, Status: member.PaymentPaid}}
	fp := &fakePayments{lists: [][]member.MembershipPayment{pending, pending, paid}}
	svc := fastCheckout(fp, 10)

	var updates int
	got, err := svc.WatchMemberships(context.Background(), 2026, func([]member.MembershipPayment) { updates++ })
	if err != nil {
		t.Fatalf("WatchMemberships() error = %v", err)
	}
	if got[0].Status != member.PaymentPaid {
		t.Errorf("final status = %s", got[0].Status)
	}
	if updates != 3 {
		t.Errorf("updates = %d, want 3", updates)
	}
}

func TestCheckoutService_WatchStopsImmediatelyWhenSettled(t *testing.T) {
	fp := &fakePayments{lists: [][]member.MembershipPayment{{{ID: 1, Status: member.PaymentRefunded}}}}
	svc := fastCheckout(fp, 10)

	got, err := svc.WatchMemberships(context.Background(), 0, nil)
	if err != nil || len(got) != 1 {
		t.Errorf("WatchMemberships() = %+v, %v", got, err)
	}
}

func TestCheckoutService_AwaitStopsOnClientError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantPolls int
	}{
		{"unknown token", 404, 1},
		{"session gone", 401, 1},
		{"forbidden", 403, 1},
		{"server error retried", 502, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := &fakePayments{fatal: &apierror.TransportError{Status: tt.status, Message: "Payment not found"}}
			svc := fastCheckout(fp, 10)

			_, err := svc.AwaitEvent(context.Background(), "bad-token")
			if fp.polls != tt.wantPolls {
				t.Errorf("polls = %d, want %d", fp.polls, tt.wantPolls)
			}
			if tt.status < 500 {
				if apierror.StatusOf(err) != tt.status {
					t.Errorf("AwaitEvent() error = %v, want status %d", err, tt.status)
				}
				if tt.status == 404 && !apierror.IsNotFound(err) {
					t.Errorf("AwaitEvent() error = %v, want not found", err)
				}
				return
			}
			if !errors.Is(err, ErrPaymentTimeout) {
				t.Errorf("AwaitEvent() error = %v, want ErrPaymentTimeout", err)
			}
		})
	}
}

func TestCheckoutService_WatchStopsOnClientError(t *testing.T) {
	pending := []member.MembershipPayment{{ID: 1, Status: member.PaymentPending}}
	fp := &fakePayments{
		lists:    [][]member.MembershipPayment{pending},
		listErrs: []error{nil, &apierror.TransportError{Status: 401, Message: "Not authenticated"}},
	}
	svc := fastCheckout(fp, 10)

	list, err := svc.WatchMemberships(context.Background(), 2026, nil)
	if !apierror.IsUnauthorized(err) {
		t.Fatalf("WatchMemberships() error = %v, want 401", err)
	}
	if len(list) != 1 || list[0].Status != member.PaymentPending {
		t.Errorf("list = %+v, want the last pending listing", list)
	}
}
