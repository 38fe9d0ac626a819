package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/osvs/memberportal/internal/domain/apierror"
	"github.com/osvs/memberportal/internal/domain/member"
)

// ErrPaymentTimeout is returned when a payment is still pending after the
// maximum number of polls.
var ErrPaymentTimeout = errors.New("payment still pending")

const (
	defaultPollInterval = 8 * time.Second
	defaultMaxPolls     = 75
)

// CheckoutBackend is the part of the API payments need.
type CheckoutBackend interface {
	CreateMembershipPayment(ctx context.Context, provider member.Provider, body member.MembershipBody) (*member.Checkout, error)
	MembershipStatus(ctx context.Context, provider member.Provider, token string) (*member.PaymentState, error)
	MyMemberships(ctx context.Context, year int) ([]member.MembershipPayment, error)
	CreateEventPayment(ctx context.Context, eventID int64) (*member.Checkout, error)
	EventPaymentStatus(ctx context.Context, token string) (*member.PaymentState, error)
}

// CheckoutOption configures a CheckoutService.
type CheckoutOption func(*CheckoutService)

// WithPollInterval sets the delay between status polls.
func WithPollInterval(d time.Duration) CheckoutOption {
	return func(s *CheckoutService) {
		s.interval = d
	}
}

// WithMaxPolls bounds the number of status polls.
func WithMaxPolls(n int) CheckoutOption {
	return func(s *CheckoutService) {
		s.maxPolls = n
	}
}

// WithCheckoutLogger sets the logger.
func WithCheckoutLogger(l *slog.Logger) CheckoutOption {
	return func(s *CheckoutService) {
		s.logger = l
	}
}

// CheckoutService starts payments and waits for them to settle.
type CheckoutService struct {
	backend  CheckoutBackend
	interval time.Duration
	maxPolls int
	logger   *slog.Logger
}

// NewCheckoutService creates a CheckoutService.
func NewCheckoutService(backend CheckoutBackend, opts ...CheckoutOption) *CheckoutService {
	s := &CheckoutService{
		backend:  backend,
		interval: defaultPollInterval,
		maxPolls: defaultMaxPolls,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartMembership creates a yearly fee payment.
func (s *CheckoutService) StartMembership(ctx context.Context, provider member.Provider, year int, amount float64) (*member.Checkout, error) {
	return s.backend.CreateMembershipPayment(ctx, provider, member.MembershipBody{Year: year, Amount: amount})
}

// StartEvent creates an event fee payment.
func (s *CheckoutService) StartEvent(ctx context.Context, eventID int64) (*member.Checkout, error) {
	return s.backend.CreateEventPayment(ctx, eventID)
}

// AwaitMembership polls a membership payment until it leaves Pending.
func (s *CheckoutService) AwaitMembership(ctx context.Context, provider member.Provider, token string) (*member.PaymentState, error) {
	return s.await(ctx, token, func(ctx context.Context) (*member.PaymentState, error) {
		return s.backend.MembershipStatus(ctx, provider, token)
	})
}

// AwaitEvent polls an event payment until it leaves Pending.
func (s *CheckoutService) AwaitEvent(ctx context.Context, token string) (*member.PaymentState, error) {
	return s.await(ctx, token, func(ctx context.Context) (*member.PaymentState, error) {
		return s.backend.EventPaymentStatus(ctx, token)
	})
}

// WatchMemberships lists the caller's memberships and keeps polling while
// any of them is pending. onUpdate sees every listing. The last listing is
// returned once nothing is pending.
func (s *CheckoutService) WatchMemberships(ctx context.Context, year int, onUpdate func([]member.MembershipPayment)) ([]member.MembershipPayment, error) {
	list, err := s.backend.MyMemberships(ctx, year)
	if err != nil {
		return nil, err
	}
	for i := 0; ; i++ {
		if onUpdate != nil {
			onUpdate(list)
		}
		if !anyPending(list) {
			return list, nil
		}
		if i >= s.maxPolls {
			return list, ErrPaymentTimeout
		}
		if err := s.sleep(ctx); err != nil {
			return list, err
		}

		next, err := s.backend.MyMemberships(ctx, year)
		if err != nil {
			if !retryable(err) {
				return list, err
			}
			s.logger.Warn("membership poll failed", "year", year, "error", err)
			continue
		}
		list = next
	}
}

// await polls until the status settles. Server and network failures are
// logged and retried until the poll budget runs out; a 4xx ends the wait with
// that error.
func (s *CheckoutService) await(ctx context.Context, token string, poll func(context.Context) (*member.PaymentState, error)) (*member.PaymentState, error) {
	if token == "" {
		return nil, errors.New("payment has no status token")
	}
	for i := 0; i < s.maxPolls; i++ {
		st, err := poll(ctx)
		switch {
		case err != nil && !retryable(err):
			return nil, err
		case err != nil:
			s.logger.Warn("payment status poll failed", "token", token, "error", err)
		case st != nil && st.Status.Settled():
			return st, nil
		}
		if err := s.sleep(ctx); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w after %d polls", ErrPaymentTimeout, s.maxPolls)
}

// retryable reports whether a poll failure may clear up on its own.
func retryable(err error) bool {
	status := apierror.StatusOf(err)
	return status < 400 || status >= 500
}

func (s *CheckoutService) sleep(ctx context.Context) error {
	t := time.NewTimer(s.interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func anyPending(list []member.MembershipPayment) bool {
	for _, p := range list {
		if p.Status == member.PaymentPending {
			return true
		}
	}
	return false
}
