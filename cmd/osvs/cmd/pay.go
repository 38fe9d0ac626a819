package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/osvs/memberportal/internal/domain/guard"
	"github.com/osvs/memberportal/internal/domain/member"
	"github.com/osvs/memberportal/internal/domain/request"
	"github.com/osvs/memberportal/internal/service"
	"github.com/osvs/memberportal/internal/ux"
)

var (
	payProvider string
	payYear     int
	payAmount   float64
	payWait     bool
	payEvent    bool
	payWatch    bool
	payInterval time.Duration
)

var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Pay membership and event fees",
}

func newCheckoutService(a *app) *service.CheckoutService {
	return service.NewCheckoutService(a.client,
		service.WithPollInterval(payInterval),
		service.WithCheckoutLogger(a.logger),
	)
}

func checkoutView(c *member.Checkout) ux.View {
	return ux.Record(c,
		[2]string{"PAYMENT", itoa(c.PaymentID)},
		[2]string{"CHECKOUT URL", c.URL},
		[2]string{"STATUS TOKEN", c.StatusToken()},
	)
}

// settle waits for a payment to leave Pending, reporting through a Hook.
func settle(ctx context.Context, a *app, what string, poll func(ctx context.Context) (*member.PaymentState, error)) error {
	a.logger.Info("waiting for payment to settle", "payment", what)
	ch := make(chan request.Settled[*member.PaymentState], 1)
	go func() {
		st, err := poll(ctx)
		ch <- request.Settled[*member.PaymentState]{Value: st, Err: err}
	}()
	st, err := await(ctx, a, what, ch)
	if err != nil {
		return err
	}
	return a.render(paymentStateView(st))
}

var payMembershipCmd = &cobra.Command{
	Use:   "membership",
	Short: "Start a yearly membership payment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := member.Provider(payProvider)
		year := payYear
		if year == 0 {
			year = time.Now().Year()
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Authenticated); err != nil {
				return err
			}
			checkout := newCheckoutService(a)
			c, err := fetch(ctx, a, "membership payment", func(ctx context.Context) (*member.Checkout, error) {
				return checkout.StartMembership(ctx, provider, year, payAmount)
			})
			if err != nil {
				return err
			}
			if c == nil {
				return a.render("Payment created")
			}
			if err := a.render(checkoutView(c)); err != nil {
				return err
			}
			if !payWait {
				return nil
			}
			return settle(ctx, a, "membership payment", func(ctx context.Context) (*member.PaymentState, error) {
				return checkout.AwaitMembership(ctx, provider, c.StatusToken())
			})
		})
	},
}

var payEventCmd = &cobra.Command{
	Use:   "event <id>",
	Short: "Start a payment for an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Authenticated); err != nil {
				return err
			}
			checkout := newCheckoutService(a)
			c, err := fetch(ctx, a, "event "+args[0], func(ctx context.Context) (*member.Checkout, error) {
				return checkout.StartEvent(ctx, id)
			})
			if err != nil {
				return err
			}
			if c == nil {
				return a.render("Payment created")
			}
			if err := a.render(checkoutView(c)); err != nil {
				return err
			}
			if !payWait {
				return nil
			}
			return settle(ctx, a, "event payment", func(ctx context.Context) (*member.PaymentState, error) {
				return checkout.AwaitEvent(ctx, c.StatusToken())
			})
		})
	},
}

var payStatusCmd = &cobra.Command{
	Use:   "status <token>",
	Short: "Look up a payment by its status token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token := args[0]
		provider := member.Provider(payProvider)
		return withApp(cmd, func(ctx context.Context, a *app) error {
			st, err := fetch(ctx, a, "payment "+token, func(ctx context.Context) (*member.PaymentState, error) {
				if payEvent {
					return a.client.EventPaymentStatus(ctx, token)
				}
				return a.client.MembershipStatus(ctx, provider, token)
			})
			if err != nil {
				return err
			}
			if st == nil {
				return fmt.Errorf("payment %s: %w", token, errNotFound)
			}
			return a.render(paymentStateView(st))
		})
	},
}

var payMembershipsCmd = &cobra.Command{
	Use:   "memberships",
	Short: "List your membership payments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Authenticated); err != nil {
				return err
			}
			checkout := newCheckoutService(a)
			list, err := fetch(ctx, a, "memberships", func(ctx context.Context) ([]member.MembershipPayment, error) {
				if !payWatch {
					return a.client.MyMemberships(ctx, payYear)
				}
				return checkout.WatchMemberships(ctx, payYear, func(list []member.MembershipPayment) {
					a.logger.Debug("memberships polled", "count", len(list))
				})
			})
			if err != nil {
				return err
			}
			return a.render(membershipsView(list))
		})
	},
}

func init() {
	payCmd.PersistentFlags().StringVar(&payProvider, "provider", string(member.ProviderStripe), "payment provider: stripe or swish")
	payCmd.PersistentFlags().DurationVar(&payInterval, "poll-interval", 8*time.Second, "status poll interval")

	payMembershipCmd.Flags().IntVar(&payYear, "year", 0, "membership year (default: current year)")
	payMembershipCmd.Flags().Float64Var(&payAmount, "amount", 0, "amount (Swish only)")
	payMembershipCmd.Flags().BoolVar(&payWait, "wait", false, "wait until the payment settles")

	payEventCmd.Flags().BoolVar(&payWait, "wait", false, "wait until the payment settles")

	payStatusCmd.Flags().BoolVar(&payEvent, "event", false, "the token belongs to an event payment")

	payMembershipsCmd.Flags().IntVar(&payYear, "year", 0, "only this year")
	payMembershipsCmd.Flags().BoolVar(&payWatch, "watch", false, "keep polling while any payment is pending")

	payCmd.AddCommand(payMembershipCmd, payEventCmd, payStatusCmd, payMembershipsCmd)
	rootCmd.AddCommand(payCmd)
}
