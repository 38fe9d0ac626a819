package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/osvs/memberportal/internal/domain/guard"
	"github.com/osvs/memberportal/internal/domain/member"
	"github.com/osvs/memberportal/internal/domain/session"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List, answer and manage events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			events, err := fetch(ctx, a, "events", func(ctx context.Context) ([]member.Event, error) {
				return a.client.ListEvents(ctx, listQuery)
			})
			if err != nil {
				return err
			}
			return a.render(eventsView(events))
		})
	},
}

var eventsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List events you are invited to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Authenticated); err != nil {
				return err
			}
			events, err := fetch(ctx, a, "my events", a.client.ListMyEvents)
			if err != nil {
				return err
			}
			return a.render(eventsView(events))
		})
	},
}

var eventsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show an event with your answer and attendance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			ev, err := fetch(ctx, a, "event "+args[0], func(ctx context.Context) (*member.Event, error) {
				return a.client.GetEvent(ctx, id)
			})
			if err != nil {
				return err
			}

			// RSVP and stats need a session; without one the event alone is shown.
			var rsvp *member.RSVP
			var stats *member.EventStats
			if a.cache.Start(ctx) == session.StateAuthenticated {
				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					r, err := a.client.GetRSVP(gctx, id)
					if err == nil {
						rsvp = r
					}
					return nil
				})
				g.Go(func() error {
					s, err := a.client.GetEventStats(gctx, id)
					if err == nil {
						stats = s
					}
					return nil
				})
				_ = g.Wait()
			}
			return a.render(eventView(ev, rsvp, stats))
		})
	},
}

var eventBody member.EventBody

var eventsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an event (staff only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := eventBody
		body.Description = optional(cmd, "description")
		if cmd.Flags().Changed("lodge-meeting") {
			v, _ := cmd.Flags().GetBool("lodge-meeting")
			body.LodgeMeeting = &v
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Staff); err != nil {
				return err
			}
			ev, err := fetch(ctx, a, "create event", func(ctx context.Context) (*member.Event, error) {
				return a.client.CreateEvent(ctx, body)
			})
			if err != nil {
				return err
			}
			return a.render(eventView(ev, nil, nil))
		})
	},
}

var eventsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an event (staff only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		body := member.UpdateEventBody{
			Title:       optional(cmd, "title"),
			Description: optional(cmd, "description"),
			StartDate:   optional(cmd, "start"),
			EndDate:     optional(cmd, "end"),
		}
		if cmd.Flags().Changed("price") {
			v, _ := cmd.Flags().GetFloat64("price")
			body.Price = &v
		}
		if cmd.Flags().Changed("lodge-meeting") {
			v, _ := cmd.Flags().GetBool("lodge-meeting")
			body.LodgeMeeting = &v
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Staff); err != nil {
				return err
			}
			ev, err := fetch(ctx, a, "event "+args[0], func(ctx context.Context) (*member.Event, error) {
				return a.client.UpdateEvent(ctx, id, body)
			})
			if err != nil {
				return err
			}
			return a.render(eventView(ev, nil, nil))
		})
	},
}

var eventsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an event (staff only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Staff); err != nil {
				return err
			}
			if err := do(ctx, a, "event "+args[0], func(ctx context.Context) error {
				return a.client.DeleteEvent(ctx, id)
			}); err != nil {
				return err
			}
			return a.render(fmt.Sprintf("Deleted event %d", id))
		})
	},
}

var eventsRSVPCmd = &cobra.Command{
	Use:       "rsvp <id> going|not-going",
	Short:     "Answer an event invitation",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{member.RSVPGoing, member.RSVPNotGoing},
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Authenticated); err != nil {
				return err
			}
			if err := do(ctx, a, "event "+args[0], func(ctx context.Context) error {
				return a.client.SetRSVP(ctx, id, args[1])
			}); err != nil {
				return err
			}
			return a.render(fmt.Sprintf("Answered %s for event %d", args[1], id))
		})
	},
}

var (
	eventLinkLodge   int64
	eventUnlinkLodge int64
)

var eventsLodgesCmd = &cobra.Command{
	Use:   "lodges <id>",
	Short: "List, link or unlink the lodges invited to an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if eventLinkLodge > 0 || eventUnlinkLodge > 0 {
				if _, err := a.require(ctx, guard.Staff); err != nil {
					return err
				}
			}
			if eventLinkLodge > 0 {
				if err := do(ctx, a, "event "+args[0], func(ctx context.Context) error {
					return a.client.LinkEventLodge(ctx, id, eventLinkLodge)
				}); err != nil {
					return err
				}
			}
			if eventUnlinkLodge > 0 {
				if err := do(ctx, a, "event "+args[0], func(ctx context.Context) error {
					return a.client.UnlinkEventLodge(ctx, id, eventUnlinkLodge)
				}); err != nil {
					return err
				}
			}
			lodges, err := fetch(ctx, a, "event "+args[0], func(ctx context.Context) ([]member.Lodge, error) {
				return a.client.ListEventLodges(ctx, id)
			})
			if err != nil {
				return err
			}
			return a.render(lodgesView(lodges))
		})
	},
}

func init() {
	addListFlags(eventsListCmd)

	f := eventsCreateCmd.Flags()
	f.StringVar(&eventBody.Title, "title", "", "event title")
	f.StringVar(&eventBody.StartDate, "start", "", "start date")
	f.StringVar(&eventBody.EndDate, "end", "", "end date")
	f.Float64Var(&eventBody.Price, "price", 0, "price")
	f.String("description", "", "description")
	f.Bool("lodge-meeting", false, "mark as a lodge meeting")

	f = eventsUpdateCmd.Flags()
	f.String("title", "", "event title")
	f.String("start", "", "start date")
	f.String("end", "", "end date")
	f.Float64("price", 0, "price")
	f.String("description", "", "description")
	f.Bool("lodge-meeting", false, "mark as a lodge meeting")

	eventsLodgesCmd.Flags().Int64Var(&eventLinkLodge, "link", 0, "lodge id to invite")
	eventsLodgesCmd.Flags().Int64Var(&eventUnlinkLodge, "unlink", 0, "lodge id to uninvite")

	eventsCmd.AddCommand(eventsListCmd, eventsMineCmd, eventsGetCmd, eventsCreateCmd,
		eventsUpdateCmd, eventsDeleteCmd, eventsRSVPCmd, eventsLodgesCmd)
	rootCmd.AddCommand(eventsCmd)
}
