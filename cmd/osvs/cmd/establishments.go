package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osvs/memberportal/internal/domain/guard"
	"github.com/osvs/memberportal/internal/domain/member"
)

var establishmentsCmd = &cobra.Command{
	Use:   "establishments",
	Short: "List and manage meeting venues",
}

var establishmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List establishments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			list, err := fetch(ctx, a, "establishments", a.client.ListEstablishments)
			if err != nil {
				return err
			}
			return a.render(establishmentsView(list))
		})
	},
}

var establishmentsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one establishment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			e, err := fetch(ctx, a, "establishment "+args[0], func(ctx context.Context) (*member.Establishment, error) {
				return a.client.GetEstablishment(ctx, id)
			})
			if err != nil {
				return err
			}
			return a.render(establishmentView(e))
		})
	},
}

var establishmentBody member.EstablishmentBody

var establishmentsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an establishment (staff only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := establishmentBody
		body.Description = optional(cmd, "description")
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Staff); err != nil {
				return err
			}
			e, err := fetch(ctx, a, "create establishment", func(ctx context.Context) (*member.Establishment, error) {
				return a.client.CreateEstablishment(ctx, body)
			})
			if err != nil {
				return err
			}
			return a.render(establishmentView(e))
		})
	},
}

var establishmentsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace an establishment (staff only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		body := establishmentBody
		body.Description = optional(cmd, "description")
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Staff); err != nil {
				return err
			}
			e, err := fetch(ctx, a, "establishment "+args[0], func(ctx context.Context) (*member.Establishment, error) {
				return a.client.UpdateEstablishment(ctx, id, body)
			})
			if err != nil {
				return err
			}
			return a.render(establishmentView(e))
		})
	},
}

var establishmentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an establishment (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Admin); err != nil {
				return err
			}
			if err := do(ctx, a, "establishment "+args[0], func(ctx context.Context) error {
				return a.client.DeleteEstablishment(ctx, id)
			}); err != nil {
				return err
			}
			return a.render(fmt.Sprintf("Deleted establishment %d", id))
		})
	},
}

var establishmentsLinkCmd = &cobra.Command{
	Use:   "link <id> <lodge-id>",
	Short: "Link an establishment to a lodge (staff only)",
	Args:  cobra.ExactArgs(2),
	RunE:  establishmentLinkRunE(true),
}

var establishmentsUnlinkCmd = &cobra.Command{
	Use:   "unlink <id> <lodge-id>",
	Short: "Unlink an establishment from a lodge (staff only)",
	Args:  cobra.ExactArgs(2),
	RunE:  establishmentLinkRunE(false),
}

func establishmentLinkRunE(link bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		lodgeID, err := parseID(args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Staff); err != nil {
				return err
			}
			op, verb := a.client.UnlinkEstablishmentLodge, "Unlinked"
			if link {
				op, verb = a.client.LinkEstablishmentLodge, "Linked"
			}
			if err := do(ctx, a, "establishment "+args[0], func(ctx context.Context) error {
				return op(ctx, id, lodgeID)
			}); err != nil {
				return err
			}
			return a.render(fmt.Sprintf("%s establishment %d and lodge %d", verb, id, lodgeID))
		})
	}
}

func init() {
	for _, c := range []*cobra.Command{establishmentsCreateCmd, establishmentsUpdateCmd} {
		c.Flags().StringVar(&establishmentBody.Name, "name", "", "name")
		c.Flags().StringVar(&establishmentBody.Address, "address", "", "address")
		c.Flags().String("description", "", "description")
	}

	establishmentsCmd.AddCommand(establishmentsListCmd, establishmentsGetCmd, establishmentsCreateCmd,
		establishmentsUpdateCmd, establishmentsDeleteCmd, establishmentsLinkCmd, establishmentsUnlinkCmd)
	rootCmd.AddCommand(establishmentsCmd)
}
