package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/osvs/memberportal/internal/domain/guard"
	"github.com/osvs/memberportal/internal/domain/member"
)

var listQuery member.ListQuery

var lodgesCmd = &cobra.Command{
	Use:   "lodges",
	Short: "List and manage lodges",
}

var lodgesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List lodges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			lodges, err := fetch(ctx, a, "lodges", func(ctx context.Context) ([]member.Lodge, error) {
				return a.client.ListLodges(ctx, listQuery)
			})
			if err != nil {
				return err
			}
			return a.render(lodgesView(lodges))
		})
	},
}

var lodgesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one lodge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			l, err := fetch(ctx, a, "lodge "+args[0], func(ctx context.Context) (*member.Lodge, error) {
				return a.client.GetLodge(ctx, id)
			})
			if err != nil {
				return err
			}
			return a.render(lodgeView(l))
		})
	},
}

var lodgeBody member.LodgeBody

var lodgesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a lodge (staff only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := lodgeBody
		body.Description = optional(cmd, "description")
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Staff); err != nil {
				return err
			}
			l, err := fetch(ctx, a, "create lodge", func(ctx context.Context) (*member.Lodge, error) {
				return a.client.CreateLodge(ctx, body)
			})
			if err != nil {
				return err
			}
			return a.render(lodgeView(l))
		})
	},
}

var lodgesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a lodge (staff only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		body := member.UpdateLodgeBody{
			Name:        optional(cmd, "name"),
			Description: optional(cmd, "description"),
			Address:     optional(cmd, "address"),
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Staff); err != nil {
				return err
			}
			l, err := fetch(ctx, a, "lodge "+args[0], func(ctx context.Context) (*member.Lodge, error) {
				return a.client.UpdateLodge(ctx, id, body)
			})
			if err != nil {
				return err
			}
			return a.render(lodgeView(l))
		})
	},
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&listQuery.Limit, "limit", 0, "maximum number of items")
	cmd.Flags().IntVar(&listQuery.Offset, "offset", 0, "number of items to skip")
}

func init() {
	addListFlags(lodgesListCmd)

	lodgesCreateCmd.Flags().StringVar(&lodgeBody.Name, "name", "", "lodge name")
	lodgesCreateCmd.Flags().StringVar(&lodgeBody.Address, "address", "", "lodge address")
	lodgesCreateCmd.Flags().String("description", "", "description")

	lodgesUpdateCmd.Flags().String("name", "", "lodge name")
	lodgesUpdateCmd.Flags().String("description", "", "description")
	lodgesUpdateCmd.Flags().String("address", "", "lodge address")

	lodgesCmd.AddCommand(lodgesListCmd, lodgesGetCmd, lodgesCreateCmd, lodgesUpdateCmd)
	rootCmd.AddCommand(lodgesCmd)
}
