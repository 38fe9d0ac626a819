package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/osvs/memberportal/internal/domain/guard"
	"github.com/osvs/memberportal/internal/domain/member"
)

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List awardable achievements",
}

var achievementsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List achievements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			list, err := fetch(ctx, a, "achievements", a.client.ListAchievements)
			if err != nil {
				return err
			}
			return a.render(achievementsView(list))
		})
	},
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative operations",
}

var adminRolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the roles that can be assigned (staff only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Staff); err != nil {
				return err
			}
			roles, err := fetch(ctx, a, "roles", func(ctx context.Context) ([]member.Role, error) {
				return a.client.ListRoles(ctx)
			})
			if err != nil {
				return err
			}
			return a.render(rolesView(roles))
		})
	},
}

var adminCleanupCmd = &cobra.Command{
	Use:   "cleanup-tokens",
	Short: "Remove expired refresh tokens on the backend (admin only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Admin); err != nil {
				return err
			}
			if err := do(ctx, a, "cleanup tokens", a.client.CleanupTokens); err != nil {
				return err
			}
			return a.render("Expired tokens removed")
		})
	},
}

func init() {
	achievementsCmd.AddCommand(achievementsListCmd)
	adminCmd.AddCommand(adminRolesCmd, adminCleanupCmd)
	rootCmd.AddCommand(achievementsCmd, adminCmd)
}
