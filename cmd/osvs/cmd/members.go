package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/osvs/memberportal/internal/domain/guard"
	"github.com/osvs/memberportal/internal/domain/member"
)

var userQuery member.UserQuery

var membersCmd = &cobra.Command{
	Use:     "members",
	Aliases: []string{"users"},
	Short:   "Browse and administer members",
}

var membersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List members",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := userQuery
		q.ListQuery = listQuery
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Authenticated); err != nil {
				return err
			}
			users, err := fetch(ctx, a, "members", func(ctx context.Context) ([]member.User, error) {
				return a.client.ListUsers(ctx, q)
			})
			if err != nil {
				return err
			}
			return a.render(usersView(users))
		})
	},
}

var membersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one member",
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
			u, err := fetch(ctx, a, "member "+args[0], func(ctx context.Context) (*member.User, error) {
				return a.client.GetUser(ctx, id)
			})
			if err != nil {
				return err
			}
			return a.render(userView(u))
		})
	},
}

var userFlagNames = []string{"firstname", "lastname", "dob", "official", "home-number", "notes", "mobile", "city", "address", "zipcode"}

func userBodyFromFlags(cmd *cobra.Command) member.UpdateUserBody {
	return member.UpdateUserBody{
		Firstname:   optional(cmd, "firstname"),
		Lastname:    optional(cmd, "lastname"),
		DateOfBirth: optional(cmd, "dob"),
		Official:    optional(cmd, "official"),
		HomeNumber:  optional(cmd, "home-number"),
		Notes:       optional(cmd, "notes"),
		Mobile:      optional(cmd, "mobile"),
		City:        optional(cmd, "city"),
		Address:     optional(cmd, "address"),
		Zipcode:     optional(cmd, "zipcode"),
	}
}

var membersUpdateMeCmd = &cobra.Command{
	Use:   "update-me",
	Short: "Update your own profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := userBodyFromFlags(cmd)
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Authenticated); err != nil {
				return err
			}
			u, err := fetch(ctx, a, "profile", func(ctx context.Context) (*member.User, error) {
				return a.client.UpdateMe(ctx, body)
			})
			if err != nil {
				return err
			}
			a.cache.Refresh(ctx)
			return a.render(userView(u))
		})
	},
}

var membersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update another member's profile (staff only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		body := userBodyFromFlags(cmd)
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Staff); err != nil {
				return err
			}
			u, err := fetch(ctx, a, "member "+args[0], func(ctx context.Context) (*member.User, error) {
				return a.client.AdminUpdateUser(ctx, id, body)
			})
			if err != nil {
				return err
			}
			return a.render(userView(u))
		})
	},
}

var membersSetRolesCmd = &cobra.Command{
	Use:   "set-roles <id> [role-id...]",
	Short: "Replace a member's roles (staff only)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		roleIDs, err := parseIDs(args[1:])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Staff); err != nil {
				return err
			}
			if err := newProfileService(a).SaveRoles(ctx, id, roleIDs); err != nil {
				return errReported
			}
			return a.render(fmt.Sprintf("Updated roles of member %d", id))
		})
	},
}

var membersSetLodgeCmd = &cobra.Command{
	Use:   "set-lodge <id> [lodge-id]",
	Short: "Move a member to a lodge, or remove the link when no lodge is given (staff only)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		var lodgeID *int64
		if len(args) == 2 {
			l, err := parseID(args[1])
			if err != nil {
				return err
			}
			lodgeID = &l
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Staff); err != nil {
				return err
			}
			if err := do(ctx, a, "member "+args[0], func(ctx context.Context) error {
				return a.client.SetUserLodge(ctx, id, lodgeID)
			}); err != nil {
				return err
			}
			if lodgeID == nil {
				return a.render(fmt.Sprintf("Removed member %d from their lodge", id))
			}
			return a.render(fmt.Sprintf("Moved member %d to lodge %d", id, *lodgeID))
		})
	},
}

var awardDate string

var membersAwardCmd = &cobra.Command{
	Use:   "award <id> <achievement-id>",
	Short: "Award an achievement to a member (staff only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		achID, err := parseID(args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.require(ctx, guard.Staff); err != nil {
				return err
			}
			if err := newProfileService(a).AssignAchievement(ctx, id, achID, awardDate); err != nil {
				return errReported
			}
			return a.render(fmt.Sprintf("Awarded achievement %d to member %d", achID, id))
		})
	},
}

var membersPictureCmd = &cobra.Command{
	Use:   "picture <file> [member-id]",
	Short: "Upload a profile picture for yourself, or for a member (staff only)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var target int64
		if len(args) == 2 {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			target = id
		}
		pic, closePic, err := openPicture(args[0])
		if err != nil {
			return err
		}
		defer closePic()
		return withApp(cmd, func(ctx context.Context, a *app) error {
			rule := guard.Authenticated
			if target != 0 {
				rule = guard.Staff
			}
			if _, err := a.require(ctx, rule); err != nil {
				return err
			}
			err := do(ctx, a, "picture", func(ctx context.Context) error {
				if target != 0 {
					return a.client.UploadUserPicture(ctx, target, *pic)
				}
				return a.client.UploadMyPicture(ctx, *pic)
			})
			if err != nil {
				return err
			}
			if target == 0 {
				a.cache.Refresh(ctx)
			}
			return a.render("Picture uploaded")
		})
	},
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("invalid id %q: must be a positive integer", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func init() {
	addListFlags(membersListCmd)
	membersListCmd.Flags().StringVar(&userQuery.Name, "name", "", "filter by name")
	membersListCmd.Flags().Int64Var(&userQuery.AchievementID, "achievement", 0, "filter by achievement id")
	membersListCmd.Flags().Int64Var(&userQuery.LodgeID, "lodge", 0, "filter by lodge id")

	for _, c := range []*cobra.Command{membersUpdateMeCmd, membersUpdateCmd} {
		for _, name := range userFlagNames {
			c.Flags().String(name, "", name)
		}
	}

	membersAwardCmd.Flags().StringVar(&awardDate, "date", "", "award date (YYYY-MM-DD)")

	membersCmd.AddCommand(membersListCmd, membersGetCmd, membersUpdateMeCmd, membersUpdateCmd,
		membersSetRolesCmd, membersSetLodgeCmd, membersAwardCmd, membersPictureCmd)
	rootCmd.AddCommand(membersCmd)
}
