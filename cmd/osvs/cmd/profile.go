package cmd

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/osvs/memberportal/internal/service"
	"github.com/osvs/memberportal/internal/ux"
)

func newProfileService(a *app) *service.ProfileService {
	return service.NewProfileService(a.client, a.cache, a.notices, a.logger)
}

func profileView(p *service.Profile) ux.View {
	titles := make([]string, 0, len(p.Achievements))
	for _, ach := range p.Achievements {
		titles = append(titles, ach.Title)
	}
	lodge := ""
	if p.Lodge != nil {
		lodge = p.Lodge.Name
	}
	ids := make([]string, 0, len(p.SelectedRoleIDs))
	for _, id := range p.SelectedRoleIDs {
		ids = append(ids, itoa(id))
	}
	return ux.Record(p,
		[2]string{"NAME", p.User.FullName()},
		[2]string{"EMAIL", p.User.Email},
		[2]string{"LODGE", lodge},
		[2]string{"ROLES", strings.Join(p.User.RoleNames(), ", ")},
		[2]string{"ROLE IDS", strings.Join(ids, ", ")},
		[2]string{"ACHIEVEMENTS", strings.Join(titles, ", ")},
		[2]string{"AWARDABLE", strconv.Itoa(len(p.Available))},
		[2]string{"CAN AWARD", strconv.FormatBool(p.CanAward)},
		[2]string{"CAN EDIT ROLES", strconv.FormatBool(p.CanEditRoles)},
	)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile with lodge, roles and achievements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			prof, err := newProfileService(a).Load(ctx)
			if err != nil {
				return err
			}
			return a.render(profileView(prof))
		})
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
