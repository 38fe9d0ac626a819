package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/osvs/memberportal/internal/domain/auth"
	"github.com/osvs/memberportal/internal/domain/guard"
	"github.com/osvs/memberportal/internal/domain/member"
	"github.com/osvs/memberportal/internal/domain/notice"
	"github.com/osvs/memberportal/internal/domain/session"
)

// Banner messages for failed profile mutations.
const (
	MsgAwardFailed = "Misslyckades att tilldela utmärkelse"
	MsgRolesFailed = "Misslyckades att uppdatera roller"
)

// ProfileBackend is the part of the API the profile view needs.
type ProfileBackend interface {
	ListAchievements(ctx context.Context) ([]member.Achievement, error)
	GetUserLodge(ctx context.Context, id int64) (*member.UserLodge, error)
	ListRoles(ctx context.Context) ([]member.Role, error)
	AddAchievement(ctx context.Context, id int64, body member.AddAchievementBody) error
	SetRoles(ctx context.Context, id int64, roleIDs []int64) error
}

// Profile is the caller's profile view.
type Profile struct {
	User *auth.Principal `json:"user"`
	// Achievements are the ones awarded to the user.
	Achievements []member.UserAchievement `json:"achievements"`
	// Available are the achievements that can be awarded.
	Available []member.Achievement `json:"available"`
	Lodge     *member.Lodge        `json:"lodge,omitempty"`
	Roles     []member.Role        `json:"roles"`
	// SelectedRoleIDs are the IDs of the roles the user holds.
	SelectedRoleIDs []int64 `json:"selectedRoleIds"`
	CanAward        bool    `json:"canAward"`
	CanEditRoles    bool    `json:"canEditRoles"`
}

// ProfileService assembles the profile view and applies staff mutations.
type ProfileService struct {
	backend ProfileBackend
	cache   *session.Cache
	notices *notice.Channel
	logger  *slog.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(backend ProfileBackend, cache *session.Cache, notices *notice.Channel, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{
		backend: backend,
		cache:   cache,
		notices: notices,
		logger:  logger,
	}
}

// Load builds the profile of the current principal. The achievement list,
// the lodge and the role list are fetched in parallel; any of them failing
// leaves that part empty.
func (s *ProfileService) Load(ctx context.Context) (*Profile, error) {
	s.cache.Start(ctx)
	p := s.cache.Principal()
	if p == nil {
		return nil, guard.ErrLoginRequired
	}

	prof := &Profile{
		User:            p,
		Achievements:    p.Achievements,
		Available:       []member.Achievement{},
		Roles:           []member.Role{},
		SelectedRoleIDs: []int64{},
		CanAward:        p.IsStaff(),
		CanEditRoles:    p.IsStaff(),
	}
	if prof.Achievements == nil {
		prof.Achievements = []member.UserAchievement{}
	}

	var g errgroup.Group
	g.Go(func() error {
		list, err := s.backend.ListAchievements(ctx)
		if err != nil {
			s.logger.Debug("profile: achievements unavailable", "error", err)
			return nil
		}
		prof.Available = list
		return nil
	})
	g.Go(func() error {
		ul, err := s.backend.GetUserLodge(ctx, p.ID)
		if err != nil {
			s.logger.Debug("profile: lodge unavailable", "error", err)
			return nil
		}
		if ul != nil {
			prof.Lodge = ul.Lodge
		}
		return nil
	})
	g.Go(func() error {
		roles, err := s.backend.ListRoles(ctx)
		if err != nil {
			s.logger.Debug("profile: roles unavailable", "error", err)
			return nil
		}
		prof.Roles = roles
		prof.SelectedRoleIDs = selectedRoleIDs(roles, p.RoleNames())
		return nil
	})
	_ = g.Wait()

	return prof, nil
}

// AssignAchievement awards an achievement and refreshes the session.
// On failure the banner shows MsgAwardFailed and the error is returned.
func (s *ProfileService) AssignAchievement(ctx context.Context, userID, achievementID int64, awardedAt string) error {
	body := member.AddAchievementBody{AchievementID: achievementID}
	if awardedAt != "" {
		body.AwardedAt = &awardedAt
	}
	if err := s.backend.AddAchievement(ctx, userID, body); err != nil {
		s.fail(MsgAwardFailed, err)
		return err
	}
	s.cache.Refresh(ctx)
	return nil
}

// SaveRoles replaces a member's roles and refreshes the session.
// On failure the banner shows MsgRolesFailed and the error is returned.
func (s *ProfileService) SaveRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	if err := s.backend.SetRoles(ctx, userID, roleIDs); err != nil {
		s.fail(MsgRolesFailed, err)
		return err
	}
	s.cache.Refresh(ctx)
	return nil
}

func (s *ProfileService) fail(msg string, err error) {
	s.logger.Warn("profile update failed", "error", err)
	if s.notices != nil {
		s.notices.Set(msg)
	}
}

// selectedRoleIDs maps role names to IDs; unknown names are dropped.
func selectedRoleIDs(roles []member.Role, names []string) []int64 {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		for _, r := range roles {
			if r.Name == name && r.ID != 0 {
				ids = append(ids, r.ID)
				break
			}
		}
	}
	return ids
}
