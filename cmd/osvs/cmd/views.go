package cmd

import (
	"strconv"
	"strings"

	"github.com/osvs/memberportal/internal/domain/auth"
	"github.com/osvs/memberportal/internal/domain/member"
	"github.com/osvs/memberportal/internal/ux"
)

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func lodgesView(lodges []member.Lodge) ux.View {
	v := ux.View{Data: lodges, Columns: []string{"ID", "NAME", "ADDRESS"}}
	for _, l := range lodges {
		v.Cells = append(v.Cells, []string{itoa(l.ID), l.Name, deref(l.Address)})
	}
	return v
}

func lodgeView(l *member.Lodge) ux.View {
	return ux.Record(l,
		[2]string{"ID", itoa(l.ID)},
		[2]string{"NAME", l.Name},
		[2]string{"DESCRIPTION", l.Description},
		[2]string{"ADDRESS", deref(l.Address)},
	)
}

func eventsView(events []member.Event) ux.View {
	v := ux.View{Data: events, Columns: []string{"ID", "TITLE", "START", "END", "PRICE"}}
	for _, e := range events {
		v.Cells = append(v.Cells, []string{itoa(e.ID), e.Title, e.StartDate, e.EndDate, money(e.Price)})
	}
	return v
}

func eventView(e *member.Event, rsvp *member.RSVP, stats *member.EventStats) ux.View {
	data := map[string]any{"event": e}
	pairs := [][2]string{
		{"ID", itoa(e.ID)},
		{"TITLE", e.Title},
		{"DESCRIPTION", e.Description},
		{"START", e.StartDate},
		{"END", e.EndDate},
		{"PRICE", money(e.Price)},
		{"LODGE MEETING", strconv.FormatBool(e.LodgeMeeting != nil && *e.LodgeMeeting)},
	}
	if rsvp != nil {
		data["rsvp"] = rsvp.Status
		status := rsvp.Status
		if status == "" {
			status = "(no answer)"
		}
		pairs = append(pairs, [2]string{"RSVP", status})
	}
	if stats != nil {
		data["stats"] = stats
		pairs = append(pairs, [2]string{"INVITED / ANSWERED / GOING",
			strconv.Itoa(stats.Invited) + " / " + strconv.Itoa(stats.Answered) + " / " + strconv.Itoa(stats.Going)})
	}
	v := ux.Record(nil, pairs...)
	v.Data = data
	return v
}

func usersView(users []member.User) ux.View {
	v := ux.View{Data: users, Columns: []string{"ID", "NAME", "EMAIL", "CITY"}}
	for _, u := range users {
		v.Cells = append(v.Cells, []string{itoa(u.ID), u.FullName(), u.Email, u.City})
	}
	return v
}

func userView(u *member.User) ux.View {
	titles := make([]string, 0, len(u.Achievements))
	for _, a := range u.Achievements {
		titles = append(titles, a.Title)
	}
	archive := ""
	if u.Archive != nil {
		archive = string(*u.Archive)
	}
	return ux.Record(u,
		[2]string{"ID", itoa(u.ID)},
		[2]string{"USERNAME", u.Username},
		[2]string{"NAME", u.FullName()},
		[2]string{"EMAIL", u.Email},
		[2]string{"MOBILE", u.Mobile},
		[2]string{"CITY", u.City},
		[2]string{"OFFICIAL", deref(u.Official)},
		[2]string{"ARCHIVE", archive},
		[2]string{"ACHIEVEMENTS", strings.Join(titles, ", ")},
	)
}

func principalView(p *auth.Principal, expiry string) ux.View {
	v := ux.Record(p,
		[2]string{"ID", itoa(p.ID)},
		[2]string{"USERNAME", p.Username},
		[2]string{"NAME", p.FullName()},
		[2]string{"EMAIL", p.Email},
		[2]string{"ROLES", strings.Join(p.RoleNames(), ", ")},
	)
	if expiry != "" {
		v.Cells = append(v.Cells, []string{"SESSION EXPIRES", expiry})
	}
	return v
}

func postsView(posts []member.Post) ux.View {
	v := ux.View{Data: posts, Columns: []string{"ID", "TITLE"}}
	for _, p := range posts {
		v.Cells = append(v.Cells, []string{itoa(p.ID), p.Title})
	}
	return v
}

func postView(p *member.Post) ux.View {
	return ux.Record(p,
		[2]string{"ID", itoa(p.ID)},
		[2]string{"TITLE", p.Title},
		[2]string{"DESCRIPTION", p.Description},
		[2]string{"PICTURE", deref(p.PictureURL)},
	)
}

func establishmentsView(list []member.Establishment) ux.View {
	v := ux.View{Data: list, Columns: []string{"ID", "NAME", "ADDRESS"}}
	for _, e := range list {
		v.Cells = append(v.Cells, []string{itoa(e.ID), e.Name, e.Address})
	}
	return v
}

func establishmentView(e *member.Establishment) ux.View {
	return ux.Record(e,
		[2]string{"ID", itoa(e.ID)},
		[2]string{"NAME", e.Name},
		[2]string{"DESCRIPTION", e.Description},
		[2]string{"ADDRESS", e.Address},
	)
}

func inboxView(entries []member.InboxEntry) ux.View {
	v := ux.View{Data: entries, Columns: []string{"ID", "TITLE", "SENT", "READ"}}
	for _, m := range entries {
		v.Cells = append(v.Cells, []string{itoa(m.ID), m.Title, m.SentAt, strconv.FormatBool(m.IsRead)})
	}
	return v
}

func achievementsView(list []member.Achievement) ux.View {
	v := ux.View{Data: list, Columns: []string{"ID", "TITLE"}}
	for _, a := range list {
		v.Cells = append(v.Cells, []string{itoa(a.ID), a.Title})
	}
	return v
}

func rolesView(roles []member.Role) ux.View {
	v := ux.View{Data: roles, Columns: []string{"ID", "NAME"}}
	for _, r := range roles {
		v.Cells = append(v.Cells, []string{itoa(r.ID), r.Name})
	}
	return v
}

func membershipsView(list []member.MembershipPayment) ux.View {
	v := ux.View{Data: list, Columns: []string{"ID", "YEAR", "AMOUNT", "STATUS"}}
	for _, p := range list {
		v.Cells = append(v.Cells, []string{itoa(p.ID), strconv.Itoa(p.Year), money(p.Amount) + " " + p.Currency, string(p.Status)})
	}
	return v
}

func paymentStateView(s *member.PaymentState) ux.View {
	return ux.Record(s,
		[2]string{"ID", itoa(s.ID)},
		[2]string{"STATUS", string(s.Status)},
		[2]string{"YEAR", strconv.Itoa(s.Year)},
		[2]string{"AMOUNT", money(s.Amount)},
	)
}
