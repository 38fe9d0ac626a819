// Package guard decides whether the current session may use a protected
// command. Rules are boolean expressions over the session's subject.
package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/osvs/memberportal/internal/domain/auth"
	"github.com/osvs/memberportal/internal/domain/session"
)

var (
	// ErrLoginRequired is returned when the session is anonymous.
	ErrLoginRequired = errors.New("login required")

	// ErrForbidden is returned when the principal fails the rule.
	ErrForbidden = errors.New("forbidden")
)

// Rule is a named guard expression.
type Rule struct {
	Name       string
	Expression string
}

// Built-in rules.
var (
	Authenticated = Rule{Name: "authenticated", Expression: `authenticated`}
	Staff         = Rule{Name: "staff", Expression: `has_role("Admin") || has_role("Editor")`}
	Admin         = Rule{Name: "admin", Expression: `has_role("Admin")`}
)

// Subject is what a rule sees of the session.
type Subject struct {
	Authenticated bool
	UserID        int64
	Roles         []string
}

// SubjectOf builds the subject for a principal; nil is anonymous.
func SubjectOf(p *auth.Principal) Subject {
	if p == nil {
		return Subject{Roles: []string{}}
	}
	return Subject{
		Authenticated: true,
		UserID:        p.ID,
		Roles:         p.RoleNames(),
	}
}

// Evaluator evaluates a rule for a subject.
type Evaluator interface {
	Allow(rule Rule, subject Subject) (bool, error)
}

// Check runs or waits for the session probe and evaluates rule. It returns
// the principal on success, ErrLoginRequired when the session is anonymous,
// and an error wrapping ErrForbidden when the rule does not hold.
func Check(ctx context.Context, cache *session.Cache, eval Evaluator, rule Rule) (*auth.Principal, error) {
	cache.Start(ctx)
	p := cache.Principal()
	if p == nil {
		return nil, ErrLoginRequired
	}

	ok, err := eval.Allow(rule, SubjectOf(p))
	if err != nil {
		return nil, fmt.Errorf("evaluate guard %s: %w", rule.Name, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: requires %s", ErrForbidden, rule.Name)
	}
	return p, nil
}
