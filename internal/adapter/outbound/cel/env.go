package cel

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common"
	"github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"
	"github.com/google/cel-go/ext"
	"github.com/google/cel-go/parser"

	"github.com/osvs/memberportal/internal/domain/guard"
)

// NewGuardEnvironment creates the CEL environment guard rules compile in:
//   - Variables: authenticated, user_id, roles
//   - Macros: has_role(name), shorthand for name in roles
func NewGuardEnvironment() (*cel.Env, error) {
	return cel.NewEnv(
		ext.Strings(),
		ext.Sets(),

		cel.Variable("authenticated", cel.BoolType),
		cel.Variable("user_id", cel.IntType),
		cel.Variable("roles", cel.ListType(cel.StringType)),

		cel.Macros(
			cel.GlobalMacro("has_role", 1, expandHasRole),
		),
	)
}

// expandHasRole rewrites has_role(x) to x in roles.
func expandHasRole(eh parser.ExprHelper, _ ast.Expr, args []ast.Expr) (ast.Expr, *common.Error) {
	return eh.NewCall(operators.In, args[0], eh.NewIdent("roles")), nil
}

// BuildActivation creates a CEL activation map for a subject.
func BuildActivation(s guard.Subject) map[string]any {
	roles := s.Roles
	if roles == nil {
		roles = []string{}
	}
	return map[string]any{
		"authenticated": s.Authenticated,
		"user_id":       s.UserID,
		"roles":         roles,
	}
}
