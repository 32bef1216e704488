// Package policy decides whether a caller may perform an administrative
// action, using an OPA rego policy.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.access_policy.decision"),
		rego.Module("access_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Input describes one access decision request.
type Input struct {
	Role   string `json:"role"`
	Action string `json:"action"`
	Target string `json:"target,omitempty"`
}

// Allow reports whether the policy permits the action.
func (e *Engine) Allow(ctx context.Context, input Input) (bool, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy defines a default, so an empty result means the module
		// is broken; deny.
		return false, nil
	}
	decision, _ := results[0].Expressions[0].Value.(string)
	return decision == "allow", nil
}

// DefaultPolicy grants user-administration actions to admins only; every
// other action is open to any authenticated caller.
const DefaultPolicy = `
package access_policy

default decision := "deny"

admin_actions := {"user.create", "user.update", "user.delete", "user.list"}

decision := "allow" if {
	input.role == "admin"
}

decision := "allow" if {
	not admin_actions[input.action]
}
`
