package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	require.NoError(t, err)
	return engine
}

func TestDefaultPolicy(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input Input
		want  bool
	}{
		{"admin creates user", Input{Role: "admin", Action: "user.create"}, true},
		{"user creates user", Input{Role: "user", Action: "user.create"}, false},
		{"user lists users", Input{Role: "user", Action: "user.list"}, false},
		{"user generates", Input{Role: "user", Action: "generate"}, true},
		{"user reads account", Input{Role: "user", Action: "user.read", Target: "alice"}, true},
		{"admin deletes user", Input{Role: "admin", Action: "user.delete", Target: "bob"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Allow(ctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// A conditional rule must only fire when its body holds. If the module were
// parsed under pre-v1 syntax, the `if` form would decay into an unconditional
// assignment and every caller would be allowed.
func TestConditionalRuleNotUnconditional(t *testing.T) {
	engine, err := NewEngine(context.Background(), `
package access_policy

default decision := "deny"

decision := "allow" if {
	input.role == "admin"
}
`)
	require.NoError(t, err)

	allowed, err := engine.Allow(context.Background(), Input{Role: "user", Action: "user.create"})
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = engine.Allow(context.Background(), Input{Role: "admin", Action: "user.create"})
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestBrokenPolicyRejected(t *testing.T) {
	_, err := NewEngine(context.Background(), "package access_policy\n\ndecision :=")
	assert.Error(t, err)
}
