package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/MemberPulse-Intelligence/internal/application/operations"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

func TestSuggestionsByRole(t *testing.T) {
	env := newTestEnv(t)

	member := env.svc.Suggestions(memberActor())
	assert.Contains(t, member, "What's my membership status?")

	staff := env.svc.Suggestions(staffActor())
	assert.Contains(t, staff, "Who checked in today?")

	admin := env.svc.Suggestions(operations.Actor{ID: "adm-1", Role: common.RoleAdmin})
	assert.Equal(t, staff, admin)

	visitor := env.svc.Suggestions(operations.Actor{})
	assert.Contains(t, visitor, "What membership plans do you offer?")

	// Suggestion lists are copies; callers cannot mutate the shared table.
	visitor[0] = "changed"
	assert.NotEqual(t, visitor[0], env.svc.Suggestions(operations.Actor{})[0])
}
