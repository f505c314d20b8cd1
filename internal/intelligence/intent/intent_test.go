package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntentType_IsValid(t *testing.T) {
	t.Parallel()

	for _, valid := range []IntentType{
		IntentAnalytical, IntentOperational, IntentMemberLookup, IntentInformational,
	} {
		assert.True(t, valid.IsValid(), "%s should be valid", valid)
	}
	assert.False(t, IntentType("").IsValid())
	assert.False(t, IntentType("transactional").IsValid())
}

func TestIntentType_RoutesToTools(t *testing.T) {
	t.Parallel()

	assert.True(t, IntentAnalytical.RoutesToTools())
	assert.True(t, IntentOperational.RoutesToTools())
	assert.True(t, IntentMemberLookup.RoutesToTools())
	assert.False(t, IntentInformational.RoutesToTools())
}

func TestIntentType_ContextWindow(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, IntentAnalytical.ContextWindow())
	assert.Equal(t, 1, IntentOperational.ContextWindow())
	assert.Equal(t, 0, IntentMemberLookup.ContextWindow())
	assert.Equal(t, 2, IntentInformational.ContextWindow())
	assert.Equal(t, 2, IntentType("unknown").ContextWindow())
}
