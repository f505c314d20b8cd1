package chat

import (
	"github.com/turtacn/MemberPulse-Intelligence/internal/application/operations"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// Quick-reply suggestions per audience. Each list leads with the queries
// that audience actually asks: members about their own standing, staff
// about the day's operations, visitors about joining.
var (
	memberSuggestions = []string{
		"What's my membership status?",
		"How many days are left on my membership?",
		"How do I use my kiosk PIN?",
		"How can I renew my membership?",
		"What are the gym hours?",
	}

	staffSuggestions = []string{
		"Show me this month's revenue",
		"Who checked in today?",
		"Find members expiring in 7 days",
		"Show pending payment approvals",
		"This week's attendance report",
		"Membership growth this month",
	}

	visitorSuggestions = []string{
		"What membership plans do you offer?",
		"How much are walk-in passes?",
		"How do I register for the gym?",
		"What payment methods do you accept?",
		"Tell me about your facilities",
	}
)

// Suggestions returns the quick-reply prompts for the actor's role.
func (s *Service) Suggestions(actor operations.Actor) []string {
	var src []string
	switch {
	case actor.Role.AtLeast(common.RoleStaff):
		src = staffSuggestions
	case actor.Role == common.RoleMember:
		src = memberSuggestions
	default:
		src = visitorSuggestions
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
