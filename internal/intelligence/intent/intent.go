// Package intent classifies chat queries into the coarse intent classes the
// pipeline dispatches on. Classification is deterministic keyword scoring
// over the normalized query; no model call is involved, so it is cheap enough
// to run on every message.
package intent

// IntentType is the coarse class assigned to a query.
type IntentType string

const (
	// IntentAnalytical covers reporting and statistics questions
	// ("revenue this month", "attendance trend").
	IntentAnalytical IntentType = "analytical"

	// IntentOperational covers action requests ("confirm payment",
	// "generate pin", "send reminders").
	IntentOperational IntentType = "operational"

	// IntentMemberLookup covers questions about a specific member
	// ("Maria Santos's profile", "jane@example.com info").
	IntentMemberLookup IntentType = "member_lookup"

	// IntentInformational is the fallback for general questions answered
	// by the FAQ corpus or the generative backend.
	IntentInformational IntentType = "informational"
)

// String returns the wire value of the intent.
func (t IntentType) String() string {
	return string(t)
}

// IsValid reports whether t is one of the defined intent classes.
func (t IntentType) IsValid() bool {
	switch t {
	case IntentAnalytical, IntentOperational, IntentMemberLookup, IntentInformational:
		return true
	}
	return false
}

// RoutesToTools reports whether queries of this intent go through the tool
// router before any generative fallback.
func (t IntentType) RoutesToTools() bool {
	switch t {
	case IntentAnalytical, IntentOperational, IntentMemberLookup:
		return true
	}
	return false
}

// ContextWindow returns how many prior conversation turns are sent to the
// generative backend for this intent. Analytical and lookup queries are
// self-contained; informational chat benefits from short history.
func (t IntentType) ContextWindow() int {
	switch t {
	case IntentAnalytical, IntentMemberLookup:
		return 0
	case IntentOperational:
		return 1
	case IntentInformational:
		return 2
	default:
		return 2
	}
}
