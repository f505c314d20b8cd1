// Package router maps chat queries onto dispatchable tools. Rules are
// evaluated in a fixed order and the first hit wins, so broad patterns sit
// behind the specific ones they would otherwise shadow. The router is pure:
// it never touches storage or checks permissions, it only decides.
package router

import (
	"strings"

	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/extract"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/lexicon"
)

// ---------------------------------------------------------------------------
// Rule keyword tables
// ---------------------------------------------------------------------------

// Keywords are base forms; the lexicon expands plural, hyphen, and synonym
// variants when the sets are compiled.

var (
	revenueKeywords        = []string{"revenue", "sale", "income", "earning"}
	growthKeywords         = []string{"new member", "membership growth", "member growth", "how many new"}
	attendanceKeywords     = []string{"attendance", "checkin", "visit", "peak hour", "busy"}
	retentionKeywords      = []string{"retention", "churn", "renewal"}
	planPopularityKeywords = []string{"popular plan", "best-selling", "top plan", "most subscribed"}
	pendingPaymentKeywords = []string{"pending payment", "outstanding"}

	selfInfoKeywords = []string{"show me my", "my information", "my detail", "my profile", "my info", "my account"}
	durationKeywords = []string{"how long", "days remaining", "how many days", "membership duration", "expires when", "when expire", "how long until"}

	memberLookupKeywords = []string{
		"find member", "search member", "lookup member", "show me",
		"member info", "member detail", "member profile",
		"info about", "detail about", "profile of", "profile for",
		"whats", "what's", "whos", "who's",
		"info", "detail", "profile",
		"give me", "get me", "pull up", "look up",
		"information on", "information about",
	}
)

// durationSelfMarkers gate the membership-duration rule to questions about
// the asker's own membership, checked against the normalized query.
var durationSelfMarkers = []string{"my", "i have", "i've", "expire", "left"}

// summaryKeywords trigger the comprehensive summary as the last rule before
// giving up.
var summaryKeywords = []string{"summary", "overview", "performance", "dashboard"}

// pinIdentifierSplitters mark where the member identifier starts in a
// generate-pin request.
var pinIdentifierSplitters = []string{"for", "to"}

const (
	defaultExpiringDays = 7
	defaultInactiveDays = 30

	clarifyPaymentReference = "Please provide a payment reference number (e.g., PAY-20231201-123456)"
)

// ---------------------------------------------------------------------------
// Decisions
// ---------------------------------------------------------------------------

// Args carries the entities extracted for a tool call. Only the fields the
// decided tool needs are populated.
type Args struct {
	Period     extract.Period `json:"period,omitempty"`
	Days       int            `json:"days,omitempty"`
	Reference  string         `json:"reference,omitempty"`
	Email      string         `json:"email,omitempty"`
	Name       string         `json:"name,omitempty"`
	Identifier string         `json:"identifier,omitempty"`
}

// Decision is the outcome of routing one query. An unmatched query has
// Matched false and the caller falls back to the generative path. A matched
// decision either names a complete tool call or carries a Clarification
// prompt when a required entity was missing.
type Decision struct {
	Matched       bool   `json:"matched"`
	Tool          Tool   `json:"tool,omitempty"`
	Args          Args   `json:"args,omitempty"`
	Clarification string `json:"clarification,omitempty"`
}

func decide(tool Tool, args Args) Decision {
	return Decision{Matched: true, Tool: tool, Args: args}
}

// ---------------------------------------------------------------------------
// Router
// ---------------------------------------------------------------------------

// Router evaluates the ordered rule chain. All keyword expansion happens at
// construction; Route itself does no allocation-heavy work and is safe for
// concurrent use.
type Router struct {
	lex *lexicon.Lexicon

	revenue        *lexicon.KeywordSet
	growth         *lexicon.KeywordSet
	attendance     *lexicon.KeywordSet
	retention      *lexicon.KeywordSet
	planPopularity *lexicon.KeywordSet
	pendingPays    *lexicon.KeywordSet
	selfInfo       *lexicon.KeywordSet
	duration       *lexicon.KeywordSet
	memberLookup   *lexicon.KeywordSet
}

// Option customizes a Router.
type Option func(*Router)

// WithLexicon sets the lexicon used for normalization and keyword expansion.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(r *Router) {
		if lex != nil {
			r.lex = lex
		}
	}
}

// New builds a Router and precompiles every rule's keyword set.
func New(opts ...Option) *Router {
	r := &Router{}
	for _, opt := range opts {
		opt(r)
	}
	if r.lex == nil {
		r.lex = lexicon.New()
	}

	r.revenue = r.lex.CompileSet(revenueKeywords...)
	r.growth = r.lex.CompileSet(growthKeywords...)
	r.attendance = r.lex.CompileSet(attendanceKeywords...)
	r.retention = r.lex.CompileSet(retentionKeywords...)
	r.planPopularity = r.lex.CompileSet(planPopularityKeywords...)
	r.pendingPays = r.lex.CompileSet(pendingPaymentKeywords...)
	r.selfInfo = r.lex.CompileSet(selfInfoKeywords...)
	r.duration = r.lex.CompileSet(durationKeywords...)
	r.memberLookup = r.lex.CompileSet(memberLookupKeywords...)

	return r
}

// Route runs query through the rule chain and returns the first decision.
func (r *Router) Route(query string) Decision {
	lower := strings.ToLower(query)
	normalized := r.lex.Normalize(query)

	// Revenue reports.
	if r.revenue.MatchesNormalized(normalized) {
		return decide(ToolRevenueReport, Args{Period: extract.PeriodFrom(lower)})
	}

	// Membership growth.
	if r.growth.MatchesNormalized(normalized) {
		return decide(ToolGrowthReport, Args{Period: extract.PeriodFrom(lower)})
	}

	// Attendance, including the live check-in listing. "who checked in"
	// survives normalization untouched, so it gets literal checks alongside
	// the keyword set.
	if r.attendance.MatchesNormalized(normalized) ||
		strings.Contains(lower, "who checked in") ||
		strings.Contains(lower, "checked in today") {
		if strings.Contains(lower, "today") || strings.Contains(lower, "who checked in") {
			return decide(ToolTodaysCheckins, Args{})
		}
		return decide(ToolAttendanceReport, Args{Period: extract.PeriodFrom(lower)})
	}

	// Retention and churn.
	if r.retention.MatchesNormalized(normalized) {
		return decide(ToolRetentionReport, Args{})
	}

	// Plan popularity.
	if r.planPopularity.MatchesNormalized(normalized) {
		return decide(ToolPlanPopularityReport, Args{Period: extract.PeriodFrom(lower)})
	}

	// Pending payment listing.
	if r.pendingPays.MatchesNormalized(normalized) {
		return decide(ToolPendingPayments, Args{})
	}

	// Payment confirmation needs a reference token; without one the rule
	// still claims the query and asks for the reference.
	if strings.Contains(normalized, "confirm payment") {
		if ref, ok := extract.PaymentReference(query); ok {
			return decide(ToolConfirmPayment, Args{Reference: ref})
		}
		return Decision{Matched: true, Tool: ToolConfirmPayment, Clarification: clarifyPaymentReference}
	}

	// Expiring memberships. The stem catches expire, expiring, expiration.
	if strings.Contains(normalized, "expir") {
		return decide(ToolExpiringMemberships, Args{Days: extract.DayCount(lower, defaultExpiringDays)})
	}

	// Inactive members.
	if strings.Contains(normalized, "inactive") {
		return decide(ToolInactiveMembers, Args{Days: extract.DayCount(lower, defaultInactiveDays)})
	}

	// A standalone email address is a member lookup on its own.
	if email, ok := extract.Email(query); ok {
		return decide(ToolMemberDetailsByEmail, Args{Email: email})
	}

	// The asker's own record.
	if r.selfInfo.MatchesNormalized(normalized) {
		return decide(ToolSelfInformation, Args{})
	}

	// Remaining time on the asker's own membership. Without a self marker
	// the query falls through to the lookup rules.
	if r.duration.MatchesNormalized(normalized) && containsAny(normalized, durationSelfMarkers) {
		return decide(ToolSelfMembershipDuration, Args{})
	}

	// Member lookup by name: keyword phrasing or a bare capitalized name
	// followed by a lookup noun.
	if r.memberLookup.MatchesNormalized(normalized) || extract.HasNamePattern(query) {
		if name, ok := extract.PossessiveName(query); ok {
			return decide(ToolMemberDetailsByName, Args{Name: name})
		}
		if name, ok := extract.NameAfterTrigger(query); ok {
			return decide(ToolMemberDetailsByName, Args{Name: name})
		}
	}

	// Kiosk PIN generation; the identifier follows "for" or "to".
	if strings.Contains(lower, "generate pin") || strings.Contains(lower, "create pin") {
		for _, splitter := range pinIdentifierSplitters {
			if !strings.Contains(lower, splitter) {
				continue
			}
			parts := strings.Split(lower, splitter)
			if len(parts) < 2 {
				continue
			}
			if ident := strings.TrimSpace(parts[1]); ident != "" {
				return decide(ToolGeneratePIN, Args{Identifier: ident})
			}
		}
	}

	// Comprehensive summary is the broadest rule, so it goes last.
	if containsAny(lower, summaryKeywords) {
		return decide(ToolComprehensiveSummary, Args{Period: extract.PeriodFrom(lower)})
	}

	return Decision{}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
