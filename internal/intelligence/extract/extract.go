// Package extract pulls typed entities out of chat queries: reporting
// periods, day counts, payment references, email addresses, and member
// names. Every function is pure and safe for concurrent use; patterns are
// compiled once at package load.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Period
// ---------------------------------------------------------------------------

// Period is a named reporting window understood by the analytics engine.
type Period string

const (
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
	PeriodThisWeek  Period = "this_week"
	PeriodLastWeek  Period = "last_week"
	PeriodThisMonth Period = "this_month"
	PeriodLastMonth Period = "last_month"
	PeriodThisYear  Period = "this_year"
)

// String returns the wire value of the period.
func (p Period) String() string {
	return string(p)
}

// IsValid reports whether p is one of the defined reporting windows.
func (p Period) IsValid() bool {
	switch p {
	case PeriodToday, PeriodYesterday, PeriodThisWeek, PeriodLastWeek,
		PeriodThisMonth, PeriodLastMonth, PeriodThisYear:
		return true
	}
	return false
}

// periodPhrases maps query phrases to periods in scan order. "today" sits
// first so "today vs yesterday" resolves to today.
var periodPhrases = []struct {
	phrase string
	period Period
}{
	{"today", PeriodToday},
	{"yesterday", PeriodYesterday},
	{"this week", PeriodThisWeek},
	{"last week", PeriodLastWeek},
	{"this month", PeriodThisMonth},
	{"last month", PeriodLastMonth},
	{"this year", PeriodThisYear},
}

// PeriodFrom scans query for a period phrase and returns the first hit in
// table order, defaulting to PeriodToday.
func PeriodFrom(query string) Period {
	lower := strings.ToLower(query)
	for _, p := range periodPhrases {
		if strings.Contains(lower, p.phrase) {
			return p.period
		}
	}
	return PeriodToday
}

// ---------------------------------------------------------------------------
// Day counts
// ---------------------------------------------------------------------------

var dayCountPattern = regexp.MustCompile(`(\d+)\s*days?`)

// DayCount extracts a day span such as "7 days" or "next 30 days" from
// query, returning fallback when none is present.
func DayCount(query string, fallback int) int {
	m := dayCountPattern.FindStringSubmatch(strings.ToLower(query))
	if m == nil {
		return fallback
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return fallback
	}
	return n
}

// ---------------------------------------------------------------------------
// Payment references
// ---------------------------------------------------------------------------

var paymentReferencePattern = regexp.MustCompile(`(?i)(PAY-\d{8}-\d{6})`)

// PaymentReference extracts a payment reference token (PAY-YYYYMMDD-NNNNNN)
// from query. The result is upper-cased so lookups match references the way
// they are issued.
func PaymentReference(query string) (string, bool) {
	m := paymentReferencePattern.FindStringSubmatch(query)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

// ---------------------------------------------------------------------------
// Email addresses
// ---------------------------------------------------------------------------

// emailPattern is loose on purpose; anything email-shaped identifies the
// query as a lookup and the repository decides whether the address exists.
var emailPattern = regexp.MustCompile(`[\w\.-]+@[\w\.-]+`)

// Email extracts the first email-shaped token from query.
func Email(query string) (string, bool) {
	if !strings.Contains(query, "@") {
		return "", false
	}
	m := emailPattern.FindString(query)
	if m == "" {
		return "", false
	}
	return m, true
}

// ---------------------------------------------------------------------------
// Member names
// ---------------------------------------------------------------------------

var (
	// possessiveNamePattern captures the name in "Maria Santos's details"
	// or "John Doe profile". Capitals carry the signal, so it runs against
	// the original query.
	possessiveNamePattern = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)'?s?\s+(?:info|information|detail|details|profile|profiles|data)`)

	// namePattern detects "Carlos Bautista details" style phrasing with at
	// least two capitalized words; used to recognize bare name queries that
	// carry no lookup keyword.
	namePattern = regexp.MustCompile(`[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\s+(?:info|information|detail|details|profile|profiles)`)
)

// triggerKeywords introduce a member name in lookup phrasing. Scanned in
// order; the first keyword present in the query selects the split point.
var triggerKeywords = []string{
	"find", "search", "lookup", "show me", "give me", "get me",
	"info about", "detail about", "details about", "information about",
	"profile of", "profile for", "whats", "what's", "info for",
	"detail for", "details for", "pull up", "look up",
	"infos about", "profiles of", "profiles for",
}

// removeWords is filler stripped from extracted name segments.
var removeWords = map[string]struct{}{
	"member": {}, "members": {}, "user": {}, "users": {}, "client": {}, "clients": {},
	"info": {}, "infos": {}, "information": {}, "informations": {},
	"detail": {}, "details": {}, "data": {},
	"profile": {}, "profiles": {}, "account": {}, "accounts": {},
	"'s": {}, "s": {}, "the": {}, "for": {}, "about": {}, "on": {}, "of": {},
}

// nameTrimCutset strips punctuation clinging to name tokens.
const nameTrimCutset = `'",.?!;:`

// HasNamePattern reports whether query contains a capitalized two-word name
// followed by a lookup noun ("Roberto Santos detail").
func HasNamePattern(query string) bool {
	return namePattern.MatchString(query)
}

// PossessiveName extracts the member name from possessive lookup phrasing
// such as "What's Lucia Aquino's info". The name keeps its original casing.
func PossessiveName(query string) (string, bool) {
	m := possessiveNamePattern.FindStringSubmatch(query)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return "", false
	}
	return name, true
}

// NameAfterTrigger extracts a member name from the segment following a
// trigger keyword ("look up member Ana Garcia" yields "ana garcia"). The
// query is lowered before splitting, filler words and punctuation are
// dropped, and the name is capped at four tokens. The segment considered is
// the one between the first and second keyword occurrence, matching how the
// split behaves when a keyword repeats.
func NameAfterTrigger(query string) (string, bool) {
	lower := strings.ToLower(query)
	for _, kw := range triggerKeywords {
		if !strings.Contains(lower, kw) {
			continue
		}
		parts := strings.Split(lower, kw)
		if len(parts) < 2 {
			continue
		}

		words := strings.Fields(strings.TrimSpace(parts[1]))
		cleaned := make([]string, 0, len(words))
		for _, w := range words {
			w = strings.Trim(w, nameTrimCutset)
			if len(w) <= 1 {
				continue
			}
			if _, skip := removeWords[strings.ToLower(w)]; skip {
				continue
			}
			cleaned = append(cleaned, w)
		}
		if len(cleaned) == 0 {
			continue
		}
		if len(cleaned) > 4 {
			cleaned = cleaned[:4]
		}
		name := strings.Join(cleaned, " ")
		if len(name) > 2 {
			return name, true
		}
	}
	return "", false
}
