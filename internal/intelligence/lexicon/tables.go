package lexicon

import (
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// ---------------------------------------------------------------------------
// Morphology tables
// ---------------------------------------------------------------------------

// PluralPair maps one plural surface form to its singular base form.
// Pairs are ordered: when two plurals share a singular (e.g. "checkins" and
// "check-ins"), the later pair wins in the derived singular→plural mapping.
type PluralPair struct {
	Plural   string `json:"plural" yaml:"plural"`
	Singular string `json:"singular" yaml:"singular"`
}

// Tables holds the complete morphology configuration for a Lexicon: the
// ordered plural→singular pairs and the synonym map from a canonical word to
// its interchangeable variants. The singular→plural direction is always
// derived from Pairs, never stored.
type Tables struct {
	Pairs    []PluralPair        `json:"pairs" yaml:"pairs"`
	Synonyms map[string][]string `json:"synonyms" yaml:"synonyms"`
}

// defaultPairs is the stock membership-domain morphology. Order matters for
// the derived inverse only; normalization applies every pair regardless.
var defaultPairs = []PluralPair{
	{Plural: "details", Singular: "detail"},
	{Plural: "members", Singular: "member"},
	{Plural: "payments", Singular: "payment"},
	{Plural: "plans", Singular: "plan"},
	{Plural: "passes", Singular: "pass"},
	{Plural: "sales", Singular: "sale"},
	{Plural: "stats", Singular: "stat"},
	{Plural: "statistics", Singular: "statistic"},
	{Plural: "analytics", Singular: "analytic"},
	{Plural: "reports", Singular: "report"},
	{Plural: "visits", Singular: "visit"},
	{Plural: "checkins", Singular: "checkin"},
	{Plural: "check-ins", Singular: "checkin"},
	{Plural: "memberships", Singular: "membership"},
	{Plural: "subscriptions", Singular: "subscription"},
	{Plural: "renewals", Singular: "renewal"},
	{Plural: "expirations", Singular: "expiration"},
	{Plural: "attendances", Singular: "attendance"},
}

// defaultSynonyms maps canonical words to variants considered interchangeable
// during keyword expansion. Lookup is by canonical word only; the sets are not
// transitively closed.
var defaultSynonyms = map[string][]string{
	"info":    {"information", "informations", "details", "detail", "data"},
	"detail":  {"details", "info", "information"},
	"profile": {"profiles", "account", "accounts"},
	"member":  {"members", "user", "users", "client", "clients"},
	"payment": {"payments", "transaction", "transactions"},
	"checkin": {"check-in", "check in", "checkins", "check-ins"},
	"revenue": {"sales", "income", "earnings", "proceeds"},
	"summary": {"summaries", "overview", "report", "reports"},
}

// DefaultTables returns a deep copy of the stock morphology tables. Callers
// may freely mutate the copy before constructing a Lexicon from it.
func DefaultTables() Tables {
	return Tables{
		Pairs:    clonePairs(defaultPairs),
		Synonyms: cloneSynonyms(defaultSynonyms),
	}
}

// Clone returns a deep copy of the tables.
func (t Tables) Clone() Tables {
	return Tables{
		Pairs:    clonePairs(t.Pairs),
		Synonyms: cloneSynonyms(t.Synonyms),
	}
}

// Validate checks structural invariants: no empty surface forms, no duplicate
// plural keys, no empty synonym canonical words or variants.
func (t Tables) Validate() error {
	seen := make(map[string]struct{}, len(t.Pairs))
	for i, p := range t.Pairs {
		if p.Plural == "" {
			return errors.Newf(errors.ErrCodeValidation, "morphology pair %d: plural form must not be empty", i)
		}
		if p.Singular == "" {
			return errors.Newf(errors.ErrCodeValidation, "morphology pair %d (%q): singular form must not be empty", i, p.Plural)
		}
		if _, dup := seen[p.Plural]; dup {
			return errors.Newf(errors.ErrCodeValidation, "morphology pair %d: duplicate plural form %q", i, p.Plural)
		}
		seen[p.Plural] = struct{}{}
	}
	for canonical, variants := range t.Synonyms {
		if canonical == "" {
			return errors.New(errors.ErrCodeValidation, "synonym canonical word must not be empty")
		}
		for _, v := range variants {
			if v == "" {
				return errors.Newf(errors.ErrCodeValidation, "synonym set %q: variant must not be empty", canonical)
			}
		}
	}
	return nil
}

func clonePairs(pairs []PluralPair) []PluralPair {
	out := make([]PluralPair, len(pairs))
	copy(out, pairs)
	return out
}

func cloneSynonyms(syn map[string][]string) map[string][]string {
	out := make(map[string][]string, len(syn))
	for k, vs := range syn {
		cp := make([]string, len(vs))
		copy(cp, vs)
		out[k] = cp
	}
	return out
}
