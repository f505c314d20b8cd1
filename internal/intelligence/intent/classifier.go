package intent

import (
	"regexp"
	"strings"

	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/lexicon"
)

// ---------------------------------------------------------------------------
// Keyword tables
// ---------------------------------------------------------------------------

// Keywords are base forms matched against the normalized query, so plural
// phrasings ("sales reports") hit their singular entries. Multi-word phrases
// match as contiguous substrings.

var analyticalKeywords = []string{
	"revenue", "sale", "report", "analytic", "statistic", "stat",
	"how many", "how much", "total", "summary", "performance",
	"growth", "trend", "attendance", "retention", "churn",
	"popular", "breakdown", "compare", "comparison", "vs",
	"this week", "this month", "today", "yesterday", "last week", "last month",
}

var operationalKeywords = []string{
	"confirm payment", "approve payment", "generate pin", "create sale",
	"record sale", "send reminder", "find member", "search member",
	"expiring", "pending", "inactive member", "checkin today",
	"who checked in", "mark", "update", "extend membership",
}

var lookupKeywords = []string{
	"show me", "find", "search", "lookup", "get detail",
	"member profile", "membership status", "payment history",
	"info", "detail", "profile", "what's", "whats", "who's", "whos",
	"info about", "detail about", "member info",
	"give me", "get me", "pull up", "look up",
}

// ---------------------------------------------------------------------------
// Classifier
// ---------------------------------------------------------------------------

// informationalBaseline is the standing score of the informational fallback.
// A keyword intent needs at least one hit to beat it.
const informationalBaseline = 0.5

const (
	emailBoost      = 3
	possessiveBoost = 2
)

var (
	// emailPattern is deliberately loose; the '@' pre-check keeps it off
	// the common path.
	emailPattern = regexp.MustCompile(`[\w\.-]+@[\w\.-]+`)

	// possessivePattern matches "Maria Santos's details" style references
	// to a named person. Case matters: capitalized words signal a name, so
	// it runs against the original query, not the normalized one.
	possessivePattern = regexp.MustCompile(`[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*'?s?\s+(?:info|details?|profile)`)
)

// Classifier assigns an IntentType to each query by counting keyword hits in
// the normalized query, with boosts for strong member-lookup signals (an
// email address, a possessive name reference). Safe for concurrent use.
type Classifier struct {
	lex *lexicon.Lexicon

	analytical  []string
	operational []string
	lookup      []string
}

// Option customizes a Classifier.
type Option func(*Classifier)

// WithLexicon sets the lexicon used to normalize queries before scoring.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(c *Classifier) {
		if lex != nil {
			c.lex = lex
		}
	}
}

// NewClassifier builds a Classifier with the stock keyword tables.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		analytical:  analyticalKeywords,
		operational: operationalKeywords,
		lookup:      lookupKeywords,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.lex == nil {
		c.lex = lexicon.New()
	}
	return c
}

// Result carries the winning intent, its score, and the full score board for
// logging and metrics.
type Result struct {
	Intent     IntentType
	Confidence float64
	Scores     map[IntentType]float64
}

// Classify scores query against the keyword tables and returns the winning
// intent. Ties resolve in fixed order: analytical, operational,
// member_lookup, informational. A winner scoring below 1 is downgraded to
// informational while keeping its score as the confidence.
func (c *Classifier) Classify(query string) Result {
	normalized := c.lex.Normalize(query)

	analytical := float64(countHits(normalized, c.analytical))
	operational := float64(countHits(normalized, c.operational))
	lookup := float64(countHits(normalized, c.lookup))

	// Boosts inspect the original query: emails never survive plural
	// folding intact, and possessive name detection needs the capitals.
	if strings.Contains(query, "@") && emailPattern.MatchString(query) {
		lookup += emailBoost
	}
	if possessivePattern.MatchString(query) {
		lookup += possessiveBoost
	}

	ranked := []struct {
		intent IntentType
		score  float64
	}{
		{IntentAnalytical, analytical},
		{IntentOperational, operational},
		{IntentMemberLookup, lookup},
		{IntentInformational, informationalBaseline},
	}

	best := ranked[0]
	for _, r := range ranked[1:] {
		if r.score > best.score {
			best = r
		}
	}

	intent := best.intent
	if best.score < 1 {
		intent = IntentInformational
	}

	return Result{
		Intent:     intent,
		Confidence: best.score,
		Scores: map[IntentType]float64{
			IntentAnalytical:    analytical,
			IntentOperational:   operational,
			IntentMemberLookup:  lookup,
			IntentInformational: informationalBaseline,
		},
	}
}

func countHits(normalized string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(normalized, kw) {
			n++
		}
	}
	return n
}
