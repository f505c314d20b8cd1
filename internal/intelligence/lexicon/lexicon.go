// Package lexicon provides morphological query normalization for the chat
// pipeline: plural→singular folding and synonym-aware keyword expansion.
// Everything here is pure computation over immutable tables, so a single
// Lexicon is safe for concurrent use.
package lexicon

import (
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// Lexicon
// ---------------------------------------------------------------------------

// Lexicon folds queries and keyword lists into a canonical form so that
// matching is insensitive to simple plural/singular and synonym variation.
// The word-boundary replacement regexes are precompiled at construction; a
// Normalize call performs no allocation beyond the rewritten string.
type Lexicon struct {
	pairs            []PluralPair
	pluralToSingular map[string]string
	singularToPlural map[string]string
	synonyms         map[string][]string
	replacers        []replacer
}

type replacer struct {
	pattern  *regexp.Regexp
	singular string
}

// New returns a Lexicon backed by the default membership-domain tables.
func New() *Lexicon {
	lex, err := NewWithTables(DefaultTables())
	if err != nil {
		// Default tables are statically known-valid.
		panic(err)
	}
	return lex
}

// NewWithTables builds a Lexicon from the given tables. The tables are deep
// copied; later mutation of the argument does not affect the Lexicon.
func NewWithTables(tables Tables) (*Lexicon, error) {
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	t := tables.Clone()

	lex := &Lexicon{
		pairs:            t.Pairs,
		pluralToSingular: make(map[string]string, len(t.Pairs)),
		singularToPlural: make(map[string]string, len(t.Pairs)),
		synonyms:         t.Synonyms,
		replacers:        make([]replacer, 0, len(t.Pairs)),
	}
	for _, p := range t.Pairs {
		lex.pluralToSingular[p.Plural] = p.Singular
		// Later pairs overwrite earlier ones when plurals share a singular.
		lex.singularToPlural[p.Singular] = p.Plural
		lex.replacers = append(lex.replacers, replacer{
			pattern:  regexp.MustCompile(`\b` + regexp.QuoteMeta(p.Plural) + `\b`),
			singular: p.Singular,
		})
	}
	return lex, nil
}

// ---------------------------------------------------------------------------
// Normalization
// ---------------------------------------------------------------------------

// Normalize lower-cases the query and replaces every whole-word plural with
// its singular base form. Partial tokens are never touched ("supports" stays
// intact even though "reports" folds to "report"). Normalize is idempotent:
// no singular output form is itself a plural key.
func (l *Lexicon) Normalize(query string) string {
	normalized := strings.ToLower(query)
	for _, r := range l.replacers {
		normalized = r.pattern.ReplaceAllString(normalized, r.singular)
	}
	return normalized
}

// ---------------------------------------------------------------------------
// Keyword expansion
// ---------------------------------------------------------------------------

// Expand generates morphological variants of each keyword phrase: for every
// word position it substitutes the plural of a known singular, the singular
// of a known plural, and each listed synonym. The result is the union of the
// originals and all variants, duplicates collapsed, with the original phrases
// first in input order and generated variants appended after.
func (l *Lexicon) Expand(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords)*2)
	out := make([]string, 0, len(keywords)*2)

	add := func(phrase string) {
		if _, dup := seen[phrase]; dup {
			return
		}
		seen[phrase] = struct{}{}
		out = append(out, phrase)
	}

	for _, kw := range keywords {
		add(kw)
	}
	for _, kw := range keywords {
		words := strings.Fields(kw)
		for i, word := range words {
			if plural, ok := l.singularToPlural[word]; ok {
				add(substituteWord(words, i, plural))
			}
			if singular, ok := l.pluralToSingular[word]; ok {
				add(substituteWord(words, i, singular))
			}
			for _, variant := range l.synonyms[word] {
				add(substituteWord(words, i, variant))
			}
		}
	}
	return out
}

func substituteWord(words []string, idx int, replacement string) string {
	variant := make([]string, len(words))
	copy(variant, words)
	variant[idx] = replacement
	return strings.Join(variant, " ")
}

// ---------------------------------------------------------------------------
// Variation matching
// ---------------------------------------------------------------------------

// MatchesAnyVariation reports whether the normalized query contains any
// normalized expansion of the keyword list as a substring. For static keyword
// sets that are matched repeatedly, precompile with CompileSet instead.
func (l *Lexicon) MatchesAnyVariation(query string, keywords []string) bool {
	return l.CompileSet(keywords...).Matches(query)
}

// KeywordSet is a keyword list whose expansion and normalization have been
// precomputed. Routers and classifiers holding static keyword sets compile
// them once at construction so the per-query cost stays a bounded substring
// scan.
type KeywordSet struct {
	lex        *Lexicon
	normalized []string
}

// CompileSet expands and normalizes the keyword list once, returning a set
// ready for repeated matching.
func (l *Lexicon) CompileSet(keywords ...string) *KeywordSet {
	expanded := l.Expand(keywords)
	normalized := make([]string, 0, len(expanded))
	seen := make(map[string]struct{}, len(expanded))
	for _, kw := range expanded {
		n := l.Normalize(kw)
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		normalized = append(normalized, n)
	}
	return &KeywordSet{lex: l, normalized: normalized}
}

// Matches normalizes the query and reports whether any precompiled keyword
// variant is a substring of it.
func (s *KeywordSet) Matches(query string) bool {
	return s.MatchesNormalized(s.lex.Normalize(query))
}

// MatchesNormalized is the substring scan over an already-normalized query.
// Callers that normalize once and test many sets use this form.
func (s *KeywordSet) MatchesNormalized(normalizedQuery string) bool {
	for _, kw := range s.normalized {
		if strings.Contains(normalizedQuery, kw) {
			return true
		}
	}
	return false
}

// Size returns the number of distinct normalized variants in the set.
func (s *KeywordSet) Size() int {
	return len(s.normalized)
}
