package faq

import "strings"

// ---------------------------------------------------------------------------
// Matching
// ---------------------------------------------------------------------------

// Match is the scored result of a corpus scan.
type Match struct {
	Key    string
	Answer string
	Score  int
}

// FindMatch lower-cases the query and counts, per entry, how many of its
// keywords occur as literal substrings. The entry with the strictly highest
// count wins; equal counts keep the earliest entry in corpus order. A zero
// best score means no match and returns ("", 0).
//
// No morphological normalization happens here: the fast-path trades recall
// for raw substring speed, a single linear scan over a fixed-size table with
// no external calls.
func (c *Corpus) FindMatch(query string) (string, int) {
	m, ok := c.BestMatch(query)
	if !ok {
		return "", 0
	}
	return m.Answer, m.Score
}

// BestMatch is FindMatch with the winning topic key attached, for callers
// that log or meter which FAQ answered.
func (c *Corpus) BestMatch(query string) (Match, bool) {
	lowered := strings.ToLower(query)

	best := Match{}
	for i, keywords := range c.lowered {
		count := 0
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				count++
			}
		}
		if count > best.Score {
			best = Match{
				Key:    c.entries[i].Key,
				Answer: c.entries[i].Answer,
				Score:  count,
			}
		}
	}
	if best.Score == 0 {
		return Match{}, false
	}
	return best, true
}

// IsFAQQuery reports whether the query would hit the fast-path at all.
func (c *Corpus) IsFAQQuery(query string) bool {
	_, score := c.FindMatch(query)
	return score > 0
}
