// Package faq implements the FAQ fast-path: a fixed corpus of topic entries
// scored against inbound queries by literal keyword counting. The fast-path
// is checked before any classification because its latency budget is an order
// of magnitude tighter than every other answer path.
package faq

import (
	"strings"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// ---------------------------------------------------------------------------
// Corpus
// ---------------------------------------------------------------------------

// Entry is one FAQ topic: a unique key, the keyword set that triggers it, and
// the canned answer returned on a match.
type Entry struct {
	Key      string   `json:"key" yaml:"key"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Answer   string   `json:"answer" yaml:"answer"`
}

// Corpus is an ordered, read-only FAQ table. Entry order is load-bearing for
// tie-breaking: when two entries score equally, the earlier one wins. A
// Corpus is immutable after construction and safe for concurrent use;
// replacing a live corpus goes through Provider, never in-place mutation.
type Corpus struct {
	entries []Entry
	// Keywords lowered once at construction so matching is a plain
	// substring scan per query.
	lowered [][]string
}

// NewCorpus validates and builds a corpus. A duplicate topic key, an empty
// key, an empty keyword set, or a blank keyword refuses the whole corpus:
// operating on a partially-valid table would degrade every subsequent match
// invisibly.
func NewCorpus(entries []Entry) (*Corpus, error) {
	seen := make(map[string]struct{}, len(entries))
	c := &Corpus{
		entries: make([]Entry, len(entries)),
		lowered: make([][]string, len(entries)),
	}
	copy(c.entries, entries)

	for i, e := range c.entries {
		if e.Key == "" {
			return nil, errors.Newf(errors.ErrCodeValidation, "faq entry %d: topic key must not be empty", i)
		}
		if _, dup := seen[e.Key]; dup {
			return nil, errors.Newf(errors.ErrCodeCorpusDuplicateKey, "faq entry %d: duplicate topic key %q", i, e.Key)
		}
		seen[e.Key] = struct{}{}

		if len(e.Keywords) == 0 {
			return nil, errors.Newf(errors.ErrCodeCorpusEmptyKeywords, "faq entry %q: keyword set must not be empty", e.Key)
		}
		low := make([]string, len(e.Keywords))
		for j, kw := range e.Keywords {
			trimmed := strings.TrimSpace(kw)
			if trimmed == "" {
				// An empty keyword is a substring of every query and
				// would make this entry match everything.
				return nil, errors.Newf(errors.ErrCodeCorpusEmptyKeywords, "faq entry %q: keyword %d is blank", e.Key, j)
			}
			low[j] = strings.ToLower(trimmed)
		}
		c.lowered[i] = low
	}
	return c, nil
}

// Len returns the number of entries.
func (c *Corpus) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the corpus entries in order.
func (c *Corpus) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Keys returns the topic keys in corpus order.
func (c *Corpus) Keys() []string {
	keys := make([]string, len(c.entries))
	for i, e := range c.entries {
		keys[i] = e.Key
	}
	return keys
}
