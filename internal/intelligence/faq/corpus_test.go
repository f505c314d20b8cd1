package faq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// ============================================================================
// Corpus construction
// ============================================================================

func TestNewCorpus_Valid(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{Key: "hours", Keywords: []string{"hours", "open"}, Answer: "We open at 6 AM."},
		{Key: "pricing", Keywords: []string{"price", "cost"}, Answer: "Plans start at 2999."},
	}

	c, err := NewCorpus(entries)
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"hours", "pricing"}, c.Keys())
}

func TestNewCorpus_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		entries  []Entry
		wantCode errors.ErrorCode
	}{
		{
			name: "empty key",
			entries: []Entry{
				{Key: "", Keywords: []string{"hours"}, Answer: "open"},
			},
			wantCode: errors.ErrCodeValidation,
		},
		{
			name: "duplicate key",
			entries: []Entry{
				{Key: "hours", Keywords: []string{"hours"}, Answer: "open"},
				{Key: "hours", Keywords: []string{"schedule"}, Answer: "open"},
			},
			wantCode: errors.ErrCodeCorpusDuplicateKey,
		},
		{
			name: "no keywords",
			entries: []Entry{
				{Key: "hours", Keywords: nil, Answer: "open"},
			},
			wantCode: errors.ErrCodeCorpusEmptyKeywords,
		},
		{
			name: "blank keyword",
			entries: []Entry{
				{Key: "hours", Keywords: []string{"hours", "  "}, Answer: "open"},
			},
			wantCode: errors.ErrCodeCorpusEmptyKeywords,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, err := NewCorpus(tc.entries)
			require.Error(t, err)
			assert.Nil(t, c)
			assert.True(t, errors.IsCode(err, tc.wantCode),
				"want code %s, got %v", tc.wantCode, err)
		})
	}
}

func TestCorpus_EntriesReturnsCopy(t *testing.T) {
	t.Parallel()

	c, err := NewCorpus([]Entry{
		{Key: "hours", Keywords: []string{"hours"}, Answer: "open"},
	})
	require.NoError(t, err)

	got := c.Entries()
	require.Len(t, got, 1)
	got[0].Key = "mutated"

	assert.Equal(t, []string{"hours"}, c.Keys())
}

// ============================================================================
// Embedded default corpus
// ============================================================================

func TestDefaultCorpus(t *testing.T) {
	t.Parallel()

	c := DefaultCorpus()
	require.NotNil(t, c)

	assert.Equal(t, 48, c.Len())

	keys := c.Keys()
	assert.Equal(t, "membership_plans", keys[0])
	assert.Equal(t, "account_data", keys[len(keys)-1])

	for _, e := range c.Entries() {
		assert.NotEmpty(t, e.Keywords, "entry %s has no keywords", e.Key)
		assert.NotEmpty(t, e.Answer, "entry %s has no answer", e.Key)
	}
}
