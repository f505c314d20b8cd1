package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/genai"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/search/milvus"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/faq"
)

func writeCorpusFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validCorpusYAML = `entries:
  - key: opening_hours
    keywords: [open, hours, close]
    answer: We are open 6am to 10pm daily.
  - key: pricing
    keywords: [price, cost, membership]
    answer: Memberships start at $29 per month.
`

func TestCorpusValidateValidFile(t *testing.T) {
	path := writeCorpusFile(t, "faq.yaml", validCorpusYAML)

	out, err := executeCommand(t, "corpus", "validate", path)
	require.NoError(t, err)

	assert.Contains(t, out, "OK:")
	assert.Contains(t, out, "2 entries")
}

func TestCorpusValidateJSONOutput(t *testing.T) {
	path := writeCorpusFile(t, "faq.yaml", validCorpusYAML)

	out, err := executeCommand(t, "corpus", "validate", path, "--output", "json")
	require.NoError(t, err)

	assert.Contains(t, out, `"valid": true`)
	assert.Contains(t, out, `"entries": 2`)
	assert.Contains(t, out, "opening_hours")
}

func TestCorpusValidateDuplicateKey(t *testing.T) {
	path := writeCorpusFile(t, "faq.yaml", `entries:
  - key: opening_hours
    keywords: [open]
    answer: a
  - key: opening_hours
    keywords: [hours]
    answer: b
`)

	_, err := executeCommand(t, "corpus", "validate", path)
	require.Error(t, err)
}

func TestCorpusValidateMissingFile(t *testing.T) {
	_, err := executeCommand(t, "corpus", "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestCorpusValidateUnsupportedExtension(t *testing.T) {
	path := writeCorpusFile(t, "faq.txt", validCorpusYAML)

	_, err := executeCommand(t, "corpus", "validate", path)
	require.Error(t, err)
}

// fakeEmbedder returns deterministic three-dimensional vectors and records
// the texts it was asked to embed.
type fakeEmbedder struct {
	genai.Provider
	calls [][]string
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 1, 0}
	}
	return out, nil
}

func TestEmbedEntriesBatchesAndMapsFields(t *testing.T) {
	entries := []faq.Entry{
		{Key: "opening_hours", Keywords: []string{"open", "hours"}, Answer: "We are open 6am to 10pm daily."},
		{Key: "pricing", Keywords: []string{"price", "cost"}, Answer: "Memberships start at $29 per month."},
		{Key: "parking", Keywords: []string{"parking"}, Answer: "Free parking is available on site."},
	}
	embedder := &fakeEmbedder{}

	vectors, err := embedEntries(context.Background(), embedder, entries, 2)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	// Batch size 2 over three entries means two provider calls.
	require.Len(t, embedder.calls, 2)
	assert.Len(t, embedder.calls[0], 2)
	assert.Len(t, embedder.calls[1], 1)

	assert.Equal(t, "opening_hours", vectors[0].ID)
	assert.Equal(t, milvus.KindFAQ, vectors[0].Kind)
	assert.Equal(t, "opening_hours", vectors[0].Intent)
	assert.Equal(t, "We are open 6am to 10pm daily.", vectors[0].Text)
	assert.Len(t, vectors[0].Embedding, 3)

	// Keywords and answer both end up in the embedded text.
	assert.Contains(t, embedder.calls[0][0], "open, hours")
	assert.Contains(t, embedder.calls[0][0], "We are open 6am to 10pm daily.")
}

func TestEmbedEntriesProviderError(t *testing.T) {
	entries := []faq.Entry{{Key: "pricing", Keywords: []string{"price"}, Answer: "a"}}

	_, err := embedEntries(context.Background(), genai.NewDisabledProvider(), entries, 64)
	require.Error(t, err)
}

func TestCorpusSyncRejectsBadBatch(t *testing.T) {
	path := writeCorpusFile(t, "faq.yaml", validCorpusYAML)

	_, err := executeCommand(t, "corpus", "sync", path, "--batch", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch")
}

func TestCorpusSyncRequiresEnabledProvider(t *testing.T) {
	path := writeCorpusFile(t, "faq.yaml", validCorpusYAML)
	cfgPath := writeCorpusFile(t, "mpulse.yaml", "database:\n  user: mpulse\n")

	// Generation defaults to disabled, so sync refuses before touching
	// any backend.
	_, err := executeCommand(t, "corpus", "sync", path, "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestCorpusSyncMissingFile(t *testing.T) {
	_, err := executeCommand(t, "corpus", "sync", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
