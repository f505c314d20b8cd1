package milvus

import (
	"context"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// Corpus entry kinds.
const (
	KindFAQ  = "faq"
	KindHelp = "help"
)

// CorpusVector is one embedded corpus entry.
type CorpusVector struct {
	ID        string
	Kind      string
	Intent    string
	Text      string
	Embedding []float32
}

// CorpusHit is one semantic search result.
type CorpusHit struct {
	ID     string
	Score  float32
	Kind   string
	Intent string
	Text   string
}

// SearcherConfig holds search and ingest parameters.
type SearcherConfig struct {
	DefaultTopK     int
	MaxTopK         int
	SearchEf        int
	SearchTimeout   time.Duration
	UpsertBatchSize int
}

// VectorStore reads and writes the corpus collection.
type VectorStore struct {
	client *Client
	config SearcherConfig
	logger logging.Logger
}

func NewVectorStore(client *Client, cfg SearcherConfig, logger logging.Logger) *VectorStore {
	if cfg.DefaultTopK == 0 {
		cfg.DefaultTopK = 5
	}
	if cfg.MaxTopK == 0 {
		cfg.MaxTopK = 100
	}
	if cfg.SearchEf == 0 {
		cfg.SearchEf = 64
	}
	if cfg.SearchTimeout == 0 {
		cfg.SearchTimeout = 10 * time.Second
	}
	if cfg.UpsertBatchSize == 0 {
		cfg.UpsertBatchSize = 500
	}

	return &VectorStore{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// Upsert writes corpus entries in batches. Entries must share one
// embedding dimension.
func (s *VectorStore) Upsert(ctx context.Context, entries []CorpusVector) error {
	if len(entries) == 0 {
		return nil
	}
	dim := len(entries[0].Embedding)
	if dim == 0 {
		return errors.New(errors.ErrCodeValidation, "entries have no embedding")
	}

	for start := 0; start < len(entries); start += s.config.UpsertBatchSize {
		end := start + s.config.UpsertBatchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[start:end]

		ids := make([]string, len(batch))
		kinds := make([]string, len(batch))
		intents := make([]string, len(batch))
		texts := make([]string, len(batch))
		vectors := make([][]float32, len(batch))
		for i, e := range batch {
			if len(e.Embedding) != dim {
				return errors.Newf(errors.ErrCodeValidation,
					"embedding dimension mismatch: entry %s has %d, expected %d", e.ID, len(e.Embedding), dim)
			}
			ids[i] = e.ID
			kinds[i] = e.Kind
			intents[i] = e.Intent
			texts[i] = e.Text
			vectors[i] = e.Embedding
		}

		_, err := s.client.GetMilvusClient().Upsert(ctx, CorpusCollection, "",
			entity.NewColumnVarChar("id", ids),
			entity.NewColumnVarChar("kind", kinds),
			entity.NewColumnVarChar("intent", intents),
			entity.NewColumnVarChar("text", texts),
			entity.NewColumnFloatVector("embedding", dim, vectors),
		)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to upsert corpus entries")
		}
	}

	s.logger.Info("Corpus entries upserted", logging.Int("count", len(entries)))
	return nil
}

// Search returns the nearest corpus entries for the query vector. kind
// narrows to "faq" or "help" when non-empty.
func (s *VectorStore) Search(ctx context.Context, vector []float32, topK int, kind string) ([]CorpusHit, error) {
	if len(vector) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "query vector is empty")
	}
	if topK <= 0 {
		topK = s.config.DefaultTopK
	}
	if topK > s.config.MaxTopK {
		topK = s.config.MaxTopK
	}

	expr := ""
	if kind != "" {
		expr = `kind == "` + kind + `"`
	}

	sp, err := entity.NewIndexHNSWSearchParam(s.config.SearchEf)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build search params")
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.config.SearchTimeout)
	defer cancel()

	results, err := s.client.GetMilvusClient().Search(searchCtx, CorpusCollection, nil, expr,
		[]string{"kind", "intent", "text"},
		[]entity.Vector{entity.FloatVector(vector)},
		"embedding", entity.COSINE, topK, sp)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "vector search failed")
	}

	var hits []CorpusHit
	for _, result := range results {
		idCol, ok := result.IDs.(*entity.ColumnVarChar)
		if !ok {
			return nil, errors.New(errors.ErrCodeInternal, "unexpected id column type")
		}
		kinds := varCharData(result.Fields.GetColumn("kind"))
		intents := varCharData(result.Fields.GetColumn("intent"))
		texts := varCharData(result.Fields.GetColumn("text"))

		for i, id := range idCol.Data() {
			hit := CorpusHit{ID: id, Score: result.Scores[i]}
			if i < len(kinds) {
				hit.Kind = kinds[i]
			}
			if i < len(intents) {
				hit.Intent = intents[i]
			}
			if i < len(texts) {
				hit.Text = texts[i]
			}
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

// DeleteByIDs removes corpus entries.
func (s *VectorStore) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = `"` + id + `"`
	}
	expr := "id in [" + strings.Join(quoted, ",") + "]"

	if err := s.client.GetMilvusClient().Delete(ctx, CorpusCollection, "", expr); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to delete corpus entries")
	}

	s.logger.Info("Corpus entries deleted", logging.Int("count", len(ids)))
	return nil
}

func varCharData(col entity.Column) []string {
	if vc, ok := col.(*entity.ColumnVarChar); ok {
		return vc.Data()
	}
	return nil
}
