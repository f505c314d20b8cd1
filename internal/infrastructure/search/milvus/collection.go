package milvus

import (
	"context"
	"strconv"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

var (
	ErrCollectionAlreadyExists = errors.New(errors.ErrCodeConflict, "collection already exists")
	ErrCollectionNotFound      = errors.New(errors.ErrCodeNotFound, "collection not found")
)

// CorpusCollection is the single collection this deployment uses: embedded
// FAQ entries and help-document chunks.
const CorpusCollection = "corpus_entries"

// CollectionConfig holds creation and load parameters.
type CollectionConfig struct {
	ShardsNum        int32
	ConsistencyLevel entity.ConsistencyLevel
	HNSWM            int
	HNSWEfConstruct  int
	LoadTimeout      time.Duration
}

// CollectionManager creates, indexes and loads collections.
type CollectionManager struct {
	client *Client
	config CollectionConfig
	logger logging.Logger
}

func NewCollectionManager(client *Client, cfg CollectionConfig, logger logging.Logger) *CollectionManager {
	if cfg.ShardsNum == 0 {
		cfg.ShardsNum = 1
	}
	if cfg.ConsistencyLevel == 0 {
		cfg.ConsistencyLevel = entity.ClBounded
	}
	if cfg.HNSWM == 0 {
		cfg.HNSWM = 16
	}
	if cfg.HNSWEfConstruct == 0 {
		cfg.HNSWEfConstruct = 200
	}
	if cfg.LoadTimeout == 0 {
		cfg.LoadTimeout = 120 * time.Second
	}

	return &CollectionManager{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// CorpusSchema describes the corpus collection. dim must match the
// embedding model's output dimension.
func CorpusSchema(dim int) *entity.Schema {
	return &entity.Schema{
		CollectionName: CorpusCollection,
		Description:    "Embedded FAQ entries and help-document chunks",
		Fields: []*entity.Field{
			{Name: "id", DataType: entity.FieldTypeVarChar, PrimaryKey: true,
				TypeParams: map[string]string{"max_length": "64"}},
			{Name: "kind", DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "16"}},
			{Name: "intent", DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "64"}},
			{Name: "text", DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "2048"}},
			{Name: "embedding", DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": strconv.Itoa(dim)}},
		},
	}
}

// EnsureCorpusCollection creates the corpus collection, its HNSW index and
// loads it. Safe to call on every start.
func (m *CollectionManager) EnsureCorpusCollection(ctx context.Context, dim int) error {
	exists, err := m.HasCollection(ctx, CorpusCollection)
	if err != nil {
		return err
	}

	if !exists {
		if err := m.CreateCollection(ctx, CorpusSchema(dim)); err != nil {
			return err
		}
		idx, err := entity.NewIndexHNSW(entity.COSINE, m.config.HNSWM, m.config.HNSWEfConstruct)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to build index definition")
		}
		if err := m.client.GetMilvusClient().CreateIndex(ctx, CorpusCollection, "embedding", idx, false); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to create index")
		}
	}

	return m.LoadCollection(ctx, CorpusCollection)
}

// CreateCollection creates a collection from the given schema.
func (m *CollectionManager) CreateCollection(ctx context.Context, schema *entity.Schema) error {
	has, err := m.HasCollection(ctx, schema.CollectionName)
	if err != nil {
		return err
	}
	if has {
		return ErrCollectionAlreadyExists
	}

	if err := m.client.GetMilvusClient().CreateCollection(ctx, schema, m.config.ShardsNum); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create collection")
	}

	m.logger.Info("Collection created", logging.String("name", schema.CollectionName))
	return nil
}

// DropCollection removes a collection and its data.
func (m *CollectionManager) DropCollection(ctx context.Context, name string) error {
	has, err := m.HasCollection(ctx, name)
	if err != nil {
		return err
	}
	if !has {
		return ErrCollectionNotFound
	}

	if err := m.client.GetMilvusClient().DropCollection(ctx, name); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to drop collection")
	}

	m.logger.Warn("Collection dropped", logging.String("name", name))
	return nil
}

// HasCollection reports whether the collection exists.
func (m *CollectionManager) HasCollection(ctx context.Context, name string) (bool, error) {
	has, err := m.client.GetMilvusClient().HasCollection(ctx, name)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeInternal, "failed to check collection existence")
	}
	return has, nil
}

// LoadCollection loads a collection into query nodes, waiting for the load
// to finish.
func (m *CollectionManager) LoadCollection(ctx context.Context, name string) error {
	loadCtx, cancel := context.WithTimeout(ctx, m.config.LoadTimeout)
	defer cancel()

	if err := m.client.GetMilvusClient().LoadCollection(loadCtx, name, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to load collection")
	}
	m.logger.Info("Collection loaded", logging.String("name", name))
	return nil
}

// ReleaseCollection evicts a collection from query nodes.
func (m *CollectionManager) ReleaseCollection(ctx context.Context, name string) error {
	if err := m.client.GetMilvusClient().ReleaseCollection(ctx, name); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to release collection")
	}
	m.logger.Info("Collection released", logging.String("name", name))
	return nil
}
