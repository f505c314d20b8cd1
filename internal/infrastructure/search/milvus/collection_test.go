package milvus

import (
	"context"
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
)

// mockCollectionClient records collection lifecycle calls.
type mockCollectionClient struct {
	client.Client

	collections map[string]bool
	indexed     []string
	loaded      []string
	released    []string
	dropped     []string
}

func newMockCollectionClient(existing ...string) *mockCollectionClient {
	m := &mockCollectionClient{collections: map[string]bool{}}
	for _, name := range existing {
		m.collections[name] = true
	}
	return m
}

func (m *mockCollectionClient) HasCollection(ctx context.Context, collName string) (bool, error) {
	return m.collections[collName], nil
}

func (m *mockCollectionClient) CreateCollection(ctx context.Context, collSchema *entity.Schema, shardsNum int32, opts ...client.CreateCollectionOption) error {
	m.collections[collSchema.CollectionName] = true
	return nil
}

func (m *mockCollectionClient) CreateIndex(ctx context.Context, collName string, fieldName string, idx entity.Index, async bool, opts ...client.IndexOption) error {
	m.indexed = append(m.indexed, collName+"/"+fieldName)
	return nil
}

func (m *mockCollectionClient) LoadCollection(ctx context.Context, collName string, async bool, opts ...client.LoadCollectionOption) error {
	m.loaded = append(m.loaded, collName)
	return nil
}

func (m *mockCollectionClient) ReleaseCollection(ctx context.Context, collName string, opts ...client.ReleaseCollectionOption) error {
	m.released = append(m.released, collName)
	return nil
}

func (m *mockCollectionClient) DropCollection(ctx context.Context, collName string, opts ...client.DropCollectionOption) error {
	delete(m.collections, collName)
	m.dropped = append(m.dropped, collName)
	return nil
}

func newTestManager(mock client.Client) *CollectionManager {
	c := &Client{milvusClient: mock, logger: logging.NewNopLogger()}
	return NewCollectionManager(c, CollectionConfig{}, logging.NewNopLogger())
}

func TestCorpusSchema(t *testing.T) {
	schema := CorpusSchema(1536)

	assert.Equal(t, CorpusCollection, schema.CollectionName)
	require.Len(t, schema.Fields, 5)
	assert.True(t, schema.Fields[0].PrimaryKey)
	assert.Equal(t, entity.FieldTypeVarChar, schema.Fields[0].DataType)

	vector := schema.Fields[4]
	assert.Equal(t, "embedding", vector.Name)
	assert.Equal(t, entity.FieldTypeFloatVector, vector.DataType)
	assert.Equal(t, "1536", vector.TypeParams["dim"])
}

func TestEnsureCorpusCollectionCreatesAndLoads(t *testing.T) {
	mock := newMockCollectionClient()
	mgr := newTestManager(mock)

	require.NoError(t, mgr.EnsureCorpusCollection(context.Background(), 1536))

	assert.True(t, mock.collections[CorpusCollection])
	assert.Equal(t, []string{CorpusCollection + "/embedding"}, mock.indexed)
	assert.Equal(t, []string{CorpusCollection}, mock.loaded)
}

func TestEnsureCorpusCollectionIdempotent(t *testing.T) {
	mock := newMockCollectionClient(CorpusCollection)
	mgr := newTestManager(mock)

	require.NoError(t, mgr.EnsureCorpusCollection(context.Background(), 1536))

	// An existing collection is only loaded, not re-created or re-indexed.
	assert.Empty(t, mock.indexed)
	assert.Equal(t, []string{CorpusCollection}, mock.loaded)
}

func TestCreateCollectionAlreadyExists(t *testing.T) {
	mock := newMockCollectionClient(CorpusCollection)
	mgr := newTestManager(mock)

	err := mgr.CreateCollection(context.Background(), CorpusSchema(8))
	require.ErrorIs(t, err, ErrCollectionAlreadyExists)
}

func TestDropCollectionNotFound(t *testing.T) {
	mock := newMockCollectionClient()
	mgr := newTestManager(mock)

	err := mgr.DropCollection(context.Background(), "missing")
	require.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestDropCollection(t *testing.T) {
	mock := newMockCollectionClient(CorpusCollection)
	mgr := newTestManager(mock)

	require.NoError(t, mgr.DropCollection(context.Background(), CorpusCollection))
	assert.False(t, mock.collections[CorpusCollection])
}

func TestReleaseCollection(t *testing.T) {
	mock := newMockCollectionClient(CorpusCollection)
	mgr := newTestManager(mock)

	require.NoError(t, mgr.ReleaseCollection(context.Background(), CorpusCollection))
	assert.Equal(t, []string{CorpusCollection}, mock.released)
}
