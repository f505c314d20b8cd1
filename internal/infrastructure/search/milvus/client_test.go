package milvus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
)

// mockMilvusClient overrides the handful of SDK methods the adapter calls.
type mockMilvusClient struct {
	client.Client

	checkHealthFunc func(ctx context.Context) (*entity.MilvusState, error)
	closeFunc       func() error
}

func (m *mockMilvusClient) CheckHealth(ctx context.Context) (*entity.MilvusState, error) {
	if m.checkHealthFunc != nil {
		return m.checkHealthFunc(ctx)
	}
	return &entity.MilvusState{}, nil
}

func (m *mockMilvusClient) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func withMockFactory(t *testing.T, factory MilvusClientFactory) {
	t.Helper()
	original := milvusNewClient
	milvusNewClient = factory
	t.Cleanup(func() { milvusNewClient = original })
}

func newTestMilvusConfig() ClientConfig {
	return ClientConfig{
		Address:             "localhost:19530",
		ConnectTimeout:      time.Second,
		HealthCheckInterval: 100 * time.Millisecond,
	}
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, ValidateConfig(newTestMilvusConfig()))

	cfg := newTestMilvusConfig()
	cfg.Address = ""
	assert.Error(t, ValidateConfig(cfg))

	cfg = newTestMilvusConfig()
	cfg.TLSEnabled = true
	assert.Error(t, ValidateConfig(cfg))
}

func TestNewClientSuccess(t *testing.T) {
	withMockFactory(t, func(ctx context.Context, conf client.Config) (client.Client, error) {
		return &mockMilvusClient{}, nil
	})

	c, err := NewClient(newTestMilvusConfig(), logging.NewNopLogger())
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.IsHealthy())
	c.Close()
}

func TestNewClientDialFailure(t *testing.T) {
	withMockFactory(t, func(ctx context.Context, conf client.Config) (client.Client, error) {
		return nil, errors.New("dial failed")
	})

	c, err := NewClient(newTestMilvusConfig(), logging.NewNopLogger())
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestNewClientUnhealthyServer(t *testing.T) {
	withMockFactory(t, func(ctx context.Context, conf client.Config) (client.Client, error) {
		return &mockMilvusClient{
			checkHealthFunc: func(ctx context.Context) (*entity.MilvusState, error) {
				return nil, errors.New("not ready")
			},
		}, nil
	})

	_, err := NewClient(newTestMilvusConfig(), logging.NewNopLogger())
	require.ErrorIs(t, err, ErrConnectionFailed)
}

func TestCheckHealthTransitions(t *testing.T) {
	healthy := true
	mock := &mockMilvusClient{
		checkHealthFunc: func(ctx context.Context) (*entity.MilvusState, error) {
			if healthy {
				return &entity.MilvusState{}, nil
			}
			return nil, errors.New("down")
		},
	}
	c := &Client{milvusClient: mock, logger: logging.NewNopLogger()}

	require.NoError(t, c.CheckHealth(context.Background()))
	assert.True(t, c.IsHealthy())

	healthy = false
	require.ErrorIs(t, c.CheckHealth(context.Background()), ErrUnhealthy)
	assert.False(t, c.IsHealthy())
}

func TestCloseIsSafeTwice(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		milvusClient: &mockMilvusClient{},
		logger:       logging.NewNopLogger(),
		cancel:       cancel,
	}

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Error(t, ctx.Err())
}
