package neo4j

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
)

type fakeResult struct {
	records []*neo4j.Record
	idx     int
	err     error
}

func (r *fakeResult) Next(ctx context.Context) bool {
	if r.idx < len(r.records) {
		r.idx++
		return true
	}
	return false
}
func (r *fakeResult) Record() *neo4j.Record { return r.records[r.idx-1] }
func (r *fakeResult) Err() error            { return r.err }
func (r *fakeResult) Consume(ctx context.Context) (neo4j.ResultSummary, error) {
	return nil, nil
}

type fakeTransaction struct {
	result *fakeResult
	err    error

	cyphers []string
	params  []map[string]any
}

func (t *fakeTransaction) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	t.cyphers = append(t.cyphers, cypher)
	t.params = append(t.params, params)
	if t.err != nil {
		return nil, t.err
	}
	if t.result == nil {
		return &fakeResult{}, nil
	}
	return t.result, nil
}

type fakeSession struct {
	tx        *fakeTransaction
	execErr   error
	closed    bool
	readMode  bool
	writeMode bool
}

func (s *fakeSession) ExecuteRead(ctx context.Context, work TransactionWork) (any, error) {
	s.readMode = true
	if s.execErr != nil {
		return nil, s.execErr
	}
	return work(s.tx)
}

func (s *fakeSession) ExecuteWrite(ctx context.Context, work TransactionWork) (any, error) {
	s.writeMode = true
	if s.execErr != nil {
		return nil, s.execErr
	}
	return work(s.tx)
}

func (s *fakeSession) Close(ctx context.Context) error {
	s.closed = true
	return nil
}

type fakeDriver struct {
	session   *fakeSession
	verifyErr error
	closed    bool
}

func (d *fakeDriver) VerifyConnectivity(ctx context.Context) error { return d.verifyErr }
func (d *fakeDriver) NewSession(ctx context.Context, config neo4j.SessionConfig) internalSession {
	return d.session
}
func (d *fakeDriver) Close(ctx context.Context) error {
	d.closed = true
	return nil
}

func newFakeDriver(tx *fakeTransaction) (*Driver, *fakeDriver) {
	fd := &fakeDriver{session: &fakeSession{tx: tx}}
	return &Driver{driver: fd, logger: logging.NewNopLogger()}, fd
}

func healthRecord() *neo4j.Record {
	return &neo4j.Record{Keys: []string{"health"}, Values: []any{int64(1)}}
}

func TestExecuteReadRunsWorkAndClosesSession(t *testing.T) {
	tx := &fakeTransaction{}
	d, fd := newFakeDriver(tx)

	result, err := d.ExecuteRead(context.Background(), func(t Transaction) (any, error) {
		return t.Run(context.Background(), "RETURN 1", nil)
	})
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.True(t, fd.session.readMode)
	assert.True(t, fd.session.closed)
	assert.Equal(t, []string{"RETURN 1"}, tx.cyphers)
}

func TestExecuteWriteWrapsErrors(t *testing.T) {
	d, fd := newFakeDriver(&fakeTransaction{})
	fd.session.execErr = errors.New("deadlock")

	_, err := d.ExecuteWrite(context.Background(), func(t Transaction) (any, error) {
		return nil, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neo4j write failed")
	assert.True(t, fd.session.writeMode)
	assert.True(t, fd.session.closed)
}

func TestHealthCheck(t *testing.T) {
	tx := &fakeTransaction{result: &fakeResult{records: []*neo4j.Record{healthRecord()}}}
	d, _ := newFakeDriver(tx)

	require.NoError(t, d.HealthCheck(context.Background()))
	require.Len(t, tx.cyphers, 1)
	assert.Contains(t, tx.cyphers[0], "RETURN 1 AS health")
}

func TestHealthCheckConnectivityFailure(t *testing.T) {
	d, fd := newFakeDriver(&fakeTransaction{})
	fd.verifyErr = errors.New("refused")

	err := d.HealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connectivity check failed")
}

func TestCloseOnce(t *testing.T) {
	d, fd := newFakeDriver(&fakeTransaction{})

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	assert.True(t, fd.closed)
}

func TestCollectRecords(t *testing.T) {
	result := &fakeResult{records: []*neo4j.Record{
		{Keys: []string{"n"}, Values: []any{int64(1)}},
		{Keys: []string{"n"}, Values: []any{int64(2)}},
	}}

	values, err := CollectRecords(context.Background(), result, func(r *neo4j.Record) (int64, error) {
		return r.Values[0].(int64), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, values)
}
