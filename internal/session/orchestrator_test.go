package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yildizm/TenderScope/internal/analysis"
	"github.com/yildizm/TenderScope/internal/handoff"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRunner struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	payload *analysis.Payload
	err     error
}

func (f *fakeRunner) Run(ctx context.Context) (*analysis.Payload, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.payload, f.err
}

func strPtr(s string) *string { return &s }

func technicalPayload() *analysis.Payload {
	return &analysis.Payload{
		Status: strPtr("completed"),
		Technical: []analysis.Record{
			analysis.NewRecord(
				analysis.Field{Key: "id", Value: "T1"},
				analysis.Field{Key: "risk", Value: "High"},
			),
		},
		Pricing: []analysis.Record{},
	}
}

func TestParseSource(t *testing.T) {
	for in, want := range map[string]Source{
		"":        SourceRefetch,
		"refetch": SourceRefetch,
		"handoff": SourceHandoff,
		"auto":    SourceAuto,
	} {
		got, err := ParseSource(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseSource("cache")
	assert.Error(t, err)
}

func TestTrigger_SuccessWritesHandoff(t *testing.T) {
	store := handoff.NewMemoryStore()
	o := NewOrchestrator(&fakeRunner{payload: technicalPayload()}, store, nil)

	ctx := analysis.WithRequestID(context.Background(), "req-42")
	result, err := o.Trigger(ctx)
	require.NoError(t, err)
	assert.Equal(t, "completed", result.Status)
	assert.Equal(t, 1, result.TechnicalCount)
	assert.Equal(t, 0, result.PricingCount)

	env, err := handoff.Consume(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, "req-42", env.RequestID)
	assert.Equal(t, "completed", env.Result.Status)
	assert.False(t, o.Busy())
}

func TestTrigger_FailureWritesNothing(t *testing.T) {
	store := handoff.NewMemoryStore()
	runErr := analysis.NewProtocolError("http://backend/analyze/run", 500, "")
	o := NewOrchestrator(&fakeRunner{err: runErr}, store, nil)

	result, err := o.Trigger(context.Background())
	assert.Nil(t, result)
	assert.True(t, analysis.IsProtocolError(err))

	_, err = store.Get(context.Background(), handoff.SlotAnalysisResults)
	assert.ErrorIs(t, err, handoff.ErrNotFound)
	assert.False(t, o.Busy())
}

func TestTrigger_ReentryIsBusy(t *testing.T) {
	runner := &fakeRunner{
		payload: technicalPayload(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	o := NewOrchestrator(runner, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := o.Trigger(context.Background())
		done <- err
	}()
	<-runner.started

	assert.True(t, o.Busy())
	_, err := o.Trigger(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(runner.release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestLoad_RefetchFailureBecomesErrorResult(t *testing.T) {
	runErr := analysis.NewFetchError(analysis.ErrTypeTransport, "connection refused", "http://backend")
	o := NewOrchestrator(&fakeRunner{err: runErr}, nil, nil)

	result := o.Load(context.Background(), SourceRefetch)
	require.NotNil(t, result)
	assert.Equal(t, analysis.StatusError, result.Status)
	assert.Equal(t, analysis.FailureMessage, result.Message)
	assert.Empty(t, result.TechnicalRecords)
	assert.Empty(t, result.PricingRecords)
	assert.Zero(t, result.TechnicalCount)
	assert.Zero(t, result.PricingCount)
}

func TestLoad_Handoff(t *testing.T) {
	ctx := context.Background()
	store := handoff.NewMemoryStore()
	runner := &fakeRunner{payload: technicalPayload()}
	o := NewOrchestrator(runner, store, nil)

	_, err := o.Trigger(ctx)
	require.NoError(t, err)

	result := o.Load(ctx, SourceHandoff)
	assert.Equal(t, "completed", result.Status)
	assert.Equal(t, 1, result.TechnicalCount)
	assert.Equal(t, int32(1), runner.calls.Load())

	// consumed at most once
	again := o.Load(ctx, SourceHandoff)
	assert.True(t, again.Failed())
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestLoad_AutoFallsBackToRefetch(t *testing.T) {
	ctx := context.Background()
	store := handoff.NewMemoryStore()
	runner := &fakeRunner{payload: technicalPayload()}
	o := NewOrchestrator(runner, store, nil)

	result := o.Load(ctx, SourceAuto)
	assert.Equal(t, "completed", result.Status)
	assert.Equal(t, int32(1), runner.calls.Load())

	_, err := o.Trigger(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), runner.calls.Load())

	result = o.Load(ctx, SourceAuto)
	assert.Equal(t, "completed", result.Status)
	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestLoad_HandoffWithoutStore(t *testing.T) {
	o := NewOrchestrator(&fakeRunner{payload: technicalPayload()}, nil, nil)
	assert.True(t, o.Load(context.Background(), SourceHandoff).Failed())
}

func TestLoad_ConcurrentCallsShareOneRequest(t *testing.T) {
	runner := &fakeRunner{
		payload: technicalPayload(),
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	o := NewOrchestrator(runner, nil, nil)

	var wg sync.WaitGroup
	results := make([]*analysis.Result, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = o.Load(context.Background(), SourceRefetch)
	}()
	<-runner.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1] = o.Load(context.Background(), SourceRefetch)
	}()
	time.Sleep(50 * time.Millisecond)

	close(runner.release)
	wg.Wait()

	assert.Equal(t, int32(1), runner.calls.Load())
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, 1, r.TechnicalCount)
	}
	assert.NotSame(t, results[0], results[1])
}

func TestLoad_CanceledContext(t *testing.T) {
	runner := &fakeRunner{
		payload: technicalPayload(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	o := NewOrchestrator(runner, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *analysis.Result, 1)
	go func() { done <- o.Load(ctx, SourceRefetch) }()

	<-runner.started
	cancel()

	result := <-done
	assert.True(t, result.Failed())
	close(runner.release)
}

func TestLoad_JoinerSurvivesStarterCancel(t *testing.T) {
	runner := &fakeRunner{
		payload: technicalPayload(),
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	o := NewOrchestrator(runner, nil, nil)

	starterCtx, cancel := context.WithCancel(context.Background())
	starter := make(chan *analysis.Result, 1)
	go func() { starter <- o.Load(starterCtx, SourceRefetch) }()
	<-runner.started

	joiner := make(chan *analysis.Result, 1)
	go func() { joiner <- o.Load(context.Background(), SourceRefetch) }()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.True(t, (<-starter).Failed())

	close(runner.release)
	result := <-joiner
	require.NotNil(t, result)
	assert.False(t, result.Failed())
	assert.Equal(t, 1, result.TechnicalCount)
	assert.Equal(t, int32(1), runner.calls.Load())
}

type pingRunner struct {
	fakeRunner
	err error
}

func (p *pingRunner) HealthCheck(context.Context) error { return p.err }

func TestPing(t *testing.T) {
	o := NewOrchestrator(&pingRunner{}, nil, nil)
	assert.NoError(t, o.Ping(context.Background()))

	down := errors.New("down")
	o = NewOrchestrator(&pingRunner{err: down}, nil, nil)
	assert.ErrorIs(t, o.Ping(context.Background()), down)

	o = NewOrchestrator(&fakeRunner{}, nil, nil)
	assert.True(t, analysis.IsConfigurationError(o.Ping(context.Background())))
}
