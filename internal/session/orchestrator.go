// Package session coordinates the analysis call between the trigger and the
// results view: one in-flight fetch at a time, handoff of successful results,
// and failure-to-data conversion for the presenter.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/yildizm/TenderScope/internal/analysis"
	"github.com/yildizm/TenderScope/internal/handoff"
	"github.com/yildizm/TenderScope/internal/logger"
)

// ErrBusy is returned by Trigger while a previous trigger is still running
var ErrBusy = errors.New("analysis already running")

// Source selects where the results view takes its data from
type Source string

const (
	// SourceRefetch always issues a fresh call
	SourceRefetch Source = "refetch"

	// SourceHandoff consumes the result left by the trigger
	SourceHandoff Source = "handoff"

	// SourceAuto consumes the handoff when present, otherwise re-fetches
	SourceAuto Source = "auto"
)

// ParseSource maps a config or flag value onto a Source
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case "", SourceRefetch:
		return SourceRefetch, nil
	case SourceHandoff:
		return SourceHandoff, nil
	case SourceAuto:
		return SourceAuto, nil
	default:
		return "", fmt.Errorf("unknown results source: %s (must be one of: refetch, handoff, auto)", s)
	}
}

const flightKey = "analyze/run"

// Orchestrator runs the analysis call on behalf of both views
type Orchestrator struct {
	runner  analysis.Runner
	store   handoff.Store
	log     *logger.Logger
	group   singleflight.Group
	running atomic.Bool
}

// NewOrchestrator wires a runner to an optional handoff store
func NewOrchestrator(runner analysis.Runner, store handoff.Store, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		runner: runner,
		store:  store,
		log:    log.WithComponent("session"),
	}
}

// Trigger starts an analysis. On success the normalized result is written to
// the handoff slot before it is returned; on failure nothing is written.
func (o *Orchestrator) Trigger(ctx context.Context) (*analysis.Result, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer o.running.Store(false)

	result, requestID, err := o.fetch(ctx)
	if err != nil {
		o.log.ErrorWithFields("analysis trigger failed", []logger.Field{
			logger.F("request_id", requestID),
			logger.Error(err),
		})
		return nil, err
	}

	if o.store != nil {
		if err := handoff.Write(ctx, o.store, requestID, result); err != nil {
			o.log.ErrorWithFields("failed to hand off result", []logger.Field{
				logger.F("request_id", requestID),
				logger.Error(err),
			})
			return nil, err
		}
	}

	o.log.InfoWithFields("analysis triggered", []logger.Field{
		logger.F("request_id", requestID),
		logger.F("status", result.Status),
		logger.F("technical", result.TechnicalCount),
		logger.F("pricing", result.PricingCount),
	})
	return result, nil
}

// Busy reports whether a trigger is in flight
func (o *Orchestrator) Busy() bool {
	return o.running.Load()
}

// Load produces the result for the results view. It never fails: any error
// becomes analysis.FailedResult so the view always has something to render.
func (o *Orchestrator) Load(ctx context.Context, source Source) *analysis.Result {
	switch source {
	case SourceHandoff:
		result, err := o.consume(ctx)
		if err != nil {
			o.log.WarnWithFields("no handed-off result", []logger.Field{logger.Error(err)})
			return analysis.FailedResult()
		}
		return result

	case SourceAuto:
		result, err := o.consume(ctx)
		if err == nil {
			return result
		}
		if !errors.Is(err, handoff.ErrNotFound) {
			o.log.WarnWithFields("discarding unreadable handoff", []logger.Field{logger.Error(err)})
		}
	}

	result, requestID, err := o.fetch(ctx)
	if err != nil {
		o.log.ErrorWithFields("failed to load results", []logger.Field{
			logger.F("request_id", requestID),
			logger.Error(err),
		})
		return analysis.FailedResult()
	}
	return result
}

// Ping checks that the backend is reachable when the runner supports it
func (o *Orchestrator) Ping(ctx context.Context) error {
	checker, ok := o.runner.(interface {
		HealthCheck(ctx context.Context) error
	})
	if !ok {
		return analysis.NewFetchError(analysis.ErrTypeConfiguration, "runner does not support health checks", "")
	}
	return checker.HealthCheck(ctx)
}

func (o *Orchestrator) consume(ctx context.Context) (*analysis.Result, error) {
	if o.store == nil {
		return nil, handoff.ErrNotFound
	}
	env, err := handoff.Consume(ctx, o.store)
	if err != nil {
		return nil, err
	}
	o.log.DebugWithFields("consumed handoff", []logger.Field{
		logger.F("request_id", env.RequestID),
		logger.F("stored_at", env.StoredAt),
	})
	return env.Result, nil
}

type flight struct {
	payload   *analysis.Payload
	requestID string
}

// fetch joins concurrent callers onto one backend call. Every caller gets
// its own normalized result.
func (o *Orchestrator) fetch(ctx context.Context) (*analysis.Result, string, error) {
	requestID := analysis.RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = analysis.WithRequestID(ctx, requestID)
	}

	// The flight outlives any single caller; the client timeout bounds it.
	flightCtx := context.WithoutCancel(ctx)

	start := time.Now()
	ch := o.group.DoChan(flightKey, func() (interface{}, error) {
		payload, err := o.runner.Run(flightCtx)
		if err != nil {
			return nil, err
		}
		return flight{payload: payload, requestID: requestID}, nil
	})

	select {
	case <-ctx.Done():
		return nil, requestID, analysis.NewFetchErrorWithCause(analysis.ErrTypeCanceled, "analysis call abandoned", "", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, requestID, res.Err
		}
		f := res.Val.(flight)
		o.log.DebugWithFields("analysis call finished", []logger.Field{
			logger.F("request_id", f.requestID),
			logger.F("shared", res.Shared),
			logger.Duration(time.Since(start)),
		})
		return analysis.Normalize(f.payload), f.requestID, nil
	}
}
