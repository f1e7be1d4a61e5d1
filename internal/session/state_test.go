package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizm/TenderScope/internal/analysis"
)

func TestScope_SettleOnce(t *testing.T) {
	s := NewScope()
	assert.False(t, s.Settle(0), "nothing started yet")

	gen := s.Begin()
	assert.True(t, s.Settle(gen))
	assert.False(t, s.Settle(gen), "second completion of the same call")
}

func TestScope_StaleGeneration(t *testing.T) {
	s := NewScope()
	first := s.Begin()
	second := s.Begin()

	assert.False(t, s.Settle(first))
	assert.True(t, s.Settle(second))
}

func TestScope_Closed(t *testing.T) {
	s := NewScope()
	gen := s.Begin()
	s.Close()

	assert.True(t, s.Closed())
	assert.False(t, s.Settle(gen))
}

func TestTriggerState_Success(t *testing.T) {
	ts := NewTriggerState()
	assert.Equal(t, analysis.Idle, ts.State)
	assert.True(t, ts.Enabled())
	assert.Equal(t, RunLabel, ts.Label())

	gen, ok := ts.Begin()
	require.True(t, ok)
	assert.Equal(t, analysis.Loading, ts.State)
	assert.False(t, ts.Enabled())
	assert.Equal(t, RunningLabel, ts.Label())

	_, ok = ts.Begin()
	assert.False(t, ok, "re-entrant activation is suppressed")

	assert.Equal(t, OutcomeNavigate, ts.Complete(gen, nil))
	assert.Equal(t, analysis.Success, ts.State)
}

func TestTriggerState_FailureNotifiesOnce(t *testing.T) {
	ts := NewTriggerState()
	gen, ok := ts.Begin()
	require.True(t, ok)

	err := errors.New("connection refused")
	assert.Equal(t, OutcomeNotify, ts.Complete(gen, err))
	assert.Equal(t, OutcomeIgnored, ts.Complete(gen, err))

	assert.Equal(t, analysis.Failed, ts.State)
	assert.True(t, ts.Enabled(), "trigger is re-enabled after failure")
	assert.Equal(t, RunLabel, ts.Label())
}

func TestTriggerState_LateCompletionAfterClose(t *testing.T) {
	ts := NewTriggerState()
	gen, ok := ts.Begin()
	require.True(t, ok)

	ts.Close()
	assert.Equal(t, OutcomeIgnored, ts.Complete(gen, nil))
	assert.Equal(t, analysis.Loading, ts.State)
}

func TestResultState(t *testing.T) {
	rs := NewResultState()
	assert.Equal(t, analysis.Loading, rs.State)

	gen := rs.Begin()
	ok := rs.Complete(gen, analysis.Normalize(technicalPayload()))
	require.True(t, ok)
	assert.Equal(t, analysis.Success, rs.State)
	assert.Equal(t, 1, rs.Result.TechnicalCount)

	gen = rs.Begin()
	assert.Nil(t, rs.Result)
	require.True(t, rs.Complete(gen, analysis.FailedResult()))
	assert.Equal(t, analysis.Failed, rs.State)
	assert.Equal(t, analysis.StatusError, rs.Result.Status)
}

func TestResultState_StaleRefresh(t *testing.T) {
	rs := NewResultState()
	first := rs.Begin()
	second := rs.Begin()

	assert.False(t, rs.Complete(first, analysis.FailedResult()))
	assert.Equal(t, analysis.Loading, rs.State)

	assert.True(t, rs.Complete(second, analysis.Normalize(nil)))
	assert.Equal(t, analysis.DefaultStatus, rs.Result.Status)
}

func TestResultState_NilResultIsFailure(t *testing.T) {
	rs := NewResultState()
	gen := rs.Begin()
	require.True(t, rs.Complete(gen, nil))
	assert.True(t, rs.Result.Failed())
}

func TestResultState_Close(t *testing.T) {
	rs := NewResultState()
	gen := rs.Begin()
	rs.Close()

	assert.False(t, rs.Complete(gen, analysis.FailedResult()))
	assert.Nil(t, rs.Result)
}
