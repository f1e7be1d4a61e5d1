// Package handoff carries an analysis result from the trigger to the results
// view through a single named slot. The slot is overwritten by every
// successful trigger and consumed at most once by a reader.
package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/TenderScope/internal/analysis"
)

// SlotAnalysisResults is the slot the trigger writes into
const SlotAnalysisResults = "analysisResults"

// Driver names accepted by Open
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// ErrNotFound is returned when a slot holds no value
var ErrNotFound = errors.New("handoff slot is empty")

// Store is a key-value side channel. Implementations make Take atomic with
// respect to their own Put so a value is handed to at most one reader.
type Store interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Take(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Envelope is the stored form of a handed-off result
type Envelope struct {
	RequestID string           `json:"request_id"`
	StoredAt  time.Time        `json:"stored_at"`
	Result    *analysis.Result `json:"result"`
}

// Write serializes result into the analysis slot, replacing any previous value
func Write(ctx context.Context, store Store, requestID string, result *analysis.Result) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}

	data, err := json.Marshal(Envelope{
		RequestID: requestID,
		StoredAt:  time.Now().UTC(),
		Result:    result,
	})
	if err != nil {
		return fmt.Errorf("failed to encode handoff envelope: %w", err)
	}

	if err := store.Put(ctx, SlotAnalysisResults, data); err != nil {
		return fmt.Errorf("failed to write handoff slot: %w", err)
	}
	return nil
}

// Peek reads the analysis slot without consuming it
func Peek(ctx context.Context, store Store) (*Envelope, error) {
	data, err := store.Get(ctx, SlotAnalysisResults)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(data)
}

// Consume reads the analysis slot and clears it
func Consume(ctx context.Context, store Store) (*Envelope, error) {
	data, err := store.Take(ctx, SlotAnalysisResults)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(data)
}

func decodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode handoff envelope: %w", err)
	}
	if env.Result == nil {
		return nil, fmt.Errorf("handoff envelope has no result")
	}
	return &env, nil
}

// Open creates the store selected by driver. dir holds the file and sqlite
// backends and is ignored by the memory backend.
func Open(driver, dir string) (Store, error) {
	switch driver {
	case DriverFile, "":
		return NewFileStore(dir)
	case DriverSQLite:
		return OpenSQLiteStore(sqlitePath(dir))
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown handoff driver: %s (must be one of: file, sqlite, memory)", driver)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("slot key cannot be empty")
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("invalid slot key: %q", key)
	}
	return nil
}
