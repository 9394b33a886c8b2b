// Package manifest records what each generation run produced: one record per
// run with per-sample outcomes, failure kinds and artifact keys. It is run
// bookkeeping, not a dataset query layer; the dataset itself stays in flat
// artifact files.
package manifest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"gridgen/pkg/grid"
)

// SampleRecord captures the outcome of one sample's unit of work.
type SampleRecord struct {
	SampleID     int              `json:"sample_id"`
	Converged    bool             `json:"converged"`
	Failure      grid.FailureKind `json:"failure"`
	Diag         string           `json:"diag,omitempty"`
	ArtifactKeys []string         `json:"artifact_keys,omitempty"`
}

// RunRecord describes a whole generation run.
type RunRecord struct {
	ID         string         `json:"id"`
	CaseName   string         `json:"case_name"`
	Seed       int64          `json:"seed"`
	Samples    int            `json:"samples"`
	Workers    int            `json:"workers"`
	TimeHour   *int           `json:"time_hour,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Written    int            `json:"written"`
	Results    []SampleRecord `json:"results"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// Store persists run records. SaveRun is an upsert keyed by run id, so
// re-saving after the persistence phase overwrites the in-flight snapshot.
type Store interface {
	SaveRun(ctx context.Context, rec RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]RunRecord, error)
	Close() error
}

// Open selects a manifest store by driver name: sqlite (default), postgres,
// or memory. dsn is the sqlite file path or postgres connection string.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "", "sqlite":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(dsn)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown manifest driver %s", driver)
	}
}

// Memory implements Store in process memory for tests.
type Memory struct {
	mu   sync.RWMutex
	runs map[string]RunRecord
}

// NewMemory returns an in-memory manifest store.
func NewMemory() *Memory { return &Memory{runs: make(map[string]RunRecord)} }

func (m *Memory) SaveRun(_ context.Context, rec RunRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("run id required")
	}
	m.mu.Lock()
	m.runs[rec.ID] = cloneRun(rec)
	m.mu.Unlock()
	return nil
}

func (m *Memory) GetRun(_ context.Context, id string) (RunRecord, bool, error) {
	m.mu.RLock()
	rec, ok := m.runs[id]
	m.mu.RUnlock()
	if !ok {
		return RunRecord{}, false, nil
	}
	return cloneRun(rec), true, nil
}

func (m *Memory) ListRuns(_ context.Context) ([]RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RunRecord, 0, len(m.runs))
	for _, rec := range m.runs {
		out = append(out, cloneRun(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

func (m *Memory) Close() error { return nil }

func cloneRun(rec RunRecord) RunRecord {
	dup := rec
	dup.Results = append([]SampleRecord(nil), rec.Results...)
	if rec.TimeHour != nil {
		h := *rec.TimeHour
		dup.TimeHour = &h
	}
	return dup
}
