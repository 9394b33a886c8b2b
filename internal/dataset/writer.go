// Package dataset persists extracted simulation tables as flat, self-naming
// artifact files: dense .npy arrays for bus/line tables and a named-array
// .npz archive for the solar assignment.
package dataset

import (
	"bytes"
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"gridgen/internal/blob"
	"gridgen/internal/npyenc"
	"gridgen/pkg/grid"
)

// Writer persists converged simulation results. Keys are deterministic
// functions of (case name, sample id, optional hour), so re-running a sample
// overwrites its prior artifacts; there are no append semantics.
type Writer struct {
	store blob.Store
}

// NewWriter returns a writer backed by the given artifact store.
func NewWriter(store blob.Store) *Writer { return &Writer{store: store} }

// Stem returns the shared artifact key stem for a sample:
// case{CASE}_sample{ID}, with _T_{HH} appended on time-indexed runs.
func Stem(caseName string, sampleID int, timeHour *int) string {
	if timeHour != nil {
		return fmt.Sprintf("case%s_sample%d_T_%02d", caseName, sampleID, *timeHour)
	}
	return fmt.Sprintf("case%s_sample%d", caseName, sampleID)
}

func tableKey(caseName string, sampleID int, table string, timeHour *int) string {
	if timeHour != nil {
		return fmt.Sprintf("case%s_sample%d_%s_T_%02d.npy", caseName, sampleID, table, *timeHour)
	}
	return fmt.Sprintf("case%s_sample%d_%s.npy", caseName, sampleID, table)
}

func solarKey(caseName string, sampleID int, timeHour int) string {
	return fmt.Sprintf("case%s_sample%d_solar_T_%02d.npz", caseName, sampleID, timeHour)
}

// Write persists one result. Results with Converged == false produce no files
// and report written == false; that is the expected outcome for failed
// samples, not an error. For converged results it writes the bus and line
// tables and, when the scenario carried solar augmentation, the solar
// archive. Returns the artifact keys written.
func (w *Writer) Write(ctx context.Context, caseName string, res grid.SimulationResult) (written bool, keys []string, err error) {
	if !res.Converged {
		return false, nil, nil
	}
	if res.BusTable == nil || res.LineTable == nil {
		return false, nil, fmt.Errorf("sample %d: converged result missing tables", res.SampleID)
	}

	busKey := tableKey(caseName, res.SampleID, "bus", res.TimeHour)
	if err := w.putNPY(ctx, busKey, res.BusTable); err != nil {
		return false, nil, err
	}
	keys = append(keys, busKey)

	lineKey := tableKey(caseName, res.SampleID, "line", res.TimeHour)
	if err := w.putNPY(ctx, lineKey, res.LineTable); err != nil {
		return false, keys, err
	}
	keys = append(keys, lineKey)

	if res.Solar != nil && res.TimeHour != nil {
		payload, err := npyenc.NPZ([]npyenc.Entry{
			{Name: "bus", Data: res.Solar.Bus},
			{Name: "p_mw", Data: res.Solar.P},
			{Name: "q_mvar", Data: res.Solar.Q},
		})
		if err != nil {
			return false, keys, fmt.Errorf("sample %d: %w", res.SampleID, err)
		}
		key := solarKey(caseName, res.SampleID, *res.TimeHour)
		if _, err := w.store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{ContentType: "application/zip"}); err != nil {
			return false, keys, fmt.Errorf("store %s: %w", key, err)
		}
		keys = append(keys, key)
	}
	return true, keys, nil
}

func (w *Writer) putNPY(ctx context.Context, key string, table *mat.Dense) error {
	payload, err := npyenc.Matrix(table)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if _, err := w.store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{ContentType: "application/octet-stream"}); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}
