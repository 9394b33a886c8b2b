// Package npyenc encodes numeric tables into NumPy container formats: dense
// .npy arrays and .npz archives (a zip of named .npy members, matching what
// numpy's savez produces).
package npyenc

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// Matrix encodes a dense 2-D float64 matrix as .npy bytes.
func Matrix(m mat.Matrix) ([]byte, error) {
	var buf bytes.Buffer
	if err := npyio.Write(&buf, m); err != nil {
		return nil, fmt.Errorf("encode npy matrix: %w", err)
	}
	return buf.Bytes(), nil
}

// Entry is one named array of an .npz archive. Data may be any value npyio
// accepts: a mat.Matrix or a numeric slice.
type Entry struct {
	Name string
	Data any
}

// NPZ encodes named arrays into an .npz archive. Member files are named
// <field>.npy as numpy expects.
func NPZ(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name + ".npy")
		if err != nil {
			return nil, fmt.Errorf("npz member %s: %w", e.Name, err)
		}
		if err := npyio.Write(w, e.Data); err != nil {
			return nil, fmt.Errorf("encode npz member %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize npz: %w", err)
	}
	return buf.Bytes(), nil
}
