package h5

import (
	"fmt"

	"gonum.org/v1/hdf5"

	"github.com/cellannotation/capval/anndata"
)

// datasetMatrix serves block reads over a dense 2D HDF5 dataset through
// hyperslab selections. Only the requested rows cross into memory.
type datasetMatrix struct {
	ds   *hdf5.Dataset
	rows int
	cols int
}

func newDatasetMatrix(ds *hdf5.Dataset) (*datasetMatrix, error) {
	dims, _, err := ds.Space().SimpleExtentDims()
	if err != nil {
		ds.Close()
		return nil, fmt.Errorf("reading matrix extent: %w", err)
	}
	if len(dims) != 2 {
		ds.Close()
		return nil, fmt.Errorf("matrix is %d-dimensional, want 2", len(dims))
	}
	return &datasetMatrix{ds: ds, rows: int(dims[0]), cols: int(dims[1])}, nil
}

// Dims returns the matrix dimensions.
func (m *datasetMatrix) Dims() (int, int) {
	return m.rows, m.cols
}

// ReadRows reads up to n full rows starting at offset into dst and
// returns the number of rows read. HDF5 converts the stored element type
// to float64 during the read.
func (m *datasetMatrix) ReadRows(dst []float64, offset, n int) (int, error) {
	if offset < 0 || offset >= m.rows {
		return 0, fmt.Errorf("row offset %d out of range [0,%d)", offset, m.rows)
	}
	if offset+n > m.rows {
		n = m.rows - offset
	}
	if n == 0 {
		return 0, nil
	}
	if len(dst) < n*m.cols {
		return 0, fmt.Errorf("destination holds %d values, need %d", len(dst), n*m.cols)
	}

	filespace := m.ds.Space()
	defer filespace.Close()
	if err := filespace.SelectHyperslab(
		[]uint{uint(offset), 0}, nil,
		[]uint{uint(n), uint(m.cols)}, nil); err != nil {
		return 0, fmt.Errorf("selecting rows [%d,%d): %w", offset, offset+n, err)
	}

	memspace, err := hdf5.CreateSimpleDataspace([]uint{uint(n), uint(m.cols)}, nil)
	if err != nil {
		return 0, err
	}
	defer memspace.Close()

	block := dst[:n*m.cols]
	if err := m.ds.ReadSubset(&block, memspace, filespace); err != nil {
		return 0, fmt.Errorf("reading rows [%d,%d): %w", offset, offset+n, err)
	}
	return n, nil
}

var _ anndata.Matrix = (*datasetMatrix)(nil)
