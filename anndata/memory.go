package anndata

import (
	"fmt"
	"sort"
)

// MemContainer is an in-memory Container. It backs tests and programmatic
// callers that already hold the dataset in memory; the on-disk backends
// live in driver subpackages.
type MemContainer struct {
	nObs, nVar int

	obs        *Table
	varTable   *Table
	rawVar     *Table
	uns        map[string]any
	embeddings []ArraySpec
	matrices   map[string]*MemMatrix

	closed bool
}

// NewMemContainer creates an empty container with the given main shape.
func NewMemContainer(nObs, nVar int) *MemContainer {
	return &MemContainer{
		nObs:     nObs,
		nVar:     nVar,
		uns:      make(map[string]any),
		matrices: make(map[string]*MemMatrix),
	}
}

// SetObs sets the row annotation table.
func (c *MemContainer) SetObs(t *Table) *MemContainer {
	c.obs = t
	return c
}

// SetVar sets the column annotation table.
func (c *MemContainer) SetVar(t *Table) *MemContainer {
	c.varTable = t
	return c
}

// SetRawVar sets the raw feature table.
func (c *MemContainer) SetRawVar(t *Table) *MemContainer {
	c.rawVar = t
	return c
}

// SetUns replaces the unstructured metadata block.
func (c *MemContainer) SetUns(uns map[string]any) *MemContainer {
	c.uns = uns
	return c
}

// AddEmbedding registers an obsm array spec.
func (c *MemContainer) AddEmbedding(spec ArraySpec) *MemContainer {
	c.embeddings = append(c.embeddings, spec)
	return c
}

// SetMatrix stores a matrix section from row slices.
func (c *MemContainer) SetMatrix(name string, rows [][]float64) *MemContainer {
	c.matrices[name] = NewMemMatrix(rows)
	return c
}

// SetMatrixFlat stores a matrix section from row-major data.
func (c *MemContainer) SetMatrixFlat(name string, nRows, nCols int, data []float64) *MemContainer {
	c.matrices[name] = &MemMatrix{rows: nRows, cols: nCols, data: data}
	return c
}

// Shape implements Container.
func (c *MemContainer) Shape() (nObs, nVar int) {
	return c.nObs, c.nVar
}

// Dtypes implements Container.
func (c *MemContainer) Dtypes() map[string]Dtype {
	dt := make(map[string]Dtype)
	for name := range c.matrices {
		dt[name] = DtypeFloat
	}
	addTable := func(prefix string, t *Table) {
		if t == nil {
			return
		}
		dt[prefix+"._index"] = t.IndexDtype
		for _, name := range t.Columns() {
			col, _ := t.Column(name)
			dt[prefix+"."+name] = col.Dtype
		}
	}
	addTable("obs", c.obs)
	addTable("var", c.varTable)
	addTable("raw.var", c.rawVar)
	return dt
}

// Obs implements Container.
func (c *MemContainer) Obs() (*Table, error) {
	if c.obs == nil {
		return nil, ErrNoSection
	}
	return c.obs, nil
}

// Var implements Container.
func (c *MemContainer) Var() (*Table, error) {
	if c.varTable == nil {
		return nil, ErrNoSection
	}
	return c.varTable, nil
}

// RawVar implements Container.
func (c *MemContainer) RawVar() (*Table, error) {
	if c.rawVar == nil {
		return nil, ErrNoSection
	}
	return c.rawVar, nil
}

// Uns implements Container.
func (c *MemContainer) Uns() (map[string]any, error) {
	return c.uns, nil
}

// Embeddings implements Container.
func (c *MemContainer) Embeddings() ([]ArraySpec, error) {
	out := make([]ArraySpec, len(c.embeddings))
	copy(out, c.embeddings)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Matrix implements Container.
func (c *MemContainer) Matrix(name string) (Matrix, error) {
	m, ok := c.matrices[name]
	if !ok {
		return nil, ErrNoSection
	}
	return m, nil
}

// Close implements Container.
func (c *MemContainer) Close() error {
	c.closed = true
	return nil
}

// Closed reports whether Close has been called. Used by lifecycle tests.
func (c *MemContainer) Closed() bool {
	return c.closed
}

// MemMatrix is an in-memory row-major Matrix.
type MemMatrix struct {
	rows, cols int
	data       []float64

	// readCalls counts ReadRows invocations, for access-discipline tests
	readCalls int
}

// NewMemMatrix builds a MemMatrix from row slices. All rows must have the
// same width.
func NewMemMatrix(rows [][]float64) *MemMatrix {
	m := &MemMatrix{rows: len(rows)}
	if len(rows) > 0 {
		m.cols = len(rows[0])
	}
	m.data = make([]float64, 0, m.rows*m.cols)
	for _, r := range rows {
		m.data = append(m.data, r...)
	}
	return m
}

// Dims implements Matrix.
func (m *MemMatrix) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// ReadRows implements Matrix.
func (m *MemMatrix) ReadRows(dst []float64, offset, rows int) (int, error) {
	if offset < 0 || offset > m.rows {
		return 0, fmt.Errorf("anndata: row offset %d out of range [0, %d]", offset, m.rows)
	}
	if offset+rows > m.rows {
		rows = m.rows - offset
	}
	if rows <= 0 {
		return 0, nil
	}
	if len(dst) < rows*m.cols {
		return 0, fmt.Errorf("anndata: destination holds %d values, need %d", len(dst), rows*m.cols)
	}
	m.readCalls++
	copy(dst, m.data[offset*m.cols:(offset+rows)*m.cols])
	return rows, nil
}

// ReadCalls returns the number of ReadRows invocations.
func (m *MemMatrix) ReadCalls() int {
	return m.readCalls
}
