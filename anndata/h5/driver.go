// Package h5 implements the anndata container driver for HDF5-backed
// .h5ad files. Importing the package registers the driver:
//
//	import _ "github.com/cellannotation/capval/anndata/h5"
//
// The driver materializes the annotation tables and the unstructured
// metadata block, but never reads the expression matrix whole: X and
// raw/X stay on disk and are served through hyperslab block reads.
package h5

import (
	"fmt"
	"strings"

	"gonum.org/v1/hdf5"

	"github.com/cellannotation/capval/anndata"
)

func init() {
	anndata.RegisterDriver(".h5ad", anndata.DriverFunc(open))
	anndata.RegisterDriver(".h5", anndata.DriverFunc(open))
}

func open(path string) (anndata.Container, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("opening hdf5 file: %w", err)
	}

	c := &container{
		f:      f,
		dtypes: make(map[string]anndata.Dtype),
		open:   make(map[string]*datasetMatrix),
	}
	if err := c.load(); err != nil {
		f.Close()
		return nil, err
	}
	return c, nil
}

type container struct {
	f *hdf5.File

	nObs, nVar int
	dtypes     map[string]anndata.Dtype

	obs    *anndata.Table
	vr     *anndata.Table
	rawVar *anndata.Table
	uns    map[string]any
	obsm   []anndata.ArraySpec

	// open holds matrix datasets handed out by Matrix; their handles are
	// released on Close.
	open map[string]*datasetMatrix
}

// load materializes every bounded section up front so later accessors are
// pure lookups. Matrix sections are only probed for shape and dtype.
func (c *container) load() error {
	var err error

	if c.obs, err = c.readFrame("obs"); err != nil {
		return fmt.Errorf("reading obs: %w", err)
	}
	if c.vr, err = c.readFrame("var"); err != nil {
		return fmt.Errorf("reading var: %w", err)
	}

	if rawVar, err := c.readFrame("raw/var"); err == nil {
		c.rawVar = rawVar
	}

	// The main axes come from the X extent, so a matrix whose size
	// disagrees with the annotation tables stays visible to callers.
	// Only a file with no X at all falls back to the table row counts.
	rows, cols, ok, err := c.probeMatrix(anndata.MatrixX)
	if err != nil {
		return err
	}
	if ok {
		c.nObs, c.nVar = rows, cols
	} else {
		c.nObs = c.obs.NRows()
		c.nVar = c.vr.NRows()
	}
	if c.rawVar != nil {
		if _, _, _, err := c.probeMatrix(anndata.MatrixRawX); err != nil {
			return err
		}
	}

	if err := c.readObsm(); err != nil {
		return fmt.Errorf("reading obsm: %w", err)
	}
	if err := c.readUns(); err != nil {
		return fmt.Errorf("reading uns: %w", err)
	}
	return nil
}

func (c *container) Shape() (int, int) { return c.nObs, c.nVar }

func (c *container) Dtypes() map[string]anndata.Dtype {
	out := make(map[string]anndata.Dtype, len(c.dtypes))
	for k, v := range c.dtypes {
		out[k] = v
	}
	return out
}

func (c *container) Obs() (*anndata.Table, error) { return c.obs, nil }

func (c *container) Var() (*anndata.Table, error) { return c.vr, nil }

func (c *container) RawVar() (*anndata.Table, error) {
	if c.rawVar == nil {
		return nil, anndata.ErrNoSection
	}
	return c.rawVar, nil
}

func (c *container) Uns() (map[string]any, error) { return c.uns, nil }

func (c *container) Embeddings() ([]anndata.ArraySpec, error) { return c.obsm, nil }

func (c *container) Matrix(name string) (anndata.Matrix, error) {
	if name != anndata.MatrixX && name != anndata.MatrixRawX {
		return nil, anndata.ErrNoSection
	}
	if m, ok := c.open[name]; ok {
		return m, nil
	}
	ds, err := c.f.OpenDataset(name)
	if err != nil {
		return nil, anndata.ErrNoSection
	}
	m, err := newDatasetMatrix(ds)
	if err != nil {
		return nil, err
	}
	c.open[name] = m
	return m, nil
}

func (c *container) Close() error {
	for _, m := range c.open {
		m.ds.Close()
	}
	c.open = nil
	return c.f.Close()
}

// probeMatrix records shape and dtype for a matrix section without
// reading any of its cells, and reports the dataset extent.
func (c *container) probeMatrix(name string) (rows, cols int, ok bool, err error) {
	ds, err := c.f.OpenDataset(name)
	if err != nil {
		return 0, 0, false, nil // absent sections are the rules' finding, not ours
	}
	defer ds.Close()

	dims, _, err := ds.Space().SimpleExtentDims()
	if err != nil {
		return 0, 0, false, fmt.Errorf("reading %s extent: %w", name, err)
	}
	if len(dims) != 2 {
		return 0, 0, false, fmt.Errorf("%s is %d-dimensional, want 2", name, len(dims))
	}
	c.dtypes[name] = datasetDtype(ds)
	return int(dims[0]), int(dims[1]), true, nil
}

// readFrame reads an AnnData dataframe group (obs, var, raw/var) into a
// materialized table. The index lives in the _index dataset; plain
// columns are datasets, categorical columns are groups with categories
// and codes datasets.
func (c *container) readFrame(name string) (*anndata.Table, error) {
	g, err := c.f.OpenGroup(name)
	if err != nil {
		return nil, anndata.ErrNoSection
	}
	defer g.Close()

	index, indexDtype, err := readStringDataset(g, "_index")
	if err != nil {
		return nil, fmt.Errorf("reading %s index: %w", name, err)
	}
	t := anndata.NewTable(index)
	t.IndexDtype = indexDtype
	c.dtypes[name+"._index"] = indexDtype

	n, err := g.NumObjects()
	if err != nil {
		return nil, err
	}
	for i := uint(0); i < n; i++ {
		member, err := g.ObjectNameByIndex(i)
		if err != nil {
			return nil, err
		}
		if member == "_index" {
			continue
		}
		col, err := readColumn(g, member)
		if err != nil {
			return nil, fmt.Errorf("reading %s.%s: %w", name, member, err)
		}
		t.AddColumn(col)
		c.dtypes[name+"."+member] = col.Dtype
	}
	return t, nil
}

// readColumn reads one dataframe column, either a plain dataset or a
// categorical group.
func readColumn(g *hdf5.Group, name string) (*anndata.Column, error) {
	if sub, err := g.OpenGroup(name); err == nil {
		defer sub.Close()
		return readCategorical(sub, name)
	}

	ds, err := g.OpenDataset(name)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	col := &anndata.Column{Name: name, Dtype: datasetDtype(ds)}
	switch col.Dtype {
	case anndata.DtypeString:
		if err := ds.Read(&col.Strings); err != nil {
			return nil, err
		}
	case anndata.DtypeBool:
		var raw []uint8
		if err := ds.Read(&raw); err != nil {
			return nil, err
		}
		col.Bools = make([]bool, len(raw))
		for i, v := range raw {
			col.Bools[i] = v != 0
		}
	default:
		if err := ds.Read(&col.Floats); err != nil {
			return nil, err
		}
	}
	return col, nil
}

// readCategorical decodes a categorical column group into its expanded
// string values.
func readCategorical(g *hdf5.Group, name string) (*anndata.Column, error) {
	cats, _, err := readStringDataset(g, "categories")
	if err != nil {
		return nil, err
	}

	ds, err := g.OpenDataset("codes")
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	var codes []int32
	if err := ds.Read(&codes); err != nil {
		return nil, err
	}

	values := make([]string, len(codes))
	for i, code := range codes {
		if code >= 0 && int(code) < len(cats) {
			values[i] = cats[code]
		}
	}
	return &anndata.Column{Name: name, Dtype: anndata.DtypeCategorical, Strings: values}, nil
}

// readStringDataset reads a 1D string-valued dataset inside g, decoding
// a categorical group in place when the member is stored that way.
func readStringDataset(g *hdf5.Group, name string) ([]string, anndata.Dtype, error) {
	if sub, err := g.OpenGroup(name); err == nil {
		defer sub.Close()
		col, err := readCategorical(sub, name)
		if err != nil {
			return nil, anndata.DtypeUnknown, err
		}
		return col.Strings, anndata.DtypeCategorical, nil
	}

	ds, err := g.OpenDataset(name)
	if err != nil {
		return nil, anndata.DtypeUnknown, err
	}
	defer ds.Close()

	dt := datasetDtype(ds)
	if !dt.StringLike() {
		return nil, dt, fmt.Errorf("dataset %s holds %s values, want strings", name, dt)
	}

	var values []string
	if err := ds.Read(&values); err != nil {
		return nil, dt, err
	}
	return values, dt, nil
}

// readObsm records the shape and dtype of every embedding array without
// materializing the data.
func (c *container) readObsm() error {
	g, err := c.f.OpenGroup("obsm")
	if err != nil {
		return nil
	}
	defer g.Close()

	n, err := g.NumObjects()
	if err != nil {
		return err
	}
	for i := uint(0); i < n; i++ {
		name, err := g.ObjectNameByIndex(i)
		if err != nil {
			return err
		}
		ds, err := g.OpenDataset(name)
		if err != nil {
			continue
		}
		dims, _, err := ds.Space().SimpleExtentDims()
		if err != nil {
			ds.Close()
			return err
		}
		spec := anndata.ArraySpec{Name: name, Rows: int(dims[0]), Dtype: datasetDtype(ds)}
		if len(dims) > 1 {
			spec.Cols = int(dims[1])
		}
		ds.Close()
		c.obsm = append(c.obsm, spec)
	}
	return nil
}

// readUns materializes the scalar members of the uns group. Nested
// groups and arrays are recorded by name only.
func (c *container) readUns() error {
	c.uns = make(map[string]any)

	g, err := c.f.OpenGroup("uns")
	if err != nil {
		return nil
	}
	defer g.Close()

	n, err := g.NumObjects()
	if err != nil {
		return err
	}
	for i := uint(0); i < n; i++ {
		name, err := g.ObjectNameByIndex(i)
		if err != nil {
			return err
		}
		ds, err := g.OpenDataset(name)
		if err != nil {
			c.uns[name] = struct{}{}
			continue
		}
		c.uns[name] = readScalar(ds)
		ds.Close()
	}
	return nil
}

// readScalar reads a zero-dimensional dataset into a Go value. A value
// that cannot be read comes back as an empty string so key presence is
// still visible.
func readScalar(ds *hdf5.Dataset) any {
	switch datasetDtype(ds) {
	case anndata.DtypeString:
		var s string
		if err := ds.Read(&s); err != nil {
			return ""
		}
		return strings.TrimRight(s, "\x00")
	case anndata.DtypeBool:
		var v uint8
		if err := ds.Read(&v); err != nil {
			return ""
		}
		return v != 0
	default:
		var v float64
		if err := ds.Read(&v); err != nil {
			return ""
		}
		return v
	}
}

// datasetDtype maps the stored HDF5 type class onto the container dtype
// vocabulary.
func datasetDtype(ds *hdf5.Dataset) anndata.Dtype {
	dt, err := ds.Datatype()
	if err != nil {
		return anndata.DtypeUnknown
	}
	defer dt.Close()

	switch dt.Class() {
	case hdf5.T_STRING:
		return anndata.DtypeString
	case hdf5.T_FLOAT:
		return anndata.DtypeFloat
	case hdf5.T_INTEGER:
		return anndata.DtypeInt
	case hdf5.T_ENUM:
		return anndata.DtypeBool
	default:
		return anndata.DtypeUnknown
	}
}
