package anndata

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// UnreadableFileError reports a file that could not be opened or is
// structurally corrupt. This is a fatal run failure, never a schema
// violation: no report can be produced for an unreadable file.
type UnreadableFileError struct {
	Path string
	Err  error
}

func (e *UnreadableFileError) Error() string {
	return fmt.Sprintf("anndata: unreadable file %s: %v", e.Path, e.Err)
}

func (e *UnreadableFileError) Unwrap() error {
	return e.Err
}

// IsUnreadable reports whether err wraps an UnreadableFileError.
func IsUnreadable(err error) bool {
	var ue *UnreadableFileError
	return errors.As(err, &ue)
}

// Driver opens a Container for a backing file.
type Driver interface {
	Open(path string) (Container, error)
}

// DriverFunc adapts a function to the Driver interface.
type DriverFunc func(path string) (Container, error)

// Open calls the wrapped function.
func (f DriverFunc) Open(path string) (Container, error) {
	return f(path)
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// RegisterDriver registers a container driver for a file extension
// (including the dot, e.g. ".h5ad"). Later registrations for the same
// extension win.
func RegisterDriver(ext string, d Driver) {
	driversMu.Lock()
	drivers[strings.ToLower(ext)] = d
	driversMu.Unlock()
}

// Open opens path with the driver registered for its extension and binds
// the container to a new FileView. An unsupported extension or a driver
// failure produces an *UnreadableFileError.
func Open(path string) (*FileView, error) {
	ext := strings.ToLower(filepath.Ext(path))

	driversMu.RLock()
	d, ok := drivers[ext]
	driversMu.RUnlock()

	if !ok {
		return nil, &UnreadableFileError{
			Path: path,
			Err:  fmt.Errorf("unsupported file extension %q", ext),
		}
	}

	c, err := d.Open(path)
	if err != nil {
		return nil, &UnreadableFileError{Path: path, Err: err}
	}
	return OpenContainer(c, path), nil
}

// FileView is an accessor bound to one backing container for the lifetime
// of one validation run. It never exposes the full matrix as a single
// in-memory object: bulk access goes through MatrixChunks.
type FileView struct {
	path    string
	c       Container
	closed  bool
	onChunk func()
}

// OpenContainer binds an already-open container to a FileView. The view
// takes ownership: closing the view closes the container.
func OpenContainer(c Container, path string) *FileView {
	return &FileView{path: path, c: c}
}

// Path returns the source file identifier.
func (v *FileView) Path() string {
	return v.path
}

// Shape returns (n_obs, n_var).
func (v *FileView) Shape() (nObs, nVar int) {
	return v.c.Shape()
}

// Dtypes maps field names to declared element types.
func (v *FileView) Dtypes() map[string]Dtype {
	return v.c.Dtypes()
}

// Obs returns the row annotation table.
func (v *FileView) Obs() (*Table, error) {
	return v.c.Obs()
}

// Var returns the column annotation table.
func (v *FileView) Var() (*Table, error) {
	return v.c.Var()
}

// RawVar returns the raw feature table, or ErrNoSection.
func (v *FileView) RawVar() (*Table, error) {
	return v.c.RawVar()
}

// HasRaw reports whether the file carries a raw section.
func (v *FileView) HasRaw() bool {
	_, err := v.c.RawVar()
	return err == nil
}

// Uns returns the unstructured metadata block.
func (v *FileView) Uns() (map[string]any, error) {
	return v.c.Uns()
}

// Embeddings returns the obsm array specs.
func (v *FileView) Embeddings() ([]ArraySpec, error) {
	return v.c.Embeddings()
}

// HasMatrix reports whether the named matrix section exists.
func (v *FileView) HasMatrix(name string) bool {
	_, err := v.c.Matrix(name)
	return err == nil
}

// CountMatrix returns the section holding raw counts: raw/X when the file
// has a raw section, otherwise X. ErrNoSection if neither exists.
func (v *FileView) CountMatrix() (string, Matrix, error) {
	if m, err := v.c.Matrix(MatrixRawX); err == nil {
		return MatrixRawX, m, nil
	}
	m, err := v.c.Matrix(MatrixX)
	if err != nil {
		return "", nil, err
	}
	return MatrixX, m, nil
}

// MatrixChunks returns a restartable iterator over the named matrix in
// blocks of chunkRows rows. Each call produces an independent iteration
// from row zero; the iterator reuses one buffer, so a chunk is only valid
// until the next call to Next.
func (v *FileView) MatrixChunks(name string, chunkRows int) (*ChunkIter, error) {
	m, err := v.c.Matrix(name)
	if err != nil {
		return nil, err
	}
	return newChunkIter(m, chunkRows, v.onChunk), nil
}

// SetChunkObserver installs a callback fired once per chunk read, used by
// the engine to account matrix I/O.
func (v *FileView) SetChunkObserver(fn func()) {
	v.onChunk = fn
}

// Close releases the underlying container. Idempotent.
func (v *FileView) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	return v.c.Close()
}
