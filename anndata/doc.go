// Package anndata provides lazy, bounded-memory access to annotated
// expression matrices stored in hierarchical containers (AnnData files).
//
// The package separates two concerns:
//
//   - Container is the capability boundary to the backing file format. A
//     Container exposes the small, bounded sections (annotation tables,
//     unstructured metadata, shapes, dtypes) as materialized values and the
//     expression matrix only through block reads.
//   - FileView binds one Container for the lifetime of one validation run
//     and adds the chunked iteration discipline: MatrixChunks yields the
//     matrix in row blocks through a reused buffer, so peak memory is
//     O(chunk size + metadata size) regardless of file size.
//
// Backends register themselves as drivers keyed by file extension; the
// h5 subpackage contributes the HDF5 (.h5ad) driver. MemContainer is an
// in-memory backend used by tests and programmatic callers.
package anndata
