package anndata

// Chunk is one row block of a matrix. Data is row-major with Rows*Cols
// values. The backing buffer is owned by the iterator and reused: a chunk
// must not be retained past the Next call that produced it.
type Chunk struct {
	// Offset is the absolute row index of the first row in the chunk
	Offset int

	// Rows is the number of rows in this chunk
	Rows int

	// Cols is the row width
	Cols int

	// Data holds the values in row-major order, length Rows*Cols
	Data []float64
}

// Row returns row i of the chunk (0 <= i < Rows) as a slice into Data.
func (c *Chunk) Row(i int) []float64 {
	return c.Data[i*c.Cols : (i+1)*c.Cols]
}

// At returns the value at (row, col) within the chunk.
func (c *Chunk) At(row, col int) float64 {
	return c.Data[row*c.Cols+col]
}

// ChunkIter iterates over a matrix in bounded row blocks. The iterator
// allocates one buffer of chunkRows*cols values and reuses it for every
// chunk, so iteration memory is independent of the matrix row count.
//
//	it, err := view.MatrixChunks(anndata.MatrixX, 1000)
//	...
//	for it.Next() {
//	    chunk := it.Chunk()
//	    // use chunk; do not retain
//	}
//	if err := it.Err(); err != nil { ... }
type ChunkIter struct {
	m         Matrix
	chunkRows int
	rows      int
	cols      int

	offset  int
	cur     Chunk
	buf     []float64
	err     error
	done    bool
	onChunk func()
}

func newChunkIter(m Matrix, chunkRows int, onChunk func()) *ChunkIter {
	rows, cols := m.Dims()
	if chunkRows <= 0 {
		chunkRows = 1
	}
	if chunkRows > rows && rows > 0 {
		chunkRows = rows
	}
	return &ChunkIter{
		m:         m,
		chunkRows: chunkRows,
		rows:      rows,
		cols:      cols,
		onChunk:   onChunk,
	}
}

// Next advances to the next chunk. It returns false when the matrix is
// exhausted or a read error occurred; check Err afterwards.
func (it *ChunkIter) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	if it.offset >= it.rows {
		it.done = true
		return false
	}

	want := it.chunkRows
	if it.offset+want > it.rows {
		want = it.rows - it.offset
	}

	if it.buf == nil {
		it.buf = make([]float64, it.chunkRows*it.cols)
	}

	n, err := it.m.ReadRows(it.buf, it.offset, want)
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	if n == 0 {
		it.done = true
		return false
	}

	it.cur = Chunk{
		Offset: it.offset,
		Rows:   n,
		Cols:   it.cols,
		Data:   it.buf[:n*it.cols],
	}
	it.offset += n
	if it.onChunk != nil {
		it.onChunk()
	}
	return true
}

// Chunk returns the current chunk. Only valid after a true Next and until
// the following Next call.
func (it *ChunkIter) Chunk() *Chunk {
	return &it.cur
}

// Err returns the first read error encountered, if any.
func (it *ChunkIter) Err() error {
	return it.err
}

// NumChunks returns the total number of chunks a full iteration yields.
func (it *ChunkIter) NumChunks() int {
	if it.rows == 0 {
		return 0
	}
	return (it.rows + it.chunkRows - 1) / it.chunkRows
}
