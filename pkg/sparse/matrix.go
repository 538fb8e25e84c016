// Package sparse implements the compressed sparse row matrices used to hold
// pairwise score results. Cells that were never written are not materialized,
// so memory tracks non-zero occupancy rather than matrix shape.
package sparse

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Matrix is an immutable sparse matrix in CSR layout: rowPtr has one entry
// per row plus a terminator, colInd and values hold the non-zero cells of
// each row in ascending column order.
type Matrix struct {
	rows, cols int
	rowPtr     []int
	colInd     []int
	values     []float64
}

// Dims returns the matrix shape.
func (m *Matrix) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// NNZ returns the number of materialized cells.
func (m *Matrix) NNZ() int {
	return len(m.values)
}

// At returns the value at (row, col), 0 for cells that are not materialized.
func (m *Matrix) At(row, col int) float64 {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("sparse: index (%d,%d) out of range for %dx%d matrix", row, col, m.rows, m.cols))
	}
	start, end := m.rowPtr[row], m.rowPtr[row+1]
	pos := sort.SearchInts(m.colInd[start:end], col) + start
	if pos < end && m.colInd[pos] == col {
		return m.values[pos]
	}
	return 0
}

// Row returns the non-zero columns and values of a row as slice views into
// the matrix. Callers must not modify them.
func (m *Matrix) Row(row int) (cols []int, vals []float64) {
	start, end := m.rowPtr[row], m.rowPtr[row+1]
	return m.colInd[start:end], m.values[start:end]
}

// Range calls fn for every materialized cell in row-major order.
func (m *Matrix) Range(fn func(row, col int, v float64)) {
	for row := 0; row < m.rows; row++ {
		for pos := m.rowPtr[row]; pos < m.rowPtr[row+1]; pos++ {
			fn(row, m.colInd[pos], m.values[pos])
		}
	}
}

// Dense expands the matrix into a gonum dense matrix. Intended for small
// matrices in tests and diagnostics, not the scoring path.
func (m *Matrix) Dense() *mat.Dense {
	if m.rows == 0 || m.cols == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(m.rows, m.cols, nil)
	m.Range(func(row, col int, v float64) {
		d.Set(row, col, v)
	})
	return d
}

// MaxElem returns the element-wise maximum of a and b. Shapes must match.
func MaxElem(a, b *Matrix) (*Matrix, error) {
	if a.rows != b.rows || a.cols != b.cols {
		return nil, fmt.Errorf("sparse: shape mismatch %dx%d vs %dx%d", a.rows, a.cols, b.rows, b.cols)
	}

	out := NewBuilder(a.rows, a.cols)
	a.Range(func(row, col int, v float64) {
		out.Set(row, col, v)
	})
	b.Range(func(row, col int, v float64) {
		if v > out.Get(row, col) {
			out.Set(row, col, v)
		}
	})
	return out.Build(), nil
}

// Scale returns a copy of m with every value multiplied by alpha. The
// sparsity pattern is shared with m, which never changes after Build.
func (m *Matrix) Scale(alpha float64) *Matrix {
	out := &Matrix{
		rows:   m.rows,
		cols:   m.cols,
		rowPtr: m.rowPtr,
		colInd: m.colInd,
		values: append([]float64(nil), m.values...),
	}
	floats.Scale(alpha, out.values)
	return out
}

// Filter returns a copy of m containing only the cells for which keep
// returns true.
func (m *Matrix) Filter(keep func(row, col int) bool) *Matrix {
	out := NewBuilder(m.rows, m.cols)
	m.Range(func(row, col int, v float64) {
		if keep(row, col) {
			out.Set(row, col, v)
		}
	})
	return out.Build()
}

// Builder accumulates cells for a Matrix. Accumulation order is irrelevant;
// Build produces a canonical CSR layout.
type Builder struct {
	rows, cols int
	cells      map[cellKey]float64
}

type cellKey struct {
	row, col int
}

// NewBuilder creates a builder for a rows x cols matrix.
func NewBuilder(rows, cols int) *Builder {
	return &Builder{
		rows:  rows,
		cols:  cols,
		cells: make(map[cellKey]float64),
	}
}

func (b *Builder) checkBounds(row, col int) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		panic(fmt.Sprintf("sparse: index (%d,%d) out of range for %dx%d builder", row, col, b.rows, b.cols))
	}
}

// Add accumulates v into cell (row, col).
func (b *Builder) Add(row, col int, v float64) {
	b.checkBounds(row, col)
	b.cells[cellKey{row, col}] += v
}

// Set overwrites cell (row, col).
func (b *Builder) Set(row, col int, v float64) {
	b.checkBounds(row, col)
	b.cells[cellKey{row, col}] = v
}

// Get returns the current value of cell (row, col).
func (b *Builder) Get(row, col int) float64 {
	b.checkBounds(row, col)
	return b.cells[cellKey{row, col}]
}

// Merge folds another builder's cells into b. Shapes must match.
func (b *Builder) Merge(other *Builder) error {
	if b.rows != other.rows || b.cols != other.cols {
		return fmt.Errorf("sparse: shape mismatch %dx%d vs %dx%d", b.rows, b.cols, other.rows, other.cols)
	}
	for k, v := range other.cells {
		b.cells[k] += v
	}
	return nil
}

// Build finalizes the accumulated cells into a CSR matrix. Cells whose
// accumulated value is exactly zero are dropped.
func (b *Builder) Build() *Matrix {
	keys := make([]cellKey, 0, len(b.cells))
	for k, v := range b.cells {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].row != keys[j].row {
			return keys[i].row < keys[j].row
		}
		return keys[i].col < keys[j].col
	})

	m := &Matrix{
		rows:   b.rows,
		cols:   b.cols,
		rowPtr: make([]int, b.rows+1),
		colInd: make([]int, len(keys)),
		values: make([]float64, len(keys)),
	}
	for i, k := range keys {
		m.rowPtr[k.row+1]++
		m.colInd[i] = k.col
		m.values[i] = b.cells[k]
	}
	for row := 0; row < b.rows; row++ {
		m.rowPtr[row+1] += m.rowPtr[row]
	}
	return m
}
