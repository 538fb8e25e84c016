package sparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderAccumulates(t *testing.T) {
	b := NewBuilder(2, 3)
	b.Add(0, 1, 1.5)
	b.Add(0, 1, 2.5)
	b.Add(1, 2, 3.0)

	m := b.Build()

	rows, cols := m.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 2, m.NNZ())
	assert.Equal(t, 4.0, m.At(0, 1))
	assert.Equal(t, 3.0, m.At(1, 2))
	assert.Equal(t, 0.0, m.At(0, 0), "unwritten cells read as zero")
}

func TestBuildDropsZeroCells(t *testing.T) {
	b := NewBuilder(1, 2)
	b.Add(0, 0, 1.0)
	b.Add(0, 0, -1.0)
	b.Add(0, 1, 2.0)

	m := b.Build()
	assert.Equal(t, 1, m.NNZ(), "cells that cancel to zero are not materialized")
	assert.Equal(t, 0.0, m.At(0, 0))
}

func TestRangeRowMajorOrder(t *testing.T) {
	b := NewBuilder(3, 3)
	b.Set(2, 0, 1)
	b.Set(0, 2, 2)
	b.Set(0, 1, 3)
	b.Set(1, 1, 4)

	var got [][2]int
	b.Build().Range(func(row, col int, _ float64) {
		got = append(got, [2]int{row, col})
	})

	assert.Equal(t, [][2]int{{0, 1}, {0, 2}, {1, 1}, {2, 0}}, got)
}

func TestRowView(t *testing.T) {
	b := NewBuilder(2, 4)
	b.Set(1, 3, 7.0)
	b.Set(1, 0, 5.0)
	m := b.Build()

	cols, vals := m.Row(1)
	assert.Equal(t, []int{0, 3}, cols)
	assert.Equal(t, []float64{5.0, 7.0}, vals)

	cols, vals = m.Row(0)
	assert.Empty(t, cols)
	assert.Empty(t, vals)
}

func TestMaxElem(t *testing.T) {
	a := NewBuilder(2, 2)
	a.Set(0, 0, 1.0)
	a.Set(0, 1, 5.0)

	b := NewBuilder(2, 2)
	b.Set(0, 0, 3.0)
	b.Set(1, 1, 2.0)

	m, err := MaxElem(a.Build(), b.Build())
	require.NoError(t, err)

	assert.Equal(t, 3.0, m.At(0, 0))
	assert.Equal(t, 5.0, m.At(0, 1))
	assert.Equal(t, 2.0, m.At(1, 1))
	assert.Equal(t, 0.0, m.At(1, 0))
}

func TestMaxElemShapeMismatch(t *testing.T) {
	a := NewBuilder(2, 2).Build()
	b := NewBuilder(2, 3).Build()

	_, err := MaxElem(a, b)
	require.Error(t, err)
}

func TestScale(t *testing.T) {
	b := NewBuilder(2, 2)
	b.Set(0, 0, 2.0)
	b.Set(1, 1, 4.0)
	m := b.Build()

	s := m.Scale(0.5)
	assert.Equal(t, 1.0, s.At(0, 0))
	assert.Equal(t, 2.0, s.At(1, 1))
	assert.Equal(t, 2.0, m.At(0, 0), "scaling must not modify the source")
}

func TestFilter(t *testing.T) {
	b := NewBuilder(2, 2)
	b.Set(0, 0, 1.0)
	b.Set(1, 1, 2.0)

	m := b.Build().Filter(func(row, col int) bool {
		return row == 1
	})

	assert.Equal(t, 1, m.NNZ())
	assert.Equal(t, 2.0, m.At(1, 1))
}

func TestMergeBuilders(t *testing.T) {
	a := NewBuilder(2, 2)
	a.Add(0, 0, 1.0)

	b := NewBuilder(2, 2)
	b.Add(0, 0, 2.0)
	b.Add(1, 0, 4.0)

	require.NoError(t, a.Merge(b))
	m := a.Build()
	assert.Equal(t, 3.0, m.At(0, 0))
	assert.Equal(t, 4.0, m.At(1, 0))

	c := NewBuilder(3, 2)
	require.Error(t, a.Merge(c))
}

func TestDense(t *testing.T) {
	b := NewBuilder(2, 2)
	b.Set(0, 1, 9.0)
	d := b.Build().Dense()

	rows, cols := d.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, 2, cols)
	assert.Equal(t, 9.0, d.At(0, 1))
	assert.Equal(t, 0.0, d.At(1, 0))
}

func TestEmptyMatrix(t *testing.T) {
	m := NewBuilder(0, 5).Build()
	rows, cols := m.Dims()
	assert.Equal(t, 0, rows)
	assert.Equal(t, 5, cols)
	assert.Equal(t, 0, m.NNZ())
	m.Range(func(int, int, float64) {
		t.Fatal("empty matrix must not yield cells")
	})
}
