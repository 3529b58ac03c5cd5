package genie

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorOracle(t *testing.T) {
	o, err := NewVectorOracle([][]float64{{0, 0}, {3, 4}, {6, 8}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, o.Len())
	assert.Equal(t, 2, o.Dims())
	assert.IsType(t, EuclideanMetric{}, o.Metric())
	assert.Equal(t, []float64{3, 4}, o.Point(1))
	assert.InDelta(t, 5, o.Distance(0, 1), floatTol)
	assert.InDelta(t, 10, o.Distance(2, 0), floatTol)
}

func TestVectorOracle_CopiesInput(t *testing.T) {
	data := [][]float64{{0}, {1}}
	o, err := NewVectorOracle(data, nil)
	require.NoError(t, err)
	data[1][0] = 100
	assert.Equal(t, 1.0, o.Distance(0, 1))
}

func TestVectorOracle_RaggedRows(t *testing.T) {
	_, err := NewVectorOracle([][]float64{{0, 0}, {1}}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestMatrixOracle(t *testing.T) {
	o, err := NewMatrixOracle(flatMatrix([][]float64{
		{0, 2, 7},
		{2, 0, 3},
		{7, 3, 0},
	}), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, o.Len())
	assert.Equal(t, 7.0, o.Distance(0, 2))

	_, err = NewMatrixOracle(make([]float64, 8), 3)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestSubsetOracle(t *testing.T) {
	base := mustVectorOracle([][]float64{{0}, {10}, {20}, {30}}, nil)
	sub := subsetOracle{base: base, idx: []int{1, 3}}
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, 20.0, sub.Distance(0, 1))
}

func TestSanitize(t *testing.T) {
	assert.True(t, math.IsInf(sanitize(math.NaN()), 1))
	assert.Equal(t, 2.5, sanitize(2.5))
}
