package genie

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Points (0,0), (3,0), (0,4): d01=3, d02=4, d12=5.
func triangle(t *testing.T) *MatrixOracle {
	t.Helper()
	o, err := NewMatrixOracle(flatMatrix([][]float64{
		{0, 3, 4},
		{3, 0, 5},
		{4, 5, 0},
	}), 3)
	require.NoError(t, err)
	return o
}

func TestMutualReachability_Alpha1(t *testing.T) {
	mr, err := NewMutualReachability(triangle(t), []float64{3, 3, 4}, 1.0)
	require.NoError(t, err)

	assert.Equal(t, 3.0, mr.Distance(0, 1))
	assert.Equal(t, 4.0, mr.Distance(0, 2))
	assert.Equal(t, 5.0, mr.Distance(1, 2))
	assert.Equal(t, 0.0, mr.Distance(1, 1))
}

func TestMutualReachability_Symmetric(t *testing.T) {
	mr, err := NewMutualReachability(triangle(t), []float64{1, 4.5, 2}, 1.0)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, mr.Distance(i, j), mr.Distance(j, i))
		}
	}
}

func TestMutualReachability_Alpha(t *testing.T) {
	mr, err := NewMutualReachability(triangle(t), []float64{3, 3, 4}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 6.0, mr.Distance(0, 1))
	assert.Equal(t, 8.0, mr.Distance(0, 2))
	assert.Equal(t, 10.0, mr.Distance(1, 2))
}

func TestMutualReachability_CoreDominates(t *testing.T) {
	mr, err := NewMutualReachability(triangle(t), []float64{100, 0, 0}, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, mr.Distance(0, 1))
	assert.Equal(t, 5.0, mr.Distance(1, 2))
}

func TestMutualReachability_Invalid(t *testing.T) {
	_, err := NewMutualReachability(triangle(t), []float64{1, 2}, 1.0)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = NewMutualReachability(triangle(t), []float64{1, 2, 3}, 0)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
