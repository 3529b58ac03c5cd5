package genie

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestGenieRule_IsGini(t *testing.T) {
	s := NewSizeState(5)
	s.Merge(1, 1)
	assert.Equal(t, s.Gini(), GenieRule{}.Score(s))
}

func TestNormalizedSizeVariance(t *testing.T) {
	s := NewSizeState(4)
	assert.Equal(t, 0.0, normalizedSizeVariance(s), "equal sizes")

	s.Merge(1, 1) // {2,1,1}: mean 4/3, var 2/9 -> (2/9)/((16/9)*2) = 1/16
	assert.InDelta(t, 1.0/16, normalizedSizeVariance(s), floatTol)

	s.Merge(2, 1) // {3,1}: mean 2, var 1 -> 1/(4*1)
	assert.InDelta(t, 0.25, normalizedSizeVariance(s), floatTol)

	s.Merge(3, 1)
	assert.Equal(t, 0.0, normalizedSizeVariance(s), "single cluster")
}

func TestGIcRule_Blends(t *testing.T) {
	s := NewSizeState(4)
	s.Merge(1, 1)
	s.Merge(2, 1)
	gini := s.Gini()
	v := normalizedSizeVariance(s)

	assert.InDelta(t, gini, GIcRule{Weight: 1}.Score(s), floatTol)
	assert.InDelta(t, v, GIcRule{Weight: 0}.Score(s), floatTol)
	assert.InDelta(t, 0.3*gini+0.7*v, GIcRule{Weight: 0.3}.Score(s), floatTol)
}

func TestValidateMergeRule(t *testing.T) {
	assert.NoError(t, validateMergeRule(GenieRule{}))
	assert.NoError(t, validateMergeRule(GIcRule{Weight: 0.5}))
	assert.True(t, errors.Is(validateMergeRule(GIcRule{Weight: 1.5}), ErrInvalidInput))
	assert.True(t, errors.Is(validateMergeRule(GIcRule{Weight: -0.1}), ErrInvalidInput))
}
