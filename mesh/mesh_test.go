package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/notargets/gokiva/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func near(a, b float64, tolI ...float64) bool {
	tol := 1.e-9
	if len(tolI) > 0 {
		tol = tolI[0]
	}
	return math.Abs(a-b) <= tol*math.Max(1, math.Abs(a))
}

func checkMesh(t *testing.T, m *Mesh, min, max float64) {
	require.Equal(t, len(m.Centers)+1, len(m.Dividers))
	assert.True(t, near(min, m.Min()))
	assert.True(t, near(max, m.Max()))
	for i := 0; i < m.N(); i++ {
		assert.Less(t, m.Dividers[i], m.Dividers[i+1])
		assert.True(t, near(0.5*(m.Dividers[i]+m.Dividers[i+1]), m.Centers[i]))
		assert.True(t, near(m.Dividers[i+1]-m.Dividers[i], m.Deltas[i]))
	}
}

func TestIntervalWidths(t *testing.T) {
	{ // Uniform
		dx, err := Interval{Min: 0, Max: 1, MinCellDim: 0.1, GrowthCoeff: 1}.Widths(0)
		require.NoError(t, err)
		assert.Equal(t, 10, len(dx))
		for _, w := range dx {
			assert.True(t, near(0.1, w))
		}
	}
	{ // Interval shorter than the minimum cell is one cell
		dx, err := Interval{Min: 0, Max: 0.01, MinCellDim: 0.1, GrowthCoeff: 1.5, Growth: Forward}.Widths(0)
		require.NoError(t, err)
		assert.Equal(t, 1, len(dx))
		assert.True(t, near(0.01, dx[0]))
	}
	for _, g := range []Growth{Forward, Backward, Centered} {
		iv := Interval{Min: 2, Max: 22, MinCellDim: 0.02, GrowthCoeff: 1.5, Growth: g}
		dx, err := iv.Widths(0)
		require.NoError(t, err)
		var sum float64
		for i, w := range dx {
			sum += w
			assert.LessOrEqual(t, w, 20.)
			assert.GreaterOrEqual(t, w, 0.02*(1-1.e-12), g.String())
			if i > 0 {
				r := math.Max(dx[i]/dx[i-1], dx[i-1]/dx[i])
				assert.LessOrEqual(t, r, 1.5*(1+1.e-9), g.String())
			}
		}
		assert.True(t, near(20, sum), g.String())
		switch g {
		case Forward:
			assert.Less(t, dx[0], dx[len(dx)-1])
		case Backward:
			assert.Greater(t, dx[0], dx[len(dx)-1])
		case Centered:
			assert.True(t, near(dx[0], dx[len(dx)-1]))
			assert.Greater(t, dx[len(dx)/2], dx[0])
		}
	}
	{ // Maximum cell dimension caps growth
		dx, err := Interval{Min: 0, Max: 10, MinCellDim: 0.01, MaxCellDim: 0.5, GrowthCoeff: 2, Growth: Forward}.Widths(0)
		require.NoError(t, err)
		for _, w := range dx {
			assert.LessOrEqual(t, w, 0.5*(1+1.e-12))
		}
	}
	{ // The boundary cell keeps the minimum dimension and growth stays within the coefficient
		for _, max := range []float64{1, 10, 0.07} {
			dx, err := Interval{Min: 0, Max: max, MinCellDim: 0.02, GrowthCoeff: 1.5, Growth: Forward}.Widths(0)
			require.NoError(t, err)
			assert.InDelta(t, 0.02, dx[0], 1.e-12, "max %g", max)
			m := FromDividers(append([]float64{0}, cumulative(dx)...))
			assert.LessOrEqual(t, m.MaxGrowthRatio(), 1.5*(1+1.e-9), "max %g", max)
			assert.True(t, near(max, m.Max()))
		}
	}
	{ // Too short to grow: equal cells no smaller than the minimum
		dx, err := Interval{Min: 0, Max: 0.03, MinCellDim: 0.02, GrowthCoeff: 1.5, Growth: Forward}.Widths(0)
		require.NoError(t, err)
		assert.Equal(t, 1, len(dx))
		assert.True(t, near(0.03, dx[0]))
	}
}

func cumulative(dx []float64) (x []float64) {
	var sum float64
	for _, w := range dx {
		sum += w
		x = append(x, sum)
	}
	return
}

func TestMeshConfigurationErrors(t *testing.T) {
	var bad = []Interval{
		{Min: 1, Max: 1, MinCellDim: 0.1, GrowthCoeff: 1.5},
		{Min: 0, Max: 1, MinCellDim: 0, GrowthCoeff: 1.5},
		{Min: 0, Max: 1, MinCellDim: 0.1, GrowthCoeff: 0.9},
		{Min: 0, Max: 1, MinCellDim: 0.1, MaxCellDim: 0.05, GrowthCoeff: 1.5},
		// Growth of 1 cannot reach the far extent within the cell budget
		{Min: 0, Max: 100, MinCellDim: 0.001, GrowthCoeff: 1, Growth: Forward},
	}
	for _, iv := range bad {
		_, err := NewMesh([]Interval{iv}, 1000)
		assert.True(t, errors.Is(err, types.ErrConfiguration), "%+v", iv)
	}
	{ // Non contiguous
		_, err := NewMesh([]Interval{
			{Min: 0, Max: 1, MinCellDim: 0.1, GrowthCoeff: 1},
			{Min: 1.5, Max: 2, MinCellDim: 0.1, GrowthCoeff: 1},
		}, 0)
		assert.ErrorIs(t, err, types.ErrConfiguration)
	}
	{
		_, err := NewMesh(nil, 0)
		assert.ErrorIs(t, err, types.ErrConfiguration)
	}
}

func TestMeshConcatenation(t *testing.T) {
	var (
		intervals = []Interval{
			{Min: -5, Max: 0, MinCellDim: 0.05, GrowthCoeff: 1.5, Growth: Backward},
			{Min: 0, Max: 0.2, MinCellDim: 0.05, GrowthCoeff: 1.5, Growth: Centered},
			{Min: 0.2, Max: 10, MinCellDim: 0.05, GrowthCoeff: 1.5, Growth: Forward},
		}
	)
	m, err := NewMesh(intervals, 0)
	require.NoError(t, err)
	checkMesh(t, m, -5, 10)
	for _, x := range []float64{-5, 0, 0.2, 10} {
		_, ok := m.DividerIndex(x)
		assert.True(t, ok, "interval end %g is a divider", x)
	}
	_, ok := m.DividerIndex(0.123456)
	assert.False(t, ok)
	assert.LessOrEqual(t, m.MaxGrowthRatio(), 1.5*(1+1.e-9))
	for i, w := range m.Deltas {
		assert.GreaterOrEqual(t, w, 0.05*(1-1.e-12), "cell %d", i)
	}
	{ // Rebuilding with a moved outer edge leaves the inner intervals untouched
		intervals[2].Max = 30
		m2, err := NewMesh(intervals, 0)
		require.NoError(t, err)
		i0, _ := m.DividerIndex(0.2)
		for i := 0; i <= i0; i++ {
			assert.Equal(t, m.Dividers[i], m2.Dividers[i])
		}
		assert.False(t, m.Equal(m2))
		assert.True(t, m.Equal(m))
	}
}

func TestMeshIndexLookup(t *testing.T) {
	m := NewUniformMesh(0, 8, 8) // centers at 0.5, 1.5, ... 7.5
	checkMesh(t, m, 0, 8)
	assert.Equal(t, 0, m.NearestIndex(-1))
	assert.Equal(t, 7, m.NearestIndex(20))
	assert.Equal(t, 3, m.NearestIndex(3.2))
	assert.Equal(t, 3, m.NearestIndex(3.9))
	assert.Equal(t, 4, m.NearestIndex(4.1))

	// Previous and next are strict about an exact center hit
	assert.Equal(t, 2, m.PreviousIndex(3.5))
	assert.Equal(t, 4, m.NextIndex(3.5))
	assert.Equal(t, 3, m.PreviousIndex(3.6))
	assert.Equal(t, 4, m.NextIndex(3.6))
	assert.Equal(t, 0, m.PreviousIndex(0))
	assert.Equal(t, 7, m.NextIndex(7.9))

	iMin, iMax, ok := m.IndexRange(2, 5)
	assert.True(t, ok)
	assert.Equal(t, [2]int{2, 4}, [2]int{iMin, iMax})
	iMin, iMax, ok = m.IndexRange(0.5, 1.5)
	assert.True(t, ok)
	assert.Equal(t, [2]int{0, 1}, [2]int{iMin, iMax})
	_, _, ok = m.IndexRange(2.6, 3.4)
	assert.False(t, ok)
}
