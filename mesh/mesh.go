package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/gokiva/types"
	"gonum.org/v1/gonum/floats"
)

type Growth uint8

const (
	Uniform  Growth = iota
	Forward         // fine at Min, coarsening toward Max
	Backward        // fine at Max, coarsening toward Min
	Centered        // fine at both ends
)

var GrowthPrintNames = []string{"Uniform", "Forward", "Backward", "Centered"}

func (g Growth) String() string { return GrowthPrintNames[g] }

const DefaultMaxCells = 2000

// Interval is one segment of an axis with its own grading.
type Interval struct {
	Min, Max    float64
	MinCellDim  float64
	MaxCellDim  float64 // Zero means unbounded
	GrowthCoeff float64
	Growth      Growth
}

func (iv Interval) Length() float64 { return iv.Max - iv.Min }

func (iv Interval) validate() (err error) {
	switch {
	case !(iv.Max > iv.Min):
		err = fmt.Errorf("%w: interval [%g, %g] is empty", types.ErrConfiguration, iv.Min, iv.Max)
	case !(iv.MinCellDim > 0):
		err = fmt.Errorf("%w: minimum cell dimension %g must be positive", types.ErrConfiguration, iv.MinCellDim)
	case iv.GrowthCoeff < 1:
		err = fmt.Errorf("%w: growth coefficient %g is less than 1", types.ErrConfiguration, iv.GrowthCoeff)
	case iv.MaxCellDim != 0 && iv.MaxCellDim < iv.MinCellDim:
		err = fmt.Errorf("%w: maximum cell dimension %g is below minimum %g",
			types.ErrConfiguration, iv.MaxCellDim, iv.MinCellDim)
	}
	return
}

// Widths returns the cell widths of the interval in order from Min to Max.
func (iv Interval) Widths(maxCells int) (dx []float64, err error) {
	if err = iv.validate(); err != nil {
		return
	}
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	L := iv.Length()
	if iv.GrowthCoeff == 1 || iv.Growth == Uniform {
		n := int(math.Max(1, math.Round(L/iv.MinCellDim)))
		if n > maxCells {
			err = fmt.Errorf("%w: uniform interval [%g, %g] needs %d cells, more than the %d allowed; increase the growth coefficient or minimum cell dimension",
				types.ErrConfiguration, iv.Min, iv.Max, n, maxCells)
			return
		}
		dx = make([]float64, n)
		floats.AddConst(L/float64(n), dx)
		return
	}
	switch iv.Growth {
	case Forward:
		dx, err = graded(L, iv, maxCells)
	case Backward:
		if dx, err = graded(L, iv, maxCells); err == nil {
			reverse(dx)
		}
	case Centered:
		var half []float64
		if half, err = graded(L/2, iv, maxCells/2); err != nil {
			return
		}
		dx = make([]float64, 2*len(half))
		copy(dx, half)
		copy(dx[len(half):], half)
		reverse(dx[len(half):])
	}
	return
}

// graded starts at MinCellDim and grows toward the far end, capped at MaxCellDim. The cell count
// is the fewest that reach L at GrowthCoeff; the ratio is then lowered until the cells sum to L,
// so the first cell stays at MinCellDim and no ratio exceeds GrowthCoeff. An interval too short
// for any growth gets equal cells no smaller than MinCellDim.
func graded(L float64, iv Interval, maxCells int) (dx []float64, err error) {
	var (
		m   = iv.MinCellDim
		n   int
		sum float64
	)
	widths := func(r float64, n int, dst []float64) (sum float64) {
		w := m
		for i := 0; i < n; i++ {
			if iv.MaxCellDim > 0 && w > iv.MaxCellDim {
				w = iv.MaxCellDim
			}
			dst[i] = w
			sum += w
			w *= r
		}
		return
	}
	for w := m; sum < L*(1-1.e-12); n++ {
		if n >= maxCells {
			err = fmt.Errorf("%w: interval [%g, %g] needs more than %d cells with growth %g",
				types.ErrConfiguration, iv.Min, iv.Max, maxCells, iv.GrowthCoeff)
			return
		}
		if iv.MaxCellDim > 0 && w > iv.MaxCellDim {
			w = iv.MaxCellDim
		}
		sum += w
		w *= iv.GrowthCoeff
	}
	if float64(n)*m > L*(1+1.e-12) {
		n = int(math.Max(1, math.Floor(L/m*(1+1.e-12))))
		dx = make([]float64, n)
		floats.AddConst(L/float64(n), dx)
		return
	}
	dx = make([]float64, n)
	lo, hi := 1., iv.GrowthCoeff
	for it := 0; it < 200 && hi-lo > 1.e-15*hi; it++ {
		r := 0.5 * (lo + hi)
		if widths(r, n, dx) > L {
			hi = r
		} else {
			lo = r
		}
	}
	sum = widths(lo, n, dx)
	dx[n-1] += L - sum
	return
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

// Mesh is a 1D axis discretization. Centers are midpoints between successive Dividers.
type Mesh struct {
	Dividers []float64
	Centers  []float64
	Deltas   []float64
}

// NewMesh concatenates contiguous intervals into one axis. Interval ends always land on a divider.
func NewMesh(intervals []Interval, maxCells int) (m *Mesh, err error) {
	var (
		w []float64
		d []float64
	)
	if len(intervals) == 0 {
		err = fmt.Errorf("%w: axis has no intervals", types.ErrConfiguration)
		return
	}
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	d = append(d, intervals[0].Min)
	for n, iv := range intervals {
		if n > 0 && math.Abs(iv.Min-intervals[n-1].Max) > 1.e-9*math.Max(1, math.Abs(iv.Min)) {
			err = fmt.Errorf("%w: intervals are not contiguous at %g / %g",
				types.ErrConfiguration, intervals[n-1].Max, iv.Min)
			return
		}
		if w, err = iv.Widths(maxCells - (len(d) - 1)); err != nil {
			return
		}
		pos := iv.Min
		for _, dx := range w[:len(w)-1] {
			pos += dx
			d = append(d, pos)
		}
		d = append(d, iv.Max)
	}
	if len(d)-1 > maxCells {
		err = fmt.Errorf("%w: axis needs %d cells, more than the %d allowed", types.ErrConfiguration, len(d)-1, maxCells)
		return
	}
	m = FromDividers(d)
	return
}

func FromDividers(d []float64) (m *Mesh) {
	n := len(d) - 1
	m = &Mesh{
		Dividers: d,
		Centers:  make([]float64, n),
		Deltas:   make([]float64, n),
	}
	for i := 0; i < n; i++ {
		m.Centers[i] = 0.5 * (d[i] + d[i+1])
		m.Deltas[i] = d[i+1] - d[i]
	}
	return
}

// NewUniformMesh is a single interval of n equal cells.
func NewUniformMesh(min, max float64, n int) *Mesh {
	d := floats.Span(make([]float64, n+1), min, max)
	d[n] = max
	return FromDividers(d)
}

func (m *Mesh) N() int { return len(m.Centers) }

func (m *Mesh) Min() float64 { return m.Dividers[0] }

func (m *Mesh) Max() float64 { return m.Dividers[len(m.Dividers)-1] }

// NearestIndex is the cell whose center is closest to x.
func (m *Mesh) NearestIndex(x float64) int {
	i := sort.SearchFloat64s(m.Centers, x)
	switch {
	case i == 0:
		return 0
	case i == len(m.Centers):
		return i - 1
	case x-m.Centers[i-1] <= m.Centers[i]-x:
		return i - 1
	default:
		return i
	}
}

// PreviousIndex is the last cell whose center is strictly below x, clamped to the mesh.
func (m *Mesh) PreviousIndex(x float64) int {
	i := sort.SearchFloat64s(m.Centers, x) - 1
	if i < 0 {
		return 0
	}
	return i
}

// NextIndex is the first cell whose center is strictly above x, clamped to the mesh.
func (m *Mesh) NextIndex(x float64) int {
	i := sort.Search(len(m.Centers), func(n int) bool { return m.Centers[n] > x })
	if i == len(m.Centers) {
		return i - 1
	}
	return i
}

// IndexRange brackets the cells with centers inside [xMin, xMax]. ok is false when no center
// lies inside the range.
func (m *Mesh) IndexRange(xMin, xMax float64) (iMin, iMax int, ok bool) {
	iMin = sort.SearchFloat64s(m.Centers, xMin)
	iMax = sort.Search(len(m.Centers), func(n int) bool { return m.Centers[n] > xMax }) - 1
	ok = iMin <= iMax
	return
}

// DividerIndex returns the divider equal to x within tolerance.
func (m *Mesh) DividerIndex(x float64) (i int, ok bool) {
	i = sort.SearchFloat64s(m.Dividers, x-1.e-9)
	if i < len(m.Dividers) && math.Abs(m.Dividers[i]-x) <= 1.e-9*math.Max(1, math.Abs(x)) {
		ok = true
	}
	return
}

// MaxGrowthRatio is the largest width ratio between adjacent cells.
func (m *Mesh) MaxGrowthRatio() (r float64) {
	r = 1
	for i := 1; i < len(m.Deltas); i++ {
		a, b := m.Deltas[i-1], m.Deltas[i]
		r = math.Max(r, math.Max(a/b, b/a))
	}
	return
}

// Equal compares divider positions within tolerance.
func (m *Mesh) Equal(o *Mesh) bool {
	if len(m.Dividers) != len(o.Dividers) {
		return false
	}
	for i, d := range m.Dividers {
		if math.Abs(d-o.Dividers[i]) > 1.e-9*math.Max(1, math.Abs(d)) {
			return false
		}
	}
	return true
}
