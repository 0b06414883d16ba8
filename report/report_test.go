package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/gokiva/boundary"
	"github.com/notargets/gokiva/domain"
	"github.com/notargets/gokiva/ground"
	"github.com/notargets/gokiva/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func column(t *testing.T) *ground.Ground {
	soil := domain.Material{Name: "soil", Conductivity: 1.73, Density: 1842, SpecificHeat: 419}
	f := &domain.Foundation{
		NumberOfDimensions: 1,
		Extents:            domain.NewBox(0, 1, 0, 1, -5, 0),
		Blocks:             []domain.Block{{Name: "soil", Box: domain.NewBox(0, 1, 0, 1, -5, 0), Material: soil}},
		Surfaces: []domain.Surface{
			{Name: "grade", Type: types.SURF_Grade, Orientation: types.ORIENT_ZPos,
				Box: domain.NewBox(0, 1, 0, 1, 0, 0), BoundaryCondition: types.BC_ExteriorTemperature},
			{Name: "deep", Type: types.SURF_DeepGround, Orientation: types.ORIENT_ZNeg,
				Box: domain.NewBox(0, 1, 0, 1, -5, -5), BoundaryCondition: types.BC_ZeroFlux},
		},
		Mesh: domain.DefaultMeshSettings(),
		Soil: soil,
	}
	s := ground.DefaultSettings()
	s.Scheme = types.SCHEME_Implicit
	s.Initialization = types.INIT_Constant
	s.InitialTemperature = 15
	s.AccelPeriods, s.WarmupDays = 0, 0
	g, err := ground.NewGround(f, s)
	require.NoError(t, err)
	t.Cleanup(g.Close)
	return g
}

func TestRecords(t *testing.T) {
	var (
		g   = column(t)
		bcs = boundary.NewBoundaryConditions()
		buf bytes.Buffer
		w   = NewWriter(&buf)
	)
	require.NoError(t, g.Initialize(bcs, 0))
	for n := 0; n < 3; n++ {
		require.NoError(t, g.Calculate(bcs.Resolve(g.Elapsed+3600), 3600))
		require.NoError(t, w.Write(NewRecord(g)))
	}
	assert.Equal(t, 3, w.Rows)
	require.NoError(t, w.Close())
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "hour,outdoor_temperature,indoor_temperature,slab_flux"))

	recs, err := ReadRecords(strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	r := recs[2]
	assert.InDelta(t, 3., r.Hour, 1.e-9)
	assert.Equal(t, 10., r.OutdoorTemperature)
	// Ground at 15 C loses heat to 10 C air
	assert.Less(t, r.GradeFlux, 0.)
	assert.Equal(t, 0., r.SlabFlux)
	assert.Equal(t, 0., r.DeepGroundFlux)
	assert.Greater(t, r.MaxTemperature, r.MinTemperature)
	assert.LessOrEqual(t, r.MaxTemperature, 15.+1.e-3)
	assert.Equal(t, g.Domain.NumCells(), r.Cells)
}

func TestCreate(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out.csv")
	w, err := Create(filename)
	require.NoError(t, err)
	require.NoError(t, w.Write(Record{Hour: 1, GradeFlux: -2}, Record{Hour: 2, GradeFlux: -3}))
	require.NoError(t, w.Write())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	recs, err := ReadRecords(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, -3., recs[1].GradeFlux)
	_, err = Create(filepath.Join(t.TempDir(), "missing", "out.csv"))
	assert.Error(t, err)
}
