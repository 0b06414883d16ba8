package report

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/notargets/gokiva/ground"
	"github.com/notargets/gokiva/types"
)

// Record is one row of timestep output. Fluxes are positive into the ground, W/m2, and read zero
// for surface types the foundation does not have.
type Record struct {
	Hour               float64 `csv:"hour"`
	OutdoorTemperature float64 `csv:"outdoor_temperature"`
	IndoorTemperature  float64 `csv:"indoor_temperature"`
	SlabFlux           float64 `csv:"slab_flux"`
	SlabTemperature    float64 `csv:"slab_temperature"`
	WallInteriorFlux   float64 `csv:"wall_interior_flux"`
	WallExteriorFlux   float64 `csv:"wall_exterior_flux"`
	WallTopFlux        float64 `csv:"wall_top_flux"`
	GradeFlux          float64 `csv:"grade_flux"`
	GradeTemperature   float64 `csv:"grade_temperature"`
	DeepGroundFlux     float64 `csv:"deep_ground_flux"`
	FoundationRate     float64 `csv:"foundation_rate"` // Slab and interior wall heat rate, W
	MinTemperature     float64 `csv:"min_temperature"`
	MaxTemperature     float64 `csv:"max_temperature"`
	Cells              int     `csv:"cells"`
}

// NewRecord samples the state committed by the last completed step.
func NewRecord(g *ground.Ground) (r Record) {
	var (
		c    = g.Conditions()
		avg  = g.SurfaceAverage
		flux = func(st types.SurfaceType) float64 { return avg(st).Flux }
	)
	r = Record{
		Hour:               c.Time / 3600,
		OutdoorTemperature: c.OutdoorTemperature,
		IndoorTemperature:  c.IndoorTemperature,
		SlabFlux:           flux(types.SURF_SlabCore),
		SlabTemperature:    avg(types.SURF_SlabCore).Temperature,
		WallInteriorFlux:   flux(types.SURF_WallInterior),
		WallExteriorFlux:   flux(types.SURF_WallExterior),
		WallTopFlux:        flux(types.SURF_WallTop),
		GradeFlux:          flux(types.SURF_Grade),
		GradeTemperature:   avg(types.SURF_Grade).Temperature,
		DeepGroundFlux:     flux(types.SURF_DeepGround),
		FoundationRate:     avg(types.SURF_SlabCore).Rate + avg(types.SURF_SlabPerimeter).Rate + avg(types.SURF_WallInterior).Rate,
		Cells:              g.Domain.NumCells(),
	}
	r.MinTemperature, r.MaxTemperature = g.TemperatureRange()
	return
}

// Writer streams records as CSV, writing the header with the first record.
type Writer struct {
	out    io.Writer
	closer io.Closer
	Rows   int
}

func NewWriter(out io.Writer) *Writer { return &Writer{out: out} }

func Create(filename string) (w *Writer, err error) {
	var file *os.File
	if file, err = os.Create(filename); err != nil {
		return nil, fmt.Errorf("unable to create output file %s: %w", filename, err)
	}
	w = &Writer{out: file, closer: file}
	return
}

func (w *Writer) Write(recs ...Record) (err error) {
	if len(recs) == 0 {
		return
	}
	if w.Rows == 0 {
		err = gocsv.Marshal(recs, w.out)
	} else {
		err = gocsv.MarshalWithoutHeaders(recs, w.out)
	}
	if err != nil {
		return
	}
	w.Rows += len(recs)
	return
}

func (w *Writer) Close() (err error) {
	if w.closer != nil {
		err = w.closer.Close()
		w.closer = nil
	}
	return
}

// ReadRecords parses output written by Writer.
func ReadRecords(in io.Reader) (recs []*Record, err error) {
	err = gocsv.Unmarshal(in, &recs)
	return
}
