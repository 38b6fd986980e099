// Package freq computes swept frequency responses (Bode data) and
// gain/phase margins for continuous-time transfer functions.
package freq

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/ctrlab/internal/tf"
)

// Sweep point scales, in the spirit of SPICE AC analysis.
const (
	ScaleLog = "log"
	ScaleLin = "lin"
)

// magFloorDB stands in for -Inf when the response is exactly zero, so a
// transmission zero on the imaginary axis keeps plots and margins finite.
const magFloorDB = -400

// Domain errors for sweeps and margins.
var (
	// ErrSweepRange indicates an empty or inverted frequency range.
	ErrSweepRange = errors.New("freq: invalid sweep range")

	// ErrNoCrossover indicates the sweep never crosses the level the
	// margin is defined at.
	ErrNoCrossover = errors.New("freq: no crossover in sweep range")
)

// Sweep describes a frequency grid in rad/s.
type Sweep struct {
	Start  float64
	Stop   float64
	Points int
	Scale  string
}

// DefaultSweep covers three decades around 1 rad/s.
func DefaultSweep() Sweep {
	return Sweep{Start: 0.01, Stop: 100, Points: 400, Scale: ScaleLog}
}

// Frequencies expands the sweep into a grid.
func (s Sweep) Frequencies() ([]float64, error) {
	if s.Points < 2 || s.Stop <= s.Start {
		return nil, ErrSweepRange
	}
	out := make([]float64, s.Points)
	switch s.Scale {
	case ScaleLin:
		step := (s.Stop - s.Start) / float64(s.Points-1)
		for i := range out {
			out[i] = s.Start + float64(i)*step
		}
	case ScaleLog, "":
		if s.Start <= 0 {
			return nil, fmt.Errorf("%w: log sweep needs a positive start", ErrSweepRange)
		}
		l0 := math.Log10(s.Start)
		l1 := math.Log10(s.Stop)
		step := (l1 - l0) / float64(s.Points-1)
		for i := range out {
			out[i] = math.Pow(10, l0+float64(i)*step)
		}
	default:
		return nil, fmt.Errorf("%w: unknown scale %q", ErrSweepRange, s.Scale)
	}
	return out, nil
}

// Point is one sample of G(jw).
type Point struct {
	Omega    float64
	Response complex128
	MagDB    float64
	PhaseDeg float64 // unwrapped
}

// Response evaluates G(jw) over the grid. Phase is unwrapped into a
// continuous branch anchored at the lowest frequency. A pole on the
// imaginary axis inside the sweep surfaces as tf.ErrPoleAtPoint.
func Response(g *tf.TransferFunction, omegas []float64) ([]Point, error) {
	if len(omegas) == 0 {
		return nil, ErrSweepRange
	}
	points := make([]Point, len(omegas))
	prev := 0.0
	for i, w := range omegas {
		v, err := g.Eval(complex(0, w))
		if err != nil {
			return nil, fmt.Errorf("freq: at omega=%g: %w", w, err)
		}
		phase := cmplx.Phase(v) * 180 / math.Pi
		if i > 0 {
			for phase-prev > 180 {
				phase -= 360
			}
			for phase-prev < -180 {
				phase += 360
			}
		}
		prev = phase
		magDB := 20 * math.Log10(cmplx.Abs(v))
		if math.IsInf(magDB, -1) {
			magDB = magFloorDB
		}
		points[i] = Point{
			Omega:    w,
			Response: v,
			MagDB:    magDB,
			PhaseDeg: phase,
		}
	}
	return points, nil
}

// Margins holds gain and phase margins with their crossover frequencies.
// A missing crossover leaves the corresponding Has flag false.
type Margins struct {
	GainMarginDB   float64
	PhaseCrossover float64 // rad/s where phase = -180
	HasGainMargin  bool

	PhaseMarginDeg float64
	GainCrossover  float64 // rad/s where |G| = 0 dB
	HasPhaseMargin bool
}

// ComputeMargins locates the -180 degree and 0 dB crossings in a swept
// response, interpolating linearly in log10(omega).
func ComputeMargins(points []Point) Margins {
	var m Margins
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]

		if !m.HasGainMargin && crosses(a.PhaseDeg, b.PhaseDeg, -180) {
			t := crossFraction(a.PhaseDeg, b.PhaseDeg, -180)
			m.PhaseCrossover = interpOmega(a.Omega, b.Omega, t)
			magDB := a.MagDB + t*(b.MagDB-a.MagDB)
			m.GainMarginDB = -magDB
			m.HasGainMargin = true
		}

		if !m.HasPhaseMargin && crosses(a.MagDB, b.MagDB, 0) {
			t := crossFraction(a.MagDB, b.MagDB, 0)
			m.GainCrossover = interpOmega(a.Omega, b.Omega, t)
			phase := a.PhaseDeg + t*(b.PhaseDeg-a.PhaseDeg)
			m.PhaseMarginDeg = phase + 180
			m.HasPhaseMargin = true
		}
	}
	return m
}

// MarginsOf sweeps and computes margins in one call.
func MarginsOf(g *tf.TransferFunction, sweep Sweep) (Margins, error) {
	omegas, err := sweep.Frequencies()
	if err != nil {
		return Margins{}, err
	}
	points, err := Response(g, omegas)
	if err != nil {
		return Margins{}, err
	}
	return ComputeMargins(points), nil
}

func crosses(a, b, level float64) bool {
	if a == b {
		return a == level
	}
	return (a-level)*(b-level) <= 0
}

// crossFraction returns where level sits within [a, b]. A segment flat on
// the level counts as crossing at its start.
func crossFraction(a, b, level float64) float64 {
	if b == a {
		return 0
	}
	return (level - a) / (b - a)
}

func interpOmega(w0, w1, t float64) float64 {
	if w0 <= 0 || w1 <= 0 {
		return w0 + t*(w1-w0)
	}
	return math.Pow(10, math.Log10(w0)+t*(math.Log10(w1)-math.Log10(w0)))
}
