// Package tuning implements Ziegler-Nichols PID tuning, both the
// open-loop reaction-curve method and the closed-loop ultimate-gain
// method.
//
// The classic reaction-curve procedure reads a tangent line off a plotted
// step response by hand. Here the tangent is fitted automatically at the
// point of maximum slope of the sampled response; results therefore differ
// slightly from a hand-drawn construction.
package tuning

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/ctrlab/internal/freq"
	"github.com/san-kum/ctrlab/internal/tf"
)

// Domain errors for tuning.
var (
	// ErrTooFewSamples indicates a response too short to fit a tangent.
	ErrTooFewSamples = errors.New("tuning: need at least 5 samples")

	// ErrFlatResponse indicates a response with no usable slope.
	ErrFlatResponse = errors.New("tuning: response has no rising slope")

	// ErrNoUltimateGain indicates the loop never reaches -180 degrees, so
	// no ultimate gain exists.
	ErrNoUltimateGain = errors.New("tuning: no phase crossover, ultimate gain undefined")
)

// PIDGains holds parallel-form controller gains.
type PIDGains struct {
	Kp float64
	Ki float64
	Kd float64
}

// Controller builds the transfer function of the tuned controller.
func (g PIDGains) Controller() *tf.TransferFunction {
	return tf.PID(g.Kp, g.Ki, g.Kd)
}

// StepFit is the tangent construction on a step response: the line through
// the steepest point, its axis crossing (dead time L), and its slope R.
type StepFit struct {
	DeadTime   float64 // L: where the tangent crosses the initial value
	Rate       float64 // R: maximum slope
	AtTime     float64 // time of the steepest point
	FinalValue float64
}

// FitTangent fits the maximum-slope tangent to a sampled step response.
// The derivative uses second-order central differences with one-sided
// stencils at the ends.
func FitTangent(times, output []float64) (StepFit, error) {
	n := len(times)
	if n < 5 || len(output) != n {
		return StepFit{}, ErrTooFewSamples
	}

	deriv := derivative(times, output)

	maxIdx := 0
	for i, d := range deriv {
		if d > deriv[maxIdx] {
			maxIdx = i
		}
	}
	r := deriv[maxIdx]
	if r <= 0 {
		return StepFit{}, ErrFlatResponse
	}

	y0 := output[0]
	// Tangent: y = output[maxIdx] + R*(t - times[maxIdx]); dead time is
	// where it returns to the initial value.
	l := times[maxIdx] - (output[maxIdx]-y0)/r
	if l < 0 {
		l = 0
	}

	return StepFit{
		DeadTime:   l,
		Rate:       r,
		AtTime:     times[maxIdx],
		FinalValue: output[n-1],
	}, nil
}

// StepResponse applies the Ziegler-Nichols reaction-curve table to a
// sampled open-loop step response:
//
//	Kp = 1.2/(R*L), Ti = 2L, Td = L/2
func StepResponse(times, output []float64) (PIDGains, StepFit, error) {
	fit, err := FitTangent(times, output)
	if err != nil {
		return PIDGains{}, StepFit{}, err
	}
	if fit.DeadTime <= 0 {
		return PIDGains{}, fit, fmt.Errorf("%w: zero dead time", ErrFlatResponse)
	}

	kp := 1.2 / (fit.Rate * fit.DeadTime)
	ti := 2 * fit.DeadTime
	td := 0.5 * fit.DeadTime
	return PIDGains{Kp: kp, Ki: kp / ti, Kd: kp * td}, fit, nil
}

// Ultimate applies the Ziegler-Nichols ultimate-gain table. The ultimate
// gain Ku comes from the gain margin, the ultimate period Tu from the
// phase-crossover frequency:
//
//	Ku = 10^(GM/20), Tu = 2*pi/w180
//	Kp = 0.6*Ku, Ti = Tu/2, Td = Tu/8
func Ultimate(g *tf.TransferFunction, sweep freq.Sweep) (PIDGains, float64, float64, error) {
	m, err := freq.MarginsOf(g, sweep)
	if err != nil {
		return PIDGains{}, 0, 0, err
	}
	if !m.HasGainMargin {
		return PIDGains{}, 0, 0, ErrNoUltimateGain
	}

	ku := math.Pow(10, m.GainMarginDB/20)
	tu := 2 * math.Pi / m.PhaseCrossover

	kp := 0.6 * ku
	ti := tu / 2
	td := tu / 8
	return PIDGains{Kp: kp, Ki: kp / ti, Kd: kp * td}, ku, tu, nil
}

// derivative is a second-order finite difference for possibly non-uniform
// sample spacing.
func derivative(xs, ys []float64) []float64 {
	n := len(xs)
	out := make([]float64, n)
	for i := 1; i < n-1; i++ {
		out[i] = (ys[i+1] - ys[i-1]) / (xs[i+1] - xs[i-1])
	}
	out[0] = (-3*ys[0] + 4*ys[1] - ys[2]) / (xs[2] - xs[0])
	out[n-1] = (3*ys[n-1] - 4*ys[n-2] + ys[n-3]) / (xs[n-1] - xs[n-3])
	return out
}
