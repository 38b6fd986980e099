// Package sim produces time responses of state-space models with a
// fixed-step RK4 integrator. It exists so step-response lessons and
// step-response PID tuning work end to end; it is not a general ODE
// solver.
package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/ctrlab/internal/ss"
)

// Domain errors for simulation runs.
var (
	// ErrStep indicates a non-positive step size or duration.
	ErrStep = errors.New("sim: dt and duration must be positive")

	// ErrDiverged indicates the state left the representable range.
	ErrDiverged = errors.New("sim: state diverged (NaN or Inf)")
)

// Input is a scalar input signal u(t).
type Input func(t float64) float64

// Step is the unit step input.
func Step(t float64) float64 { return 1 }

// Result is a sampled time response.
type Result struct {
	Times  []float64
	Output []float64
	States [][]float64
}

// rk4 holds scratch state so a run allocates the stage buffers once.
type rk4 struct {
	k1, k2, k3, k4 []float64
	scratch        []float64
}

func newRK4(n int) *rk4 {
	return &rk4{
		k1:      make([]float64, n),
		k2:      make([]float64, n),
		k3:      make([]float64, n),
		k4:      make([]float64, n),
		scratch: make([]float64, n),
	}
}

func (r *rk4) step(m *ss.Model, u Input, x []float64, t, dt float64) []float64 {
	n := len(x)

	m.Derivative(r.k1, x, u(t))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	m.Derivative(r.k2, r.scratch, u(t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	m.Derivative(r.k3, r.scratch, u(t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	m.Derivative(r.k4, r.scratch, u(t+dt))

	next := make([]float64, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		next[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return next
}

// Simulate integrates x' = Ax + Bu from a zero initial state and records
// y = Cx + Du at every step.
func Simulate(m *ss.Model, u Input, dt, duration float64) (*Result, error) {
	return simulate(m, u, make([]float64, m.Order()), dt, duration)
}

// StepResponse is Simulate with a unit step input.
func StepResponse(m *ss.Model, dt, duration float64) (*Result, error) {
	return Simulate(m, Step, dt, duration)
}

// ImpulseResponse integrates the unforced system from x(0+) = B, which is
// the state a unit impulse deposits.
func ImpulseResponse(m *ss.Model, dt, duration float64) (*Result, error) {
	x0 := make([]float64, m.Order())
	for i := range x0 {
		x0[i] = m.B.At(i, 0)
	}
	zero := func(t float64) float64 { return 0 }
	return simulate(m, zero, x0, dt, duration)
}

func simulate(m *ss.Model, u Input, x0 []float64, dt, duration float64) (*Result, error) {
	if dt <= 0 || duration <= 0 {
		return nil, ErrStep
	}

	steps := int(duration / dt)
	res := &Result{
		Times:  make([]float64, 0, steps+1),
		Output: make([]float64, 0, steps+1),
		States: make([][]float64, 0, steps+1),
	}

	integ := newRK4(len(x0))
	x := x0
	t := 0.0
	record := func() {
		res.Times = append(res.Times, t)
		res.Output = append(res.Output, m.Output(x, u(t)))
		xc := make([]float64, len(x))
		copy(xc, x)
		res.States = append(res.States, xc)
	}
	record()

	for i := 0; i < steps; i++ {
		x = integ.step(m, u, x, t, dt)
		t = float64(i+1) * dt
		for _, v := range x {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return res, fmt.Errorf("%w at t=%g", ErrDiverged, t)
			}
		}
		record()
	}
	return res, nil
}
