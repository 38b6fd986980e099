// Package tf provides continuous-time transfer functions: construction,
// algebraic composition, and complex-frequency evaluation.
package tf

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/san-kum/ctrlab/internal/poly"
)

// Domain errors for transfer-function operations.
var (
	// ErrPoleAtPoint indicates evaluation at (or numerically at) a
	// denominator root.
	ErrPoleAtPoint = errors.New("tf: evaluation at a pole")

	// ErrDelayMismatch indicates an operation combining systems whose pure
	// delays differ; the result would not be rational.
	ErrDelayMismatch = errors.New("tf: incompatible time delays")

	// ErrDelayNotSupported indicates an operation that requires a purely
	// rational transfer function was called on a delayed one.
	ErrDelayNotSupported = errors.New("tf: operation undefined for delayed systems")
)

// evalTol is the relative tolerance for pole detection during evaluation.
const evalTol = 1e-10

// TransferFunction is a ratio of polynomials in s with an optional pure
// time delay: G(s) = Num(s)/Den(s) * exp(-Delay*s).
type TransferFunction struct {
	Num   poly.Polynomial
	Den   poly.Polynomial
	Delay float64
}

// New builds a transfer function from ascending numerator and denominator
// coefficients (constant term first).
func New(num, den []float64) (*TransferFunction, error) {
	n, err := poly.New(num...)
	if err != nil {
		return nil, fmt.Errorf("tf: numerator: %w", err)
	}
	d, err := poly.New(den...)
	if err != nil {
		return nil, fmt.Errorf("tf: denominator: %w", err)
	}
	return &TransferFunction{Num: n, Den: d}, nil
}

// MustNew is New for statically known coefficients; it panics on error.
func MustNew(num, den []float64) *TransferFunction {
	g, err := New(num, den)
	if err != nil {
		panic(err)
	}
	return g
}

// WithDelay returns a copy of g carrying a pure time delay in seconds.
func (g *TransferFunction) WithDelay(d float64) *TransferFunction {
	return &TransferFunction{Num: g.Num.Clone(), Den: g.Den.Clone(), Delay: d}
}

// IsProper reports whether deg(Den) >= deg(Num).
func (g *TransferFunction) IsProper() bool {
	return g.Den.Degree() >= g.Num.Degree()
}

// IsStrictlyProper reports whether deg(Den) > deg(Num).
func (g *TransferFunction) IsStrictlyProper() bool {
	return g.Den.Degree() > g.Num.Degree()
}

// Eval evaluates G at a complex argument s. Evaluation at a denominator
// root is reported as ErrPoleAtPoint rather than returning an infinity.
func (g *TransferFunction) Eval(s complex128) (complex128, error) {
	den := g.Den.Eval(s)

	// Compare |den(s)| against the magnitude the denominator terms would
	// have without cancellation, so tiny legitimate values still pass.
	scale := 0.0
	pow := complex(1, 0)
	for _, c := range g.Den {
		if m := cmplx.Abs(complex(c, 0) * pow); m > scale {
			scale = m
		}
		pow *= s
	}
	if scale == 0 {
		scale = 1
	}
	if cmplx.Abs(den) <= evalTol*scale {
		return 0, fmt.Errorf("%w: s = %v", ErrPoleAtPoint, s)
	}

	out := g.Num.Eval(s) / den
	if g.Delay != 0 {
		out *= cmplx.Exp(-complex(g.Delay, 0) * s)
	}
	return out, nil
}

// Mul returns the series composition g*h. Delays add.
func (g *TransferFunction) Mul(h *TransferFunction) *TransferFunction {
	return &TransferFunction{
		Num:   g.Num.Mul(h.Num),
		Den:   g.Den.Mul(h.Den),
		Delay: g.Delay + h.Delay,
	}
}

// Add returns the parallel composition g+h over the common denominator.
// Both systems must carry the same delay.
func (g *TransferFunction) Add(h *TransferFunction) (*TransferFunction, error) {
	if g.Delay != h.Delay {
		return nil, ErrDelayMismatch
	}
	num := g.Num.Mul(h.Den).Add(h.Num.Mul(g.Den))
	return &TransferFunction{
		Num:   num,
		Den:   g.Den.Mul(h.Den),
		Delay: g.Delay,
	}, nil
}

// Feedback closes a unity negative-feedback loop with gain k in the
// feedback path:
//
//	G_cl(s) = N(s) / (D(s) + k*N(s))
//
// With k = 0 the open-loop system is returned unchanged. Delayed systems
// are rejected since the closed loop would not be rational.
func (g *TransferFunction) Feedback(k float64) (*TransferFunction, error) {
	if g.Delay != 0 {
		return nil, ErrDelayNotSupported
	}
	den := g.Den.Add(g.Num.Scale(k))
	if den.IsZero() {
		return nil, fmt.Errorf("tf: feedback with k=%g cancels the denominator", k)
	}
	return &TransferFunction{Num: g.Num.Clone(), Den: den}, nil
}

// Poles returns the roots of the denominator.
func (g *TransferFunction) Poles() ([]complex128, error) {
	return g.Den.Roots()
}

// Zeros returns the roots of the numerator.
func (g *TransferFunction) Zeros() ([]complex128, error) {
	if g.Num.Degree() == 0 {
		return []complex128{}, nil
	}
	return g.Num.Roots()
}

// DCGain returns G(0), or an error when there is a pole at the origin.
func (g *TransferFunction) DCGain() (float64, error) {
	v, err := g.Eval(0)
	if err != nil {
		return 0, err
	}
	return real(v), nil
}

func (g *TransferFunction) String() string {
	s := fmt.Sprintf("(%s) / (%s)", g.Num, g.Den)
	if g.Delay != 0 {
		s += fmt.Sprintf(" * exp(-%g*s)", g.Delay)
	}
	return s
}
