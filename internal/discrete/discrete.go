// Package discrete converts continuous-time systems to discrete time via
// zero-order hold and the Tustin bilinear transform.
package discrete

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ctrlab/internal/poly"
	"github.com/san-kum/ctrlab/internal/ss"
	"github.com/san-kum/ctrlab/internal/tf"
)

// Domain errors for discretization.
var (
	// ErrSamplePeriod indicates a non-positive sample period.
	ErrSamplePeriod = errors.New("discrete: sample period must be positive")

	// ErrDelayed indicates a pure time delay; rational discretization does
	// not apply.
	ErrDelayed = errors.New("discrete: delayed systems not supported")
)

// zeroTol decides when a first-order pole sits at the origin and the
// integrator form must be used instead of the closed-form division.
const zeroTol = 1e-12

// ZOHFirstOrder discretizes the scalar system x' = a*x + b*u under a
// zero-order hold with sample period dt:
//
//	ad = exp(a*dt)
//	bd = (b/a)(exp(a*dt) - 1), or b*dt when a = 0 (pole at the origin).
func ZOHFirstOrder(a, b, dt float64) (ad, bd float64, err error) {
	if dt <= 0 {
		return 0, 0, ErrSamplePeriod
	}
	ad = math.Exp(a * dt)
	if math.Abs(a) <= zeroTol {
		// Integrator: the closed form divides by a.
		bd = b * dt
		return ad, bd, nil
	}
	bd = b / a * (ad - 1)
	return ad, bd, nil
}

// ZOH discretizes a state-space model under a zero-order hold. Both
// discrete matrices are read out of a single matrix exponential of the
// augmented block matrix
//
//	exp([[A, B], [0, 0]] * dt) = [[Ad, Bd], [0, I]]
//
// which is exact and does not invert A, so singular A (poles at the
// origin) needs no special case.
func ZOH(m *ss.Model, dt float64) (*ss.Model, error) {
	if dt <= 0 {
		return nil, ErrSamplePeriod
	}
	n := m.Order()

	aug := mat.NewDense(n+1, n+1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			aug.Set(i, j, m.A.At(i, j)*dt)
		}
		aug.Set(i, n, m.B.At(i, 0)*dt)
	}

	var expm mat.Dense
	expm.Exp(aug)

	ad := mat.NewDense(n, n, nil)
	bd := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			ad.Set(i, j, expm.At(i, j))
		}
		bd.Set(i, 0, expm.At(i, n))
	}

	c := mat.NewDense(1, n, nil)
	c.Copy(m.C)
	return ss.New(ad, bd, c, m.D)
}

// Tustin applies the bilinear substitution s = (2/T)(z-1)/(z+1) to a
// rational transfer function and re-collects the result as a ratio of
// polynomials in z (ascending coefficients, constant term first), with the
// denominator normalized monic.
func Tustin(g *tf.TransferFunction, T float64) (*tf.TransferFunction, error) {
	if T <= 0 {
		return nil, ErrSamplePeriod
	}
	if g.Delay != 0 {
		return nil, ErrDelayed
	}

	m := g.Den.Degree()
	if g.Num.Degree() > m {
		m = g.Num.Degree()
	}

	num := substitute(g.Num, m, T)
	den := substitute(g.Den, m, T)
	if den.IsZero() {
		return nil, fmt.Errorf("discrete: tustin denominator collapsed at T=%g", T)
	}

	lead := den[den.Degree()]
	return &tf.TransferFunction{
		Num: num.Scale(1 / lead),
		Den: den.Scale(1 / lead),
	}, nil
}

// substitute expands p((2/T)(z-1)/(z+1)) * (z+1)^m as a polynomial in z.
func substitute(p poly.Polynomial, m int, T float64) poly.Polynomial {
	zm1 := poly.MustNew(-1, 1) // z - 1
	zp1 := poly.MustNew(1, 1)  // z + 1
	k := 2 / T

	acc := poly.Polynomial{0}
	for i, c := range p {
		if c == 0 {
			continue
		}
		term := poly.Polynomial{c * math.Pow(k, float64(i))}
		for range i {
			term = term.Mul(zm1)
		}
		for range m - i {
			term = term.Mul(zp1)
		}
		acc = acc.Add(term)
	}
	return acc
}
