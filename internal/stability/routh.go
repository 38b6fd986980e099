// Package stability implements the Routh-Hurwitz criterion: an algebraic
// left-half-plane test on denominator coefficients that needs no explicit
// root finding.
package stability

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Class is a stability classification.
type Class int

const (
	Stable Class = iota
	Marginal
	Unstable
)

func (c Class) String() string {
	switch c {
	case Stable:
		return "stable"
	case Marginal:
		return "marginally stable"
	case Unstable:
		return "unstable"
	default:
		return "unknown"
	}
}

// DefaultTol is the tolerance for deciding a coefficient or minor sits on
// the stability boundary; exact comparisons misclassify critical-gain cases
// perturbed by floating-point noise.
const DefaultTol = 1e-9

// ErrDegree indicates a denominator of degree below one.
var ErrDegree = errors.New("stability: denominator degree must be at least 1")

// Result carries the classification plus the evidence behind it.
type Result struct {
	Class Class
	// Index identifies the offending coefficient (CoefficientFailure) or
	// the first non-positive leading principal minor (MinorFailure),
	// counted from 1. It is 0 for stable systems.
	Index int
	// CoefficientFailure is set when the fast sign test already decided.
	CoefficientFailure bool
	// Minors holds the leading principal minor determinants of the Hurwitz
	// matrix, det(H_1)..det(H_m). Empty when the sign test short-circuits.
	Minors []float64
}

// HurwitzMatrix builds the m x m Hurwitz matrix for the denominator
// a[0] + a[1]*s + ... + a[m]*s^m (constant term first):
//
//	H[i][j] = a[2j - i + 1], zero where the index falls outside 0..m.
func HurwitzMatrix(den []float64) (*mat.Dense, error) {
	m := len(den) - 1
	if m < 1 {
		return nil, ErrDegree
	}
	h := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			k := 2*j - i + 1
			if k >= 0 && k <= m {
				h.Set(i, j, den[k])
			}
		}
	}
	return h, nil
}

// RouthHurwitz classifies the polynomial with DefaultTol.
func RouthHurwitz(den []float64) (Result, error) {
	return RouthHurwitzTol(den, DefaultTol)
}

// RouthHurwitzTol classifies the denominator a[0]..a[m], constant term
// first. The sign test runs first: any coefficient <= 0 is an immediate
// failure, reported with its index. Otherwise the leading principal minors
// of the Hurwitz matrix decide: a minor below -tol fails, minors within tol
// of zero mark the system marginally stable, and all-positive minors mark
// it stable.
func RouthHurwitzTol(den []float64, tol float64) (Result, error) {
	m := len(den) - 1
	if m < 1 {
		return Result{}, ErrDegree
	}
	if math.Abs(den[m]) <= tol {
		return Result{}, fmt.Errorf("stability: leading coefficient a[%d] is zero", m)
	}

	// Hurwitz assumes a positive leading coefficient; flip the whole
	// polynomial if needed (the roots are unchanged).
	a := make([]float64, len(den))
	copy(a, den)
	if a[m] < 0 {
		for i := range a {
			a[i] = -a[i]
		}
	}

	for i, c := range a {
		if c <= tol {
			return Result{Class: Unstable, Index: i, CoefficientFailure: true}, nil
		}
	}

	h, err := HurwitzMatrix(a)
	if err != nil {
		return Result{}, err
	}

	minors := make([]float64, m)
	marginalAt := 0
	for k := 1; k <= m; k++ {
		d := mat.Det(h.Slice(0, k, 0, k))
		minors[k-1] = d
		if d < -tol {
			return Result{Class: Unstable, Index: k, Minors: minors[:k]}, nil
		}
		if math.Abs(d) <= tol && marginalAt == 0 {
			marginalAt = k
		}
	}
	if marginalAt != 0 {
		return Result{Class: Marginal, Index: marginalAt, Minors: minors}, nil
	}
	return Result{Class: Stable, Minors: minors}, nil
}
