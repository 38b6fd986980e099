// Package poly provides real-coefficient polynomial algebra for
// transfer-function work.
//
// Coefficients are stored ascending: p(s) = c[0] + c[1]*s + ... + c[n]*s^n.
// The leading coefficient of a valid Polynomial is always nonzero.
package poly

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Domain errors for polynomial construction and root finding.
var (
	// ErrNoCoefficients indicates an empty coefficient sequence.
	ErrNoCoefficients = errors.New("poly: no coefficients")

	// ErrZeroPolynomial indicates all coefficients are zero.
	ErrZeroPolynomial = errors.New("poly: zero polynomial")
)

// Tol is the tolerance used when trimming leading coefficients and
// comparing against zero.
const Tol = 1e-12

// Polynomial holds coefficients in ascending order, constant term first.
type Polynomial []float64

// New builds a polynomial from ascending coefficients, trimming trailing
// zeros so the leading coefficient is nonzero.
func New(coeffs ...float64) (Polynomial, error) {
	if len(coeffs) == 0 {
		return nil, ErrNoCoefficients
	}
	end := len(coeffs)
	for end > 1 && math.Abs(coeffs[end-1]) <= Tol {
		end--
	}
	if end == 1 && math.Abs(coeffs[0]) <= Tol {
		return nil, ErrZeroPolynomial
	}
	p := make(Polynomial, end)
	copy(p, coeffs[:end])
	return p, nil
}

// MustNew is New for statically known coefficients; it panics on error.
func MustNew(coeffs ...float64) Polynomial {
	p, err := New(coeffs...)
	if err != nil {
		panic(err)
	}
	return p
}

// Degree returns the polynomial degree.
func (p Polynomial) Degree() int {
	return len(p) - 1
}

// Eval evaluates the polynomial at a complex argument using Horner's rule.
func (p Polynomial) Eval(s complex128) complex128 {
	var acc complex128
	for i := len(p) - 1; i >= 0; i-- {
		acc = acc*s + complex(p[i], 0)
	}
	return acc
}

// EvalReal evaluates the polynomial at a real argument.
func (p Polynomial) EvalReal(x float64) float64 {
	var acc float64
	for i := len(p) - 1; i >= 0; i-- {
		acc = acc*x + p[i]
	}
	return acc
}

// Add returns p + q.
func (p Polynomial) Add(q Polynomial) Polynomial {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	out := make([]float64, n)
	for i := range out {
		if i < len(p) {
			out[i] += p[i]
		}
		if i < len(q) {
			out[i] += q[i]
		}
	}
	return normalize(out)
}

// Sub returns p - q.
func (p Polynomial) Sub(q Polynomial) Polynomial {
	return p.Add(q.Scale(-1))
}

// Mul returns the product p*q (coefficient convolution).
func (p Polynomial) Mul(q Polynomial) Polynomial {
	out := make([]float64, len(p)+len(q)-1)
	for i, a := range p {
		for j, b := range q {
			out[i+j] += a * b
		}
	}
	return normalize(out)
}

// Scale returns k*p.
func (p Polynomial) Scale(k float64) Polynomial {
	out := make([]float64, len(p))
	for i, c := range p {
		out[i] = k * c
	}
	return normalize(out)
}

// Derivative returns dp/ds.
func (p Polynomial) Derivative() Polynomial {
	if len(p) == 1 {
		return Polynomial{0}
	}
	out := make([]float64, len(p)-1)
	for i := 1; i < len(p); i++ {
		out[i-1] = float64(i) * p[i]
	}
	return normalize(out)
}

// Monic returns p scaled so the leading coefficient is 1.
func (p Polynomial) Monic() Polynomial {
	return p.Scale(1 / p[len(p)-1])
}

// Clone returns a copy of p.
func (p Polynomial) Clone() Polynomial {
	c := make(Polynomial, len(p))
	copy(c, p)
	return c
}

// normalize trims trailing near-zero coefficients, keeping at least the
// constant term. The zero polynomial is represented as {0} here; arithmetic
// can legitimately produce it even though New rejects it.
func normalize(coeffs []float64) Polynomial {
	end := len(coeffs)
	for end > 1 && math.Abs(coeffs[end-1]) <= Tol {
		end--
	}
	return Polynomial(coeffs[:end])
}

// IsZero reports whether p is the zero polynomial.
func (p Polynomial) IsZero() bool {
	return len(p) == 1 && math.Abs(p[0]) <= Tol
}

// Roots computes all complex roots as the eigenvalues of the companion
// matrix of the monic polynomial.
func (p Polynomial) Roots() ([]complex128, error) {
	if p.IsZero() {
		return nil, ErrZeroPolynomial
	}
	n := p.Degree()
	if n == 0 {
		return []complex128{}, nil
	}
	monic := p.Monic()

	a := mat.NewDense(n, n, nil)
	for i := 0; i < n-1; i++ {
		a.Set(i, i+1, 1)
	}
	for j := 0; j < n; j++ {
		a.Set(n-1, j, -monic[j])
	}

	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return nil, fmt.Errorf("poly: eigenvalue factorization failed for degree %d", n)
	}
	roots := make([]complex128, n)
	eig.Values(roots)
	return roots, nil
}

// String renders the polynomial in conventional descending-power form.
func (p Polynomial) String() string {
	var b strings.Builder
	first := true
	for i := len(p) - 1; i >= 0; i-- {
		c := p[i]
		if c == 0 && len(p) > 1 {
			continue
		}
		if !first {
			if c >= 0 {
				b.WriteString(" + ")
			} else {
				b.WriteString(" - ")
				c = -c
			}
		} else if c < 0 {
			b.WriteString("-")
			c = -c
		}
		switch i {
		case 0:
			fmt.Fprintf(&b, "%g", c)
		case 1:
			if c == 1 {
				b.WriteString("s")
			} else {
				fmt.Fprintf(&b, "%g*s", c)
			}
		default:
			if c == 1 {
				fmt.Fprintf(&b, "s^%d", i)
			} else {
				fmt.Fprintf(&b, "%g*s^%d", c, i)
			}
		}
		first = false
	}
	if first {
		return "0"
	}
	return b.String()
}
