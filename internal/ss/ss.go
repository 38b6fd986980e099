// Package ss provides single-input single-output state-space realizations
//
//	x'(t) = A x(t) + B u(t)
//	y(t)  = C x(t) + D u(t)
//
// built from transfer functions in controllable canonical form, plus
// eigenvalue-based stability classification.
package ss

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ctrlab/internal/poly"
	"github.com/san-kum/ctrlab/internal/stability"
	"github.com/san-kum/ctrlab/internal/tf"
)

// Domain errors for state-space construction.
var (
	// ErrImproper indicates deg(num) > deg(den); no state-space
	// realization exists.
	ErrImproper = errors.New("ss: transfer function is not proper")

	// ErrDelayed indicates a pure time delay, which has no finite-order
	// realization.
	ErrDelayed = errors.New("ss: delayed systems have no finite realization")

	// ErrStatic indicates a degree-zero denominator (no dynamics).
	ErrStatic = errors.New("ss: system has no dynamic states")
)

// Model is a SISO state-space system. A is n x n, B is n x 1, C is 1 x n,
// D is the scalar feedthrough.
type Model struct {
	A *mat.Dense
	B *mat.Dense
	C *mat.Dense
	D float64
}

// New builds a model after checking dimensions.
func New(a, b, c *mat.Dense, d float64) (*Model, error) {
	n, m := a.Dims()
	if n != m {
		return nil, fmt.Errorf("ss: A must be square, got %dx%d", n, m)
	}
	if rb, cb := b.Dims(); rb != n || cb != 1 {
		return nil, fmt.Errorf("ss: B must be %dx1, got %dx%d", n, rb, cb)
	}
	if rc, cc := c.Dims(); rc != 1 || cc != n {
		return nil, fmt.Errorf("ss: C must be 1x%d, got %dx%d", n, rc, cc)
	}
	return &Model{A: a, B: b, C: c, D: d}, nil
}

// FromTransferFunction realizes a proper rational transfer function in
// controllable canonical form. The denominator is normalized monic; a
// biproper system is split into feedthrough D plus a strictly proper
// remainder first.
func FromTransferFunction(g *tf.TransferFunction) (*Model, error) {
	if g.Delay != 0 {
		return nil, ErrDelayed
	}
	if !g.IsProper() {
		return nil, ErrImproper
	}
	n := g.Den.Degree()
	if n == 0 {
		return nil, ErrStatic
	}

	lead := g.Den[n]
	den := g.Den.Monic()
	num := g.Num.Scale(1 / lead)

	d := 0.0
	if num.Degree() == n {
		d = num[n]
		num = num.Sub(den.Scale(d))
	}

	a := mat.NewDense(n, n, nil)
	for i := 0; i < n-1; i++ {
		a.Set(i, i+1, 1)
	}
	for j := 0; j < n; j++ {
		a.Set(n-1, j, -den[j])
	}

	b := mat.NewDense(n, 1, nil)
	b.Set(n-1, 0, 1)

	c := mat.NewDense(1, n, nil)
	for j := 0; j <= num.Degree() && j < n; j++ {
		c.Set(0, j, num[j])
	}

	return &Model{A: a, B: b, C: c, D: d}, nil
}

// Order returns the state dimension.
func (m *Model) Order() int {
	n, _ := m.A.Dims()
	return n
}

// Eigenvalues returns the eigenvalues of A.
func (m *Model) Eigenvalues() ([]complex128, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(m.A, mat.EigenNone); !ok {
		return nil, fmt.Errorf("ss: eigenvalue factorization failed for order %d", m.Order())
	}
	vals := make([]complex128, m.Order())
	eig.Values(vals)
	return vals, nil
}

// Classify applies the eigenvalue stability rule: every eigenvalue strictly
// in the left half plane is stable, a maximum real part on the imaginary
// axis (within tol) is marginal, anything in the right half plane is
// unstable.
func (m *Model) Classify(tol float64) (stability.Class, error) {
	eigs, err := m.Eigenvalues()
	if err != nil {
		return stability.Unstable, err
	}
	return ClassifyEigenvalues(eigs, tol), nil
}

// ClassifyEigenvalues classifies a precomputed spectrum. An empty
// spectrum has no modes to diverge and classifies as stable.
func ClassifyEigenvalues(eigs []complex128, tol float64) stability.Class {
	if len(eigs) == 0 {
		return stability.Stable
	}
	maxRe := real(eigs[0])
	for _, e := range eigs[1:] {
		if real(e) > maxRe {
			maxRe = real(e)
		}
	}
	switch {
	case maxRe < -tol:
		return stability.Stable
	case maxRe <= tol:
		return stability.Marginal
	default:
		return stability.Unstable
	}
}

// faddeev runs the Faddeev-LeVerrier recursion, returning the monic
// characteristic polynomial of A (ascending) and the auxiliary matrices
// M_1..M_n with adj(sI - A) = sum_k s^(n-k) M_k. Real arithmetic only.
func (m *Model) faddeev() (poly.Polynomial, []*mat.Dense) {
	n := m.Order()
	c := make([]float64, n+1)
	c[n] = 1

	ident := identity(n)
	aux := make([]*mat.Dense, n)
	am := mat.NewDense(n, n, nil)

	work := mat.NewDense(n, n, nil)
	work.Copy(ident)
	for k := 1; k <= n; k++ {
		aux[k-1] = mat.DenseCopyOf(work)
		am.Mul(m.A, work)
		c[n-k] = -mat.Trace(am) / float64(k)
		if k < n {
			// M_{k+1} = A*M_k + c[n-k]*I
			work.Copy(am)
			var scaled mat.Dense
			scaled.Scale(c[n-k], ident)
			work.Add(work, &scaled)
		}
	}
	return poly.Polynomial(c), aux
}

// CharPoly computes det(sI - A) as an ascending monic polynomial.
func (m *Model) CharPoly() poly.Polynomial {
	c, _ := m.faddeev()
	return c
}

// Transfer recovers G(s) = C adj(sI-A) B / det(sI-A) + D, inverting
// FromTransferFunction up to the monic scaling of the denominator.
func (m *Model) Transfer() (*tf.TransferFunction, error) {
	den, aux := m.faddeev()

	n := m.Order()
	num := make([]float64, n+1)
	for k := 1; k <= n; k++ {
		// Coefficient of s^(n-k) in C adj(sI-A) B.
		var ca, cab mat.Dense
		ca.Mul(m.C, aux[k-1])
		cab.Mul(&ca, m.B)
		num[n-k] = cab.At(0, 0)
	}
	if m.D != 0 {
		for j := 0; j <= n; j++ {
			num[j] += m.D * den[j]
		}
	}

	numPoly, err := poly.New(num...)
	if err != nil {
		return nil, fmt.Errorf("ss: zero numerator: %w", err)
	}
	return &tf.TransferFunction{Num: numPoly, Den: den}, nil
}

// Derivative computes x' = A x + B u into dst.
func (m *Model) Derivative(dst, x []float64, u float64) {
	n := m.Order()
	for i := 0; i < n; i++ {
		acc := m.B.At(i, 0) * u
		for j := 0; j < n; j++ {
			acc += m.A.At(i, j) * x[j]
		}
		dst[i] = acc
	}
}

// Output computes y = C x + D u.
func (m *Model) Output(x []float64, u float64) float64 {
	y := m.D * u
	for j := 0; j < m.Order(); j++ {
		y += m.C.At(0, j) * x[j]
	}
	return y
}

func identity(n int) *mat.Dense {
	id := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		id.Set(i, i, 1)
	}
	return id
}
