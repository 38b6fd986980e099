package poly

import (
	"math"
	"math/cmplx"
	"sort"
	"testing"
)

func TestNewTrimsTrailingZeros(t *testing.T) {
	p, err := New(1, 2, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Degree() != 1 {
		t.Errorf("expected degree 1, got %d", p.Degree())
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(); err != ErrNoCoefficients {
		t.Errorf("expected ErrNoCoefficients, got %v", err)
	}
	if _, err := New(0, 0, 0); err != ErrZeroPolynomial {
		t.Errorf("expected ErrZeroPolynomial, got %v", err)
	}
}

func TestEvalHorner(t *testing.T) {
	// p(s) = 1 + 2s + 3s^2
	p := MustNew(1, 2, 3)

	got := p.EvalReal(2)
	if got != 17 {
		t.Errorf("expected 17, got %f", got)
	}

	// p(j) = 1 + 2j - 3 = -2 + 2j
	c := p.Eval(complex(0, 1))
	if math.Abs(real(c)+2) > 1e-12 || math.Abs(imag(c)-2) > 1e-12 {
		t.Errorf("expected -2+2i, got %v", c)
	}
}

func TestMulConvolution(t *testing.T) {
	// (1+s)(1+s) = 1 + 2s + s^2
	p := MustNew(1, 1)
	q := p.Mul(p)
	expected := []float64{1, 2, 1}
	if len(q) != len(expected) {
		t.Fatalf("expected %d coefficients, got %d", len(expected), len(q))
	}
	for i := range expected {
		if math.Abs(q[i]-expected[i]) > 1e-12 {
			t.Errorf("coefficient %d: expected %f, got %f", i, expected[i], q[i])
		}
	}
}

func TestAddCancellation(t *testing.T) {
	p := MustNew(1, 0, 2)
	q := MustNew(0, 0, -2)
	r := p.Add(q)
	if r.Degree() != 0 {
		t.Errorf("expected degree 0 after cancellation, got %d", r.Degree())
	}
	if math.Abs(r[0]-1) > 1e-12 {
		t.Errorf("expected constant 1, got %f", r[0])
	}
}

func TestDerivative(t *testing.T) {
	// d/ds (1 + 2s + 3s^2) = 2 + 6s
	p := MustNew(1, 2, 3)
	d := p.Derivative()
	if d.Degree() != 1 || math.Abs(d[0]-2) > 1e-12 || math.Abs(d[1]-6) > 1e-12 {
		t.Errorf("unexpected derivative: %v", d)
	}

	c := MustNew(5)
	if !c.Derivative().IsZero() {
		t.Error("derivative of constant should be zero")
	}
}

func TestRootsQuadratic(t *testing.T) {
	// (s+1)(s+2) = 2 + 3s + s^2
	p := MustNew(2, 3, 1)
	roots, err := p.Roots()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}

	re := []float64{real(roots[0]), real(roots[1])}
	sort.Float64s(re)
	if math.Abs(re[0]+2) > 1e-9 || math.Abs(re[1]+1) > 1e-9 {
		t.Errorf("expected roots -2, -1, got %v", roots)
	}
	for _, r := range roots {
		if math.Abs(imag(r)) > 1e-9 {
			t.Errorf("expected real roots, got %v", r)
		}
	}
}

func TestRootsComplexPair(t *testing.T) {
	// s^2 + 1 has roots +/- j
	p := MustNew(1, 0, 1)
	roots, err := p.Roots()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range roots {
		if math.Abs(cmplx.Abs(r)-1) > 1e-9 || math.Abs(real(r)) > 1e-9 {
			t.Errorf("expected unit imaginary roots, got %v", r)
		}
	}
}

func TestRootsOfDegreeZero(t *testing.T) {
	p := MustNew(4)
	roots, err := p.Roots()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roots) != 0 {
		t.Errorf("expected no roots for a constant, got %v", roots)
	}
}
