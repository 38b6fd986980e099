package tf

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

func TestEvalAtFrequency(t *testing.T) {
	// G(s) = 1/(s+1) at s = j: 1/(1+j) = 0.5 - 0.5j
	g := MustNew([]float64{1}, []float64{1, 1})

	v, err := g.Eval(complex(0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(real(v)-0.5) > 1e-12 || math.Abs(imag(v)+0.5) > 1e-12 {
		t.Errorf("expected 0.5-0.5i, got %v", v)
	}
}

func TestEvalAtPole(t *testing.T) {
	g := MustNew([]float64{1}, []float64{1, 1})

	_, err := g.Eval(complex(-1, 0))
	if !errors.Is(err, ErrPoleAtPoint) {
		t.Errorf("expected ErrPoleAtPoint, got %v", err)
	}
}

func TestEvalWithDelay(t *testing.T) {
	// G(s) = exp(-0.5 s) / (s+1); at s = 2 the delay contributes exp(-1).
	g := MustNew([]float64{1}, []float64{1, 1}).WithDelay(0.5)

	v, err := g.Eval(complex(2, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := math.Exp(-1) / 3.0
	if math.Abs(real(v)-expected) > 1e-12 {
		t.Errorf("expected %f, got %v", expected, v)
	}
}

func TestMulSeries(t *testing.T) {
	// 1/(s+1) * 1/(s+2) = 1/(s^2+3s+2)
	a := MustNew([]float64{1}, []float64{1, 1})
	b := MustNew([]float64{1}, []float64{2, 1})
	c := a.Mul(b)

	expected := []float64{2, 3, 1}
	for i, want := range expected {
		if math.Abs(c.Den[i]-want) > 1e-12 {
			t.Errorf("den[%d]: expected %f, got %f", i, want, c.Den[i])
		}
	}
}

func TestAddParallel(t *testing.T) {
	// 1/(s+1) + 1/(s+2) = (2s+3)/(s^2+3s+2)
	a := MustNew([]float64{1}, []float64{1, 1})
	b := MustNew([]float64{1}, []float64{2, 1})

	c, err := a.Add(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Num.Degree() != 1 || math.Abs(c.Num[0]-3) > 1e-12 || math.Abs(c.Num[1]-2) > 1e-12 {
		t.Errorf("unexpected numerator: %v", c.Num)
	}
}

func TestAddDelayMismatch(t *testing.T) {
	a := MustNew([]float64{1}, []float64{1, 1})
	b := a.WithDelay(0.1)
	if _, err := a.Add(b); !errors.Is(err, ErrDelayMismatch) {
		t.Errorf("expected ErrDelayMismatch, got %v", err)
	}
}

func TestFeedbackZeroGainIsIdentity(t *testing.T) {
	g := MustNew([]float64{1, 2}, []float64{3, 2, 1})

	cl, err := g.Feedback(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range g.Num {
		if cl.Num[i] != g.Num[i] {
			t.Errorf("num[%d] changed: %f -> %f", i, g.Num[i], cl.Num[i])
		}
	}
	for i := range g.Den {
		if cl.Den[i] != g.Den[i] {
			t.Errorf("den[%d] changed: %f -> %f", i, g.Den[i], cl.Den[i])
		}
	}
}

func TestFeedbackClosesLoop(t *testing.T) {
	// G = 1/(s+1), k=1: closed loop 1/(s+2)
	g := MustNew([]float64{1}, []float64{1, 1})

	cl, err := g.Feedback(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(cl.Den[0]-2) > 1e-12 || math.Abs(cl.Den[1]-1) > 1e-12 {
		t.Errorf("unexpected closed-loop denominator: %v", cl.Den)
	}
}

func TestPolesAndZeros(t *testing.T) {
	// G = (s+3)/((s+1)(s+2))
	g := MustNew([]float64{3, 1}, []float64{2, 3, 1})

	poles, err := g.Poles()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(poles) != 2 {
		t.Fatalf("expected 2 poles, got %d", len(poles))
	}

	zeros, err := g.Zeros()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zeros) != 1 || cmplx.Abs(zeros[0]-complex(-3, 0)) > 1e-9 {
		t.Errorf("expected zero at -3, got %v", zeros)
	}
}

func TestPIDController(t *testing.T) {
	c := PID(2, 4, 0.5)

	// C(1) = Kp + Ki + Kd = 6.5
	v, err := c.Eval(complex(1, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(real(v)-6.5) > 1e-12 {
		t.Errorf("expected 6.5, got %v", v)
	}

	// Integrator pole at the origin.
	if _, err := c.Eval(0); !errors.Is(err, ErrPoleAtPoint) {
		t.Errorf("expected pole at origin, got %v", err)
	}
}
