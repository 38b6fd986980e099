package sim

import (
	"math"
	"testing"

	"github.com/san-kum/ctrlab/internal/ss"
	"github.com/san-kum/ctrlab/internal/tf"
)

func firstOrder(t *testing.T, tau float64) *ss.Model {
	t.Helper()
	g := tf.MustNew([]float64{1}, []float64{1, tau})
	m, err := ss.FromTransferFunction(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func TestStepResponseFirstOrder(t *testing.T) {
	// G = 1/(tau*s + 1): y(t) = 1 - exp(-t/tau).
	tau := 0.5
	m := firstOrder(t, tau)

	res, err := StepResponse(m, 0.01, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, tm := range res.Times {
		want := 1 - math.Exp(-tm/tau)
		if math.Abs(res.Output[i]-want) > 1e-6 {
			t.Fatalf("at t=%f: expected %f, got %f", tm, want, res.Output[i])
		}
	}
}

func TestStepResponseFinalValue(t *testing.T) {
	// Second-order stable plant settles at its dc gain.
	g := tf.MustNew([]float64{4}, []float64{2, 3, 1})
	m, err := ss.FromTransferFunction(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := StepResponse(m, 0.01, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dc, _ := g.DCGain()
	final := res.Output[len(res.Output)-1]
	if math.Abs(final-dc) > 1e-3 {
		t.Errorf("expected settle at %f, got %f", dc, final)
	}
}

func TestImpulseResponseFirstOrder(t *testing.T) {
	// G = 1/(s+2): h(t) = exp(-2t).
	g := tf.MustNew([]float64{1}, []float64{2, 1})
	m, err := ss.FromTransferFunction(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := ImpulseResponse(m, 0.01, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, tm := range res.Times {
		want := math.Exp(-2 * tm)
		if math.Abs(res.Output[i]-want) > 1e-6 {
			t.Fatalf("at t=%f: expected %f, got %f", tm, want, res.Output[i])
		}
	}
}

func TestBadStep(t *testing.T) {
	m := firstOrder(t, 1)
	if _, err := StepResponse(m, 0, 1); err != ErrStep {
		t.Errorf("expected ErrStep, got %v", err)
	}
}

func TestDivergenceDetected(t *testing.T) {
	// Unstable plant under a large step eventually overflows.
	g := tf.MustNew([]float64{1}, []float64{-30, 1})
	m, err := ss.FromTransferFunction(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = StepResponse(m, 0.5, 200)
	if err == nil {
		t.Error("expected divergence error")
	}
}
