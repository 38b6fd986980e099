package tuning

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/ctrlab/internal/freq"
	"github.com/san-kum/ctrlab/internal/sim"
	"github.com/san-kum/ctrlab/internal/ss"
	"github.com/san-kum/ctrlab/internal/tf"
)

func TestFitTangentOverdampedPlant(t *testing.T) {
	// G = 1/((s+1)(2s+1)): impulse response e^(-t/2) - e^(-t) peaks at
	// t=2ln2 with slope 1/4, and the tangent construction gives
	// L = 2ln2 - 1.
	g := tf.MustNew([]float64{1}, []float64{1, 3, 2})
	m, err := ss.FromTransferFunction(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := sim.StepResponse(m, 0.005, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fit, err := FitTangent(res.Times, res.Output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(fit.Rate-0.25) > 0.002 {
		t.Errorf("expected max slope 0.25, got %f", fit.Rate)
	}
	if math.Abs(fit.AtTime-2*math.Log(2)) > 0.02 {
		t.Errorf("expected steepest point at %f, got %f", 2*math.Log(2), fit.AtTime)
	}
	wantL := 2*math.Log(2) - 1
	if math.Abs(fit.DeadTime-wantL) > 0.02 {
		t.Errorf("expected dead time %f, got %f", wantL, fit.DeadTime)
	}
	if math.Abs(fit.FinalValue-1) > 0.01 {
		t.Errorf("expected final value 1, got %f", fit.FinalValue)
	}
}

func TestStepResponseTable(t *testing.T) {
	g := tf.MustNew([]float64{1}, []float64{1, 3, 2})
	m, _ := ss.FromTransferFunction(g)
	res, err := sim.StepResponse(m, 0.005, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gains, fit, err := StepResponse(res.Times, res.Output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantKp := 1.2 / (fit.Rate * fit.DeadTime)
	if math.Abs(gains.Kp-wantKp) > 1e-9 {
		t.Errorf("expected Kp=%f, got %f", wantKp, gains.Kp)
	}
	if math.Abs(gains.Ki-gains.Kp/(2*fit.DeadTime)) > 1e-9 {
		t.Errorf("Ki does not match Ti=2L: %f", gains.Ki)
	}
	if math.Abs(gains.Kd-gains.Kp*fit.DeadTime/2) > 1e-9 {
		t.Errorf("Kd does not match Td=L/2: %f", gains.Kd)
	}
}

func TestFitTangentRejectsFlat(t *testing.T) {
	times := []float64{0, 1, 2, 3, 4, 5}
	flat := []float64{1, 1, 1, 1, 1, 1}
	if _, err := FitTangent(times, flat); !errors.Is(err, ErrFlatResponse) {
		t.Errorf("expected ErrFlatResponse, got %v", err)
	}
}

func TestFitTangentTooShort(t *testing.T) {
	if _, err := FitTangent([]float64{0, 1}, []float64{0, 1}); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("expected ErrTooFewSamples, got %v", err)
	}
}

func TestUltimateGainThirdOrder(t *testing.T) {
	// G = 1/((s+1)^3): Ku = 8, w180 = sqrt(3), Tu = 2pi/sqrt(3).
	g := tf.MustNew([]float64{1}, []float64{1, 3, 3, 1})

	gains, ku, tu, err := Ultimate(g, freq.Sweep{Start: 0.1, Stop: 10, Points: 4000, Scale: freq.ScaleLog})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(ku-8) > 0.05 {
		t.Errorf("expected Ku=8, got %f", ku)
	}
	wantTu := 2 * math.Pi / math.Sqrt(3)
	if math.Abs(tu-wantTu) > 0.01 {
		t.Errorf("expected Tu=%f, got %f", wantTu, tu)
	}
	if math.Abs(gains.Kp-0.6*ku) > 1e-9 {
		t.Errorf("expected Kp=0.6*Ku, got %f", gains.Kp)
	}
}

func TestUltimateNoCrossover(t *testing.T) {
	g := tf.MustNew([]float64{1}, []float64{1, 1})
	_, _, _, err := Ultimate(g, freq.DefaultSweep())
	if !errors.Is(err, ErrNoUltimateGain) {
		t.Errorf("expected ErrNoUltimateGain, got %v", err)
	}
}
