package stability

import (
	"math"
	"testing"
)

func TestHurwitzMatrixPattern(t *testing.T) {
	// a0=3, a1=2, a2=2, a3=5: H[i][j] = a[2j-i+1]
	h, err := HurwitzMatrix([]float64{3, 2, 2, 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := [3][3]float64{
		{2, 5, 0},
		{3, 2, 0},
		{0, 2, 5},
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if got := h.At(i, j); math.Abs(got-expected[i][j]) > 1e-12 {
				t.Errorf("H[%d][%d]: expected %f, got %f", i, j, expected[i][j], got)
			}
		}
	}
}

func TestUnstableByMinor(t *testing.T) {
	// det(H_2) = 2*2 - 3*5 = -11 < 0
	res, err := RouthHurwitz([]float64{3, 2, 2, 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Class != Unstable {
		t.Errorf("expected unstable, got %v", res.Class)
	}
	if res.Index != 2 {
		t.Errorf("expected failing minor index 2, got %d", res.Index)
	}
	if math.Abs(res.Minors[1]+11) > 1e-9 {
		t.Errorf("expected det(H_2) = -11, got %f", res.Minors[1])
	}
}

func TestUnstableByCoefficientSign(t *testing.T) {
	// (s-1)(s+2) = s^2 + s - 2: negative constant term
	res, err := RouthHurwitz([]float64{-2, 1, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Class != Unstable || !res.CoefficientFailure {
		t.Errorf("expected coefficient failure, got %+v", res)
	}
	if res.Index != 0 {
		t.Errorf("expected violating coefficient index 0, got %d", res.Index)
	}
}

func TestStableCubic(t *testing.T) {
	// (s+1)^3 = s^3 + 3s^2 + 3s + 1
	res, err := RouthHurwitz([]float64{1, 3, 3, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Class != Stable {
		t.Errorf("expected stable, got %v (minors %v)", res.Class, res.Minors)
	}
	for k, d := range res.Minors {
		if d <= 0 {
			t.Errorf("minor %d not positive: %f", k+1, d)
		}
	}
}

func TestCriticalGainIsMarginal(t *testing.T) {
	// s^3 + 3s^2 + 2s + 6: Routh row zeroes out (poles at +/- j*sqrt(2)).
	// det(H_2) = 3*2 - 1*6 = 0.
	res, err := RouthHurwitz([]float64{6, 2, 3, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Class != Marginal {
		t.Errorf("expected marginal, got %v (minors %v)", res.Class, res.Minors)
	}
}

func TestBoundaryNoise(t *testing.T) {
	// Same boundary case with float noise well under the tolerance must
	// still come out marginal, not stable/unstable.
	res, err := RouthHurwitz([]float64{6 + 1e-13, 2, 3, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Class != Marginal {
		t.Errorf("expected marginal under noise, got %v", res.Class)
	}
}

func TestNegativeLeadingCoefficient(t *testing.T) {
	// -(s+1)^2 has the same roots as (s+1)^2.
	res, err := RouthHurwitz([]float64{-1, -2, -1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Class != Stable {
		t.Errorf("expected stable, got %v", res.Class)
	}
}

func TestDegreeTooLow(t *testing.T) {
	if _, err := RouthHurwitz([]float64{1}); err != ErrDegree {
		t.Errorf("expected ErrDegree, got %v", err)
	}
}
