// Package rootlocus traces closed-loop pole positions of a unity feedback
// loop as the scalar gain K varies: the roots of D(s) + K*N(s) = 0.
package rootlocus

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/ctrlab/internal/tf"
)

// Domain errors for locus construction.
var (
	// ErrImproper indicates more zeros than poles; the locus is not
	// defined for such loops here.
	ErrImproper = errors.New("rootlocus: open loop must be proper")

	// ErrNoGains indicates an empty gain sequence.
	ErrNoGains = errors.New("rootlocus: empty gain sequence")
)

// realTol decides when a candidate break point counts as real.
const realTol = 1e-7

// Locus holds one closed-loop pole trajectory per open-loop pole.
// Branches[b][k] is branch b evaluated at Gains[k].
type Locus struct {
	Gains    []float64
	Branches [][]complex128
}

// Gains builds a linear gain grid from 0 to max inclusive.
func Gains(max float64, points int) []float64 {
	if points < 2 {
		return []float64{0}
	}
	out := make([]float64, points)
	step := max / float64(points-1)
	for i := range out {
		out[i] = float64(i) * step
	}
	return out
}

// Trace computes the locus over the gain sequence. Branches are kept
// continuous by matching each gain step's roots to the nearest root of the
// previous step. At K=0 the branches start on the open-loop poles.
func Trace(g *tf.TransferFunction, gains []float64) (*Locus, error) {
	if len(gains) == 0 {
		return nil, ErrNoGains
	}
	if !g.IsProper() {
		return nil, ErrImproper
	}

	n := g.Den.Degree()
	branches := make([][]complex128, n)
	for b := range branches {
		branches[b] = make([]complex128, len(gains))
	}

	var prev []complex128
	for k, gain := range gains {
		charPoly := g.Den.Add(g.Num.Scale(gain))
		if charPoly.Degree() != n {
			return nil, fmt.Errorf("rootlocus: closed-loop order drops at K=%g", gain)
		}
		roots, err := charPoly.Roots()
		if err != nil {
			return nil, fmt.Errorf("rootlocus: at K=%g: %w", gain, err)
		}

		if prev != nil {
			roots = matchNearest(prev, roots)
		}
		for b := range branches {
			branches[b][k] = roots[b]
		}
		prev = roots
	}

	return &Locus{Gains: gains, Branches: branches}, nil
}

// matchNearest reorders roots so roots[i] is the closest remaining root to
// prev[i]. Greedy assignment is enough at the gain resolutions used here.
func matchNearest(prev, roots []complex128) []complex128 {
	out := make([]complex128, len(prev))
	used := make([]bool, len(roots))
	for i, p := range prev {
		best := -1
		bestDist := math.Inf(1)
		for j, r := range roots {
			if used[j] {
				continue
			}
			if d := cmplx.Abs(r - p); d < bestDist {
				bestDist = d
				best = j
			}
		}
		out[i] = roots[best]
		used[best] = true
	}
	return out
}

// Asymptotes describes where excess branches head as K grows without
// bound: n-m rays from a common real center.
type Asymptotes struct {
	Center    float64
	AnglesDeg []float64
}

// AsymptotesOf computes the asymptote center (sum(poles) - sum(zeros))/(n-m)
// and angles (2i+1)*180/(n-m). A loop with as many zeros as poles has no
// asymptotes.
func AsymptotesOf(g *tf.TransferFunction) (*Asymptotes, error) {
	if !g.IsProper() {
		return nil, ErrImproper
	}
	n := g.Den.Degree()
	m := g.Num.Degree()
	if n == m {
		return &Asymptotes{}, nil
	}

	poles, err := g.Poles()
	if err != nil {
		return nil, err
	}
	zeros, err := g.Zeros()
	if err != nil {
		return nil, err
	}

	var sum complex128
	for _, p := range poles {
		sum += p
	}
	for _, z := range zeros {
		sum -= z
	}

	excess := n - m
	angles := make([]float64, excess)
	for i := range angles {
		angles[i] = float64(2*i+1) * 180 / float64(excess)
	}
	// Imaginary parts cancel pairwise for real-coefficient polynomials.
	return &Asymptotes{Center: real(sum) / float64(excess), AnglesDeg: angles}, nil
}

// BreakPoint is a point where locus branches meet and split on the real
// axis, with the gain that places closed-loop poles there.
type BreakPoint struct {
	S    float64
	Gain float64
}

// BreakPoints finds real roots of N(s)D'(s) - N'(s)D(s) = 0 that yield a
// feasible gain K(s) = -D(s)/N(s) >= 0.
func BreakPoints(g *tf.TransferFunction) ([]BreakPoint, error) {
	h := g.Num.Mul(g.Den.Derivative()).Sub(g.Num.Derivative().Mul(g.Den))
	if h.IsZero() {
		return nil, nil
	}
	candidates, err := h.Roots()
	if err != nil {
		return nil, err
	}

	var out []BreakPoint
	for _, c := range candidates {
		if math.Abs(imag(c)) > realTol*(1+cmplx.Abs(c)) {
			continue
		}
		s := real(c)
		nv := g.Num.EvalReal(s)
		if math.Abs(nv) <= realTol {
			// Break point coincides with an open-loop zero; K blows up.
			continue
		}
		gain := -g.Den.EvalReal(s) / nv
		if gain < -realTol {
			continue
		}
		if gain < 0 {
			gain = 0
		}
		out = append(out, BreakPoint{S: s, Gain: gain})
	}
	return out, nil
}
