// Package metrics computes time-domain performance figures from a
// simulated response.
package metrics

import (
	"errors"
	"math"
)

var ErrTooShort = errors.New("metrics: response too short")

// StepMetrics summarizes a step response against its final value.
type StepMetrics struct {
	FinalValue   float64
	RiseTime     float64 // 10% to 90% of the final value
	PeakTime     float64
	PeakValue    float64
	OvershootPct float64
	SettlingTime float64 // last entry into the 2% band
	Settled      bool
}

const settleBand = 0.02

// Step measures a step response. The final value is taken from the last
// sample, so the horizon must be long enough for the response to level
// off.
func Step(times, output []float64) (StepMetrics, error) {
	if len(times) < 3 || len(times) != len(output) {
		return StepMetrics{}, ErrTooShort
	}

	final := output[len(output)-1]
	m := StepMetrics{FinalValue: final}

	// Peak and overshoot relative to the final value.
	peakIdx := 0
	peakDev := 0.0
	for i, y := range output {
		if d := math.Abs(y); d > peakDev {
			peakDev = d
			peakIdx = i
		}
	}
	m.PeakTime = times[peakIdx]
	m.PeakValue = output[peakIdx]
	if final != 0 {
		over := (math.Abs(m.PeakValue) - math.Abs(final)) / math.Abs(final) * 100
		if over > 0 {
			m.OvershootPct = over
		}
	}

	// Rise time from the first crossings of 10% and 90%.
	if final != 0 {
		t10 := crossTime(times, output, 0.1*final)
		t90 := crossTime(times, output, 0.9*final)
		if !math.IsNaN(t10) && !math.IsNaN(t90) && t90 >= t10 {
			m.RiseTime = t90 - t10
		}
	}

	// Settling time: last sample outside the band marks the boundary.
	band := settleBand * math.Abs(final)
	if band == 0 {
		band = settleBand
	}
	lastOut := -1
	for i, y := range output {
		if math.Abs(y-final) > band {
			lastOut = i
		}
	}
	switch {
	case lastOut < 0:
		m.Settled = true
	case lastOut < len(times)-1:
		m.Settled = true
		m.SettlingTime = times[lastOut+1]
	}

	return m, nil
}

// crossTime interpolates the first time output crosses level from below.
func crossTime(times, output []float64, level float64) float64 {
	up := level >= 0
	for i := 1; i < len(output); i++ {
		a, b := output[i-1], output[i]
		crossed := (up && a < level && b >= level) || (!up && a > level && b <= level)
		if !crossed {
			continue
		}
		if b == a {
			return times[i]
		}
		frac := (level - a) / (b - a)
		return times[i-1] + frac*(times[i]-times[i-1])
	}
	if len(output) > 0 && ((up && output[0] >= level) || (!up && output[0] <= level)) {
		return times[0]
	}
	return math.NaN()
}
