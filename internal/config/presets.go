package config

// Presets are the course plants the lessons keep coming back to.
var Presets = map[string]*Config{
	// Position servo: motor + integrator, 1/(s(s+7.5)(s+12.5)).
	"motor-position": {
		Plant:    PlantConfig{Num: []float64{1}, Den: []float64{0, 93.75, 20, 1}},
		Sweep:    SweepConfig{Start: 0.1, Stop: 1000, Points: 600, Scale: "log"},
		Gain:     GainConfig{Max: 4000, Points: 400},
		Dt:       0.001, Duration: 5, Ts: 0.01,
	},
	// Margin lesson: (s^2+20s+100)/(s^3+3s^2+3s+1), negative phase margin.
	"margin-lesson": {
		Plant:    PlantConfig{Num: []float64{100, 20, 1}, Den: []float64{1, 3, 3, 1}},
		Sweep:    SweepConfig{Start: 0.01, Stop: 100, Points: 600, Scale: "log"},
		Gain:     GainConfig{Max: 10, Points: 200},
		Dt:       0.005, Duration: 10, Ts: 0.05,
	},
	// Routh-Hurwitz demo: unstable cubic 1/(5s^3+2s^2+2s+3).
	"routh-demo": {
		Plant:    PlantConfig{Num: []float64{1}, Den: []float64{3, 2, 2, 5}},
		Sweep:    SweepConfig{Start: 0.01, Stop: 10, Points: 400, Scale: "log"},
		Gain:     GainConfig{Max: 5, Points: 100},
		Dt:       0.005, Duration: 10, Ts: 0.1,
	},
	// First-order thermal lag with transport delay, for ZOH lessons.
	"thermal-lag": {
		Plant:    PlantConfig{Num: []float64{1}, Den: []float64{1, 0.5}, Delay: 0.1},
		Sweep:    SweepConfig{Start: 0.01, Stop: 100, Points: 400, Scale: "log"},
		Gain:     GainConfig{Max: 20, Points: 100},
		Dt:       0.002, Duration: 4, Ts: 0.2,
	},
	// Overdamped process for Ziegler-Nichols reaction-curve tuning.
	"zn-process": {
		Plant:    PlantConfig{Num: []float64{1}, Den: []float64{2, 3, 1}},
		Sweep:    SweepConfig{Start: 0.01, Stop: 100, Points: 400, Scale: "log"},
		Gain:     GainConfig{Max: 50, Points: 200},
		Dt:       0.005, Duration: 15, Ts: 0.1,
	},
	// Triple lag, the ultimate-gain tuning classic 1/((s+1)^3).
	"triple-lag": {
		Plant:    PlantConfig{Num: []float64{1}, Den: []float64{1, 3, 3, 1}},
		Sweep:    SweepConfig{Start: 0.01, Stop: 100, Points: 600, Scale: "log"},
		Gain:     GainConfig{Max: 12, Points: 300},
		Dt:       0.005, Duration: 30, Ts: 0.1,
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
