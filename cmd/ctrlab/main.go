package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/ctrlab/internal/config"
	"github.com/san-kum/ctrlab/internal/discrete"
	"github.com/san-kum/ctrlab/internal/export"
	"github.com/san-kum/ctrlab/internal/freq"
	"github.com/san-kum/ctrlab/internal/metrics"
	"github.com/san-kum/ctrlab/internal/rootlocus"
	"github.com/san-kum/ctrlab/internal/sim"
	"github.com/san-kum/ctrlab/internal/ss"
	"github.com/san-kum/ctrlab/internal/stability"
	"github.com/san-kum/ctrlab/internal/storage"
	"github.com/san-kum/ctrlab/internal/tf"
	"github.com/san-kum/ctrlab/internal/tui"
	"github.com/san-kum/ctrlab/internal/tuning"
	"github.com/san-kum/ctrlab/internal/viz"
)

var (
	dataDir    string
	num        []float64
	den        []float64
	delay      float64
	preset     string
	configFile string

	wStart  float64
	wStop   float64
	wPoints int
	wScale  string

	kMax    float64
	kPoints int

	dt       float64
	duration float64
	ts       float64
	method   string

	save bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ctrlab",
		Short: "classical control analysis lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ctrlab", "data directory")
	rootCmd.PersistentFlags().Float64SliceVar(&num, "num", nil, "numerator coefficients, constant term first")
	rootCmd.PersistentFlags().Float64SliceVar(&den, "den", nil, "denominator coefficients, constant term first")
	rootCmd.PersistentFlags().Float64Var(&delay, "delay", 0, "pure time delay (s)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use a named preset plant")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	routhCmd := &cobra.Command{
		Use:   "routh",
		Short: "Routh-Hurwitz stability test",
		RunE:  runRouth,
	}

	polesCmd := &cobra.Command{
		Use:   "poles",
		Short: "poles, zeros, and eigenvalue classification",
		RunE:  runPoles,
	}

	bodeCmd := &cobra.Command{
		Use:   "bode",
		Short: "Bode magnitude/phase plot with margins",
		RunE:  runBode,
	}
	addSweepFlags(bodeCmd)
	bodeCmd.Flags().BoolVar(&save, "save", false, "save the sweep to the data directory")

	marginsCmd := &cobra.Command{
		Use:   "margins",
		Short: "gain and phase margins",
		RunE:  runMargins,
	}
	addSweepFlags(marginsCmd)

	locusCmd := &cobra.Command{
		Use:   "locus",
		Short: "root locus with asymptotes and break points",
		RunE:  runLocus,
	}
	locusCmd.Flags().Float64Var(&kMax, "kmax", config.DefaultKMax, "maximum gain")
	locusCmd.Flags().IntVar(&kPoints, "kpoints", config.DefaultKPoints, "gain grid points")
	locusCmd.Flags().BoolVar(&save, "save", false, "save the locus to the data directory")

	stepCmd := &cobra.Command{
		Use:   "step",
		Short: "step response",
		RunE:  runStep,
	}
	stepCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	stepCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	stepCmd.Flags().BoolVar(&save, "save", false, "save the response to the data directory")

	discretizeCmd := &cobra.Command{
		Use:   "discretize",
		Short: "continuous to discrete conversion",
		RunE:  runDiscretize,
	}
	discretizeCmd.Flags().Float64Var(&ts, "ts", config.DefaultTs, "sample period")
	discretizeCmd.Flags().StringVar(&method, "method", "zoh", "zoh or tustin")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "Ziegler-Nichols PID tuning",
		RunE:  runTune,
	}
	tuneCmd.Flags().StringVar(&method, "method", "step", "step or ultimate")
	tuneCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (step method)")
	tuneCmd.Flags().Float64Var(&duration, "time", 30, "duration (step method)")
	addSweepFlags(tuneCmd)

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "interactive gain explorer",
		RunE:  runExplore,
	}
	exploreCmd.Flags().Float64Var(&kMax, "kmax", config.DefaultKMax, "maximum gain")
	exploreCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	exploreCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "step response duration")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset plants",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-16s num=%v den=%v\n", name, cfg.Plant.Num, cfg.Plant.Den)
			}
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	var svgOut string
	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata, optionally an SVG plot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			if svgOut != "" {
				header, columns, err := st.LoadPoints(args[0])
				if err != nil {
					return err
				}
				if len(columns) < 2 {
					return fmt.Errorf("run %s has no plottable columns", args[0])
				}
				colors := []string{"#00ff00", "#ff8800", "#00aaff", "#ff00aa"}
				curves := make([]export.Curve, 0, len(columns)-1)
				for i := 1; i < len(columns); i++ {
					curves = append(curves, export.Curve{
						Label: header[i],
						X:     columns[0],
						Y:     columns[i],
						Color: colors[(i-1)%len(colors)],
					})
				}
				svg := export.CurvesToSVG(curves, 960, 540)
				if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", svgOut)
				return nil
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}
	exportCmd.Flags().StringVar(&svgOut, "svg", "", "write an SVG plot of the run to this path")

	rootCmd.AddCommand(routhCmd, polesCmd, bodeCmd, marginsCmd, locusCmd,
		stepCmd, discretizeCmd, tuneCmd, exploreCmd, presetsCmd, listCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSweepFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&wStart, "wmin", config.DefaultWStart, "sweep start (rad/s)")
	cmd.Flags().Float64Var(&wStop, "wmax", config.DefaultWStop, "sweep stop (rad/s)")
	cmd.Flags().IntVar(&wPoints, "points", config.DefaultPoints, "sweep points")
	cmd.Flags().StringVar(&wScale, "scale", freq.ScaleLog, "sweep scale: log or lin")
}

// resolvePlant builds the plant under study. Precedence follows the run
// command of the original lab tool: preset first, config file on top,
// explicit flags win.
func resolvePlant(cmd *cobra.Command) (*tf.TransferFunction, string, *config.Config, error) {
	cfg := config.DefaultConfig()
	name := "custom"

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
		name = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		name = configFile
	}

	plantNum := cfg.Plant.Num
	plantDen := cfg.Plant.Den
	plantDelay := cfg.Plant.Delay
	if cmd.Flags().Changed("num") {
		plantNum = num
	}
	if cmd.Flags().Changed("den") {
		plantDen = den
	}
	if cmd.Flags().Changed("delay") {
		plantDelay = delay
	}
	if len(plantNum) == 0 || len(plantDen) == 0 {
		return nil, "", nil, fmt.Errorf("no plant: give --num/--den, --preset, or --config")
	}
	if !validCoeffs(plantNum) || !validCoeffs(plantDen) {
		return nil, "", nil, fmt.Errorf("coefficients must be finite")
	}

	g, err := tf.New(plantNum, plantDen)
	if err != nil {
		return nil, "", nil, err
	}
	if plantDelay != 0 {
		g = g.WithDelay(plantDelay)
	}

	// Sweep and gain flags default from the resolved config.
	applyConfigDefault(cmd, "wmin", &wStart, cfg.Sweep.Start)
	applyConfigDefault(cmd, "wmax", &wStop, cfg.Sweep.Stop)
	applyConfigDefault(cmd, "kmax", &kMax, cfg.Gain.Max)
	applyConfigDefault(cmd, "dt", &dt, cfg.Dt)
	applyConfigDefault(cmd, "ts", &ts, cfg.Ts)

	return g, name, cfg, nil
}

func applyConfigDefault(cmd *cobra.Command, flag string, dst *float64, val float64) {
	if f := cmd.Flags().Lookup(flag); f != nil && !f.Changed && val != 0 {
		*dst = val
	}
}

func sweep() freq.Sweep {
	return freq.Sweep{Start: wStart, Stop: wStop, Points: wPoints, Scale: wScale}
}

func runRouth(cmd *cobra.Command, args []string) error {
	g, name, _, err := resolvePlant(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", viz.Header(fmt.Sprintf("Routh-Hurwitz: %s", name)))
	fmt.Printf("D(s) = %s\n\n", g.Den)

	res, err := stability.RouthHurwitz(g.Den)
	if err != nil {
		return err
	}

	if res.CoefficientFailure {
		fmt.Printf("coefficient a[%d] = %g violates the sign condition\n", res.Index, g.Den[res.Index])
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MINOR\tDET")
		for i, d := range res.Minors {
			fmt.Fprintf(w, "H_%d\t%.6g\n", i+1, d)
		}
		w.Flush()
		if res.Class == stability.Unstable {
			fmt.Printf("\ndet(H_%d) <= 0\n", res.Index)
		}
	}
	fmt.Printf("\nverdict: %s\n", viz.Verdict(res.Class))

	// Eigenvalue cross-check of the same denominator.
	if m, err := ss.FromTransferFunction(tf.MustNew([]float64{1}, g.Den)); err == nil {
		if cls, err := m.Classify(stability.DefaultTol); err == nil {
			fmt.Printf("eigenvalue check: %s\n", viz.Verdict(cls))
		}
	}
	return nil
}

func runPoles(cmd *cobra.Command, args []string) error {
	g, name, _, err := resolvePlant(cmd)
	if err != nil {
		return err
	}

	poles, err := g.Poles()
	if err != nil {
		return err
	}
	zeros, err := g.Zeros()
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", viz.Header(fmt.Sprintf("poles & zeros: %s", name)))
	fmt.Printf("G(s) = %s\n\n", g)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tRE\tIM")
	for _, p := range poles {
		fmt.Fprintf(w, "pole\t%.6g\t%.6g\n", real(p), imag(p))
	}
	for _, z := range zeros {
		fmt.Fprintf(w, "zero\t%.6g\t%.6g\n", real(z), imag(z))
	}
	w.Flush()

	cls := ss.ClassifyEigenvalues(poles, stability.DefaultTol)
	fmt.Printf("\nverdict: %s\n", viz.Verdict(cls))
	return nil
}

func runBode(cmd *cobra.Command, args []string) error {
	g, name, _, err := resolvePlant(cmd)
	if err != nil {
		return err
	}

	omegas, err := sweep().Frequencies()
	if err != nil {
		return err
	}
	points, err := freq.Response(g, omegas)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n\n", viz.Header(fmt.Sprintf("bode: %s", name)))
	fmt.Println(viz.Bode(points))
	fmt.Println()
	printMargins(freq.ComputeMargins(points))

	if save {
		id, err := saveSweep(name, points)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", id)
	}
	return nil
}

func runMargins(cmd *cobra.Command, args []string) error {
	g, name, _, err := resolvePlant(cmd)
	if err != nil {
		return err
	}
	m, err := freq.MarginsOf(g, sweep())
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", viz.Header(fmt.Sprintf("margins: %s", name)))
	printMargins(m)
	return nil
}

func printMargins(m freq.Margins) {
	if m.HasGainMargin {
		fmt.Printf("gain margin:  %s at %.4g rad/s\n",
			viz.Accent(fmt.Sprintf("%.2f dB", m.GainMarginDB)), m.PhaseCrossover)
	} else {
		fmt.Printf("gain margin:  %s\n", viz.Dim("none in sweep (no -180 crossing)"))
	}
	if m.HasPhaseMargin {
		fmt.Printf("phase margin: %s at %.4g rad/s\n",
			viz.Accent(fmt.Sprintf("%.2f deg", m.PhaseMarginDeg)), m.GainCrossover)
		if m.PhaseMarginDeg < 0 {
			fmt.Printf("              %s\n", viz.Dim("negative: unity loop is unstable"))
		}
	} else {
		fmt.Printf("phase margin: %s\n", viz.Dim("none in sweep (no 0 dB crossing)"))
	}
}

func runLocus(cmd *cobra.Command, args []string) error {
	g, name, cfg, err := resolvePlant(cmd)
	if err != nil {
		return err
	}

	points := kPoints
	if !cmd.Flags().Changed("kpoints") && cfg.Gain.Points > 0 {
		points = cfg.Gain.Points
	}

	l, err := rootlocus.Trace(g, rootlocus.Gains(kMax, points))
	if err != nil {
		return err
	}

	fmt.Printf("%s\n\n", viz.Header(fmt.Sprintf("root locus: %s", name)))
	fmt.Println(viz.Locus(l))
	fmt.Println()

	a, err := rootlocus.AsymptotesOf(g)
	if err != nil {
		return err
	}
	if len(a.AnglesDeg) > 0 {
		fmt.Printf("asymptotes: center %.4g, angles %v deg\n", a.Center, a.AnglesDeg)
	}

	bps, err := rootlocus.BreakPoints(g)
	if err != nil {
		return err
	}
	for _, bp := range bps {
		fmt.Printf("break point: s = %.4g at K = %.4g\n", bp.S, bp.Gain)
	}

	if save {
		id, err := saveLocus(name, l)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", id)
	}
	return nil
}

func runStep(cmd *cobra.Command, args []string) error {
	g, name, cfg, err := resolvePlant(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("time") && cfg.Duration > 0 {
		duration = cfg.Duration
	}

	m, err := ss.FromTransferFunction(g)
	if err != nil {
		return err
	}
	res, err := sim.StepResponse(m, dt, duration)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n\n", viz.Header(fmt.Sprintf("step response: %s", name)))
	fmt.Println(viz.StepPlot(res, "y(t)"))

	if dc, err := g.DCGain(); err == nil {
		fmt.Printf("\ndc gain: %.6g, final sample: %.6g\n", dc, res.Output[len(res.Output)-1])
	}
	if perf, err := metrics.Step(res.Times, res.Output); err == nil {
		fmt.Printf("rise time: %.4g s  peak: %.4g at %.4g s  overshoot: %.1f%%\n",
			perf.RiseTime, perf.PeakValue, perf.PeakTime, perf.OvershootPct)
		if perf.Settled {
			fmt.Printf("settling time (2%%): %.4g s\n", perf.SettlingTime)
		} else {
			fmt.Printf("%s\n", viz.Dim("not settled within the horizon"))
		}
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save("step", name,
			map[string]float64{"dt": dt, "duration": duration}, nil,
			[]string{"time", "y"}, [][]float64{res.Times, res.Output})
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", id)
	}
	return nil
}

func runDiscretize(cmd *cobra.Command, args []string) error {
	g, name, cfg, err := resolvePlant(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("method") && cfg.Method != "" {
		method = cfg.Method
	}

	fmt.Printf("%s\n", viz.Header(fmt.Sprintf("discretize (%s, ts=%g): %s", method, ts, name)))

	switch method {
	case "tustin":
		gd, err := discrete.Tustin(g, ts)
		if err != nil {
			return err
		}
		fmt.Printf("G(z) = (%s) / (%s)\n", gd.Num, gd.Den)
		fmt.Println(viz.Dim("polynomials in z, constant term first"))
	case "zoh":
		m, err := ss.FromTransferFunction(g)
		if err != nil {
			return err
		}
		md, err := discrete.ZOH(m, ts)
		if err != nil {
			return err
		}
		fmt.Println("Ad =")
		printMatrix(md.A)
		fmt.Println("Bd =")
		printMatrix(md.B)
	default:
		return fmt.Errorf("unknown method %q (zoh or tustin)", method)
	}
	return nil
}

type matrixAt interface {
	Dims() (int, int)
	At(i, j int) float64
}

func printMatrix(m matrixAt) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		fmt.Print("  [")
		for j := 0; j < c; j++ {
			fmt.Printf(" %10.6g", m.At(i, j))
		}
		fmt.Println(" ]")
	}
}

func runTune(cmd *cobra.Command, args []string) error {
	g, name, cfg, err := resolvePlant(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("method") && cfg.Method != "" {
		method = cfg.Method
	}

	fmt.Printf("%s\n", viz.Header(fmt.Sprintf("ziegler-nichols (%s): %s", method, name)))

	var gains tuning.PIDGains
	switch method {
	case "step":
		m, err := ss.FromTransferFunction(g)
		if err != nil {
			return err
		}
		res, err := sim.StepResponse(m, dt, duration)
		if err != nil {
			return err
		}
		var fit tuning.StepFit
		gains, fit, err = tuning.StepResponse(res.Times, res.Output)
		if err != nil {
			return err
		}
		fmt.Printf("tangent fit: L=%.4g s, R=%.4g /s (steepest at t=%.4g)\n",
			fit.DeadTime, fit.Rate, fit.AtTime)
	case "ultimate":
		var ku, tu float64
		gains, ku, tu, err = tuning.Ultimate(g, sweep())
		if err != nil {
			return err
		}
		fmt.Printf("ultimate gain Ku=%.4g, period Tu=%.4g s\n", ku, tu)
	default:
		return fmt.Errorf("unknown method %q (step or ultimate)", method)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KP\tKI\tKD")
	fmt.Fprintf(w, "%.4g\t%.4g\t%.4g\n", gains.Kp, gains.Ki, gains.Kd)
	w.Flush()
	fmt.Printf("\nC(s) = %s\n", gains.Controller())
	return nil
}

func runExplore(cmd *cobra.Command, args []string) error {
	g, name, cfg, err := resolvePlant(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("time") && cfg.Duration > 0 {
		duration = cfg.Duration
	}
	return tui.Explore(g, name, kMax, dt, duration)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tPLANT\tTIME")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			run.ID, run.Kind, run.Plant, run.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func saveSweep(name string, points []freq.Point) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}

	omegas := make([]float64, len(points))
	mags := make([]float64, len(points))
	phases := make([]float64, len(points))
	for i, p := range points {
		omegas[i] = p.Omega
		mags[i] = p.MagDB
		phases[i] = p.PhaseDeg
	}

	m := freq.ComputeMargins(points)
	results := map[string]float64{}
	if m.HasGainMargin {
		results["gain_margin_db"] = m.GainMarginDB
		results["phase_crossover"] = m.PhaseCrossover
	}
	if m.HasPhaseMargin {
		results["phase_margin_deg"] = m.PhaseMarginDeg
		results["gain_crossover"] = m.GainCrossover
	}

	return st.Save("bode", name,
		map[string]float64{"points": float64(len(points))}, results,
		[]string{"omega", "mag_db", "phase_deg"},
		[][]float64{omegas, mags, phases})
}

func saveLocus(name string, l *rootlocus.Locus) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}

	header := []string{"gain"}
	columns := [][]float64{l.Gains}
	for b, branch := range l.Branches {
		re := make([]float64, len(branch))
		im := make([]float64, len(branch))
		for k, root := range branch {
			re[k] = real(root)
			im[k] = imag(root)
		}
		header = append(header, fmt.Sprintf("re%d", b), fmt.Sprintf("im%d", b))
		columns = append(columns, re, im)
	}

	return st.Save("locus", name,
		map[string]float64{"kmax": l.Gains[len(l.Gains)-1], "branches": float64(len(l.Branches))},
		nil, header, columns)
}

func validCoeffs(cs []float64) bool {
	for _, c := range cs {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
