// Package viz renders analysis results as terminal plots.
package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ctrlab/internal/freq"
	"github.com/san-kum/ctrlab/internal/rootlocus"
	"github.com/san-kum/ctrlab/internal/sim"
)

const (
	plotHeight = 10
	plotWidth  = 80
)

// Bode renders magnitude and phase charts for a swept response.
func Bode(points []freq.Point) string {
	mags := make([]float64, len(points))
	phases := make([]float64, len(points))
	for i, p := range points {
		mags[i] = p.MagDB
		phases[i] = p.PhaseDeg
	}

	var b strings.Builder
	b.WriteString(asciigraph.Plot(mags,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("magnitude (dB), omega %.3g to %.3g rad/s",
			points[0].Omega, points[len(points)-1].Omega)),
	))
	b.WriteString("\n\n")
	b.WriteString(asciigraph.Plot(phases,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("phase (deg)"),
	))
	return b.String()
}

// StepPlot renders a time response.
func StepPlot(res *sim.Result, caption string) string {
	return asciigraph.Plot(res.Output,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("%s, t = 0 to %.3g s", caption, res.Times[len(res.Times)-1])),
	)
}

// Locus renders the real and imaginary parts of every branch against gain.
// Terminal cells are a poor s-plane, so the two coordinates get a chart
// each, one series per branch.
func Locus(l *rootlocus.Locus) string {
	res := make([][]float64, len(l.Branches))
	ims := make([][]float64, len(l.Branches))
	for b, branch := range l.Branches {
		res[b] = make([]float64, len(branch))
		ims[b] = make([]float64, len(branch))
		for k, root := range branch {
			res[b][k] = real(root)
			ims[b][k] = imag(root)
		}
	}

	var sb strings.Builder
	sb.WriteString(asciigraph.PlotMany(res,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("Re(poles) vs K, K = 0 to %.3g", l.Gains[len(l.Gains)-1])),
	))
	sb.WriteString("\n\n")
	sb.WriteString(asciigraph.PlotMany(ims,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("Im(poles) vs K"),
	))
	return sb.String()
}

// Sparkline is a compact single-series chart for the interactive explorer.
func Sparkline(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
