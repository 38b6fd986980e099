// Package export renders saved run data as standalone SVG documents.
package export

import (
	"fmt"
	"strings"
)

// Curve is one polyline on a CurvesToSVG chart.
type Curve struct {
	Label string
	X     []float64
	Y     []float64
	Color string
}

// CurvesToSVG plots curves on shared axes. Bounds come from the data
// with 10% padding; degenerate ranges are widened to avoid division by
// zero.
func CurvesToSVG(curves []Curve, width, height int) string {
	var xs, ys []float64
	for _, c := range curves {
		xs = append(xs, c.X...)
		ys = append(ys, c.Y...)
	}
	if len(xs) < 2 {
		return ""
	}

	minX, maxX := bounds(xs)
	minY, maxY := bounds(ys)
	minX, maxX = pad(minX, maxX)
	minY, maxY = pad(minY, maxY)
	rangeX := maxX - minX
	rangeY := maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for ci, c := range curves {
		if len(c.X) < 2 || len(c.X) != len(c.Y) {
			continue
		}
		color := c.Color
		if color == "" {
			color = "#00ff00"
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for i := range c.X {
			px := (c.X[i] - minX) / rangeX * float64(width)
			py := float64(height) - (c.Y[i]-minY)/rangeY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", px, py))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px, py))
			}
		}
		sb.WriteString("\"/>\n")
		if c.Label != "" {
			sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16*(ci+1), color, c.Label))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func bounds(vals []float64) (lo, hi float64) {
	lo, hi = vals[0], vals[0]
	for _, v := range vals {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func pad(lo, hi float64) (float64, float64) {
	r := hi - lo
	if r == 0 {
		r = 1
	}
	return lo - r*0.1, hi + r*0.1
}
