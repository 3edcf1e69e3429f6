package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/episim/internal/epi"
)

const (
	svgWidth  = 800
	svgHeight = 400
	svgMargin = 40
)

var seriesColors = []struct {
	name  string
	color string
}{
	{"susceptible", "#4488ff"},
	{"infected", "#ff4444"},
	{"recovered", "#44cc66"},
	{"deceased", "#888888"},
}

// WriteSVG renders the four compartment curves as polylines on a shared
// time axis, scaled to the population total.
func WriteSVG(w io.Writer, tr *epi.Trajectory, population float64) error {
	if tr.Len() < 2 {
		return fmt.Errorf("svg export: %w", epi.ErrEmptyTrajectory)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, svgWidth, svgHeight, svgWidth, svgHeight))

	plotW := float64(svgWidth - 2*svgMargin)
	plotH := float64(svgHeight - 2*svgMargin)
	tMax := tr.Times[tr.Len()-1]

	series := [][]float64{tr.S, tr.I, tr.R, tr.D}
	for si, data := range series {
		sb.WriteString(fmt.Sprintf(`<polyline fill="none" stroke="%s" stroke-width="1.5" points="`, seriesColors[si].color))
		for i, v := range data {
			x := float64(svgMargin) + plotW*tr.Times[i]/tMax
			y := float64(svgHeight-svgMargin) - plotH*v/population
			sb.WriteString(fmt.Sprintf("%.1f,%.1f ", x, y))
		}
		sb.WriteString("\"/>\n")
	}

	for si, sc := range seriesColors {
		y := svgMargin + si*16
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, svgWidth-svgMargin-110, y, sc.color, sc.name))
	}

	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
