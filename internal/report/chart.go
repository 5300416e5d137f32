// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// slice colors follow the decision semantics: green for recommended,
// orange for borderline, red for rejected, grey for unevaluated.
var sliceColors = map[string]string{
	types.DecisionRecommend:   "#4CAF50",
	types.DecisionBorderline:  "#FF9800",
	types.DecisionReject:      "#F44336",
	types.DecisionUnevaluated: "#9E9E9E",
}

const (
	chartSize   = 320
	chartRadius = 110
)

// PieChartSVG renders the decision distribution as a standalone SVG pie
// chart. Zero-count decisions are omitted; an empty run yields a single
// grey disc so the report image link never dangles.
func PieChartSVG(c Counts) string {
	type slice struct {
		label string
		count int
	}
	slices := []slice{
		{types.DecisionRecommend, c.Recommend},
		{types.DecisionBorderline, c.Borderline},
		{types.DecisionReject, c.Reject},
		{types.DecisionUnevaluated, c.Unevaluated},
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		chartSize+180, chartSize, chartSize+180, chartSize)
	b.WriteString("\n")

	cx, cy := float64(chartSize)/2, float64(chartSize)/2
	total := c.Total()

	if total == 0 {
		fmt.Fprintf(&b, `<circle cx="%.0f" cy="%.0f" r="%d" fill="%s"/>`, cx, cy, chartRadius, sliceColors[types.DecisionUnevaluated])
		b.WriteString("\n</svg>\n")
		return b.String()
	}

	angle := -math.Pi / 2 // start at 12 o'clock
	legendY := 40
	for _, s := range slices {
		if s.count == 0 {
			continue
		}
		frac := float64(s.count) / float64(total)
		color := sliceColors[s.label]

		if frac >= 1 {
			fmt.Fprintf(&b, `<circle cx="%.0f" cy="%.0f" r="%d" fill="%s"/>`, cx, cy, chartRadius, color)
			b.WriteString("\n")
		} else {
			end := angle + frac*2*math.Pi
			x1 := cx + chartRadius*math.Cos(angle)
			y1 := cy + chartRadius*math.Sin(angle)
			x2 := cx + chartRadius*math.Cos(end)
			y2 := cy + chartRadius*math.Sin(end)
			large := 0
			if frac > 0.5 {
				large = 1
			}
			fmt.Fprintf(&b, `<path d="M%.1f,%.1f L%.1f,%.1f A%d,%d 0 %d,1 %.1f,%.1f Z" fill="%s"/>`,
				cx, cy, x1, y1, chartRadius, chartRadius, large, x2, y2, color)
			b.WriteString("\n")
			angle = end
		}

		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="14" height="14" fill="%s"/>`, chartSize+10, legendY-12, color)
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="14" font-family="sans-serif">%s %d</text>`,
			chartSize+30, legendY, s.label, s.count)
		b.WriteString("\n")
		legendY += 26
	}

	b.WriteString("</svg>\n")
	return b.String()
}
