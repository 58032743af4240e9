package diagnostics

import (
	"fmt"
	"html"
	"strings"
)

func barChartSVG(title string, labels []string, values []float64, color string) string {
	width := 600
	height := 400
	padding := 50
	if len(labels) == 0 {
		return emptySVG(width, height, title)
	}
	barWidth := (width - 2*padding) / len(labels)
	if barWidth < 4 {
		barWidth = 4
		width = 2*padding + barWidth*len(labels)
	}
	maxBarHeight := height - 2*padding

	var maxVal float64
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}

	var sb strings.Builder
	writeHeader(&sb, width, height, title)

	for i, val := range values {
		barHeight := 0
		if maxVal > 0 {
			barHeight = int(val / maxVal * float64(maxBarHeight))
		}
		x := padding + i*barWidth
		y := height - padding - barHeight
		inset := barWidth / 8

		sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s" rx="2" />`, x+inset, y, barWidth-2*inset, barHeight, color))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="white" font-family="Arial" font-size="10" text-anchor="end" transform="rotate(-45 %d %d)">%s</text>`,
			x+barWidth/2, height-padding+12, x+barWidth/2, height-padding+12, html.EscapeString(labels[i])))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="white" font-family="Arial" font-size="9" text-anchor="middle">%g</text>`, x+barWidth/2, y-4, val))
	}

	sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="white" stroke-width="2" />`, padding, height-padding, width-padding, height-padding))
	sb.WriteString(`</svg>`)
	return sb.String()
}

// heatTableSVG draws the confusion matrix as shaded cells, rows are true
// labels and columns predicted labels.
func heatTableSVG(title string, labels []string, cm [][]int) string {
	cell := 80
	left, top := 120, 70
	width := left + cell*len(labels) + 20
	height := top + cell*len(labels) + 20
	if len(labels) == 0 {
		return emptySVG(400, 200, title)
	}

	maxVal := 0
	for _, row := range cm {
		for _, v := range row {
			if v > maxVal {
				maxVal = v
			}
		}
	}

	var sb strings.Builder
	writeHeader(&sb, width, height, title)
	for j, l := range labels {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="white" font-family="Arial" font-size="12" text-anchor="middle">%s</text>`,
			left+j*cell+cell/2, top-8, html.EscapeString(l)))
	}
	for i, row := range cm {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="white" font-family="Arial" font-size="12" text-anchor="end">%s</text>`,
			left-8, top+i*cell+cell/2+4, html.EscapeString(labels[i])))
		for j, v := range row {
			opacity := 0.05
			if maxVal > 0 {
				opacity = 0.1 + 0.9*float64(v)/float64(maxVal)
			}
			x, y := left+j*cell, top+i*cell
			sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="#4a90e2" fill-opacity="%.2f" stroke="#1a1a1a" />`, x, y, cell, cell, opacity))
			sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="white" font-family="Arial" font-size="16" text-anchor="middle">%d</text>`, x+cell/2, y+cell/2+6, v))
		}
	}
	sb.WriteString(`</svg>`)
	return sb.String()
}

func writeHeader(sb *strings.Builder, width, height int, title string) {
	sb.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`, width, height, width, height))
	sb.WriteString(`<rect width="100%" height="100%" fill="#1a1a1a" />`)
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="30" fill="white" font-family="Arial" font-size="20" text-anchor="middle">%s</text>`, width/2, html.EscapeString(title)))
}

func emptySVG(width, height int, title string) string {
	var sb strings.Builder
	writeHeader(&sb, width, height, title)
	sb.WriteString(`</svg>`)
	return sb.String()
}
