package render

import (
	"fmt"

	svg "github.com/ajstarks/svgo"

	"github.com/book-expert/exam-render-service/internal/content"
)

const (
	chartHeight  = 180
	chartAreaTop = 30
	dotRadius    = 6
)

func drawChart(canvas *svg.SVG, b content.Chart) {
	if b.Title != "" {
		canvas.Text(canvasWidth/2, 20, b.Title, styleHeader+";text-anchor:middle")
	}

	if len(b.Values) == 0 {
		return
	}

	switch b.Kind {
	case content.ChartDot:
		drawDotPlot(canvas, b)
	case content.ChartBar:
		drawBarChart(canvas, b)
	default:
		drawBarChart(canvas, b)
	}
}

// drawBarChart scales every bar against the tallest value. The all-zero
// case comes back from BarHeights as zero-height bars, so nothing
// non-finite ever reaches the layout.
func drawBarChart(canvas *svg.SVG, b content.Chart) {
	values := make([]float64, len(b.Values))
	for i, v := range b.Values {
		values[i] = v.Value
	}

	heights := BarHeights(values)

	area := chartHeight - chartAreaTop - lineHeight
	slot := (canvasWidth - blockPadding*2) / len(b.Values)
	barWidth := slot * 2 / 3

	baseline := chartAreaTop + area
	canvas.Line(blockPadding, baseline, canvasWidth-blockPadding, baseline, styleStroke)

	for i, v := range b.Values {
		barHeight := int(heights[i] * float64(area))
		x := blockPadding + i*slot + (slot-barWidth)/2

		if barHeight > 0 {
			canvas.Rect(x, baseline-barHeight, barWidth, barHeight, styleFilled)
		}

		canvas.Text(blockPadding+i*slot+slot/2, baseline+20, v.Label,
			styleCaption+";text-anchor:middle")
		canvas.Text(blockPadding+i*slot+slot/2, baseline-barHeight-6,
			trimZeros(v.Value), styleCaption+";text-anchor:middle")
	}
}

// drawDotPlot stacks one discrete marker per whole unit of each
// category's value.
func drawDotPlot(canvas *svg.SVG, b content.Chart) {
	area := chartHeight - chartAreaTop - lineHeight
	slot := (canvasWidth - blockPadding*2) / len(b.Values)

	baseline := chartAreaTop + area
	canvas.Line(blockPadding, baseline, canvasWidth-blockPadding, baseline, styleStroke)

	for i, v := range b.Values {
		x := blockPadding + i*slot + slot/2

		for dot := 0; dot < DotCount(v.Value); dot++ {
			cy := baseline - dotRadius - dot*(dotRadius*2+3)
			canvas.Circle(x, cy, dotRadius, styleFilled)
		}

		canvas.Text(x, baseline+20, v.Label, styleCaption+";text-anchor:middle")
	}
}

// trimZeros formats a value without a trailing ".0" for whole numbers.
func trimZeros(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}

	return fmt.Sprintf("%g", v)
}
