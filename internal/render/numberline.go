package render

import (
	svg "github.com/ajstarks/svgo"

	"github.com/book-expert/exam-render-service/internal/content"
)

const (
	lineMargin   = 24
	lineBaseline = 36
	tickHalf     = 6
)

func drawNumberLine(canvas *svg.SVG, b content.NumberLine) {
	if b.Max <= b.Min {
		return
	}

	left := lineMargin
	right := canvasWidth - lineMargin
	span := right - left

	canvas.Line(left, lineBaseline, right, lineBaseline, styleStroke)

	for _, tick := range NumberLineTicks(b.Min, b.Max, b.Step) {
		x := left + int(tick.Position/100*float64(span))

		canvas.Line(x, lineBaseline-tickHalf, x, lineBaseline+tickHalf, styleStroke)
		canvas.Text(x, lineBaseline+24, trimZeros(tick.Value),
			styleCaption+";text-anchor:middle")
	}

	// Markers share the tick position function but are labeled
	// independently, above the line.
	for _, marker := range b.Markers {
		x := left + int(LinePosition(marker.Value, b.Min, b.Max)/100*float64(span))

		canvas.Circle(x, lineBaseline, 5, styleMarker)

		if marker.Label != "" {
			canvas.Text(x, lineBaseline-12, marker.Label,
				styleCaption+";text-anchor:middle")
		}
	}
}
