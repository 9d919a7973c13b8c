package render

import (
	"fmt"

	svg "github.com/ajstarks/svgo"

	"github.com/book-expert/exam-render-service/internal/content"
)

const (
	fractionRadius    = 60.0
	fractionBarWidth  = 300
	fractionBarHeight = 36
)

func fractionHeight(b content.Fraction) int {
	switch b.Display {
	case content.FractionBar:
		return fractionBarHeight + blockPadding
	case content.FractionNumeric:
		return 40
	case content.FractionCircle:
		return int(fractionRadius)*2 + blockPadding
	default:
		return int(fractionRadius)*2 + blockPadding
	}
}

func drawFraction(canvas *svg.SVG, b content.Fraction) {
	switch b.Display {
	case content.FractionBar:
		drawFractionBar(canvas, b)
	case content.FractionNumeric:
		canvas.Text(canvasWidth/2, 28, fmt.Sprintf("%d/%d", b.Numerator, b.Denominator),
			styleText+";text-anchor:middle")
	case content.FractionCircle:
		drawFractionCircle(canvas, b)
	default:
		drawFractionCircle(canvas, b)
	}
}

// drawFractionCircle draws denominator wedges clockwise from 12 o'clock,
// the first numerator of them filled.
func drawFractionCircle(canvas *svg.SVG, b content.Fraction) {
	cx := float64(canvasWidth) / 2
	cy := fractionRadius

	wedges := FractionWedges(b.Numerator, b.Denominator)

	for _, wedge := range wedges {
		style := styleEmpty
		if wedge.Filled {
			style = styleFilled
		}

		canvas.Path(wedgePath(cx, cy, fractionRadius, wedge), style)
	}
}

// wedgePath builds the SVG path for one wedge: move to center, line to
// the arc start, arc to the end, close. The large-arc flag comes from the
// layout, since a 1- or 2-wedge circle cannot be drawn with the minor
// arc.
func wedgePath(cx, cy, radius float64, w Wedge) string {
	x1, y1 := pointOnCircle(cx, cy, radius, w.StartDeg)
	x2, y2 := pointOnCircle(cx, cy, radius, w.EndDeg)

	large := 0
	if w.LargeArc {
		large = 1
	}

	return fmt.Sprintf("M%.2f,%.2f L%.2f,%.2f A%.2f,%.2f 0 %d,1 %.2f,%.2f Z",
		cx, cy, x1, y1, radius, radius, large, x2, y2)
}

func drawFractionBar(canvas *svg.SVG, b content.Fraction) {
	segments := FractionSegments(b.Numerator, b.Denominator)
	if len(segments) == 0 {
		return
	}

	left := (canvasWidth - fractionBarWidth) / 2
	width := fractionBarWidth / len(segments)

	for i, segment := range segments {
		style := styleEmpty
		if segment.Filled {
			style = styleFilled
		}

		canvas.Rect(left+i*width, 0, width, fractionBarHeight, style)
	}
}
