package render

import (
	svg "github.com/ajstarks/svgo"
)

const (
	tallyStrokeHeight = 28
	tallyStrokeGap    = 7
	tallyGroupGap     = 16
)

// drawTallyRow draws a count as quinary tally marks at the given origin:
// complete groups of four parallel strokes crossed by one diagonal,
// followed by the leftover singles. The strokes drawn always total the
// count.
func drawTallyRow(canvas *svg.SVG, x, y, count int) {
	layout := TallyDecompose(count)

	for g := 0; g < layout.Groups; g++ {
		drawTallyGroup(canvas, x, y)
		x += 4*tallyStrokeGap + tallyGroupGap
	}

	for s := 0; s < layout.Singles; s++ {
		canvas.Line(x, y, x, y+tallyStrokeHeight, styleStroke)
		x += tallyStrokeGap
	}
}

func drawTallyGroup(canvas *svg.SVG, x, y int) {
	for i := 0; i < 4; i++ {
		strokeX := x + i*tallyStrokeGap
		canvas.Line(strokeX, y, strokeX, y+tallyStrokeHeight, styleStroke)
	}

	// The fifth stroke crosses the four diagonally.
	canvas.Line(x-3, y+tallyStrokeHeight-4, x+3*tallyStrokeGap+3, y+4, styleStroke)
}
