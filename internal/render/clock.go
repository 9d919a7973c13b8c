package render

import (
	"fmt"

	svg "github.com/ajstarks/svgo"

	"github.com/book-expert/exam-render-service/internal/content"
)

const (
	clockRadius       = 60.0
	hourHandLength    = 32.0
	minuteHandLength  = 48.0
	hourTickInset     = 8.0
	digitalReadoutPad = 28
)

func clockHeight(b content.Clock) int {
	height := int(clockRadius)*2 + blockPadding
	if b.ShowDigital {
		height += digitalReadoutPad
	}

	return height
}

// drawClock draws an analog face with twelve hour ticks and the two
// hands, plus an optional zero-padded digital readout.
func drawClock(canvas *svg.SVG, b content.Clock) {
	cx := float64(canvasWidth) / 2
	cy := clockRadius

	canvas.Circle(int(cx), int(cy), int(clockRadius), styleEmpty)

	for i := 0; i < 12; i++ {
		deg := float64(i) * 30
		x1, y1 := pointOnCircle(cx, cy, clockRadius-hourTickInset, deg)
		x2, y2 := pointOnCircle(cx, cy, clockRadius-2, deg)
		canvas.Line(int(x1), int(y1), int(x2), int(y2), styleThinStroke)
	}

	hourDeg, minuteDeg := ClockHands(b.Hours, b.Minutes)

	hx, hy := pointOnCircle(cx, cy, hourHandLength, hourDeg)
	canvas.Line(int(cx), int(cy), int(hx), int(hy), "stroke:#111827;stroke-width:4;stroke-linecap:round")

	mx, my := pointOnCircle(cx, cy, minuteHandLength, minuteDeg)
	canvas.Line(int(cx), int(cy), int(mx), int(my), "stroke:#111827;stroke-width:2;stroke-linecap:round")

	canvas.Circle(int(cx), int(cy), 3, "fill:#111827")

	if b.ShowDigital {
		canvas.Text(int(cx), int(clockRadius)*2+digitalReadoutPad-6,
			DigitalReadout(b.Hours, b.Minutes), styleHeader+";text-anchor:middle")
	}
}

// DigitalReadout formats the zero-padded HH:MM readout.
func DigitalReadout(hours, minutes int) string {
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}
