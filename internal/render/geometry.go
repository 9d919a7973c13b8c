// Package render turns content blocks into SVG drawings.
//
// The package is split in two layers: pure geometry functions that compute
// layouts (wedges, ticks, hand angles, tally groups) and an SVG emission
// layer that draws them. The geometry layer carries the algorithmic
// content and is what the tests pin down.
package render

import "math"

// quinaryGroupSize is the tally grouping unit: four parallel strokes
// closed by one diagonal.
const quinaryGroupSize = 5

// Wedge is one angular sector of a circle diagram. Angles are in degrees
// measured from the 3-o'clock axis, increasing clockwise on screen.
type Wedge struct {
	StartDeg float64
	EndDeg   float64
	Filled   bool
	LargeArc bool
}

// FractionWedges divides a circle into denominator equal wedges starting
// at the 12-o'clock position; wedge i is filled iff i < numerator. With a
// denominator of 1 or 2 every wedge spans at least half the circle, so
// the arc must be drawn with the large-arc flag.
//
// Numerator may exceed denominator (improper fractions); the filled count
// saturates at denominator.
func FractionWedges(numerator, denominator int) []Wedge {
	if denominator < 1 {
		return nil
	}

	span := 360.0 / float64(denominator)
	wedges := make([]Wedge, denominator)

	for i := range wedges {
		wedges[i] = Wedge{
			StartDeg: float64(i)*span - 90,
			EndDeg:   float64(i+1)*span - 90,
			Filled:   i < numerator,
			LargeArc: denominator <= 2,
		}
	}

	return wedges
}

// BarSegment is one segment of a fraction bar.
type BarSegment struct {
	Filled bool
}

// FractionSegments lays out denominator equal-width adjacent segments,
// the first numerator of them filled.
func FractionSegments(numerator, denominator int) []BarSegment {
	if denominator < 1 {
		return nil
	}

	segments := make([]BarSegment, denominator)
	for i := range segments {
		segments[i].Filled = i < numerator
	}

	return segments
}

// Tick is one labeled tick of a number line, with its horizontal position
// as a percentage of the line width.
type Tick struct {
	Value    float64
	Position float64
}

// NumberLineTicks generates ticks from min to max inclusive. A step of
// zero selects the default of (max−min)/4. A degenerate range yields no
// ticks.
func NumberLineTicks(min, max, step float64) []Tick {
	if max <= min {
		return nil
	}

	if step <= 0 {
		step = (max - min) / 4
	}

	var ticks []Tick

	// A half-step epsilon keeps the max tick despite float accumulation.
	for v := min; v <= max+step/2; v += step {
		value := v
		if value > max {
			value = max
		}

		ticks = append(ticks, Tick{
			Value:    value,
			Position: LinePosition(value, min, max),
		})
	}

	return ticks
}

// LinePosition maps a value to its horizontal position on a number line,
// as a percentage: (value−min)/(max−min)·100.
func LinePosition(value, min, max float64) float64 {
	if max <= min {
		return 0
	}

	return (value - min) / (max - min) * 100
}

// BarHeights normalizes chart values to height fractions of the tallest
// bar. All-zero (or all non-positive) input is a division by zero and is
// special-cased to zero heights rather than propagating NaN into layout.
func BarHeights(values []float64) []float64 {
	heights := make([]float64, len(values))

	maxValue := 0.0

	for _, v := range values {
		if v > maxValue {
			maxValue = v
		}
	}

	if maxValue == 0 {
		return heights
	}

	for i, v := range values {
		if v > 0 {
			heights[i] = v / maxValue
		}
	}

	return heights
}

// DotCount is the number of discrete markers stacked for a category of a
// dot plot: one per whole unit of its value.
func DotCount(value float64) int {
	if value <= 0 {
		return 0
	}

	return int(math.Floor(value))
}

// ClockHands returns the hour and minute hand angles in degrees from the
// 3-o'clock axis. hours=3, minutes=0 puts the hour hand at 0° (pointing
// right); hours=6 puts it at 90°.
func ClockHands(hours, minutes int) (hourDeg, minuteDeg float64) {
	hourDeg = (float64(hours%12) + float64(minutes)/60) * 30 - 90
	minuteDeg = float64(minutes)*6 - 90

	return hourDeg, minuteDeg
}

// TallyLayout is the quinary decomposition of a count.
type TallyLayout struct {
	Groups  int
	Singles int
}

// TallyDecompose splits a count into complete groups of five strokes plus
// leftover singles. Total strokes drawn equals the count for every
// count ≥ 0; negative counts decompose to nothing.
func TallyDecompose(count int) TallyLayout {
	if count < 0 {
		return TallyLayout{Groups: 0, Singles: 0}
	}

	return TallyLayout{
		Groups:  count / quinaryGroupSize,
		Singles: count % quinaryGroupSize,
	}
}

// Strokes is the total stroke count of the layout.
func (t TallyLayout) Strokes() int {
	return t.Groups*quinaryGroupSize + t.Singles
}

// MarkerAt reports whether a Cartesian grid marker lands on the cell at
// the given screen position. Cells are addressed in top-down row order
// while markers use bottom-up map coordinates, so the row index is
// inverted: marker.y == rows − rowIndex − 1. The inversion is deliberate
// and must match the authoring convention exactly.
func MarkerAt(markerX, markerY, rowIndex, colIndex, rows int) bool {
	return markerX == colIndex && markerY == rows-rowIndex-1
}
