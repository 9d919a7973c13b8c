package render

import (
	svg "github.com/ajstarks/svgo"

	"github.com/book-expert/exam-render-service/internal/content"
)

// drawGrid draws the rows×cols matrix with highlighted cells and markers.
// FilledCells address cells in top-down screen order; markers carry
// bottom-up map coordinates and are matched per cell through MarkerAt.
func drawGrid(canvas *svg.SVG, b content.Grid) {
	if b.Rows < 1 || b.Cols < 1 {
		return
	}

	left := (canvasWidth - b.Cols*gridCellSize) / 2
	if left < 0 {
		left = 0
	}

	filled := make(map[[2]int]bool, len(b.FilledCells))
	for _, cell := range b.FilledCells {
		filled[[2]int{cell.Row, cell.Col}] = true
	}

	for row := 0; row < b.Rows; row++ {
		for col := 0; col < b.Cols; col++ {
			x := left + col*gridCellSize
			y := row * gridCellSize

			style := styleEmpty
			if filled[[2]int{row, col}] {
				style = styleFilled
			}

			canvas.Rect(x, y, gridCellSize, gridCellSize, style)

			for _, marker := range b.Markers {
				if !MarkerAt(marker.X, marker.Y, row, col, b.Rows) {
					continue
				}

				canvas.Circle(x+gridCellSize/2, y+gridCellSize/2, 6, styleMarker)

				if marker.Label != "" {
					canvas.Text(x+gridCellSize/2, y+gridCellSize/2-10,
						marker.Label, styleCaption+";text-anchor:middle")
				}
			}
		}
	}
}
