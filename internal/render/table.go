package render

import (
	svg "github.com/ajstarks/svgo"

	"github.com/book-expert/exam-render-service/internal/content"
)

const tableRowHeight = 34

func tableHeight(b content.Table) int {
	rows := len(b.Rows)
	if len(b.Headers) > 0 {
		rows++
	}

	height := rows*tableRowHeight + blockPadding
	if b.Caption != "" {
		height += lineHeight
	}

	return height
}

// drawTable renders the optional header row and the row-major cell
// matrix. A tally-valued cell delegates to the tally renderer.
func drawTable(canvas *svg.SVG, b content.Table) {
	cols := len(b.Headers)

	for _, row := range b.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	if cols == 0 {
		return
	}

	colWidth := (canvasWidth - blockPadding*2) / cols
	y := 0

	if b.Caption != "" {
		canvas.Text(canvasWidth/2, 18, b.Caption, styleCaption+";text-anchor:middle")
		y += lineHeight
	}

	if len(b.Headers) > 0 {
		for col, header := range b.Headers {
			x := blockPadding + col*colWidth
			canvas.Rect(x, y, colWidth, tableRowHeight, "fill:#e5e7eb;stroke:#1f2937;stroke-width:1")
			canvas.Text(x+colWidth/2, y+22, header, styleHeader+";text-anchor:middle")
		}

		y += tableRowHeight
	}

	for _, row := range b.Rows {
		for col := 0; col < cols; col++ {
			x := blockPadding + col*colWidth
			canvas.Rect(x, y, colWidth, tableRowHeight, styleEmpty)

			if col >= len(row) {
				continue
			}

			drawCell(canvas, row[col], x, y, colWidth)
		}

		y += tableRowHeight
	}
}

func drawCell(canvas *svg.SVG, cell content.Cell, x, y, colWidth int) {
	switch cell.Kind {
	case content.CellTally:
		drawTallyRow(canvas, x+6, y+4, cell.Tally)
	case content.CellNumber:
		canvas.Text(x+colWidth/2, y+22, trimZeros(cell.Number), styleText+";text-anchor:middle")
	case content.CellText:
		canvas.Text(x+colWidth/2, y+22, cell.Text, styleText+";text-anchor:middle")
	}
}
