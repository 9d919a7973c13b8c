package render

import (
	"context"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/book-expert/logger"

	"github.com/book-expert/exam-render-service/internal/content"
	"github.com/book-expert/exam-render-service/internal/media"
)

// Canvas geometry shared by the block drawings.
const (
	canvasWidth  = 400
	blockPadding = 12
	lineHeight   = 30
	gridCellSize = 30
)

// Styles.
const (
	styleText        = "font-family:sans-serif;font-size:16px;fill:#111827"
	styleCaption     = "font-family:sans-serif;font-size:13px;fill:#6b7280"
	styleHeader      = "font-family:sans-serif;font-size:16px;font-weight:bold;fill:#111827"
	styleFilled      = "fill:#3b82f6;stroke:#1f2937;stroke-width:1"
	styleEmpty       = "fill:#ffffff;stroke:#1f2937;stroke-width:1"
	styleStroke      = "stroke:#1f2937;stroke-width:2"
	styleThinStroke  = "stroke:#9ca3af;stroke-width:1"
	styleMarker      = "fill:#ef4444"
	stylePlaceholder = "fill:#f3f4f6;stroke:#d1d5db;stroke-width:1"
)

// Renderer draws content blocks as SVG. Image blocks consult the media
// resolver; every other variant is a pure function of the block value.
type Renderer struct {
	resolver *media.Resolver
	log      *logger.Logger
}

// New creates a renderer. The resolver may be nil, in which case image
// blocks always draw the unavailable placeholder.
func New(resolver *media.Resolver, log *logger.Logger) *Renderer {
	return &Renderer{
		resolver: resolver,
		log:      log,
	}
}

// RenderDocument draws the ordered block list as one vertically stacked
// SVG document written to w.
func (r *Renderer) RenderDocument(ctx context.Context, w io.Writer, doc content.Document) error {
	total := 0
	for _, block := range doc {
		total += blockHeight(block)
	}

	canvas := svg.New(w)
	canvas.Start(canvasWidth, total+blockPadding*2)

	y := blockPadding

	for _, block := range doc {
		canvas.Gtransform(fmt.Sprintf("translate(0,%d)", y))
		r.drawBlock(ctx, canvas, block)
		canvas.Gend()

		y += blockHeight(block)
	}

	canvas.End()

	return nil
}

// RenderBlock draws a single block as a standalone SVG document.
func (r *Renderer) RenderBlock(ctx context.Context, w io.Writer, block content.Block) error {
	canvas := svg.New(w)
	canvas.Start(canvasWidth, blockHeight(block)+blockPadding*2)

	canvas.Gtransform(fmt.Sprintf("translate(0,%d)", blockPadding))
	r.drawBlock(ctx, canvas, block)
	canvas.Gend()

	canvas.End()

	return nil
}

// drawBlock dispatches one case per block variant. An unknown variant
// draws nothing; that is a silent no-op, not a validation failure.
func (r *Renderer) drawBlock(ctx context.Context, canvas *svg.SVG, block content.Block) {
	switch b := block.(type) {
	case content.Text:
		canvas.Text(blockPadding, 20, b.Content, styleText)
	case content.Image:
		r.drawImage(ctx, canvas, b)
	case content.Table:
		drawTable(canvas, b)
	case content.Math:
		canvas.Text(blockPadding, 24, MathInline(b.Latex), styleText)
	case content.Grid:
		drawGrid(canvas, b)
	case content.NumberLine:
		drawNumberLine(canvas, b)
	case content.Chart:
		drawChart(canvas, b)
	case content.Shape:
		drawShape(canvas, b)
	case content.Tally:
		drawTallyRow(canvas, blockPadding, 10, b.Count)
	case content.Clock:
		drawClock(canvas, b)
	case content.Money:
		drawMoney(canvas, b)
	case content.Fraction:
		drawFraction(canvas, b)
	case content.Spacer:
		// Vertical whitespace only.
	default:
	}
}

// blockHeight is the vertical room a block occupies in a stacked layout.
func blockHeight(block content.Block) int {
	switch b := block.(type) {
	case content.Text:
		return lineHeight
	case content.Image:
		return imageHeight + lineHeight
	case content.Table:
		return tableHeight(b)
	case content.Math:
		return 36
	case content.Grid:
		return b.Rows*gridCellSize + blockPadding
	case content.NumberLine:
		return 70
	case content.Chart:
		return chartHeight + lineHeight
	case content.Shape:
		return 130
	case content.Tally:
		return 60
	case content.Money:
		return moneyHeight(b)
	case content.Clock:
		return clockHeight(b)
	case content.Fraction:
		return fractionHeight(b)
	case content.Spacer:
		if b.Height > 0 {
			return b.Height
		}

		return 20
	default:
		return 0
	}
}

func drawShape(canvas *svg.SVG, b content.Shape) {
	fill := b.Color
	if fill == "" {
		fill = "#3b82f6"
	}

	style := fmt.Sprintf("fill:%s;stroke:#1f2937;stroke-width:1", fill)
	cx, cy, size := canvasWidth/2, 60, 50

	switch b.Kind {
	case "circle":
		canvas.Circle(cx, cy, size, style)
	case "square":
		canvas.Rect(cx-size, cy-size, size*2, size*2, style)
	case "triangle":
		xs := []int{cx, cx - size, cx + size}
		ys := []int{cy - size, cy + size, cy + size}
		canvas.Polygon(xs, ys, style)
	default:
		// Named shape outside the drawn set: label it instead.
		canvas.Text(blockPadding, cy, b.Kind, styleText)
	}
}

// pointOnCircle maps a degree angle (0° at 3 o'clock, clockwise on
// screen) to coordinates on a circle.
func pointOnCircle(cx, cy, radius, deg float64) (float64, float64) {
	rad := deg * math.Pi / 180

	return cx + radius*math.Cos(rad), cy + radius*math.Sin(rad)
}
