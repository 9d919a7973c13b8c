package render

import (
	"context"

	svg "github.com/ajstarks/svgo"

	"github.com/book-expert/exam-render-service/internal/content"
	"github.com/book-expert/exam-render-service/internal/media"
)

const (
	imageHeight = 220
	imageWidth  = canvasWidth - blockPadding*2
)

// drawImage resolves the block's media reference and embeds it. A failed
// resolution degrades to the fixed unavailable placeholder; it is never
// an error.
func (r *Renderer) drawImage(ctx context.Context, canvas *svg.SVG, b content.Image) {
	ref := media.Ref{URL: b.URL, Bucket: b.Bucket, Path: b.Path}

	url := ""
	ok := false

	if r.resolver != nil {
		url, ok = r.resolver.Resolve(ctx, ref)
	}

	if !ok {
		drawUnavailable(canvas, b.Alt)
	} else {
		canvas.Image(blockPadding, 0, imageWidth, imageHeight, url,
			`preserveAspectRatio="xMidYMid meet"`)
	}

	if b.Caption != "" {
		canvas.Text(canvasWidth/2, imageHeight+20, b.Caption,
			styleCaption+";text-anchor:middle")
	}
}

// drawUnavailable draws the placeholder shown when an image cannot be
// resolved or loaded: a bordered box with a crossed-circle icon and a
// message.
func drawUnavailable(canvas *svg.SVG, alt string) {
	canvas.Rect(blockPadding, 0, imageWidth, imageHeight, stylePlaceholder)

	cx, cy, radius := canvasWidth/2, imageHeight/2-14, 22
	canvas.Circle(cx, cy, radius, "fill:none;stroke:#9ca3af;stroke-width:3")
	canvas.Line(cx-radius, cy+radius, cx+radius, cy-radius, "stroke:#9ca3af;stroke-width:3")

	message := "Image unavailable"
	if alt != "" {
		message = alt
	}

	canvas.Text(cx, cy+radius+28, message, styleCaption+";text-anchor:middle")
}
