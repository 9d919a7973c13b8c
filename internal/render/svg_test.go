package render_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/exam-render-service/internal/content"
	"github.com/book-expert/exam-render-service/internal/core"
	"github.com/book-expert/exam-render-service/internal/media"
	"github.com/book-expert/exam-render-service/internal/render"
)

// stubSigner resolves every bucket reference to a fixed host.
type stubSigner struct{}

func (stubSigner) Sign(_ context.Context, bucket, path string, ttl time.Duration) (core.SignedURL, error) {
	return core.SignedURL{URL: "https://signed.example/" + bucket + "/" + path, ValidFor: ttl}, nil
}

func newTestRenderer(t *testing.T, signer core.URLSigner) *render.Renderer {
	t.Helper()

	testLogger, err := logger.New(t.TempDir(), "render-test.log")
	require.NoError(t, err)

	resolver := media.NewResolver(signer, media.ResolverOptions{TTL: 0, Buffer: 0, Now: nil}, testLogger)

	return render.New(resolver, testLogger)
}

func renderOne(t *testing.T, renderer *render.Renderer, block content.Block) string {
	t.Helper()

	var buf bytes.Buffer

	err := renderer.RenderBlock(context.Background(), &buf, block)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "</svg>")

	return out
}

func TestRenderDocument_StacksBlocks(t *testing.T) {
	t.Parallel()

	renderer := newTestRenderer(t, stubSigner{})

	doc := content.Document{
		content.Text{BlockID: "b1", Content: "What time is it?"},
		content.Clock{BlockID: "b2", Hours: 3, Minutes: 0, ShowDigital: false},
	}

	var buf bytes.Buffer

	err := renderer.RenderDocument(context.Background(), &buf, doc)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "What time is it?")
	// One translated group per block.
	assert.Contains(t, out, `translate(0,12)`)
}

func TestRenderBlock_FractionCircle(t *testing.T) {
	t.Parallel()

	renderer := newTestRenderer(t, stubSigner{})

	out := renderOne(t, renderer, content.Fraction{
		BlockID: "b1", Numerator: 1, Denominator: 4, Display: content.FractionCircle,
	})

	// Quarter wedges are drawn as arc paths without the large-arc flag.
	assert.Contains(t, out, "<path")
	assert.Contains(t, out, " 0 0,1 ")
	assert.NotContains(t, out, " 0 1,1 ")
}

func TestRenderBlock_FractionHalfUsesLargeArc(t *testing.T) {
	t.Parallel()

	renderer := newTestRenderer(t, stubSigner{})

	out := renderOne(t, renderer, content.Fraction{
		BlockID: "b1", Numerator: 1, Denominator: 2, Display: content.FractionCircle,
	})

	assert.Contains(t, out, " 0 1,1 ")
}

func TestRenderBlock_FractionNumeric(t *testing.T) {
	t.Parallel()

	renderer := newTestRenderer(t, stubSigner{})

	out := renderOne(t, renderer, content.Fraction{
		BlockID: "b1", Numerator: 3, Denominator: 8, Display: content.FractionNumeric,
	})

	assert.Contains(t, out, "3/8")
}

func TestRenderBlock_ImageResolved(t *testing.T) {
	t.Parallel()

	renderer := newTestRenderer(t, stubSigner{})

	out := renderOne(t, renderer, content.Image{
		BlockID: "b1", URL: "", Bucket: "media", Path: "pie.png",
		Alt: "a pie", Caption: "A pie chart",
	})

	assert.Contains(t, out, "https://signed.example/media/pie.png")
	assert.Contains(t, out, "A pie chart")
}

func TestRenderBlock_ImageUnavailablePlaceholder(t *testing.T) {
	t.Parallel()

	// A nil resolver forces the placeholder path.
	testLogger, err := logger.New(t.TempDir(), "render-test.log")
	require.NoError(t, err)

	renderer := render.New(nil, testLogger)

	var buf bytes.Buffer

	err = renderer.RenderBlock(context.Background(), &buf, content.Image{
		BlockID: "b1", URL: "", Bucket: "media", Path: "gone.png", Alt: "", Caption: "",
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Image unavailable")
	assert.NotContains(t, buf.String(), "<image")
}

func TestRenderBlock_UnknownDrawsNothing(t *testing.T) {
	t.Parallel()

	renderer := newTestRenderer(t, stubSigner{})

	out := renderOne(t, renderer, content.Unknown{BlockID: "b1", Tag: "hologram"})

	assert.NotContains(t, out, "hologram")
}

func TestRenderBlock_ClockDigitalReadout(t *testing.T) {
	t.Parallel()

	renderer := newTestRenderer(t, stubSigner{})

	out := renderOne(t, renderer, content.Clock{
		BlockID: "b1", Hours: 3, Minutes: 5, ShowDigital: true,
	})

	assert.Contains(t, out, "03:05")
}

func TestRenderBlock_MoneyAmountFallback(t *testing.T) {
	t.Parallel()

	renderer := newTestRenderer(t, stubSigner{})

	out := renderOne(t, renderer, content.Money{
		BlockID: "b1", Amount: 1.5, Currency: "", Coins: nil,
	})

	assert.Contains(t, out, "$1.50")
}

func TestMathInline(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		latex string
		want  string
	}{
		{name: "fraction", latex: `\frac{1}{2}`, want: "1⁄2"},
		{name: "times", latex: `3 \times 4`, want: "3 × 4"},
		{name: "divide", latex: `8 \div 2`, want: "8 ÷ 2"},
		{name: "square root", latex: `\sqrt{16}`, want: "√16"},
		{name: "superscript", latex: `x^2`, want: "x²"},
		{name: "braced superscript", latex: `x^{23}`, want: "x²³"},
		{name: "subscript", latex: `a_1`, want: "a₁"},
		{name: "unmappable script passes through", latex: `x^{abc}`, want: `x^{abc}`},
		{name: "plain text untouched", latex: `2 + 2 = 4`, want: "2 + 2 = 4"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, render.MathInline(testCase.latex))
		})
	}
}
