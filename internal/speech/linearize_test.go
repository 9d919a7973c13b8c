// Package speech_test tests document linearization and the LaTeX-to-speech
// rewrite rules.
package speech_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/book-expert/exam-render-service/internal/content"
	"github.com/book-expert/exam-render-service/internal/speech"
)

func TestLatexToSpeech(t *testing.T) {
	t.Parallel()

	linearizer := speech.NewLinearizer()

	testCases := []struct {
		name  string
		latex string
		want  string
	}{
		{name: "fraction", latex: `\frac{1}{2}`, want: "1 over 2"},
		{name: "times", latex: `3 \times 4`, want: "3 times 4"},
		{name: "divide", latex: `8 \div 2`, want: "8 divided by 2"},
		{name: "plus or minus", latex: `5 \pm 1`, want: "5 plus or minus 1"},
		{name: "square root", latex: `\sqrt{9}`, want: "square root of 9"},
		{name: "squared bare", latex: `x^2`, want: "x squared"},
		{name: "squared braced", latex: `x^{2}`, want: "x squared"},
		{name: "cubed", latex: `x^3`, want: "x cubed"},
		{name: "generic power braced", latex: `x^{10}`, want: "x to the power of 10"},
		{name: "generic power bare", latex: `x^n`, want: "x to the power of n"},
		{name: "nested fraction in expression", latex: `\frac{3}{4} \times 8`, want: "3 over 4 times 8"},
		{name: "plain expression passes through", latex: `2 + 2 = 4`, want: "2 + 2 = 4"},
		{name: "braces stripped", latex: `{x} + {y}`, want: "x + y"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, linearizer.LatexToSpeech(testCase.latex))
		})
	}
}

func TestLinearize_BlockPhrases(t *testing.T) {
	t.Parallel()

	linearizer := speech.NewLinearizer()

	testCases := []struct {
		name  string
		block content.Block
		want  string
	}{
		{
			name:  "text speaks its content",
			block: content.Text{BlockID: "b1", Content: "Count the apples."},
			want:  "Count the apples.",
		},
		{
			name:  "fraction speaks numerator over denominator",
			block: content.Fraction{BlockID: "b1", Numerator: 3, Denominator: 4, Display: content.FractionCircle},
			want:  "3 over 4",
		},
		{
			name:  "math is rewritten",
			block: content.Math{BlockID: "b1", Latex: `\frac{1}{2} \times 6`},
			want:  "1 over 2 times 6",
		},
		{
			name:  "number line speaks its bounds",
			block: content.NumberLine{BlockID: "b1", Min: 0, Max: 10, Step: 0, Markers: nil},
			want:  "A number line from 0 to 10",
		},
		{
			name:  "fractional bounds keep their decimals",
			block: content.NumberLine{BlockID: "b1", Min: 0, Max: 2.5, Step: 0, Markers: nil},
			want:  "A number line from 0 to 2.5",
		},
		{
			name:  "grid has a fixed phrase",
			block: content.Grid{BlockID: "b1", Rows: 3, Cols: 3, FilledCells: nil, Markers: nil},
			want:  "A grid is shown",
		},
		{
			name:  "chart prefers its title",
			block: content.Chart{BlockID: "b1", Kind: content.ChartBar, Title: "Favorite Fruits", Values: nil},
			want:  "Favorite Fruits",
		},
		{
			name:  "untitled chart names its kind",
			block: content.Chart{BlockID: "b1", Kind: content.ChartDot, Title: "", Values: nil},
			want:  "A dot chart is shown",
		},
		{
			name:  "table prefers its caption",
			block: content.Table{BlockID: "b1", Caption: "Pets in class", Headers: nil, Rows: nil},
			want:  "Pets in class",
		},
		{
			name:  "captionless table has a fixed phrase",
			block: content.Table{BlockID: "b1", Caption: "", Headers: nil, Rows: nil},
			want:  "A table is shown",
		},
		{
			name:  "clock speaks zero-padded minutes",
			block: content.Clock{BlockID: "b1", Hours: 3, Minutes: 5, ShowDigital: false},
			want:  "A clock showing 3:05",
		},
		{
			name:  "money speaks the amount",
			block: content.Money{BlockID: "b1", Amount: 1.5, Currency: "", Coins: nil},
			want:  "1.50 dollars",
		},
		{
			name:  "tally speaks the count",
			block: content.Tally{BlockID: "b1", Count: 7},
			want:  "7 tally marks",
		},
		{
			name:  "shape speaks its kind",
			block: content.Shape{BlockID: "b1", Kind: "circle", Color: "red"},
			want:  "A circle shape",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got := linearizer.Linearize(content.Document{testCase.block}, nil)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestLinearize_ImagePhrases(t *testing.T) {
	t.Parallel()

	linearizer := speech.NewLinearizer()

	withCaption := content.Image{
		BlockID: "b1", URL: "https://cdn.example/a.png",
		Bucket: "", Path: "", Alt: "", Caption: "Three red apples",
	}
	assert.Equal(t, "Three red apples",
		linearizer.Linearize(content.Document{withCaption}, nil))

	withAlt := content.Image{
		BlockID: "b1", URL: "https://cdn.example/a.png",
		Bucket: "", Path: "", Alt: "a pie cut into quarters", Caption: "",
	}
	assert.Equal(t, "Image showing a pie cut into quarters",
		linearizer.Linearize(content.Document{withAlt}, nil))

	// Generic alt text says nothing useful and is omitted.
	genericAlt := content.Image{
		BlockID: "b1", URL: "https://cdn.example/a.png",
		Bucket: "", Path: "", Alt: "Image", Caption: "",
	}
	assert.Empty(t, linearizer.Linearize(content.Document{genericAlt}, nil))
}

func TestLinearize_SilentBlocksOmitted(t *testing.T) {
	t.Parallel()

	linearizer := speech.NewLinearizer()

	doc := content.Document{
		content.Text{BlockID: "b1", Content: "First."},
		content.Spacer{BlockID: "b2", Height: 20},
		content.Unknown{BlockID: "b3", Tag: "hologram"},
		content.Text{BlockID: "b4", Content: "Second."},
	}

	assert.Equal(t, "First. Second.", linearizer.Linearize(doc, nil))
}

func TestLinearize_JoinsAndCollapsesPeriods(t *testing.T) {
	t.Parallel()

	linearizer := speech.NewLinearizer()

	// A phrase ending in a period must not double up with the separator.
	doc := content.Document{
		content.Text{BlockID: "b1", Content: "Look at the chart."},
		content.Tally{BlockID: "b2", Count: 4},
	}

	assert.Equal(t, "Look at the chart. 4 tally marks", linearizer.Linearize(doc, nil))
}

func TestLinearize_Options(t *testing.T) {
	t.Parallel()

	linearizer := speech.NewLinearizer()

	doc := content.Document{
		content.Text{BlockID: "b1", Content: "Pick one"},
	}

	options := []content.Option{
		{ID: "A", Text: "12", Image: nil, Blocks: nil, Correct: false},
		{
			ID: "B", Text: "",
			Image:   nil,
			Blocks:  content.Document{content.Fraction{BlockID: "n1", Numerator: 1, Denominator: 2, Display: content.FractionNumeric}},
			Correct: true,
		},
		{
			ID: "C", Text: "",
			Image:   &content.Image{BlockID: "i1", URL: "https://cdn.example/c.png", Bucket: "", Path: "", Alt: "", Caption: ""},
			Blocks:  nil,
			Correct: false,
		},
	}

	got := linearizer.Linearize(doc, options)

	assert.Contains(t, got, "The options are: Option A: 12")
	assert.Contains(t, got, "Option B: 1 over 2")
	assert.Contains(t, got, "Option C: An image")
	assert.NotContains(t, got, ":.", "the lead-in colon must not double up with the separator")
}
