// Package speech flattens content documents into a single speakable
// transcript and drives the synthetic speech engine that reads it.
//
// Linearization is purely lexical: each block maps to a short phrase and
// the phrases are joined into one flat sentence sequence. The geometric
// rendering of a block never influences its phrase.
package speech

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/book-expert/exam-render-service/internal/content"
)

// Fixed phrases.
const (
	phraseTableShown  = "A table is shown"
	phraseGridShown   = "A grid is shown"
	phraseOptionsLead = "The options are:"
	phraseImageOption = "An image"
)

const phraseSeparator = ". "

// Linearizer converts block lists into speakable text. It precompiles the
// LaTeX-to-speech patterns once; the zero cost per call keeps the common
// case fast.
type Linearizer struct {
	fracPattern       *regexp.Regexp
	sqrtPattern       *regexp.Regexp
	squaredPattern    *regexp.Regexp
	cubedPattern      *regexp.Regexp
	powerBracePattern *regexp.Regexp
	powerBarePattern  *regexp.Regexp
	stripPattern      *regexp.Regexp
	whitespacePattern *regexp.Regexp
	doublePeriod      *regexp.Regexp
	colonPeriod       *regexp.Regexp
	operatorReplacer  *strings.Replacer
}

// NewLinearizer creates a linearizer with compiled rewrite patterns.
func NewLinearizer() *Linearizer {
	return &Linearizer{
		fracPattern:       regexp.MustCompile(`\\frac\{([^{}]*)\}\{([^{}]*)\}`),
		sqrtPattern:       regexp.MustCompile(`\\sqrt\{([^{}]*)\}`),
		squaredPattern:    regexp.MustCompile(`\^(\{2\}|2\b)`),
		cubedPattern:      regexp.MustCompile(`\^(\{3\}|3\b)`),
		powerBracePattern: regexp.MustCompile(`\^\{([^{}]*)\}`),
		powerBarePattern:  regexp.MustCompile(`\^([0-9A-Za-z]+)`),
		stripPattern:      regexp.MustCompile(`[{}\\]`),
		whitespacePattern: regexp.MustCompile(`\s+`),
		doublePeriod:      regexp.MustCompile(`\.{2,}`),
		colonPeriod:       regexp.MustCompile(`:\.`),
		operatorReplacer: strings.NewReplacer(
			`\times`, " times ",
			`\div`, " divided by ",
			`\pm`, " plus or minus ",
		),
	}
}

// Linearize produces one flat speakable string for a block list, plus the
// answer options when supplied. Blocks with nothing to say (spacers,
// captionless images without alt text, unknown types) are omitted.
func (l *Linearizer) Linearize(doc content.Document, options []content.Option) string {
	var phrases []string

	for _, block := range doc {
		phrase, ok := l.phrase(block)
		if ok {
			phrases = append(phrases, phrase)
		}
	}

	if len(options) > 0 {
		phrases = append(phrases, phraseOptionsLead)

		for _, option := range options {
			phrases = append(phrases,
				fmt.Sprintf("Option %s: %s", option.ID, l.optionPhrase(option)))
		}
	}

	// The separator doubles up after the options lead-in, which already
	// ends in a colon; collapse that the same way as repeated periods.
	joined := strings.Join(phrases, phraseSeparator)
	joined = l.doublePeriod.ReplaceAllString(joined, ".")
	joined = l.colonPeriod.ReplaceAllString(joined, ":")

	return strings.TrimSpace(joined)
}

// phrase maps one block to its phrase. The second return is false when
// the block contributes nothing.
func (l *Linearizer) phrase(block content.Block) (string, bool) {
	switch b := block.(type) {
	case content.Text:
		return b.Content, b.Content != ""
	case content.Image:
		return imagePhrase(b)
	case content.Table:
		if b.Caption != "" {
			return b.Caption, true
		}

		return phraseTableShown, true
	case content.Fraction:
		return fmt.Sprintf("%d over %d", b.Numerator, b.Denominator), true
	case content.Math:
		return l.LatexToSpeech(b.Latex), true
	case content.NumberLine:
		return fmt.Sprintf("A number line from %s to %s",
			formatNumber(b.Min), formatNumber(b.Max)), true
	case content.Grid:
		return phraseGridShown, true
	case content.Chart:
		if b.Title != "" {
			return b.Title, true
		}

		return fmt.Sprintf("A %s chart is shown", b.Kind), true
	case content.Clock:
		return fmt.Sprintf("A clock showing %d:%02d", b.Hours, b.Minutes), true
	case content.Money:
		return fmt.Sprintf("%.2f dollars", b.Amount), true
	case content.Tally:
		return fmt.Sprintf("%d tally marks", b.Count), true
	case content.Shape:
		return fmt.Sprintf("A %s shape", b.Kind), true
	case content.Spacer:
		return "", false
	default:
		return "", false
	}
}

// imagePhrase prefers the caption, then meaningful alt text, else omits
// the image from speech entirely.
func imagePhrase(b content.Image) (string, bool) {
	if b.Caption != "" {
		return b.Caption, true
	}

	alt := strings.TrimSpace(b.Alt)
	if alt != "" && !strings.EqualFold(alt, "image") {
		return "Image showing " + alt, true
	}

	return "", false
}

// optionPhrase resolves an option's spoken form: its literal text, the
// linearization of its nested blocks, or "An image", in that priority
// order.
func (l *Linearizer) optionPhrase(option content.Option) string {
	if option.Text != "" {
		return option.Text
	}

	if len(option.Blocks) > 0 {
		return l.Linearize(option.Blocks, nil)
	}

	if option.Image != nil {
		return phraseImageOption
	}

	return ""
}

// LatexToSpeech rewrites the constrained LaTeX subset into spoken words.
// The rules run in a fixed order: the specific squared/cubed cases must
// fire before the generic exponent rule would swallow them, and brace
// stripping runs last.
func (l *Linearizer) LatexToSpeech(latex string) string {
	out := l.fracPattern.ReplaceAllString(latex, "$1 over $2")
	out = l.operatorReplacer.Replace(out)
	out = l.sqrtPattern.ReplaceAllString(out, "square root of $1")
	out = l.squaredPattern.ReplaceAllString(out, " squared")
	out = l.cubedPattern.ReplaceAllString(out, " cubed")
	out = l.powerBracePattern.ReplaceAllString(out, " to the power of $1")
	out = l.powerBarePattern.ReplaceAllString(out, " to the power of $1")
	out = l.stripPattern.ReplaceAllString(out, "")
	out = l.whitespacePattern.ReplaceAllString(out, " ")

	return strings.TrimSpace(out)
}

// formatNumber renders a number-line bound without a trailing ".0".
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}

	return fmt.Sprintf("%g", v)
}
