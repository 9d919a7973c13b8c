package render

import (
	"regexp"
	"strings"
)

// Patterns for the constrained LaTeX subset. Order matters: fractions and
// roots consume their braces before the generic script patterns run.
var (
	mathFracPattern     = regexp.MustCompile(`\\frac\{([^{}]*)\}\{([^{}]*)\}`)
	mathSqrtPattern     = regexp.MustCompile(`\\sqrt\{([^{}]*)\}`)
	mathSupBracePattern = regexp.MustCompile(`\^\{([^{}]*)\}`)
	mathSupCharPattern  = regexp.MustCompile(`\^([0-9A-Za-z])`)
	mathSubBracePattern = regexp.MustCompile(`_\{([^{}]*)\}`)
	mathSubCharPattern  = regexp.MustCompile(`_([0-9A-Za-z])`)
)

var mathOperatorReplacer = strings.NewReplacer(
	`\times`, "×",
	`\div`, "÷",
	`\pm`, "±",
)

var superscriptDigits = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'-': '⁻', 'n': 'ⁿ',
}

var subscriptDigits = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄',
	'5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
	'-': '₋',
}

// MathInline rewrites a constrained LaTeX-like subset into inline visual
// text: fractions, times/div/plus-minus, square roots, and numeric
// super/subscripts. Constructs outside the subset pass through unchanged.
func MathInline(latex string) string {
	out := mathFracPattern.ReplaceAllString(latex, "$1⁄$2")
	out = mathOperatorReplacer.Replace(out)
	out = mathSqrtPattern.ReplaceAllString(out, "√$1")

	out = replaceScripts(out, mathSupBracePattern, superscriptDigits)
	out = replaceScripts(out, mathSupCharPattern, superscriptDigits)
	out = replaceScripts(out, mathSubBracePattern, subscriptDigits)
	out = replaceScripts(out, mathSubCharPattern, subscriptDigits)

	return out
}

// replaceScripts maps a script body to its unicode form when every rune
// is mappable; otherwise the construct is left as written.
func replaceScripts(text string, pattern *regexp.Regexp, table map[rune]rune) string {
	return pattern.ReplaceAllStringFunc(text, func(match string) string {
		body := pattern.FindStringSubmatch(match)[1]

		var out strings.Builder

		for _, r := range body {
			mapped, ok := table[r]
			if !ok {
				return match
			}

			out.WriteRune(mapped)
		}

		return out.String()
	})
}
