package application

import (
	"regexp"
	"strings"
)

// replacer expands symbols, units, and spelled-out acronyms into forms the
// synthesis engines pronounce cleanly. strings.Replacer resolves matches at
// the same position in argument order, so longer keys are listed before
// their prefixes ("°C" before "°", "UNESCO" before "UN").
var replacer = strings.NewReplacer(
	"&", " and ",
	"+", " plus ",
	"=", " equals ",
	"%", " percent ",
	"#", " number ",
	"@", " at ",
	"°C", " degrees Celsius ",
	"°F", " degrees Fahrenheit ",
	"°", " degrees ",
	"km/h", " kilometers per hour ",
	"mph", " miles per hour ",
	"AM", " A M ",
	"PM", " P M ",
	"USA", " U S A ",
	"UK", " U K ",
	"EU", " E U ",
	"UNESCO", " U N E S C O ",
	"UN", " U N ",
	"WHO", " W H O ",
)

var (
	digitRuns  = regexp.MustCompile(`(\d+)`)
	whitespace = regexp.MustCompile(`\s+`)
)

// NormalizeText rewrites raw alert text into a speech-friendly form:
// whitespace collapsed, symbols and abbreviations expanded, digit runs
// separated by spaces. Idempotent: normalizing normalized text is a no-op.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}

	text = whitespace.ReplaceAllString(strings.TrimSpace(text), " ")
	text = replacer.Replace(text)
	text = digitRuns.ReplaceAllString(text, " $1 ")

	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}
