package manifest

import (
	"fmt"
	"strings"
)

// Quote styles accepted for import specifiers.
const (
	SingleQuote = "'"
	DoubleQuote = `"`
)

// Render builds the manifest text: one import line per entry in entry order,
// a blank line, one default-export statement listing every binding in the
// same order, and a trailing newline. An empty entry set renders
// "export default [];" with no import lines.
func Render(entries []ImportEntry, quote string) string {
	if quote != SingleQuote && quote != DoubleQuote {
		quote = SingleQuote
	}

	lines := make([]string, 0, len(entries)+3)
	bindings := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("import %s from %s%s%s;", e.Binding, quote, e.Specifier, quote))
		bindings = append(bindings, e.Binding)
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("export default [%s];", strings.Join(bindings, ", ")))
	lines = append(lines, "")

	return strings.Join(lines, "\n")
}
