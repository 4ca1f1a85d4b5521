package markdown

import (
	"strings"

	"github.com/lumitools/lumimport/internal/doc"
	"github.com/lumitools/lumimport/internal/tags"
)

// ExtractEquationsToPlaceholders replaces every math segment in text with a
// [[LUMI_EQUATION_<id>]] placeholder and returns the placeholder-to-equation
// map. The stored equation keeps its dollar delimiters. Escaped dollar signs
// never open a segment.
func ExtractEquationsToPlaceholders(text string, newID doc.IDFunc) (string, map[string]string) {
	equations := map[string]string{}
	var out strings.Builder

	pos := 0
	for pos < len(text) {
		m := findEarliestMath(text, pos)
		if m == nil {
			out.WriteString(text[pos:])
			break
		}
		placeholder := tags.EquationPlaceholderPrefix + newID() + tags.EquationPlaceholderSuffix
		equations[placeholder] = text[m.Start:m.End]
		out.WriteString(text[pos:m.Start])
		out.WriteString(placeholder)
		pos = m.End
	}
	return out.String(), equations
}

// findEarliestMath returns the earliest math match at or after pos, display
// math winning ties against inline math.
func findEarliestMath(text string, pos int) *tags.Match {
	var best *tags.Match
	for _, def := range tags.Definitions {
		if def.Name != doc.TagMathDisplay && def.Name != doc.TagMath {
			continue
		}
		m := def.Find(text, pos)
		if m != nil && (best == nil || m.Start < best.Start) {
			best = m
		}
	}
	return best
}

// SubstituteEquationPlaceholders replaces equation placeholders with their
// mapped equations. A placeholder missing from the map is removed.
func SubstituteEquationPlaceholders(text string, equations map[string]string) string {
	var out strings.Builder
	pos := 0
	for pos < len(text) {
		rel := strings.Index(text[pos:], tags.EquationPlaceholderPrefix)
		if rel < 0 {
			out.WriteString(text[pos:])
			break
		}
		start := pos + rel
		idStart := start + len(tags.EquationPlaceholderPrefix)
		endRel := strings.Index(text[idStart:], tags.EquationPlaceholderSuffix)
		if endRel < 0 {
			out.WriteString(text[pos:])
			break
		}
		end := idStart + endRel + len(tags.EquationPlaceholderSuffix)
		out.WriteString(text[pos:start])
		out.WriteString(equations[text[start:end]])
		pos = end
	}
	return out.String()
}
