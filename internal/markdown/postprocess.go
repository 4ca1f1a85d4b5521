package markdown

import (
	"regexp"
	"strings"
)

var (
	lumiTagPattern       = regexp.MustCompile(`\[\[l-.*?\]\]`)
	doubleBracketPattern = regexp.MustCompile(`\[\[.*?\]\]`)
)

// PostprocessContentText cleans final span text: escaped dollar signs are
// unescaped and stray [[l-...]] tokens removed. With stripDoubleBrackets set,
// every [[...]] group disappears, used for caption text where leftover
// markers carry no meaning.
func PostprocessContentText(text string, stripDoubleBrackets bool) string {
	text = strings.ReplaceAll(text, `\$`, "$")
	if stripDoubleBrackets {
		return doubleBracketPattern.ReplaceAllString(text, "")
	}
	return lumiTagPattern.ReplaceAllString(text, "")
}
