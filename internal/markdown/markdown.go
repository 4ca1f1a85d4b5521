// Package markdown converts model-produced markdown into HTML while keeping
// LaTeX math intact, and owns the equation placeholder scheme used to shield
// math from the converter.
package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/lumitools/lumimport/internal/doc"
)

// The converter must pass raw inline HTML through untouched since the model
// output mixes markdown with literal <b>, <a>, and table markup.
var converter = goldmark.New(
	goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
)

// CommonMark treats \$ as an escape and unescapes it; the dollar has to
// survive conversion verbatim so the math matchers downstream still see it
// as escaped. The sentinel token never appears in real documents.
const escapedDollarSentinel = "LUMI-ESCAPED-DOLLAR"

// KaTeX cannot render some LaTeX commands the models emit.
var katexReplacer = strings.NewReplacer(
	`\normalfont`, `\text`,
	`\mbox`, `\text`,
)

var labelPattern = regexp.MustCompile(`\\label\{[^}]*\}`)

// ToHTML renders markdown to HTML. Math segments are lifted out before
// conversion and substituted back afterwards, so their content is never
// interpreted as markdown. Unsupported KaTeX commands are rewritten and
// \label{...} commands dropped.
func ToHTML(md string) (string, error) {
	if md == "" {
		return "", nil
	}

	md = katexReplacer.Replace(md)
	md = labelPattern.ReplaceAllString(md, "")

	protected, equations := ExtractEquationsToPlaceholders(md, doc.NewID)
	protected = strings.ReplaceAll(protected, `\$`, escapedDollarSentinel)

	var buf bytes.Buffer
	if err := converter.Convert([]byte(protected), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}

	out := strings.ReplaceAll(buf.String(), escapedDollarSentinel, `\$`)
	out = SubstituteEquationPlaceholders(out, equations)
	return out, nil
}
