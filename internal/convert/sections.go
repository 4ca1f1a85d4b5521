package convert

import (
	"bytes"
	stdhtml "html"
	"strings"

	"golang.org/x/net/html"

	"github.com/lumitools/lumimport/internal/doc"
	"github.com/lumitools/lumimport/internal/markdown"
	"github.com/lumitools/lumimport/internal/tags"
)

var (
	textTags = map[string]bool{"p": true, "code": true, "pre": true}
	listTags = map[string]bool{"ol": true, "ul": true}
)

// Sections parses an HTML string into a section forest. Heading tags open
// sections at their level; content tags fill the section on top of the
// stack. blocks maps [[LUMI_PLACEHOLDER_...]] tokens to pre-built figure
// contents, equations maps [[LUMI_EQUATION_...]] tokens back to their LaTeX.
func (c *Converter) Sections(htmlStr string, blocks map[string]doc.Content, equations map[string]string, stripDoubleBrackets bool) ([]*doc.Section, error) {
	root, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return nil, err
	}

	var rootSections []*doc.Section
	var stack []*doc.Section
	visited := map[*html.Node]bool{}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			c.processNode(child, &rootSections, &stack, visited, blocks, equations, stripDoubleBrackets)
			walk(child)
		}
	}
	walk(root)

	return rootSections, nil
}

func (c *Converter) processNode(
	n *html.Node,
	rootSections *[]*doc.Section,
	stack *[]*doc.Section,
	visited map[*html.Node]bool,
	blocks map[string]doc.Content,
	equations map[string]string,
	stripDoubleBrackets bool,
) {
	if n.Type != html.ElementNode {
		return
	}

	if level, isHeading := headingLevel(n.Data); isHeading {
		section := &doc.Section{
			ID:      c.newID(),
			Heading: doc.Heading{HeadingLevel: level, Text: innerHTML(n)},
		}

		// Pop until the top of the stack can parent this level.
		for len(*stack) > 0 && (*stack)[len(*stack)-1].Heading.HeadingLevel >= level {
			*stack = (*stack)[:len(*stack)-1]
		}

		if len(*stack) > 0 {
			parent := (*stack)[len(*stack)-1]
			parent.SubSections = append(parent.SubSections, section)
		} else {
			*rootSections = append(*rootSections, section)
		}
		*stack = append(*stack, section)
		return
	}

	if visited[n] || (!textTags[n.Data] && !listTags[n.Data]) {
		return
	}

	if len(*stack) == 0 {
		// Content before any heading lands in an untitled level-1 section.
		section := &doc.Section{
			ID:      c.newID(),
			Heading: doc.Heading{HeadingLevel: 1, Text: ""},
		}
		*stack = append(*stack, section)
		*rootSections = append(*rootSections, section)
	}
	current := (*stack)[len(*stack)-1]

	if textTags[n.Data] {
		contents := c.parseHTMLBlock(innerHTML(n), n.Data, blocks, equations, stripDoubleBrackets)
		current.Contents = append(current.Contents, contents...)
	} else {
		if content := c.listFromNode(n, equations, stripDoubleBrackets); content != nil {
			current.Contents = append(current.Contents, *content)
		}
	}

	markVisited(n, visited)
}

// parseHTMLBlock splits a block's inner HTML on figure placeholders,
// producing interleaved text contents and the placeholder-mapped contents.
func (c *Converter) parseHTMLBlock(text, tagName string, blocks map[string]doc.Content, equations map[string]string, stripDoubleBrackets bool) []doc.Content {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	text = markdown.SubstituteEquationPlaceholders(text, equations)

	var contents []doc.Content

	appendText := func(segment string) {
		if strings.TrimSpace(segment) == "" {
			return
		}
		cleaned, innerTags := c.ParseText(segment)
		spans := c.CreateSpans(cleaned, innerTags, SpanOptions{StripDoubleBrackets: stripDoubleBrackets})
		if len(spans) > 0 {
			contents = append(contents, doc.NewTextContent(c.newID(), tagName, spans))
		}
	}

	// An unresolved placeholder stays inline as literal text.
	pos, segStart := 0, 0
	for {
		start := strings.Index(text[pos:], tags.PlaceholderPrefix)
		if start < 0 {
			break
		}
		start += pos
		endRel := strings.Index(text[start+len(tags.PlaceholderPrefix):], tags.PlaceholderSuffix)
		if endRel < 0 {
			break
		}
		end := start + len(tags.PlaceholderPrefix) + endRel + len(tags.PlaceholderSuffix)

		if block, ok := blocks[text[start:end]]; ok {
			appendText(text[segStart:start])
			contents = append(contents, block)
			segStart = end
		}
		pos = end
	}
	appendText(text[segStart:])

	return contents
}

// RawOutputToSpans converts a fragment of raw model markdown into spans: the
// markdown is rendered to HTML and the first top-level element's inner text
// is parsed for tags and tokenized.
func (c *Converter) RawOutputToSpans(outputText string, opts SpanOptions) ([]doc.Span, error) {
	rendered, err := markdown.ToHTML(outputText)
	if err != nil {
		return nil, err
	}

	root, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		return nil, err
	}
	first := firstContentNode(root)
	if first == nil {
		return nil, nil
	}

	cleaned, innerTags := c.ParseText(innerHTML(first))
	return c.CreateSpans(cleaned, innerTags, opts), nil
}

// headingLevel reports whether name is a heading tag (h followed by digits)
// and returns its level.
func headingLevel(name string) (int, bool) {
	if len(name) < 2 || name[0] != 'h' {
		return 0, false
	}
	level := 0
	for i := 1; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return 0, false
		}
		level = level*10 + int(name[i]-'0')
	}
	return level, true
}

// innerHTML renders a node's children back to HTML and unescapes entities,
// so downstream tag parsing sees the literal markup the model produced.
func innerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		html.Render(&buf, child)
	}
	return stdhtml.UnescapeString(buf.String())
}

// renderNode renders a single node including its own tags.
func renderNode(n *html.Node) string {
	var buf bytes.Buffer
	html.Render(&buf, n)
	return stdhtml.UnescapeString(buf.String())
}

// firstContentNode returns the first child of <body> in a parsed document.
func firstContentNode(root *html.Node) *html.Node {
	var body *html.Node
	var find func(n *html.Node)
	find = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(root)
	if body == nil {
		return nil
	}
	return body.FirstChild
}

func markVisited(n *html.Node, visited map[*html.Node]bool) {
	visited[n] = true
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		markVisited(c, visited)
	}
}
