package convert

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/lumitools/lumimport/internal/doc"
	"github.com/lumitools/lumimport/internal/markdown"
)

// listFromNode converts a <ul> or <ol> node into a list content. Each list
// item may carry at most one nested sub-list; a <p> wrapper inside an item
// is unwrapped so its children parse as the item's own markup. Images and
// figures inside list items are not handled.
func (c *Converter) listFromNode(n *html.Node, equations map[string]string, stripDoubleBrackets bool) *doc.Content {
	if n.Type != html.ElementNode || !listTags[n.Data] {
		return nil
	}

	var items []doc.ListItem
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}

		var rawHTML strings.Builder
		var subList *doc.ListContent

		for child := li.FirstChild; child != nil; child = child.NextSibling {
			switch {
			case child.Type == html.ElementNode && listTags[child.Data] && subList == nil:
				if nested := c.listFromNode(child, equations, false); nested != nil && nested.ListContent != nil {
					subList = nested.ListContent
				}
			case child.Type == html.ElementNode && child.Data == "p":
				for pChild := child.FirstChild; pChild != nil; pChild = pChild.NextSibling {
					rawHTML.WriteString(renderNode(pChild))
				}
			default:
				rawHTML.WriteString(renderNode(child))
			}
		}

		raw := markdown.SubstituteEquationPlaceholders(rawHTML.String(), equations)
		cleaned, innerTags := c.ParseText(raw)

		var spans []doc.Span
		if strings.TrimSpace(cleaned) != "" || len(innerTags) > 0 {
			spans = c.CreateSpans(cleaned, innerTags, SpanOptions{StripDoubleBrackets: stripDoubleBrackets})
		}

		items = append(items, doc.ListItem{Spans: spans, SubListContent: subList})
	}

	content := doc.NewListContent(c.newID(), &doc.ListContent{
		IsOrdered: n.Data == "ol",
		ListItems: items,
	})
	return &content
}
