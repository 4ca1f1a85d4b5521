// Package doc defines the LumiDoc document model. A LumiDoc is the
// structured representation of an imported paper: a forest of sections
// holding ordered content blocks, whose text is split into sentence-level
// spans carrying positioned inline annotations.
package doc

// Position holds codepoint offsets into the owning text (a span's text or a
// parent tag's inner text). A zero-width position (Start == End) marks an
// anchor-style annotation with no enclosed text.
type Position struct {
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

// InnerTagName identifies the kind of an inline annotation.
type InnerTagName string

const (
	TagBold          InnerTagName = "b"
	TagItalic        InnerTagName = "i"
	TagStrong        InnerTagName = "strong"
	TagEm            InnerTagName = "em"
	TagUnderline     InnerTagName = "u"
	TagMath          InnerTagName = "math"
	TagMathDisplay   InnerTagName = "math_display"
	TagReference     InnerTagName = "ref"
	TagSpanReference InnerTagName = "spanref"
	TagConcept       InnerTagName = "concept"
	TagAnchor        InnerTagName = "a"
	TagCode          InnerTagName = "code"
	TagFootnote      InnerTagName = "footnote"
)

// InnerTag is a positioned inline annotation over a span's text. Children
// are annotations nested inside this tag's content; their positions are
// relative to this tag's own inner text, not to the span.
type InnerTag struct {
	ID       string            `json:"id"`
	TagName  InnerTagName      `json:"tag_name"`
	Metadata map[string]string `json:"metadata"`
	Position Position          `json:"position"`
	Children []InnerTag        `json:"children"`
}

// Span is the atomic unit of renderable text, normally one sentence.
type Span struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	InnerTags []InnerTag `json:"inner_tags"`
}

// Heading is a section heading with its level (1 = top).
type Heading struct {
	HeadingLevel int    `json:"heading_level"`
	Text         string `json:"text"`
}

// TextContent is an ordered run of spans under a block tag (p, code, pre).
type TextContent struct {
	TagName string `json:"tag_name"`
	Spans   []Span `json:"spans"`
}

// ImageContent references one image extracted from the paper source.
type ImageContent struct {
	StoragePath string  `json:"storage_path"`
	LatexPath   string  `json:"latex_path"`
	AltText     string  `json:"alt_text"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Caption     *Span   `json:"caption,omitempty"`
}

// FigureContent is a multi-image figure with an optional shared caption.
type FigureContent struct {
	Images  []ImageContent `json:"images"`
	Caption *Span          `json:"caption,omitempty"`
}

// HTMLFigureContent carries a raw HTML fragment (tables, algorithms).
type HTMLFigureContent struct {
	HTML    string `json:"html"`
	Caption *Span  `json:"caption,omitempty"`
}

// ListContent is an ordered or unordered list.
type ListContent struct {
	ListItems []ListItem `json:"list_items"`
	IsOrdered bool       `json:"is_ordered"`
}

// ListItem holds the item's own spans and at most one nested sub-list.
type ListItem struct {
	Spans          []Span       `json:"spans"`
	SubListContent *ListContent `json:"sub_list_content,omitempty"`
}

// Content is a discriminated union of block-level content. Exactly one of
// the variant fields is populated.
type Content struct {
	ID                string             `json:"id"`
	TextContent       *TextContent       `json:"text_content,omitempty"`
	ImageContent      *ImageContent      `json:"image_content,omitempty"`
	FigureContent     *FigureContent     `json:"figure_content,omitempty"`
	HTMLFigureContent *HTMLFigureContent `json:"html_figure_content,omitempty"`
	ListContent       *ListContent       `json:"list_content,omitempty"`
}

// Section is one node of the heading-driven section forest. Sub-sections
// always have a strictly greater heading level than their parent.
type Section struct {
	ID          string     `json:"id"`
	Heading     Heading    `json:"heading"`
	Contents    []Content  `json:"contents"`
	SubSections []*Section `json:"sub_sections"`
}

// ConceptContent is one labeled attribute of a concept.
type ConceptContent struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Label pairs an id with display text, used for in-text citations.
type Label struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Concept is a key idea extracted from the paper, matched against span text
// during annotation.
type Concept struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Contents        []ConceptContent `json:"contents"`
	InTextCitations []Label          `json:"in_text_citations"`
}

// Reference is one bibliography entry, kept as a single untokenized span.
type Reference struct {
	ID   string `json:"id"`
	Span Span   `json:"span"`
}

// Footnote is one footnote body, kept as a single untokenized span.
type Footnote struct {
	ID   string `json:"id"`
	Span Span   `json:"span"`
}

// Abstract holds the paper abstract's content blocks.
type Abstract struct {
	Contents []Content `json:"contents"`
}

// Metadata describes the imported paper.
type Metadata struct {
	PaperID   string   `json:"paper_id,omitempty"`
	Version   string   `json:"version,omitempty"`
	Title     string   `json:"title,omitempty"`
	Authors   []string `json:"authors,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	Updated   string   `json:"updated,omitempty"`
	Published string   `json:"published,omitempty"`
}

// Doc is the root of the converted document tree.
type Doc struct {
	Markdown   string      `json:"markdown"`
	Sections   []*Section  `json:"sections"`
	Concepts   []Concept   `json:"concepts"`
	Abstract   *Abstract   `json:"abstract,omitempty"`
	References []Reference `json:"references,omitempty"`
	Footnotes  []Footnote  `json:"footnotes,omitempty"`
	Metadata   *Metadata   `json:"metadata,omitempty"`
}

// NewTextContent builds a Content wrapping a TextContent block.
func NewTextContent(id, tagName string, spans []Span) Content {
	return Content{ID: id, TextContent: &TextContent{TagName: tagName, Spans: spans}}
}

// NewListContent builds a Content wrapping a ListContent block.
func NewListContent(id string, list *ListContent) Content {
	return Content{ID: id, ListContent: list}
}

// NewImageContent builds a Content wrapping a single image.
func NewImageContent(id string, img *ImageContent) Content {
	return Content{ID: id, ImageContent: img}
}

// NewFigureContent builds a Content wrapping a multi-image figure.
func NewFigureContent(id string, fig *FigureContent) Content {
	return Content{ID: id, FigureContent: fig}
}

// NewHTMLFigureContent builds a Content wrapping a raw-HTML figure.
func NewHTMLFigureContent(id string, fig *HTMLFigureContent) Content {
	return Content{ID: id, HTMLFigureContent: fig}
}
