// Package pipeline orchestrates the paper import: model calls producing
// tagged markdown, figure-block extraction, and assembly of the final
// document tree from the tagged sections.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lumitools/lumimport/internal/concepts"
	"github.com/lumitools/lumimport/internal/convert"
	"github.com/lumitools/lumimport/internal/doc"
	"github.com/lumitools/lumimport/internal/llm"
	"github.com/lumitools/lumimport/internal/markdown"
	"github.com/lumitools/lumimport/internal/tags"
)

// Pipeline converts tagged model output into documents. The provider is
// only needed for the generating entry points; conversion of existing
// model output works without one.
type Pipeline struct {
	provider    llm.Provider
	conv        *convert.Converter
	newID       doc.IDFunc
	log         *zap.Logger
	temperature float64
	maxTokens   int
}

// SetTemperature sets the sampling temperature for generation calls. The
// zero value lets the provider use its default.
func (p *Pipeline) SetTemperature(t float64) {
	p.temperature = t
}

// SetMaxTokens caps the output tokens of generation calls. The zero value
// lets the provider use its default.
func (p *Pipeline) SetMaxTokens(n int) {
	p.maxTokens = n
}

// New returns a Pipeline. A nil logger disables logging and a nil newID
// falls back to uuid generation.
func New(provider llm.Provider, logger *zap.Logger, newID doc.IDFunc) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if newID == nil {
		newID = doc.NewID
	}
	return &Pipeline{
		provider: provider,
		conv:     convert.New(newID),
		newID:    newID,
		log:      logger,
	}
}

// ConvertModelOutput turns one tagged model output string into a document.
// Figure blocks are lifted out first so the markdown converter never sees
// them; the remaining text is split along the section tokens and each part
// converted on its own. Reference and footnote entries stay single
// untokenized spans. Abstract spans are annotated with the given concepts.
func (p *Pipeline) ConvertModelOutput(modelOutput string, cs []doc.Concept, fileID string) (*doc.Doc, error) {
	blocks := map[string]doc.Content{}
	processed, err := p.PreprocessAndReplaceFigures(modelOutput, fileID, blocks)
	if err != nil {
		return nil, fmt.Errorf("preprocess figures: %w", err)
	}

	parsed := tags.ParseLumiImport(processed)

	var abstract *doc.Abstract
	if parsed.Abstract != "" {
		contents, err := p.blockContents(parsed.Abstract, blocks)
		if err != nil {
			return nil, fmt.Errorf("convert abstract: %w", err)
		}
		for _, c := range contents {
			if c.TextContent != nil {
				concepts.Annotate(c.TextContent.Spans, cs, p.newID)
			}
		}
		if contents != nil {
			abstract = &doc.Abstract{Contents: contents}
		}
	}

	var sections []*doc.Section
	if parsed.Content != "" {
		sections, err = p.sections(parsed.Content, blocks)
		if err != nil {
			return nil, fmt.Errorf("convert content: %w", err)
		}
	}

	var references []doc.Reference
	for _, item := range parsed.References {
		span, err := p.itemSpan(item.Content)
		if err != nil {
			return nil, fmt.Errorf("convert reference %s: %w", item.ID, err)
		}
		if span != nil {
			references = append(references, doc.Reference{ID: item.ID, Span: *span})
		}
	}

	var footnotes []doc.Footnote
	for _, item := range parsed.Footnotes {
		span, err := p.itemSpan(item.Content)
		if err != nil {
			return nil, fmt.Errorf("convert footnote %s: %w", item.ID, err)
		}
		if span != nil {
			footnotes = append(footnotes, doc.Footnote{ID: item.ID, Span: *span})
		}
	}

	p.log.Debug("converted model output",
		zap.String("file_id", fileID),
		zap.Int("sections", len(sections)),
		zap.Int("references", len(references)),
		zap.Int("footnotes", len(footnotes)))

	return &doc.Doc{
		Sections:   sections,
		Concepts:   cs,
		Abstract:   abstract,
		References: references,
		Footnotes:  footnotes,
	}, nil
}

// sections converts one markdown section body into the section forest.
// Equations are lifted to placeholders before conversion so the markdown
// renderer never touches their content; the converter substitutes them
// back while parsing block text.
func (p *Pipeline) sections(md string, blocks map[string]doc.Content) ([]*doc.Section, error) {
	protected, equations := markdown.ExtractEquationsToPlaceholders(md, p.newID)
	htmlStr, err := markdown.ToHTML(protected)
	if err != nil {
		return nil, err
	}
	return p.conv.Sections(htmlStr, blocks, equations, false)
}

// blockContents converts a headingless body (the abstract) and returns the
// contents of its first section.
func (p *Pipeline) blockContents(md string, blocks map[string]doc.Content) ([]doc.Content, error) {
	secs, err := p.sections(md, blocks)
	if err != nil {
		return nil, err
	}
	if len(secs) == 0 {
		return nil, nil
	}
	if len(secs) > 1 {
		p.log.Warn("abstract produced multiple sections, keeping the first",
			zap.Int("sections", len(secs)))
	}
	return secs[0].Contents, nil
}

// itemSpan parses a reference or footnote body into its single span.
func (p *Pipeline) itemSpan(content string) (*doc.Span, error) {
	spans, err := p.conv.RawOutputToSpans(content, convert.SpanOptions{SkipTokenize: true})
	if err != nil || len(spans) == 0 {
		return nil, err
	}
	return &spans[0], nil
}

// CollectImageContents walks the document and returns every image content,
// figure sub-images included, in document order. The image extraction step
// mutates these in place with measured dimensions.
func CollectImageContents(d *doc.Doc) []*doc.ImageContent {
	var images []*doc.ImageContent

	collect := func(contents []doc.Content) {
		for i := range contents {
			if contents[i].ImageContent != nil {
				images = append(images, contents[i].ImageContent)
			}
			if contents[i].FigureContent != nil {
				for j := range contents[i].FigureContent.Images {
					images = append(images, &contents[i].FigureContent.Images[j])
				}
			}
		}
	}

	var walk func(sections []*doc.Section)
	walk = func(sections []*doc.Section) {
		for _, s := range sections {
			collect(s.Contents)
			walk(s.SubSections)
		}
	}

	if d.Abstract != nil {
		collect(d.Abstract.Contents)
	}
	walk(d.Sections)
	return images
}
