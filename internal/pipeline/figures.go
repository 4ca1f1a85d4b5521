package pipeline

import (
	"strings"

	"github.com/lumitools/lumimport/internal/convert"
	"github.com/lumitools/lumimport/internal/doc"
	"github.com/lumitools/lumimport/internal/markdown"
	"github.com/lumitools/lumimport/internal/tags"
)

// Image paths keep their directory structure in the storage object name,
// with the separator flattened.
const storagePathDelimiter = "__"

// PreprocessAndReplaceFigures lifts every figure-level block out of raw
// markdown, replacing it with a [[LUMI_PLACEHOLDER_<id>]] token and storing
// the prebuilt content under that token in blocks. Grouped figures are
// processed before html figures and standalone images so that an image tag
// inside a figure block is claimed by the figure.
func (p *Pipeline) PreprocessAndReplaceFigures(raw, fileID string, blocks map[string]doc.Content) (string, error) {
	out, err := p.replaceBlocks(raw, blocks, tags.FindFigure, func(m *tags.BlockMatch) (doc.Content, error) {
		return p.figureContent(m, fileID)
	})
	if err != nil {
		return "", err
	}
	out, err = p.replaceBlocks(out, blocks, tags.FindHTMLFigure, p.htmlFigureContent)
	if err != nil {
		return "", err
	}
	return p.replaceBlocks(out, blocks, tags.FindImageAndCaption, func(m *tags.BlockMatch) (doc.Content, error) {
		img, err := p.imageContent(m.ID, m.Caption, fileID)
		if err != nil {
			return doc.Content{}, err
		}
		return doc.NewImageContent(p.newID(), img), nil
	})
}

// replaceBlocks runs one find-and-substitute pass over s. The placeholder
// token carries the same id as the content stored under it.
func (p *Pipeline) replaceBlocks(s string, blocks map[string]doc.Content, find func(string, int) *tags.BlockMatch, build func(*tags.BlockMatch) (doc.Content, error)) (string, error) {
	var out strings.Builder
	pos := 0
	for {
		m := find(s, pos)
		if m == nil {
			out.WriteString(s[pos:])
			return out.String(), nil
		}
		content, err := build(m)
		if err != nil {
			return "", err
		}
		placeholder := tags.PlaceholderPrefix + content.ID + tags.PlaceholderSuffix
		blocks[placeholder] = content
		out.WriteString(s[pos:m.Start])
		out.WriteString(placeholder)
		pos = m.End
	}
}

func (p *Pipeline) figureContent(m *tags.BlockMatch, fileID string) (doc.Content, error) {
	caption, err := p.captionSpan(m.Caption)
	if err != nil {
		return doc.Content{}, err
	}

	var images []doc.ImageContent
	for pos := 0; ; {
		img := tags.FindImageAndCaption(m.Content, pos)
		if img == nil {
			break
		}
		ic, err := p.imageContent(img.ID, img.Caption, fileID)
		if err != nil {
			return doc.Content{}, err
		}
		images = append(images, *ic)
		pos = img.End
	}

	return doc.NewFigureContent(p.newID(), &doc.FigureContent{
		Images:  images,
		Caption: caption,
	}), nil
}

func (p *Pipeline) htmlFigureContent(m *tags.BlockMatch) (doc.Content, error) {
	caption, err := p.captionSpan(m.Caption)
	if err != nil {
		return doc.Content{}, err
	}
	return doc.NewHTMLFigureContent(p.newID(), &doc.HTMLFigureContent{
		HTML:    markdown.PostprocessContentText(strings.TrimSpace(m.Content), false),
		Caption: caption,
	}), nil
}

// imageContent builds one image entry. The image id doubles as the latex
// path; the storage object name flattens the path under the file's images
// prefix.
func (p *Pipeline) imageContent(path string, caption *string, fileID string) (*doc.ImageContent, error) {
	span, err := p.captionSpan(caption)
	if err != nil {
		return nil, err
	}
	return &doc.ImageContent{
		LatexPath:   path,
		StoragePath: fileID + "/images/" + strings.ReplaceAll(path, "/", storagePathDelimiter),
		Caption:     span,
	}, nil
}

// captionSpan parses caption text into its single untokenized span. Empty
// or missing captions yield nil.
func (p *Pipeline) captionSpan(caption *string) (*doc.Span, error) {
	if caption == nil {
		return nil, nil
	}
	text := strings.TrimSpace(*caption)
	if text == "" {
		return nil, nil
	}
	spans, err := p.conv.RawOutputToSpans(text, convert.SpanOptions{SkipTokenize: true})
	if err != nil || len(spans) == 0 {
		return nil, err
	}
	return &spans[0], nil
}
