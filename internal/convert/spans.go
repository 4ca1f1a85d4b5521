// Package convert turns tag-annotated HTML produced from model output into
// the document tree: it extracts inline tags, distributes them over
// sentence-level spans, and assembles heading-driven sections.
package convert

import (
	"strings"
	"unicode/utf8"

	"github.com/lumitools/lumimport/internal/doc"
	"github.com/lumitools/lumimport/internal/markdown"
	"github.com/lumitools/lumimport/internal/tags"
	"github.com/lumitools/lumimport/internal/tokenize"
)

// Converter holds the id source shared by all produced nodes. Tests inject a
// deterministic IDFunc.
type Converter struct {
	newID doc.IDFunc
}

// New returns a Converter. A nil newID falls back to uuid generation.
func New(newID doc.IDFunc) *Converter {
	if newID == nil {
		newID = doc.NewID
	}
	return &Converter{newID: newID}
}

// SpanOptions controls CreateSpans.
type SpanOptions struct {
	// SkipTokenize treats the whole text as a single span. Reference and
	// footnote entries are stored this way.
	SkipTokenize bool
	// StripDoubleBrackets removes any leftover [[...]] group from span text.
	StripDoubleBrackets bool
}

// ParseText parses raw tag-annotated content into cleaned text and the
// inner tags found in it. Tag content is parsed recursively; tags inside a
// tag become its children, with positions relative to the parent's cleaned
// inner text. Positions count codepoint offsets into the cleaned text.
func (c *Converter) ParseText(raw string) (string, []doc.InnerTag) {
	var cleaned strings.Builder
	var innerTags []doc.InnerTag

	posRaw := 0
	posCleaned := 0

	for posRaw < len(raw) {
		var earliest *tags.Match
		var earliestDef tags.Definition
		for _, def := range tags.Definitions {
			m := def.Find(raw, posRaw)
			if m != nil && (earliest == nil || m.Start < earliest.Start) {
				earliest = m
				earliestDef = def
			}
		}
		if earliest == nil {
			cleaned.WriteString(raw[posRaw:])
			break
		}

		if earliest.Start > posRaw {
			before := raw[posRaw:earliest.Start]
			cleaned.WriteString(before)
			posCleaned += utf8.RuneCountInString(before)
		}

		tagStart := posCleaned
		innerCleaned, children := c.ParseText(earliest.Content)
		cleaned.WriteString(innerCleaned)
		posCleaned += utf8.RuneCountInString(innerCleaned)

		innerTags = append(innerTags, doc.InnerTag{
			ID:       c.newID(),
			TagName:  earliestDef.Name,
			Metadata: earliest.Metadata,
			Position: doc.Position{StartIndex: tagStart, EndIndex: posCleaned},
			Children: children,
		})

		posRaw = earliest.End
	}

	return cleaned.String(), innerTags
}

// CreateSpans splits cleaned text into sentences and produces one Span per
// sentence. Tags are distributed to the sentences they overlap; a tag
// crossing a sentence boundary appears in each overlapped span with its
// position clipped. Tags that land in no sentence (zero-width markers past
// the final sentence) each get an empty span of their own.
func (c *Converter) CreateSpans(cleanedText string, allTags []doc.InnerTag, opts SpanOptions) []doc.Span {
	if strings.TrimSpace(cleanedText) == "" && len(allTags) == 0 {
		return nil
	}

	var sents []string
	if !opts.SkipTokenize {
		sents = tokenize.Sentences(cleanedText, allTags)
	}

	if len(sents) == 0 || opts.SkipTokenize {
		// Text with no sentence punctuation, such as a reference entry,
		// becomes a single span.
		return []doc.Span{{
			ID:        c.newID(),
			Text:      markdown.PostprocessContentText(cleanedText, opts.StripDoubleBrackets),
			InnerTags: allTags,
		}}
	}

	// The search runs on bytes; the tag windows count codepoints to match
	// tag positions.
	var spans []doc.Span
	searchOffset := 0
	processed := map[string]bool{}

	for _, sentence := range sents {
		rel := strings.Index(cleanedText[searchOffset:], sentence)
		if rel < 0 {
			continue
		}
		byteStart := searchOffset + rel
		start := utf8.RuneCountInString(cleanedText[:byteStart])

		adjusted := adjustTagsForSentence(allTags, 0, start, utf8.RuneCountInString(sentence))
		for _, tag := range adjusted {
			processed[tag.ID] = true
		}

		spans = append(spans, doc.Span{
			ID:        c.newID(),
			Text:      markdown.PostprocessContentText(sentence, opts.StripDoubleBrackets),
			InnerTags: adjusted,
		})
		searchOffset = byteStart + len(sentence)
	}

	// Tags that overlapped no sentence, such as trailing zero-width markers,
	// are preserved on empty spans.
	for _, tag := range allTags {
		if !processed[tag.ID] {
			orphan := copyTag(tag)
			orphan.Position = doc.Position{}
			orphan.Children = nil
			spans = append(spans, doc.Span{
				ID:        c.newID(),
				Text:      "",
				InnerTags: []doc.InnerTag{orphan},
			})
		}
	}

	return spans
}

// adjustTagsForSentence selects the tags overlapping one sentence window and
// rebases their positions onto it, clipping at the window edges. Children
// are rebased against the same window using their parent's absolute start.
func adjustTagsForSentence(tagList []doc.InnerTag, parentAbsoluteStart, sentenceStart, sentenceLen int) []doc.InnerTag {
	sentenceEnd := sentenceStart + sentenceLen

	var result []doc.InnerTag
	for _, tag := range tagList {
		absStart := parentAbsoluteStart + tag.Position.StartIndex
		absEnd := parentAbsoluteStart + tag.Position.EndIndex

		if absStart > sentenceEnd || absEnd < sentenceStart {
			continue
		}

		adjusted := copyTag(tag)
		adjusted.Position.StartIndex = max(0, absStart-sentenceStart)
		adjusted.Position.EndIndex = min(sentenceLen, absEnd-sentenceStart)
		if len(adjusted.Children) > 0 {
			adjusted.Children = adjustTagsForSentence(adjusted.Children, absStart, sentenceStart, sentenceLen)
		}
		result = append(result, adjusted)
	}
	return result
}

// copyTag deep-copies a tag so adjustments never touch the original.
func copyTag(tag doc.InnerTag) doc.InnerTag {
	out := tag
	if tag.Metadata != nil {
		out.Metadata = make(map[string]string, len(tag.Metadata))
		for k, v := range tag.Metadata {
			out.Metadata[k] = v
		}
	}
	if tag.Children != nil {
		out.Children = make([]doc.InnerTag, len(tag.Children))
		for i, child := range tag.Children {
			out.Children[i] = copyTag(child)
		}
	}
	return out
}
