package tags

import "strings"

// BlockMatch is one figure-level construct: an image tag, an HTML figure, a
// grouped figure, a reference item, or a footnote content block. ID holds the
// image path for images and the declared id otherwise. Caption is nil when no
// caption pair follows the construct.
type BlockMatch struct {
	Start   int
	End     int
	ID      string
	Content string
	Caption *string
}

// FindImageAndCaption returns the earliest image tag at or after from,
// together with its optional caption pair. The caption tags must carry the
// image path as their id and may be separated from the image tag by
// whitespace only.
func FindImageAndCaption(s string, from int) *BlockMatch {
	rel := strings.Index(s[from:], ImageStartPrefix)
	if rel < 0 {
		return nil
	}
	open := from + rel
	idStart := open + len(ImageStartPrefix)
	idRel := strings.Index(s[idStart:], ImageEnd)
	if idRel < 0 {
		return nil
	}
	m := &BlockMatch{
		Start: open,
		ID:    s[idStart : idStart+idRel],
		End:   idStart + idRel + len(ImageEnd),
	}
	capToken := ImageCapStartPrefix + m.ID + ImageCapEnd
	if capEnd, text, ok := trailingCaption(s, m.End, capToken); ok {
		m.Caption = &text
		m.End = capEnd
	}
	return m
}

// FindHTMLFigure returns the earliest html-figure block at or after from:
// an id-paired [[l-html_...]] open/close pair with optional caption pair.
func FindHTMLFigure(s string, from int) *BlockMatch {
	return findPairedBlock(s, from, HTMLStartPrefix, HTMLStartPrefix, HTMLEnd, HTMLCapStartPrefix, HTMLCapEnd)
}

// FindFigure returns the earliest grouped-figure block at or after from:
// [[l-fig-start-...]] through [[l-fig-end-...]] with optional caption pair.
func FindFigure(s string, from int) *BlockMatch {
	return findPairedBlock(s, from, FigureStartPrefix, FigureEndPrefix, FigureEnd, FigureCapStartPrefix, FigureCapEnd)
}

// FindFootnoteContent returns the earliest footnote body at or after from:
// [[l-footnote-start-...]] through [[l-footnote-end-...]] with matching ids.
func FindFootnoteContent(s string, from int) *BlockMatch {
	return findPairedBlock(s, from, FootnoteContentStartPrefix, FootnoteContentEndPrefix, FootnoteContentEnd, "", "")
}

// FindReferenceItem returns the earliest reference item at or after from:
// [[l-ref-<id>]] content terminated by the generic [[l-ref]] token.
func FindReferenceItem(s string, from int) *BlockMatch {
	pos := from
	for {
		rel := strings.Index(s[pos:], ReferenceItemStartPrefix)
		if rel < 0 {
			return nil
		}
		open := pos + rel
		idStart := open + len(ReferenceItemStartPrefix)
		idRel := strings.Index(s[idStart:], ReferenceItemEnd)
		if idRel < 0 {
			return nil
		}
		contentStart := idStart + idRel + len(ReferenceItemEnd)
		closeRel := strings.Index(s[contentStart:], ReferenceItemEndGeneric)
		if closeRel < 0 {
			pos = open + len(ReferenceItemStartPrefix)
			continue
		}
		return &BlockMatch{
			Start:   open,
			End:     contentStart + closeRel + len(ReferenceItemEndGeneric),
			ID:      s[idStart : idStart+idRel],
			Content: s[contentStart : contentStart+closeRel],
		}
	}
}

// findPairedBlock matches openPrefix+id+suffix, content, closePrefix+id+suffix,
// then an optional caption pair capPrefix+id+capSuffix. An opening token with
// no matching close is skipped and the search resumes after it.
func findPairedBlock(s string, from int, openPrefix, closePrefix, suffix, capPrefix, capSuffix string) *BlockMatch {
	pos := from
	for {
		rel := strings.Index(s[pos:], openPrefix)
		if rel < 0 {
			return nil
		}
		open := pos + rel
		idStart := open + len(openPrefix)
		idRel := strings.Index(s[idStart:], suffix)
		if idRel < 0 {
			return nil
		}
		id := s[idStart : idStart+idRel]
		contentStart := idStart + idRel + len(suffix)
		closing := closePrefix + id + suffix
		closeRel := strings.Index(s[contentStart:], closing)
		if closeRel < 0 {
			pos = open + len(openPrefix)
			continue
		}
		m := &BlockMatch{
			Start:   open,
			End:     contentStart + closeRel + len(closing),
			ID:      id,
			Content: s[contentStart : contentStart+closeRel],
		}
		if capPrefix != "" {
			capToken := capPrefix + id + capSuffix
			if capEnd, text, ok := trailingCaption(s, m.End, capToken); ok {
				m.Caption = &text
				m.End = capEnd
			}
		}
		return m
	}
}

// trailingCaption matches capToken, caption text, capToken immediately after
// pos, allowing leading whitespace before the first token.
func trailingCaption(s string, pos int, capToken string) (end int, text string, ok bool) {
	i := pos
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	if !strings.HasPrefix(s[i:], capToken) {
		return 0, "", false
	}
	textStart := i + len(capToken)
	rel := strings.Index(s[textStart:], capToken)
	if rel < 0 {
		return 0, "", false
	}
	return textStart + rel + len(capToken), s[textStart : textStart+rel], true
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
