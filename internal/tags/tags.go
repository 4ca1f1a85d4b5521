// Package tags is the single source of truth for the inline markup grammar
// produced by the import prompts: the literal [[l-...]] tokens, the inline
// tag table consumed by the tag parser, and the figure/image block matchers.
package tags

import (
	"regexp"
	"strings"

	"github.com/lumitools/lumimport/internal/doc"
)

// Section delimiters. Start and end tokens are identical for the short
// forms; references and footnotes use distinct start/end tokens.
const (
	TitleStart      = "[[l-tit]]"
	TitleEnd        = "[[l-tit]]"
	AuthorsStart    = "[[l-aut]]"
	AuthorsEnd      = "[[l-aut]]"
	AbstractStart   = "[[l-abs]]"
	AbstractEnd     = "[[l-abs]]"
	ContentStart    = "[[l-con]]"
	ContentEnd      = "[[l-con]]"
	ReferencesStart = "[[l-refs-start]]"
	ReferencesEnd   = "[[l-refs-end]]"
	FootnotesStart  = "[[l-footnotes-start]]"
	FootnotesEnd    = "[[l-footnotes-end]]"
)

// Item tokens within sections. Paired tokens carry an id between prefix and
// suffix; the start and end tag of a pair share the same id.
const (
	ReferenceItemStartPrefix   = "[[l-ref-"
	ReferenceItemEnd           = "]]"
	ReferenceItemEndGeneric    = "[[l-ref]]"
	ConceptStartPrefix         = "[[l-conc-"
	ConceptEnd                 = "]]"
	CitationStartPrefix        = "[[l-cit-"
	CitationEnd                = "]]"
	ImageStartPrefix           = "[[l-image_"
	ImageEnd                   = "]]"
	ImageCapStartPrefix        = "[[l-image_cap_"
	ImageCapEnd                = "]]"
	HTMLStartPrefix            = "[[l-html_"
	HTMLEnd                    = "]]"
	HTMLCapStartPrefix         = "[[l-html_cap_"
	HTMLCapEnd                 = "]]"
	FigureStartPrefix          = "[[l-fig-start-"
	FigureEndPrefix            = "[[l-fig-end-"
	FigureEnd                  = "]]"
	FigureCapStartPrefix       = "[[l-fig-cap-"
	FigureCapEnd               = "]]"
	FootnoteMarkerPrefix       = "[[l-foot-"
	FootnoteMarkerEnd          = "]]"
	FootnoteContentStartPrefix = "[[l-footnote-start-"
	FootnoteContentEndPrefix   = "[[l-footnote-end-"
	FootnoteContentEnd         = "]]"
	SpanRefStartPrefix         = "[[l-sref-"
	SpanRefEnd                 = "]]"
)

// Placeholder tokens used by the block-splitting step.
const (
	PlaceholderPrefix         = "[[LUMI_PLACEHOLDER_"
	PlaceholderSuffix         = "]]"
	EquationPlaceholderPrefix = "[[LUMI_EQUATION_"
	EquationPlaceholderSuffix = "]]"
)

// Match is one recognized inline construct in raw text.
type Match struct {
	Start    int               // offset of the whole construct in the searched string
	End      int               // offset just past the whole construct
	Content  string            // raw inner content, "" for zero-width tags
	Metadata map[string]string // extracted attributes (id, href)
}

// Definition pairs a tag kind with its matcher. Find returns the earliest
// match at or after from, or nil.
type Definition struct {
	Name doc.InnerTagName
	Find func(s string, from int) *Match
}

// Definitions is the ordered tag table. The tag parser picks the
// earliest-starting match each iteration; on equal start offsets the entry
// listed first wins, so display math precedes inline math.
var Definitions = []Definition{
	{Name: doc.TagConcept, Find: pairedIDFinder(ConceptStartPrefix, ConceptEnd)},
	{Name: doc.TagReference, Find: markerIDFinder(CitationStartPrefix, CitationEnd)},
	{Name: doc.TagFootnote, Find: markerIDFinder(FootnoteMarkerPrefix, FootnoteMarkerEnd)},
	{Name: doc.TagSpanReference, Find: markerIDFinder(SpanRefStartPrefix, SpanRefEnd)},
	{Name: doc.TagAnchor, Find: regexFinder(regexp.MustCompile(`(?s)<a href="(.*?)">(.*?)</a>`), 2, "href", 1)},
	{Name: doc.TagCode, Find: regexFinder(regexp.MustCompile(`(?s)<code>(.*?)</code>`), 1, "", 0)},
	{Name: doc.TagBold, Find: regexFinder(regexp.MustCompile(`(?s)<b>(.*?)</b>`), 1, "", 0)},
	{Name: doc.TagStrong, Find: regexFinder(regexp.MustCompile(`(?s)<strong>(.*?)</strong>`), 1, "", 0)},
	{Name: doc.TagItalic, Find: regexFinder(regexp.MustCompile(`(?s)<i>(.*?)</i>`), 1, "", 0)},
	{Name: doc.TagEm, Find: regexFinder(regexp.MustCompile(`(?s)<em>(.*?)</em>`), 1, "", 0)},
	{Name: doc.TagUnderline, Find: regexFinder(regexp.MustCompile(`(?s)<u>(.*?)</u>`), 1, "", 0)},
	{Name: doc.TagMathDisplay, Find: mathFinder(true)},
	{Name: doc.TagMath, Find: mathFinder(false)},
}

// regexFinder adapts a compiled pattern to the Find signature. contentGroup
// selects the inner-content capture; metaKey/metaGroup optionally map one
// capture into metadata.
func regexFinder(re *regexp.Regexp, contentGroup int, metaKey string, metaGroup int) func(string, int) *Match {
	return func(s string, from int) *Match {
		if from > len(s) {
			return nil
		}
		loc := re.FindStringSubmatchIndex(s[from:])
		if loc == nil {
			return nil
		}
		m := &Match{
			Start:    from + loc[0],
			End:      from + loc[1],
			Metadata: map[string]string{},
		}
		if loc[2*contentGroup] >= 0 {
			m.Content = s[from+loc[2*contentGroup] : from+loc[2*contentGroup+1]]
		}
		if metaKey != "" && loc[2*metaGroup] >= 0 {
			m.Metadata[metaKey] = s[from+loc[2*metaGroup] : from+loc[2*metaGroup+1]]
		}
		return m
	}
}

// markerIDFinder matches a single zero-width token of the form
// prefix + id + suffix, recording the id as metadata.
func markerIDFinder(prefix, suffix string) func(string, int) *Match {
	return func(s string, from int) *Match {
		start := strings.Index(s[from:], prefix)
		if start < 0 {
			return nil
		}
		start += from
		idStart := start + len(prefix)
		rel := strings.Index(s[idStart:], suffix)
		if rel < 0 {
			return nil
		}
		id := s[idStart : idStart+rel]
		return &Match{
			Start:    start,
			End:      idStart + rel + len(suffix),
			Metadata: map[string]string{"id": id},
		}
	}
}

// pairedIDFinder matches prefix+id+suffix ... prefix+id+suffix where both
// tokens carry the same id, capturing the raw content between them. When a
// candidate opening token has no matching close, the search resumes at the
// next opening token.
func pairedIDFinder(prefix, suffix string) func(string, int) *Match {
	return func(s string, from int) *Match {
		pos := from
		for {
			rel := strings.Index(s[pos:], prefix)
			if rel < 0 {
				return nil
			}
			open := pos + rel
			idStart := open + len(prefix)
			idRel := strings.Index(s[idStart:], suffix)
			if idRel < 0 {
				return nil
			}
			id := s[idStart : idStart+idRel]
			contentStart := idStart + idRel + len(suffix)
			closing := prefix + id + suffix
			closeRel := strings.Index(s[contentStart:], closing)
			if closeRel < 0 {
				pos = open + len(prefix)
				continue
			}
			return &Match{
				Start:    open,
				End:      contentStart + closeRel + len(closing),
				Content:  s[contentStart : contentStart+closeRel],
				Metadata: map[string]string{"id": id},
			}
		}
	}
}

// mathFinder matches $...$ (or $$...$$ when display is set), never treating
// a backslash-escaped dollar sign as a delimiter.
func mathFinder(display bool) func(string, int) *Match {
	return func(s string, from int) *Match {
		pos := from
		for {
			open := indexUnescapedDollar(s, pos)
			if open < 0 {
				return nil
			}
			contentStart := open + 1
			if display {
				if contentStart >= len(s) || s[contentStart] != '$' {
					pos = open + 1
					continue
				}
				contentStart++
			}
			close := indexUnescapedDollar(s, contentStart)
			for close >= 0 {
				if !display {
					return &Match{
						Start:    open,
						End:      close + 1,
						Content:  s[contentStart:close],
						Metadata: map[string]string{},
					}
				}
				if close+1 < len(s) && s[close+1] == '$' {
					return &Match{
						Start:    open,
						End:      close + 2,
						Content:  s[contentStart:close],
						Metadata: map[string]string{},
					}
				}
				close = indexUnescapedDollar(s, close+1)
			}
			return nil
		}
	}
}

// ExtractSection returns the text between the first occurrence of startTok
// and the next occurrence of endTok after it. ok is false when either token
// is missing.
func ExtractSection(s, startTok, endTok string) (text string, ok bool) {
	i := strings.Index(s, startTok)
	if i < 0 {
		return "", false
	}
	bodyStart := i + len(startTok)
	j := strings.Index(s[bodyStart:], endTok)
	if j < 0 {
		return "", false
	}
	return s[bodyStart : bodyStart+j], true
}

// indexUnescapedDollar returns the first '$' at or after from whose
// preceding byte is not a backslash.
func indexUnescapedDollar(s string, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == '$' && (i == 0 || s[i-1] != '\\') {
			return i
		}
	}
	return -1
}
