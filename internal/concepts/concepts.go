// Package concepts turns model-extracted key concepts into document
// concepts and annotates their occurrences in span text.
package concepts

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/lumitools/lumimport/internal/doc"
)

// Content labels requested from the extraction prompt.
const (
	LabelDefinition = "definition"
	LabelRelevance  = "relevance"
)

// Extracted is one concept as produced by the model.
type Extracted struct {
	Name     string               `json:"name"`
	Contents []doc.ConceptContent `json:"contents"`
}

// Response is the structured output requested from the model: a single
// "concepts" key holding the extracted list.
type Response struct {
	Concepts []Extracted `json:"concepts"`
}

// FromResponse converts model output into concepts with stable positional
// ids (concept-0, concept-1, ...).
func FromResponse(resp *Response) []doc.Concept {
	if resp == nil || len(resp.Concepts) == 0 {
		return nil
	}
	out := make([]doc.Concept, 0, len(resp.Concepts))
	for i, c := range resp.Concepts {
		out = append(out, doc.Concept{
			ID:       fmt.Sprintf("concept-%d", i),
			Name:     c.Name,
			Contents: c.Contents,
		})
	}
	return out
}

// Annotate appends a concept tag to every span whose text contains a
// concept name. Matching is case-insensitive and bounded at word edges so
// names never match inside longer words. Spans are modified in place.
func Annotate(spans []doc.Span, concepts []doc.Concept, newID doc.IDFunc) {
	if newID == nil {
		newID = doc.NewID
	}

	patterns := make([]*regexp.Regexp, len(concepts))
	for i, concept := range concepts {
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(concept.Name) + `\b`)
	}

	for i := range spans {
		for j, concept := range concepts {
			for _, loc := range patterns[j].FindAllStringIndex(spans[i].Text, -1) {
				// Regexp indexes are bytes; positions count codepoints.
				start := utf8.RuneCountInString(spans[i].Text[:loc[0]])
				spans[i].InnerTags = append(spans[i].InnerTags, doc.InnerTag{
					ID:       newID(),
					TagName:  doc.TagConcept,
					Metadata: map[string]string{"concept_id": concept.ID},
					Position: doc.Position{
						StartIndex: start,
						EndIndex:   start + utf8.RuneCountInString(spans[i].Text[loc[0]:loc[1]]),
					},
				})
			}
		}
	}
}
