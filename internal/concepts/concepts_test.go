package concepts

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lumitools/lumimport/internal/doc"
)

func TestFromResponse(t *testing.T) {
	resp := &Response{Concepts: []Extracted{
		{
			Name: "Large Language Models",
			Contents: []doc.ConceptContent{{
				Label: LabelDefinition,
				Value: "Advanced AI models capable of understanding and generating human language.",
			}},
		},
		{
			Name: "Semantic Search",
			Contents: []doc.ConceptContent{{
				Label: LabelDefinition,
				Value: "A search technique that understands the meaning and context of queries.",
			}},
		},
	}}

	want := []doc.Concept{
		{
			ID:   "concept-0",
			Name: "Large Language Models",
			Contents: []doc.ConceptContent{{
				Label: LabelDefinition,
				Value: "Advanced AI models capable of understanding and generating human language.",
			}},
		},
		{
			ID:   "concept-1",
			Name: "Semantic Search",
			Contents: []doc.ConceptContent{{
				Label: LabelDefinition,
				Value: "A search technique that understands the meaning and context of queries.",
			}},
		},
	}

	if diff := cmp.Diff(want, FromResponse(resp)); diff != "" {
		t.Errorf("FromResponse() mismatch (-want +got):\n%s", diff)
	}

	if got := FromResponse(nil); got != nil {
		t.Errorf("FromResponse(nil) = %v, want nil", got)
	}
	if got := FromResponse(&Response{}); got != nil {
		t.Errorf("FromResponse(empty) = %v, want nil", got)
	}
}

func TestAnnotate(t *testing.T) {
	newID := func() string { return "t1" }

	t.Run("single concept", func(t *testing.T) {
		spans := []doc.Span{{
			ID:   "s1",
			Text: "This paper is about Large Language Models.",
		}}
		concepts := []doc.Concept{{ID: "c1", Name: "Large Language Models"}}

		Annotate(spans, concepts, newID)

		want := []doc.InnerTag{{
			ID:       "t1",
			TagName:  doc.TagConcept,
			Metadata: map[string]string{"concept_id": "c1"},
			Position: doc.Position{StartIndex: 20, EndIndex: 41},
		}}
		if diff := cmp.Diff(want, spans[0].InnerTags); diff != "" {
			t.Errorf("Annotate() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("multiple concepts and spans", func(t *testing.T) {
		spans := []doc.Span{
			{ID: "s1", Text: "We use Semantic Search."},
			{ID: "s2", Text: "The future is Large Language Models."},
		}
		concepts := []doc.Concept{
			{ID: "c1", Name: "Large Language Models"},
			{ID: "c2", Name: "Semantic Search"},
		}

		Annotate(spans, concepts, newID)

		if len(spans[0].InnerTags) != 1 {
			t.Fatalf("span 1 tags = %d, want 1", len(spans[0].InnerTags))
		}
		tag1 := spans[0].InnerTags[0]
		if tag1.Metadata["concept_id"] != "c2" {
			t.Errorf("span 1 concept_id = %q, want c2", tag1.Metadata["concept_id"])
		}
		if tag1.Position != (doc.Position{StartIndex: 7, EndIndex: 22}) {
			t.Errorf("span 1 position = %+v", tag1.Position)
		}

		if len(spans[1].InnerTags) != 1 {
			t.Fatalf("span 2 tags = %d, want 1", len(spans[1].InnerTags))
		}
		tag2 := spans[1].InnerTags[0]
		if tag2.Metadata["concept_id"] != "c1" {
			t.Errorf("span 2 concept_id = %q, want c1", tag2.Metadata["concept_id"])
		}
		if tag2.Position != (doc.Position{StartIndex: 14, EndIndex: 35}) {
			t.Errorf("span 2 position = %+v", tag2.Position)
		}
	})

	t.Run("case-insensitive match", func(t *testing.T) {
		spans := []doc.Span{{ID: "s1", Text: "large language models matter."}}
		Annotate(spans, []doc.Concept{{ID: "c1", Name: "Large Language Models"}}, newID)

		if len(spans[0].InnerTags) != 1 {
			t.Fatalf("tags = %d, want 1", len(spans[0].InnerTags))
		}
		if got := spans[0].InnerTags[0].Position; got != (doc.Position{StartIndex: 0, EndIndex: 21}) {
			t.Errorf("position = %+v", got)
		}
	})

	t.Run("positions count codepoints", func(t *testing.T) {
		spans := []doc.Span{{ID: "s1", Text: "Résumé data and data."}}
		Annotate(spans, []doc.Concept{{ID: "c1", Name: "data"}}, newID)

		if len(spans[0].InnerTags) != 2 {
			t.Fatalf("tags = %d, want 2", len(spans[0].InnerTags))
		}
		if got := spans[0].InnerTags[0].Position; got != (doc.Position{StartIndex: 7, EndIndex: 11}) {
			t.Errorf("first position = %+v", got)
		}
		if got := spans[0].InnerTags[1].Position; got != (doc.Position{StartIndex: 16, EndIndex: 20}) {
			t.Errorf("second position = %+v", got)
		}
	})

	t.Run("no match inside longer words", func(t *testing.T) {
		spans := []doc.Span{{ID: "s1", Text: "The searchlight scans."}}
		Annotate(spans, []doc.Concept{{ID: "c1", Name: "search"}}, newID)

		if len(spans[0].InnerTags) != 0 {
			t.Errorf("tags = %v, want none", spans[0].InnerTags)
		}
	})

	t.Run("absent concept adds nothing", func(t *testing.T) {
		spans := []doc.Span{{ID: "s1", Text: "This is a simple sentence."}}
		Annotate(spans, []doc.Concept{{ID: "c1", Name: "Nonexistent Concept"}}, newID)

		if len(spans[0].InnerTags) != 0 {
			t.Errorf("tags = %v, want none", spans[0].InnerTags)
		}
	})
}
