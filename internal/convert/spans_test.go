package convert

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lumitools/lumimport/internal/doc"
)

func TestParseText(t *testing.T) {
	c := New(staticID("123"))

	tests := []struct {
		name        string
		raw         string
		wantCleaned string
		wantTags    []doc.InnerTag
	}{
		{
			name:        "plain text",
			raw:         "no markup here",
			wantCleaned: "no markup here",
		},
		{
			name:        "anchor keeps href as metadata",
			raw:         `see <a href="https://example.org">the site</a> now`,
			wantCleaned: "see the site now",
			wantTags: []doc.InnerTag{{
				ID:       "123",
				TagName:  doc.TagAnchor,
				Metadata: map[string]string{"href": "https://example.org"},
				Position: doc.Position{StartIndex: 4, EndIndex: 12},
			}},
		},
		{
			name:        "nested tags become children with parent-relative positions",
			raw:         "<b>ab<i>cd</i></b>",
			wantCleaned: "abcd",
			wantTags: []doc.InnerTag{
				styleTag(doc.TagBold, 0, 4,
					styleTag(doc.TagItalic, 2, 4),
				),
			},
		},
		{
			name:        "display math wins a tie against inline math",
			raw:         "x $$y$$ z",
			wantCleaned: "x y z",
			wantTags: []doc.InnerTag{
				styleTag(doc.TagMathDisplay, 2, 3),
			},
		},
		{
			name:        "zero-width markers keep document order",
			raw:         "claim[[l-cit-a1]] more[[l-foot-f1]]",
			wantCleaned: "claim more",
			wantTags: []doc.InnerTag{
				idTag(doc.TagReference, "a1", 5, 5),
				idTag(doc.TagFootnote, "f1", 10, 10),
			},
		},
		{
			name:        "positions count codepoints not bytes",
			raw:         "é <b>x</b>",
			wantCleaned: "é x",
			wantTags: []doc.InnerTag{
				styleTag(doc.TagBold, 2, 3),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cleaned, innerTags := c.ParseText(tc.raw)
			if cleaned != tc.wantCleaned {
				t.Errorf("ParseText() cleaned = %q, want %q", cleaned, tc.wantCleaned)
			}
			if diff := cmp.Diff(tc.wantTags, innerTags); diff != "" {
				t.Errorf("ParseText() tags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCreateSpansSkipTokenize(t *testing.T) {
	c := New(staticID("123"))

	// Reference entries keep multi-sentence text as one span.
	cleaned, innerTags := c.ParseText("Doe, J. (2023). A title. Some Journal.[[l-cit-x1]]")
	got := c.CreateSpans(cleaned, innerTags, SpanOptions{SkipTokenize: true})

	want := []doc.Span{{
		ID:   "123",
		Text: "Doe, J. (2023). A title. Some Journal.",
		InnerTags: []doc.InnerTag{
			idTag(doc.TagReference, "x1", 38, 38),
		},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CreateSpans() mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateSpansStripDoubleBrackets(t *testing.T) {
	c := New(staticID("123"))

	got := c.CreateSpans("keep [[drop me]] rest", nil, SpanOptions{SkipTokenize: true, StripDoubleBrackets: true})

	want := []doc.Span{{ID: "123", Text: "keep  rest"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CreateSpans() mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateSpansRepeatedSentence(t *testing.T) {
	c := New(staticID("123"))

	// Identical sentence text recurring back to back: the monotonic search
	// offset must anchor the second occurrence past the first, so a tag on
	// the second occurrence stays there.
	cleaned, innerTags := c.ParseText("It works. <b>It works.</b>")
	got := c.CreateSpans(cleaned, innerTags, SpanOptions{})

	want := []doc.Span{
		span("It works."),
		span("It works.", styleTag(doc.TagBold, 0, 9)),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CreateSpans() mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateSpansNonASCIIPositions(t *testing.T) {
	c := New(staticID("123"))

	// Multi-byte runes before and inside the tagged sentence: positions and
	// sentence windows must count codepoints or the tag lands shifted.
	cleaned, innerTags := c.ParseText("Café rocks. <b>Héllo wörld.</b>")
	got := c.CreateSpans(cleaned, innerTags, SpanOptions{})

	want := []doc.Span{
		span("Café rocks."),
		span("Héllo wörld.", styleTag(doc.TagBold, 0, 12)),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CreateSpans() mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateSpansReconstructText(t *testing.T) {
	c := New(staticID("123"))

	// Concatenating span texts gives back the cleaned text, modulo the
	// joining whitespace the tokenizer strips.
	inputs := []string{
		"One plain sentence.",
		"Tagged <b>bold text</b>. Another sentence follows. <i>Final.</i>",
		"Math $a.b$ splits here. Café après. Done.",
		"Crossing <b>tag. Over two</b> sentences.",
	}
	for _, raw := range inputs {
		cleaned, innerTags := c.ParseText(raw)
		spans := c.CreateSpans(cleaned, innerTags, SpanOptions{})

		var parts []string
		for _, s := range spans {
			if s.Text != "" {
				parts = append(parts, s.Text)
			}
		}
		got := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
		want := strings.Join(strings.Fields(cleaned), " ")
		if got != want {
			t.Errorf("spans of %q reconstruct %q, want %q", raw, got, want)
		}
	}
}

func TestCreateSpansEmptyInput(t *testing.T) {
	c := New(staticID("123"))

	if got := c.CreateSpans("", nil, SpanOptions{}); got != nil {
		t.Errorf("CreateSpans() = %v, want nil", got)
	}
	if got := c.CreateSpans("   ", nil, SpanOptions{}); got != nil {
		t.Errorf("CreateSpans() = %v, want nil", got)
	}
}
