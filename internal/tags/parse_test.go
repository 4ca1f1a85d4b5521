package tags

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLumiImport(t *testing.T) {
	input := "[[l-tit]] # The Future of AI [[l-tit]]\n" +
		"[[l-aut]] Dr. Alex Chen, Prof. Brenda Lee [[l-aut]]\n\n" +
		"[[l-abs]]AI is rapidly transforming **discovery**.[[l-abs]]\n\n" +
		"[[l-con]]\n\n## I. INTRODUCTION\n\nBody with $E = mc^2$ and a citation [[l-cit-1]].\n\n[[l-con]]\n\n" +
		"[[l-footnotes-start]]\n" +
		"[[l-footnote-start-1]]This is the first footnote.[[l-footnote-end-1]]\n" +
		"[[l-footnotes-end]]\n\n" +
		"[[l-refs-start]]\n" +
		"[[l-ref-1]][1] A. Chen, \"AI for Materials Science,\" 2023.[[l-ref]]\n" +
		"[[l-ref-2]][2] B. Lee, *Hybrid Models*, 2024.[[l-ref]]\n" +
		"[[l-refs-end]]\n"

	got := ParseLumiImport(input)

	want := ParsedImport{
		Title:    " # The Future of AI ",
		Authors:  " Dr. Alex Chen, Prof. Brenda Lee ",
		Abstract: "AI is rapidly transforming **discovery**.",
		Content:  "\n\n## I. INTRODUCTION\n\nBody with $E = mc^2$ and a citation [[l-cit-1]].\n\n",
		References: []ImportItem{
			{ID: "1", Content: `[1] A. Chen, "AI for Materials Science," 2023.`},
			{ID: "2", Content: `[2] B. Lee, *Hybrid Models*, 2024.`},
		},
		Footnotes: []ImportItem{
			{ID: "1", Content: "This is the first footnote."},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseLumiImport() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLumiImportMissingSections(t *testing.T) {
	got := ParseLumiImport("plain text with no tokens")
	if diff := cmp.Diff(ParsedImport{}, got); diff != "" {
		t.Errorf("ParseLumiImport() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLumiImportUnterminatedSection(t *testing.T) {
	got := ParseLumiImport("[[l-abs]]An abstract that never closes")
	if got.Abstract != "" {
		t.Errorf("Abstract = %q, want empty for an unterminated section", got.Abstract)
	}
}
