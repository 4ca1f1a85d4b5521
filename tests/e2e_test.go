package tests

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lumitools/lumimport/internal/doc"
	"github.com/lumitools/lumimport/internal/pipeline"
)

// taggedPaper is a small but complete model output: every section token,
// a nested heading, an image with caption, inline markup, a reference
// and a footnote.
const taggedPaper = `[[l-tit]] # Attention Is Not All You Need [[l-tit]]

[[l-aut]] Jane Doe, John Smith [[l-aut]]

[[l-abs]] We study sparse attention. Our method halves compute. [[l-abs]]

[[l-con]]
# Introduction

Transformers are expensive. We propose **sparse routing**[[l-foot-1]].

[[l-image_figs/arch.png]]
[[l-image_cap_figs/arch.png]] Figure 1: Model architecture. [[l-image_cap_figs/arch.png]]

## Method

The routing score is $s = qk^T$.
[[l-con]]

[[l-refs-start]]
[[l-ref-1]] Vaswani et al. Attention is all you need. 2017. [[l-ref]]
[[l-refs-end]]

[[l-footnotes-start]]
[[l-footnote-start-1]] Code is available online. [[l-footnote-end-1]]
[[l-footnotes-end]]
`

// End-to-end test for the conversion path: tagged model output in, a full
// document tree out. Runs the built binary so flag parsing, config loading
// and JSON encoding are covered too.

func TestE2EImportFromOutput(t *testing.T) {
	binPath, cleanup := buildTestBinary(t)
	defer cleanup()

	outputFile := filepath.Join(t.TempDir(), "model_output.md")
	if err := os.WriteFile(outputFile, []byte(taggedPaper), 0644); err != nil {
		t.Fatalf("failed to write model output fixture: %v", err)
	}

	cmd := exec.Command("./"+binPath, "import", "2301.0001", "--from-output", outputFile)
	output, err := cmd.Output()
	if err != nil {
		t.Fatalf("import command failed: %v\noutput: %s", err, output)
	}

	var d doc.Doc
	if err := json.Unmarshal(output, &d); err != nil {
		t.Fatalf("output is not valid document JSON: %v\noutput: %s", err, output)
	}

	validateDocumentTree(t, &d)
}

// validateDocumentTree checks the converted document's structure.
func validateDocumentTree(t *testing.T, d *doc.Doc) {
	t.Helper()

	// Abstract
	if d.Abstract == nil || len(d.Abstract.Contents) == 0 {
		t.Fatal("expected a non-empty abstract")
	}
	abs := d.Abstract.Contents[0]
	if abs.TextContent == nil {
		t.Fatal("expected abstract text content")
	}
	if len(abs.TextContent.Spans) < 2 {
		t.Errorf("expected the abstract split into sentences, got %d spans", len(abs.TextContent.Spans))
	}

	// Section forest: Method nests under Introduction
	if len(d.Sections) != 1 {
		t.Fatalf("expected 1 top-level section, got %d", len(d.Sections))
	}
	intro := d.Sections[0]
	if intro.Heading.Text != "Introduction" || intro.Heading.HeadingLevel != 1 {
		t.Errorf("unexpected top-level heading: %+v", intro.Heading)
	}
	if len(intro.SubSections) != 1 || intro.SubSections[0].Heading.Text != "Method" {
		t.Fatalf("expected a 'Method' sub-section, got %+v", intro.SubSections)
	}

	// The image block must survive with a flattened storage path and caption
	images := pipeline.CollectImageContents(d)
	if len(images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(images))
	}
	img := images[0]
	if img.StoragePath != "2301.0001/images/figs__arch.png" {
		t.Errorf("unexpected storage path: %s", img.StoragePath)
	}
	if img.LatexPath != "figs/arch.png" {
		t.Errorf("unexpected latex path: %s", img.LatexPath)
	}
	if img.Caption == nil || !strings.Contains(img.Caption.Text, "Model architecture") {
		t.Errorf("expected image caption, got %+v", img.Caption)
	}

	// References and footnotes stay single untokenized spans
	if len(d.References) != 1 || d.References[0].ID != "1" {
		t.Fatalf("expected reference '1', got %+v", d.References)
	}
	if !strings.Contains(d.References[0].Span.Text, "Vaswani") {
		t.Errorf("unexpected reference text: %s", d.References[0].Span.Text)
	}
	if len(d.Footnotes) != 1 || d.Footnotes[0].Span.Text != "Code is available online." {
		t.Fatalf("expected one footnote, got %+v", d.Footnotes)
	}

	// No raw tokens may leak into span text
	forEachSpan(d, func(s doc.Span) {
		if strings.Contains(s.Text, "[[") {
			t.Errorf("raw token leaked into span text: %q", s.Text)
		}
	})
}

func forEachSpan(d *doc.Doc, fn func(doc.Span)) {
	visitContents := func(contents []doc.Content) {
		for _, c := range contents {
			if c.TextContent != nil {
				for _, s := range c.TextContent.Spans {
					fn(s)
				}
			}
		}
	}

	var walk func(sections []*doc.Section)
	walk = func(sections []*doc.Section) {
		for _, s := range sections {
			visitContents(s.Contents)
			walk(s.SubSections)
		}
	}

	if d.Abstract != nil {
		visitContents(d.Abstract.Contents)
	}
	walk(d.Sections)
	for _, r := range d.References {
		fn(r.Span)
	}
	for _, f := range d.Footnotes {
		fn(f.Span)
	}
}
