// Package tokenize splits cleaned text into sentences. Mathematical
// expressions routinely contain periods that look like sentence boundaries,
// so sentences split inside a math tag are merged back together.
package tokenize

import (
	"strings"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/sentences"

	"github.com/lumitools/lumimport/internal/doc"
)

// Sentences tokenizes cleanedText into sentences. innerTags are the tags
// extracted from the same text; math tags whose range crosses a sentence
// boundary cause the affected sentences to be rejoined.
func Sentences(cleanedText string, innerTags []doc.InnerTag) []string {
	initial := split(cleanedText)
	return rejoinSplitSentences(initial, cleanedText, innerTags)
}

// split runs UAX#29 sentence segmentation and trims the surrounding
// whitespace the segmenter keeps attached.
func split(text string) []string {
	var out []string
	segs := sentences.FromString(text)
	for segs.Next() {
		s := strings.TrimSpace(segs.Value())
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// rejoinSplitSentences merges consecutive sentences when a math tag starts
// in one sentence and ends in a later one. Merged sentences are joined with
// a single space since the segmenter stripped the original separator.
func rejoinSplitSentences(sents []string, cleanedText string, innerTags []doc.InnerTag) []string {
	if len(sents) == 0 {
		return nil
	}

	var mathTags []doc.InnerTag
	for _, tag := range innerTags {
		if tag.TagName == doc.TagMath || tag.TagName == doc.TagMathDisplay {
			mathTags = append(mathTags, tag)
		}
	}
	if len(mathTags) == 0 {
		return sents
	}

	// Tag positions count codepoints, so the sentence windows do too. The
	// substring search itself stays on bytes.
	var rejoined []string
	idx := 0
	textOffset := 0

	for idx < len(sents) {
		current := sents[idx]
		rel := strings.Index(cleanedText[textOffset:], current)
		if rel < 0 {
			rejoined = append(rejoined, current)
			textOffset += len(current)
			idx++
			continue
		}
		byteStart := textOffset + rel
		sentenceStart := utf8.RuneCountInString(cleanedText[:byteStart])
		sentenceEnd := sentenceStart + utf8.RuneCountInString(current)
		textOffset = byteStart + len(current)

		merged := current
		numMerged := 0

		for _, tag := range mathTags {
			tagStart := tag.Position.StartIndex
			tagEnd := tag.Position.EndIndex
			if sentenceStart <= tagStart && tagStart < sentenceEnd && tagEnd > sentenceEnd {
				next := idx + 1 + numMerged
				for sentenceEnd < tagEnd && next < len(sents) {
					merged += " " + sents[next]
					sentenceEnd += utf8.RuneCountInString(sents[next]) + 1
					numMerged++
					next++
				}
			}
		}

		rejoined = append(rejoined, merged)
		idx += 1 + numMerged
	}

	return rejoined
}
