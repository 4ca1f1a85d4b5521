package tags

import "strings"

// ImportItem is one reference or footnote entry of a parsed import.
type ImportItem struct {
	ID      string
	Content string
}

// ParsedImport holds a model output string split along the section
// delimiter tokens. A section whose delimiters are missing stays empty.
type ParsedImport struct {
	Title      string
	Authors    string
	Abstract   string
	Content    string
	References []ImportItem
	Footnotes  []ImportItem
}

// ParseLumiImport splits tagged model output into its sections. The
// reference and footnote sections are split further into their items, with
// item content trimmed of surrounding whitespace.
func ParseLumiImport(s string) ParsedImport {
	var p ParsedImport
	p.Title, _ = ExtractSection(s, TitleStart, TitleEnd)
	p.Authors, _ = ExtractSection(s, AuthorsStart, AuthorsEnd)
	p.Abstract, _ = ExtractSection(s, AbstractStart, AbstractEnd)
	p.Content, _ = ExtractSection(s, ContentStart, ContentEnd)

	if refs, ok := ExtractSection(s, ReferencesStart, ReferencesEnd); ok {
		for pos := 0; ; {
			m := FindReferenceItem(refs, pos)
			if m == nil {
				break
			}
			p.References = append(p.References, ImportItem{ID: m.ID, Content: strings.TrimSpace(m.Content)})
			pos = m.End
		}
	}
	if foots, ok := ExtractSection(s, FootnotesStart, FootnotesEnd); ok {
		for pos := 0; ; {
			m := FindFootnoteContent(foots, pos)
			if m == nil {
				break
			}
			p.Footnotes = append(p.Footnotes, ImportItem{ID: m.ID, Content: strings.TrimSpace(m.Content)})
			pos = m.End
		}
	}
	return p
}
