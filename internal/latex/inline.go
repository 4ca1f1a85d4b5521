// Package latex prepares raw LaTeX sources for the import prompt: it inlines
// custom macro definitions and flattens multi-file projects into a single
// document.
package latex

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Definition keywords that share \newcommand's shape, plus \def.
var commandDefs = []string{`\newcommand`, `\DeclareRobustCommand`, `\def`}

// Command is one parsed macro definition.
type Command struct {
	Name            string  // including the leading backslash, e.g. `\R`
	NArgs           int     // total number of arguments
	Definition      string  // replacement body with #1..#9 placeholders
	OptionalDefault *string // default for the first argument, nil when required
}

// parser advances through LaTeX content one structure at a time.
type parser struct {
	content string
	pos     int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.content) {
		r, size := utf8.DecodeRuneInString(p.content[p.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		p.pos += size
	}
}

// parseBraces reads the next {...} group, tracking nested braces and
// ignoring escaped \{ and \}. Leading whitespace is skipped.
func (p *parser) parseBraces() (string, bool) {
	p.skipSpace()
	if p.pos >= len(p.content) || p.content[p.pos] != '{' {
		return "", false
	}
	level := 1
	start := p.pos + 1
	for j := start; j < len(p.content); j++ {
		switch {
		case p.content[j] == '{' && p.content[j-1] != '\\':
			level++
		case p.content[j] == '}' && p.content[j-1] != '\\':
			level--
		}
		if level == 0 {
			result := p.content[start:j]
			p.pos = j + 1
			return result, true
		}
	}
	return "", false
}

// parseBrackets reads the next [...] group. Brackets do not nest.
func (p *parser) parseBrackets() (string, bool) {
	p.skipSpace()
	if p.pos >= len(p.content) || p.content[p.pos] != '[' {
		return "", false
	}
	end := strings.IndexByte(p.content[p.pos:], ']')
	if end < 0 {
		return "", false
	}
	end += p.pos
	result := p.content[p.pos+1 : end]
	p.pos = end + 1
	return result, true
}

// parseCommandName reads a command token: a backslash followed by a run of
// letters or a single non-letter symbol, e.g. `\foo` or `\&`.
func (p *parser) parseCommandName() (string, bool) {
	p.skipSpace()
	if p.pos >= len(p.content) || p.content[p.pos] != '\\' {
		return "", false
	}
	start := p.pos
	p.pos++
	if p.pos >= len(p.content) {
		return "", false
	}
	r, size := utf8.DecodeRuneInString(p.content[p.pos:])
	if unicode.IsLetter(r) {
		for p.pos < len(p.content) {
			r, size = utf8.DecodeRuneInString(p.content[p.pos:])
			if !unicode.IsLetter(r) {
				break
			}
			p.pos += size
		}
	} else if r != ' ' {
		p.pos += size
	}
	return p.content[start:p.pos], true
}

// parseParameterText reads the text between a \def's command name and the
// opening brace of its body, e.g. `#1#2`. The parser stops at the brace.
func (p *parser) parseParameterText() (string, bool) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.content) {
		switch p.content[p.pos] {
		case '{':
			return p.content[start:p.pos], true
		case '\\':
			if p.pos+1 < len(p.content) {
				p.pos++
			}
		}
		p.pos++
	}
	return "", false
}

// findNextCommandDef returns the earliest occurrence of any supported
// definition keyword at or after start.
func findNextCommandDef(content string, start int) (keyword string, index int, ok bool) {
	index = -1
	for _, cmd := range commandDefs {
		idx := strings.Index(content[start:], cmd)
		if idx < 0 {
			continue
		}
		idx += start
		if index == -1 || idx < index {
			index = idx
			keyword = cmd
		}
	}
	return keyword, index, index >= 0
}

// countParams returns the highest #N referenced in a \def parameter text.
func countParams(paramText string) int {
	nargs := 0
	for j := 0; j < len(paramText); j++ {
		if paramText[j] == '#' && j+1 < len(paramText) {
			d := int(paramText[j+1] - '0')
			if d >= 1 && d <= 9 {
				if d > nargs {
					nargs = d
				}
				j++
			}
		}
	}
	return nargs
}

// FindAndParseCommands extracts every macro definition from content.
func FindAndParseCommands(content string) []Command {
	var commands []Command
	i := 0
	for i < len(content) {
		keyword, start, ok := findNextCommandDef(content, i)
		if !ok {
			break
		}
		pos := start + len(keyword)
		// \newcommand and \DeclareRobustCommand allow a trailing star.
		if keyword != `\def` && pos < len(content) && content[pos] == '*' {
			pos++
		}
		p := &parser{content: content, pos: pos}

		var cmd Command
		if keyword == `\def` {
			name, ok := p.parseCommandName()
			if !ok {
				i = start + len(keyword)
				continue
			}
			paramText, ok := p.parseParameterText()
			if !ok {
				i = start + len(keyword)
				continue
			}
			definition, ok := p.parseBraces()
			if !ok {
				i = start + len(keyword)
				continue
			}
			cmd = Command{Name: name, NArgs: countParams(paramText), Definition: definition}
		} else {
			name, ok := p.parseBraces()
			if !ok {
				i = start + len(keyword)
				continue
			}
			nargs := 0
			if s, ok := p.parseBrackets(); ok {
				if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
					nargs = n
				}
			}
			var optionalDefault *string
			if s, ok := p.parseBrackets(); ok {
				optionalDefault = &s
			}
			definition, ok := p.parseBraces()
			if !ok {
				i = start + len(keyword)
				continue
			}
			cmd = Command{Name: name, NArgs: nargs, Definition: definition, OptionalDefault: optionalDefault}
		}
		commands = append(commands, cmd)
		i = p.pos
	}
	return commands
}

// findCommandUsage locates the next usage of cmd at or after start and
// parses its arguments. A name ending in a letter must not be a prefix of a
// longer command, so `\c` never matches inside `\command`.
func findCommandUsage(content string, cmd Command, start int) (matchStart, matchEnd int, args []string, ok bool) {
	searchPos := start
	for {
		rel := strings.Index(content[searchPos:], cmd.Name)
		if rel < 0 {
			return 0, 0, nil, false
		}
		matchStart = searchPos + rel

		last, _ := utf8.DecodeLastRuneInString(cmd.Name)
		if unicode.IsLetter(last) {
			after := matchStart + len(cmd.Name)
			if after < len(content) {
				r, _ := utf8.DecodeRuneInString(content[after:])
				if unicode.IsLetter(r) {
					searchPos = matchStart + 1
					continue
				}
			}
		}

		p := &parser{content: content, pos: matchStart + len(cmd.Name)}
		args = nil

		numRequired := cmd.NArgs
		if cmd.OptionalDefault != nil {
			if opt, ok := p.parseBrackets(); ok {
				args = append(args, opt)
			} else {
				args = append(args, *cmd.OptionalDefault)
			}
			numRequired--
		}

		allFound := true
		for k := 0; k < numRequired; k++ {
			arg, ok := p.parseBraces()
			if !ok {
				allFound = false
				break
			}
			args = append(args, arg)
		}
		if allFound {
			return matchStart, p.pos, args, true
		}
		searchPos = matchStart + 1
	}
}

// ReplaceCommandUsages substitutes every usage of cmd in content with its
// definition, with #1..#9 replaced by the parsed arguments.
func ReplaceCommandUsages(content string, cmd Command) string {
	var out strings.Builder
	i := 0
	for i < len(content) {
		matchStart, matchEnd, args, ok := findCommandUsage(content, cmd, i)
		if !ok {
			out.WriteString(content[i:])
			break
		}
		out.WriteString(content[i:matchStart])
		definition := cmd.Definition
		for idx, arg := range args {
			placeholder := "#" + strconv.Itoa(idx+1)
			definition = strings.ReplaceAll(definition, placeholder, arg)
		}
		out.WriteString(definition)
		i = matchEnd
	}
	return out.String()
}

// RemoveCustomDefinitions strips every macro definition block from content.
func RemoveCustomDefinitions(content string) string {
	var out strings.Builder
	i := 0
	for i < len(content) {
		keyword, start, found := findNextCommandDef(content, i)
		if !found {
			out.WriteString(content[i:])
			break
		}
		out.WriteString(content[i:start])

		pos := start + len(keyword)
		if pos < len(content) && content[pos] == '*' {
			pos++
		}
		p := &parser{content: content, pos: pos}

		if keyword == `\def` {
			if _, ok := p.parseCommandName(); !ok {
				i = start + len(keyword)
				continue
			}
			p.parseParameterText()
			if _, ok := p.parseBraces(); !ok {
				i = start + len(keyword)
				continue
			}
		} else {
			if _, ok := p.parseBraces(); !ok {
				i = start + len(keyword)
				continue
			}
			p.parseBrackets()
			p.parseBrackets()
			if _, ok := p.parseBraces(); !ok {
				i = start + len(keyword)
				continue
			}
		}
		i = p.pos
	}
	return out.String()
}

// InlineCustomCommands parses all macro definitions in content, removes
// them, and expands their usages. Expansion repeats until a full pass makes
// no change so that macros defined in terms of other macros resolve, capped
// at ten passes.
func InlineCustomCommands(content string) string {
	commands := FindAndParseCommands(content)
	if len(commands) == 0 {
		return content
	}

	result := RemoveCustomDefinitions(content)

	const maxIterations = 10
	for iter := 0; iter < maxIterations; iter++ {
		previous := result
		for _, cmd := range commands {
			result = ReplaceCommandUsages(result, cmd)
		}
		if result == previous {
			break
		}
	}
	return strings.TrimSpace(result)
}
