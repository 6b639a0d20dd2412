// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package mdextra

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/util"
)

// Inline parses a span of inline Markdown into render nodes.
// Text between matched spans becomes [TextKind] nodes.
func (st *State) Inline(text string) []*Node {
	if st.inline >= st.options().MaxNesting {
		return []*Node{NewText(text)}
	}
	st.inline++
	defer func() { st.inline-- }()

	triggers := st.grammar().inlineTriggers
	var nodes []*Node
	start := 0
	for i := 0; i < len(text); {
		j := strings.IndexAny(text[i:], triggers)
		if j < 0 {
			break
		}
		i += j
		if w, n := st.matchInline(Excerpt{Text: text[i:], Context: text, Offset: i}); n != nil {
			nodes = appendUnmarked(nodes, text[start:i])
			nodes = append(nodes, n)
			i += w
			start = i
			continue
		}
		i++
	}
	return appendUnmarked(nodes, text[start:])
}

func (st *State) matchInline(ex Excerpt) (int, *Node) {
	for _, t := range st.grammar().inlines[ex.Text[0]] {
		if w, n := t.Match(ex, st); n != nil && w > 0 {
			return w, n
		}
	}
	return 0, nil
}

// appendUnmarked appends plain text,
// turning a line ending preceded by two or more spaces into a hard break.
func appendUnmarked(nodes []*Node, text string) []*Node {
	for text != "" {
		line, rest, found := strings.Cut(text, "\n")
		if !found {
			return append(nodes, NewText(line))
		}
		trimmed := strings.TrimRight(line, " ")
		if len(line)-len(trimmed) >= 2 {
			nodes = append(nodes, NewText(trimmed), NewElement("br", nil), NewText("\n"))
		} else {
			nodes = append(nodes, NewText(trimmed+"\n"))
		}
		text = strings.TrimLeft(rest, " ")
	}
	return nodes
}

func registerBaseInlines(g *Grammar) error {
	regs := []struct {
		trigger byte
		t       InlineType
	}{
		{'`', InlineType{Name: "code", Match: codeSpan}},
		{'*', InlineType{Name: "emphasis", Match: emphasis}},
		{'_', InlineType{Name: "emphasis", Match: emphasis}},
		{'~', InlineType{Name: "strikethrough", Match: strikethrough}},
		{'!', InlineType{Name: "image", Match: image}},
		{'[', InlineType{Name: "link", Match: link}},
		{'<', InlineType{Name: "autolink", Match: autolink}},
		{'<', InlineType{Name: "markup", Match: markupInline}},
		{'\\', InlineType{Name: "escape", Match: escape}},
		{'&', InlineType{Name: "entity", Match: entity}},
		{'h', InlineType{Name: "url", Match: bareURL}},
	}
	for _, r := range regs {
		if err := g.AddInline(r.trigger, Low, r.t); err != nil {
			return err
		}
	}
	return nil
}

func codeSpan(ex Excerpt, st *State) (int, *Node) {
	text := ex.Text
	n := countRun(text, '`')
	for i := n; i < len(text); {
		j := strings.IndexByte(text[i:], '`')
		if j < 0 {
			break
		}
		i += j
		k := countRun(text[i:], '`')
		if k == n {
			content := strings.ReplaceAll(text[n:i], "\n", " ")
			if len(content) >= 2 && content[0] == ' ' && content[len(content)-1] == ' ' && strings.Trim(content, " ") != "" {
				content = content[1 : len(content)-1]
			}
			return i + k, NewElement("code", nil, NewText(content))
		}
		i += k
	}
	// An unmatched run is literal.
	return n, NewText(text[:n])
}

func countRun(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	return n
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func emphasis(ex Excerpt, st *State) (int, *Node) {
	text := ex.Text
	c := text[0]
	if len(text) < 3 || (c == '_' && isWordRune(ex.PrevRune())) {
		return 0, nil
	}
	if text[1] == c {
		if end := findEmphasisClose(text, c, 2); end >= 0 {
			return end + 2, NewElement("strong", nil, st.Inline(text[2:end])...)
		}
	}
	if end := findEmphasisClose(text, c, 1); end >= 0 {
		return end + 1, NewElement("em", nil, st.Inline(text[1:end])...)
	}
	return 0, nil
}

// findEmphasisClose returns the index of the delimiter run of width n
// closing emphasis that opens at the start of text, or -1.
func findEmphasisClose(text string, c byte, n int) int {
	if n >= len(text) || isSpaceByte(text[n]) {
		return -1
	}
	for i := n; i < len(text); {
		switch text[i] {
		case '\\':
			i += 2
			continue
		case '`':
			i += skipCodeSpan(text[i:])
			continue
		case c:
		default:
			i++
			continue
		}
		run := countRun(text[i:], c)
		canClose := !isSpaceByte(text[i-1]) &&
			(c != '_' || i+run == len(text) || !isWordByte(text[i+run]))
		switch {
		case n == 2 && run >= 2 && canClose:
			return i + run - 2
		case n == 1 && run == 1 && canClose:
			return i
		case n == 1 && run >= 2:
			// Skip over nested strong emphasis.
			if k := findEmphasisClose(text[i:], c, 2); k >= 0 {
				i += k + 2
				continue
			}
		}
		i += run
	}
	return -1
}

// skipCodeSpan returns the width of the code span at the start of s,
// or the width of its opening backticks if it is unterminated.
func skipCodeSpan(s string) int {
	n := countRun(s, '`')
	for i := n; i < len(s); {
		j := strings.IndexByte(s[i:], '`')
		if j < 0 {
			break
		}
		i += j
		k := countRun(s[i:], '`')
		if k == n {
			return i + k
		}
		i += k
	}
	return n
}

var strikethroughRE = regexp.MustCompile(`^~~(\S(?:[\s\S]*?\S)?)~~`)

func strikethrough(ex Excerpt, st *State) (int, *Node) {
	m := strikethroughRE.FindStringSubmatch(ex.Text)
	if m == nil {
		return 0, nil
	}
	return len(m[0]), NewElement("del", nil, st.Inline(m[1])...)
}

// linkParts is a parsed link or image.
type linkParts struct {
	label       string
	destination string
	title       string
	width       int
}

// parseLink parses `[label](dest "title")` and the reference forms
// `[label][ref]`, `[label][]` and `[label]` at the start of text.
func (st *State) parseLink(text string) (linkParts, bool) {
	end := matchBracket(text)
	if end < 0 {
		return linkParts{}, false
	}
	parts := linkParts{label: text[1:end]}
	rest := text[end+1:]
	if strings.HasPrefix(rest, "(") {
		dest, title, w, ok := parseInlineDestination(rest)
		if ok {
			parts.destination = dest
			parts.title = title
			parts.width = end + 1 + w
			return parts, true
		}
	}
	ref := parts.label
	parts.width = end + 1
	if strings.HasPrefix(rest, "[") {
		if j := strings.IndexByte(rest, ']'); j >= 0 {
			if r := rest[1:j]; strings.TrimSpace(r) != "" {
				ref = r
			}
			parts.width += j + 1
		}
	}
	def, ok := st.References[NormalizeLabel(ref)]
	if !ok {
		return linkParts{}, false
	}
	parts.destination = def.Destination
	parts.title = def.Title
	return parts, true
}

// matchBracket returns the index of the ']' matching the '[' at text[0].
func matchBracket(text string) int {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '`':
			i += skipCodeSpan(text[i:]) - 1
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func skipSpaces(s string, i int) int {
	for i < len(s) && isSpaceByte(s[i]) {
		i++
	}
	return i
}

// parseInlineDestination parses `(dest "title")` at the start of s.
func parseInlineDestination(s string) (dest, title string, width int, ok bool) {
	i := skipSpaces(s, 1)
	if i < len(s) && s[i] == '<' {
		j := strings.IndexAny(s[i:], ">\n")
		if j < 0 || s[i+j] != '>' {
			return "", "", 0, false
		}
		dest = s[i+1 : i+j]
		i += j + 1
	} else {
		start := i
		depth := 0
	scan:
		for ; i < len(s); i++ {
			switch c := s[i]; {
			case c == '\\' && i+1 < len(s):
				i++
			case c == '(':
				depth++
			case c == ')':
				if depth == 0 {
					break scan
				}
				depth--
			case isSpaceByte(c):
				break scan
			}
		}
		dest = s[start:i]
	}
	j := skipSpaces(s, i)
	if j < len(s) && j > i && (s[j] == '"' || s[j] == '\'' || s[j] == '(') {
		closer := s[j]
		if closer == '(' {
			closer = ')'
		}
		k := j + 1
		for ; k < len(s) && s[k] != closer; k++ {
			if s[k] == '\\' {
				k++
			}
		}
		if k >= len(s) {
			return "", "", 0, false
		}
		title = s[j+1 : k]
		j = skipSpaces(s, k+1)
	}
	if j >= len(s) || s[j] != ')' {
		return "", "", 0, false
	}
	return dest, title, j + 1, true
}

// linkURL prepares a link destination for an href or src attribute.
func linkURL(dest string) string {
	return string(util.URLEscape(util.UnescapePunctuations([]byte(dest)), true))
}

// linkTitle resolves escapes and character references in a link title.
func linkTitle(title string) string {
	b := util.UnescapePunctuations([]byte(title))
	b = util.ResolveNumericReferences(b)
	return string(util.ResolveEntityNames(b))
}

func link(ex Excerpt, st *State) (int, *Node) {
	if st.inLink {
		return 0, nil
	}
	parts, ok := st.parseLink(ex.Text)
	if !ok {
		return 0, nil
	}
	attrs := []Attribute{{Key: "href", Value: linkURL(parts.destination)}}
	if parts.title != "" {
		attrs = append(attrs, Attribute{Key: "title", Value: linkTitle(parts.title)})
	}
	st.inLink = true
	content := st.Inline(parts.label)
	st.inLink = false
	return parts.width, NewElement("a", attrs, content...)
}

func image(ex Excerpt, st *State) (int, *Node) {
	if !strings.HasPrefix(ex.Text, "![") {
		return 0, nil
	}
	parts, ok := st.parseLink(ex.Text[1:])
	if !ok {
		return 0, nil
	}
	inLink := st.inLink
	st.inLink = true
	alt := st.plainInline(parts.label)
	st.inLink = inLink
	attrs := []Attribute{
		{Key: "src", Value: linkURL(parts.destination)},
		{Key: "alt", Value: alt},
	}
	if parts.title != "" {
		attrs = append(attrs, Attribute{Key: "title", Value: linkTitle(parts.title)})
	}
	return parts.width + 1, NewElement("img", attrs)
}

var (
	urlAutolinkRE   = regexp.MustCompile(`^<([a-zA-Z][a-zA-Z0-9+.-]{1,31}:[^\s<>]*)>`)
	emailAutolinkRE = regexp.MustCompile("^<([a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*)>")
	bareURLRE       = regexp.MustCompile(`^https?://[^\s<]*[^\s<?!.,:*_~'")\]]`)
	entityRE        = regexp.MustCompile(`^&(?:#[xX][0-9a-fA-F]{1,6}|#[0-9]{1,7}|[a-zA-Z][a-zA-Z0-9]{1,31});`)
)

func autolink(ex Excerpt, st *State) (int, *Node) {
	if m := urlAutolinkRE.FindStringSubmatch(ex.Text); m != nil {
		return len(m[0]), NewElement("a", []Attribute{{Key: "href", Value: linkURL(m[1])}}, NewText(m[1]))
	}
	if m := emailAutolinkRE.FindStringSubmatch(ex.Text); m != nil {
		return len(m[0]), NewElement("a", []Attribute{{Key: "href", Value: "mailto:" + m[1]}}, NewText(m[1]))
	}
	return 0, nil
}

func bareURL(ex Excerpt, st *State) (int, *Node) {
	if st.inLink || isWordRune(ex.PrevRune()) {
		return 0, nil
	}
	m := bareURLRE.FindString(ex.Text)
	if m == "" {
		return 0, nil
	}
	return len(m), NewElement("a", []Attribute{{Key: "href", Value: linkURL(m)}}, NewText(m))
}

func escape(ex Excerpt, st *State) (int, *Node) {
	if len(ex.Text) < 2 {
		return 0, nil
	}
	c := ex.Text[1]
	switch {
	case c == '\n':
		return 2, NewContainer(NewElement("br", nil), NewText("\n"))
	case isASCIIPunct(c):
		return 2, NewText(ex.Text[1:2])
	default:
		return 0, nil
	}
}

func isASCIIPunct(c byte) bool {
	return '!' <= c && c <= '/' || ':' <= c && c <= '@' || '[' <= c && c <= '`' || '{' <= c && c <= '~'
}

func entity(ex Excerpt, st *State) (int, *Node) {
	m := entityRE.FindString(ex.Text)
	if m == "" {
		return 0, nil
	}
	return len(m), NewRawHTML(m)
}
