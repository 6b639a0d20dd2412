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
)

const htmlAttributePattern = `[a-zA-Z_:][\w:.-]*(?:\s*=\s*(?:[^"'=<>` + "`" + `\s]+|"[^"]*"|'[^']*'))?`

var markupOpenRE = regexp.MustCompile(`^<(\w[\w-]*)(?:\s+` + htmlAttributePattern + `)*\s*(/)?>`)

// textLevelElements may start a line of a paragraph
// without opening an HTML block.
var textLevelElements = stringSet(
	"a", "br", "bdo", "abbr", "blink", "nextid", "acronym", "basefont",
	"b", "em", "big", "cite", "small", "spacer", "listing",
	"i", "rp", "del", "code", "strike", "marquee",
	"q", "rt", "ins", "font", "strong",
	"s", "tt", "kbd", "mark",
	"u", "xm", "sub", "nobr",
	"sup", "ruby",
	"var", "span",
	"wbr", "time", "img",
)

// voidElements never have content or an end tag.
var voidElements = stringSet(
	"area", "base", "br", "col", "command", "embed", "hr",
	"img", "input", "link", "meta", "param", "source", "track", "wbr",
)

func stringSet(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, name := range names {
		m[name] = struct{}{}
	}
	return m
}

func inSet(set map[string]struct{}, name string) bool {
	_, ok := set[name]
	return ok
}

// markup is an HTML block.
// It runs until the end tag matching its first element,
// counting nested elements of the same name.
type markup struct {
	name    string
	comment bool
	depth   int
	text    string
	closed  bool

	// markdown is set when the block is reprocessed for markdown="1" elements.
	markdown bool
}

func buildMarkup(ctx Context, st *State, prev Block) Block {
	line := ctx.Line
	if line.Indent >= 4 {
		return nil
	}
	if strings.HasPrefix(line.Text, "<!--") {
		return &markup{
			comment: true,
			text:    line.Text,
			closed:  strings.Contains(line.Text[len("<!--"):], "-->"),
		}
	}
	m := markupOpenRE.FindStringSubmatch(line.Text)
	if m == nil {
		return nil
	}
	name := strings.ToLower(m[1])
	if inSet(textLevelElements, name) {
		return nil
	}
	b := &markup{name: name, text: line.Text}
	rest := line.Text[len(m[0]):]
	empty := m[2] == "/" || inSet(voidElements, name)
	if strings.TrimSpace(rest) == "" {
		b.closed = empty
		return b
	}
	if empty {
		return nil
	}
	b.closed = endsWithEndTag(rest, name)
	return b
}

func endsWithEndTag(s, name string) bool {
	s = strings.ToLower(strings.TrimRight(s, " \t"))
	return strings.HasSuffix(s, "</"+name+">")
}

func startsWithStartTag(s, name string) bool {
	m := markupOpenRE.FindStringSubmatch(s)
	return m != nil && m[2] == "" && strings.EqualFold(m[1], name)
}

func (b *markup) Advance(ctx Context, st *State) Block {
	if b.closed {
		return nil
	}
	next := *b
	for i := 0; i < ctx.PrecedingEmptyLines; i++ {
		next.text += "\n"
	}
	next.text += "\n" + ctx.Line.Raw
	switch {
	case b.comment:
		next.closed = strings.Contains(ctx.Line.Text, "-->")
	default:
		if startsWithStartTag(ctx.Line.Text, b.name) {
			next.depth++
		}
		if endsWithEndTag(ctx.Line.Text, b.name) {
			if next.depth > 0 {
				next.depth--
			} else {
				next.closed = true
			}
		}
	}
	return &next
}

func (b *markup) Render(st *State) *Node {
	if st.options().IgnoreRaw {
		return NewInvisible()
	}
	if b.markdown && !b.comment {
		return st.reprocessHTML(b.text)
	}
	return NewRawHTML(b.text)
}

// markupInline matches inline HTML tags and comments.
func markupInline(ex Excerpt, st *State) (int, *Node) {
	n := scanHTMLTag(ex.Text)
	if n < 0 {
		return 0, nil
	}
	return n, st.rawInline(ex.Text[:n])
}

func (st *State) rawInline(s string) *Node {
	if st.options().IgnoreRaw {
		return NewInvisible()
	}
	return NewRawHTML(s)
}
