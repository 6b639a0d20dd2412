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

import "strings"

// definitionEntry is one group of terms with their definitions.
type definitionEntry struct {
	terms []string
	// bodies holds each definition's lines, indentation removed.
	bodies [][]string
	loose  bool
}

// DefinitionList is a `Term\n: Definition` list.
// It acquires the paragraph above its first ':' line as its terms.
type DefinitionList struct {
	entries        []definitionEntry
	requiredIndent int
}

// AcquiredPrevious implements [AcquiringBlock].
func (dl *DefinitionList) AcquiredPrevious() bool {
	return true
}

// startDefinition parses a ':' line into the first lines of a definition body.
func startDefinition(line Line) (body []string, requiredIndent int, ok bool) {
	text := line.Text
	if line.Indent > 3 || len(text) < 2 || text[0] != ':' || (text[1] != ' ' && text[1] != '\t') {
		return nil, 0, false
	}
	after := NewLine(text[2:], 0)
	perceived, spaces := 0, after.Indent
	if after.Indent > 4 {
		perceived, spaces = after.Indent-1, 1
	}
	if after.Text != "" {
		body = []string{strings.Repeat(" ", perceived) + after.Text}
	}
	return body, line.Indent + 2 + spaces, true
}

func buildDefinitionList(ctx Context, st *State, prev Block) Block {
	p, ok := prev.(*Paragraph)
	if !ok || ctx.PrecedingEmptyLines > 1 {
		return nil
	}
	body, indent, ok := startDefinition(ctx.Line)
	if !ok {
		return nil
	}
	return &DefinitionList{
		entries: []definitionEntry{{
			terms:  strings.Split(p.text, "\n"),
			bodies: [][]string{body},
			loose:  ctx.PrecedingEmptyLines > 0,
		}},
		requiredIndent: indent,
	}
}

func (dl *DefinitionList) clone() *DefinitionList {
	next := &DefinitionList{
		entries:        append([]definitionEntry(nil), dl.entries...),
		requiredIndent: dl.requiredIndent,
	}
	i := len(next.entries) - 1
	e := &next.entries[i]
	e.bodies = append([][]string(nil), e.bodies...)
	j := len(e.bodies) - 1
	e.bodies[j] = append([]string(nil), e.bodies[j]...)
	return next
}

func (dl *DefinitionList) last() *definitionEntry {
	return &dl.entries[len(dl.entries)-1]
}

func (dl *DefinitionList) appendToBody(lines ...string) {
	e := dl.last()
	e.bodies[len(e.bodies)-1] = append(e.bodies[len(e.bodies)-1], lines...)
}

func (dl *DefinitionList) Advance(ctx Context, st *State) Block {
	e := dl.last()
	lastBody := e.bodies[len(e.bodies)-1]
	if ctx.PrecedingEmptyLines > 0 && isBlank(strings.Join(lastBody, "")) {
		return nil
	}
	if ctx.Line.Indent >= dl.requiredIndent {
		next := dl.clone()
		next.appendToBody(ctx.emptyLines(dl.requiredIndent)...)
		next.appendToBody(ctx.Line.TrimIndent(dl.requiredIndent))
		return next
	}
	if body, indent, ok := startDefinition(ctx.Line); ok {
		next := dl.clone()
		ne := next.last()
		ne.bodies = append(ne.bodies, body)
		ne.loose = ne.loose || ctx.PrecedingEmptyLines > 0
		next.requiredIndent = indent
		return next
	}
	if ctx.PrecedingEmptyLines == 0 {
		next := dl.clone()
		next.appendToBody(ctx.Line.TrimIndent(dl.requiredIndent))
		return next
	}
	return nil
}

// merge absorbs a definition list that directly follows this one.
func (dl *DefinitionList) merge(next Block) bool {
	other, ok := next.(*DefinitionList)
	if !ok {
		return false
	}
	dl.entries = append(dl.entries, other.entries...)
	return true
}

func (dl *DefinitionList) Render(st *State) *Node {
	n := NewBlockElement("dl", nil)
	for _, e := range dl.entries {
		for _, term := range e.terms {
			n.AppendChild(NewElement("dt", nil, st.Inline(strings.TrimSpace(term))...))
		}
		for _, body := range e.bodies {
			content := st.renderNested(body)
			if e.loose {
				n.AppendChild(NewBlockElement("dd", nil, content...))
			} else {
				n.AppendChild(tightElement("dd", unwrapParagraphs(content, true)))
			}
		}
	}
	return n
}
