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
	"strconv"
	"strings"
)

var (
	bulletRE  = regexp.MustCompile(`^([*+-])(?:[ \t]|$)`)
	orderedRE = regexp.MustCompile(`^([0-9]{1,9})([.)])(?:[ \t]|$)`)
)

type listMarker struct {
	ordered bool
	// delim is the bullet character or the delimiter after the number.
	delim byte
	start int
	// content is the text after the marker.
	content string
	// requiredIndent is the indentation continuation lines need.
	requiredIndent int
}

func parseListMarker(line Line) (listMarker, bool) {
	var m listMarker
	var width int
	if sm := bulletRE.FindStringSubmatch(line.Text); sm != nil {
		m.delim = sm[1][0]
		width = 1
	} else if sm := orderedRE.FindStringSubmatch(line.Text); sm != nil {
		m.ordered = true
		m.start, _ = strconv.Atoi(sm[1])
		m.delim = sm[2][0]
		width = len(sm[1]) + 1
	} else {
		return listMarker{}, false
	}
	after := NewLine(line.Text[width:], 0)
	spaces := after.Indent
	switch {
	case after.Text == "":
		spaces = 1
	case spaces > 4:
		// The content is indented code; only one space belongs to the marker.
		m.content = strings.Repeat(" ", spaces-1) + after.Text
		spaces = 1
	default:
		m.content = after.Text
	}
	m.requiredIndent = line.Indent + width + spaces
	return m, true
}

// list is an ordered or bullet list.
// Each item holds its lines with the item indentation removed.
type list struct {
	ordered        bool
	delim          byte
	start          int
	items          [][]string
	loose          bool
	requiredIndent int
}

func buildList(ctx Context, st *State, prev Block) Block {
	if ctx.Line.Indent >= 4 {
		return nil
	}
	m, ok := parseListMarker(ctx.Line)
	if !ok {
		return nil
	}
	if _, isPara := prev.(*Paragraph); isPara && ctx.PrecedingEmptyLines == 0 {
		// Only a non-empty list starting at 1 may interrupt a paragraph.
		if m.content == "" || (m.ordered && m.start != 1) {
			return nil
		}
	}
	var first []string
	if m.content != "" {
		first = []string{m.content}
	}
	return &list{
		ordered:        m.ordered,
		delim:          m.delim,
		start:          m.start,
		items:          [][]string{first},
		requiredIndent: m.requiredIndent,
	}
}

func (l *list) clone() *list {
	next := *l
	next.items = append([][]string(nil), l.items...)
	last := len(next.items) - 1
	next.items[last] = append([]string(nil), l.items[last]...)
	return &next
}

func (l *list) Advance(ctx Context, st *State) Block {
	last := l.items[len(l.items)-1]
	if ctx.PrecedingEmptyLines > 0 && len(last) == 0 {
		return nil
	}
	if ctx.Line.Indent >= l.requiredIndent {
		next := l.clone()
		i := len(next.items) - 1
		if ctx.PrecedingEmptyLines > 0 {
			next.loose = true
			next.items[i] = append(next.items[i], ctx.emptyLines(l.requiredIndent)...)
		}
		next.items[i] = append(next.items[i], ctx.Line.TrimIndent(l.requiredIndent))
		return next
	}
	if ctx.Line.Indent < 4 {
		if m, ok := parseListMarker(ctx.Line); ok && m.ordered == l.ordered && m.delim == l.delim {
			next := l.clone()
			next.loose = l.loose || ctx.PrecedingEmptyLines > 0
			var first []string
			if m.content != "" {
				first = []string{m.content}
			}
			next.items = append(next.items, first)
			next.requiredIndent = m.requiredIndent
			return next
		}
	}
	if ctx.PrecedingEmptyLines == 0 && len(last) > 0 && !isBlank(last[len(last)-1]) && !st.startsBlock(ctx.Line) {
		next := l.clone()
		i := len(next.items) - 1
		next.items[i] = append(next.items[i], ctx.Line.Text)
		return next
	}
	return nil
}

func (l *list) Render(st *State) *Node {
	name := "ul"
	var attrs []Attribute
	if l.ordered {
		name = "ol"
		if l.start != 1 {
			attrs = append(attrs, Attribute{Key: "start", Value: strconv.Itoa(l.start)})
		}
	}
	n := NewBlockElement(name, attrs)
	for _, item := range l.items {
		content := st.renderNested(item)
		if l.loose {
			n.AppendChild(NewBlockElement("li", nil, content...))
		} else {
			n.AppendChild(tightElement("li", unwrapParagraphs(content, false)))
		}
	}
	return n
}

// tightElement returns an element whose block content
// is written without surrounding newlines.
func tightElement(name string, content []*Node) *Node {
	n := NewElement(name, nil)
	first := true
	for _, c := range content {
		if !isVisible(c) {
			continue
		}
		if !first {
			n.AppendChild(NewRawHTML("\n"))
		}
		first = false
		n.AppendChild(c)
	}
	return n
}
