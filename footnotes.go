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
	"sort"
	"strconv"
)

// A Footnote is a declared footnote body and its reference record.
type Footnote struct {
	Label string
	// Lines is the body of the footnote with its indentation removed.
	Lines []string
	// Number is assigned on the first reference. Zero means unreferenced.
	Number int
	// Count is the number of references rendered so far.
	Count int
}

// A FootnoteBook holds the footnotes of one document.
type FootnoteBook struct {
	notes map[string]*Footnote
	next  int
}

// NewFootnoteBook returns an empty footnote book.
func NewFootnoteBook() *FootnoteBook {
	return &FootnoteBook{notes: make(map[string]*Footnote)}
}

// Declare sets the body of the footnote with the given label.
// A later declaration replaces the body of an earlier one
// but keeps its number and reference count.
func (b *FootnoteBook) Declare(label string, lines []string) {
	if f, ok := b.notes[label]; ok {
		f.Lines = lines
		return
	}
	b.notes[label] = &Footnote{Label: label, Lines: lines}
}

// Lookup returns the footnote with the given label.
func (b *FootnoteBook) Lookup(label string) (*Footnote, bool) {
	f, ok := b.notes[label]
	return f, ok
}

// Reference records a reference to the footnote with the given label.
// The first reference assigns the next number.
// It reports false if no such footnote has been declared.
func (b *FootnoteBook) Reference(label string) (number, count int, ok bool) {
	f, ok := b.notes[label]
	if !ok {
		return 0, 0, false
	}
	if f.Number == 0 {
		b.next++
		f.Number = b.next
	}
	f.Count++
	return f.Number, f.Count, true
}

// Numbered returns the referenced footnotes in number order.
func (b *FootnoteBook) Numbered() []*Footnote {
	var list []*Footnote
	for _, f := range b.notes {
		if f.Number > 0 {
			list = append(list, f)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Number < list[j].Number
	})
	return list
}

var (
	footnoteDefinitionRE = regexp.MustCompile(`^\[\^(.+?)\]:(.*)$`)
	footnoteMarkerRE     = regexp.MustCompile(`^\[\^(.+?)\]`)
)

// footnoteDefinition is a hidden block declaring a footnote body.
// Continuation lines must be indented four columns.
type footnoteDefinition struct {
	label string
	lines []string
}

func buildFootnoteDefinition(ctx Context, st *State, prev Block) Block {
	if ctx.Line.Indent >= 4 {
		return nil
	}
	m := footnoteDefinitionRE.FindStringSubmatch(ctx.Line.Text)
	if m == nil {
		return nil
	}
	f := &footnoteDefinition{label: m[1]}
	if first := NewLine(m[2], 0); first.Text != "" {
		f.lines = []string{first.Text}
	}
	return f
}

func (f *footnoteDefinition) Advance(ctx Context, st *State) Block {
	if ctx.Line.Indent < 4 {
		return nil
	}
	lines := append(f.lines[:len(f.lines):len(f.lines)], ctx.emptyLines(4)...)
	return &footnoteDefinition{
		label: f.label,
		lines: append(lines, ctx.Line.TrimIndent(4)),
	}
}

func (f *footnoteDefinition) Declare(st *State) {
	st.Footnotes.Declare(f.label, f.lines)
}

func (f *footnoteDefinition) Render(st *State) *Node {
	return NewInvisible()
}

// footnoteMarker matches `[^label]` for a declared label.
// Markers for unknown labels are left to the other '[' types.
func footnoteMarker(ex Excerpt, st *State) (int, *Node) {
	m := footnoteMarkerRE.FindStringSubmatch(ex.Text)
	if m == nil {
		return 0, nil
	}
	label := m[1]
	if st.plain {
		if _, ok := st.Footnotes.Lookup(label); !ok {
			return 0, nil
		}
		return len(m[0]), NewText("")
	}
	number, count, ok := st.Footnotes.Reference(label)
	if !ok {
		st.debug("footnote marker without definition", "label", label)
		return 0, nil
	}
	prefix := st.options().FootnotePrefix
	a := NewElement("a", []Attribute{
		{Key: "href", Value: "#" + prefix + "fn:" + label},
		{Key: "class", Value: "footnote-ref"},
	}, NewText(strconv.Itoa(number)))
	sup := NewElement("sup", []Attribute{
		{Key: "id", Value: prefix + "fnref" + strconv.Itoa(count) + ":" + label},
	}, a)
	return len(m[0]), sup
}

// renderFootnotes renders the footnote section,
// or returns nil if no footnote was referenced.
// Footnote bodies may reference other footnotes,
// so bodies are rendered until the list stops growing
// and back-links are added once every reference is counted.
func (st *State) renderFootnotes() *Node {
	if len(st.Footnotes.Numbered()) == 0 {
		return nil
	}
	var bodies [][]*Node
	for {
		numbered := st.Footnotes.Numbered()
		if len(bodies) >= len(numbered) {
			break
		}
		bodies = append(bodies, st.renderNested(numbered[len(bodies)].Lines))
	}
	prefix := st.options().FootnotePrefix
	ol := NewBlockElement("ol", nil)
	for i, f := range st.Footnotes.Numbered() {
		body := bodies[i]
		backlinks := []*Node{NewRawHTML("&#160;")}
		for n := 1; n <= max(f.Count, 1); n++ {
			if n > 1 {
				backlinks = append(backlinks, NewText(" "))
			}
			backlinks = append(backlinks, NewElement("a", []Attribute{
				{Key: "href", Value: "#" + prefix + "fnref" + strconv.Itoa(n) + ":" + f.Label},
				{Key: "rev", Value: "footnote"},
				{Key: "class", Value: "footnote-backref"},
			}, NewRawHTML("&#8617;")))
		}
		if last := lastVisible(body); last != nil && last.Name() == "p" && last.ChildCount() > 0 {
			for _, b := range backlinks {
				last.AppendChild(b)
			}
		} else {
			body = append(body, NewElement("p", nil, backlinks...))
		}
		st.debug("rendered footnote", "label", f.Label, "number", f.Number, "refs", f.Count)
		ol.AppendChild(NewBlockElement("li", []Attribute{{Key: "id", Value: prefix + "fn:" + f.Label}}, body...))
	}
	return NewBlockElement("div", []Attribute{{Key: "class", Value: "footnotes"}},
		NewElement("hr", nil),
		ol,
	)
}

func lastVisible(nodes []*Node) *Node {
	for i := len(nodes) - 1; i >= 0; i-- {
		if isVisible(nodes[i]) {
			return nodes[i]
		}
	}
	return nil
}
