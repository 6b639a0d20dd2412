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
	"strconv"
	"strings"
)

// Alignment is the horizontal alignment of a table column.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignRight
	AlignCenter
)

func (a Alignment) style() string {
	switch a {
	case AlignLeft:
		return "text-align: left;"
	case AlignRight:
		return "text-align: right;"
	case AlignCenter:
		return "text-align: center;"
	default:
		return ""
	}
}

type tableCell struct {
	text string
	span int
}

// table is a pipe table. It upgrades the one-line paragraph above its divider row.
type table struct {
	alignments []Alignment
	header     []tableCell
	rows       [][]tableCell
	caption    string
	hasCaption bool
}

// tableCaption returns the text of a `[Caption]` line.
// The caption may itself contain brackets, such as links or footnote markers.
func tableCaption(text string) (string, bool) {
	text = strings.TrimRight(text, " \t")
	if !strings.HasPrefix(text, "[") {
		return "", false
	}
	end := matchBracket(text)
	if end != len(text)-1 {
		return "", false
	}
	caption := strings.TrimSpace(text[1:end])
	return caption, caption != ""
}

// AcquiredPrevious implements [AcquiringBlock].
func (t *table) AcquiredPrevious() bool {
	return true
}

func buildTable(ctx Context, st *State, prev Block) Block {
	p, ok := prev.(*Paragraph)
	if !ok || ctx.PrecedingEmptyLines > 0 || ctx.Line.Indent >= 4 {
		return nil
	}
	if strings.Contains(p.text, "\n") || !strings.Contains(p.text, "|") {
		return nil
	}
	alignments, ok := parseDivider(ctx.Line.Text)
	if !ok {
		return nil
	}
	return &table{
		alignments: alignments,
		header:     splitRow(p.text, len(alignments)),
	}
}

// parseDivider parses a row such as `|:--|--:|:-:|`.
func parseDivider(text string) ([]Alignment, bool) {
	text = strings.TrimSpace(text)
	if strings.Trim(text, " \t|:-") != "" || !strings.Contains(text, "-") {
		return nil, false
	}
	var alignments []Alignment
	for _, cell := range splitCells(text) {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if strings.Trim(cell, ":") == "" {
			return nil, false
		}
		left := cell[0] == ':'
		right := cell[len(cell)-1] == ':'
		switch {
		case left && right:
			alignments = append(alignments, AlignCenter)
		case left:
			alignments = append(alignments, AlignLeft)
		case right:
			alignments = append(alignments, AlignRight)
		default:
			alignments = append(alignments, AlignNone)
		}
	}
	return alignments, len(alignments) > 0
}

// splitCells splits a row on unescaped pipes,
// dropping a leading and trailing pipe.
// Pipes inside code spans do not split.
func splitCells(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")
	if strings.HasSuffix(row, "|") && !strings.HasSuffix(row, `\|`) {
		row = row[:len(row)-1]
	}
	var cells []string
	start := 0
	for i := 0; i < len(row); i++ {
		switch row[i] {
		case '\\':
			i++
		case '`':
			i += skipCodeSpan(row[i:]) - 1
		case '|':
			cells = append(cells, row[start:i])
			start = i + 1
		}
	}
	return append(cells, row[start:])
}

// splitRow splits a row into at most columns cells.
// An empty cell with nothing between its pipes widens the cell before it.
func splitRow(row string, columns int) []tableCell {
	var cells []tableCell
	used := 0
	for i, raw := range splitCells(row) {
		if raw == "" && i > 0 && len(cells) > 0 {
			if used < columns {
				cells[len(cells)-1].span++
				used++
			}
			continue
		}
		if used >= columns {
			break
		}
		cells = append(cells, tableCell{text: strings.TrimSpace(raw), span: 1})
		used++
	}
	return cells
}

func (t *table) Advance(ctx Context, st *State) Block {
	if ctx.PrecedingEmptyLines > 0 || t.hasCaption {
		return nil
	}
	next := *t
	if caption, ok := tableCaption(ctx.Line.Text); ok {
		next.caption = caption
		next.hasCaption = true
		return &next
	}
	if !strings.Contains(ctx.Line.Text, "|") {
		return nil
	}
	next.rows = append(t.rows[:len(t.rows):len(t.rows)], splitRow(ctx.Line.Text, len(t.alignments)))
	return &next
}

func (t *table) Render(st *State) *Node {
	n := NewBlockElement("table", nil)
	if t.hasCaption {
		n.AppendChild(NewElement("caption", nil, st.Inline(t.caption)...))
	}
	n.AppendChild(NewBlockElement("thead", nil, t.renderRow(st, "th", t.header)))
	if len(t.rows) > 0 {
		body := NewBlockElement("tbody", nil)
		for _, row := range t.rows {
			body.AppendChild(t.renderRow(st, "td", row))
		}
		n.AppendChild(body)
	}
	return n
}

func (t *table) renderRow(st *State, cellName string, cells []tableCell) *Node {
	tr := NewBlockElement("tr", nil)
	col := 0
	for _, c := range cells {
		var attrs []Attribute
		if c.span > 1 {
			attrs = append(attrs, Attribute{Key: "colspan", Value: strconv.Itoa(c.span)})
		}
		if col < len(t.alignments) {
			if style := t.alignments[col].style(); style != "" {
				attrs = append(attrs, Attribute{Key: "style", Value: style})
			}
		}
		tr.AppendChild(NewElement(cellName, attrs, st.Inline(c.text)...))
		col += c.span
	}
	return tr
}
