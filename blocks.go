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
	"unicode"
)

// A Block is a parsed block-level construct.
// Blocks are created by [BlockType.Build]
// and rendered once the whole input has been read.
type Block interface {
	Render(st *State) *Node
}

// A ContinuableBlock may span several lines.
type ContinuableBlock interface {
	Block
	// Advance returns the block extended by ctx,
	// or nil if the block has ended.
	// A line rejected by Advance is offered to the block types as a new line.
	Advance(ctx Context, st *State) Block
}

// An AcquiringBlock is built on top of the block that preceded it.
// If AcquiredPrevious reports true, the previous block is consumed
// and does not appear in the output on its own.
type AcquiringBlock interface {
	Block
	AcquiredPrevious() bool
}

// mergingBlock is a block that can absorb an identical block
// appearing right after it.
type mergingBlock interface {
	Block
	merge(next Block) bool
}

// A DeclaringBlock records a definition in the document state
// once the block is complete.
// Build and Advance never touch the state themselves,
// so a block type can be tried speculatively.
type DeclaringBlock interface {
	Block
	Declare(st *State)
}

// parseBlocks runs the block engine over lines.
func (st *State) parseBlocks(lines []string) []Block {
	var (
		blocks  []Block
		current Block
		empty   []string
		offset  int
	)
	for _, raw := range lines {
		lineOffset := offset
		offset += len(raw) + 1
		if isBlank(raw) {
			empty = append(empty, raw)
			continue
		}
		ctx := Context{
			Line:                    NewLine(raw, lineOffset),
			PrecedingEmptyLines:     len(empty),
			PrecedingEmptyLinesText: strings.Join(empty, "\n"),
		}
		empty = empty[:0]

		if c, ok := current.(ContinuableBlock); ok {
			if next := c.Advance(ctx, st); next != nil {
				current = next
				continue
			}
		}
		if b := st.buildBlock(ctx, current); b != nil {
			if a, ok := b.(AcquiringBlock); !ok || !a.AcquiredPrevious() {
				blocks = st.closeBlock(blocks, current)
			}
			current = b
			continue
		}
		if p, ok := current.(*Paragraph); ok && ctx.PrecedingEmptyLines == 0 {
			current = p.extend(ctx.Line)
			continue
		}
		blocks = st.closeBlock(blocks, current)
		current = newParagraph(ctx.Line)
	}
	return st.closeBlock(blocks, current)
}

func (st *State) buildBlock(ctx Context, prev Block) Block {
	for _, list := range st.grammar().blockTypes(ctx.Line.Text[0]) {
		for _, t := range list {
			if b := t.Build(ctx, st, prev); b != nil {
				return b
			}
		}
	}
	return nil
}

// closeBlock appends a finished block to blocks.
func (st *State) closeBlock(blocks []Block, b Block) []Block {
	if b == nil {
		return blocks
	}
	if d, ok := b.(DeclaringBlock); ok {
		d.Declare(st)
	}
	if n := len(blocks); n > 0 {
		if m, ok := blocks[n-1].(mergingBlock); ok && m.merge(b) {
			return blocks
		}
	}
	return append(blocks, b)
}

// startsBlock reports whether a line would open a block other than a paragraph.
// Containers use it to decide whether a line continues them lazily.
func (st *State) startsBlock(line Line) bool {
	return line.Indent < 4 && st.buildBlock(Context{Line: line}, nil) != nil
}

// A Paragraph is a run of text lines not claimed by any other block type.
type Paragraph struct {
	text string
}

func newParagraph(line Line) *Paragraph {
	return &Paragraph{text: line.Text}
}

// Text returns the paragraph's lines joined by newlines,
// without leading indentation.
func (p *Paragraph) Text() string {
	return p.text
}

func (p *Paragraph) extend(line Line) *Paragraph {
	return &Paragraph{text: p.text + "\n" + line.Text}
}

// Render implements [Block].
func (p *Paragraph) Render(st *State) *Node {
	return NewElement("p", nil, st.Inline(strings.TrimSpace(p.text))...)
}

// A Header is an ATX (`# Title`) or setext (underlined) heading.
type Header struct {
	Level int
	Text  string
	// Attrs holds attributes given explicitly in the source.
	Attrs Attributes

	acquired bool
}

// AcquiredPrevious implements [AcquiringBlock].
// Setext headers consume the paragraph above them.
func (h *Header) AcquiredPrevious() bool {
	return h.acquired
}

// Render implements [Block].
func (h *Header) Render(st *State) *Node {
	content := st.Inline(h.Text)
	var attrs []Attribute
	if h.Attrs.ID == "" && !st.options().NoHeaderIDs {
		if slug := st.slug(st.plainInline(h.Text)); slug != "" {
			attrs = append(attrs, Attribute{Key: "id", Value: slug})
		}
	}
	n := NewElement("h"+strconv.Itoa(h.Level), attrs, content...)
	n.MergeAttributes(h.Attrs)
	return n
}

// slug derives a unique id from header text.
// Collisions get a numeric suffix.
func (st *State) slug(text string) string {
	var sb strings.Builder
	dash := false
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			dash = false
			sb.WriteRune(unicode.ToLower(r))
		default:
			dash = true
		}
	}
	base := sb.String()
	if base == "" {
		return ""
	}
	n := st.slugs[base]
	st.slugs[base] = n + 1
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

func buildATXHeader(ctx Context, st *State, prev Block) Block {
	line := ctx.Line
	if line.Indent >= 4 {
		return nil
	}
	level := 0
	for level < len(line.Text) && line.Text[level] == '#' {
		level++
	}
	if level > 6 {
		return nil
	}
	rest := line.Text[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return nil
	}
	return &Header{
		Level: level,
		Text:  trimClosingHashes(strings.TrimSpace(rest)),
	}
}

// trimClosingHashes removes an optional closing sequence of '#' characters,
// which must be preceded by a space.
func trimClosingHashes(s string) string {
	t := strings.TrimRight(s, "#")
	if t == "" {
		return ""
	}
	if len(t) == len(s) || (t[len(t)-1] != ' ' && t[len(t)-1] != '\t') {
		return s
	}
	return strings.TrimRight(t, " \t")
}

func buildSetextHeader(ctx Context, st *State, prev Block) Block {
	p, ok := prev.(*Paragraph)
	if !ok || ctx.PrecedingEmptyLines > 0 || ctx.Line.Indent >= 4 {
		return nil
	}
	text := strings.TrimRight(ctx.Line.Text, " \t")
	c := text[0]
	if strings.Trim(text, string(c)) != "" {
		return nil
	}
	level := 1
	if c == '-' {
		level = 2
	}
	return &Header{
		Level:    level,
		Text:     strings.TrimSpace(p.text),
		acquired: true,
	}
}

type rule struct{}

func buildRule(ctx Context, st *State, prev Block) Block {
	if ctx.Line.Indent >= 4 {
		return nil
	}
	c := ctx.Line.Text[0]
	n := strings.Count(ctx.Line.Text, string(c))
	if n < 3 || strings.Trim(ctx.Line.Text, string(c)+" \t") != "" {
		return nil
	}
	return rule{}
}

func (rule) Render(st *State) *Node {
	return NewElement("hr", nil)
}

// indentedCode is a code block made of lines indented four or more columns.
type indentedCode struct {
	lines []string
}

func buildIndentedCode(ctx Context, st *State, prev Block) Block {
	if ctx.Line.Indent < 4 {
		return nil
	}
	if _, ok := prev.(*Paragraph); ok && ctx.PrecedingEmptyLines == 0 {
		return nil
	}
	return &indentedCode{lines: []string{ctx.Line.TrimIndent(4)}}
}

func (c *indentedCode) Advance(ctx Context, st *State) Block {
	if ctx.Line.Indent < 4 {
		return nil
	}
	lines := append(c.lines[:len(c.lines):len(c.lines)], ctx.emptyLines(4)...)
	return &indentedCode{lines: append(lines, ctx.Line.TrimIndent(4))}
}

func (c *indentedCode) Render(st *State) *Node {
	return NewElement("pre", nil, NewElement("code", nil, NewText(strings.Join(c.lines, "\n")+"\n")))
}

// fencedCode is a code block delimited by ``` or ~~~ lines.
type fencedCode struct {
	marker byte
	width  int
	indent int
	info   string
	attrs  Attributes
	lines  []string
	closed bool
}

var (
	backtickFenceRE = regexp.MustCompile("^(`{3,})[ \t]*([^`]*?)[ \t]*$")
	tildeFenceRE    = regexp.MustCompile(`^(~{3,})[ \t]*(.*?)[ \t]*$`)
)

func buildFencedCode(ctx Context, st *State, prev Block) Block {
	if ctx.Line.Indent >= 4 {
		return nil
	}
	re := backtickFenceRE
	if ctx.Line.Text[0] == '~' {
		re = tildeFenceRE
	}
	m := re.FindStringSubmatch(ctx.Line.Text)
	if m == nil {
		return nil
	}
	return &fencedCode{
		marker: m[1][0],
		width:  len(m[1]),
		indent: ctx.Line.Indent,
		info:   m[2],
	}
}

func (c *fencedCode) Advance(ctx Context, st *State) Block {
	if c.closed {
		return nil
	}
	next := *c
	next.lines = append(c.lines[:len(c.lines):len(c.lines)], ctx.emptyLines(c.indent)...)
	text := strings.TrimRight(ctx.Line.Text, " \t")
	if ctx.Line.Indent < 4 && len(text) >= c.width && strings.Trim(text, string(c.marker)) == "" {
		next.closed = true
		return &next
	}
	next.lines = append(next.lines, ctx.Line.TrimIndent(c.indent))
	return &next
}

func (c *fencedCode) Render(st *State) *Node {
	code := NewElement("code", nil)
	if lang, _, _ := strings.Cut(c.info, " "); lang != "" {
		code.SetAttr("class", "language-"+lang)
	}
	code.MergeAttributes(c.attrs)
	text := strings.Join(c.lines, "\n")
	if len(c.lines) > 0 {
		text += "\n"
	}
	code.AppendChild(NewText(text))
	return NewElement("pre", nil, code)
}

// quote is a block quote: lines starting with '>'
// plus lazy continuation lines.
type quote struct {
	lines []string
}

func stripQuoteMarker(text string) (string, bool) {
	if text == "" || text[0] != '>' {
		return "", false
	}
	text = text[1:]
	if text != "" && (text[0] == ' ' || text[0] == '\t') {
		text = text[1:]
	}
	return text, true
}

func buildQuote(ctx Context, st *State, prev Block) Block {
	if ctx.Line.Indent >= 4 {
		return nil
	}
	text, ok := stripQuoteMarker(ctx.Line.Text)
	if !ok {
		return nil
	}
	return &quote{lines: []string{text}}
}

func (q *quote) Advance(ctx Context, st *State) Block {
	if ctx.PrecedingEmptyLines > 0 {
		return nil
	}
	if text, ok := stripQuoteMarker(ctx.Line.Text); ok && ctx.Line.Indent < 4 {
		return &quote{lines: append(q.lines[:len(q.lines):len(q.lines)], text)}
	}
	if st.startsBlock(ctx.Line) || isBlank(q.lines[len(q.lines)-1]) {
		return nil
	}
	return &quote{lines: append(q.lines[:len(q.lines):len(q.lines)], ctx.Line.Text)}
}

func (q *quote) Render(st *State) *Node {
	return NewBlockElement("blockquote", nil, st.renderNested(q.lines)...)
}

// baseGrammar registers the core Markdown block and inline types.
func baseGrammar(g *Grammar) error {
	type reg struct {
		triggers string
		t        BlockType
	}
	header := BlockType{Name: "header", Build: buildATXHeader}
	setext := BlockType{Name: "setext-header", Build: buildSetextHeader}
	ruleType := BlockType{Name: "rule", Build: buildRule}
	list := BlockType{Name: "list", Build: buildList}
	fenced := BlockType{Name: "fenced-code", Build: buildFencedCode}
	table := BlockType{Name: "table", Build: buildTable}
	regs := []reg{
		{"#", header},
		{"-", setext},
		{"=", setext},
		{"|:-", table},
		{"*-_", ruleType},
		{"*+-0123456789", list},
		{"`~", fenced},
		{">", BlockType{Name: "quote", Build: buildQuote}},
		{"<", BlockType{Name: "markup", Build: buildMarkup}},
		{"[", BlockType{Name: "reference", Build: buildReference}},
	}
	for _, r := range regs {
		for i := 0; i < len(r.triggers); i++ {
			if err := g.AddBlock(r.triggers[i], Low, r.t); err != nil {
				return err
			}
		}
	}
	if err := g.AddUnmarkedBlock(Low, BlockType{Name: "indented-code", Build: buildIndentedCode}); err != nil {
		return err
	}
	return registerBaseInlines(g)
}
