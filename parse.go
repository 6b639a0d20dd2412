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

// Package mdextra converts Markdown Extra documents to HTML.
//
// Besides the base Markdown syntax, the default grammar understands
// definition lists, footnotes, abbreviations, tables,
// attribute blocks such as `{#id .class}` on headers, links and images,
// and Markdown inside HTML blocks marked with `markdown="1"`.
// An optional extended grammar adds `${name}` variables,
// `:::` sections and `!!!` figures.
//
// The grammar is a registry of block and inline types keyed by trigger character.
// Each Extra feature is an [Extension] that adds to or wraps the base types,
// and callers may supply their own extensions through [Options].
package mdextra

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultMaxNesting is the nesting depth used when [Options.MaxNesting] is zero.
const DefaultMaxNesting = 32

// An Extension modifies a grammar.
// Extensions run in order while a [Renderer] is constructed;
// the first error aborts construction.
type Extension func(g *Grammar) error

// Options is the set of parameters to [New].
// The zero value renders Markdown Extra with default settings.
type Options struct {
	// FootnotePrefix is prepended to the fn: and fnref ids
	// so that several documents can share one HTML page.
	FootnotePrefix string
	// Extended enables variables, sections and figures.
	Extended bool
	// Variables seeds the values substituted for ${name} references
	// when Extended is set.
	Variables map[string]string
	// If NoHeaderIDs is true, headers without an explicit id get none.
	NoHeaderIDs bool
	// If NoMarkdownInHTML is true, markdown="1" is left alone in HTML blocks.
	NoMarkdownInHTML bool
	// MaxNesting bounds the depth of nested block parsing
	// and of HTML fragment reprocessing.
	// Zero means DefaultMaxNesting.
	MaxNesting int

	// If IgnoreRaw is true, raw HTML is dropped from the output.
	IgnoreRaw bool
	// FilterTag is a predicate function
	// that reports whether an element with the given lowercased tag name
	// should have its leading angle bracket escaped.
	// If FilterTag is nil, then no filtering will occur.
	//
	// FilterTag functions must not modify the byte slice
	// nor retain the slice after the function returns.
	FilterTag func(tag []byte) bool

	// Logger receives debug events. Nil disables logging.
	Logger *log.Logger
	// Extensions are applied after the built-in features.
	Extensions []Extension
}

// A Renderer converts Markdown Extra to HTML.
// A Renderer is safe to use from multiple goroutines;
// each call works on its own [State].
type Renderer struct {
	grammar *Grammar
	opts    Options
}

// New builds a renderer with the Extra grammar and any extensions in opts.
// It fails only when an extension cannot be applied to the grammar,
// for example because a type it decorates is missing.
func New(opts *Options) (*Renderer, error) {
	r := new(Renderer)
	if opts != nil {
		r.opts = *opts
	}
	if r.opts.MaxNesting <= 0 {
		r.opts.MaxNesting = DefaultMaxNesting
	}
	r.grammar = newGrammar()
	exts := []Extension{baseGrammar, Abbreviations, Definitions, CustomAttributes, Footnotes}
	if !r.opts.NoMarkdownInHTML {
		exts = append(exts, MarkdownInHTML)
	}
	if r.opts.Extended {
		exts = append(exts, ExtendedGrammar)
	}
	exts = append(exts, r.opts.Extensions...)
	for _, ext := range exts {
		if err := ext(r.grammar); err != nil {
			return nil, fmt.Errorf("mdextra: build grammar: %w", err)
		}
	}
	return r, nil
}

var defaultRenderer = func() *Renderer {
	r, err := New(nil)
	if err != nil {
		panic(err)
	}
	return r
}()

// Render converts markdown to HTML using the default options.
func Render(markdown string) string {
	return defaultRenderer.Render(markdown)
}

// Render converts markdown to HTML with a fresh [State].
func (r *Renderer) Render(markdown string) string {
	return r.RenderState(markdown, r.NewState())
}

// RenderState converts markdown to HTML using the given state.
// The state's books are filled in as a side effect.
func (r *Renderer) RenderState(markdown string, st *State) string {
	return string(r.opts.appendHTML(nil, r.Parse(markdown, st)))
}

// WriteHTML renders markdown with a fresh state and writes the result to w.
func (r *Renderer) WriteHTML(w io.Writer, markdown string) error {
	buf := r.opts.appendHTML(nil, r.Parse(markdown, r.NewState()))
	if len(buf) > 0 {
		buf = append(buf, '\n')
	}
	if _, err := io.Copy(w, bytes.NewReader(buf)); err != nil {
		return fmt.Errorf("render markdown to html: %w", err)
	}
	return nil
}

// Parse converts markdown to a render tree using the given state.
// If st is nil, a fresh state is used.
func (r *Renderer) Parse(markdown string, st *State) *Node {
	if st == nil {
		st = r.NewState()
	}
	st.r = r
	return st.renderDocument(splitLines(markdown))
}

// State is the per-document ledger threaded through parsing:
// footnotes, abbreviations, link references, variables and header slugs.
// A State must not be shared by concurrent renders.
type State struct {
	Footnotes     *FootnoteBook
	Abbreviations *AbbreviationBook
	References    ReferenceMap
	// Variables holds ${name} values for the extended grammar.
	Variables map[string]string

	r      *Renderer
	slugs  map[string]int
	depth  int
	inline int
	inLink bool
	// plain is set while inline content is flattened to text.
	// Markers with side effects match but render nothing.
	plain bool
}

// NewState returns an empty state seeded with the renderer's variables.
func (r *Renderer) NewState() *State {
	st := &State{
		Footnotes:     NewFootnoteBook(),
		Abbreviations: NewAbbreviationBook(),
		References:    make(ReferenceMap),
		Variables:     make(map[string]string, len(r.opts.Variables)),
		r:             r,
		slugs:         make(map[string]int),
	}
	for k, v := range r.opts.Variables {
		st.Variables[k] = v
	}
	return st
}

// plainInline renders text as inline content and returns its text,
// without numbering footnotes.
func (st *State) plainInline(text string) string {
	plain := st.plain
	st.plain = true
	s := PlainText(NewContainer(st.Inline(text)...))
	st.plain = plain
	return s
}

func (st *State) grammar() *Grammar {
	return st.r.grammar
}

func (st *State) options() *Options {
	return &st.r.opts
}

func (st *State) debug(msg string, keyvals ...any) {
	if l := st.r.opts.Logger; l != nil {
		l.Debug(msg, keyvals...)
	}
}

// renderDocument parses and renders a top-level document.
func (st *State) renderDocument(lines []string) *Node {
	body := st.renderBlocks(st.parseBlocks(lines))
	if fn := st.renderFootnotes(); fn != nil {
		body = append(body, fn)
	}
	root := NewBlockContainer(body...)
	st.expandAbbreviations(root)
	return root
}

// renderNested parses and renders block content found inside another construct,
// such as a list item or an element marked markdown="1".
func (st *State) renderNested(lines []string) []*Node {
	if st.depth >= st.options().MaxNesting {
		st.debug("nesting limit reached", "depth", st.depth)
		return []*Node{NewElement("p", nil, NewText(strings.Join(lines, "\n")))}
	}
	st.depth++
	defer func() { st.depth-- }()
	return st.renderBlocks(st.parseBlocks(lines))
}

func (st *State) renderBlocks(blocks []Block) []*Node {
	nodes := make([]*Node, 0, len(blocks))
	for _, b := range blocks {
		nodes = append(nodes, b.Render(st))
	}
	return nodes
}
