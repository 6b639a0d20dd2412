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

// fenceArgument splits a fence line such as `::: warning {#w}`
// into its marker run and the text after it.
func fenceArgument(text string, c byte) (run int, arg string) {
	run = countRun(text, c)
	return run, strings.TrimSpace(text[run:])
}

// fenceAttributes interprets the text after a section or figure fence.
// A leading word becomes a class; a `{...}` block supplies further attributes.
func fenceAttributes(arg string) (Attributes, bool) {
	rest, attrs, _ := cutTrailingAttributes(arg)
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return attrs, true
	}
	if strings.ContainsAny(rest, " \t{}") {
		return Attributes{}, false
	}
	attrs.Classes = append([]string{rest}, attrs.Classes...)
	return attrs, true
}

// section is a `:::` fenced <div>.
// Sections nest: an inner opener must be matched by its own bare `:::` line.
type section struct {
	attrs  Attributes
	lines  []string
	depth  int
	closed bool
}

func buildSection(ctx Context, st *State, prev Block) Block {
	if ctx.Line.Indent >= 4 {
		return nil
	}
	run, arg := fenceArgument(ctx.Line.Text, ':')
	if run < 3 || arg == "" {
		return nil
	}
	attrs, ok := fenceAttributes(arg)
	if !ok {
		return nil
	}
	return &section{attrs: attrs}
}

func (s *section) Advance(ctx Context, st *State) Block {
	if s.closed {
		return nil
	}
	next := *s
	next.lines = append(s.lines[:len(s.lines):len(s.lines)], ctx.emptyLines(0)...)
	if run, arg := fenceArgument(ctx.Line.Text, ':'); run >= 3 && ctx.Line.Indent < 4 {
		switch {
		case arg == "" && s.depth == 0:
			next.closed = true
			return &next
		case arg == "":
			next.depth--
		default:
			next.depth++
		}
	}
	next.lines = append(next.lines, ctx.Line.Raw)
	return &next
}

func (s *section) Render(st *State) *Node {
	n := NewBlockElement("div", nil, st.renderNested(s.lines)...)
	n.MergeAttributes(s.attrs)
	return n
}

// figure is a `!!!` fenced <figure>.
// Text after the closing fence becomes the caption.
type figure struct {
	attrs      Attributes
	lines      []string
	caption    string
	closed     bool
	hasCaption bool
}

func buildFigure(ctx Context, st *State, prev Block) Block {
	if ctx.Line.Indent >= 4 {
		return nil
	}
	run, arg := fenceArgument(ctx.Line.Text, '!')
	if run < 3 {
		return nil
	}
	var attrs Attributes
	if arg != "" {
		w, a, ok := leadingAttributes(arg)
		if !ok || w != len(arg) {
			return nil
		}
		attrs = a
	}
	return &figure{attrs: attrs}
}

func (f *figure) Advance(ctx Context, st *State) Block {
	if f.closed {
		return nil
	}
	next := *f
	next.lines = append(f.lines[:len(f.lines):len(f.lines)], ctx.emptyLines(0)...)
	if run, arg := fenceArgument(ctx.Line.Text, '!'); run >= 3 && ctx.Line.Indent < 4 {
		next.closed = true
		next.caption = arg
		next.hasCaption = arg != ""
		return &next
	}
	next.lines = append(next.lines, ctx.Line.Raw)
	return &next
}

func (f *figure) Render(st *State) *Node {
	n := NewBlockElement("figure", nil, st.renderNested(f.lines)...)
	if f.hasCaption {
		n.AppendChild(NewElement("figcaption", nil, st.Inline(f.caption)...))
	}
	n.MergeAttributes(f.attrs)
	return n
}

var (
	variableDefinitionRE = regexp.MustCompile(`^\$\{([A-Za-z_][\w.-]*)\}:[ \t]*(.*?)[ \t]*$`)
	variableReferenceRE  = regexp.MustCompile(`^\$\{([A-Za-z_][\w.-]*)\}`)
)

// variable is a hidden `${name}: value` definition.
type variable struct {
	name, value string
}

func buildVariable(ctx Context, st *State, prev Block) Block {
	if ctx.Line.Indent >= 4 {
		return nil
	}
	m := variableDefinitionRE.FindStringSubmatch(ctx.Line.Text)
	if m == nil {
		return nil
	}
	return &variable{name: m[1], value: m[2]}
}

func (v *variable) Declare(st *State) {
	st.Variables[v.name] = v.value
}

func (v *variable) Render(st *State) *Node {
	return NewInvisible()
}

// variableInline substitutes `${name}`.
// Unknown names are left as written.
func variableInline(ex Excerpt, st *State) (int, *Node) {
	m := variableReferenceRE.FindStringSubmatch(ex.Text)
	if m == nil {
		return 0, nil
	}
	value, ok := st.Variables[m[1]]
	if !ok {
		st.debug("undefined variable", "name", m[1])
		return 0, nil
	}
	return len(m[0]), NewText(value)
}
