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

// Abbreviations adds `*[ABBR]: meaning` definitions.
// Defined abbreviations are wrapped in <abbr> elements wherever they appear
// as whole words in the rendered text.
func Abbreviations(g *Grammar) error {
	return g.AddBlock('*', Low, BlockType{Name: "abbreviation", Build: buildAbbreviation})
}

// Definitions adds definition lists:
//
//	Term
//	: Definition
func Definitions(g *Grammar) error {
	return g.AddBlock(':', Low, BlockType{Name: "definition-list", Build: buildDefinitionList})
}

// Footnotes adds `[^label]: body` definitions and `[^label]` markers.
// Referenced footnotes are listed at the end of the document.
func Footnotes(g *Grammar) error {
	if err := g.AddBlock('[', High, BlockType{Name: "footnote", Build: buildFootnoteDefinition}); err != nil {
		return err
	}
	return g.AddInline('[', High, InlineType{Name: "footnote-marker", Match: footnoteMarker})
}

// CustomAttributes allows a trailing `{#id .class key=val}` block
// on headers and fenced code info strings,
// and a `{...}` block directly after links and images.
// It fails with [ErrMissingHook] if the grammar lacks any of those types.
func CustomAttributes(g *Grammar) error {
	for _, name := range []string{"header", "setext-header"} {
		err := g.WrapBlock(name, func(base BlockType) BlockType {
			base.Build = headerAttributes(base.Build)
			return base
		})
		if err != nil {
			return err
		}
	}
	err := g.WrapBlock("fenced-code", func(base BlockType) BlockType {
		build := base.Build
		base.Build = func(ctx Context, st *State, prev Block) Block {
			b := build(ctx, st, prev)
			if c, ok := b.(*fencedCode); ok {
				if rest, attrs, ok := cutTrailingAttributes(c.info); ok {
					c.info = strings.TrimSpace(rest)
					c.attrs = attrs
				}
			}
			return b
		}
		return base
	})
	if err != nil {
		return err
	}
	for _, name := range []string{"link", "image"} {
		err := g.WrapInline(name, func(base InlineType) InlineType {
			base.Match = spanAttributes(base.Match)
			return base
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func headerAttributes(build BlockTypeFunc) BlockTypeFunc {
	return func(ctx Context, st *State, prev Block) Block {
		b := build(ctx, st, prev)
		h, ok := b.(*Header)
		if !ok {
			return b
		}
		if rest, attrs, ok := cutTrailingAttributes(h.Text); ok {
			h.Text = trimClosingHashes(strings.TrimSpace(rest))
			h.Attrs = attrs
		}
		return h
	}
}

func spanAttributes(match InlineFunc) InlineFunc {
	return func(ex Excerpt, st *State) (int, *Node) {
		w, n := match(ex, st)
		if n == nil || n.Kind() != ElementKind {
			return w, n
		}
		if aw, attrs, ok := leadingAttributes(ex.Text[w:]); ok {
			n.MergeAttributes(attrs)
			w += aw
		}
		return w, n
	}
}

// MarkdownInHTML renders the content of HTML block elements
// marked with markdown="1" as Markdown.
func MarkdownInHTML(g *Grammar) error {
	return g.WrapBlock("markup", func(base BlockType) BlockType {
		build := base.Build
		base.Build = func(ctx Context, st *State, prev Block) Block {
			b := build(ctx, st, prev)
			if m, ok := b.(*markup); ok {
				m.markdown = true
			}
			return b
		}
		return base
	})
}

// ExtendedGrammar adds `${name}` variables, `:::` sections and `!!!` figures.
func ExtendedGrammar(g *Grammar) error {
	if err := g.AddBlock(':', High, BlockType{Name: "section", Build: buildSection}); err != nil {
		return err
	}
	if err := g.AddBlock('!', Low, BlockType{Name: "figure", Build: buildFigure}); err != nil {
		return err
	}
	if err := g.AddBlock('$', Low, BlockType{Name: "variable", Build: buildVariable}); err != nil {
		return err
	}
	return g.AddInline('$', Low, InlineType{Name: "variable", Match: variableInline})
}
