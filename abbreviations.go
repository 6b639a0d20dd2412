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
	"strings"
	"unicode/utf8"
)

// An AbbreviationBook maps abbreviations to their expansions.
type AbbreviationBook struct {
	book map[string]string
}

// NewAbbreviationBook returns an empty abbreviation book.
func NewAbbreviationBook() *AbbreviationBook {
	return &AbbreviationBook{book: make(map[string]string)}
}

// Set defines an abbreviation, replacing any earlier definition.
func (b *AbbreviationBook) Set(abbr, title string) {
	b.book[abbr] = title
}

// Lookup returns the expansion of abbr.
func (b *AbbreviationBook) Lookup(abbr string) (string, bool) {
	title, ok := b.book[abbr]
	return title, ok
}

// All returns a copy of the book's definitions.
func (b *AbbreviationBook) All() map[string]string {
	m := make(map[string]string, len(b.book))
	for k, v := range b.book {
		m[k] = v
	}
	return m
}

// pattern returns a regular expression matching any abbreviation,
// preferring longer ones, or nil if the book is empty.
func (b *AbbreviationBook) pattern() *regexp.Regexp {
	if len(b.book) == 0 {
		return nil
	}
	keys := make([]string, 0, len(b.book))
	for k := range b.book {
		keys = append(keys, regexp.QuoteMeta(k))
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return regexp.MustCompile(strings.Join(keys, "|"))
}

var abbreviationRE = regexp.MustCompile(`^\*\[(.+?)\]:[ ]*(.+?)[ ]*$`)

// abbreviation is a hidden `*[HTML]: Hyper Text Markup Language` block.
type abbreviation struct {
	abbr, title string
}

func buildAbbreviation(ctx Context, st *State, prev Block) Block {
	if ctx.Line.Indent >= 4 {
		return nil
	}
	m := abbreviationRE.FindStringSubmatch(ctx.Line.Text)
	if m == nil {
		return nil
	}
	return &abbreviation{abbr: m[1], title: m[2]}
}

func (a *abbreviation) Declare(st *State) {
	st.Abbreviations.Set(a.abbr, a.title)
}

func (a *abbreviation) Render(st *State) *Node {
	return NewInvisible()
}

// abbrSkipElements are elements whose text is never expanded.
var abbrSkipElements = stringSet("code", "pre", "abbr", "script", "style")

// expandAbbreviations wraps whole-word occurrences of defined abbreviations
// in text nodes under root with <abbr> elements.
func (st *State) expandAbbreviations(root *Node) {
	re := st.Abbreviations.pattern()
	if re == nil {
		return
	}
	st.debug("expanding abbreviations", "count", len(st.Abbreviations.book))
	st.expandAbbreviationsIn(root, re)
}

func (st *State) expandAbbreviationsIn(n *Node, re *regexp.Regexp) {
	if n.Kind() == ElementKind && inSet(abbrSkipElements, n.name) {
		return
	}
	for i, c := range n.children {
		switch c.Kind() {
		case TextKind:
			if parts := st.splitAbbreviations(c.text, re); parts != nil {
				n.children[i] = NewContainer(parts...)
			}
		case ElementKind, ContainerKind:
			st.expandAbbreviationsIn(c, re)
		}
	}
}

// splitAbbreviations returns text split into text and <abbr> nodes,
// or nil if text contains no abbreviation.
func (st *State) splitAbbreviations(text string, re *regexp.Regexp) []*Node {
	var nodes []*Node
	start := 0
	for i := 0; i < len(text); {
		loc := re.FindStringIndex(text[i:])
		if loc == nil {
			break
		}
		begin, end := i+loc[0], i+loc[1]
		if !isWordBoundary(text, begin, end) {
			_, size := utf8.DecodeRuneInString(text[begin:])
			i = begin + size
			continue
		}
		abbr := text[begin:end]
		title, _ := st.Abbreviations.Lookup(abbr)
		if begin > start {
			nodes = append(nodes, NewText(text[start:begin]))
		}
		nodes = append(nodes, NewElement("abbr", []Attribute{{Key: "title", Value: title}}, NewText(abbr)))
		start, i = end, end
	}
	if nodes == nil {
		return nil
	}
	if start < len(text) {
		nodes = append(nodes, NewText(text[start:]))
	}
	return nodes
}

// isWordBoundary reports whether text[begin:end] is not part of a longer word.
func isWordBoundary(text string, begin, end int) bool {
	if begin > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:begin]); isWordRune(r) || r == '_' {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) || r == '_' {
			return false
		}
	}
	return true
}
