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
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// FragmentKind classifies a chunk of raw markup.
type FragmentKind int

const (
	// FragmentText contains no tags.
	FragmentText FragmentKind = iota
	// FragmentHTML is a single complete element.
	FragmentHTML
	// FragmentHTMLSub is a sequence of complete nodes.
	FragmentHTMLSub
	// FragmentOpening has at least one element that is never closed,
	// as when an HTML block starts with `<div>` and the input ends.
	FragmentOpening
	// FragmentOpeningEmpty is a lone void element such as `<hr>`.
	FragmentOpeningEmpty
	// FragmentClosing has end tags without matching start tags.
	FragmentClosing
	// FragmentXMLEmpty is a lone self-closing tag such as `<iframe/>`.
	FragmentXMLEmpty
)

var fragmentKindNames = [...]string{
	FragmentText:         "text",
	FragmentHTML:         "html",
	FragmentHTMLSub:      "html-sub",
	FragmentOpening:      "html-opening",
	FragmentOpeningEmpty: "html-opening-empty",
	FragmentClosing:      "html-closing",
	FragmentXMLEmpty:     "xml-empty",
}

func (k FragmentKind) String() string {
	if k < 0 || int(k) >= len(fragmentKindNames) {
		return "FragmentKind(?)"
	}
	return fragmentKindNames[k]
}

// A Fragment is a classified chunk of raw markup.
type Fragment struct {
	Kind FragmentKind
	// Before is the text preceding the first tag of an opening fragment.
	Before string
	// After is the text following the last tag of a closing fragment.
	After string

	nodes []*fragmentNode
}

// fragmentNode is a token of the fragment arranged into a tree.
// raw and end hold the source text exactly, so serializing a node
// reproduces its input.
type fragmentNode struct {
	typ      html.TokenType
	name     string
	attrs    []html.Attribute
	raw      string
	end      string
	children []*fragmentNode
}

func (n *fragmentNode) isElement() bool {
	return n.typ == html.StartTagToken || n.typ == html.SelfClosingTagToken
}

func (n *fragmentNode) attr(key string) (string, bool) {
	for _, a := range n.attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func (n *fragmentNode) appendRaw(sb *strings.Builder) {
	sb.WriteString(n.raw)
	for _, c := range n.children {
		c.appendRaw(sb)
	}
	sb.WriteString(n.end)
}

func (n *fragmentNode) innerRaw() string {
	sb := new(strings.Builder)
	for _, c := range n.children {
		c.appendRaw(sb)
	}
	return sb.String()
}

func (n *fragmentNode) outerRaw() string {
	sb := new(strings.Builder)
	n.appendRaw(sb)
	return sb.String()
}

func (n *fragmentNode) hasChildElements() bool {
	for _, c := range n.children {
		if c.isElement() {
			return true
		}
	}
	return false
}

// ClassifyFragment tokenizes s and determines what kind of markup it is.
// Input the tokenizer rejects is classified as text.
func ClassifyFragment(s string) Fragment {
	nodes, stats, err := tokenizeFragment(s)
	if err != nil || stats.tags == 0 {
		return Fragment{Kind: FragmentText}
	}
	f := Fragment{nodes: nodes}
	var significant []*fragmentNode
	for _, n := range nodes {
		if n.typ == html.TextToken && strings.TrimSpace(n.raw) == "" {
			continue
		}
		significant = append(significant, n)
	}
	switch {
	case stats.tags == 1 && len(significant) == 1 && significant[0].typ == html.SelfClosingTagToken:
		f.Kind = FragmentXMLEmpty
	case stats.tags == 1 && len(significant) == 1 && significant[0].typ == html.StartTagToken && inSet(voidElements, significant[0].name):
		f.Kind = FragmentOpeningEmpty
	case stats.stray > 0:
		f.Kind = FragmentClosing
		for i := len(nodes) - 1; i >= 0 && nodes[i].typ == html.TextToken; i-- {
			f.After = nodes[i].raw + f.After
		}
	case stats.unclosed > 0:
		f.Kind = FragmentOpening
		for _, n := range nodes {
			if n.typ != html.TextToken {
				break
			}
			f.Before += n.raw
		}
	case len(significant) == 1 && significant[0].isElement():
		f.Kind = FragmentHTML
	default:
		f.Kind = FragmentHTMLSub
	}
	return f
}

type fragmentStats struct {
	tags     int
	unclosed int
	stray    int
}

func tokenizeFragment(s string) ([]*fragmentNode, fragmentStats, error) {
	var stats fragmentStats
	root := &fragmentNode{}
	stack := []*fragmentNode{root}
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, stats, err
			}
			break
		}
		// Raw must be copied before TagName, which lowercases in place.
		n := &fragmentNode{typ: tt, raw: string(z.Raw())}
		parent := stack[len(stack)-1]
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			stats.tags++
			name, hasAttr := z.TagName()
			n.name = string(name)
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				n.attrs = append(n.attrs, html.Attribute{Key: string(key), Val: string(val)})
			}
			parent.children = append(parent.children, n)
			if tt == html.StartTagToken && !inSet(voidElements, n.name) {
				stack = append(stack, n)
			}
		case html.EndTagToken:
			stats.tags++
			name, _ := z.TagName()
			n.name = string(name)
			i := len(stack) - 1
			for ; i > 0 && stack[i].name != n.name; i-- {
			}
			if i == 0 {
				stats.stray++
				parent.children = append(parent.children, n)
				continue
			}
			stats.unclosed += len(stack) - 1 - i
			stack[i].end = n.raw
			stack = stack[:i]
		default:
			parent.children = append(parent.children, n)
		}
	}
	stats.unclosed += len(stack) - 1
	return root.children, stats, nil
}

// reprocessHTML renders the Markdown content of elements marked markdown="1"
// inside an HTML block, keeping all other markup as written.
func (st *State) reprocessHTML(s string) *Node {
	f := ClassifyFragment(s)
	st.debug("classified html fragment", "kind", f.Kind)
	switch f.Kind {
	case FragmentText, FragmentOpeningEmpty, FragmentXMLEmpty:
		return NewRawHTML(s)
	}
	if !hasMarkdownAttr(f.nodes) {
		return NewRawHTML(s)
	}
	return NewContainer(st.reprocessNodes(f.nodes, 0)...)
}

func hasMarkdownAttr(nodes []*fragmentNode) bool {
	for _, n := range nodes {
		if v, ok := n.attr("markdown"); ok && v == "1" {
			return true
		}
		if hasMarkdownAttr(n.children) {
			return true
		}
	}
	return false
}

func (st *State) reprocessNodes(nodes []*fragmentNode, depth int) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n.typ != html.StartTagToken || depth >= st.options().MaxNesting {
			out = append(out, NewRawHTML(n.outerRaw()))
			continue
		}
		if v, ok := n.attr("markdown"); ok && v == "1" {
			out = append(out,
				NewRawHTML(startTagWithout(n, "markdown")+"\n"),
				NewBlockContainer(st.renderNested(splitLines(n.innerRaw()))...),
				NewRawHTML("\n"+n.end),
			)
			continue
		}
		if inSet(textLevelElements, n.name) || inSet(voidElements, n.name) || !n.hasChildElements() {
			out = append(out, NewRawHTML(n.outerRaw()))
			continue
		}
		out = append(out, NewRawHTML(n.raw))
		out = append(out, st.reprocessNodes(n.children, depth+1)...)
		out = append(out, NewRawHTML(n.end))
	}
	return out
}

// startTagWithout rebuilds an element's start tag without the named attribute.
func startTagWithout(n *fragmentNode, key string) string {
	sb := new(strings.Builder)
	sb.WriteString("<")
	sb.WriteString(n.name)
	for _, a := range n.attrs {
		if a.Key == key {
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		sb.Write(escapeAttr(nil, a.Val))
		sb.WriteString(`"`)
	}
	sb.WriteString(">")
	return sb.String()
}
