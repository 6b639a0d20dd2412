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

// Package normhtml normalizes HTML so that tests can compare rendered output
// while ignoring insignificant differences: whitespace around block tags,
// attribute order, self-closing syntax and character reference spelling.
package normhtml

import (
	"bytes"
	"regexp"
	"sort"
	"unicode"

	"github.com/google/go-cmp/cmp"
	"go4.org/bytereplacer"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

type attribute struct {
	key   string
	value string
}

type normalizer struct {
	tok     *html.Tokenizer
	output  []byte
	last    html.TokenType
	lastTag string
	inPre   bool
}

// NormalizeHTML strips insignificant output differences from HTML.
func NormalizeHTML(b []byte) []byte {
	n := &normalizer{
		tok:  html.NewTokenizerFragment(bytes.NewReader(b), "div"),
		last: html.StartTagToken,
	}
	for {
		tt := n.tok.Next()
		switch tt {
		case html.ErrorToken:
			return n.output
		case html.TextToken:
			n.text(n.tok.Text())
		case html.EndTagToken:
			n.endTag()
		case html.StartTagToken, html.SelfClosingTagToken:
			n.startTag()
		case html.CommentToken:
			n.output = append(n.output, n.tok.Raw()...)
		}
		n.last = tt
		if tt == html.SelfClosingTagToken {
			n.last = html.EndTagToken
		}
	}
}

// Diff returns a human-readable report of the differences
// between the normalized forms of want and got,
// or the empty string if they are equivalent.
func Diff(want, got string) string {
	return cmp.Diff(
		string(NormalizeHTML([]byte(want))),
		string(NormalizeHTML([]byte(got))),
	)
}

func (n *normalizer) text(data []byte) {
	afterTag := n.last == html.EndTagToken || n.last == html.StartTagToken
	if afterTag && n.lastTag == "br" {
		data = bytes.TrimLeft(data, "\n")
	}
	if !n.inPre {
		data = whitespaceRE.ReplaceAll(data, []byte(" "))
		if afterTag && isBlockTag(n.lastTag) {
			if n.last == html.StartTagToken {
				data = bytes.TrimLeftFunc(data, unicode.IsSpace)
			} else {
				data = bytes.TrimSpace(data)
			}
		}
	}
	n.output = append(n.output, htmlEscaper.Replace(bytes.Clone(data))...)
}

func (n *normalizer) endTag() {
	name, _ := n.tok.TagName()
	tag := string(name)
	if tag == "pre" {
		n.inPre = false
	} else if isBlockTag(tag) {
		n.output = bytes.TrimRightFunc(n.output, unicode.IsSpace)
	}
	n.output = append(n.output, "</"...)
	n.output = append(n.output, tag...)
	n.output = append(n.output, '>')
	n.lastTag = tag
}

func (n *normalizer) startTag() {
	name, hasAttr := n.tok.TagName()
	tag := string(name)
	if tag == "pre" {
		n.inPre = true
	}
	if isBlockTag(tag) {
		n.output = bytes.TrimRightFunc(n.output, unicode.IsSpace)
	}
	n.output = append(n.output, '<')
	n.output = append(n.output, tag...)
	var attrs []attribute
	for hasAttr {
		var k, v []byte
		k, v, hasAttr = n.tok.TagAttr()
		attrs = append(attrs, attribute{string(k), string(v)})
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].key < attrs[j].key
	})
	for _, attr := range attrs {
		n.output = append(n.output, ' ')
		n.output = append(n.output, attr.key...)
		if attr.value != "" {
			n.output = append(n.output, `="`...)
			n.output = append(n.output, html.EscapeString(attr.value)...)
			n.output = append(n.output, '"')
		}
	}
	n.output = append(n.output, '>')
	n.lastTag = tag
}

// isBlockTag reports whether whitespace around the tag is insignificant.
func isBlockTag(tag string) bool {
	switch atom.Lookup([]byte(tag)) {
	case atom.Article, atom.Aside, atom.Blockquote, atom.Body, atom.Button,
		atom.Canvas, atom.Caption, atom.Col, atom.Colgroup,
		atom.Dd, atom.Div, atom.Dl, atom.Dt, atom.Embed,
		atom.Fieldset, atom.Figcaption, atom.Figure, atom.Footer, atom.Form,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Header, atom.Hgroup, atom.Hr, atom.Iframe, atom.Li, atom.Map,
		atom.Object, atom.Ol, atom.Output, atom.P, atom.Pre, atom.Progress,
		atom.Script, atom.Section, atom.Style,
		atom.Table, atom.Tbody, atom.Td, atom.Textarea, atom.Tfoot, atom.Th, atom.Thead, atom.Tr,
		atom.Ul, atom.Video:
		return true
	default:
		return false
	}
}
