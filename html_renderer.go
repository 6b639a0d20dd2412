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
	"bytes"

	"go4.org/bytereplacer"
	"golang.org/x/net/html/atom"
)

// AppendHTML appends the HTML serialization of a render tree to dst
// and returns the resulting byte slice.
// Raw HTML is filtered according to the renderer's options.
//
// # Security considerations
//
// Markdown permits raw HTML, which can introduce
// [Cross-Site Scripting (XSS)] vulnerabilities
// when used with untrusted inputs.
// The resulting HTML should be sent through an HTML sanitizer.
// [Options.IgnoreRaw] removes raw HTML entirely,
// and [Options.FilterTag] escapes chosen tags while still showing the source text.
//
// [Cross-Site Scripting (XSS)]: https://owasp.org/www-community/attacks/xss/
func (r *Renderer) AppendHTML(dst []byte, n *Node) []byte {
	return r.opts.appendHTML(dst, n)
}

func (o *Options) appendHTML(dst []byte, n *Node) []byte {
	state := &renderState{
		Options: o,
		dst:     dst,
	}
	state.node(n)
	return state.dst
}

type renderState struct {
	*Options
	dst      []byte
	lowerBuf []byte
}

var (
	textEscaper = bytereplacer.New(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	attrEscaper = bytereplacer.New(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
)

// escapeAttr appends the attribute-escaped version of s to dst.
func escapeAttr(dst []byte, s string) []byte {
	return append(dst, attrEscaper.Replace([]byte(s))...)
}

func (r *renderState) node(n *Node) {
	switch n.Kind() {
	case ElementKind:
		r.element(n)
	case TextKind:
		r.dst = append(r.dst, textEscaper.Replace([]byte(n.text))...)
	case RawHTMLKind:
		if r.FilterTag != nil {
			r.filterRaw([]byte(n.text))
		} else {
			r.dst = append(r.dst, n.text...)
		}
	case ContainerKind:
		r.children(n)
	}
}

func (r *renderState) element(n *Node) {
	r.openTag(n.name)
	for _, a := range orderedAttrs(n.attrs) {
		r.dst = append(r.dst, ' ')
		r.dst = append(r.dst, a.Key...)
		r.dst = append(r.dst, `="`...)
		r.dst = escapeAttr(r.dst, a.Value)
		r.dst = append(r.dst, '"')
	}
	if isVoidElement(n.name) {
		r.dst = append(r.dst, " />"...)
		return
	}
	r.dst = append(r.dst, '>')
	if n.blockChildren && hasVisible(n.children) {
		r.dst = append(r.dst, '\n')
		r.children(n)
		r.dst = append(r.dst, '\n')
	} else {
		r.children(n)
	}
	r.closeTag(n.name)
}

func (r *renderState) children(n *Node) {
	first := true
	for _, c := range n.children {
		if n.blockChildren {
			if !isVisible(c) {
				continue
			}
			if !first {
				r.dst = append(r.dst, '\n')
			}
		}
		first = false
		r.node(c)
	}
}

// orderedAttrs returns attrs with id and class moved to the front.
func orderedAttrs(attrs []Attribute) []Attribute {
	if len(attrs) < 2 {
		return attrs
	}
	ordered := make([]Attribute, 0, len(attrs))
	for _, key := range [...]string{"id", "class"} {
		for _, a := range attrs {
			if a.Key == key {
				ordered = append(ordered, a)
			}
		}
	}
	for _, a := range attrs {
		if a.Key != "id" && a.Key != "class" {
			ordered = append(ordered, a)
		}
	}
	return ordered
}

func isVisible(n *Node) bool {
	switch n.Kind() {
	case InvisibleKind:
		return false
	case ContainerKind:
		return hasVisible(n.children)
	default:
		return true
	}
}

func hasVisible(nodes []*Node) bool {
	for _, n := range nodes {
		if isVisible(n) {
			return true
		}
	}
	return false
}

func isVoidElement(name string) bool {
	switch atom.Lookup([]byte(name)) {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Link, atom.Meta, atom.Param, atom.Source, atom.Track, atom.Wbr:
		return true
	default:
		return false
	}
}

func (r *renderState) openTag(name string) {
	start := len(r.dst)
	r.dst = append(r.dst, '<')
	r.dst = append(r.dst, name...)
	if r.FilterTag != nil && r.FilterTag(r.dst[start+1:]) {
		r.dst = r.dst[:start]
		r.dst = append(r.dst, "&lt;"...)
		r.dst = append(r.dst, name...)
	}
}

func (r *renderState) closeTag(name string) {
	start := len(r.dst)
	r.dst = append(r.dst, "</"...)
	r.dst = append(r.dst, name...)
	if r.FilterTag != nil && r.FilterTag(r.dst[start+2:]) {
		r.dst = r.dst[:start]
		r.dst = append(r.dst, "&lt;/"...)
		r.dst = append(r.dst, name...)
	}
	r.dst = append(r.dst, '>')
}

// filterRaw copies raw HTML to the output,
// escaping the opening angle bracket of any tag rejected by FilterTag.
func (r *renderState) filterRaw(rawHTML []byte) {
	const (
		commentPrefix = "<!--"
		commentSuffix = "-->"
		cdataPrefix   = "<![CDATA["
		cdataSuffix   = "]]>"
	)
	copyStart := 0
	for i := 0; i < len(rawHTML); {
		if rawHTML[i] != '<' {
			i++
			continue
		}
		rest := rawHTML[i:]
		switch {
		case bytes.HasPrefix(rest, []byte(commentPrefix)):
			i += skipPast(rest, len(commentPrefix), commentSuffix)
		case bytes.HasPrefix(rest, []byte(cdataPrefix)):
			i += skipPast(rest, len(cdataPrefix), cdataSuffix)
		default:
			nameStart := i + 1
			if nameStart < len(rawHTML) && rawHTML[nameStart] == '/' {
				nameStart++
			}
			nameEnd := nameStart
			for nameEnd < len(rawHTML) && isTagNameByte(rawHTML[nameEnd]) {
				nameEnd++
			}
			if nameEnd > nameStart && r.FilterTag(maybeLower(rawHTML[nameStart:nameEnd], &r.lowerBuf)) {
				r.dst = append(r.dst, rawHTML[copyStart:i]...)
				r.dst = append(r.dst, "&lt;"...)
				copyStart = i + 1
			}
			i = nameEnd
			if i == nameStart {
				i++
			}
		}
	}
	r.dst = append(r.dst, rawHTML[copyStart:]...)
}

// skipPast returns the offset just after the first suffix in b
// found at or after start, or len(b) if there is none.
func skipPast(b []byte, start int, suffix string) int {
	if j := bytes.Index(b[start:], []byte(suffix)); j >= 0 {
		return start + j + len(suffix)
	}
	return len(b)
}

func isTagNameByte(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '-'
}

func maybeLower(x []byte, buf *[]byte) []byte {
	hasUpper := false
	for _, b := range x {
		if 'A' <= b && b <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return x
	}

	*buf = (*buf)[:0]
	for _, b := range x {
		if 'A' <= b && b <= 'Z' {
			*buf = append(*buf, b-'A'+'a')
		} else {
			*buf = append(*buf, b)
		}
	}
	return *buf
}

// FilterTagGFM performs the same tag filtering as the
// GitHub Flavored Markdown [tagfilter extension].
// It is suitable for use as the FilterTag field in [Options].
//
// [tagfilter extension]: https://github.github.com/gfm/#disallowed-raw-html-extension-
func FilterTagGFM(tag []byte) bool {
	tagAtom := atom.Lookup(tag)
	return tagAtom == atom.Title ||
		tagAtom == atom.Textarea ||
		tagAtom == atom.Style ||
		tagAtom == atom.Xmp ||
		tagAtom == atom.Iframe ||
		tagAtom == atom.Noembed ||
		tagAtom == atom.Noframes ||
		tagAtom == atom.Script ||
		tagAtom == atom.Plaintext
}
