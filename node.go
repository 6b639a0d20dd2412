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

// NodeKind is an enumeration of render tree node types.
type NodeKind uint8

const (
	// ElementKind is an HTML element with attributes and children.
	ElementKind NodeKind = 1 + iota
	// TextKind is text that is escaped when rendered.
	TextKind
	// RawHTMLKind is markup that is written as-is.
	RawHTMLKind
	// InvisibleKind renders nothing.
	// Declarations such as footnote and abbreviation definitions produce it.
	InvisibleKind
	// ContainerKind groups children without a surrounding tag.
	ContainerKind
)

// A Node is an element of the render tree.
// Block and inline types build trees of nodes
// and the renderer serializes them to HTML.
type Node struct {
	kind     NodeKind
	name     string
	attrs    []Attribute
	children []*Node
	text     string

	// blockChildren is set when children are block-level,
	// in which case they are written on separate lines.
	blockChildren bool
}

// NewElement returns an element node whose children are inline content.
func NewElement(name string, attrs []Attribute, children ...*Node) *Node {
	return &Node{
		kind:     ElementKind,
		name:     name,
		attrs:    attrs,
		children: children,
	}
}

// NewBlockElement returns an element node whose children are blocks.
func NewBlockElement(name string, attrs []Attribute, children ...*Node) *Node {
	n := NewElement(name, attrs, children...)
	n.blockChildren = true
	return n
}

// NewText returns a text node.
func NewText(s string) *Node {
	return &Node{kind: TextKind, text: s}
}

// NewRawHTML returns a node that renders s without escaping.
func NewRawHTML(s string) *Node {
	return &Node{kind: RawHTMLKind, text: s}
}

// NewInvisible returns a node that renders nothing.
func NewInvisible() *Node {
	return &Node{kind: InvisibleKind}
}

// NewContainer returns a node that renders its inline children back to back.
func NewContainer(children ...*Node) *Node {
	return &Node{kind: ContainerKind, children: children}
}

// NewBlockContainer returns a node that renders its block children
// on separate lines.
func NewBlockContainer(children ...*Node) *Node {
	return &Node{kind: ContainerKind, children: children, blockChildren: true}
}

// Kind returns the type of node.
func (n *Node) Kind() NodeKind {
	if n == nil {
		return 0
	}
	return n.kind
}

// Name returns the element's tag name.
func (n *Node) Name() string {
	if n == nil || n.kind != ElementKind {
		return ""
	}
	return n.name
}

// Text returns the content of a text or raw HTML node.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	return n.text
}

// Attrs returns the element's attributes in insertion order.
func (n *Node) Attrs() []Attribute {
	if n == nil {
		return nil
	}
	return n.attrs
}

// Attr returns the value of the attribute with the given key.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs() {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, replacing any existing value.
func (n *Node) SetAttr(key, value string) {
	for i := range n.attrs {
		if n.attrs[i].Key == key {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attribute{Key: key, Value: value})
}

// MergeAttributes applies parsed attributes to the element.
// Classes are appended to any existing class attribute.
func (n *Node) MergeAttributes(attrs Attributes) {
	if attrs.ID != "" {
		n.SetAttr("id", attrs.ID)
	}
	if len(attrs.Classes) > 0 {
		class := strings.Join(attrs.Classes, " ")
		if prev, ok := n.Attr("class"); ok && prev != "" {
			class = prev + " " + class
		}
		n.SetAttr("class", class)
	}
	for _, a := range attrs.Other {
		n.SetAttr(a.Key, a.Value)
	}
}

// ChildCount returns the number of children the node has.
func (n *Node) ChildCount() int {
	if n == nil {
		return 0
	}
	return len(n.children)
}

// Child returns the i'th child of the node.
func (n *Node) Child(i int) *Node {
	return n.children[i]
}

// Children returns the node's children.
// The slice is owned by the node.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	return n.children
}

// AppendChild adds a child to the end of the node's children.
func (n *Node) AppendChild(child *Node) {
	n.children = append(n.children, child)
}

// IsBlock reports whether the node's children are block-level.
func (n *Node) IsBlock() bool {
	return n != nil && n.blockChildren
}

// PlainText returns the concatenated text of the node's text descendants.
func PlainText(n *Node) string {
	sb := new(strings.Builder)
	Walk(n, &WalkOptions{
		Pre: func(c *Cursor) bool {
			if c.Node().Kind() == TextKind {
				sb.WriteString(c.Node().Text())
			}
			return true
		},
	})
	return sb.String()
}

// unwrapParagraphs replaces every top-level paragraph in nodes
// with its inline content, as tight lists do.
// If firstOnly is set, only a leading paragraph is unwrapped.
func unwrapParagraphs(nodes []*Node, firstOnly bool) []*Node {
	var out []*Node
	for i, n := range nodes {
		if n.Name() == "p" && (!firstOnly || i == 0) {
			out = append(out, NewContainer(n.children...))
			continue
		}
		out = append(out, n)
	}
	return out
}
