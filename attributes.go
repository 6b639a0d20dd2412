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

// An Attribute is a single HTML attribute.
type Attribute struct {
	Key   string
	Value string
}

// Attributes is the result of parsing an attribute block
// such as `{#id .class key="value"}`.
type Attributes struct {
	// ID is the last #id token, if any.
	ID string
	// Classes are the .class tokens in source order.
	Classes []string
	// Other holds key=value tokens in first-appearance order.
	// A repeated key keeps its first position and takes the last value.
	Other []Attribute
}

// IsEmpty reports whether no attribute was set.
func (a Attributes) IsEmpty() bool {
	return a.ID == "" && len(a.Classes) == 0 && len(a.Other) == 0
}

// List returns the attributes in rendering order:
// id first, then the space-joined classes, then the others.
func (a Attributes) List() []Attribute {
	var list []Attribute
	if a.ID != "" {
		list = append(list, Attribute{Key: "id", Value: a.ID})
	}
	if len(a.Classes) > 0 {
		list = append(list, Attribute{Key: "class", Value: strings.Join(a.Classes, " ")})
	}
	return append(list, a.Other...)
}

func (a *Attributes) set(key, value string) {
	switch key {
	case "id":
		a.ID = value
		return
	case "class":
		a.Classes = append(a.Classes, strings.Fields(value)...)
		return
	}
	for i := range a.Other {
		if a.Other[i].Key == key {
			a.Other[i].Value = value
			return
		}
	}
	a.Other = append(a.Other, Attribute{Key: key, Value: value})
}

// ParseAttributes parses the inside of an attribute block.
// Tokens are separated by whitespace:
// `#name` sets the id, `.name` adds a class
// and `key=value` (with an optionally quoted value) sets any other attribute.
// Tokens that fit none of these forms are skipped,
// so ParseAttributes never fails.
func ParseAttributes(s string) Attributes {
	var attrs Attributes
	for s != "" {
		s = strings.TrimLeft(s, " \t\n")
		if s == "" {
			break
		}
		var tok string
		tok, s = nextAttributeToken(s)
		switch tok[0] {
		case '#':
			if name := tok[1:]; isAttributeName(name) {
				attrs.ID = name
			}
		case '.':
			if name := tok[1:]; isAttributeName(name) {
				attrs.Classes = append(attrs.Classes, name)
			}
		default:
			key, value, ok := strings.Cut(tok, "=")
			if !ok || !attributeKeyRE.MatchString(key) {
				continue
			}
			if n := len(value); n >= 2 && (value[0] == '"' || value[0] == '\'') && value[n-1] == value[0] {
				value = value[1 : n-1]
			} else if value != "" && (value[0] == '"' || value[0] == '\'') {
				// Unterminated quote.
				continue
			}
			attrs.set(key, value)
		}
	}
	return attrs
}

// nextAttributeToken splits off the first whitespace-delimited token,
// treating quoted values as a single unit.
func nextAttributeToken(s string) (tok, rest string) {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			if i > 0 && s[i-1] == '=' {
				quote = c
			}
		case c == ' ' || c == '\t' || c == '\n':
			return s[:i], s[i:]
		}
	}
	return s, ""
}

func isAttributeName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isWordByte(c) && c != '-' && c != ':' {
			return false
		}
	}
	return true
}

func isWordByte(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '_'
}

var (
	attributeKeyRE = regexp.MustCompile(`^[A-Za-z_:][-\w:.]*$`)

	// attributeBlockBody matches what may appear between braces.
	attributeBlockBody = `[ \t]*((?:[#.][-\w:]|[A-Za-z_:][-\w:.]*=)[^{}\n]*)\}`

	trailingAttributesRE = regexp.MustCompile(`[ \t]*\{` + attributeBlockBody + `[ \t]*$`)
	leadingAttributesRE  = regexp.MustCompile(`^[ ]*\{` + attributeBlockBody)
)

// cutTrailingAttributes removes an attribute block from the end of text.
func cutTrailingAttributes(text string) (rest string, attrs Attributes, ok bool) {
	m := trailingAttributesRE.FindStringSubmatchIndex(text)
	if m == nil {
		return text, Attributes{}, false
	}
	return text[:m[0]], ParseAttributes(text[m[2]:m[3]]), true
}

// leadingAttributes matches an attribute block at the start of text
// and reports its width.
func leadingAttributes(text string) (width int, attrs Attributes, ok bool) {
	m := leadingAttributesRE.FindStringSubmatchIndex(text)
	if m == nil {
		return 0, Attributes{}, false
	}
	return m[1], ParseAttributes(text[m[2]:m[3]]), true
}
