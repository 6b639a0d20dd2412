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

// scanHTMLTag returns the width of the raw HTML tag at the start of s:
// an open or closing tag, a comment, a processing instruction,
// a declaration or a CDATA section.
// It returns -1 if s does not start with one.
func scanHTMLTag(s string) int {
	const (
		cdataPrefix = "<![CDATA["
		cdataSuffix = "]]>"
	)

	if len(s) < 2 || s[0] != '<' {
		return -1
	}
	switch s[1] {
	case '?':
		if end := strings.Index(s[2:], "?>"); end >= 0 {
			return 2 + end + 2
		}
		return -1
	case '!':
		switch rest := s[2:]; {
		case strings.HasPrefix(rest, "--"):
			return scanHTMLComment(s)
		case strings.HasPrefix(s, cdataPrefix):
			if end := strings.Index(s[len(cdataPrefix):], cdataSuffix); end >= 0 {
				return len(cdataPrefix) + end + len(cdataSuffix)
			}
			return -1
		case rest != "" && isASCIILetter(rest[0]):
			if end := strings.IndexByte(rest, '>'); end >= 0 {
				return 2 + end + 1
			}
			return -1
		default:
			return -1
		}
	case '/':
		return scanHTMLClosingTag(s)
	default:
		return scanHTMLOpenTag(s)
	}
}

// scanHTMLComment scans `<!-- ... -->`.
// The text may not start with `>` or `->` nor contain `--`.
func scanHTMLComment(s string) int {
	const start = len("<!--")
	text := s[start:]
	if strings.HasPrefix(text, ">") || strings.HasPrefix(text, "->") {
		return -1
	}
	for i := 0; i < len(text); i++ {
		if strings.HasPrefix(text[i:], "-->") {
			return start + i + len("-->")
		}
		if strings.HasPrefix(text[i:], "--") {
			return -1
		}
	}
	return -1
}

// scanHTMLOpenTag scans an open tag such as `<a href="x">` or `<br/>`.
func scanHTMLOpenTag(s string) int {
	i := scanHTMLTagName(s, 1)
	if i < 0 {
		return -1
	}
	for {
		afterSpace := skipSpaces(s, i)
		if afterSpace >= len(s) {
			return -1
		}
		switch s[afterSpace] {
		case '/':
			if afterSpace+1 < len(s) && s[afterSpace+1] == '>' {
				return afterSpace + 2
			}
			return -1
		case '>':
			return afterSpace + 1
		}
		if afterSpace == i {
			// Attributes must be separated by whitespace.
			return -1
		}
		i = scanHTMLAttribute(s, afterSpace)
		if i < 0 {
			return -1
		}
	}
}

// scanHTMLClosingTag scans a closing tag such as `</em >`.
func scanHTMLClosingTag(s string) int {
	i := scanHTMLTagName(s, 2)
	if i < 0 {
		return -1
	}
	i = skipSpaces(s, i)
	if i >= len(s) || s[i] != '>' {
		return -1
	}
	return i + 1
}

// scanHTMLTagName returns the index after the tag name starting at s[i].
func scanHTMLTagName(s string, i int) int {
	if i >= len(s) || !isASCIILetter(s[i]) {
		return -1
	}
	for i++; i < len(s) && (isASCIILetter(s[i]) || isASCIIDigit(s[i]) || s[i] == '-'); i++ {
	}
	return i
}

// scanHTMLAttribute returns the index after the attribute starting at s[i].
// The value is optional; whitespace before a missing `=` is not consumed.
func scanHTMLAttribute(s string, i int) int {
	if c := s[i]; !isASCIILetter(c) && c != '_' && c != ':' {
		return -1
	}
	for i++; i < len(s) && (isASCIILetter(s[i]) || isASCIIDigit(s[i]) || strings.IndexByte("_.:-", s[i]) >= 0); i++ {
	}
	eq := skipSpaces(s, i)
	if eq >= len(s) || s[eq] != '=' {
		return i
	}
	j := skipSpaces(s, eq+1)
	if j >= len(s) {
		return -1
	}
	switch c := s[j]; {
	case c == '\'' || c == '"':
		end := strings.IndexByte(s[j+1:], c)
		if end < 0 {
			return -1
		}
		return j + 1 + end + 1
	case isUnquotedAttributeValueChar(c):
		for j < len(s) && isUnquotedAttributeValueChar(s[j]) {
			j++
		}
		return j
	default:
		return -1
	}
}

func isUnquotedAttributeValueChar(c byte) bool {
	return !isSpaceByte(c) && strings.IndexByte("\"'=<>`", c) < 0
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isASCIIDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
