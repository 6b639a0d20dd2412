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
	"strings"
	"unicode/utf8"
)

// tabStop is the column multiple that tab characters advance to.
const tabStop = 4

// A Line is a single source line with its leading indentation measured.
// Lines are values: block types receive them by copy and never modify them.
type Line struct {
	// Text is the line with its leading spaces and tabs removed.
	Text string
	// Indent is the number of columns of leading whitespace,
	// with tabs expanded to the next multiple of four.
	Indent int
	// Offset is the byte offset of the line within the text being parsed.
	Offset int
	// Raw is the complete line as it appeared in the input.
	Raw string
}

// NewLine measures the indentation of raw.
func NewLine(raw string, offset int) Line {
	col := 0
	i := 0
loop:
	for ; i < len(raw); i++ {
		switch raw[i] {
		case ' ':
			col++
		case '\t':
			col += tabStop - col%tabStop
		default:
			break loop
		}
	}
	return Line{
		Text:   raw[i:],
		Indent: col,
		Offset: offset,
		Raw:    raw,
	}
}

// TrimIndent returns the line with at most n columns of indentation removed.
// Any indentation beyond n columns is kept as spaces.
func (l Line) TrimIndent(n int) string {
	if l.Indent <= n {
		return l.Text
	}
	return strings.Repeat(" ", l.Indent-n) + l.Text
}

// IsBlank reports whether the line consists only of whitespace.
func (l Line) IsBlank() bool {
	return isBlank(l.Text)
}

// A Context is a non-blank line presented to the block engine,
// together with the blank lines that came directly before it.
type Context struct {
	Line Line
	// PrecedingEmptyLines is the number of blank lines before Line.
	PrecedingEmptyLines int
	// PrecedingEmptyLinesText holds those blank lines joined by newlines,
	// preserving any whitespace they contained.
	PrecedingEmptyLinesText string
}

// emptyLines returns the preceding blank lines
// with up to n columns of indentation removed from each.
func (ctx Context) emptyLines(n int) []string {
	if ctx.PrecedingEmptyLines == 0 {
		return nil
	}
	parts := strings.Split(ctx.PrecedingEmptyLinesText, "\n")
	for i, p := range parts {
		parts[i] = NewLine(p, 0).TrimIndent(n)
	}
	return parts
}

// An Excerpt is the remainder of an inline span starting at a trigger character.
type Excerpt struct {
	// Text is the unconsumed input, starting with the trigger character.
	Text string
	// Context is the whole span being parsed.
	Context string
	// Offset is the position of Text within Context.
	Offset int
}

// Before returns the text of the span preceding the excerpt.
func (e Excerpt) Before() string {
	return e.Context[:e.Offset]
}

// PrevRune returns the rune immediately before the excerpt
// or utf8.RuneError at the start of the span.
func (e Excerpt) PrevRune() rune {
	r, _ := utf8.DecodeLastRuneInString(e.Before())
	return r
}

// splitLines breaks text into lines,
// normalizing line endings and replacing NUL with U+FFFD.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "\uFFFD")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func isBlank(s string) bool {
	return strings.TrimLeft(s, " \t") == ""
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
