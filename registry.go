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
	"fmt"
)

// Errors returned while building a [Grammar].
var (
	// ErrMissingHook indicates that an extension needed
	// a block or inline type that the grammar does not have.
	ErrMissingHook = errors.New("grammar hook missing")
	// ErrDuplicateType indicates that a type name was registered twice
	// under the same trigger.
	ErrDuplicateType = errors.New("type already registered")
	// ErrInvalidTrigger indicates a trigger character that can never start a line or span.
	ErrInvalidTrigger = errors.New("invalid trigger character")
)

// Precedence determines where a newly added type goes
// relative to the types already registered for the same trigger.
type Precedence int

const (
	// Low places the type after existing types.
	Low Precedence = iota
	// High places the type before existing types.
	High
)

// BlockTypeFunc returns a new block if ctx starts one, or nil.
// prev is the block open before ctx, which may be nil.
// It may inspect prev to upgrade it (see [AcquiringBlock]),
// but must not modify prev or st.
type BlockTypeFunc func(ctx Context, st *State, prev Block) Block

// A BlockType recognizes the start of a block.
type BlockType struct {
	// Name identifies the type for replacement by extensions.
	Name  string
	Build BlockTypeFunc
}

// InlineFunc returns the number of bytes consumed and the resulting node,
// or (0, nil) if the excerpt does not start its span.
type InlineFunc func(ex Excerpt, st *State) (width int, n *Node)

// An InlineType recognizes a span at a trigger character.
type InlineType struct {
	// Name identifies the type for replacement by extensions.
	Name  string
	Match InlineFunc
}

// A Grammar is the set of block and inline types used by a [Renderer].
// Types are keyed by the character that can start them
// and tried in precedence order.
// A Grammar is only modified while a Renderer is being constructed.
type Grammar struct {
	blocks   map[byte][]BlockType
	unmarked []BlockType
	inlines  map[byte][]InlineType

	// inlineTriggers is the set of inline trigger bytes, for fast scanning.
	inlineTriggers string
}

func newGrammar() *Grammar {
	return &Grammar{
		blocks:  make(map[byte][]BlockType),
		inlines: make(map[byte][]InlineType),
	}
}

func checkTrigger(c byte) error {
	if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == 0 {
		return fmt.Errorf("%q: %w", c, ErrInvalidTrigger)
	}
	return nil
}

func insertType[T any](list []T, t T, p Precedence) []T {
	if p == High {
		return append([]T{t}, list...)
	}
	return append(list, t)
}

// AddBlock registers a block type for lines whose text starts with trigger.
func (g *Grammar) AddBlock(trigger byte, p Precedence, t BlockType) error {
	if err := checkTrigger(trigger); err != nil {
		return fmt.Errorf("add block %s: %w", t.Name, err)
	}
	for _, existing := range g.blocks[trigger] {
		if existing.Name == t.Name {
			return fmt.Errorf("add block %s for %q: %w", t.Name, trigger, ErrDuplicateType)
		}
	}
	g.blocks[trigger] = insertType(g.blocks[trigger], t, p)
	return nil
}

// AddUnmarkedBlock registers a block type that is tried on every line
// before any types keyed by the line's first character.
func (g *Grammar) AddUnmarkedBlock(p Precedence, t BlockType) error {
	for _, existing := range g.unmarked {
		if existing.Name == t.Name {
			return fmt.Errorf("add block %s: %w", t.Name, ErrDuplicateType)
		}
	}
	g.unmarked = insertType(g.unmarked, t, p)
	return nil
}

// HasBlock reports whether a block type with the given name is registered.
func (g *Grammar) HasBlock(name string) bool {
	_, ok := g.lookupBlock(name)
	return ok
}

func (g *Grammar) lookupBlock(name string) (BlockType, bool) {
	for _, t := range g.unmarked {
		if t.Name == name {
			return t, true
		}
	}
	for _, list := range g.blocks {
		for _, t := range list {
			if t.Name == name {
				return t, true
			}
		}
	}
	return BlockType{}, false
}

// WrapBlock replaces every registration of the named block type
// with the result of calling wrap on it.
// The name of the replacement is kept.
func (g *Grammar) WrapBlock(name string, wrap func(base BlockType) BlockType) error {
	base, ok := g.lookupBlock(name)
	if !ok {
		return fmt.Errorf("wrap block %s: %w", name, ErrMissingHook)
	}
	replacement := wrap(base)
	replacement.Name = name
	g.replaceBlock(name, replacement)
	return nil
}

// ReplaceBlock swaps the named block type for t at every trigger it is registered under.
func (g *Grammar) ReplaceBlock(name string, t BlockType) error {
	if !g.HasBlock(name) {
		return fmt.Errorf("replace block %s: %w", name, ErrMissingHook)
	}
	g.replaceBlock(name, t)
	return nil
}

func (g *Grammar) replaceBlock(name string, t BlockType) {
	for i := range g.unmarked {
		if g.unmarked[i].Name == name {
			g.unmarked[i] = t
		}
	}
	for _, list := range g.blocks {
		for i := range list {
			if list[i].Name == name {
				list[i] = t
			}
		}
	}
}

// RemoveBlock unregisters the named block type.
func (g *Grammar) RemoveBlock(name string) error {
	if !g.HasBlock(name) {
		return fmt.Errorf("remove block %s: %w", name, ErrMissingHook)
	}
	g.unmarked = removeBlockType(g.unmarked, name)
	for c, list := range g.blocks {
		g.blocks[c] = removeBlockType(list, name)
	}
	return nil
}

func removeBlockType(list []BlockType, name string) []BlockType {
	out := list[:0]
	for _, t := range list {
		if t.Name != name {
			out = append(out, t)
		}
	}
	return out
}

// AddInline registers an inline type for spans starting with trigger.
func (g *Grammar) AddInline(trigger byte, p Precedence, t InlineType) error {
	if err := checkTrigger(trigger); err != nil {
		return fmt.Errorf("add inline %s: %w", t.Name, err)
	}
	for _, existing := range g.inlines[trigger] {
		if existing.Name == t.Name {
			return fmt.Errorf("add inline %s for %q: %w", t.Name, trigger, ErrDuplicateType)
		}
	}
	g.inlines[trigger] = insertType(g.inlines[trigger], t, p)
	g.inlineTriggers = ""
	for c := range g.inlines {
		g.inlineTriggers += string(rune(c))
	}
	return nil
}

// HasInline reports whether an inline type with the given name is registered.
func (g *Grammar) HasInline(name string) bool {
	_, ok := g.lookupInline(name)
	return ok
}

func (g *Grammar) lookupInline(name string) (InlineType, bool) {
	for _, list := range g.inlines {
		for _, t := range list {
			if t.Name == name {
				return t, true
			}
		}
	}
	return InlineType{}, false
}

// WrapInline replaces every registration of the named inline type
// with the result of calling wrap on it.
func (g *Grammar) WrapInline(name string, wrap func(base InlineType) InlineType) error {
	base, ok := g.lookupInline(name)
	if !ok {
		return fmt.Errorf("wrap inline %s: %w", name, ErrMissingHook)
	}
	replacement := wrap(base)
	replacement.Name = name
	g.replaceInline(name, replacement)
	return nil
}

// ReplaceInline swaps the named inline type for t at every trigger it is registered under.
func (g *Grammar) ReplaceInline(name string, t InlineType) error {
	if !g.HasInline(name) {
		return fmt.Errorf("replace inline %s: %w", name, ErrMissingHook)
	}
	g.replaceInline(name, t)
	return nil
}

func (g *Grammar) replaceInline(name string, t InlineType) {
	for _, list := range g.inlines {
		for i := range list {
			if list[i].Name == name {
				list[i] = t
			}
		}
	}
}

// blockTypes returns the types to try for a line, in order.
func (g *Grammar) blockTypes(first byte) [][]BlockType {
	return [][]BlockType{g.unmarked, g.blocks[first]}
}
