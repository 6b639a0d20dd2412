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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`
footnote_prefix: post1-
extended: true
variables:
  name: Gopher
header_ids: false
max_nesting: 8
filter_tags: gfm
ignore_raw: true
`))
	require.NoError(t, err)
	assert.Equal(t, "post1-", cfg.FootnotePrefix)
	assert.True(t, cfg.Extended)
	assert.Equal(t, map[string]string{"name": "Gopher"}, cfg.Variables)
	require.NotNil(t, cfg.HeaderIDs)
	assert.False(t, *cfg.HeaderIDs)
	assert.Nil(t, cfg.MarkdownInHTML)
	assert.Equal(t, 8, cfg.MaxNesting)
	assert.Equal(t, FilterGFM, cfg.FilterTags)
	assert.True(t, cfg.IgnoreRaw)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"UnknownKey", "footnote_prefx: x\n"},
		{"NegativeNesting", "max_nesting: -1\n"},
		{"UnknownFilter", "filter_tags: strict\n"},
		{"WrongType", "extended: [1]\n"},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(test.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	yes, no := true, false
	cfg := &Config{
		FootnotePrefix: "a-",
		Extended:       true,
		Variables:      map[string]string{"v": "1"},
		HeaderIDs:      &no,
		MarkdownInHTML: &yes,
		MaxNesting:     4,
		FilterTags:     FilterGFM,
	}
	opts := cfg.Options(nil)
	assert.Equal(t, "a-", opts.FootnotePrefix)
	assert.True(t, opts.Extended)
	assert.True(t, opts.NoHeaderIDs)
	assert.False(t, opts.NoMarkdownInHTML)
	assert.Equal(t, 4, opts.MaxNesting)
	require.NotNil(t, opts.FilterTag)
	assert.True(t, opts.FilterTag([]byte("script")))

	opts.Variables["v"] = "changed"
	assert.Equal(t, "1", cfg.Variables["v"], "Options must copy variables")

	assert.Nil(t, (&Config{}).Options(nil).FilterTag)
}

func TestLoadAndDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, ok := Discover(dir)
	assert.False(t, ok)

	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("extended: true\n"), 0o644))

	found, ok := Discover(dir)
	require.True(t, ok)
	assert.Equal(t, path, found)

	cfg, err := Load(found)
	require.NoError(t, err)
	assert.True(t, cfg.Extended)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"MDEXTRA_FOOTNOTE_PREFIX": "env-",
		"MDEXTRA_EXTENDED":        "true",
		"MDEXTRA_MAX_NESTING":     "3",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg := &Config{FootnotePrefix: "file-"}
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "env-", cfg.FootnotePrefix)
	assert.True(t, cfg.Extended)
	assert.Equal(t, 3, cfg.MaxNesting)

	env["MDEXTRA_EXTENDED"] = "maybe"
	assert.Error(t, (&Config{}).ApplyEnv(lookup))

	env["MDEXTRA_EXTENDED"] = "false"
	env["MDEXTRA_FILTER_TAGS"] = "strict"
	assert.Error(t, (&Config{}).ApplyEnv(lookup))
}
