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

package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zombiezen.com/go/mdextra/internal/cli"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "abc123", Date: "today"})
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandHasSubcommands(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{})
	assert.Equal(t, "mdextra", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	for _, name := range []string{"render", "version"} {
		sub, _, err := cmd.Find([]string{name})
		if assert.NoError(t, err, name) {
			assert.Equal(t, name, sub.Name())
		}
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "version=test")
	assert.Contains(t, out, "commit=abc123")
}

func TestRenderStdin(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "Term\n: Definition\n", "render")
	require.NoError(t, err)
	assert.Equal(t, "<dl>\n<dt>Term</dt>\n<dd>Definition</dd>\n</dl>\n", out)
}

func TestRenderFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		args  []string
		want  string
	}{
		{
			name:  "Extended",
			input: "Hi ${who}!",
			args:  []string{"--extended", "--var", "who=Gopher"},
			want:  "<p>Hi Gopher!</p>\n",
		},
		{
			name:  "NotExtended",
			input: "Hi ${who}!",
			args:  []string{"--var", "who=Gopher"},
			want:  "<p>Hi ${who}!</p>\n",
		},
		{
			name:  "NoHeaderIDs",
			input: "# Title",
			args:  []string{"--no-header-ids"},
			want:  "<h1>Title</h1>\n",
		},
		{
			name:  "IgnoreRaw",
			input: "a <b>b</b>",
			args:  []string{"--ignore-raw"},
			want:  "<p>a b</p>\n",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			out, err := execute(t, test.input, append([]string{"render"}, test.args...)...)
			require.NoError(t, err)
			assert.Equal(t, test.want, out)
		})
	}
}

func TestRenderGFMFilter(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "<script>x</script>", "render", "--gfm-filter")
	require.NoError(t, err)
	assert.Contains(t, out, "&lt;script>")
	assert.NotContains(t, out, "<script>")
}

func TestRenderFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	require.NoError(t, os.WriteFile(a, []byte("One[^n].\n\n[^n]: A\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("Two[^n].\n\n[^n]: B\n"), 0o644))
	output := filepath.Join(dir, "out.html")

	_, err := execute(t, "", "render", "--footnote-prefix", "doc-", "-o", output, a, b)
	require.NoError(t, err)
	got, err := os.ReadFile(output)
	require.NoError(t, err)

	// Each file is its own document, so both footnotes are numbered 1.
	assert.Equal(t, 2, strings.Count(string(got), `href="#doc-fn:n">1</a>`))
	assert.Equal(t, 2, strings.Count(string(got), `<div class="footnotes">`))
}

func TestRenderConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mdextra.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("extended: true\nvariables:\n  who: file\n"), 0o644))

	out, err := execute(t, "${who}", "--config", cfgPath, "render")
	require.NoError(t, err)
	assert.Equal(t, "<p>file</p>\n", out)

	out, err = execute(t, "${who}", "--config", cfgPath, "render", "--var", "who=flag")
	require.NoError(t, err)
	assert.Equal(t, "<p>flag</p>\n", out)

	out, err = execute(t, "${who}", "--config", cfgPath, "render", "--extended=false")
	require.NoError(t, err)
	assert.Equal(t, "<p>${who}</p>\n", out)
}

func TestRenderErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("unknown_key: 1\n"), 0o644))

	_, err := execute(t, "", "--config", bad, "render")
	assert.Error(t, err)

	_, err = execute(t, "", "render", filepath.Join(dir, "missing.md"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = execute(t, "", "render", "--max-nesting", "-1")
	assert.Error(t, err)
}
