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

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"zombiezen.com/go/mdextra"
	"zombiezen.com/go/mdextra/internal/config"
	"zombiezen.com/go/mdextra/internal/logging"
)

// ErrNoInput is returned when render is given no files
// and standard input is a terminal.
var ErrNoInput = errors.New("no input files and standard input is a terminal")

type renderFlags struct {
	output         string
	footnotePrefix string
	extended       bool
	variables      map[string]string
	noHeaderIDs    bool
	noMarkdownHTML bool
	maxNesting     int
	gfmFilter      bool
	ignoreRaw      bool
}

func newRenderCommand() *cobra.Command {
	f := new(renderFlags)
	cmd := &cobra.Command{
		Use:   "render [FILE ...]",
		Short: "Render Markdown Extra files to HTML",
		Long: `Render each FILE (or standard input) to HTML.

Each file is rendered as its own document with its own footnotes,
abbreviations and link references. Outputs are separated by a blank line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, f, args)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", "", "write HTML to `file` instead of standard output")
	flags.StringVar(&f.footnotePrefix, "footnote-prefix", "", "`prefix` for footnote ids")
	flags.BoolVar(&f.extended, "extended", false, "enable variables, sections and figures")
	flags.StringToStringVar(&f.variables, "var", nil, "set a variable for the extended grammar (`name=value`)")
	flags.BoolVar(&f.noHeaderIDs, "no-header-ids", false, "do not generate header ids")
	flags.BoolVar(&f.noMarkdownHTML, "no-markdown-in-html", false, "leave markdown=\"1\" HTML blocks alone")
	flags.IntVar(&f.maxNesting, "max-nesting", 0, "maximum nesting `depth` (0 for default)")
	flags.BoolVar(&f.gfmFilter, "gfm-filter", false, "escape tags disallowed by GitHub Flavored Markdown")
	flags.BoolVar(&f.ignoreRaw, "ignore-raw", false, "drop raw HTML from the output")
	return cmd
}

// loadConfig reads the --config file, or the default file in the working directory.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	logger := logging.FromContext(cmd.Context())
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path == "" {
		var ok bool
		path, ok = config.Discover(".")
		if !ok {
			logger.Debug("no config file found", logging.FieldPath, path)
			cfg := new(config.Config)
			return cfg, cfg.ApplyEnv(os.LookupEnv)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded config", logging.FieldConfig, path)
	return cfg, cfg.ApplyEnv(os.LookupEnv)
}

// apply overrides cfg with the flags set on the command line.
func (f *renderFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("footnote-prefix") {
		cfg.FootnotePrefix = f.footnotePrefix
	}
	if flags.Changed("extended") {
		cfg.Extended = f.extended
	}
	if len(f.variables) > 0 {
		if cfg.Variables == nil {
			cfg.Variables = make(map[string]string, len(f.variables))
		}
		for k, v := range f.variables {
			cfg.Variables[k] = v
		}
	}
	if flags.Changed("no-header-ids") {
		v := !f.noHeaderIDs
		cfg.HeaderIDs = &v
	}
	if flags.Changed("no-markdown-in-html") {
		v := !f.noMarkdownHTML
		cfg.MarkdownInHTML = &v
	}
	if flags.Changed("max-nesting") {
		cfg.MaxNesting = f.maxNesting
	}
	if flags.Changed("gfm-filter") {
		cfg.FilterTags = config.FilterNone
		if f.gfmFilter {
			cfg.FilterTags = config.FilterGFM
		}
	}
	if flags.Changed("ignore-raw") {
		cfg.IgnoreRaw = f.ignoreRaw
	}
}

func runRender(cmd *cobra.Command, f *renderFlags, args []string) (err error) {
	logger := logging.FromContext(cmd.Context())
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	f.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	r, err := mdextra.New(cfg.Options(logger))
	if err != nil {
		return err
	}
	logger.Debug("renderer ready",
		logging.FieldExtended, cfg.Extended,
		logging.FieldFootnotePrefix, cfg.FootnotePrefix,
		logging.FieldInputs, len(args),
	)

	out := cmd.OutOrStdout()
	if f.output != "" {
		file, createErr := os.Create(f.output)
		if createErr != nil {
			return createErr
		}
		defer func() {
			if closeErr := file.Close(); err == nil && closeErr != nil {
				err = closeErr
			}
		}()
		out = file
	}
	w := bufio.NewWriter(out)

	if len(args) == 0 {
		in := cmd.InOrStdin()
		if isTerminal(in) {
			return ErrNoInput
		}
		if err := renderOne(r, w, in, "-"); err != nil {
			return err
		}
	}
	for i, path := range args {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := renderFile(r, w, path); err != nil {
			return err
		}
		logger.Debug("rendered", logging.FieldPath, path)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func renderFile(r *mdextra.Renderer, w io.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return renderOne(r, w, file, path)
}

func renderOne(r *mdextra.Renderer, w io.Writer, in io.Reader, name string) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := r.WriteHTML(w, string(data)); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
