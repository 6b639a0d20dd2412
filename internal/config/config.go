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

// Package config reads the YAML configuration file of the mdextra command
// and converts it to renderer options.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"zombiezen.com/go/mdextra"
)

// DefaultFileName is the configuration file looked for in the working directory.
const DefaultFileName = ".mdextra.yaml"

// Tag filter names accepted by filter_tags.
const (
	FilterNone = "none"
	FilterGFM  = "gfm"
)

// Config is the contents of a configuration file.
// Unset optional booleans keep the renderer's defaults.
type Config struct {
	FootnotePrefix string            `yaml:"footnote_prefix"`
	Extended       bool              `yaml:"extended"`
	Variables      map[string]string `yaml:"variables"`
	HeaderIDs      *bool             `yaml:"header_ids"`
	MarkdownInHTML *bool             `yaml:"markdown_in_html"`
	MaxNesting     int               `yaml:"max_nesting"`
	FilterTags     string            `yaml:"filter_tags"`
	IgnoreRaw      bool              `yaml:"ignore_raw"`
}

// Load reads the configuration file at path.
// Unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration document.
// An empty document yields the zero Config.
func Parse(data []byte) (*Config, error) {
	cfg := new(Config)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Discover returns the path of the default configuration file in dir
// and whether it exists.
func Discover(dir string) (string, bool) {
	path := filepath.Join(dir, DefaultFileName)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return path, false
	}
	return path, true
}

// Validate reports the first invalid setting in cfg.
func (cfg *Config) Validate() error {
	if cfg.MaxNesting < 0 {
		return fmt.Errorf("max_nesting must not be negative (got %d)", cfg.MaxNesting)
	}
	switch cfg.FilterTags {
	case "", FilterNone, FilterGFM:
	default:
		return fmt.Errorf("filter_tags must be %q or %q (got %q)", FilterNone, FilterGFM, cfg.FilterTags)
	}
	return nil
}

// Options converts cfg to renderer options.
// logger receives the renderer's debug events and may be nil.
func (cfg *Config) Options(logger *log.Logger) *mdextra.Options {
	opts := &mdextra.Options{
		FootnotePrefix: cfg.FootnotePrefix,
		Extended:       cfg.Extended,
		MaxNesting:     cfg.MaxNesting,
		IgnoreRaw:      cfg.IgnoreRaw,
		Logger:         logger,
	}
	if len(cfg.Variables) > 0 {
		opts.Variables = make(map[string]string, len(cfg.Variables))
		for k, v := range cfg.Variables {
			opts.Variables[k] = v
		}
	}
	if cfg.HeaderIDs != nil {
		opts.NoHeaderIDs = !*cfg.HeaderIDs
	}
	if cfg.MarkdownInHTML != nil {
		opts.NoMarkdownInHTML = !*cfg.MarkdownInHTML
	}
	if cfg.FilterTags == FilterGFM {
		opts.FilterTag = mdextra.FilterTagGFM
	}
	return opts
}

// envPrefix starts the names of environment variables read by ApplyEnv.
const envPrefix = "MDEXTRA_"

// ApplyEnv overrides cfg with MDEXTRA_* environment variables
// found through lookup (usually [os.LookupEnv]).
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(envPrefix + "FOOTNOTE_PREFIX"); ok {
		cfg.FootnotePrefix = v
	}
	if v, ok := lookup(envPrefix + "EXTENDED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sEXTENDED: %w", envPrefix, err)
		}
		cfg.Extended = b
	}
	if v, ok := lookup(envPrefix + "MAX_NESTING"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_NESTING: %w", envPrefix, err)
		}
		cfg.MaxNesting = n
	}
	if v, ok := lookup(envPrefix + "FILTER_TAGS"); ok {
		cfg.FilterTags = v
	}
	return cfg.Validate()
}
