/*
CppReview Analyzer - A tool for static code analysis
Copyright (C) 2024  CppReview Authors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package config loads the analyzer configuration file. All fields are
// optional; zero values mean "every rule on, default clang, console
// output".
package config

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v2"

	"cppreview.dev/analyzer/issue"
)

type Config struct {
	// DisabledRules lists rule ids (e.g. "SMART-PTR-001") that are
	// skipped entirely.
	DisabledRules []string `yaml:"disabled_rules"`

	// SeverityOverrides remaps a rule id to a severity name
	// ("suggestion" through "critical").
	SeverityOverrides map[string]string `yaml:"severity_overrides"`

	// IgnorePatterns are doublestar globs matched against paths
	// relative to the scanned root, e.g. "third_party/**".
	IgnorePatterns []string `yaml:"ignore_patterns"`

	ClangBin  string `yaml:"clang_bin"`
	ClangArgs string `yaml:"clang_args"`
	Standard  string `yaml:"std"`

	// Output selects report formats: "console", "html", "sarif".
	Output    []string `yaml:"output"`
	OutputDir string   `yaml:"output_dir"`

	// FailOn is the lowest severity that makes the run exit nonzero.
	// Empty disables gating.
	FailOn string `yaml:"fail_on"`

	// SmallArrayThreshold tunes the advisory for non-constant indexing
	// of small fixed-size buffers.
	SmallArrayThreshold int `yaml:"small_array_threshold"`

	// TaintMaxDepth caps taint propagation recursion. Zero keeps the
	// built-in default.
	TaintMaxDepth int `yaml:"taint_max_depth"`
}

func Default() *Config {
	return &Config{
		Output:    []string{"console"},
		OutputDir: ".",
	}
}

// Load reads a YAML config file. A missing path returns defaults
// rather than an error so running without a config file just works.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("os.ReadFile: %v", err)
	}
	if err := yaml.Unmarshal(contents, c); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal: %v", err)
	}
	if len(c.Output) == 0 {
		c.Output = []string{"console"}
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	return c, c.validate()
}

func (c *Config) validate() error {
	for id, name := range c.SeverityOverrides {
		if _, err := issue.ParseSeverity(name); err != nil {
			return fmt.Errorf("severity_overrides[%s]: %v", id, err)
		}
	}
	if c.FailOn != "" {
		if _, err := issue.ParseSeverity(c.FailOn); err != nil {
			return fmt.Errorf("fail_on: %v", err)
		}
	}
	for _, pat := range c.IgnorePatterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("ignore_patterns: invalid pattern %q", pat)
		}
	}
	return nil
}

func (c *Config) RuleDisabled(id string) bool {
	for _, d := range c.DisabledRules {
		if d == id {
			return true
		}
	}
	return false
}

// Severity applies any override for the rule, falling back to the
// rule's own default.
func (c *Config) Severity(id string, def issue.Severity) issue.Severity {
	if name, ok := c.SeverityOverrides[id]; ok {
		if s, err := issue.ParseSeverity(name); err == nil {
			return s
		}
	}
	return def
}

// Ignored reports whether a root-relative path matches any ignore
// pattern.
func (c *Config) Ignored(relPath string) bool {
	for _, pat := range c.IgnorePatterns {
		if ok, _ := doublestar.Match(pat, relPath); ok {
			return true
		}
	}
	return false
}

// FailThreshold returns the gating severity and whether gating is on.
func (c *Config) FailThreshold() (issue.Severity, bool) {
	if c.FailOn == "" {
		return 0, false
	}
	s, err := issue.ParseSeverity(c.FailOn)
	if err != nil {
		return 0, false
	}
	return s, true
}
