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

// Package analyzer drives a full review run: it collects translation
// units, parses each one, runs the rule engine over it, and assembles
// the results for reporting.
package analyzer

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/hhatto/gocloc"
	"golang.org/x/exp/slices"

	"cppreview.dev/analyzer/config"
	"cppreview.dev/analyzer/engine"
	"cppreview.dev/analyzer/frontend"
	"cppreview.dev/analyzer/issue"
	"cppreview.dev/analyzer/report"
	"cppreview.dev/analyzer/rules/assigncond"
	"cppreview.dev/analyzer/rules/bufoverflow"
	"cppreview.dev/analyzer/rules/intoverflow"
	"cppreview.dev/analyzer/rules/loopcopy"
	"cppreview.dev/analyzer/rules/memleak"
	"cppreview.dev/analyzer/rules/nullptr"
	"cppreview.dev/analyzer/rules/smartptr"
	"cppreview.dev/analyzer/rules/uninitvar"
	"cppreview.dev/analyzer/rules/unsafefunc"
	"cppreview.dev/analyzer/rules/useafterfree"
	"cppreview.dev/analyzer/taint"
)

const (
	Tool    = "cppreview"
	Version = "0.1.0"
)

var sourceExts = map[string]bool{
	".c": true, ".cc": true, ".cpp": true, ".cxx": true,
}

var clocLangs = []string{"C", "C++", "C Header", "C++ Header"}

// NewEngine builds an engine with every enabled rule registered. Each
// translation unit gets a fresh engine so no rule state can leak
// between units.
func NewEngine(cfg *config.Config) *engine.Engine {
	e := engine.New()
	all := []engine.Rule{
		&nullptr.Rule{},
		&uninitvar.Rule{},
		&assigncond.Rule{},
		&unsafefunc.Rule{},
		&memleak.Rule{},
		&smartptr.Rule{},
		&loopcopy.Rule{},
		&intoverflow.Rule{},
		&bufoverflow.Rule{SmallArrayThreshold: int64(cfg.SmallArrayThreshold)},
		&useafterfree.Rule{},
		&taint.Analyzer{MaxDepth: cfg.TaintMaxDepth},
	}
	for _, r := range all {
		if cfg.RuleDisabled(r.ID()) {
			glog.Infof("rule %s disabled by config", r.ID())
			continue
		}
		e.Register(r)
	}
	return e
}

// CollectSources walks root and returns the translation units to
// analyze, sorted, with ignore patterns applied against root-relative
// paths. Headers are not parsed on their own.
func CollectSources(root string, cfg *config.Config) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if cfg.Ignored(rel) || cfg.Ignored(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !sourceExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if cfg.Ignored(rel) {
			glog.Infof("source file %s ignored by pattern", rel)
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %v", root, err)
	}
	slices.Sort(files)
	return files, nil
}

// countLines totals code lines under root for the run summary.
func countLines(root string) int {
	opts := gocloc.NewClocOptions()
	languages := gocloc.NewDefinedLanguages()
	for _, lang := range clocLangs {
		if _, exists := languages.Langs[lang]; exists {
			opts.IncludeLangs[lang] = struct{}{}
		}
	}
	processor := gocloc.NewProcessor(languages, opts)
	result, err := processor.Analyze([]string{root})
	if err != nil {
		glog.Errorf("gocloc fail: %v", err)
		return 0
	}
	sum := 0
	for _, file := range result.Files {
		sum += int(file.Code)
	}
	return sum
}

func printfWithTimeStamp(format string, arg ...any) {
	msg := fmt.Sprintf(time.Now().Format("2006-01-02 15:04:05 ")+format, arg...)
	fmt.Println(msg)
	glog.Info(msg)
}

// Run analyzes every translation unit under root and returns the
// assembled summary. Per-file failures are recorded, not fatal: one
// unparsable unit must not sink the whole run.
func Run(root string, cfg *config.Config) (*report.Summary, error) {
	started := time.Now()
	files, err := CollectSources(root, cfg)
	if err != nil {
		return nil, err
	}

	fe := frontend.Options{
		ClangBin:  cfg.ClangBin,
		Standard:  cfg.Standard,
		ExtraArgs: cfg.ClangArgs,
	}

	s := &report.Summary{
		RunID:      uuid.NewString(),
		Tool:       Tool,
		Version:    Version,
		Root:       root,
		Started:    started,
		FilesTotal: len(files),
		Rules:      NewEngine(cfg).Rules(),
	}

	printfWithTimeStamp("Start analyzing %d files under %s", len(files), root)
	for n, file := range files {
		tree, err := frontend.Parse(file, fe)
		if err != nil {
			glog.Errorf("parse %s: %v", file, err)
			s.Failures = append(s.Failures, fmt.Sprintf("%s: %v", file, err))
			continue
		}
		sink := &issue.Sink{}
		for _, err := range NewEngine(cfg).RunAll(tree, sink) {
			glog.Errorf("check %s: %v", file, err)
			s.Failures = append(s.Failures, fmt.Sprintf("%s: %v", file, err))
		}
		for _, i := range sink.All() {
			i.Severity = cfg.Severity(i.RuleID, i.Severity)
			s.Issues = append(s.Issues, i)
		}
		printfWithTimeStamp("Analyzed %s (%d/%d)", file, n+1, len(files))
	}

	s.LinesTotal = countLines(root)
	s.Elapsed = time.Since(started)
	printfWithTimeStamp("Analysis completed: %d findings in %d files", len(s.Issues), len(files))
	return s, nil
}

// FailCount returns how many findings meet the configured gating
// threshold, and whether gating is enabled at all.
func FailCount(s *report.Summary, cfg *config.Config) (int, bool) {
	min, ok := cfg.FailThreshold()
	if !ok {
		return 0, false
	}
	n := 0
	for _, i := range s.Issues {
		if i.Severity >= min {
			n++
		}
	}
	return n, true
}
